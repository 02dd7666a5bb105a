package pipeline

import (
	"context"
	"testing"

	"github.com/photogallerist/gallerybackend/geocode"
	"github.com/photogallerist/gallerybackend/models"
)

func locatedRecord(photoID uint, lat, lon float64, locality, country *string) *models.ExifMetadata {
	return &models.ExifMetadata{
		PhotoID:     photoID,
		HasLocation: true,
		Latitude:    &lat,
		Longitude:   &lon,
		Locality:    locality,
		Country:     country,
	}
}

func ptr(s string) *string { return &s }

func TestUpdateAlbumGeocodingFillsMissing(t *testing.T) {
	resolver := &stubResolver{fn: func(lat, lon float64) (geocode.Result, bool) {
		return geocode.Result{Locality: ptr("Berlin"), Country: ptr("Germany")}, true
	}}
	env := newTestEnv(t, resolver)

	p1 := env.addPhotoFile(t, "a.jpg", 320, 240)
	p2 := env.addPhotoFile(t, "b.jpg", 320, 240)
	_ = env.exifs.Upsert(locatedRecord(p1.ID, 52.52, 13.40, nil, nil))
	_ = env.exifs.Upsert(locatedRecord(p2.ID, 48.85, 2.35, ptr("Paris"), ptr("France")))

	updated, err := env.pipe.UpdateAlbumGeocoding(context.Background(), env.album.ID, false)
	if err != nil {
		t.Fatalf("UpdateAlbumGeocoding failed: %v", err)
	}
	if updated != 1 {
		t.Errorf("updated = %d, want 1", updated)
	}
	if resolver.calls != 1 {
		t.Errorf("resolver called %d times, want 1 (already-resolved records skipped)", resolver.calls)
	}

	got, _ := env.exifs.GetByPhotoID(p1.ID)
	if got.Locality == nil || *got.Locality != "Berlin" {
		t.Errorf("locality = %v, want Berlin", got.Locality)
	}
	kept, _ := env.exifs.GetByPhotoID(p2.ID)
	if kept.Locality == nil || *kept.Locality != "Paris" {
		t.Errorf("pre-resolved locality overwritten: %v", kept.Locality)
	}
}

func TestUpdateAlbumGeocodingOverwrite(t *testing.T) {
	resolver := &stubResolver{fn: func(lat, lon float64) (geocode.Result, bool) {
		return geocode.Result{Locality: ptr("Munich"), Country: ptr("Germany")}, true
	}}
	env := newTestEnv(t, resolver)

	p1 := env.addPhotoFile(t, "a.jpg", 320, 240)
	_ = env.exifs.Upsert(locatedRecord(p1.ID, 48.13, 11.58, ptr("Stale Name"), ptr("Germany")))

	updated, err := env.pipe.UpdateAlbumGeocoding(context.Background(), env.album.ID, true)
	if err != nil {
		t.Fatalf("UpdateAlbumGeocoding failed: %v", err)
	}
	if updated != 1 {
		t.Errorf("updated = %d, want 1", updated)
	}

	got, _ := env.exifs.GetByPhotoID(p1.ID)
	if got.Locality == nil || *got.Locality != "Munich" {
		t.Errorf("locality = %v, want Munich", got.Locality)
	}
}

func TestUpdateAlbumGeocodingUnresolvedSkipped(t *testing.T) {
	resolver := &stubResolver{fn: func(lat, lon float64) (geocode.Result, bool) {
		return geocode.Result{}, false
	}}
	env := newTestEnv(t, resolver)

	p1 := env.addPhotoFile(t, "a.jpg", 320, 240)
	_ = env.exifs.Upsert(locatedRecord(p1.ID, 0.01, -30.0, nil, nil))

	updated, err := env.pipe.UpdateAlbumGeocoding(context.Background(), env.album.ID, false)
	if err != nil {
		t.Fatalf("UpdateAlbumGeocoding failed: %v", err)
	}
	if updated != 0 {
		t.Errorf("updated = %d, want 0 for unresolved lookup", updated)
	}

	got, _ := env.exifs.GetByPhotoID(p1.ID)
	if got.Locality != nil || got.Country != nil {
		t.Error("unresolved record must keep nil locality and country")
	}
}

func TestUpdateAlbumGeocodingNoResolver(t *testing.T) {
	env := newTestEnv(t, nil)

	p1 := env.addPhotoFile(t, "a.jpg", 320, 240)
	_ = env.exifs.Upsert(locatedRecord(p1.ID, 52.52, 13.40, nil, nil))

	updated, err := env.pipe.UpdateAlbumGeocoding(context.Background(), env.album.ID, false)
	if err != nil {
		t.Fatalf("UpdateAlbumGeocoding failed: %v", err)
	}
	if updated != 0 {
		t.Errorf("updated = %d, want 0 without a resolver", updated)
	}
}

func TestUpdateAlbumGeocodingIgnoresUnlocatedRecords(t *testing.T) {
	resolver := &stubResolver{fn: func(lat, lon float64) (geocode.Result, bool) {
		return geocode.Result{Locality: ptr("Anywhere")}, true
	}}
	env := newTestEnv(t, resolver)

	p1 := env.addPhotoFile(t, "a.jpg", 320, 240)
	_ = env.exifs.Upsert(&models.ExifMetadata{PhotoID: p1.ID, Model: ptr("X100V")})

	updated, err := env.pipe.UpdateAlbumGeocoding(context.Background(), env.album.ID, false)
	if err != nil {
		t.Fatalf("UpdateAlbumGeocoding failed: %v", err)
	}
	if updated != 0 || resolver.calls != 0 {
		t.Errorf("records without location must never be resolved (updated=%d calls=%d)", updated, resolver.calls)
	}
}
