package pipeline

import (
	"context"
	"fmt"
	"log"
)

// UpdateAlbumGeocoding resolves locality and country for the album's
// photos that carry location data. With overwrite=false only records with
// neither field set are resolved (fill-missing); with overwrite=true every
// located record is re-resolved and replaced. Unresolved lookups are
// skipped, never fatal. Returns the number of records updated.
func (p *Pipeline) UpdateAlbumGeocoding(ctx context.Context, albumID uint, overwrite bool) (int, error) {
	if p.resolver == nil {
		log.Printf("pipeline: No geocoding resolver configured, skipping album %d", albumID)
		return 0, nil
	}

	records, err := p.exifs.ListLocatedByAlbumID(albumID)
	if err != nil {
		return 0, fmt.Errorf("pipeline: failed to list located photos for album %d: %w", albumID, err)
	}

	updated := 0
	for i := range records {
		if err := ctx.Err(); err != nil {
			return updated, err
		}

		rec := &records[i]
		if !overwrite && (rec.Locality != nil || rec.Country != nil) {
			continue
		}
		if rec.Latitude == nil || rec.Longitude == nil {
			continue
		}

		res, ok := p.resolver.Resolve(ctx, *rec.Latitude, *rec.Longitude)
		if !ok {
			log.Printf("pipeline: Geocoding unresolved for photo %d (%f,%f)", rec.PhotoID, *rec.Latitude, *rec.Longitude)
			continue
		}

		if err := p.exifs.UpdateResolvedLocation(rec.PhotoID, res.Locality, res.Country); err != nil {
			log.Printf("pipeline: ERROR updating geocoding for photo %d: %v", rec.PhotoID, err)
			continue
		}
		updated++
	}

	log.Printf("pipeline: Updated geocoding for %d photo(s) in album %d", updated, albumID)
	return updated, nil
}
