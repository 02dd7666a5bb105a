package media

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestStoreSaveAndGet(t *testing.T) {
	store := newTestStore(t)

	relPath, err := store.Save(AssetTypeOriginal, "trip", "a.jpg", bytes.NewReader([]byte("image bytes")))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if relPath != "photos/trip/a.jpg" {
		t.Errorf("relative path = %q, want photos/trip/a.jpg", relPath)
	}

	reader, info, err := store.Get(relPath)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "image bytes" {
		t.Errorf("content = %q", data)
	}
	if info.Size() != int64(len("image bytes")) {
		t.Errorf("size = %d", info.Size())
	}
}

func TestStoreRejectsPathEscape(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Save(AssetTypeOriginal, "trip", "../escape.jpg", bytes.NewReader(nil)); err == nil {
		t.Error("expected error for filename with path separator")
	}
	if _, err := store.GetFullPath("../../etc/passwd"); err == nil {
		t.Error("expected error for traversal in relative path")
	}
	if _, err := store.EnsureAlbumDir(AssetTypeOriginal, "../outside"); err == nil {
		t.Error("expected error for traversal in album slug")
	}
}

func TestStoreUnconfiguredAssetType(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Save(AssetType("banner"), "trip", "a.jpg", bytes.NewReader(nil)); err == nil {
		t.Error("expected error for unconfigured asset type")
	}
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)

	relPath, err := store.Save(AssetTypePreview, "trip", "thumb_a.jpg", bytes.NewReader([]byte("x")))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Delete(relPath); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, _, err := store.Get(relPath); err == nil {
		t.Error("expected Get to fail after delete")
	}

	// deleting a missing file is not an error
	if err := store.Delete(relPath); err != nil {
		t.Errorf("second delete returned error: %v", err)
	}
}

func TestStoreDeleteAlbumDirs(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Save(AssetTypeOriginal, "trip", "a.jpg", bytes.NewReader([]byte("x"))); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := store.Save(AssetTypePreview, "trip", "thumb_a.jpg", bytes.NewReader([]byte("x"))); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := store.Save(AssetTypeOriginal, "other", "b.jpg", bytes.NewReader([]byte("x"))); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.DeleteAlbumDirs("trip"); err != nil {
		t.Fatalf("DeleteAlbumDirs failed: %v", err)
	}

	for _, relPath := range []string{"photos/trip/a.jpg", "previews/trip/thumb_a.jpg"} {
		fullPath, err := store.GetFullPath(relPath)
		if err != nil {
			t.Fatalf("GetFullPath failed: %v", err)
		}
		if _, err := os.Stat(fullPath); !os.IsNotExist(err) {
			t.Errorf("expected %s removed", relPath)
		}
	}

	// other albums are untouched
	if _, _, err := store.Get("photos/other/b.jpg"); err != nil {
		t.Errorf("unrelated album affected: %v", err)
	}
}

func TestStoreRelRoundTrip(t *testing.T) {
	store := newTestStore(t)

	relPath, err := store.Save(AssetTypeOriginal, "trip", "a.jpg", bytes.NewReader([]byte("x")))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	fullPath, err := store.GetFullPath(relPath)
	if err != nil {
		t.Fatalf("GetFullPath failed: %v", err)
	}

	back, err := store.Rel(fullPath)
	if err != nil {
		t.Fatalf("Rel failed: %v", err)
	}
	if back != relPath {
		t.Errorf("Rel round trip = %q, want %q", back, relPath)
	}

	if _, err := store.Rel(filepath.Join(os.TempDir(), "unrelated", "x.jpg")); err == nil {
		t.Error("expected error for path outside the media root")
	}
}

func TestIsSupportedImage(t *testing.T) {
	supported := []string{"a.jpg", "b.JPEG", "c.png", "photos/trip/d.JPG"}
	for _, name := range supported {
		if !IsSupportedImage(name) {
			t.Errorf("expected %q supported", name)
		}
	}
	unsupported := []string{"a.gif", "b.txt", "c", "d.jpg.zip"}
	for _, name := range unsupported {
		if IsSupportedImage(name) {
			t.Errorf("expected %q unsupported", name)
		}
	}
}
