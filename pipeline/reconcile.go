package pipeline

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/facette/natsort"
)

// PhotoFailure records one photo that could not be processed during a
// batch run.
type PhotoFailure struct {
	PhotoID uint   `json:"photo_id"`
	Title   string `json:"title"`
	Error   string `json:"error"`
}

// ReconcileSummary is the final result of a batch run over an album.
type ReconcileSummary struct {
	AlbumID   uint           `json:"album_id"`
	Total     int            `json:"total"`
	Processed int            `json:"processed"`
	Failures  []PhotoFailure `json:"failures,omitempty"`
}

// ReconcileAlbum re-runs the single-photo pipeline across every photo in
// an album. With force=true derived media is regenerated even for
// unchanged digests ("refresh everything"); force=false re-processes only
// photos whose content changed. One photo's failure is recorded and the
// batch continues; progress is published after every photo so a polling
// client can render "N of M processed". The context is checked between
// photos and aborts the remainder of the batch when cancelled.
func (p *Pipeline) ReconcileAlbum(ctx context.Context, albumID uint, force bool) (ReconcileSummary, error) {
	if _, err := p.albums.GetByID(albumID); err != nil {
		return ReconcileSummary{}, fmt.Errorf("pipeline: failed to load album %d: %w", albumID, err)
	}

	photos, err := p.photos.ListByAlbumID(albumID)
	if err != nil {
		return ReconcileSummary{}, err
	}
	sort.SliceStable(photos, func(i, j int) bool {
		return natsort.Compare(photos[i].SourcePath, photos[j].SourcePath)
	})

	summary := ReconcileSummary{AlbumID: albumID, Total: len(photos)}

	p.progress.Start(albumID, len(photos))
	defer p.progress.Finish(albumID)

	for i := range photos {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if err := p.ProcessPhoto(ctx, photos[i].ID, force); err != nil {
			log.Printf("pipeline: ERROR reconciling photo %d (%s): %v", photos[i].ID, photos[i].Title, err)
			summary.Failures = append(summary.Failures, PhotoFailure{
				PhotoID: photos[i].ID,
				Title:   photos[i].Title,
				Error:   err.Error(),
			})
		} else {
			summary.Processed++
		}
		p.progress.Advance(albumID)
	}

	log.Printf("pipeline: Reconciled album %d: %d/%d processed, %d failed",
		albumID, summary.Processed, summary.Total, len(summary.Failures))
	return summary, nil
}
