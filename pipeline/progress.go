package pipeline

import "sync"

// Progress is a snapshot of a running batch job for an album: how many
// photos it covers and how many have been attempted so far. It is valid
// only while the job executes and is recomputed per poll, never persisted.
type Progress struct {
	AlbumID uint `json:"album_id"`
	Total   int  `json:"total"`
	Current int  `json:"current"`
}

// ProgressTracker reports batch progress keyed directly by album ID.
// Current is monotonically non-decreasing for the lifetime of a job even
// when photos complete out of album order.
type ProgressTracker struct {
	mu   sync.Mutex
	jobs map[uint]*Progress
}

func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{jobs: make(map[uint]*Progress)}
}

// Start registers a batch job over total photos for the album
func (t *ProgressTracker) Start(albumID uint, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[albumID] = &Progress{AlbumID: albumID, Total: total}
}

// Advance records one more attempted photo
func (t *ProgressTracker) Advance(albumID uint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if job, ok := t.jobs[albumID]; ok && job.Current < job.Total {
		job.Current++
	}
}

// Get returns the current snapshot, or ok=false when no job is running
// for the album
func (t *ProgressTracker) Get(albumID uint) (Progress, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[albumID]
	if !ok {
		return Progress{}, false
	}
	return *job, true
}

// Finish removes the album's job entry
func (t *ProgressTracker) Finish(albumID uint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.jobs, albumID)
}
