package workers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/photogallerist/gallerybackend/pipeline"
)

// fakeRunner records calls and optionally blocks until released so tests
// can observe pending-state behaviour.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []Job
	block   chan struct{}
	started chan struct{}
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{started: make(chan struct{}, 64)}
}

func (f *fakeRunner) record(job Job) {
	f.mu.Lock()
	f.calls = append(f.calls, job)
	f.mu.Unlock()
	f.started <- struct{}{}
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRunner) ProcessPhoto(ctx context.Context, photoID uint, force bool) error {
	f.record(Job{Kind: JobProcessPhoto, PhotoID: photoID, Force: force})
	return nil
}

func (f *fakeRunner) ReconcileAlbum(ctx context.Context, albumID uint, force bool) (pipeline.ReconcileSummary, error) {
	f.record(Job{Kind: JobReconcileAlbum, AlbumID: albumID, Force: force})
	return pipeline.ReconcileSummary{AlbumID: albumID}, nil
}

func (f *fakeRunner) ScanAlbum(albumID uint) (pipeline.ScanResult, error) {
	f.record(Job{Kind: JobScanAlbum, AlbumID: albumID})
	return pipeline.ScanResult{AlbumID: albumID}, nil
}

func (f *fakeRunner) UpdateAlbumGeocoding(ctx context.Context, albumID uint, overwrite bool) (int, error) {
	f.record(Job{Kind: JobUpdateGeocoding, AlbumID: albumID, Overwrite: overwrite})
	return 0, nil
}

func waitForCalls(t *testing.T, runner *fakeRunner, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for runner.callCount() < want {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %d calls, have %d", want, runner.callCount())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestQueueJobRunsJob(t *testing.T) {
	runner := newFakeRunner()
	pool := NewPhotoWorkerPool(runner, 4, 1)
	defer pool.Stop()

	if !pool.QueueJob(Job{Kind: JobProcessPhoto, PhotoID: 7, Force: true}) {
		t.Fatal("expected job accepted")
	}
	waitForCalls(t, runner, 1)

	runner.mu.Lock()
	job := runner.calls[0]
	runner.mu.Unlock()
	if job.Kind != JobProcessPhoto || job.PhotoID != 7 || !job.Force {
		t.Errorf("unexpected job dispatched: %+v", job)
	}
}

func TestQueueJobDeduplicatesPending(t *testing.T) {
	runner := newFakeRunner()
	runner.block = make(chan struct{})
	pool := NewPhotoWorkerPool(runner, 4, 1)
	defer pool.Stop()

	if !pool.QueueJob(Job{Kind: JobReconcileAlbum, AlbumID: 1}) {
		t.Fatal("expected first job accepted")
	}
	<-runner.started // job is now executing and still pending

	if pool.QueueJob(Job{Kind: JobReconcileAlbum, AlbumID: 1}) {
		t.Error("expected duplicate job rejected while pending")
	}
	// a different album is not a duplicate
	if !pool.QueueJob(Job{Kind: JobReconcileAlbum, AlbumID: 2}) {
		t.Error("expected job for another album accepted")
	}
	// nor is a different kind for the same album
	if !pool.QueueJob(Job{Kind: JobUpdateGeocoding, AlbumID: 1}) {
		t.Error("expected different job kind accepted")
	}

	close(runner.block)
	waitForCalls(t, runner, 3)
}

func TestQueueJobAcceptsAgainAfterCompletion(t *testing.T) {
	runner := newFakeRunner()
	pool := NewPhotoWorkerPool(runner, 4, 1)
	defer pool.Stop()

	if !pool.QueueJob(Job{Kind: JobProcessPhoto, PhotoID: 3}) {
		t.Fatal("expected job accepted")
	}
	waitForCalls(t, runner, 1)

	// the pending key is released once the job finished
	deadline := time.After(2 * time.Second)
	for !pool.QueueJob(Job{Kind: JobProcessPhoto, PhotoID: 3}) {
		select {
		case <-deadline:
			t.Fatal("job never accepted again after completion")
		case <-time.After(5 * time.Millisecond):
		}
	}
	waitForCalls(t, runner, 2)
}

func TestQueueJobRejectsWhenFull(t *testing.T) {
	runner := newFakeRunner()
	runner.block = make(chan struct{})
	pool := NewPhotoWorkerPool(runner, 1, 1)
	defer pool.Stop()

	// first job occupies the worker, second fills the queue
	if !pool.QueueJob(Job{Kind: JobProcessPhoto, PhotoID: 1}) {
		t.Fatal("expected first job accepted")
	}
	<-runner.started
	if !pool.QueueJob(Job{Kind: JobProcessPhoto, PhotoID: 2}) {
		t.Fatal("expected second job accepted into queue")
	}

	if pool.QueueJob(Job{Kind: JobProcessPhoto, PhotoID: 3}) {
		t.Error("expected rejection when the queue is full")
	}

	close(runner.block)
	waitForCalls(t, runner, 2)

	// the rejected job's key was released, so it can be queued later
	if !pool.QueueJob(Job{Kind: JobProcessPhoto, PhotoID: 3}) {
		t.Error("expected rejected job accepted after drain")
	}
	waitForCalls(t, runner, 3)
}

func TestAllJobKindsDispatch(t *testing.T) {
	runner := newFakeRunner()
	pool := NewPhotoWorkerPool(runner, 8, 2)
	defer pool.Stop()

	jobs := []Job{
		{Kind: JobProcessPhoto, PhotoID: 1},
		{Kind: JobReconcileAlbum, AlbumID: 1, Force: true},
		{Kind: JobScanAlbum, AlbumID: 2},
		{Kind: JobUpdateGeocoding, AlbumID: 3, Overwrite: true},
	}
	for _, job := range jobs {
		if !pool.QueueJob(job) {
			t.Fatalf("job %s rejected", job.Kind)
		}
	}
	waitForCalls(t, runner, len(jobs))

	seen := make(map[string]bool)
	runner.mu.Lock()
	for _, job := range runner.calls {
		seen[job.Kind] = true
	}
	runner.mu.Unlock()
	for _, job := range jobs {
		if !seen[job.Kind] {
			t.Errorf("job kind %s never dispatched", job.Kind)
		}
	}
}
