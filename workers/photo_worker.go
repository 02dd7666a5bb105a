package workers

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/photogallerist/gallerybackend/pipeline"
)

// JobKind constants
const (
	JobProcessPhoto    = "process_photo"
	JobReconcileAlbum  = "reconcile_album"
	JobUpdateGeocoding = "update_geocoding"
	JobScanAlbum       = "scan_album"
)

// Job is one unit of asynchronous pipeline work.
type Job struct {
	Kind      string
	PhotoID   uint
	AlbumID   uint
	Force     bool
	Overwrite bool
}

// PipelineRunner is the pipeline surface the pool drives. The pool itself
// is queue-agnostic glue; tests inject a synchronous runner.
type PipelineRunner interface {
	ProcessPhoto(ctx context.Context, photoID uint, force bool) error
	ReconcileAlbum(ctx context.Context, albumID uint, force bool) (pipeline.ReconcileSummary, error)
	ScanAlbum(albumID uint) (pipeline.ScanResult, error)
	UpdateAlbumGeocoding(ctx context.Context, albumID uint, overwrite bool) (int, error)
}

// PhotoWorkerPool runs pipeline jobs on a fixed set of workers so image
// codec work never blocks a request thread.
type PhotoWorkerPool struct {
	JobQueue chan Job
	Runner   PipelineRunner
	Wg       sync.WaitGroup
	StopChan chan struct{}
	Pending  map[string]bool
	Mutex    sync.Mutex
}

func NewPhotoWorkerPool(runner PipelineRunner, queueSize, numWorkers int) *PhotoWorkerPool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	pool := &PhotoWorkerPool{
		JobQueue: make(chan Job, queueSize),
		Runner:   runner,
		StopChan: make(chan struct{}),
		Pending:  make(map[string]bool),
	}
	pool.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go pool.worker(i)
	}
	log.Printf("Started %d pipeline worker(s) with queue size %d", numWorkers, queueSize)
	return pool
}

func pendingKey(job Job) string {
	switch job.Kind {
	case JobProcessPhoto:
		return fmt.Sprintf("%s:%d", job.Kind, job.PhotoID)
	default:
		return fmt.Sprintf("%s:%d", job.Kind, job.AlbumID)
	}
}

func (pp *PhotoWorkerPool) worker(id int) {
	defer pp.Wg.Done()
	log.Printf("Pipeline worker %d started", id)
	for {
		select {
		case job, ok := <-pp.JobQueue:
			if !ok {
				log.Printf("Pipeline worker %d stopping: Job queue closed", id)
				return
			}
			log.Printf("Worker %d: Received job '%s' (photo=%d album=%d)", id, job.Kind, job.PhotoID, job.AlbumID)
			pp.runJob(id, job)

			pp.Mutex.Lock()
			delete(pp.Pending, pendingKey(job))
			pp.Mutex.Unlock()

		case <-pp.StopChan:
			log.Printf("Pipeline worker %d stopping: Stop signal received", id)
			return
		}
	}
}

func (pp *PhotoWorkerPool) runJob(id int, job Job) {
	ctx := context.Background()

	switch job.Kind {
	case JobProcessPhoto:
		if err := pp.Runner.ProcessPhoto(ctx, job.PhotoID, job.Force); err != nil {
			log.Printf("Worker %d: ERROR processing photo %d: %v", id, job.PhotoID, err)
		}
	case JobReconcileAlbum:
		summary, err := pp.Runner.ReconcileAlbum(ctx, job.AlbumID, job.Force)
		if err != nil {
			log.Printf("Worker %d: ERROR reconciling album %d: %v", id, job.AlbumID, err)
			return
		}
		log.Printf("Worker %d: Reconciled album %d (%d/%d processed, %d failed)",
			id, job.AlbumID, summary.Processed, summary.Total, len(summary.Failures))
	case JobScanAlbum:
		result, err := pp.Runner.ScanAlbum(job.AlbumID)
		if err != nil {
			log.Printf("Worker %d: ERROR scanning album %d: %v", id, job.AlbumID, err)
			return
		}
		log.Printf("Worker %d: Scanned album %d (%d new)", id, job.AlbumID, result.NewPhotos)
	case JobUpdateGeocoding:
		updated, err := pp.Runner.UpdateAlbumGeocoding(ctx, job.AlbumID, job.Overwrite)
		if err != nil {
			log.Printf("Worker %d: ERROR updating geocoding for album %d: %v", id, job.AlbumID, err)
			return
		}
		log.Printf("Worker %d: Updated geocoding for %d photo(s) in album %d", id, updated, job.AlbumID)
	default:
		log.Printf("Worker %d: ERROR unknown job kind '%s'", id, job.Kind)
	}
}

// QueueJob queues a job unless an identical one is already pending
func (pp *PhotoWorkerPool) QueueJob(job Job) bool {
	key := pendingKey(job)

	pp.Mutex.Lock()
	if pp.Pending[key] {
		pp.Mutex.Unlock()
		return false
	}
	pp.Pending[key] = true
	pp.Mutex.Unlock()

	select {
	case pp.JobQueue <- job:
		log.Printf("Queued job '%s' (photo=%d album=%d)", job.Kind, job.PhotoID, job.AlbumID)
		return true
	default:
		log.Printf("WARNING: Pipeline job queue full. Failed to queue job '%s' (photo=%d album=%d)", job.Kind, job.PhotoID, job.AlbumID)
		pp.Mutex.Lock()
		delete(pp.Pending, key)
		pp.Mutex.Unlock()
		return false
	}
}

func (pp *PhotoWorkerPool) Stop() {
	log.Println("Stopping pipeline workers...")
	close(pp.StopChan)
	pp.Wg.Wait()
	log.Println("All pipeline workers stopped")
}
