package extraction

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/entities"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/repositories"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/infrastructure/queue"
	"github.com/kgwiazdak/sprint-planning-copilot/pkg/config"
	"github.com/kgwiazdak/sprint-planning-copilot/pkg/jobcontext"
)

// Worker drains the import queue and drives the extraction pipeline.
// A single goroutine polls; each job is claimed atomically so running
// several replicas is safe.
type Worker struct {
	queue       queue.ImportQueue
	meetingRepo repositories.MeetingRepository
	service     *Service

	pollInterval time.Duration
	maxRetries   int
	retryBase    time.Duration
	jobTimeout   time.Duration
	logger       *zap.Logger

	mu       sync.Mutex
	inFlight map[uuid.UUID]context.CancelFunc

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWorker creates the import worker
func NewWorker(
	q queue.ImportQueue,
	meetingRepo repositories.MeetingRepository,
	service *Service,
	cfg *config.Config,
	logger *zap.Logger,
) *Worker {
	pollInterval := 2 * time.Second
	maxRetries := 3
	jobTimeout := 15 * time.Minute
	if cfg != nil {
		pollInterval = cfg.Worker.PollInterval
		maxRetries = cfg.Worker.MaxRetries
		jobTimeout = cfg.Transcription.Timeout + cfg.Extractor.Timeout
	}
	return &Worker{
		queue:        q,
		meetingRepo:  meetingRepo,
		service:      service,
		pollInterval: pollInterval,
		maxRetries:   maxRetries,
		retryBase:    time.Second,
		jobTimeout:   jobTimeout,
		logger:       logger,
		inFlight:     make(map[uuid.UUID]context.CancelFunc),
		stopChan:     make(chan struct{}),
	}
}

// Start launches the polling loop
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
	if w.logger != nil {
		w.logger.Info("🚀 Import worker started",
			zap.Duration("poll_interval", w.pollInterval),
		)
	}
}

// Stop shuts the worker down and waits for the current job to finish
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
	w.wg.Wait()
	if w.logger != nil {
		w.logger.Info("👋 Import worker stopped")
	}
}

// Cancel aborts the in-flight run for a meeting, if any. Used when a
// meeting is deleted while processing.
func (w *Worker) Cancel(meetingID uuid.UUID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	cancel, ok := w.inFlight[meetingID]
	if ok {
		cancel()
	}
	return ok
}

func (w *Worker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.drain()
		}
	}
}

// drain processes queued jobs until the queue is empty or stop is requested
func (w *Worker) drain() {
	for {
		select {
		case <-w.stopChan:
			return
		default:
		}

		job, err := w.queue.Dequeue(context.Background())
		if errors.Is(err, queue.ErrEmpty) {
			return
		}
		if err != nil {
			if w.logger != nil {
				w.logger.Error("❌ Failed to dequeue import job", zap.Error(err))
			}
			return
		}
		w.process(job)
	}
}

func (w *Worker) process(job *queue.ImportJob) {
	meeting, err := w.claim(job.MeetingID)
	if err != nil {
		// Already claimed elsewhere or deleted before we got here
		if errors.Is(err, entities.ErrMeetingNotClaimable) || errors.Is(err, entities.ErrMeetingNotFound) {
			if w.logger != nil {
				w.logger.Info("⏭️ Skipping import job",
					zap.String("meeting_id", job.MeetingID.String()),
					zap.Error(err),
				)
			}
			return
		}
		select {
		case <-w.stopChan:
			return
		default:
		}
		if w.logger != nil {
			w.logger.Error("❌ Claim gave up",
				zap.String("meeting_id", job.MeetingID.String()),
				zap.Error(err),
			)
		}
		// The job is already off the queue, leaving the row queued would
		// strand it forever
		w.failUnclaimed(job.MeetingID, err)
		return
	}

	runID := uuid.New()
	ctx, cancel := jobcontext.JobBegin(context.Background(), meeting.ID, runID, w.jobTimeout)
	defer cancel()

	w.track(meeting.ID, cancel)
	defer w.untrack(meeting.ID)

	for attempt := 0; ; attempt++ {
		ctx = jobcontext.SetRetryAttempt(ctx, attempt)
		err = w.service.Run(ctx, meeting)
		if err == nil {
			return
		}
		if attempt >= w.maxRetries || !jobcontext.IsRetryableError(err) {
			break
		}

		delay := jobcontext.CalculateBackoff(attempt, w.retryBase)
		if w.logger != nil {
			w.logger.Warn("🔄 Retrying import",
				zap.String("meeting_id", meeting.ID.String()),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
		}
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		// The failed attempt may have mutated the entity, start clean
		fresh, ferr := w.meetingRepo.FindByID(ctx, meeting.ID)
		if ferr != nil {
			return
		}
		meeting = fresh
	}

	if w.logger != nil {
		w.logger.Error("❌ Import job gave up",
			zap.String("meeting_id", meeting.ID.String()),
			zap.Error(err),
		)
	}

	// The row is still stuck in processing, move it to failed so the
	// status endpoint reflects reality
	if markErr := meeting.MarkFailed("import failed after retries: " + err.Error()); markErr == nil {
		_ = w.meetingRepo.Update(context.Background(), meeting)
	}
}

// claim transitions the meeting into processing, retrying transient
// storage failures with the same bounded backoff as the pipeline itself.
// Sentinel errors pass through untouched, they are not transient.
func (w *Worker) claim(meetingID uuid.UUID) (*entities.Meeting, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		meeting, err := w.meetingRepo.Claim(context.Background(), meetingID)
		if err == nil {
			return meeting, nil
		}
		if errors.Is(err, entities.ErrMeetingNotClaimable) || errors.Is(err, entities.ErrMeetingNotFound) {
			return nil, err
		}
		lastErr = err
		if attempt >= w.maxRetries {
			return nil, lastErr
		}

		delay := jobcontext.CalculateBackoff(attempt, w.retryBase)
		if w.logger != nil {
			w.logger.Warn("🔄 Retrying claim",
				zap.String("meeting_id", meetingID.String()),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
		}
		select {
		case <-w.stopChan:
			return nil, lastErr
		case <-time.After(delay):
		}
	}
}

// failUnclaimed moves a meeting whose job was consumed but never claimed
// out of queued, recording why the queue gave up on it
func (w *Worker) failUnclaimed(meetingID uuid.UUID, cause error) {
	ctx := context.Background()
	meeting, err := w.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return
	}
	if meeting.Status != entities.MeetingStatusQueued {
		return
	}

	// Walk the legal transitions, the row is written once in its final state
	if err := meeting.MarkProcessing(); err != nil {
		return
	}
	if err := meeting.MarkFailed("import queue claim failed after retries: " + cause.Error()); err != nil {
		return
	}
	_ = w.meetingRepo.Update(ctx, meeting)
}

func (w *Worker) track(meetingID uuid.UUID, cancel context.CancelFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight[meetingID] = cancel
}

func (w *Worker) untrack(meetingID uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inFlight, meetingID)
}
