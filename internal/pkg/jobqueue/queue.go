package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/LearnFox/internal/pkg/cache"
	"github.com/ManuelReschke/LearnFox/internal/pkg/mail"
	"github.com/ManuelReschke/LearnFox/internal/pkg/metrics"
)

const (
	JobKeyPrefix     = "learnfox:job:"
	JobQueueKey      = "learnfox:jobs:pending"
	JobProcessingKey = "learnfox:jobs:processing"

	DefaultMaxRetries = 3
	JobTTL            = 24 * time.Hour

	stuckAfter    = 10 * time.Minute
	sweepInterval = time.Minute
	retryBackoff  = time.Minute
	dequeueWait   = time.Second
)

// MediaDeleter removes uploaded objects.
type MediaDeleter interface {
	Delete(ctx context.Context, publicID string) error
}

// Queue runs enrollment mails and media cleanups from a Redis list. Job ids
// move from the pending list to the processing list while a worker owns them.
type Queue struct {
	client  *redis.Client
	mailer  mail.Mailer
	media   MediaDeleter
	workers int
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewQueue creates a queue with the given number of workers (3 when <= 0).
func NewQueue(workers int) *Queue {
	if workers <= 0 {
		workers = 3
	}
	return &Queue{workers: workers, stopCh: make(chan struct{})}
}

// NewQueueWithClient creates a queue on an explicit Redis client.
func NewQueueWithClient(client *redis.Client, workers int) *Queue {
	q := NewQueue(workers)
	q.client = client
	return q
}

// SetMailer sets the mailer used by enrollment email jobs.
func (q *Queue) SetMailer(m mail.Mailer) {
	q.mailer = m
}

// SetMediaStore sets the object store used by media delete jobs.
func (q *Queue) SetMediaStore(m MediaDeleter) {
	q.media = m
}

// Start launches the workers and the stuck job sweeper.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	if q.client == nil {
		q.client = cache.GetClient()
	}
	// a stopped queue gets a fresh channel so it can be started again
	q.stopCh = make(chan struct{})
	q.running = true
	log.Infof("[JobQueue] Starting %d workers", q.workers)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.wg.Add(1)
	go q.sweeper()
}

// Stop signals all goroutines and waits for in-flight jobs to finish.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.running {
		return
	}
	close(q.stopCh)
	q.running = false
	q.wg.Wait()
	log.Info("[JobQueue] All workers stopped")
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	ctx := context.Background()

	for {
		select {
		case <-q.stopCh:
			return
		default:
		}

		job, err := q.dequeueJob(ctx)
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			log.Errorf("[JobQueue] Worker %d: %v", id, err)
			time.Sleep(dequeueWait)
			continue
		}
		log.Infof("[JobQueue] Worker %d processing job %s (%s)", id, job.ID, job.Type)
		q.processJob(ctx, job)
	}
}

func (q *Queue) sweeper() {
	defer q.wg.Done()
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	ctx := context.Background()

	for {
		select {
		case <-q.stopCh:
			return
		case <-ticker.C:
			if n := q.recoverStuckJobs(ctx, time.Now()); n > 0 {
				log.Warnf("[JobQueue] Requeued %d stuck jobs", n)
			}
			q.reportDepth(ctx)
		}
	}
}

// recoverStuckJobs moves jobs that have been processing for longer than
// stuckAfter back to the pending list and drops ids whose data is gone.
func (q *Queue) recoverStuckJobs(ctx context.Context, now time.Time) int {
	ids, err := q.client.LRange(ctx, JobProcessingKey, 0, -1).Result()
	if err != nil {
		log.Errorf("[JobQueue] Listing processing jobs: %v", err)
		return 0
	}

	recovered := 0
	for _, id := range ids {
		job, err := q.loadJob(ctx, id)
		if err != nil || job.Status != JobStatusProcessing {
			q.removeFromProcessing(ctx, id)
			continue
		}
		if now.Sub(job.startedAt()) <= stuckAfter {
			continue
		}
		job.Status = JobStatusPending
		job.ErrorMsg = "recovered after worker loss"
		job.UpdatedAt = now
		q.saveJob(ctx, job)

		pipe := q.client.TxPipeline()
		pipe.LRem(ctx, JobProcessingKey, 1, id)
		pipe.RPush(ctx, JobQueueKey, id)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Errorf("[JobQueue] Requeue of %s failed: %v", id, err)
			continue
		}
		recovered++
	}
	return recovered
}

// EnqueueJob stores a new job and pushes it onto the pending list.
func (q *Queue) EnqueueJob(jobType JobType, payload map[string]interface{}) (*Job, error) {
	ctx := context.Background()
	now := time.Now()
	job := &Job{
		ID:         uuid.New().String(),
		Type:       jobType,
		Status:     JobStatusPending,
		Payload:    payload,
		CreatedAt:  now,
		UpdatedAt:  now,
		MaxRetries: DefaultMaxRetries,
	}

	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job: %w", err)
	}

	pipe := q.redis().TxPipeline()
	pipe.Set(ctx, JobKeyPrefix+job.ID, data, JobTTL)
	pipe.LPush(ctx, JobQueueKey, job.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	log.Infof("[JobQueue] Enqueued job %s (%s)", job.ID, job.Type)
	return job, nil
}

func (q *Queue) dequeueJob(ctx context.Context) (*Job, error) {
	id, err := q.client.BRPopLPush(ctx, JobQueueKey, JobProcessingKey, dequeueWait).Result()
	if err != nil {
		return nil, err
	}
	job, err := q.loadJob(ctx, id)
	if err != nil {
		q.removeFromProcessing(ctx, id)
		return nil, err
	}
	return job, nil
}

func (q *Queue) loadJob(ctx context.Context, id string) (*Job, error) {
	data, err := q.client.Get(ctx, JobKeyPrefix+id).Bytes()
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", id, err)
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("job %s: %w", id, err)
	}
	return &job, nil
}

// run dispatches a job to its processor.
func (q *Queue) run(ctx context.Context, job *Job) error {
	switch job.Type {
	case JobTypeSendEnrollmentEmail:
		return q.processEnrollmentEmailJob(ctx, job)
	case JobTypeDeleteMedia:
		return q.processDeleteMediaJob(ctx, job)
	}
	return fmt.Errorf("%w: unknown job type %s", errPermanent, job.Type)
}

func (q *Queue) processJob(ctx context.Context, job *Job) {
	job.MarkAsProcessing()
	q.saveJob(ctx, job)

	err := q.run(ctx, job)
	defer q.removeFromProcessing(ctx, job.ID)

	if err == nil {
		job.MarkAsCompleted()
		metrics.Jobs.WithLabelValues(string(job.Type), string(JobStatusCompleted)).Inc()
		if derr := q.client.Del(ctx, JobKeyPrefix+job.ID).Err(); derr != nil {
			log.Errorf("[JobQueue] Failed to remove completed job %s: %v", job.ID, derr)
		}
		log.Infof("[JobQueue] Job %s completed", job.ID)
		return
	}

	log.Errorf("[JobQueue] Job %s failed: %v", job.ID, err)
	job.MarkAsFailed(err.Error())
	if errors.Is(err, errPermanent) {
		job.MaxRetries = job.RetryCount
	}
	if !job.IsRetryable() {
		metrics.Jobs.WithLabelValues(string(job.Type), string(JobStatusFailed)).Inc()
		q.saveJob(ctx, job)
		return
	}

	job.MarkAsRetrying()
	q.saveJob(ctx, job)
	id := job.ID
	time.AfterFunc(retryBackoff*time.Duration(job.RetryCount), func() {
		if err := q.client.LPush(context.Background(), JobQueueKey, id).Err(); err != nil {
			log.Errorf("[JobQueue] Retry push for %s failed: %v", id, err)
		}
	})
}

func (q *Queue) saveJob(ctx context.Context, job *Job) {
	data, err := json.Marshal(job)
	if err != nil {
		log.Errorf("[JobQueue] Failed to marshal job %s: %v", job.ID, err)
		return
	}
	if err := q.client.Set(ctx, JobKeyPrefix+job.ID, data, JobTTL).Err(); err != nil {
		log.Errorf("[JobQueue] Failed to save job %s: %v", job.ID, err)
	}
}

func (q *Queue) removeFromProcessing(ctx context.Context, id string) {
	if err := q.client.LRem(ctx, JobProcessingKey, 1, id).Err(); err != nil {
		log.Errorf("[JobQueue] Failed to remove job %s from processing: %v", id, err)
	}
}

// depth returns the lengths of the pending and processing lists. The queue
// must have a client.
func (q *Queue) depth(ctx context.Context) (pending, processing int64, err error) {
	if pending, err = q.client.LLen(ctx, JobQueueKey).Result(); err != nil {
		return 0, 0, err
	}
	if processing, err = q.client.LLen(ctx, JobProcessingKey).Result(); err != nil {
		return 0, 0, err
	}
	return pending, processing, nil
}

func (q *Queue) reportDepth(ctx context.Context) {
	pending, processing, err := q.depth(ctx)
	if err != nil {
		log.Errorf("[JobQueue] Reading queue depth: %v", err)
		return
	}
	metrics.JobQueueDepth.WithLabelValues("pending").Set(float64(pending))
	metrics.JobQueueDepth.WithLabelValues("processing").Set(float64(processing))
}

func (q *Queue) redis() *redis.Client {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.client == nil {
		q.client = cache.GetClient()
	}
	return q.client
}
