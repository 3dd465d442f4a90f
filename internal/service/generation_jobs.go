package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/class-schedule-api/internal/dto"
	"github.com/noah-isme/class-schedule-api/internal/models"
	appErrors "github.com/noah-isme/class-schedule-api/pkg/errors"
	"github.com/noah-isme/class-schedule-api/pkg/jobs"
)

// JobTypeGenerateAll is the queue job type for semester-wide generation.
const JobTypeGenerateAll = "schedule.generate_all"

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// AttachQueue enables asynchronous generation. The queue's handler should be
// HandleGenerationJob and its exhaustion hook OnJobExhausted.
func (s *ScheduleService) AttachQueue(queue jobEnqueuer) {
	s.queue = queue
}

// EnqueueGenerateAll validates req and schedules it on the worker queue.
func (s *ScheduleService) EnqueueGenerateAll(ctx context.Context, req dto.GenerateAllSchedulesRequest) (*models.GenerationJob, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "asynchronous generation is not enabled")
	}
	if err := s.validateGenerateAll(ctx, req); err != nil {
		return nil, err
	}

	job := models.GenerationJob{
		ID:         uuid.NewString(),
		SemesterID: req.SemesterID,
		Status:     models.GenerationJobQueued,
		CreatedAt:  s.now().UTC(),
	}
	s.jobs.Save(job)

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: JobTypeGenerateAll, Payload: req}); err != nil {
		s.jobs.Delete(job.ID)
		if errors.Is(err, jobs.ErrQueueFull) {
			return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "generation queue is full, retry later")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue generation job")
	}
	s.metrics.JobQueued()
	s.logger.Info("generation job queued", zap.String("job_id", job.ID), zap.String("semester_id", req.SemesterID))
	return &job, nil
}

// GetJob returns the status of an asynchronous generation job.
func (s *ScheduleService) GetJob(_ context.Context, id string) (*models.GenerationJob, error) {
	job, ok := s.jobs.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "generation job not found or expired")
	}
	return &job, nil
}

// HandleGenerationJob is the queue handler. Validation and precondition
// failures finish the job; other errors are returned so the queue retries.
func (s *ScheduleService) HandleGenerationJob(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(dto.GenerateAllSchedulesRequest)
	if !ok {
		s.finishJob(job.ID, func(j *models.GenerationJob) {
			j.Status = models.GenerationJobFailed
			j.ErrorMessage = stringPtr(fmt.Sprintf("unexpected payload %T", job.Payload))
		})
		return nil
	}

	s.jobs.Update(job.ID, func(j *models.GenerationJob) {
		j.Status = models.GenerationJobProcessing
		j.Attempts = job.Attempt + 1
	})

	resp, err := s.generateAll(ctx, req)
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Status < 500 {
			s.finishJob(job.ID, func(j *models.GenerationJob) {
				j.Status = models.GenerationJobFailed
				j.ErrorMessage = stringPtr(appErr.Error())
			})
			return nil
		}
		return err
	}

	s.finishJob(job.ID, func(j *models.GenerationJob) {
		j.Status = models.GenerationJobFinished
		for _, section := range resp.Schedules {
			j.ScheduleIDs = append(j.ScheduleIDs, section.ScheduleID)
		}
		j.Conflicts = resp.TotalConflicts
		j.Warnings = resp.TotalWarnings
	})
	return nil
}

// OnJobExhausted marks a job failed once the queue gives up on it.
func (s *ScheduleService) OnJobExhausted(job jobs.Job, err error) {
	s.finishJob(job.ID, func(j *models.GenerationJob) {
		j.Status = models.GenerationJobFailed
		j.Attempts = job.Attempt
		j.ErrorMessage = stringPtr(err.Error())
	})
}

func (s *ScheduleService) finishJob(id string, mutate func(*models.GenerationJob)) {
	finishedAt := s.now().UTC()
	if s.jobs.Update(id, func(j *models.GenerationJob) {
		mutate(j)
		j.FinishedAt = &finishedAt
	}) {
		s.metrics.JobDone()
	}
}

func stringPtr(v string) *string {
	return &v
}

// generationJobStore keeps job state in memory until the TTL lapses.
type generationJobStore struct {
	ttl   time.Duration
	mu    sync.Mutex
	items map[string]models.GenerationJob
}

func newGenerationJobStore(ttl time.Duration) *generationJobStore {
	return &generationJobStore{ttl: ttl, items: make(map[string]models.GenerationJob)}
}

func (s *generationJobStore) Save(job models.GenerationJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	s.items[job.ID] = job
}

func (s *generationJobStore) Get(id string) (models.GenerationJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.items[id]
	if !ok {
		return models.GenerationJob{}, false
	}
	if s.expired(job) {
		delete(s.items, id)
		return models.GenerationJob{}, false
	}
	return job, true
}

// Update applies mutate to a job still in the store and reports whether it was found.
func (s *generationJobStore) Update(id string, mutate func(*models.GenerationJob)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.items[id]
	if !ok {
		return false
	}
	mutate(&job)
	s.items[id] = job
	return true
}

func (s *generationJobStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

func (s *generationJobStore) expired(job models.GenerationJob) bool {
	return job.FinishedAt != nil && time.Since(*job.FinishedAt) > s.ttl
}

func (s *generationJobStore) evictLocked() {
	for id, job := range s.items {
		if s.expired(job) {
			delete(s.items, id)
		}
	}
}
