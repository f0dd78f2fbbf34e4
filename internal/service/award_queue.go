package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecolearn/ecolearn-api/pkg/jobs"
)

// AwardPayload is the body of a queued ecoPoints award.
type AwardPayload struct {
	StudentID string
	Delta     int
	Reason    string
}

const awardJobType = "award_points"

// NewAwardHandler adapts the gamification service into a queue handler so
// failed awards are retried instead of failing the triggering request.
func NewAwardHandler(g *GamificationService) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		payload, ok := job.Payload.(AwardPayload)
		if !ok {
			return fmt.Errorf("unexpected payload type %T for job %s", job.Payload, job.ID)
		}
		_, err := g.AwardPoints(ctx, payload.StudentID, payload.Delta, payload.Reason)
		return err
	}
}

// AwardEnqueuer pushes award jobs onto the background queue, degrading to a
// logged drop when the queue rejects the job.
type AwardEnqueuer struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewAwardEnqueuer constructs an AwardEnqueuer.
func NewAwardEnqueuer(queue *jobs.Queue, logger *zap.Logger) *AwardEnqueuer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AwardEnqueuer{queue: queue, logger: logger}
}

// Enqueue schedules an asynchronous award.
func (e *AwardEnqueuer) Enqueue(studentID string, delta int, reason string) {
	if e.queue == nil {
		e.logger.Warn("award queue unavailable, dropping award",
			zap.String("student_id", studentID), zap.Int("delta", delta), zap.String("reason", reason))
		return
	}
	err := e.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    awardJobType,
		Payload: AwardPayload{StudentID: studentID, Delta: delta, Reason: reason},
	})
	if err != nil {
		e.logger.Error("failed to enqueue award",
			zap.String("student_id", studentID), zap.Int("delta", delta), zap.Error(err))
	}
}
