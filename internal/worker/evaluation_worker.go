package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/openclass/portal-service/internal/models"
	"github.com/openclass/portal-service/internal/service"
	"github.com/openclass/portal-service/internal/worker/queue"
)

// EvaluationWorker consumes submission events and drives each through
// the AI evaluation pipeline, tracking the submission status along the
// way.
type EvaluationWorker interface {
	Start(ctx context.Context) error
	Stop() error
	ProcessSubmission(ctx context.Context, submissionID, studentEmail, fileURL string) error
	GetStats() WorkerStats
}

type WorkerStats struct {
	ActiveWorkers  int `json:"active_workers"`
	TotalProcessed int `json:"total_processed"`
	FailedJobs     int `json:"failed_jobs"`
	QueueLength    int `json:"queue_length"`
}

type evaluationWorker struct {
	workerPool    *WorkerPool
	queueConsumer queue.RabbitMQConsumer
	submissions   service.SubmissionService
	evaluations   service.EvaluationService
	logger        zerolog.Logger
	stats         WorkerStats
	statsMutex    sync.RWMutex
	startTime     time.Time
}

func NewEvaluationWorker(
	workerPool *WorkerPool,
	queueConsumer queue.RabbitMQConsumer,
	submissions service.SubmissionService,
	evaluations service.EvaluationService,
	logger zerolog.Logger,
) EvaluationWorker {
	return &evaluationWorker{
		workerPool:    workerPool,
		queueConsumer: queueConsumer,
		submissions:   submissions,
		evaluations:   evaluations,
		logger:        logger,
		startTime:     time.Now(),
	}
}

func (w *evaluationWorker) Start(ctx context.Context) error {
	if err := w.workerPool.Start(ctx); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}

	msgs, err := w.queueConsumer.Consume(ctx)
	if err != nil {
		return fmt.Errorf("failed to start consuming messages: %w", err)
	}

	go w.processMessages(ctx, msgs)

	w.logger.Info().Msg("Evaluation worker started")
	return nil
}

func (w *evaluationWorker) Stop() error {
	if err := w.workerPool.Stop(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to stop worker pool")
	}

	if err := w.queueConsumer.Close(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to close queue consumer")
	}

	w.logger.Info().
		Int("total_processed", w.stats.TotalProcessed).
		Int("failed_jobs", w.stats.FailedJobs).
		Dur("uptime", time.Since(w.startTime)).
		Msg("Evaluation worker stopped")

	return nil
}

func (w *evaluationWorker) processMessages(ctx context.Context, msgs <-chan queue.RabbitMQMessage) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Stopping message processing")
			return
		case msg, ok := <-msgs:
			if !ok {
				w.logger.Warn().Msg("Message channel closed")
				return
			}

			err := w.workerPool.Submit(func() {
				if err := w.processMessage(ctx, msg); err != nil {
					w.logger.Error().Err(err).Msg("Failed to process submission event")

					w.statsMutex.Lock()
					w.stats.FailedJobs++
					w.statsMutex.Unlock()

					// Permanent failures are acked: requeueing a bad
					// payload would loop forever.
					if isPermanentError(err) {
						if ackErr := msg.Ack(false); ackErr != nil {
							w.logger.Error().Err(ackErr).Msg("Failed to ack message")
						}
						return
					}

					if nackErr := msg.Nack(false, true); nackErr != nil {
						w.logger.Error().Err(nackErr).Msg("Failed to nack message")
					}
					return
				}

				if err := msg.Ack(false); err != nil {
					w.logger.Error().Err(err).Msg("Failed to ack message")
				}

				w.statsMutex.Lock()
				w.stats.TotalProcessed++
				w.statsMutex.Unlock()
			})
			if err != nil {
				// The delivery was never handed to a worker; requeue it
				// so the broker redelivers instead of pinning a
				// prefetch slot on an unsettled message.
				w.logger.Error().Err(err).Msg("Failed to submit evaluation task")
				if nackErr := msg.Nack(false, true); nackErr != nil {
					w.logger.Error().Err(nackErr).Msg("Failed to nack message")
				}
			}
		}
	}
}

func (w *evaluationWorker) processMessage(ctx context.Context, msg queue.RabbitMQMessage) error {
	var event models.SubmissionCreatedEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return permanent(fmt.Errorf("failed to unmarshal event: %w", err))
	}

	if strings.TrimSpace(event.SubmissionID) == "" {
		return permanent(errors.New("empty submission_id"))
	}
	if strings.TrimSpace(event.StudentEmail) == "" {
		return permanent(errors.New("empty student_email"))
	}
	if strings.TrimSpace(event.FileURL) == "" {
		return permanent(errors.New("empty file_url"))
	}

	w.logger.Info().
		Str("submission_id", event.SubmissionID).
		Str("student_email", event.StudentEmail).
		Msg("Processing submission evaluation")

	return w.ProcessSubmission(ctx, event.SubmissionID, event.StudentEmail, event.FileURL)
}

// ProcessSubmission marks the submission evaluating, runs the AI
// pipeline and records the terminal status. Failures after the status
// flip are permanent: the submission is marked failed and the message
// is not retried.
func (w *evaluationWorker) ProcessSubmission(ctx context.Context, submissionID, studentEmail, fileURL string) error {
	submission, err := w.submissions.GetSubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			return permanent(fmt.Errorf("submission %s not found: %w", submissionID, err))
		}
		return fmt.Errorf("failed to get submission: %w", err)
	}

	if submission.Status == models.SubmissionStatusEvaluated.String() {
		w.logger.Warn().
			Str("submission_id", submissionID).
			Msg("Submission already evaluated, skipping")
		return nil
	}

	if err := w.submissions.UpdateStatus(ctx, submissionID, models.SubmissionStatusEvaluating.String()); err != nil {
		return fmt.Errorf("failed to mark submission evaluating: %w", err)
	}

	startTime := time.Now()
	result, err := w.evaluations.EvaluateSubmission(ctx, studentEmail, fileURL)
	if err != nil {
		if updateErr := w.submissions.UpdateStatus(ctx, submissionID, models.SubmissionStatusFailed.String()); updateErr != nil {
			w.logger.Error().Err(updateErr).Msg("Failed to mark submission failed")
		}
		return permanent(fmt.Errorf("failed to evaluate submission: %w", err))
	}

	if err := w.submissions.UpdateStatus(ctx, submissionID, models.SubmissionStatusEvaluated.String()); err != nil {
		return permanent(fmt.Errorf("failed to mark submission evaluated: %w", err))
	}

	w.logger.Info().
		Str("submission_id", submissionID).
		Float64("score", result.Score).
		Bool("fallback", result.Fallback).
		Dur("processing_time", time.Since(startTime)).
		Msg("Submission evaluation completed")

	return nil
}

func (w *evaluationWorker) GetStats() WorkerStats {
	w.statsMutex.RLock()
	defer w.statsMutex.RUnlock()

	stats := w.stats
	stats.ActiveWorkers = w.workerPool.GetActiveWorkers()
	if queueLength, err := w.queueConsumer.GetQueueLength(); err == nil {
		stats.QueueLength = queueLength
	}

	return stats
}

type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return permanentError{err: err}
}

func isPermanentError(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}
