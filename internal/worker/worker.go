// Package worker processes queued notification jobs: it renders a
// notification for application activity and records it as an email log.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tsunagu-app/backend/internal/emaillogs"
	"github.com/tsunagu-app/backend/internal/models"
	"github.com/tsunagu-app/backend/pkg/queue"
)

// NotificationProcessor consumes notification jobs and writes email
// logs. Delivery to an actual mail or push provider happens outside
// this service.
type NotificationProcessor struct {
	emailRepo *emaillogs.Repository
	queue     *queue.Queue
	logger    *zap.Logger
}

// NewNotificationProcessor creates a notification processor.
func NewNotificationProcessor(emailRepo *emaillogs.Repository, q *queue.Queue, logger *zap.Logger) *NotificationProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationProcessor{emailRepo: emailRepo, queue: q, logger: logger}
}

// Run consumes jobs until ctx is cancelled. Failed jobs are retried
// with backoff and land in the DLQ after exhausting retries.
func (p *NotificationProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("dequeue failed", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.Error(err), zap.String("job_id", job.ID))
			_ = p.queue.Retry(ctx, job)
		}
	}
}

// Process executes one notification job.
func (p *NotificationProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeNotification {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.NotificationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	subject, body := Render(payload)
	log := &models.EmailLog{
		ApplicationID: payload.ApplicationID,
		Recipient:     payload.Recipient,
		Kind:          string(payload.Kind),
		Subject:       subject,
		Body:          body,
	}
	if err := p.emailRepo.Create(ctx, log); err != nil {
		return fmt.Errorf("write email log: %w", err)
	}
	p.logger.Info("notification recorded",
		zap.String("kind", string(payload.Kind)),
		zap.String("application_id", payload.ApplicationID.String()))
	return nil
}

// Render produces the subject and body for a notification payload.
func Render(payload queue.NotificationPayload) (subject, body string) {
	title := payload.EventTitle
	if title == "" {
		title = "an event"
	}
	switch payload.Kind {
	case queue.NotificationApplicationReceived:
		subject = fmt.Sprintf("New application for %s", title)
		body = fmt.Sprintf("%s applied to %s.", payload.ApplicantName, title)
		if payload.Message != "" {
			body += " Message: " + payload.Message
		}
	case queue.NotificationStatusChanged:
		subject = fmt.Sprintf("Your application for %s was %s", title, payload.Status)
		body = fmt.Sprintf("Your application for %s is now %s.", title, payload.Status)
		if payload.Response != "" {
			body += " Organizer response: " + payload.Response
		}
	case queue.NotificationCancelled:
		subject = fmt.Sprintf("Application for %s was withdrawn", title)
		body = fmt.Sprintf("%s withdrew their application for %s.", payload.ApplicantName, title)
	default:
		subject = "Application update"
		body = fmt.Sprintf("Application %s was updated.", payload.ApplicationID)
	}
	return subject, body
}
