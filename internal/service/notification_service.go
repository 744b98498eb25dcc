package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/workforce-api/internal/models"
	"github.com/noah-isme/workforce-api/pkg/jobs"
)

const availabilityEventJob = "availability_event"

// Notifier delivers a committed availability event to its listeners.
type Notifier interface {
	Notify(ctx context.Context, event models.AvailabilityEvent) error
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type notificationRecorder interface {
	RecordNotification(eventType models.AvailabilityEventType, outcome string)
}

// NotificationService queues availability events for asynchronous delivery.
type NotificationService struct {
	queue    jobEnqueuer
	notifier Notifier
	metrics  notificationRecorder
	logger   *zap.Logger
}

// NewNotificationService constructs the service. Attach the queue with SetQueue once it is built
// around Handle.
func NewNotificationService(notifier Notifier, metrics notificationRecorder, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &NotificationService{notifier: notifier, metrics: metrics, logger: logger}
}

// SetQueue attaches the worker queue used by Publish.
func (s *NotificationService) SetQueue(queue jobEnqueuer) {
	s.queue = queue
}

// Publish enqueues the event. Without a queue the event is delivered inline.
func (s *NotificationService) Publish(ctx context.Context, event models.AvailabilityEvent) error {
	if s.queue == nil {
		return s.deliver(ctx, event)
	}
	if err := s.queue.Enqueue(jobs.Job{Type: availabilityEventJob, Payload: event}); err != nil {
		s.record(event.Type, "dropped")
		return fmt.Errorf("enqueue %s: %w", event.Type, err)
	}
	return nil
}

// Handle is the queue handler delivering one job.
func (s *NotificationService) Handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(models.AvailabilityEvent)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	return s.deliver(ctx, event)
}

// Exhausted records an event that could not be delivered after all retries.
func (s *NotificationService) Exhausted(job jobs.Job, err error) {
	if event, ok := job.Payload.(models.AvailabilityEvent); ok {
		s.record(event.Type, "failed")
	}
}

func (s *NotificationService) deliver(ctx context.Context, event models.AvailabilityEvent) error {
	if err := s.notifier.Notify(ctx, event); err != nil {
		return err
	}
	s.record(event.Type, "delivered")
	return nil
}

func (s *NotificationService) record(eventType models.AvailabilityEventType, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordNotification(eventType, outcome)
	}
}

// LogNotifier writes events to the structured log.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier builds a notifier that only logs.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the event.
func (n *LogNotifier) Notify(ctx context.Context, event models.AvailabilityEvent) error {
	n.logger.Info("availability event",
		zap.String("type", string(event.Type)),
		zap.String("organization_id", event.OrganizationID),
		zap.String("subject_id", event.SubjectID),
		zap.Strings("block_ids", event.BlockIDs),
		zap.String("strategy", string(event.Strategy)),
		zap.String("actor_id", event.ActorID),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}
