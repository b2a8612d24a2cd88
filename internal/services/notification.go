package services

import (
	"context"
	"fmt"
)

// NotificationService is the MatchNotifier used by the rebuild orchestrator.
// Delivery goes through the task queue so a Redis-backed deployment sends mail
// off the request path.
type NotificationService struct {
	queue TaskQueue
}

func NewNotificationService(queue TaskQueue) *NotificationService {
	return &NotificationService{queue: queue}
}

func (s *NotificationService) NotifyNewMatches(ctx context.Context, email string, projectID uint, newCount int, totalCount int64) error {
	task := &MatchNotifyTask{
		Email:             email,
		ProjectID:         projectID,
		NewMatchesCount:   newCount,
		TotalMatchesCount: totalCount,
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		return fmt.Errorf("enqueue match notification for project %d: %w", projectID, err)
	}
	return nil
}

// EmailProcessor adapts the email service into a queue processor.
func EmailProcessor(email *EmailService) TaskProcessor {
	return func(_ context.Context, task *MatchNotifyTask) error {
		return email.SendMatchNotification(task.Email, task.ProjectID, task.NewMatchesCount, task.TotalMatchesCount)
	}
}
