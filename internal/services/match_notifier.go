package services

import "context"

// MatchNotifier delivers the "new matches" message to a project's client.
// Callers treat every error as non-fatal.
type MatchNotifier interface {
	NotifyNewMatches(ctx context.Context, email string, projectID uint, newCount int, totalCount int64) error
}
