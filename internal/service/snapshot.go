package service

import (
	"context"
	"sync"

	"weighbridge-server/internal/repository"
)

// Snapshots reads list snapshots and hands them to the notifier under one lock.
// Every mutation publishes after it commits, so the broadcast that goes out last
// was read after every committed write and sessions converge on the latest lists.
// Services that mutate the same stores must share one Snapshots.
type Snapshots struct {
	mu        sync.Mutex
	pending   repository.PendingRepository
	completed repository.CompletedRepository
	notifier  Notifier
}

func NewSnapshots(pending repository.PendingRepository, completed repository.CompletedRepository, notifier Notifier) *Snapshots {
	return &Snapshots{pending: pending, completed: completed, notifier: notifier}
}

// PublishPending broadcasts the full in-flight list.
func (s *Snapshots) PublishPending(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := s.pending.List(ctx)
	if err != nil {
		return err
	}
	s.notifier.PendingListChanged(pending)
	return nil
}

// PublishCompleted broadcasts the finalized list of one day.
func (s *Snapshots) PublishCompleted(ctx context.Context, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.completed.ListByDate(ctx, date)
	if err != nil {
		return err
	}
	s.notifier.CompletedListChanged(date, records)
	return nil
}
