package core

import (
	"context"
	"fmt"

	"farmcore/pkg/domain"
)

// StartWork starts the work clock for the active user. A user has at most
// one running interval at a time.
func (s *Service) StartWork(ctx context.Context, notes string) (domain.WorkLog, error) {
	var started domain.WorkLog
	err := s.store.Transaction(ctx, func(draft *domain.Document) error {
		user, err := actor(draft)
		if err != nil {
			return err
		}
		for i := range draft.WorkLogs {
			if draft.WorkLogs[i].UserID == user.ID && draft.WorkLogs[i].StoppedAt == nil {
				return fmt.Errorf("work clock already running for user %q", user.ID)
			}
		}
		started = domain.WorkLog{
			ID:        newID("work"),
			UserID:    user.ID,
			StartedAt: s.store.now(),
			Notes:     notes,
		}
		draft.WorkLogs = append(draft.WorkLogs, started)
		return nil
	})
	return started, err
}

// StopWork stops the active user's running work interval.
func (s *Service) StopWork(ctx context.Context) (domain.WorkLog, error) {
	var stopped domain.WorkLog
	err := s.store.Transaction(ctx, func(draft *domain.Document) error {
		user, err := actor(draft)
		if err != nil {
			return err
		}
		for i := range draft.WorkLogs {
			if draft.WorkLogs[i].UserID == user.ID && draft.WorkLogs[i].StoppedAt == nil {
				now := s.store.now()
				draft.WorkLogs[i].StoppedAt = &now
				stopped = domain.CloneWorkLog(draft.WorkLogs[i])
				return nil
			}
		}
		return fmt.Errorf("no running work clock for user %q", user.ID)
	})
	return stopped, err
}

// ListWorkLogs returns all work intervals of one user, newest first.
func (s *Service) ListWorkLogs(userID string) []domain.WorkLog {
	doc := s.store.Get()
	var out []domain.WorkLog
	for i := len(doc.WorkLogs) - 1; i >= 0; i-- {
		if doc.WorkLogs[i].UserID == userID {
			out = append(out, domain.CloneWorkLog(doc.WorkLogs[i]))
		}
	}
	return out
}
