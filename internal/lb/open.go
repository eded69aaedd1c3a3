package lb

import (
	"context"
	"fmt"
)

// OpenCapsule performs the open-gate transition for the letter with the given ID.
//
// Before OpenAt it returns a *NotYetOpenError and changes nothing. At or after
// OpenAt the first successful call sets Opened and OpenedAt; every later call
// returns the record unchanged. The transition is a conditional update, so
// concurrent openers converge on a single OpenedAt.
func (s *LBService) OpenCapsule(ctx context.Context, id string) (*Capsule, error) {
	capsule, err := s.capsules.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if capsule == nil {
		return nil, fmt.Errorf("letter %s: %w", id, ErrNotFound)
	}

	now := s.clock.Now()
	switch StateAt(capsule, now) {
	case StateLocked:
		s.logger.Debug("open rejected, letter still locked", "id", id, "open_at", capsule.OpenAt)
		return nil, &NotYetOpenError{OpenAt: capsule.OpenAt}
	case StateUnlockedRead:
		return capsule, nil
	}

	transitioned, err := s.database.MarkCapsuleOpened(ctx, id, now)
	if err != nil {
		return nil, fmt.Errorf("opening letter: %w", err)
	}
	if transitioned {
		s.logger.Info("letter opened", "id", id)
	} else {
		s.logger.Debug("letter already opened by a concurrent request", "id", id)
	}

	// Re-read so the caller sees the winning OpenedAt, ours or not.
	opened, err := s.capsules.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if opened == nil {
		return nil, fmt.Errorf("letter %s: %w", id, ErrNotFound)
	}
	return opened, nil
}
