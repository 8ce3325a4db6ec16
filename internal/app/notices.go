package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"courtlens/pkg/metrics"
)

// Notice is a transient, dismissible error surfaced to the UI. Remote
// failures never crash the session; they become notices while the last
// good display stays in place.
type Notice struct {
	ID      string    `json:"id"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// addNoticeLocked appends a notice, dropping the oldest past the cap.
// Callers must hold s.mu.
func (s *Service) addNoticeLocked(kind string, err error) {
	n := Notice{
		ID:      uuid.NewString(),
		Kind:    kind,
		Message: err.Error(),
		At:      time.Now(),
	}
	s.notices = append(s.notices, n)
	if len(s.notices) > s.noticeCap {
		s.notices = s.notices[len(s.notices)-s.noticeCap:]
	}
	metrics.UpdateOpenNotices(len(s.notices))
}

// Notices returns the open notices, oldest first.
func (s *Service) Notices(_ context.Context) []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notice(nil), s.notices...)
}

// DismissNotice removes a notice by id and reports whether it existed.
func (s *Service) DismissNotice(_ context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notices {
		if n.ID == id {
			s.notices = append(s.notices[:i], s.notices[i+1:]...)
			metrics.UpdateOpenNotices(len(s.notices))
			return true
		}
	}
	return false
}
