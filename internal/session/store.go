package session

import (
	"sync"
	"time"

	"ultimate-gen/internal/studio"
)

// Settings are the per-user generation defaults edited from the settings keyboard.
type Settings struct {
	AspectRatio studio.AspectRatio
	Mode        studio.Mode
	Count       int

	// MenuMessageID is the message carrying the settings keyboard, 0 if none.
	MenuMessageID int
}

type Session struct {
	UserID       int64
	Username     string
	Settings     Settings
	LastActivity time.Time
}

type Options struct {
	Defaults Settings
	// IdleTTL drops sessions untouched for longer than this on Prune; 0 keeps them forever.
	IdleTTL time.Duration
}

type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	defaults Settings
	idleTTL  time.Duration
	now      func() time.Time
}

func DefaultSettings() Settings {
	return Settings{
		AspectRatio: studio.Ratio9x16,
		Mode:        studio.ModeCreative,
		Count:       1,
	}
}

func NewStore(opts Options) *Store {
	defaults := opts.Defaults
	base := DefaultSettings()
	if defaults.AspectRatio == "" {
		defaults.AspectRatio = base.AspectRatio
	}
	if defaults.Mode == "" {
		defaults.Mode = base.Mode
	}
	if defaults.Count <= 0 {
		defaults.Count = base.Count
	}

	return &Store{
		sessions: make(map[int64]*Session),
		defaults: defaults,
		idleTTL:  opts.IdleTTL,
		now:      time.Now,
	}
}

func (s *Store) Get(userID int64, username string) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(userID, username)
	sess.LastActivity = s.now()
	return sess.Settings
}

// Update applies fn to the stored settings under the store lock and returns the result.
func (s *Store) Update(userID int64, username string, fn func(*Settings)) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(userID, username)
	sess.LastActivity = s.now()
	if fn != nil {
		fn(&sess.Settings)
	}
	return sess.Settings
}

// Reset restores the defaults but keeps the settings menu message.
func (s *Store) Reset(userID int64) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(userID, "")
	menu := sess.Settings.MenuMessageID
	sess.Settings = s.defaults
	sess.Settings.MenuMessageID = menu
	sess.LastActivity = s.now()
	return sess.Settings
}

// Prune drops idle sessions and returns how many were removed.
func (s *Store) Prune() int {
	if s.idleTTL <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTTL)
	removed := 0
	for id, sess := range s.sessions {
		if sess.LastActivity.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) getOrCreateLocked(userID int64, username string) *Session {
	if sess, ok := s.sessions[userID]; ok {
		if sess.Username == "" && username != "" {
			sess.Username = username
		}
		return sess
	}

	sess := &Session{
		UserID:       userID,
		Username:     username,
		Settings:     s.defaults,
		LastActivity: s.now(),
	}
	s.sessions[userID] = sess
	return sess
}
