// Package memory holds the process-lifetime stores. Nothing here is
// durable: identities and transcripts vanish on restart, which is a
// decision left to a future storage layer.
package memory

import (
	"sync"

	"github.com/boddenberg/citizen-ai-portal/internal/domain"
)

// TranscriptStore keeps one append-only transcript per identity.
// The outer lock guards the identity map; each transcript carries its
// own lock so concurrent messages for different identities never
// contend with each other.
type TranscriptStore struct {
	mu          sync.RWMutex
	transcripts map[string]*transcript
}

type transcript struct {
	mu      sync.Mutex
	entries []domain.TranscriptEntry
}

// NewTranscriptStore creates an empty store.
func NewTranscriptStore() *TranscriptStore {
	return &TranscriptStore{
		transcripts: make(map[string]*transcript),
	}
}

// forIdentity returns the transcript for an identity, creating it
// lazily on first use.
func (s *TranscriptStore) forIdentity(identity string) *transcript {
	s.mu.RLock()
	t, ok := s.transcripts[identity]
	s.mu.RUnlock()
	if ok {
		return t
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok = s.transcripts[identity]; ok {
		return t
	}
	t = &transcript{}
	s.transcripts[identity] = t
	return t
}

// Append adds entries to an identity's transcript in one critical
// section, so a user/assistant pair is never split by a concurrent
// append for the same identity.
func (s *TranscriptStore) Append(identity string, entries ...domain.TranscriptEntry) {
	t := s.forIdentity(identity)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entries...)
}

// Get returns a copy of the identity's transcript. An identity that
// has never sent a message gets an empty transcript, not nil.
func (s *TranscriptStore) Get(identity string) []domain.TranscriptEntry {
	t := s.forIdentity(identity)

	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.TranscriptEntry, len(t.entries))
	copy(out, t.entries)
	return out
}
