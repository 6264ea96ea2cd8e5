// Package memory implements the domain repositories in process memory.
// It backs STORAGE_DRIVER=memory for local development and the app tests.
// Integrity rules mirror the PostgreSQL schema: unique usernames, emails and
// source names, and foreign keys from rewrites and headlines.
package memory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pscheid92/headlinepulse/internal/domain"
)

// Store holds all entities behind a single lock. Slices keep insertion order.
type Store struct {
	mu        sync.RWMutex
	users     []domain.User
	sources   []domain.Source
	headlines []domain.Headline
	rewrites  []domain.Rewrite
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Users() *UserRepo         { return &UserRepo{s: s} }
func (s *Store) Sources() *SourceRepo     { return &SourceRepo{s: s} }
func (s *Store) Headlines() *HeadlineRepo { return &HeadlineRepo{s: s} }
func (s *Store) Rewrites() *RewriteRepo   { return &RewriteRepo{s: s} }

func (s *Store) userIndex(id uuid.UUID) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) headlineIndex(id uuid.UUID) int {
	for i := range s.headlines {
		if s.headlines[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) sourceIndex(id uuid.UUID) int {
	for i := range s.sources {
		if s.sources[i].ID == id {
			return i
		}
	}
	return -1
}
