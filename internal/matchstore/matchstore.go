// Package matchstore keeps in-progress matches in a durable key-value
// store, keyed by the hosting channel ID — the only index the calling
// layer has.
package matchstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/keshon/datastore"

	"server-arcade/internal/game"
)

var (
	ErrMatchNotFound  = errors.New("no match running here")
	ErrDuplicateMatch = errors.New("a match is already running here")
)

// Store wraps the datastore with typed match records. The datastore
// keeps values as generic maps after a reload, so records go through a
// JSON round-trip on every read.
type Store struct {
	ds *datastore.DataStore

	// Serializes create/update/delete so read-mutate-write cycles on
	// the same key cannot interleave.
	mu sync.Mutex
}

func New(filePath string) (*Store, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Store{ds: ds}, nil
}

func (s *Store) Close() error {
	return s.ds.Close()
}

func (s *Store) decode(raw any) (*game.Match, error) {
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("error marshalling data: %w", err)
	}

	var match game.Match
	if err := json.Unmarshal(jsonData, &match); err != nil {
		return nil, fmt.Errorf("error unmarshalling to *Match: %w", err)
	}
	return &match, nil
}

// Create stores a new match under its channel key. Fails with
// ErrDuplicateMatch when the channel already hosts one.
func (s *Store) Create(match *game.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ds.Get(match.ID); exists {
		return ErrDuplicateMatch
	}
	s.ds.Add(match.ID, match)
	return nil
}

// Get returns the match hosted on the channel, or ErrMatchNotFound.
func (s *Store) Get(matchID string) (*game.Match, error) {
	raw, exists := s.ds.Get(matchID)
	if !exists {
		return nil, ErrMatchNotFound
	}
	return s.decode(raw)
}

// Update re-reads the match, applies the mutator and writes the result
// back. An error returned by the mutator aborts the write; a match that
// vanished concurrently surfaces as ErrMatchNotFound.
func (s *Store) Update(matchID string, mutate func(*game.Match) error) (*game.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, exists := s.ds.Get(matchID)
	if !exists {
		return nil, ErrMatchNotFound
	}
	match, err := s.decode(raw)
	if err != nil {
		return nil, err
	}

	if err := mutate(match); err != nil {
		return nil, err
	}

	s.ds.Add(matchID, match)
	return match, nil
}

// Delete removes the active record. Deleting a missing key is a no-op.
func (s *Store) Delete(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds.Delete(matchID)
}
