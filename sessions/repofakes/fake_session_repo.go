package fakesessionrepo

import (
	"context"
	"maps"
	"sync"

	apperrors "github.com/jrsteele09/go-mindcare-client/internal/errors"
	"github.com/jrsteele09/go-mindcare-client/sessions"
	"github.com/pkg/errors"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo keeps the two storage entries in memory, the same layout
// browser local storage had.
type FakeSessionRepo struct {
	entries map[string]string
	saves   int
	clears  int
	lock    sync.RWMutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		entries: make(map[string]string),
	}
}

func (sr *FakeSessionRepo) Load(_ context.Context) (*sessions.Record, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	record, ok, err := sessions.DecodeEntries(sr.entries)
	if err != nil {
		return nil, errors.Wrap(err, "[FakeSessionRepo.Load]")
	}
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return record, nil
}

func (sr *FakeSessionRepo) Save(_ context.Context, record sessions.Record) error {
	entries, err := sessions.EncodeEntries(record)
	if err != nil {
		return errors.Wrap(err, "[FakeSessionRepo.Save]")
	}

	sr.lock.Lock()
	defer sr.lock.Unlock()
	sr.entries = entries
	sr.saves++
	return nil
}

func (sr *FakeSessionRepo) Clear(_ context.Context) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()
	sr.entries = make(map[string]string)
	sr.clears++
	return nil
}

// Entries returns a copy of the raw stored entries
func (sr *FakeSessionRepo) Entries() map[string]string {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return maps.Clone(sr.entries)
}

// SetEntry writes a single raw entry, bypassing the all-or-nothing rule.
// Used to simulate storage left behind by older clients.
func (sr *FakeSessionRepo) SetEntry(key, value string) {
	sr.lock.Lock()
	defer sr.lock.Unlock()
	sr.entries[key] = value
}

// Saves is the number of successful Save calls
func (sr *FakeSessionRepo) Saves() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sr.saves
}

// Clears is the number of Clear calls
func (sr *FakeSessionRepo) Clears() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sr.clears
}
