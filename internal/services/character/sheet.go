package character

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/character"
	"github.com/KirkDiggler/dnd-character-sheet/internal/domain/equipment"
	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
	characters "github.com/KirkDiggler/dnd-character-sheet/internal/repositories/characters"
	"github.com/KirkDiggler/dnd-character-sheet/internal/uuid"
)

// Sheet is an open character. Commands apply to the in-memory snapshot
// immediately and persist in the background; a failed write restores the
// keys it touched to their last stored values, unless a later command has
// touched them since.
//
// Rests are the exception: they flush pending writes and go through the
// repository first, since usage resets must be atomic with storage.
type Sheet struct {
	id     string
	repo   Repository
	logger *zap.Logger
	ids    uuid.Generator

	mu       sync.Mutex
	current  *character.Character
	stored   *character.Character
	versions map[string]uint64
	keyLocks map[string]*sync.Mutex
	failures []error

	writes errgroup.Group
}

func (s *service) newSheet(char *character.Character) *Sheet {
	sh := &Sheet{
		id:       char.ID,
		repo:     s.repository,
		logger:   s.logger.With(zap.String("character_id", char.ID)),
		ids:      s.ids,
		current:  char,
		stored:   char.Clone(),
		versions: map[string]uint64{},
		keyLocks: map[string]*sync.Mutex{},
	}
	sh.writes.SetLimit(s.writeConcurrency)
	return sh
}

// ID returns the character ID
func (s *Sheet) ID() string { return s.id }

// Snapshot returns a copy of the current state
func (s *Sheet) Snapshot() *character.Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Execute applies cmds in order. Either every command applies or none do;
// a rejection leaves the sheet untouched and returns the rule error.
func (s *Sheet) Execute(ctx context.Context, cmds ...character.Command) (*character.Character, error) {
	s.mu.Lock()
	next, change, err := character.Execute(s.current, cmds...)
	if err != nil {
		s.mu.Unlock()
		return next.Clone(), err
	}
	s.current = next
	stamp := s.touch(change)
	s.mu.Unlock()

	s.persist(ctx, change, stamp)
	return next.Clone(), nil
}

// AcquireItem adds quantity copies of item under a fresh entry ID
func (s *Sheet) AcquireItem(ctx context.Context, item *equipment.ItemDefinition, quantity int) (*character.Character, error) {
	if item == nil {
		return s.Snapshot(), dnderr.InvalidArgument("item is required")
	}
	return s.Execute(ctx, character.AcquireItem{Entry: &equipment.Entry{
		ID:       s.ids.New(),
		Item:     item,
		Quantity: quantity,
	}})
}

// ShortRest resets short-recharge usage in storage, then mirrors the
// authoritative usage into the snapshot.
func (s *Sheet) ShortRest(ctx context.Context) (*character.Character, error) {
	if err := s.Wait(); err != nil {
		s.logger.Warn("pending writes failed before short rest", zap.Error(err))
	}

	keys := s.Snapshot().ShortRestResources()
	usage, err := s.repo.ShortRest(ctx, s.id, characters.ShortRestInput{ResourceKeys: keys})
	if err != nil {
		return s.Snapshot(), dnderr.Wrap(err, "failed to short rest").
			WithMeta("character_id", s.id)
	}
	return s.rest(ctx, character.ShortRest{AuthoritativeUsage: usage}, usage)
}

// LongRest resets every resource in storage, then applies the long rest.
func (s *Sheet) LongRest(ctx context.Context) (*character.Character, error) {
	if err := s.Wait(); err != nil {
		s.logger.Warn("pending writes failed before long rest", zap.Error(err))
	}

	usage, err := s.repo.LongRest(ctx, s.id)
	if err != nil {
		return s.Snapshot(), dnderr.Wrap(err, "failed to long rest").
			WithMeta("character_id", s.id)
	}
	return s.rest(ctx, character.LongRest{AuthoritativeUsage: usage}, usage)
}

func (s *Sheet) rest(ctx context.Context, cmd character.Command, usage map[string]int) (*character.Character, error) {
	s.mu.Lock()
	next, change, err := cmd.Apply(s.current)
	if err != nil {
		s.mu.Unlock()
		return next.Clone(), err
	}
	s.current = next
	// usage rows are already authoritative in storage
	stored := s.stored.Clone()
	stored.ResourceUsage = make(map[string]int, len(usage))
	for key, used := range usage {
		stored.ResourceUsage[key] = used
	}
	s.stored = stored
	change.Resources = nil
	stamp := s.touch(change)
	s.mu.Unlock()

	s.persist(ctx, change, stamp)
	return next.Clone(), nil
}

// Wait blocks until every pending write has finished and returns the
// failures seen since the last call. Do not call it concurrently with
// Execute.
func (s *Sheet) Wait() error {
	_ = s.writes.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	err := errors.Join(s.failures...)
	s.failures = nil
	return err
}

// touch bumps the version of every key in change. Callers hold mu.
func (s *Sheet) touch(change character.Change) map[string]uint64 {
	stamp := make(map[string]uint64)
	for _, key := range change.Keys() {
		s.versions[key]++
		stamp[key] = s.versions[key]
	}
	return stamp
}

func (s *Sheet) persist(ctx context.Context, change character.Change, stamp map[string]uint64) {
	if change.IsEmpty() {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.writes.Go(func() error {
		unlock := s.lockKeys(change.Keys())
		defer unlock()

		// write the newest values: a later command on the same keys may
		// already have run, and its write must not be overtaken by this one
		s.mu.Lock()
		latest := s.current
		s.mu.Unlock()

		if err := s.repo.Apply(ctx, s.id, change, latest); err != nil {
			s.compensate(change, stamp, err)
			return nil
		}
		s.recordStored(change, latest)
		return nil
	})
}

// lockKeys serializes writes per key. Keys arrive sorted so concurrent
// writers always lock in the same order.
func (s *Sheet) lockKeys(keys []string) func() {
	s.mu.Lock()
	locks := make([]*sync.Mutex, 0, len(keys))
	for i, key := range keys {
		if i > 0 && keys[i-1] == key {
			continue
		}
		l, ok := s.keyLocks[key]
		if !ok {
			l = &sync.Mutex{}
			s.keyLocks[key] = l
		}
		locks = append(locks, l)
	}
	s.mu.Unlock()

	for _, l := range locks {
		l.Lock()
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

func (s *Sheet) recordStored(change character.Change, written *character.Character) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, err := character.Restore(s.stored, written, change)
	if err != nil {
		s.logger.Error("failed to track stored state", zap.Error(err))
		return
	}
	s.stored = stored
}

// compensate restores the keys a failed write touched to their last stored
// values, skipping keys a later command has re-touched.
func (s *Sheet) compensate(change character.Change, stamp map[string]uint64, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures = append(s.failures, cause)

	keep := make(map[string]bool, len(stamp))
	for key, version := range stamp {
		if s.versions[key] == version {
			keep[key] = true
		}
	}
	undo := change.Only(keep)
	if undo.IsEmpty() {
		s.logger.Warn("write failed; every key was re-touched, nothing to restore",
			zap.Strings("keys", change.Keys()),
			zap.Error(cause))
		return
	}

	restored, err := character.Restore(s.current, s.stored, undo)
	if err != nil {
		s.logger.Error("failed to restore after write failure",
			zap.Strings("keys", undo.Keys()),
			zap.Error(err))
		s.failures = append(s.failures, err)
		return
	}
	s.current = restored
	s.logger.Warn("write failed; restored touched keys",
		zap.Strings("keys", undo.Keys()),
		zap.Error(cause))
}
