package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"convsync/internal/bus"
	"convsync/internal/conv"
	"convsync/internal/status"
	"convsync/internal/store"
)

// Source provides remote conversation snapshots. Implemented by the
// backend HTTP client.
type Source interface {
	FetchConversations(ctx context.Context) ([]*conv.RemoteConversation, error)
}

// BusNotifier forwards conversation entity changes onto the event bus.
type BusNotifier struct {
	bus *bus.Bus
}

// NewBusNotifier creates a notifier publishing to the given bus.
func NewBusNotifier(b *bus.Bus) *BusNotifier {
	return &BusNotifier{bus: b}
}

func (n *BusNotifier) ConversationChanged(id, field string) {
	n.bus.Publish(bus.Event{
		Kind:      bus.KindConversationUpdated,
		Timestamp: time.Now(),
		Payload: map[string]string{
			"conversation_id": id,
			"field":           field,
		},
	})
}

func (n *BusNotifier) ConversationCleared(id string, timestamp int64) {
	n.bus.Publish(bus.Event{
		Kind:      bus.KindConversationCleared,
		Timestamp: time.Now(),
		Payload: map[string]any{
			"conversation_id": id,
			"cleared_at":      timestamp,
		},
	})
}

// fatalError marks a failure the sync loop cannot retry its way out of,
// such as losing the local store.
type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

func isFatal(err error) bool {
	var fe *fatalError
	return errors.As(err, &fe)
}

// ReconcileResult is the payload of sync.reconciled events.
type ReconcileResult struct {
	RunID  string
	Local  int
	Remote int
	Merged int
}

// Engine drives the sync cycle: fetch remote conversation state, merge it
// with the persisted local state, store the result, and rebuild the live
// entity set.
type Engine struct {
	db       *store.DB
	bus      *bus.Bus
	mapper   *conv.Mapper
	source   Source
	machine  *status.Machine
	logger   *zap.Logger
	interval time.Duration
	notifier conv.Notifier

	mu       sync.RWMutex
	entities map[string]*conv.Conversation

	cancel context.CancelFunc
	done   chan struct{}
}

// NewEngine creates a sync engine.
func NewEngine(db *store.DB, b *bus.Bus, mapper *conv.Mapper, source Source, machine *status.Machine, logger *zap.Logger, interval time.Duration) *Engine {
	return &Engine{
		db:       db,
		bus:      b,
		mapper:   mapper,
		source:   source,
		machine:  machine,
		logger:   logger,
		interval: interval,
		notifier: NewBusNotifier(b),
		entities: make(map[string]*conv.Conversation),
	}
}

// Start moves the daemon into the sync loop: an immediate reconcile, then
// periodic ones at the configured interval, plus push-style payloads
// arriving as backend.conversations bus events.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.machine.Transition(status.Loading); err != nil {
		return err
	}
	ctx, e.cancel = context.WithCancel(ctx)
	e.done = make(chan struct{})
	ch, unsub := e.bus.Subscribe("backend.", 64)

	go func() {
		defer close(e.done)
		defer unsub()
		if err := e.Reconcile(ctx); err != nil {
			e.logger.Error("initial reconcile failed", zap.Error(err))
			if isFatal(err) {
				return
			}
		}
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := e.Reconcile(ctx); err != nil {
					e.logger.Error("reconcile failed", zap.Error(err))
					if isFatal(err) {
						return
					}
				}
			case evt := <-ch:
				if fatal := e.handleEvent(ctx, evt); fatal {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func (e *Engine) handleEvent(ctx context.Context, evt bus.Event) bool {
	switch evt.Kind {
	case bus.KindBackendConversations:
		remote, ok := evt.Payload.([]*conv.RemoteConversation)
		if !ok {
			return false
		}
		if err := e.Apply(ctx, remote); err != nil {
			e.logger.Error("failed to apply pushed payload", zap.Error(err), zap.Int("count", len(remote)))
			return isFatal(err)
		}
	}
	return false
}

// Stop stops the sync loop and waits for it to drain.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
		<-e.done
	}
}

// Reconcile runs a single sync cycle against the configured source. On
// failure the state machine moves to Degraded and a sync.failed event is
// published; the next cycle retries.
func (e *Engine) Reconcile(ctx context.Context) error {
	return e.runCycle(ctx, e.source.FetchConversations)
}

// Apply runs a sync cycle against a pushed remote payload instead of
// fetching one.
func (e *Engine) Apply(ctx context.Context, remote []*conv.RemoteConversation) error {
	return e.runCycle(ctx, func(context.Context) ([]*conv.RemoteConversation, error) {
		return remote, nil
	})
}

func (e *Engine) runCycle(ctx context.Context, fetch func(context.Context) ([]*conv.RemoteConversation, error)) error {
	runID := uuid.New().String()
	e.bus.Publish(bus.Event{
		Kind:      bus.KindSyncStarted,
		Timestamp: time.Now(),
		Payload:   map[string]string{"run_id": runID},
	})

	result, err := e.reconcile(ctx, runID, fetch)
	if err != nil {
		// A lost store is unrecoverable; backend failures retry next cycle.
		next := status.Degraded
		if isFatal(err) {
			next = status.Error
		}
		if terr := e.machine.Transition(next); terr != nil {
			e.logger.Warn("state transition failed", zap.Error(terr))
		}
		e.bus.Publish(bus.Event{
			Kind:      bus.KindSyncFailed,
			Timestamp: time.Now(),
			Payload: map[string]string{
				"run_id": runID,
				"error":  err.Error(),
			},
		})
		return err
	}

	e.bus.Publish(bus.Event{
		Kind:      bus.KindSyncReconciled,
		Timestamp: time.Now(),
		Payload:   result,
	})
	e.logger.Info("reconcile complete",
		zap.String("run_id", runID),
		zap.Int("local", result.Local),
		zap.Int("remote", result.Remote),
		zap.Int("merged", result.Merged),
	)
	return nil
}

func (e *Engine) reconcile(ctx context.Context, runID string, fetch func(context.Context) ([]*conv.RemoteConversation, error)) (ReconcileResult, error) {
	if err := e.machine.Transition(status.Fetching); err != nil {
		return ReconcileResult{}, err
	}
	remote, err := fetch(ctx)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("fetch remote state: %w", err)
	}

	if err := e.machine.Transition(status.Merging); err != nil {
		return ReconcileResult{}, err
	}
	local, err := e.db.ListConversations()
	if err != nil {
		return ReconcileResult{}, &fatalError{fmt.Errorf("load local state: %w", err)}
	}

	merged := e.mapper.Merge(local, remote)
	if err := e.db.UpsertConversations(merged); err != nil {
		return ReconcileResult{}, &fatalError{fmt.Errorf("persist merged state: %w", err)}
	}

	if err := e.rebuild(merged); err != nil {
		return ReconcileResult{}, fmt.Errorf("rebuild entities: %w", err)
	}

	if err := e.machine.Transition(status.Ready); err != nil {
		return ReconcileResult{}, err
	}
	return ReconcileResult{
		RunID:  runID,
		Local:  len(local),
		Remote: len(remote),
		Merged: len(merged),
	}, nil
}

// rebuild replaces the live entity set from the merged records. New
// entities are built silently; the notifier is only attached afterwards
// so that replaying stored state does not emit change events.
func (e *Engine) rebuild(records []*conv.LocalConversation) error {
	if len(records) == 0 {
		e.mu.Lock()
		e.entities = make(map[string]*conv.Conversation)
		e.mu.Unlock()
		return nil
	}

	payloads := make([]conv.Payload, 0, len(records))
	for _, rec := range records {
		payloads = append(payloads, conv.LocalPayload(rec))
	}
	entities, err := e.mapper.BuildConversations(payloads, 1)
	if err != nil {
		return err
	}

	next := make(map[string]*conv.Conversation, len(entities))
	for _, entity := range entities {
		entity.SetNotifier(e.notifier)
		next[entity.ID] = entity
	}

	e.mu.Lock()
	e.entities = next
	e.mu.Unlock()
	return nil
}

// Conversation returns the live entity for the given id, or nil.
func (e *Engine) Conversation(id string) *conv.Conversation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.entities[id]
}

// Conversations returns the current live entity set.
func (e *Engine) Conversations() []*conv.Conversation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*conv.Conversation, 0, len(e.entities))
	for _, c := range e.entities {
		out = append(out, c)
	}
	return out
}
