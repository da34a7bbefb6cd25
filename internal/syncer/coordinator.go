// Package syncer keeps a remote store eventually consistent with local
// session state without ever blocking user interaction.
package syncer

import (
	"context"
	"log"
	"sync"
	"time"

	"intakeflow/internal/model"
)

const (
	// DefaultDebounce is the quiescence window before a snapshot is pushed.
	DefaultDebounce = 300 * time.Millisecond

	saveTimeout = 10 * time.Second
	// offlineAfterFailures: a single failed save is treated as transient;
	// only consecutive failures flip the online signal.
	offlineAfterFailures = 2
)

// Store is the remote persistence endpoint, addressed implicitly by the
// (clientId, questionnaireId) pair inside the snapshot.
type Store interface {
	Save(ctx context.Context, state *model.SessionState) error
}

// Cache is the local fallback written alongside every push for offline
// continuity. Failures here are logged and ignored.
type Cache interface {
	Set(ctx context.Context, state *model.SessionState) error
}

// Coordinator debounces full-snapshot pushes of session state. The snapshot
// function is evaluated at flush time, never at arm time, so rapid edits
// right before the timer fires are never lost.
type Coordinator struct {
	store    Store
	cache    Cache
	snapshot func() *model.SessionState
	debounce time.Duration

	mu           sync.Mutex
	timer        *time.Timer
	generation   uint64
	syncing      bool
	online       bool
	failures     int
	lastSyncedAt time.Time
	closed       bool

	now func() time.Time
}

// New builds a coordinator around a snapshot source. cache may be nil.
func New(store Store, cache Cache, snapshot func() *model.SessionState) *Coordinator {
	return &Coordinator{
		store:    store,
		cache:    cache,
		snapshot: snapshot,
		debounce: DefaultDebounce,
		online:   true,
		now:      time.Now,
	}
}

// Schedule (re)arms the debounce timer. Called after every local mutation;
// only after the debounce window of quiescence does the push happen.
func (c *Coordinator) Schedule() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	gen := c.generation
	c.timer = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		// A ForceSync that ran after this timer was armed already pushed a
		// newer snapshot; sending again could only repeat it, so skip.
		stale := c.closed || gen != c.generation
		c.mu.Unlock()
		if stale {
			return
		}
		c.flush(context.Background())
	})
}

// ForceSync flushes the current snapshot immediately, superseding any armed
// debounce timer. Used for manual save, final submission, and reset - the
// remote store reflects local state before the caller acknowledges. The
// error is informational; callers log it and move on.
func (c *Coordinator) ForceSync(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.generation++
	c.mu.Unlock()
	return c.flush(ctx)
}

// Status exposes the three independent UI signals.
func (c *Coordinator) Status() (isSyncing, isOnline bool, lastSyncedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.syncing, c.online, c.lastSyncedAt
}

// Close cancels any pending flush. Local state is untouched.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Coordinator) flush(ctx context.Context) error {
	state := c.snapshot()
	if state == nil {
		return nil
	}

	c.mu.Lock()
	c.syncing = true
	c.mu.Unlock()

	saveCtx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	if c.cache != nil {
		if err := c.cache.Set(saveCtx, state); err != nil {
			log.Printf("[sync] Warning: fallback cache write failed for %s/%s: %v",
				state.ClientID, state.QuestionnaireID, err)
		}
	}

	err := c.store.Save(saveCtx, state)

	c.mu.Lock()
	c.syncing = false
	if err != nil {
		c.failures++
		if c.failures >= offlineAfterFailures {
			c.online = false
		}
	} else {
		c.failures = 0
		c.online = true
		c.lastSyncedAt = c.now()
	}
	c.mu.Unlock()

	if err != nil {
		// Never surfaced as a blocking error: the user keeps answering and
		// the next debounce cycle or force-sync retries with a full snapshot.
		log.Printf("[sync] Warning: save failed for %s/%s: %v",
			state.ClientID, state.QuestionnaireID, err)
	}
	return err
}
