package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ce-fello/synergy-crm/src/internal/kv"
	"github.com/ce-fello/synergy-crm/src/internal/model"

	"go.uber.org/zap"
)

type entity interface {
	EntityID() string
}

// Collection is one named, lazily seeded slice of records mirrored as a whole
// into the key-value store after every mutation. Writers are serialized per
// collection; the last write wins.
type Collection[T entity] struct {
	name  string
	kv    *kv.Store
	log   *zap.Logger
	seed  func() []T
	clone func(T) T

	mu     sync.Mutex
	loaded bool
	items  []T
}

func newCollection[T entity](name string, store *kv.Store, logger *zap.Logger, seed func() []T, clone func(T) T) *Collection[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Collection[T]{name: name, kv: store, log: logger, seed: seed, clone: clone}
}

// load must be called with c.mu held.
func (c *Collection[T]) load(ctx context.Context) error {
	if c.loaded {
		return nil
	}
	items, err := kv.Load(ctx, c.kv, c.name, c.seed())
	if err != nil && !errors.Is(err, model.ErrPersist) {
		return err
	}
	if err != nil {
		c.log.Warn(c.name+".load: seed not persisted", zap.Error(err))
	}
	if items == nil {
		items = []T{}
	}
	c.items = items
	c.loaded = true
	c.log.Debug(c.name+".load: success", zap.Int("items", len(items)))
	return nil
}

func (c *Collection[T]) persist(ctx context.Context) error {
	return c.kv.Save(ctx, c.name, c.items)
}

func (c *Collection[T]) indexOf(id string) int {
	for i, it := range c.items {
		if it.EntityID() == id {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) notFound(id string) error {
	return fmt.Errorf("%s %s: %w", c.name, id, model.ErrNotFound)
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	out := make([]T, len(c.items))
	for i, it := range c.items {
		out[i] = c.clone(it)
	}
	return out, nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return zero, err
	}
	i := c.indexOf(id)
	if i < 0 {
		c.log.Debug(c.name+".Get: not found", zap.String("id", id))
		return zero, c.notFound(id)
	}
	return c.clone(c.items[i]), nil
}

// Where returns every record matching pred, in collection order.
func (c *Collection[T]) Where(ctx context.Context, pred func(T) bool) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	var out []T
	for _, it := range c.items {
		if pred(it) {
			out = append(out, c.clone(it))
		}
	}
	return out, nil
}

// First returns the first record matching pred.
func (c *Collection[T]) First(ctx context.Context, pred func(T) bool) (T, bool, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return zero, false, err
	}
	for _, it := range c.items {
		if pred(it) {
			return c.clone(it), true, nil
		}
	}
	return zero, false, nil
}

// Insert adds item at the head (or tail) of the collection and persists it.
// On a persist failure the record stays in memory and the error is returned.
func (c *Collection[T]) Insert(ctx context.Context, item T, head bool) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return item, err
	}
	stored := c.clone(item)
	if head {
		c.items = append([]T{stored}, c.items...)
	} else {
		c.items = append(c.items, stored)
	}
	c.log.Info(c.name+".Insert: success", zap.String("id", item.EntityID()), zap.Int("items", len(c.items)))
	return c.clone(stored), c.persist(ctx)
}

// Update replaces the record id with fn's result. The id cannot change.
func (c *Collection[T]) Update(ctx context.Context, id string, fn func(T) (T, error)) (T, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return zero, err
	}
	i := c.indexOf(id)
	if i < 0 {
		c.log.Debug(c.name+".Update: not found", zap.String("id", id))
		return zero, c.notFound(id)
	}
	next, err := fn(c.clone(c.items[i]))
	if err != nil {
		return zero, err
	}
	if next.EntityID() != id {
		return zero, fmt.Errorf("%w: %s id is immutable", model.ErrValidation, c.name)
	}
	c.items[i] = c.clone(next)
	c.log.Info(c.name+".Update: success", zap.String("id", id))
	return c.clone(next), c.persist(ctx)
}

// UpdateWhere applies fn to every matching record and persists once when
// anything changed. It returns the number of records touched.
func (c *Collection[T]) UpdateWhere(ctx context.Context, pred func(T) bool, fn func(T) T) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return 0, err
	}
	n := 0
	for i, it := range c.items {
		if !pred(it) {
			continue
		}
		next := fn(c.clone(it))
		if next.EntityID() != it.EntityID() {
			return n, fmt.Errorf("%w: %s id is immutable", model.ErrValidation, c.name)
		}
		c.items[i] = next
		n++
	}
	if n == 0 {
		return 0, nil
	}
	c.log.Info(c.name+".UpdateWhere: success", zap.Int("updated", n))
	return n, c.persist(ctx)
}

// Delete removes the record id. It reports false when there was nothing to remove.
func (c *Collection[T]) Delete(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return false, err
	}
	i := c.indexOf(id)
	if i < 0 {
		c.log.Debug(c.name+".Delete: not found", zap.String("id", id))
		return false, nil
	}
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	c.log.Info(c.name+".Delete: success", zap.String("id", id), zap.Int("items", len(c.items)))
	return true, c.persist(ctx)
}

// unload drops the in-memory copy so the next access reloads or reseeds.
func (c *Collection[T]) unload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.items = nil
}
