package console

import (
	"context"
	"sync"

	"github.com/Astemirdum/library-admin/console/internal/errs"
	"go.uber.org/zap"
)

type Repository[T any] interface {
	List(ctx context.Context) ([]T, int, error)
	Create(ctx context.Context, draft T) (T, int, error)
}

type Updater[T any] interface {
	Update(ctx context.Context, id string, entity T) (T, int, error)
}

type Deleter interface {
	Delete(ctx context.Context, id string) (int, error)
}

type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// ChangeFunc is called after every successful write with the id written. The
// entity is zero when a deleted id was not in the local collection.
type ChangeFunc[T any] func(ctx context.Context, op Op, id string, entity T)

// MergeFunc builds the full entity sent on update from the locally known one
// (zero if unknown) and the edited draft.
type MergeFunc[T any] func(id string, base, draft T) T

// Controller keeps the collection of one entity page in sync with the remote
// API. Writes patch the local collection instead of reloading it.
type Controller[T any] struct {
	log      *zap.Logger
	repo     Repository[T]
	key      func(T) string
	merge    MergeFunc[T]
	msgs     Messages
	notifier Notifier
	onChange ChangeFunc[T]

	mu         sync.Mutex
	items      []T
	loading    bool
	loaded     bool
	view       ViewState
	generation uint64
}

type Option[T any] func(c *Controller[T])

func WithMerge[T any](merge MergeFunc[T]) Option[T] {
	return func(c *Controller[T]) {
		c.merge = merge
	}
}

func WithMessages[T any](msgs Messages) Option[T] {
	return func(c *Controller[T]) {
		c.msgs = msgs
	}
}

func WithOnChange[T any](fn ChangeFunc[T]) Option[T] {
	return func(c *Controller[T]) {
		c.onChange = fn
	}
}

func NewController[T any](repo Repository[T], key func(T) string, notifier Notifier, log *zap.Logger, opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		log:      log,
		repo:     repo,
		key:      key,
		notifier: notifier,
		view:     Idle{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = discard{}
	}
	return c
}

// Mount starts a new page visit and fetches the collection. Answers to calls
// made during an earlier visit are dropped from then on.
func (c *Controller[T]) Mount(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	c.view = Idle{}
	c.mu.Unlock()
	return c.Load(ctx)
}

// Unmount ends the page visit.
func (c *Controller[T]) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.loading = false
	c.view = Idle{}
}

// Load replaces the collection with the remote one. On failure the collection
// is left as it was.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	gen := c.generation
	c.loading = true
	c.mu.Unlock()

	items, code, err := c.repo.List(ctx)
	if serr := c.settle(gen, items, err == nil); serr != nil {
		return serr
	}
	if err != nil {
		c.log.Warn("load", zap.Int("status", code), zap.Error(err))
		c.notifier.Notify(Failure(c.msgs.LoadFailed))
		return err
	}
	return nil
}

// begin starts a page visit whose collection is fetched by the caller.
func (c *Controller[T]) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.view = Idle{}
	c.loading = true
	return c.generation
}

// settle ends a load started under gen. The collection is replaced only when
// ok.
func (c *Controller[T]) settle(gen uint64, items []T, ok bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return errs.ErrStale
	}
	c.loading = false
	if !ok {
		return nil
	}
	if items == nil {
		items = []T{}
	}
	c.items = items
	c.loaded = true
	return nil
}

// Create sends draft and appends the entity the server returns. On failure
// the creation form stays open.
func (c *Controller[T]) Create(ctx context.Context, draft T) (T, error) {
	gen := c.currentGeneration()

	created, code, err := c.repo.Create(ctx, draft)
	if err != nil {
		c.log.Warn("create", zap.Int("status", code), zap.Error(err))
		c.notifier.Notify(Failure(c.msgs.CreateFailed))
		var zero T
		return zero, err
	}

	c.mu.Lock()
	if gen == c.generation {
		c.items = append(c.items, created)
		c.view = Idle{}
	}
	c.mu.Unlock()

	c.notifier.Notify(Success(c.msgs.Created))
	c.changed(ctx, OpCreate, c.key(created), created)
	return created, nil
}

// Update sends the merged entity and replaces the element with the same id.
func (c *Controller[T]) Update(ctx context.Context, id string, draft T) (T, error) {
	var zero T
	updater, ok := c.repo.(Updater[T])
	if !ok {
		c.clearSelection()
		return zero, errs.ErrNotSupported
	}

	c.mu.Lock()
	gen := c.generation
	base, _ := c.find(id)
	c.mu.Unlock()

	entity := draft
	if c.merge != nil {
		entity = c.merge(id, base, draft)
	}
	updated, code, err := updater.Update(ctx, id, entity)

	c.mu.Lock()
	current := gen == c.generation
	if current {
		c.view = Idle{}
	}
	if err != nil {
		c.mu.Unlock()
		c.log.Warn("update", zap.String("id", id), zap.Int("status", code), zap.Error(err))
		c.notifier.Notify(Failure(c.msgs.UpdateFailed))
		return zero, err
	}
	if current {
		if _, i := c.find(id); i >= 0 {
			c.items[i] = updated
		}
	}
	c.mu.Unlock()

	c.notifier.Notify(Success(c.msgs.Updated))
	c.changed(ctx, OpUpdate, id, updated)
	return updated, nil
}

// Delete removes the entity remotely, then locally. Deleting an id that is
// already gone only produces a failure notice.
func (c *Controller[T]) Delete(ctx context.Context, id string) error {
	deleter, ok := c.repo.(Deleter)
	if !ok {
		c.clearSelection()
		return errs.ErrNotSupported
	}
	gen := c.currentGeneration()

	code, err := deleter.Delete(ctx, id)

	c.mu.Lock()
	current := gen == c.generation
	if current {
		c.view = Idle{}
	}
	if err != nil {
		c.mu.Unlock()
		c.log.Warn("delete", zap.String("id", id), zap.Int("status", code), zap.Error(err))
		c.notifier.Notify(Failure(c.msgs.DeleteFailed))
		return err
	}
	removed, i := c.find(id)
	if current && i >= 0 {
		c.items = append(c.items[:i:i], c.items[i+1:]...)
	}
	c.mu.Unlock()

	c.notifier.Notify(Success(c.msgs.Deleted))
	c.changed(ctx, OpDelete, id, removed)
	return nil
}

func (c *Controller[T]) BeginCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = Creating{}
}

func (c *Controller[T]) BeginEdit(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entity, i := c.find(id)
	if i < 0 {
		return errs.ErrNotFound
	}
	c.view = Editing[T]{Entity: entity}
	return nil
}

func (c *Controller[T]) BeginDelete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entity, i := c.find(id)
	if i < 0 {
		return errs.ErrNotFound
	}
	c.view = ConfirmingDelete[T]{Entity: entity}
	return nil
}

// Dismiss closes any form or dialog without confirming.
func (c *Controller[T]) Dismiss() {
	c.clearSelection()
}

func (c *Controller[T]) View() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Selected is the entity an edit form or delete dialog is open for.
func (c *Controller[T]) Selected() (T, bool) {
	switch v := c.View().(type) {
	case Editing[T]:
		return v.Entity, true
	case ConfirmingDelete[T]:
		return v.Entity, true
	}
	var zero T
	return zero, false
}

// Items returns a copy of the collection.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Controller[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Controller[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Has reports whether an entity with id is in the collection.
func (c *Controller[T]) Has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, i := c.find(id)
	return i >= 0
}

func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot[T]{
		Items:   make([]T, len(c.items)),
		Loading: c.loading,
		Loaded:  c.loaded,
		Mode:    modeOf(c.view),
	}
	copy(s.Items, c.items)
	switch v := c.view.(type) {
	case Editing[T]:
		e := v.Entity
		s.Selected = &e
	case ConfirmingDelete[T]:
		e := v.Entity
		s.Selected = &e
	}
	return s
}

func (c *Controller[T]) find(id string) (T, int) {
	for i := range c.items {
		if c.key(c.items[i]) == id {
			return c.items[i], i
		}
	}
	var zero T
	return zero, -1
}

func (c *Controller[T]) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *Controller[T]) clearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = Idle{}
}

func (c *Controller[T]) changed(ctx context.Context, op Op, id string, entity T) {
	if c.onChange != nil {
		c.onChange(ctx, op, id, entity)
	}
}
