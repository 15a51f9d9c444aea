package console_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/Astemirdum/library-admin/console/internal/console"
	"github.com/Astemirdum/library-admin/console/internal/errs"
	"github.com/Astemirdum/library-admin/console/internal/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type bookRepo struct {
	mu        sync.Mutex
	list      []model.Book
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	release   chan struct{}
	nextID    int
	updates   []model.Book
}

func (r *bookRepo) List(context.Context) ([]model.Book, int, error) {
	if r.release != nil {
		<-r.release
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, http.StatusServiceUnavailable, r.listErr
	}
	out := make([]model.Book, len(r.list))
	copy(out, r.list)
	return out, http.StatusOK, nil
}

func (r *bookRepo) Create(_ context.Context, draft model.Book) (model.Book, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return model.Book{}, http.StatusBadRequest, r.createErr
	}
	r.nextID++
	draft.ID = "new" + string(rune('0'+r.nextID))
	return draft, http.StatusCreated, nil
}

func (r *bookRepo) Update(_ context.Context, id string, book model.Book) (model.Book, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, book)
	if r.updateErr != nil {
		return model.Book{}, http.StatusBadRequest, r.updateErr
	}
	book.ID = id
	return book, http.StatusOK, nil
}

func (r *bookRepo) Delete(_ context.Context, id string) (int, error) {
	if r.deleteErr != nil {
		return http.StatusNotFound, r.deleteErr
	}
	return http.StatusOK, nil
}

// lendingRepo can neither update nor delete.
type lendingRepo struct{}

func (lendingRepo) List(context.Context) ([]model.Lending, int, error) {
	return []model.Lending{{ID: "l1"}}, http.StatusOK, nil
}

func (lendingRepo) Create(_ context.Context, draft model.Lending) (model.Lending, int, error) {
	return draft, http.StatusCreated, nil
}

var (
	stamp = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	dune  = model.Book{ID: "b1", Title: "Dune", Author: "Herbert", Description: "Sand", Quantity: 2, TimeStamp: stamp}
	emma  = model.Book{ID: "b2", Title: "Emma", Author: "Austen", Description: "Novel", Quantity: 1, TimeStamp: stamp}
)

func newBooks(repo *bookRepo, notices *console.Notices, changes *[]console.Op) *console.Controller[model.Book] {
	return console.NewController[model.Book](repo, console.BookID, notices, zap.NewNop(),
		console.WithMerge[model.Book](console.MergeBook),
		console.WithMessages[model.Book](console.MessagesFor("book", "books")),
		console.WithOnChange[model.Book](func(_ context.Context, op console.Op, _ string, _ model.Book) {
			if changes != nil {
				*changes = append(*changes, op)
			}
		}),
	)
}

func messages(ns []console.Notice) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Message)
	}
	return out
}

func TestController_Load(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		repo        *bookRepo
		wantItems   []model.Book
		wantErr     bool
		wantNotices []string
	}{
		{
			name:      "ok",
			repo:      &bookRepo{list: []model.Book{dune, emma}},
			wantItems: []model.Book{dune, emma},
		},
		{
			name:      "ok. empty",
			repo:      &bookRepo{},
			wantItems: []model.Book{},
		},
		{
			name:        "err. unreachable",
			repo:        &bookRepo{listErr: errors.New("connection refused")},
			wantItems:   []model.Book{},
			wantErr:     true,
			wantNotices: []string{"Failed to fetch books"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			notices := console.NewNotices()
			c := newBooks(tt.repo, notices, nil)

			err := c.Mount(context.Background())
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.wantItems, c.Items())
			require.False(t, c.Loading())
			require.Equal(t, tt.wantNotices, nilIfEmpty(messages(notices.Drain())))
		})
	}
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestController_LoadFailureKeepsCollection(t *testing.T) {
	t.Parallel()
	repo := &bookRepo{list: []model.Book{dune}}
	c := newBooks(repo, console.NewNotices(), nil)
	require.NoError(t, c.Mount(context.Background()))

	repo.listErr = errors.New("boom")
	require.Error(t, c.Load(context.Background()))
	require.Equal(t, []model.Book{dune}, c.Items())
}

func TestController_Create(t *testing.T) {
	t.Parallel()
	repo := &bookRepo{list: []model.Book{dune}}
	notices := console.NewNotices()
	var changes []console.Op
	c := newBooks(repo, notices, &changes)
	require.NoError(t, c.Mount(context.Background()))
	notices.Drain()

	draft := model.Book{Title: "Emma", Author: "Austen", Description: "Novel", Quantity: 1}

	c.BeginCreate()
	created, err := c.Create(context.Background(), draft)
	require.NoError(t, err)
	require.Equal(t, "new1", created.ID)
	require.Equal(t, console.ModeIdle, c.Snapshot().Mode)

	// identical drafts are not de-duplicated
	_, err = c.Create(context.Background(), draft)
	require.NoError(t, err)

	items := c.Items()
	require.Len(t, items, 3)
	require.Equal(t, dune, items[0])
	require.Equal(t, "new1", items[1].ID)
	require.Equal(t, "new2", items[2].ID)
	require.Equal(t, []string{"Book added successfully!", "Book added successfully!"}, messages(notices.Drain()))
	require.Equal(t, []console.Op{console.OpCreate, console.OpCreate}, changes)
}

func TestController_CreateFailure(t *testing.T) {
	t.Parallel()
	repo := &bookRepo{list: []model.Book{dune}}
	notices := console.NewNotices()
	var changes []console.Op
	c := newBooks(repo, notices, &changes)
	require.NoError(t, c.Mount(context.Background()))

	repo.createErr = &errs.StatusError{Code: http.StatusBadRequest, Message: "bad"}
	c.BeginCreate()
	_, err := c.Create(context.Background(), emma)
	require.Error(t, err)

	require.Equal(t, []model.Book{dune}, c.Items())
	require.Equal(t, console.ModeCreating, c.Snapshot().Mode)
	require.Equal(t, []string{"Failed to save book"}, messages(notices.Drain()))
	require.Empty(t, changes)
}

func TestController_Update(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		updateErr   error
		wantItems   []model.Book
		wantNotices []string
	}{
		{
			name:        "ok",
			wantItems:   []model.Book{dune, {ID: "b2", Title: "Emma II", Author: "Austen", Description: "Novel", Quantity: 3, TimeStamp: stamp}},
			wantNotices: []string{"Book updated successfully"},
		},
		{
			name:        "err. rejected",
			updateErr:   &errs.StatusError{Code: http.StatusBadRequest},
			wantItems:   []model.Book{dune, emma},
			wantNotices: []string{"Failed to save book"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := &bookRepo{list: []model.Book{dune, emma}, updateErr: tt.updateErr}
			notices := console.NewNotices()
			c := newBooks(repo, notices, nil)
			require.NoError(t, c.Mount(context.Background()))

			require.NoError(t, c.BeginEdit("b2"))
			sel, ok := c.Selected()
			require.True(t, ok)
			require.Equal(t, emma, sel)

			draft := model.Book{Title: "Emma II", Author: "Austen", Description: "Novel", Quantity: 3, TimeStamp: time.Now()}
			_, err := c.Update(context.Background(), "b2", draft)
			if tt.updateErr != nil {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			// the full entity went out with the stored id and creation time
			require.Len(t, repo.updates, 1)
			require.Equal(t, "b2", repo.updates[0].ID)
			require.Equal(t, stamp, repo.updates[0].TimeStamp)

			require.Equal(t, tt.wantItems, c.Items())
			require.Equal(t, console.ModeIdle, c.Snapshot().Mode)
			require.Equal(t, tt.wantNotices, messages(notices.Drain()))
		})
	}
}

func TestController_Delete(t *testing.T) {
	t.Parallel()
	repo := &bookRepo{list: []model.Book{dune, emma}}
	notices := console.NewNotices()
	var changes []console.Op
	c := newBooks(repo, notices, &changes)
	require.NoError(t, c.Mount(context.Background()))

	require.NoError(t, c.BeginDelete("b1"))
	require.Equal(t, console.ModeDeleting, c.Snapshot().Mode)
	require.NoError(t, c.Delete(context.Background(), "b1"))
	require.Equal(t, []model.Book{emma}, c.Items())
	require.Equal(t, console.ModeIdle, c.Snapshot().Mode)

	// b1 is already gone on the server
	repo.deleteErr = &errs.StatusError{Code: http.StatusNotFound}
	err := c.Delete(context.Background(), "b1")
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Equal(t, []model.Book{emma}, c.Items())

	require.Equal(t, []string{"Book deleted successfully", "Failed to delete book"}, messages(notices.Drain()))
	require.Equal(t, []console.Op{console.OpDelete}, changes)
}

func TestController_DeleteNotListed(t *testing.T) {
	t.Parallel()
	repo := &bookRepo{list: []model.Book{emma}}
	type change struct {
		op   console.Op
		id   string
		book model.Book
	}
	var changes []change
	c := console.NewController[model.Book](repo, console.BookID, nil, zap.NewNop(),
		console.WithOnChange[model.Book](func(_ context.Context, op console.Op, id string, b model.Book) {
			changes = append(changes, change{op: op, id: id, book: b})
		}),
	)
	require.NoError(t, c.Mount(context.Background()))

	// b1 exists on the server but was never listed here
	require.NoError(t, c.Delete(context.Background(), "b1"))
	require.Equal(t, []model.Book{emma}, c.Items())

	_, err := c.Create(context.Background(), dune)
	require.NoError(t, err)

	require.Equal(t, []change{
		{op: console.OpDelete, id: "b1"},
		{op: console.OpCreate, id: "new1", book: model.Book{ID: "new1", Title: "Dune", Author: "Herbert", Description: "Sand", Quantity: 2, TimeStamp: stamp}},
	}, changes)
}

func TestController_Selection(t *testing.T) {
	t.Parallel()
	c := newBooks(&bookRepo{list: []model.Book{dune}}, console.NewNotices(), nil)
	require.NoError(t, c.Mount(context.Background()))

	require.ErrorIs(t, c.BeginEdit("missing"), errs.ErrNotFound)
	require.ErrorIs(t, c.BeginDelete("missing"), errs.ErrNotFound)
	_, ok := c.Selected()
	require.False(t, ok)

	require.NoError(t, c.BeginEdit("b1"))
	c.Dismiss()
	_, ok = c.Selected()
	require.False(t, ok)
	require.IsType(t, console.Idle{}, c.View())
}

func TestController_NotSupported(t *testing.T) {
	t.Parallel()
	c := console.NewController[model.Lending](lendingRepo{}, console.LendingID, nil, zap.NewNop())
	require.NoError(t, c.Mount(context.Background()))

	require.NoError(t, c.BeginEdit("l1"))
	_, err := c.Update(context.Background(), "l1", model.Lending{})
	require.ErrorIs(t, err, errs.ErrNotSupported)
	require.ErrorIs(t, c.Delete(context.Background(), "l1"), errs.ErrNotSupported)
	require.Len(t, c.Items(), 1)
	require.IsType(t, console.Idle{}, c.View())
}

func TestController_StaleLoad(t *testing.T) {
	t.Parallel()
	repo := &bookRepo{list: []model.Book{dune}, release: make(chan struct{})}
	notices := console.NewNotices()
	c := newBooks(repo, notices, nil)

	done := make(chan error, 1)
	go func() { done <- c.Mount(context.Background()) }()

	require.Eventually(t, c.Loading, time.Second, time.Millisecond)
	c.Unmount()
	close(repo.release)

	require.ErrorIs(t, <-done, errs.ErrStale)
	require.Empty(t, c.Items())
	require.False(t, c.Loaded())
	require.Empty(t, notices.Drain())
}
