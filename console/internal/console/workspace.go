package console

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Astemirdum/library-admin/console/internal/model"
	"github.com/Astemirdum/library-admin/console/internal/service/api"
	"github.com/Astemirdum/library-admin/console/internal/service/auth"
	"github.com/Astemirdum/library-admin/console/internal/service/book"
	"github.com/Astemirdum/library-admin/console/internal/service/lending"
	"github.com/Astemirdum/library-admin/console/internal/service/reader"
	"github.com/Astemirdum/library-admin/console/internal/session"
	"github.com/Astemirdum/library-admin/pkg/kafka"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Page string

const (
	PageNone      Page = ""
	PageDashboard Page = "dashboard"
	PageReaders   Page = "readers"
	PageBooks     Page = "books"
	PageLendings  Page = "lendings"
)

// readerMessages are the notices of the readers page, which are worded
// differently from the books page.
var readerMessages = Messages{
	LoadFailed:   "Failed to fetch readers",
	Created:      "Reader added",
	CreateFailed: "Operation failed",
	Updated:      "Reader updated",
	UpdateFailed: "Operation failed",
	Deleted:      "Reader deleted",
	DeleteFailed: "Delete failed",
}

// Recorder receives an event for every successful write.
type Recorder interface {
	Record(ctx context.Context, event kafka.EventActivity)
}

type Deps struct {
	Remote   *api.Remote
	Activity ActivityFeed
	Recorder Recorder
	Log      *zap.Logger
}

// Workspace is everything one browser session works with: its API client,
// its session, its notices and one controller per page.
type Workspace struct {
	ID        string
	Client    *api.Client
	Session   *session.Manager
	Notices   *Notices
	Readers   *Controller[model.Reader]
	Books     *Controller[model.Book]
	Lending   *LendingPage
	Dashboard *Dashboard

	log      *zap.Logger
	recorder Recorder
	booted   atomic.Bool

	mu       sync.Mutex
	active   Page
	lastSeen time.Time
}

func NewWorkspace(id string, deps Deps) *Workspace {
	log := deps.Log.With(zap.String("workspace", id))
	client := deps.Remote.NewClient()
	notices := NewNotices()

	books := book.NewService(log, client)
	readers := reader.NewService(log, client)
	lendings := lending.NewService(log, client)

	w := &Workspace{
		ID:       id,
		Client:   client,
		Session:  session.NewManager(auth.NewService(log, client), client, log),
		Notices:  notices,
		log:      log,
		recorder: deps.Recorder,
		lastSeen: time.Now(),
	}
	w.Readers = NewController[model.Reader](readers, ReaderID, notices, log.Named("readers"),
		WithMerge[model.Reader](MergeReader),
		WithMessages[model.Reader](readerMessages),
		WithOnChange[model.Reader](func(ctx context.Context, op Op, id string, r model.Reader) {
			w.record(ctx, "reader", id, op, r.FullName())
		}),
	)
	w.Books = NewController[model.Book](books, BookID, notices, log.Named("books"),
		WithMerge[model.Book](MergeBook),
		WithMessages[model.Book](MessagesFor("book", "books")),
		WithOnChange[model.Book](func(ctx context.Context, op Op, id string, b model.Book) {
			w.record(ctx, "book", id, op, b.Title)
		}),
	)
	w.Lending = NewLendingPage(lendings, books, readers, notices, log,
		func(ctx context.Context, op Op, id string, l model.Lending) {
			summary := fmt.Sprintf("%s lent to %s", w.Lending.BookTitle(l.BookID), w.Lending.ReaderName(l.ReaderID))
			w.record(ctx, "lending", id, op, summary)
		},
	)
	w.Dashboard = NewDashboard(books, readers, lendings, deps.Activity, log)
	return w
}

// Bootstrap runs the silent refresh on the first request of the browser
// session. Requests that arrive while it runs get started == false and see
// the session still authenticating.
func (w *Workspace) Bootstrap(ctx context.Context, location string) (navigate string, started bool) {
	if !w.booted.CompareAndSwap(false, true) {
		return "", false
	}
	return w.Session.Init(ctx, location), true
}

// Enter mounts page and unmounts the page that was shown before. Entering the
// page already shown keeps its state.
func (w *Workspace) Enter(ctx context.Context, page Page) error {
	w.mu.Lock()
	prev := w.active
	w.active = page
	w.mu.Unlock()

	if prev == page {
		return nil
	}
	w.unmount(prev)

	switch page {
	case PageReaders:
		return w.Readers.Mount(ctx)
	case PageBooks:
		return w.Books.Mount(ctx)
	case PageLendings:
		return w.Lending.Mount(ctx)
	}
	return nil
}

// Reload fetches the active page again as a fresh visit.
func (w *Workspace) Reload(ctx context.Context) error {
	switch w.Active() {
	case PageReaders:
		return w.Readers.Mount(ctx)
	case PageBooks:
		return w.Books.Mount(ctx)
	case PageLendings:
		return w.Lending.Mount(ctx)
	}
	return nil
}

func (w *Workspace) Active() Page {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

func (w *Workspace) Leave() {
	w.mu.Lock()
	prev := w.active
	w.active = PageNone
	w.mu.Unlock()
	w.unmount(prev)
}

func (w *Workspace) unmount(page Page) {
	switch page {
	case PageReaders:
		w.Readers.Unmount()
	case PageBooks:
		w.Books.Unmount()
	case PageLendings:
		w.Lending.Unmount()
	}
}

func (w *Workspace) Touch(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastSeen = now
}

func (w *Workspace) LastSeen() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

// Dispose ends the workspace: pages are unmounted and the session forgets
// its token and user.
func (w *Workspace) Dispose() {
	w.Leave()
	w.Session.Dispose()
}

func (w *Workspace) record(ctx context.Context, entity, id string, op Op, summary string) {
	if w.recorder == nil {
		return
	}
	actor := ""
	if u := w.Session.User(); u != nil {
		actor = u.Email
	}
	w.recorder.Record(ctx, kafka.EventActivity{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Actor:     actor,
		Entity:    entity,
		EntityID:  id,
		Action:    string(op),
		Summary:   summary,
	})
}
