package console

import (
	"context"
	"errors"

	"github.com/Astemirdum/library-admin/console/internal/errs"
	"github.com/Astemirdum/library-admin/console/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const lendingLoadFailed = "Error loading lending data"

// LendingPage owns the lending records and its own book and reader option
// lists.
type LendingPage struct {
	log      *zap.Logger
	notifier Notifier

	Lendings *Controller[model.Lending]
	Books    *Controller[model.Book]
	Readers  *Controller[model.Reader]
}

func NewLendingPage(
	lendings Repository[model.Lending],
	books Repository[model.Book],
	readers Repository[model.Reader],
	notifier Notifier,
	log *zap.Logger,
	onChange ChangeFunc[model.Lending],
) *LendingPage {
	log = log.Named("lending")
	if notifier == nil {
		notifier = discard{}
	}
	return &LendingPage{
		log:      log,
		notifier: notifier,
		Lendings: NewController[model.Lending](lendings, LendingID, notifier, log,
			WithMessages[model.Lending](Messages{
				Created:      "Book lent successfully!",
				CreateFailed: "Lending failed",
			}),
			WithOnChange[model.Lending](onChange),
		),
		Books:   NewController[model.Book](books, BookID, notifier, log),
		Readers: NewController[model.Reader](readers, ReaderID, notifier, log),
	}
}

// Mount fetches the three lists concurrently. The lists are replaced only
// when all of them loaded; a failure of any keeps all three as they were and
// gives a single notice.
func (p *LendingPage) Mount(ctx context.Context) error {
	lgen, bgen, rgen := p.Lendings.begin(), p.Books.begin(), p.Readers.begin()

	var (
		lendings []model.Lending
		books    []model.Book
		readers  []model.Reader
		g        errgroup.Group
	)
	g.Go(func() (err error) {
		lendings, _, err = p.Lendings.repo.List(ctx)
		return err
	})
	g.Go(func() (err error) {
		books, _, err = p.Books.repo.List(ctx)
		return err
	})
	g.Go(func() (err error) {
		readers, _, err = p.Readers.repo.List(ctx)
		return err
	})
	err := g.Wait()

	ok := err == nil
	stale := errors.Join(
		p.Lendings.settle(lgen, lendings, ok),
		p.Books.settle(bgen, books, ok),
		p.Readers.settle(rgen, readers, ok),
	)
	if stale != nil {
		return errs.ErrStale
	}
	if err != nil {
		p.log.Warn("mount", zap.Error(err))
		p.notifier.Notify(Failure(lendingLoadFailed))
		return err
	}
	return nil
}

func (p *LendingPage) Unmount() {
	p.Lendings.Unmount()
	p.Books.Unmount()
	p.Readers.Unmount()
}

// Check reports references that are not among the rendered options.
func (p *LendingPage) Check(draft model.Lending) errs.FieldErrors {
	fe := errs.FieldErrors{}
	if draft.BookID != "" && !p.Books.Has(draft.BookID) {
		fe["bookId"] = "Select a book from the list"
	}
	if draft.ReaderID != "" && !p.Readers.Has(draft.ReaderID) {
		fe["readerId"] = "Select a reader from the list"
	}
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// Lend records a new lending. Book quantities are left to the server.
func (p *LendingPage) Lend(ctx context.Context, draft model.Lending) (model.Lending, error) {
	if fe := p.Check(draft); fe != nil {
		return model.Lending{}, fe
	}
	if draft.Status == "" {
		draft.Status = model.StatusBorrowed
	}
	return p.Lendings.Create(ctx, draft)
}

// BookTitle resolves an id of the option list for display.
func (p *LendingPage) BookTitle(id string) string {
	for _, b := range p.Books.Items() {
		if b.ID == id {
			return b.Title
		}
	}
	return id
}

func (p *LendingPage) ReaderName(id string) string {
	for _, r := range p.Readers.Items() {
		if r.ID == id {
			return r.FullName()
		}
	}
	return id
}

func BookID(b model.Book) string       { return b.ID }
func ReaderID(r model.Reader) string   { return r.ID }
func LendingID(l model.Lending) string { return l.ID }

// MergeBook keeps the id and creation time of the stored book.
func MergeBook(id string, base, draft model.Book) model.Book {
	draft.ID = id
	if !base.TimeStamp.IsZero() {
		draft.TimeStamp = base.TimeStamp
	}
	return draft
}

func MergeReader(id string, base, draft model.Reader) model.Reader {
	draft.ID = id
	if draft.JoinDate == "" {
		draft.JoinDate = base.JoinDate
	}
	return draft
}
