package console

import (
	"context"
	"time"

	"github.com/Astemirdum/library-admin/console/internal/model"
	"github.com/Astemirdum/library-admin/pkg/kafka"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	chartMonths   = 7
	activityLimit = 10
)

type ActivityFeed interface {
	Enabled() bool
	Recent(ctx context.Context, limit int) ([]kafka.EventActivity, int, error)
}

type Lister[T any] interface {
	List(ctx context.Context) ([]T, int, error)
}

type Stats struct {
	TotalBooks     int
	Readers        int
	ActiveLendings int
	LateLendings   int
}

type MonthCount struct {
	Month string
	Count int
}

// DashboardView is one render of the dashboard. A source that failed leaves
// its widget blank.
type DashboardView struct {
	Stats      Stats
	BooksOK    bool
	ReadersOK  bool
	LendingsOK bool
	Monthly    []MonthCount
	Activity   []kafka.EventActivity
	ActivityOK bool
}

// MaxMonthly is the chart scale.
func (v DashboardView) MaxMonthly() int {
	m := 0
	for _, c := range v.Monthly {
		if c.Count > m {
			m = c.Count
		}
	}
	return m
}

type Dashboard struct {
	log      *zap.Logger
	books    Lister[model.Book]
	readers  Lister[model.Reader]
	lendings Lister[model.Lending]
	activity ActivityFeed
	now      func() time.Time
}

func NewDashboard(
	books Lister[model.Book],
	readers Lister[model.Reader],
	lendings Lister[model.Lending],
	activity ActivityFeed,
	log *zap.Logger,
) *Dashboard {
	return &Dashboard{
		log:      log.Named("dashboard"),
		books:    books,
		readers:  readers,
		lendings: lendings,
		activity: activity,
		now:      time.Now,
	}
}

// Load fetches every source concurrently. It never fails as a whole.
func (d *Dashboard) Load(ctx context.Context) DashboardView {
	var (
		v        DashboardView
		books    []model.Book
		readers  []model.Reader
		lendings []model.Lending
		g        errgroup.Group
	)
	g.Go(func() error {
		var err error
		if books, _, err = d.books.List(ctx); err != nil {
			d.log.Warn("books", zap.Error(err))
			return nil
		}
		v.BooksOK = true
		return nil
	})
	g.Go(func() error {
		var err error
		if readers, _, err = d.readers.List(ctx); err != nil {
			d.log.Warn("readers", zap.Error(err))
			return nil
		}
		v.ReadersOK = true
		return nil
	})
	g.Go(func() error {
		var err error
		if lendings, _, err = d.lendings.List(ctx); err != nil {
			d.log.Warn("lendings", zap.Error(err))
			return nil
		}
		v.LendingsOK = true
		return nil
	})
	if d.activity != nil && d.activity.Enabled() {
		g.Go(func() error {
			events, _, err := d.activity.Recent(ctx, activityLimit)
			if err != nil {
				d.log.Warn("activity", zap.Error(err))
				return nil
			}
			v.Activity = events
			v.ActivityOK = true
			return nil
		})
	}
	_ = g.Wait()

	for _, b := range books {
		v.Stats.TotalBooks += b.Quantity
	}
	v.Stats.Readers = len(readers)
	for _, l := range lendings {
		if l.Status.Active() {
			v.Stats.ActiveLendings++
		}
		if l.Status == model.StatusLate {
			v.Stats.LateLendings++
		}
	}
	if v.LendingsOK {
		v.Monthly = monthly(lendings, d.now(), chartMonths)
	}
	return v
}

// monthly counts lendings per lend month over the last n months, oldest first.
func monthly(lendings []model.Lending, now time.Time, n int) []MonthCount {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(n - 1), 0)
	out := make([]MonthCount, n)
	for i := range out {
		out[i].Month = start.AddDate(0, i, 0).Format("Jan")
	}
	for _, l := range lendings {
		t, ok := lendDate(l.LendDate)
		if !ok || t.Before(start) {
			continue
		}
		i := (t.Year()-start.Year())*12 + int(t.Month()) - int(start.Month())
		if i < n {
			out[i].Count++
		}
	}
	return out
}

func lendDate(s string) (time.Time, bool) {
	if len(s) < len(time.DateOnly) {
		return time.Time{}, false
	}
	t, err := time.Parse(time.DateOnly, s[:len(time.DateOnly)])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
