package metrics

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"
)

// fakeStore is an in-memory Store with the same ordering and
// duplicate-date contract as the Postgres implementation.
type fakeStore struct {
	rows      []Metric
	nextID    uint
	insertErr error
	selectErr error
	boundsErr error
}

func (f *fakeStore) Insert(_ context.Context, in RecordInput) (Metric, error) {
	if f.insertErr != nil {
		return Metric{}, f.insertErr
	}
	for _, r := range f.rows {
		if r.Date.Equal(in.Date) {
			return Metric{}, ErrDuplicateDate
		}
	}
	f.nextID++
	m := Metric{
		ID:                 f.nextID,
		Date:               in.Date,
		PageViews:          in.PageViews,
		UniqueVisitors:     in.UniqueVisitors,
		BounceRate:         in.BounceRate,
		AvgSessionDuration: in.AvgSessionDuration,
		CreatedAt:          time.Now(),
	}
	f.rows = append(f.rows, m)
	return m, nil
}

func (f *fakeStore) Select(_ context.Context, filt Filter) ([]Metric, error) {
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	var out []Metric
	for _, r := range f.rows {
		if filt.Start != nil && r.Date.Before(*filt.Start) {
			continue
		}
		if filt.End != nil && r.Date.After(*filt.End) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if filt.Descending {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Date.Before(out[j].Date)
	})
	if filt.Limit > 0 && len(out) > filt.Limit {
		out = out[:filt.Limit]
	}
	return out, nil
}

func (f *fakeStore) Bounds(_ context.Context) (Date, Date, bool, error) {
	if f.boundsErr != nil {
		return Date{}, Date{}, false, f.boundsErr
	}
	if len(f.rows) == 0 {
		return Date{}, Date{}, false, nil
	}
	min, max := f.rows[0].Date, f.rows[0].Date
	for _, r := range f.rows[1:] {
		if r.Date.Before(min) {
			min = r.Date
		}
		if r.Date.After(max) {
			max = r.Date
		}
	}
	return min, max, true, nil
}

func seededStore(t *testing.T) *fakeStore {
	t.Helper()
	store := &fakeStore{}
	days := []struct {
		date     string
		views    int64
		visitors int64
		bounce   float64
		duration float64
	}{
		{"2024-01-01", 1000, 400, 40.00, 120.50},
		{"2024-01-02", 1200, 500, 42.37, 130.00},
		{"2024-01-03", 800, 300, 55.10, 95.25},
	}
	for _, d := range days {
		_, err := store.Insert(context.Background(), RecordInput{
			Date:               MustDate(d.date),
			PageViews:          d.views,
			UniqueVisitors:     d.visitors,
			BounceRate:         d.bounce,
			AvgSessionDuration: d.duration,
		})
		if err != nil {
			t.Fatalf("seed %s: %v", d.date, err)
		}
	}
	return store
}

func fixedClock(s string) func() time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func rangeOf(start, end string) *DateRange {
	return &DateRange{Start: MustDate(start), End: MustDate(end)}
}

func TestListReturnsAllAscending(t *testing.T) {
	engine := NewEngine(seededStore(t))

	rows, err := engine.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("List() returned %d rows, want 3", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if !rows[i-1].Date.Before(rows[i].Date) {
			t.Errorf("rows not ascending: %s before %s", rows[i-1].Date, rows[i].Date)
		}
	}
}

func TestListRangeFiltering(t *testing.T) {
	tests := []struct {
		name      string
		r         *DateRange
		wantDates []string
	}{
		{
			name:      "inclusive boundaries",
			r:         rangeOf("2024-01-01", "2024-01-03"),
			wantDates: []string{"2024-01-01", "2024-01-02", "2024-01-03"},
		},
		{
			name:      "partial window",
			r:         rangeOf("2024-01-02", "2024-01-03"),
			wantDates: []string{"2024-01-02", "2024-01-03"},
		},
		{
			name:      "single day",
			r:         rangeOf("2024-01-02", "2024-01-02"),
			wantDates: []string{"2024-01-02"},
		},
		{
			name:      "no matching rows",
			r:         rangeOf("2024-02-01", "2024-02-28"),
			wantDates: []string{},
		},
		{
			name:      "inverted range matches nothing",
			r:         rangeOf("2024-01-03", "2024-01-01"),
			wantDates: []string{},
		},
	}

	engine := NewEngine(seededStore(t))
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := engine.List(context.Background(), tc.r)
			if err != nil {
				t.Fatalf("List() error: %v", err)
			}
			if rows == nil {
				t.Fatal("List() returned nil, want empty slice")
			}
			if len(rows) != len(tc.wantDates) {
				t.Fatalf("List() returned %d rows, want %d", len(rows), len(tc.wantDates))
			}
			for i, want := range tc.wantDates {
				if rows[i].Date.String() != want {
					t.Errorf("rows[%d].Date = %s, want %s", i, rows[i].Date, want)
				}
			}
		})
	}
}

func TestSummarizeTotals(t *testing.T) {
	engine := NewEngine(seededStore(t))

	s, err := engine.Summarize(context.Background(), nil)
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if s.TotalPageViews != 3000 {
		t.Errorf("TotalPageViews = %d, want 3000", s.TotalPageViews)
	}
	if s.TotalUniqueVisitors != 1200 {
		t.Errorf("TotalUniqueVisitors = %d, want 1200", s.TotalUniqueVisitors)
	}
	wantBounce := (40.00 + 42.37 + 55.10) / 3
	if diff := s.AvgBounceRate - wantBounce; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("AvgBounceRate = %v, want %v", s.AvgBounceRate, wantBounce)
	}
	wantDuration := (120.50 + 130.00 + 95.25) / 3
	if diff := s.AvgSessionDuration - wantDuration; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("AvgSessionDuration = %v, want %v", s.AvgSessionDuration, wantDuration)
	}
}

func TestSummarizeRangeSubset(t *testing.T) {
	engine := NewEngine(seededStore(t))

	s, err := engine.Summarize(context.Background(), rangeOf("2024-01-02", "2024-01-03"))
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if s.TotalPageViews != 2000 {
		t.Errorf("TotalPageViews = %d, want 2000", s.TotalPageViews)
	}
	if s.PeriodStart == nil || s.PeriodStart.String() != "2024-01-02" {
		t.Errorf("PeriodStart = %v, want 2024-01-02", s.PeriodStart)
	}
	if s.PeriodEnd == nil || s.PeriodEnd.String() != "2024-01-03" {
		t.Errorf("PeriodEnd = %v, want 2024-01-03", s.PeriodEnd)
	}
}

func TestSummarizeDefaultPeriodFromStoreBounds(t *testing.T) {
	engine := NewEngine(seededStore(t))

	s, err := engine.Summarize(context.Background(), nil)
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if s.PeriodStart == nil || s.PeriodStart.String() != "2024-01-01" {
		t.Errorf("PeriodStart = %v, want 2024-01-01", s.PeriodStart)
	}
	if s.PeriodEnd == nil || s.PeriodEnd.String() != "2024-01-03" {
		t.Errorf("PeriodEnd = %v, want 2024-01-03", s.PeriodEnd)
	}
}

func TestSummarizeEmptyStore(t *testing.T) {
	engine := NewEngine(&fakeStore{})

	s, err := engine.Summarize(context.Background(), nil)
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if s.TotalPageViews != 0 || s.TotalUniqueVisitors != 0 {
		t.Errorf("totals = %d/%d, want 0/0", s.TotalPageViews, s.TotalUniqueVisitors)
	}
	if s.AvgBounceRate != 0 || s.AvgSessionDuration != 0 {
		t.Errorf("averages = %v/%v, want 0/0", s.AvgBounceRate, s.AvgSessionDuration)
	}
	if s.PeriodStart != nil || s.PeriodEnd != nil {
		t.Errorf("period = %v..%v, want nil..nil", s.PeriodStart, s.PeriodEnd)
	}
}

func TestSummarizeEmptyRangeEchoesPeriod(t *testing.T) {
	engine := NewEngine(seededStore(t))

	// Inverted range: zero totals, but the supplied period is echoed back.
	s, err := engine.Summarize(context.Background(), rangeOf("2024-01-03", "2024-01-01"))
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if s.TotalPageViews != 0 || s.AvgBounceRate != 0 {
		t.Errorf("got totals %d / avg %v, want zeros", s.TotalPageViews, s.AvgBounceRate)
	}
	if s.PeriodStart == nil || s.PeriodStart.String() != "2024-01-03" {
		t.Errorf("PeriodStart = %v, want 2024-01-03", s.PeriodStart)
	}
}

func TestRecentWindow(t *testing.T) {
	store := seededStore(t)
	engine := NewEngineWithClock(store, fixedClock("2024-01-04"))

	rows, err := engine.RecentWindow(context.Background(), 7)
	if err != nil {
		t.Fatalf("RecentWindow() error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("RecentWindow(7) returned %d rows, want 3", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if !rows[i-1].Date.After(rows[i].Date) {
			t.Errorf("rows not strictly descending at %d", i)
		}
	}
	if rows[0].Date.String() != "2024-01-03" {
		t.Errorf("rows[0].Date = %s, want 2024-01-03", rows[0].Date)
	}
}

func TestRecentWindowCutoffAndCap(t *testing.T) {
	store := seededStore(t)
	engine := NewEngineWithClock(store, fixedClock("2024-01-04"))

	// cutoff = 2024-01-02, so only the two newest rows qualify; the cap
	// also bounds the result to 2.
	rows, err := engine.RecentWindow(context.Background(), 2)
	if err != nil {
		t.Fatalf("RecentWindow() error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("RecentWindow(2) returned %d rows, want 2", len(rows))
	}
	cutoff := MustDate("2024-01-02")
	for _, r := range rows {
		if r.Date.Before(cutoff) {
			t.Errorf("row %s is before cutoff %s", r.Date, cutoff)
		}
	}
}

func TestRecentWindowFarFuture(t *testing.T) {
	engine := NewEngineWithClock(seededStore(t), fixedClock("2024-06-01"))

	rows, err := engine.RecentWindow(context.Background(), 7)
	if err != nil {
		t.Fatalf("RecentWindow() error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("RecentWindow(7) returned %d rows, want 0", len(rows))
	}
}

func TestRecentWindowRejectsNonPositive(t *testing.T) {
	engine := NewEngine(seededStore(t))

	for _, days := range []int{0, -1, -7} {
		if _, err := engine.RecentWindow(context.Background(), days); !IsValidation(err) {
			t.Errorf("RecentWindow(%d) error = %v, want validation error", days, err)
		}
	}
}

func TestRecordRoundTrip(t *testing.T) {
	store := &fakeStore{}
	engine := NewEngine(store)

	in := RecordInput{
		Date:               MustDate("2024-03-15"),
		PageViews:          5000,
		UniqueVisitors:     2100,
		BounceRate:         42.37,
		AvgSessionDuration: 185.25,
	}
	created, err := engine.Record(context.Background(), in)
	if err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	if created.ID == 0 {
		t.Error("Record() did not assign an ID")
	}
	if created.CreatedAt.IsZero() {
		t.Error("Record() did not assign CreatedAt")
	}

	rows, err := engine.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("List() returned %d rows, want 1", len(rows))
	}
	got := rows[0]
	if !got.Date.Equal(in.Date) || got.PageViews != in.PageViews || got.UniqueVisitors != in.UniqueVisitors {
		t.Errorf("stored row %+v does not match input %+v", got, in)
	}
	if got.BounceRate != 42.37 {
		t.Errorf("BounceRate = %v, want 42.37 exactly", got.BounceRate)
	}
	if got.AvgSessionDuration != 185.25 {
		t.Errorf("AvgSessionDuration = %v, want 185.25 exactly", got.AvgSessionDuration)
	}
}

func TestRecordRejectsInvalidBeforeStore(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("store must not be reached")}
	engine := NewEngine(store)

	_, err := engine.Record(context.Background(), RecordInput{
		Date:      MustDate("2024-03-15"),
		PageViews: -1,
	})
	if !IsValidation(err) {
		t.Fatalf("Record() error = %v, want validation error", err)
	}
	if len(store.rows) != 0 {
		t.Error("invalid input reached the store")
	}
}

func TestRecordDuplicateDate(t *testing.T) {
	engine := NewEngine(seededStore(t))

	_, err := engine.Record(context.Background(), RecordInput{
		Date:       MustDate("2024-01-02"),
		PageViews:  1,
		BounceRate: 10,
	})
	if !errors.Is(err, ErrDuplicateDate) {
		t.Fatalf("Record() error = %v, want ErrDuplicateDate", err)
	}
}

func TestStoreErrorsPropagate(t *testing.T) {
	storeErr := errors.New("connection refused")
	engine := NewEngine(&fakeStore{selectErr: storeErr, insertErr: storeErr})

	if _, err := engine.List(context.Background(), nil); !errors.Is(err, storeErr) {
		t.Errorf("List() error = %v, want wrapped store error", err)
	}
	if _, err := engine.Summarize(context.Background(), nil); !errors.Is(err, storeErr) {
		t.Errorf("Summarize() error = %v, want wrapped store error", err)
	}
	if _, err := engine.RecentWindow(context.Background(), 7); !errors.Is(err, storeErr) {
		t.Errorf("RecentWindow() error = %v, want wrapped store error", err)
	}
	in := RecordInput{Date: MustDate("2024-01-09"), BounceRate: 10}
	if _, err := engine.Record(context.Background(), in); !errors.Is(err, storeErr) {
		t.Errorf("Record() error = %v, want wrapped store error", err)
	}
}
