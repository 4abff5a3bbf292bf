package pipeline

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/sebamyu/Mini-Project-AIE321/internal/booking"
	"github.com/sebamyu/Mini-Project-AIE321/internal/config"
	"github.com/sebamyu/Mini-Project-AIE321/internal/storage"
	"github.com/sebamyu/Mini-Project-AIE321/internal/table"
)

// fakeStore records calls and serves a canned source table.
type fakeStore struct {
	raw       table.Table
	ensureErr error
	readErr   error
	writeErr  map[string]error // by table name

	calls   []string
	written map[string]table.Table
}

func (f *fakeStore) EnsureNamespace(_ context.Context, ns string) error {
	f.calls = append(f.calls, "ensure "+ns)
	return f.ensureErr
}

func (f *fakeStore) ReadTable(_ context.Context, ref storage.TableRef) (table.Table, error) {
	f.calls = append(f.calls, "read "+ref.String())
	if f.readErr != nil {
		return table.Table{}, f.readErr
	}
	return f.raw, nil
}

func (f *fakeStore) ReplaceTable(_ context.Context, ref storage.TableRef, t table.Table) (int64, error) {
	f.calls = append(f.calls, "replace "+ref.String())
	if err := f.writeErr[ref.Name]; err != nil {
		return 0, err
	}
	if f.written == nil {
		f.written = map[string]table.Table{}
	}
	f.written[ref.Name] = t
	return int64(t.Len()), nil
}

func (f *fakeStore) Close() {}

func rawBookings(rows ...[]any) table.Table {
	return table.Table{
		Columns: []table.Column{
			{Name: booking.ColYear, Kind: table.Int},
			{Name: booking.ColMonth, Kind: table.String},
			{Name: booking.ColDay, Kind: table.Int},
			{Name: booking.ColWeekendNights, Kind: table.Int},
			{Name: booking.ColWeekNights, Kind: table.Int},
			{Name: booking.ColAdults, Kind: table.Int},
			{Name: booking.ColChildren, Kind: table.Float},
			{Name: booking.ColBabies, Kind: table.Int},
			{Name: booking.ColADR, Kind: table.Float},
			{Name: booking.ColCountry, Kind: table.String},
			{Name: booking.ColAgent, Kind: table.Float},
			{Name: booking.ColCompany, Kind: table.Float},
		},
		Rows: rows,
	}
}

func booked(year int64, month string, day int64, weekend, week int64, adr any) []any {
	return []any{year, month, day, weekend, week, int64(2), nil, int64(0), adr, nil, nil, nil}
}

func sampleRaw() table.Table {
	return rawBookings(
		booked(2017, "July", 15, 1, 2, 100.0),
		booked(2017, "July", 20, 0, 2, 100.0),
		booked(2016, "August", 1, 2, 5, nil),
	)
}

func testConfig() config.Pipeline {
	p := config.Default()
	p.Storage.Kind = "fake"
	return p
}

func TestRun_Success(t *testing.T) {
	t.Parallel()

	st := &fakeStore{raw: sampleRaw()}
	res, err := Run(context.Background(), st, testConfig(), "run-1")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantCalls := []string{
		"ensure production",
		"read raw_data.hotel_bookings",
		"replace production.cleaned_hotel_bookings",
		"replace production.monthly_summary",
	}
	if !reflect.DeepEqual(st.calls, wantCalls) {
		t.Fatalf("calls = %v, want %v", st.calls, wantCalls)
	}

	if res.RunID != "run-1" || res.SourceRows != 3 || res.CleanedRows != 3 || res.SummaryRows != 2 {
		t.Fatalf("result = %+v", res)
	}
	cleaned := st.written["cleaned_hotel_bookings"]
	summary := st.written["monthly_summary"]
	if res.CleanedFingerprint != table.Fingerprint(cleaned) || res.SummaryFingerprint != table.Fingerprint(summary) {
		t.Fatal("fingerprints do not match the written tables")
	}
	if table.Fingerprint(res.Summary) != table.Fingerprint(summary) {
		t.Fatal("Result.Summary differs from the written summary")
	}

	// (2016, 8) sorts before (2017, 7).
	year := summary.Index("arrival_date_year")
	if summary.Rows[0][year] != int64(2016) || summary.Rows[1][year] != int64(2017) {
		t.Fatalf("summary order = %#v", summary.Rows)
	}
	rev := summary.Index(booking.ColTotalRevenue)
	if got := summary.Rows[1][rev]; got != 500.0 {
		t.Fatalf("July revenue = %#v, want 500.0", got)
	}
}

func TestRun_Failures(t *testing.T) {
	t.Parallel()

	notFound := fmt.Errorf("sqlite: read raw_data.hotel_bookings: %w", storage.ErrTableNotFound)
	unreachable := errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

	tests := []struct {
		name      string
		store     *fakeStore
		wantStage Stage
		wantKind  Kind
		wantIs    error
		wantCalls int
		written   []string
	}{
		{
			name:      "namespace cannot be created",
			store:     &fakeStore{raw: sampleRaw(), ensureErr: unreachable},
			wantStage: StageEnsureNamespace,
			wantKind:  KindConnectivity,
			wantIs:    unreachable,
			wantCalls: 1,
		},
		{
			name:      "source unreachable",
			store:     &fakeStore{readErr: unreachable},
			wantStage: StageRead,
			wantKind:  KindConnectivity,
			wantIs:    unreachable,
			wantCalls: 2,
		},
		{
			name:      "source missing",
			store:     &fakeStore{readErr: notFound},
			wantStage: StageRead,
			wantKind:  KindMissingSource,
			wantIs:    storage.ErrTableNotFound,
			wantCalls: 2,
		},
		{
			name:      "unmapped month",
			store:     &fakeStore{raw: rawBookings(booked(2017, "Julio", 1, 1, 1, 10.0))},
			wantStage: StageTransform,
			wantKind:  KindDataShape,
			wantIs:    booking.ErrUnmappedMonth,
			wantCalls: 2,
		},
		{
			name:      "impossible date",
			store:     &fakeStore{raw: rawBookings(booked(2017, "June", 31, 1, 1, 10.0))},
			wantStage: StageTransform,
			wantKind:  KindDataShape,
			wantIs:    booking.ErrInvalidDate,
			wantCalls: 2,
		},
		{
			name:      "cleaned write fails",
			store:     &fakeStore{raw: sampleRaw(), writeErr: map[string]error{"cleaned_hotel_bookings": unreachable}},
			wantStage: StageWriteCleaned,
			wantKind:  KindWrite,
			wantIs:    unreachable,
			wantCalls: 3,
		},
		{
			name:      "summary write fails after cleaned is replaced",
			store:     &fakeStore{raw: sampleRaw(), writeErr: map[string]error{"monthly_summary": unreachable}},
			wantStage: StageWriteSummary,
			wantKind:  KindWrite,
			wantIs:    unreachable,
			wantCalls: 4,
			written:   []string{"cleaned_hotel_bookings"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Run(context.Background(), tt.store, testConfig(), "")
			if err == nil {
				t.Fatal("Run succeeded, want error")
			}
			var se *StageError
			if !errors.As(err, &se) {
				t.Fatalf("err %T is not a *StageError: %v", err, err)
			}
			if StageOf(err) != tt.wantStage || KindOf(err) != tt.wantKind {
				t.Fatalf("stage=%s kind=%s, want %s %s", StageOf(err), KindOf(err), tt.wantStage, tt.wantKind)
			}
			if !errors.Is(err, tt.wantIs) {
				t.Fatalf("errors.Is(%v, %v) = false", err, tt.wantIs)
			}
			if len(tt.store.calls) != tt.wantCalls {
				t.Fatalf("calls = %v, want %d", tt.store.calls, tt.wantCalls)
			}
			var got []string
			for name := range tt.store.written {
				got = append(got, name)
			}
			if len(got) != len(tt.written) || (len(got) == 1 && got[0] != tt.written[0]) {
				t.Fatalf("written tables = %v, want %v", got, tt.written)
			}
		})
	}
}

func TestRun_EmptySource(t *testing.T) {
	t.Parallel()

	st := &fakeStore{raw: rawBookings()}
	res, err := Run(context.Background(), st, testConfig(), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.SourceRows != 0 || res.CleanedRows != 0 || res.SummaryRows != 0 {
		t.Fatalf("result = %+v, want all zero", res)
	}
	summary, ok := st.written["monthly_summary"]
	if !ok || summary.Len() != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if !reflect.DeepEqual(summary.Columns, booking.SummaryColumns) {
		t.Fatalf("empty summary columns = %v", summary.Names())
	}
	if cleaned := st.written["cleaned_hotel_bookings"]; cleaned.Index(booking.ColEstimatedRevenue) < 0 {
		t.Fatalf("empty cleaned table lacks derived columns: %v", cleaned.Names())
	}
}

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()

	a, err := Run(context.Background(), &fakeStore{raw: sampleRaw()}, testConfig(), "a")
	if err != nil {
		t.Fatalf("Run a: %v", err)
	}
	b, err := Run(context.Background(), &fakeStore{raw: sampleRaw()}, testConfig(), "b")
	if err != nil {
		t.Fatalf("Run b: %v", err)
	}
	if a.CleanedFingerprint != b.CleanedFingerprint || a.SummaryFingerprint != b.SummaryFingerprint {
		t.Fatalf("fingerprints differ across runs: %+v vs %+v", a, b)
	}
}

func TestKindOfAndStageOf(t *testing.T) {
	t.Parallel()

	if KindOf(nil) != "" || StageOf(errors.New("plain")) != "" {
		t.Fatal("non-stage errors must report empty kind and stage")
	}
	se := &StageError{Stage: StageRead, Kind: KindMissingSource, Err: storage.ErrTableNotFound}
	wrapped := fmt.Errorf("scheduled run: %w", se)
	if KindOf(wrapped) != KindMissingSource || StageOf(wrapped) != StageRead {
		t.Fatalf("KindOf/StageOf through wrapping = %s/%s", KindOf(wrapped), StageOf(wrapped))
	}
	want := "pipeline: stage=read kind=missing_source: " + storage.ErrTableNotFound.Error()
	if se.Error() != want {
		t.Fatalf("Error() = %q, want %q", se.Error(), want)
	}
}
