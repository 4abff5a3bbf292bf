package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/sebamyu/Mini-Project-AIE321/internal/table"
)

var requiredColumns = []string{
	ColYear, ColMonth, ColDay,
	ColWeekendNights, ColWeekNights,
	ColAdults, ColChildren, ColBabies,
	ColADR, ColCountry, ColAgent, ColCompany,
}

// Transform returns the cleaned bookings table: every input column (same
// order, same rows) followed by total_guests, total_nights,
// arrival_date_month_num, arrival_full_date and estimated_revenue.
//
// The input is not modified. Steps run in a fixed order because later ones
// read the output of earlier ones:
//
//  1. children, agent, company: missing -> 0; country: missing or blank -> "Unknown"
//  2. total_guests = adults + children + babies, total_nights = weekend + week nights
//  3. month name -> 1..12 (exact English names)
//  4. arrival_full_date from year, month number and day of month
//  5. estimated_revenue = adr * total_nights
//
// A month name outside the lookup or an impossible calendar date fails the
// whole transform with a *RowError.
func Transform(in table.Table) (table.Table, error) {
	idx, err := indexOf(in, requiredColumns...)
	if err != nil {
		return table.Table{}, err
	}
	for _, name := range []string{ColWeekendNights, ColWeekNights, ColAdults, ColChildren, ColBabies, ColADR, ColYear, ColDay} {
		if k := in.Columns[idx[name]].Kind; k != table.Int && k != table.Float {
			return table.Table{}, fmt.Errorf("%w: column %s has kind %s, want int or float", ErrBadValue, name, k)
		}
	}

	out := in.Clone()

	// 1) Null fills.
	for _, name := range []string{ColChildren, ColAgent, ColCompany} {
		i := idx[name]
		zero := zeroOf(out.Columns[i].Kind)
		for _, r := range out.Rows {
			if r[i] == nil {
				r[i] = zero
			}
		}
	}
	if err := fillCountry(&out, idx[ColCountry]); err != nil {
		return table.Table{}, err
	}

	// 2) Guest and night totals.
	guestKind, guests := sumColumns(out, idx[ColAdults], idx[ColChildren], idx[ColBabies])
	nightKind, nights := sumColumns(out, idx[ColWeekendNights], idx[ColWeekNights])

	// 3) + 4) Month number and full arrival date.
	monthNums := make([]any, out.Len())
	dates := make([]any, out.Len())
	for i, r := range out.Rows {
		n, err := monthNumberOf(r[idx[ColMonth]])
		if err != nil {
			return table.Table{}, &RowError{Row: i + 1, Column: ColMonth, Err: err}
		}
		monthNums[i] = n

		d, err := arrivalDate(r[idx[ColYear]], n, r[idx[ColDay]])
		if err != nil {
			return table.Table{}, &RowError{Row: i + 1, Column: ColFullDate, Err: err}
		}
		dates[i] = d
	}

	// 5) Revenue.
	revenue := make([]any, out.Len())
	for i, r := range out.Rows {
		rate, ok := asFloat(r[idx[ColADR]])
		n, ok2 := asFloat(nights[i])
		if !ok || !ok2 {
			revenue[i] = nil
			continue
		}
		revenue[i] = rate * n
	}

	derived := []struct {
		col  table.Column
		vals []any
	}{
		{table.Column{Name: ColTotalGuests, Kind: guestKind}, guests},
		{table.Column{Name: ColTotalNights, Kind: nightKind}, nights},
		{table.Column{Name: ColMonthNum, Kind: table.Int}, monthNums},
		{table.Column{Name: ColFullDate, Kind: table.Date}, dates},
		{table.Column{Name: ColEstimatedRevenue, Kind: table.Float}, revenue},
	}
	for _, d := range derived {
		if err := out.AddColumn(d.col, d.vals); err != nil {
			return table.Table{}, fmt.Errorf("%w: %v", ErrBadValue, err)
		}
	}
	return out, nil
}

// indexOf resolves column positions, failing on the first absent name.
func indexOf(t table.Table, names ...string) (map[string]int, error) {
	idx := make(map[string]int, len(names))
	for _, n := range names {
		i := t.Index(n)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, n)
		}
		idx[n] = i
	}
	return idx, nil
}

func zeroOf(k table.Kind) any {
	switch k {
	case table.Float:
		return float64(0)
	case table.String:
		return "0"
	case table.Bool:
		return false
	default:
		return int64(0)
	}
}

// fillCountry replaces missing and blank countries. A non-text country column
// (e.g. one that was entirely NULL and typed otherwise by the source) is
// re-typed as text first.
func fillCountry(t *table.Table, i int) error {
	if t.Columns[i].Kind != table.String {
		t.Columns[i].Kind = table.String
		for _, r := range t.Rows {
			v, err := table.Normalize(table.String, r[i])
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrBadValue, ColCountry, err)
			}
			r[i] = v
		}
	}
	for _, r := range t.Rows {
		s, _ := r[i].(string)
		if r[i] == nil || strings.TrimSpace(s) == "" {
			r[i] = UnknownCountry
		}
	}
	return nil
}

// sumColumns adds the given numeric columns row by row. The result is Float
// if any operand column is Float. A missing operand makes the sum missing.
func sumColumns(t table.Table, cols ...int) (table.Kind, []any) {
	kind := table.Int
	for _, c := range cols {
		if t.Columns[c].Kind == table.Float {
			kind = table.Float
		}
	}

	out := make([]any, t.Len())
	for i, r := range t.Rows {
		var (
			fsum    float64
			isum    int64
			missing bool
		)
		for _, c := range cols {
			if r[c] == nil {
				missing = true
				break
			}
			if kind == table.Float {
				f, _ := asFloat(r[c])
				fsum += f
			} else {
				n, _ := asInt(r[c])
				isum += n
			}
		}
		switch {
		case missing:
			out[i] = nil
		case kind == table.Float:
			out[i] = fsum
		default:
			out[i] = isum
		}
	}
	return kind, out
}

func monthNumberOf(v any) (int64, error) {
	name, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnmappedMonth, v)
	}
	n, ok := MonthNumber(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnmappedMonth, name)
	}
	return n, nil
}

func arrivalDate(yearV any, month int64, dayV any) (time.Time, error) {
	year, ok := asInt(yearV)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: year %v", ErrInvalidDate, yearV)
	}
	day, ok := asInt(dayV)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: day %v", ErrInvalidDate, dayV)
	}
	d := time.Date(int(year), time.Month(month), int(day), 0, 0, 0, 0, time.UTC)
	// time.Date normalises overflow (June 31 -> July 1); reject that.
	if int64(d.Year()) != year || int64(d.Month()) != month || int64(d.Day()) != day {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}
	return d, nil
}

// asInt accepts int64 and integral float64 values.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	}
	return 0, false
}
