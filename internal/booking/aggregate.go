package booking

import (
	"sort"

	"github.com/sebamyu/Mini-Project-AIE321/internal/table"
)

// SummaryColumns is the schema of the monthly summary table.
var SummaryColumns = []table.Column{
	{Name: ColYear, Kind: table.Int},
	{Name: ColMonthNum, Kind: table.Int},
	{Name: ColMonth, Kind: table.String},
	{Name: ColTotalBookings, Kind: table.Int},
	{Name: ColTotalRevenue, Kind: table.Float},
	{Name: ColAvgADR, Kind: table.Float},
}

type monthKey struct {
	year  int64
	month int64
	name  string
}

type monthAcc struct {
	bookings int64
	revenue  float64
	adrSum   float64
	adrN     int64
}

// Aggregate groups a cleaned bookings table by (year, month number, month
// name) and returns one summary row per group, ordered by year then month.
//
// total_bookings counts every row in the group. total_revenue sums the
// non-missing estimated_revenue values (0 when none). avg_adr is the mean of
// the non-missing adr values; it is missing when the group has none.
func Aggregate(t table.Table) (table.Table, error) {
	idx, err := indexOf(t, ColYear, ColMonthNum, ColMonth, ColEstimatedRevenue, ColADR)
	if err != nil {
		return table.Table{}, err
	}

	groups := make(map[monthKey]*monthAcc)
	for i, r := range t.Rows {
		year, ok := asInt(r[idx[ColYear]])
		if !ok {
			return table.Table{}, &RowError{Row: i + 1, Column: ColYear, Err: ErrBadValue}
		}
		month, ok := asInt(r[idx[ColMonthNum]])
		if !ok {
			return table.Table{}, &RowError{Row: i + 1, Column: ColMonthNum, Err: ErrBadValue}
		}
		name, ok := r[idx[ColMonth]].(string)
		if !ok {
			return table.Table{}, &RowError{Row: i + 1, Column: ColMonth, Err: ErrBadValue}
		}

		k := monthKey{year: year, month: month, name: name}
		acc := groups[k]
		if acc == nil {
			acc = &monthAcc{}
			groups[k] = acc
		}
		acc.bookings++
		if rev, ok := asFloat(r[idx[ColEstimatedRevenue]]); ok {
			acc.revenue += rev
		}
		if adr, ok := asFloat(r[idx[ColADR]]); ok {
			acc.adrSum += adr
			acc.adrN++
		}
	}

	keys := make([]monthKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.year != b.year {
			return a.year < b.year
		}
		if a.month != b.month {
			return a.month < b.month
		}
		return a.name < b.name
	})

	out := table.Table{
		Columns: append([]table.Column(nil), SummaryColumns...),
		Rows:    make([][]any, 0, len(keys)),
	}
	for _, k := range keys {
		acc := groups[k]
		var avg any
		if acc.adrN > 0 {
			avg = acc.adrSum / float64(acc.adrN)
		}
		out.Rows = append(out.Rows, []any{k.year, k.month, k.name, acc.bookings, acc.revenue, avg})
	}
	return out, nil
}
