// Package booking holds the hotel-bookings cleaning and monthly summary rules.
//
// Transform turns the raw bookings table into the cleaned table (null fills
// plus derived columns) and Aggregate reduces the cleaned table to one row per
// arrival year and month. Both are pure functions over table.Table.
package booking

import (
	"errors"
	"fmt"
)

// Source columns the rules read.
const (
	ColYear          = "arrival_date_year"
	ColMonth         = "arrival_date_month"
	ColDay           = "arrival_date_day_of_month"
	ColWeekendNights = "stays_in_weekend_nights"
	ColWeekNights    = "stays_in_week_nights"
	ColAdults        = "adults"
	ColChildren      = "children"
	ColBabies        = "babies"
	ColADR           = "adr"
	ColCountry       = "country"
	ColAgent         = "agent"
	ColCompany       = "company"
)

// Derived columns appended by Transform, in this order.
const (
	ColTotalGuests      = "total_guests"
	ColTotalNights      = "total_nights"
	ColMonthNum         = "arrival_date_month_num"
	ColFullDate         = "arrival_full_date"
	ColEstimatedRevenue = "estimated_revenue"
)

// Summary columns produced by Aggregate, after the three key columns.
const (
	ColTotalBookings = "total_bookings"
	ColTotalRevenue  = "total_revenue"
	ColAvgADR        = "avg_adr"
)

// UnknownCountry replaces a missing country.
const UnknownCountry = "Unknown"

var (
	// ErrMissingColumn is returned when a column the rules depend on is not
	// present in the input table.
	ErrMissingColumn = errors.New("booking: missing column")

	// ErrUnmappedMonth is returned for a month name outside the 12 English
	// month names (exact, case-sensitive match).
	ErrUnmappedMonth = errors.New("booking: unmapped month name")

	// ErrInvalidDate is returned when year, month and day do not form a
	// calendar date.
	ErrInvalidDate = errors.New("booking: invalid arrival date")

	// ErrBadValue is returned when a value has an unexpected type for its
	// column.
	ErrBadValue = errors.New("booking: bad value")
)

// RowError ties a data error to the 1-based row it came from.
type RowError struct {
	Row    int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s: %v", e.Row, e.Column, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
