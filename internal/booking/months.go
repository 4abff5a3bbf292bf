package booking

var monthNumbers = map[string]int64{
	"January":   1,
	"February":  2,
	"March":     3,
	"April":     4,
	"May":       5,
	"June":      6,
	"July":      7,
	"August":    8,
	"September": 9,
	"October":   10,
	"November":  11,
	"December":  12,
}

// MonthNumber maps an English month name to 1–12. The match is exact and
// case-sensitive: "july" and " July" are not months.
func MonthNumber(name string) (int64, bool) {
	n, ok := monthNumbers[name]
	return n, ok
}
