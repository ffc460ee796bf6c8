package util

import "github.com/shopspring/decimal"

// Round2 rounds half up to two decimal places. The value is taken at its
// shortest decimal representation, so 1.005 rounds to 1.01 even though
// the nearest float64 lies just below it.
func Round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// Percent returns round2(100*part/total), or 0 when total is 0.
func Percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return Round2(float64(part) / float64(total) * 100)
}

// TotalPages returns ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
