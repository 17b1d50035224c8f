package repository

// Period is a Yahoo-style lookback range such as "6mo".
type Period string

const (
	Period5d  Period = "5d"
	Period1mo Period = "1mo"
	Period3mo Period = "3mo"
	Period6mo Period = "6mo"
	Period1y  Period = "1y"
	Period2y  Period = "2y"
	Period5y  Period = "5y"
)

// IsValidPeriod returns true if p is a supported lookback.
func IsValidPeriod(p Period) bool {
	switch p {
	case Period5d, Period1mo, Period3mo, Period6mo, Period1y, Period2y, Period5y:
		return true
	default:
		return false
	}
}
