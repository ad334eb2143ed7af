package models

// TimeUnit names a sampling frame for steps and volatilities.
type TimeUnit string

const (
	UnitMicrosecond TimeUnit = "MICROSECOND"
	UnitMillisecond TimeUnit = "MILLISECOND"
	UnitSecond      TimeUnit = "SECOND"
	UnitMinute      TimeUnit = "MINUTE"
	UnitHour        TimeUnit = "HOUR"
	UnitDay         TimeUnit = "DAY"
	UnitWeek        TimeUnit = "WEEK"
	UnitMonth       TimeUnit = "MONTH"
	UnitYear        TimeUnit = "YEAR"
)

// PeriodsPerYear returns how many periods of the unit fit in a
// calendar year. Days use the 365-day calendar convention; trading-day
// scaling belongs to the volatility estimators.
func (u TimeUnit) PeriodsPerYear() float64 {
	switch u {
	case UnitMicrosecond:
		return 365 * 24 * 3600 * 1e6
	case UnitMillisecond:
		return 365 * 24 * 3600 * 1e3
	case UnitSecond:
		return 365 * 24 * 3600
	case UnitMinute:
		return 365 * 24 * 60
	case UnitHour:
		return 365 * 24
	case UnitDay:
		return 365
	case UnitWeek:
		return 52
	case UnitMonth:
		return 12
	case UnitYear:
		return 1
	}
	return 365
}
