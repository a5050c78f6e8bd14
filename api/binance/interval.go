package binance

import (
	ex "cryptostats/data/extensions"
)

// TimeInterval specifies the candle width to query klines at.
type TimeInterval uint8

const (
	TimeIntervalOneMinute TimeInterval = iota
	TimeIntervalFiveMinute
	TimeIntervalFifteenMinute
	TimeIntervalThirtyMinute
	TimeIntervalOneHour
	TimeIntervalFourHour
	TimeIntervalDaily
	TimeIntervalWeekly
	TimeIntervalMonthly
)

var intervals = []TimeInterval{
	TimeIntervalOneMinute,
	TimeIntervalFiveMinute,
	TimeIntervalFifteenMinute,
	TimeIntervalThirtyMinute,
	TimeIntervalOneHour,
	TimeIntervalFourHour,
	TimeIntervalDaily,
	TimeIntervalWeekly,
	TimeIntervalMonthly,
}

func (t TimeInterval) Name() string {
	switch t {
	case TimeIntervalOneMinute:
		return "TimeIntervalOneMinute"
	case TimeIntervalFiveMinute:
		return "TimeIntervalFiveMinute"
	case TimeIntervalFifteenMinute:
		return "TimeIntervalFifteenMinute"
	case TimeIntervalThirtyMinute:
		return "TimeIntervalThirtyMinute"
	case TimeIntervalOneHour:
		return "TimeIntervalOneHour"
	case TimeIntervalFourHour:
		return "TimeIntervalFourHour"
	case TimeIntervalDaily:
		return "TimeIntervalDaily"
	case TimeIntervalWeekly:
		return "TimeIntervalWeekly"
	case TimeIntervalMonthly:
		return "TimeIntervalMonthly"
	default:
		return ""
	}
}

// Interval is the value binance expects in the interval query parameter
func (t TimeInterval) Interval() string {
	switch t {
	case TimeIntervalOneMinute:
		return "1m"
	case TimeIntervalFiveMinute:
		return "5m"
	case TimeIntervalFifteenMinute:
		return "15m"
	case TimeIntervalThirtyMinute:
		return "30m"
	case TimeIntervalOneHour:
		return "1h"
	case TimeIntervalFourHour:
		return "4h"
	case TimeIntervalDaily:
		return "1d"
	case TimeIntervalWeekly:
		return "1w"
	case TimeIntervalMonthly:
		return "1M"
	default:
		return ""
	}
}

// ParseTimeInterval maps a binance interval string back to a TimeInterval.
// The match is case sensitive since 1m and 1M differ.
func ParseTimeInterval(s string) (TimeInterval, error) {
	for _, t := range intervals {
		if t.Interval() == s {
			return t, nil
		}
	}
	return 0, ex.InvalidInputf("unknown kline interval %q", s)
}
