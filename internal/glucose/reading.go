// Package glucose holds sensor readings and the bounded history the collector appends to.
package glucose

import "strings"

// Reading is one sensor glucose value.
type Reading struct {
	// SGV is the concentration in mg/dL.
	SGV int
	// Epoch is seconds since the Unix epoch.
	Epoch int64
	Trend Trend
}

// Age returns how many seconds old r is at now.
func (r Reading) Age(now int64) int64 { return now - r.Epoch }

// Trend is the sensor's own rate-of-change classification.
type Trend uint8

const (
	TrendNone Trend = iota
	TrendDoubleUp
	TrendSingleUp
	TrendFortyFiveUp
	TrendFlat
	TrendFortyFiveDown
	TrendSingleDown
	TrendDoubleDown
	TrendNotComputable
	TrendRateOutOfRange
)

var trendNames = [...]string{
	TrendNone:           "NONE",
	TrendDoubleUp:       "DoubleUp",
	TrendSingleUp:       "SingleUp",
	TrendFortyFiveUp:    "FortyFiveUp",
	TrendFlat:           "Flat",
	TrendFortyFiveDown:  "FortyFiveDown",
	TrendSingleDown:     "SingleDown",
	TrendDoubleDown:     "DoubleDown",
	TrendNotComputable:  "NOT COMPUTABLE",
	TrendRateOutOfRange: "RATE OUT OF RANGE",
}

func (t Trend) String() string {
	if int(t) < len(trendNames) {
		return trendNames[t]
	}
	return "NONE"
}

// ParseTrend maps a Nightscout direction name to a Trend.
// Matching ignores case, spaces and underscores; unknown names are TrendNone.
func ParseTrend(s string) Trend {
	key := normalizeTrend(s)
	for i, name := range trendNames {
		if normalizeTrend(name) == key {
			return Trend(i)
		}
	}
	return TrendNone
}

func normalizeTrend(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "_", "")
}
