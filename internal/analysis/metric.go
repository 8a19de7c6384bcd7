package analysis

import (
	"bytes"
	"math"
	"strconv"
)

// Metric is a statistic that may be undefined, for example the mean of an
// empty view. Undefined is represented by NaN; it encodes as JSON null and
// prints as "N/A".
type Metric float64

// Undefined returns the undefined metric.
func Undefined() Metric { return Metric(math.NaN()) }

// Defined reports whether m holds a real value.
func (m Metric) Defined() bool {
	f := float64(m)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Float returns the raw value (NaN when undefined).
func (m Metric) Float() float64 { return float64(m) }

// Format renders m with prec decimals, or "N/A".
func (m Metric) Format(prec int) string {
	if !m.Defined() {
		return "N/A"
	}
	return strconv.FormatFloat(float64(m), 'f', prec, 64)
}

func (m Metric) String() string { return m.Format(2) }

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Defined() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(m), 'f', -1, 64), nil
}

func (m *Metric) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*m = Undefined()
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*m = Metric(f)
	return nil
}

func percent(part, total int) Metric {
	if total == 0 {
		return Undefined()
	}
	return Metric(float64(part) * 100 / float64(total))
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
