package stats

// Bounds is an inclusive [Lower, Upper] acceptance interval.
type Bounds struct {
	Lower float64
	Upper float64
}

// Contains reports whether v lies inside the interval.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}

// IQRBounds returns [Q1 - factor*IQR, Q3 + factor*IQR].
func IQRBounds(values []float64, factor float64) Bounds {
	q1, _, q3 := Quartiles(values)
	iqr := q3 - q1
	return Bounds{Lower: q1 - factor*iqr, Upper: q3 + factor*iqr}
}

// IQRTrim keeps the values inside the IQR bounds, preserving input order.
func IQRTrim(values []float64, factor float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	b := IQRBounds(values, factor)
	kept := make([]float64, 0, len(values))
	for _, v := range values {
		if b.Contains(v) {
			kept = append(kept, v)
		}
	}
	return kept
}

// HasIQROutliers reports whether any value falls outside the IQR bounds.
func HasIQROutliers(values []float64, factor float64) bool {
	if len(values) == 0 {
		return false
	}
	b := IQRBounds(values, factor)
	for _, v := range values {
		if !b.Contains(v) {
			return true
		}
	}
	return false
}

// TrimResult is the outcome of an IQR trim followed by a mean.
type TrimResult struct {
	Mean   float64
	Valid  bool // false when nothing survived or the gate was not met
	Before int
	After  int
}

// TrimmedMean applies a one-pass IQR trim and averages what remains.
//
// When fewer than minValues values are supplied no trim is attempted: the
// result reports Before=len(values), After=0 and Valid=false so the caller can
// pass its original value through unchanged.
func TrimmedMean(values []float64, factor float64, minValues int) TrimResult {
	res := TrimResult{Before: len(values)}
	if len(values) < minValues || len(values) == 0 {
		return res
	}

	kept := IQRTrim(values, factor)
	res.After = len(kept)
	if len(kept) == 0 {
		return res
	}
	res.Mean = Mean(kept)
	res.Valid = true
	return res
}
