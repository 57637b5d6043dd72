package crossfile

import (
	"math"
	"strconv"
)

// Key identifies one comparison row: a frame running at a speed.
type Key struct {
	Frame string
	Speed float64
}

// Label renders the key as "<frame>_speed<speed>", e.g. "FRAB12_speed5.0".
func (k Key) Label() string {
	return k.Frame + "_speed" + FormatSpeed(k.Speed)
}

// FormatSpeed writes a speed the way the reference sheets always have: at
// least one decimal place, no trailing zeros beyond it.
func FormatSpeed(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
