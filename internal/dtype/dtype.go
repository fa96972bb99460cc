// Package dtype handles the output buffer's numeric type: the saturating
// cast from the accumulator's working precision (f64/u64) down to the
// caller-requested output type, and the background/fill substitution policy
// for values that can't be represented.
package dtype

import "math"

// DType enumerates the supported output pixel types.
type DType uint8

const (
	U8 DType = iota
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F32
	F64
)

func (d DType) String() string {
	switch d {
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return "unknown"
	}
}

// Float reports whether d is a floating-point type. Floating types accept
// NaN as a legitimate background value; integral types do not.
func (d DType) Float() bool {
	return d == F32 || d == F64
}

func (d DType) bounds() (lo, hi float64) {
	switch d {
	case U8:
		return 0, math.MaxUint8
	case U16:
		return 0, math.MaxUint16
	case U32:
		return 0, math.MaxUint32
	case U64:
		return 0, math.MaxUint64
	case I8:
		return math.MinInt8, math.MaxInt8
	case I16:
		return math.MinInt16, math.MaxInt16
	case I32:
		return math.MinInt32, math.MaxInt32
	case I64:
		return math.MinInt64, math.MaxInt64
	default:
		return math.Inf(-1), math.Inf(1)
	}
}

// DefaultFill is the substitute used when a caller's requested background
// can't be represented in d: NaN on an integral dtype, or a value outside
// d's range. GDAL convention: zero for integral types, NaN for floats.
func (d DType) DefaultFill() float64 {
	if d.Float() {
		return math.NaN()
	}
	return 0
}

// ResolveBackground applies the default-fill policy (spec §4.7): a NaN
// background on an integral dtype, or one outside the dtype's range, is
// silently replaced by DefaultFill.
func (d DType) ResolveBackground(bg float64) float64 {
	if math.IsNaN(bg) {
		if d.Float() {
			return bg
		}
		return d.DefaultFill()
	}
	lo, hi := d.bounds()
	if bg < lo || bg > hi {
		return d.DefaultFill()
	}
	return bg
}

// Saturate casts v into d's range, clamping (not wrapping) on overflow and
// rounding to nearest for integral types. NaN maps to DefaultFill on
// integral dtypes and passes through unchanged on float dtypes.
func (d DType) Saturate(v float64) float64 {
	if math.IsNaN(v) {
		if d.Float() {
			return v
		}
		return d.DefaultFill()
	}
	if d == F64 {
		return v
	}
	if d == F32 {
		return float64(float32(v))
	}
	lo, hi := d.bounds()
	r := math.Round(v)
	if r < lo {
		return lo
	}
	if r > hi {
		return hi
	}
	return r
}
