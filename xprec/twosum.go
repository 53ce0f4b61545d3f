package xprec

import "math"

// Float is an unevaluated sum hi+lo of two float64 values representing a
// single extended-precision scalar, following the standard "double-double"
// error-free-transform technique. Hi carries the value to double precision
// and Lo carries the rounding error of Hi, so that Hi+Lo (evaluated in
// infinite precision) equals the represented value exactly whenever the
// inputs to the transforms below are finite.
type Float struct {
	Hi, Lo float64
}

// Of returns the Float representing v exactly.
func Of(v float64) Float { return Float{Hi: v} }

// Float64 returns the double-precision approximation of f.
func (f Float) Float64() float64 { return f.Hi + f.Lo }

// TwoSum returns s, e such that s = fl(a+b) and a+b = s+e exactly, using
// Knuth's two-sum error-free transform. No FMA instruction is required.
func TwoSum(a, b float64) (s, e float64) {
	s = a + b
	bv := s - a
	av := s - bv
	br := b - bv
	ar := a - av
	e = ar + br
	return s, e
}

// fastTwoSum is TwoSum specialized to the case |a| >= |b|; it is cheaper
// but silently wrong if that precondition does not hold, so it is kept
// unexported and only used internally where the precondition is known.
func fastTwoSum(a, b float64) (s, e float64) {
	s = a + b
	e = b - (s - a)
	return s, e
}

// TwoProduct returns p, e such that p = fl(a*b) and a*b = p+e exactly. It
// uses math.FMA where the platform provides a fused multiply-add, which
// removes the need for Dekker's splitting trick.
func TwoProduct(a, b float64) (p, e float64) {
	p = a * b
	e = math.FMA(a, b, -p)
	return p, e
}

// Add returns f+g as an extended-precision sum, renormalized so that Hi
// dominates Lo.
func Add(f, g Float) Float {
	s, e := TwoSum(f.Hi, g.Hi)
	e += f.Lo + g.Lo
	hi, lo := fastTwoSum(s, e)
	return Float{Hi: hi, Lo: lo}
}

// AddFloat64 returns f+v as an extended-precision sum.
func AddFloat64(f Float, v float64) Float {
	s, e := TwoSum(f.Hi, v)
	e += f.Lo
	hi, lo := fastTwoSum(s, e)
	return Float{Hi: hi, Lo: lo}
}

// Mul returns f*g as an extended-precision product.
func Mul(f, g Float) Float {
	p, e := TwoProduct(f.Hi, g.Hi)
	e += f.Hi*g.Lo + f.Lo*g.Hi
	hi, lo := fastTwoSum(p, e)
	return Float{Hi: hi, Lo: lo}
}

// MulFloat64 returns f*v as an extended-precision product.
func MulFloat64(f Float, v float64) Float {
	p, e := TwoProduct(f.Hi, v)
	e += f.Lo * v
	hi, lo := fastTwoSum(p, e)
	return Float{Hi: hi, Lo: lo}
}

// Sub returns f-g.
func Sub(f, g Float) Float {
	return Add(f, Float{Hi: -g.Hi, Lo: -g.Lo})
}

// DotSum accumulates the extended-precision dot product sum_i a[i]*b[i].
// It is the core primitive used by the dual-objective recomputation on
// rebuild (simplex) and by the lifted-cover coefficient derivation
// (cutgen), both of which sum many terms of widely varying magnitude.
func DotSum(a, b []float64) Float {
	var acc Float
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		acc = Add(acc, Mul(Of(a[i]), Of(b[i])))
	}
	return acc
}

// Sum accumulates vals in extended precision.
func Sum(vals []float64) Float {
	var acc Float
	for _, v := range vals {
		acc = AddFloat64(acc, v)
	}
	return acc
}
