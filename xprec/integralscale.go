package xprec

import "math"

// IntegralScale returns the smallest common denominator D, 1 <= D <= 1e18,
// such that every D*vals[i] lies within deltaUp of an integer, or 0 if no
// such D can be found. deltaDown controls how aggressively the per-value
// continued-fraction reconstruction (below) accepts a candidate
// denominator before refining it further.
//
// Each value is reconstructed independently as a continued-fraction
// convergent (the smallest denominator whose fractional remainder is
// within deltaDown), and the candidates are then combined by least common
// multiple; a final extended-precision pass (xprec.Float) extends D by a
// small per-value factor (at most 1000x) when floating-point noise leaves
// a value's product just outside deltaUp. The extended-precision pass is
// required because D can approach 1e18: plain float64 multiplication of D
// by a value near 1 loses precision well before that magnitude (S3 in the
// scenarios below needs it to recover the product of six 3-digit primes
// exactly).
func IntegralScale(vals []float64, deltaDown, deltaUp float64) uint64 {
	const maxD = uint64(1e18)
	if len(vals) == 0 {
		return 0
	}

	d := uint64(1)
	for _, v := range vals {
		av := math.Abs(v)
		if av == 0 {
			continue
		}
		q := rationalDenom(av, deltaDown, maxD)
		if q == 0 {
			return 0
		}
		d = lcmU64(d, q)
		if d == 0 || d > maxD {
			return 0
		}
	}

	for _, v := range vals {
		if v == 0 {
			continue
		}
		ok := false
		for factor := uint64(1); factor <= 1000; factor++ {
			dd := d * factor
			if dd > maxD || dd < d {
				break
			}
			prod := MulFloat64(Of(v), float64(dd))
			val := prod.Float64()
			if math.Abs(val-math.Round(val)) <= deltaUp {
				d = dd
				ok = true
				break
			}
		}
		if !ok {
			return 0
		}
	}
	return d
}

// rationalDenom finds the smallest convergent denominator k <= maxDenom of
// the continued-fraction expansion of x (x > 0) whose fractional remainder
// x*k - round(x*k) is within deltaDown of zero, evaluated in extended
// precision. It returns 0 if no such convergent is found before the
// denominator exceeds maxDenom or the expansion terminates exactly.
func rationalDenom(x, deltaDown float64, maxDenom uint64) uint64 {
	kPrev2, kPrev1 := int64(0), int64(1)
	r := x
	for iter := 0; iter < 72; iter++ {
		if kPrev1 > 0 {
			prod := MulFloat64(Of(x), float64(kPrev1))
			val := prod.Float64()
			if math.Abs(val-math.Round(val)) <= deltaDown {
				return uint64(kPrev1)
			}
		}
		if uint64(kPrev1) > maxDenom {
			return 0
		}
		frac := r - math.Floor(r)
		if frac < 1e-14 {
			// The expansion terminated exactly without satisfying the
			// tolerance at any convergent; no further refinement is
			// possible from this starting value.
			return 0
		}
		r = 1 / frac
		a := math.Floor(r)
		kNew := int64(a)*kPrev1 + kPrev2
		if kNew < kPrev1 || kNew <= 0 {
			return 0
		}
		kPrev2, kPrev1 = kPrev1, kNew
	}
	return 0
}

func gcdU64(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// lcmU64 returns the least common multiple of a and b, or 0 if it would
// overflow uint64.
func lcmU64(a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	g := gcdU64(a, b)
	q := a / g
	if b != 0 && q > math.MaxUint64/b {
		return 0
	}
	return q * b
}

// CommonDenominatorScale scales v in place by the integral scale factor
// found for v (using the given tolerances) and returns the factor used, or
// 0 (v left unmodified) if no reasonable integral scale exists. This is the
// "common-denominator scaling of a floating vector" utility named in the
// system overview; it is a thin wrapper used by cutgen's postprocessing
// step to try to turn a cut's coefficients into integers.
func CommonDenominatorScale(v []float64, deltaDown, deltaUp float64) uint64 {
	d := IntegralScale(v, deltaDown, deltaUp)
	if d == 0 {
		return 0
	}
	for i, x := range v {
		v[i] = math.Round(x * float64(d))
	}
	return d
}
