// Copyright ©2026 The dsmip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xprec implements extended-precision scalar arithmetic as an
// unevaluated sum of two float64 values (a "double-double"), and the
// integer-scaling utility built on top of it. Both are needed to avoid
// catastrophic cancellation in gcd/continued-fraction integrality detection
// and in cut-generation arithmetic (cutgen), where a long accumulating sum
// of coefficients with very different magnitudes would otherwise lose all
// its low-order bits in plain float64.
package xprec
