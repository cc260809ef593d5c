// Package core provides the domain types shared by the calculators,
// importers and the HTTP layer.
//
// This file contains helpers for formatting tenge amounts for chat replies.
package core

import (
	"math"
	"strconv"
	"strings"
)

// FormatTenge renders a whole-tenge amount with space thousand separators,
// e.g. 2500000 -> "2 500 000 ₸".
func FormatTenge(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	s := b.String() + " ₸"
	if neg {
		return "-" + s
	}
	return s
}

// RoundHalfUp rounds to the nearest integer with halves going toward
// positive infinity, so -2.5 becomes -2.
func RoundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
