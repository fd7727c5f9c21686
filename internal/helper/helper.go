package helper

import (
	"fmt"
	"math/big"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompareDecimal128 compares two primitive.Decimal128 values.
// It returns:
// -1 if d1 < d2
// 0 if d1 == d2
// 1 if d1 > d2
// An error if conversion to big.Float fails (NaN, Infinity).
func CompareDecimal128(d1, d2 primitive.Decimal128) (int, error) {
	f1, _, err := new(big.Float).SetPrec(big.MaxPrec).Parse(d1.String(), 10)
	if err != nil {
		return 0, fmt.Errorf("failed to convert d1 to big.Float: %w", err)
	}
	f2, _, err := new(big.Float).SetPrec(big.MaxPrec).Parse(d2.String(), 10)
	if err != nil {
		return 0, fmt.Errorf("failed to convert d2 to big.Float: %w", err)
	}
	return f1.Cmp(f2), nil
}

// Decimal128Sign reports the sign of d: -1, 0 or 1.
// An error is returned for special values (NaN, Infinity).
func Decimal128Sign(d primitive.Decimal128) (int, error) {
	if d.IsNaN() || d.IsInf() != 0 {
		return 0, fmt.Errorf("cannot take sign of special Decimal128 value %s", d.String())
	}
	f, _, err := new(big.Float).SetPrec(big.MaxPrec).Parse(d.String(), 10)
	if err != nil {
		return 0, fmt.Errorf("failed to convert d to big.Float: %w", err)
	}
	return f.Sign(), nil
}

// Decimal128IsPositive reports whether d is strictly greater than zero.
// Unparseable values count as not positive, so classification never treats a
// malformed amount as money.
func Decimal128IsPositive(d primitive.Decimal128) bool {
	sign, err := Decimal128Sign(d)
	if err != nil {
		return false
	}
	return sign > 0
}

// Decimal128Equal reports whether two amounts are numerically equal
// (so "10" equals "10.00"). Unparseable values are never equal to anything.
func Decimal128Equal(d1, d2 primitive.Decimal128) bool {
	cmp, err := CompareDecimal128(d1, d2)
	if err != nil {
		return false
	}
	return cmp == 0
}
