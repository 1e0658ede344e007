// Package primes picks prime table sizes for open-addressed hash tables.
package primes

import (
	"errors"
	"fmt"
)

// ErrInvalidSize is returned when a size below 2 is asked for. Such a value is never a valid table size.
var ErrInvalidSize = errors.New("invalid size")

// Primality is a result of the IsPrime check.
type Primality int

const (
	Undefined Primality = iota - 1 // x < 2, primality makes no sense for a table size
	Composite
	Prime
)

func (p Primality) String() string {
	switch p {
	case Prime:
		return "prime"
	case Composite:
		return "composite"
	default:
		return "undefined"
	}
}

// IsPrime checks x by trial division with odd divisors up to ⌊√x⌋.
func IsPrime(x int) Primality {
	switch {
	case x < 2:
		return Undefined
	case x < 4:
		return Prime // 2, 3
	case x%2 == 0:
		return Composite
	}

	for i := 3; i*i <= x; i += 2 {
		if x%i == 0 {
			return Composite
		}
	}
	return Prime
}

// NextPrime returns the smallest prime which is greater or equal to x. Returns ErrInvalidSize if x < 2.
func NextPrime(x int) (int, error) {
	if IsPrime(x) == Undefined {
		return 0, fmt.Errorf("next prime for %d: %w", x, ErrInvalidSize)
	}
	for IsPrime(x) != Prime {
		x++
	}
	return x, nil
}
