// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package credential generates random passwords and scores password strength.
package credential

import (
	"crypto/rand"
	"errors"
	"math/big"
	"unicode"
)

// DefaultLength is the generator length used when none is configured.
const DefaultLength = 16

// Alphabet is the character set Generate draws from.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"

// symbols counted by StrengthScore. Matches the symbol part of Alphabet.
const symbols = "!@#$%^&*"

// ErrInvalidLength is returned for non-positive generator lengths.
var ErrInvalidLength = errors.New("password length must be positive")

// Generate returns a password of length characters, each chosen uniformly
// and independently from Alphabet using crypto/rand.
func Generate(length int) (string, error) {
	if length <= 0 {
		return "", ErrInvalidLength
	}
	max := big.NewInt(int64(len(Alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = Alphabet[n.Int64()]
	}
	return string(out), nil
}

// StrengthScore awards one point each for: length of at least 8, a
// lowercase letter, an uppercase letter, a digit, and one of !@#$%^&*.
func StrengthScore(pw string) int {
	var lower, upper, digit, symbol bool
	n := 0
	for _, r := range pw {
		n++
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case r < 128 && containsByte(symbols, byte(r)):
			symbol = true
		}
	}
	score := 0
	for _, ok := range []bool{n >= 8, lower, upper, digit, symbol} {
		if ok {
			score++
		}
	}
	return score
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

// Strength is a coarse band derived from a score.
type Strength string

const (
	Weak   Strength = "weak"
	Medium Strength = "medium"
	Strong Strength = "strong"
)

// Band maps 0-2 to Weak, 3-4 to Medium and 5 to Strong.
func Band(score int) Strength {
	switch {
	case score <= 2:
		return Weak
	case score <= 4:
		return Medium
	default:
		return Strong
	}
}

// Evaluate is StrengthScore followed by Band.
func Evaluate(pw string) (int, Strength) {
	s := StrengthScore(pw)
	return s, Band(s)
}
