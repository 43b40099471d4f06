// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package fold reduces arbitrary Unicode text to a comparison key for search.
//
// # Usage
//
// Keys let "Gabriel García Márquez" match a query of "garcia marquez".
// This package handles normalization, accent removal and whitespace collapsing.
package fold

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var caser = cases.Fold()

// Key converts s into its folded search key.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Applies Unicode case folding.
// 4. Collapses runs of whitespace and punctuation into a single space.
func Key(s string) string {
	// 1. Normalize and remove accents
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, _ := transform.String(t, s)

	// 2. Case fold
	result = caser.String(result)

	// 3. Keep letters and digits, everything else separates words
	words := strings.FieldsFunc(result, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	return strings.Join(words, " ")
}

// Contains reports whether the folded haystack contains the folded needle.
// An empty needle matches everything.
func Contains(haystack, needle string) bool {
	key := Key(needle)
	if key == "" {
		return true
	}
	return strings.Contains(Key(haystack), key)
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
