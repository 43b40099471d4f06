// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package convert provides quick type-conversion utilities.

It wraps standards like [strconv] to provide fault-tolerant conversions
(e.g., returning a default instead of an error when parsing fails). This is
useful in handler contexts parsing query parameters and form checkboxes.

Do not use this package if distinguishing between malformed data and zero values
is important in your domain logic; use explicit standard libraries instead.
*/
package convert

import (
	"strconv"
	"strings"
)

// ToIntD converts a string to an int, returning the provided default if parsing fails or string is empty.
func ToIntD(str string, def int) int {

	// If the string is empty, return the default value
	if str == "" {
		return def
	}

	// Try to parse the string as an integer
	if v, err := strconv.Atoi(str); err == nil {
		return v
	}

	// If parsing fails, return the default value
	return def
}

// ToBool parses a boolean-ish string. Besides what [strconv.ParseBool]
// accepts, "yes" and "on" (HTML checkbox value) count as true.
// It returns false on empty string or parse error.
func ToBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return false
	case "yes", "on":
		return true
	}

	v, _ := strconv.ParseBool(s)
	return v
}
