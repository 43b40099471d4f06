// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package convert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/bookshelf/pkg/convert"
)

func TestToIntD(t *testing.T) {
	assert.Equal(t, 7, convert.ToIntD("", 7))
	assert.Equal(t, 7, convert.ToIntD("seven", 7))
	assert.Equal(t, 3, convert.ToIntD("3", 7))
	assert.Equal(t, -3, convert.ToIntD("-3", 7))
}

func TestToBool(t *testing.T) {
	tests := map[string]bool{
		"":      false,
		"true":  true,
		"1":     true,
		"yes":   true,
		"YES":   true,
		"on":    true,
		"false": false,
		"0":     false,
		"no":    false,
		"maybe": false,
	}

	for input, want := range tests {
		assert.Equal(t, want, convert.ToBool(input), "input %q", input)
	}
}
