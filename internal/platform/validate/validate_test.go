// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "title", "Dune", false},
		{"empty_string", "title", "", true},
		{"whitespace_only", "title", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value, "Title is required")

			if tt.hasError {
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
				assert.Equal(t, "Title is required", ae.Details[0].Message)
			} else {
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_PositiveNumber checks numeric parsing and the strict lower bound.
*/
func TestValidator_PositiveNumber(t *testing.T) {
	tests := []struct {
		value   string
		isValid bool
	}{
		{"12", true},
		{" 7 ", true},
		{"2.5", true},
		{"0", false},
		{"-3", false},
		{"", false},
		{"abc", false},
		{"NaN", false},
		{"Inf", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			v := &validate.Validator{}
			v.PositiveNumber("age", tt.value, "Age must be a positive number")
			assert.Equal(t, !tt.isValid, v.Err() != nil)
		})
	}
}

/*
TestValidator_Pattern checks regular-expression rules.
*/
func TestValidator_Pattern(t *testing.T) {
	digits := regexp.MustCompile(`^\d+$`)

	v := &validate.Validator{}
	v.Pattern("code", "123", digits, "Digits only")
	assert.NoError(t, v.Err())

	v.Pattern("code", "12a", digits, "Digits only")
	assert.Equal(t, map[string]string{"code": "Digits only"}, v.Fields())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("title", "", "Title is required").
		Custom("title", true, "Title is too long").
		OneOf("origin", "elsewhere", "local", "remote").
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate all 3 errors, and Fields keeps the first per field
	assert.Len(t, ae.Details, 3)
	assert.Equal(t, "Title is required", v.Fields()["title"])
	assert.Len(t, v.Fields(), 2)
}
