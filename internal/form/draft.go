// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package form implements the entry form: the editable draft, its field
// validation, cover image selection and the create/edit state machine.
package form

import (
	"bytes"
	"encoding/json"
	"regexp"
	"sort"

	"github.com/taibuivan/bookshelf/internal/inventory"
	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/validate"
)

// Field names, shared by the HTML form and the JSON API.
const (
	FieldTitle         = "title"
	FieldAuthor        = "author"
	FieldPublishedDate = "publishedDate"
	FieldPublisher     = "publisher"
	FieldEmail         = "email"
	FieldAge           = "age"
	FieldImage         = "image"
)

// Validation messages.
const (
	MsgTitleRequired  = "Title is required"
	MsgAuthorRequired = "Author is required"
	MsgInvalidEmail   = "Invalid email format"
	MsgAgeNotPositive = "Age must be a positive number"
	MsgNotAnImage     = "Please upload an image file"
	MsgImageTooLarge  = "Image must be less than 5MB"
)

// emailPattern treats vertical tab, Unicode separators and the BOM as
// whitespace along with the ASCII set.
var emailPattern = regexp.MustCompile(`^[^\s\x{0B}\p{Z}\x{FEFF}@]+@[^\s\x{0B}\p{Z}\x{FEFF}@]+\.[^\s\x{0B}\p{Z}\x{FEFF}@]+$`)

// fieldOrder is the display order of field errors.
var fieldOrder = map[string]int{
	FieldTitle: 0, FieldAuthor: 1, FieldPublishedDate: 2, FieldPublisher: 3,
	FieldEmail: 4, FieldAge: 5, FieldImage: 6,
}

// AgeText is the raw age input. JSON numbers are kept as their literal text.
type AgeText string

// UnmarshalJSON implements [json.Unmarshaler].
func (a *AgeText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = ""
	case len(data) > 0 && data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*a = AgeText(text)
	default:
		var number json.Number
		if err := json.Unmarshal(data, &number); err != nil {
			return err
		}
		*a = AgeText(number.String())
	}
	return nil
}

// Draft is the in-progress form content. Every field is held as typed.
type Draft struct {
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	PublishedDate string  `json:"publishedDate"`
	Publisher     string  `json:"publisher"`
	Email         string  `json:"email"`
	Age           AgeText `json:"age"`
	Image         string  `json:"image"`
}

// DraftFrom copies a record into a draft.
func DraftFrom(book inventory.Book) Draft {
	return Draft{
		Title:         book.Title,
		Author:        book.Author,
		PublishedDate: book.PublishedDate,
		Publisher:     book.Publisher,
		Email:         book.Email,
		Age:           AgeText(book.Age.String()),
		Image:         book.Image,
	}
}

// Fields converts a validated draft to record fields.
func (d Draft) Fields() inventory.Fields {
	age, _ := validate.ParsePositive(string(d.Age))
	return inventory.Fields{
		Title:         d.Title,
		Author:        d.Author,
		PublishedDate: d.PublishedDate,
		Publisher:     d.Publisher,
		Email:         d.Email,
		Age:           inventory.Age(age),
		Image:         d.Image,
	}
}

// FieldErrors maps a field name to its message.
type FieldErrors map[string]string

// Details returns the errors in form order for an [apperr.AppError].
func (fe FieldErrors) Details() []apperr.FieldError {
	details := make([]apperr.FieldError, 0, len(fe))
	for field, message := range fe {
		details = append(details, apperr.FieldError{Field: field, Message: message})
	}
	sort.Slice(details, func(i, j int) bool {
		return fieldOrder[details[i].Field] < fieldOrder[details[j].Field]
	})
	return details
}

// Err returns a VALIDATION_ERROR carrying the field errors, or nil.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", fe.Details()...)
}

// Validate checks every rule and returns all failures at once.
func Validate(d Draft) FieldErrors {
	validator := &validate.Validator{}

	validator.
		Required(FieldTitle, d.Title, MsgTitleRequired).
		Required(FieldAuthor, d.Author, MsgAuthorRequired).
		Pattern(FieldEmail, d.Email, emailPattern, MsgInvalidEmail).
		PositiveNumber(FieldAge, string(d.Age), MsgAgeNotPositive)

	return FieldErrors(validator.Fields())
}
