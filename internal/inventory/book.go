// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package inventory manages the book collection: the record model, the
// state reducer, the persistent slot stores and the service that owns the
// single live collection.
//
// # Architecture
//
// All mutations are expressed as [Action] values applied by the pure [Reduce]
// function. [Service] is the only dispatcher; it persists the full collection
// before the new state becomes visible.
package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/taibuivan/bookshelf/internal/platform/constants"
)

// Origin tells where a record came from.
type Origin string

const (
	// OriginLocal marks records created through the form. They are editable.
	OriginLocal Origin = "local"
	// OriginRemote marks records obtained from the remote catalog. They are read-only.
	OriginRemote Origin = "remote"
)

// Valid reports whether o is one of the known origins.
func (o Origin) Valid() bool {
	return o == OriginLocal || o == OriginRemote
}

// Notices shown when a read-only record is targeted.
const (
	NoticeCannotEdit   = "Cannot edit books from the API"
	NoticeCannotDelete = "Cannot delete books from the API"
)

// Age is the reader age attached to a local record. It is persisted as a JSON
// number but also accepts numeric strings, which older data and form posts carry.
type Age float64

// UnmarshalJSON implements [json.Unmarshaler].
func (a *Age) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			*a = 0
			return nil
		}
		value, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("inventory: age %q is not a number", text)
		}
		*a = Age(value)
		return nil
	}

	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*a = Age(value)
	return nil
}

// String formats the age without a trailing ".0" for whole numbers.
func (a Age) String() string {
	if a == 0 {
		return ""
	}
	return strconv.FormatFloat(float64(a), 'f', -1, 64)
}

// Book is one record of the collection.
type Book struct {
	ID            string `json:"id"`
	Origin        Origin `json:"origin,omitempty"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	PublishedDate string `json:"publishedDate"`
	Publisher     string `json:"publisher"`
	Email         string `json:"email,omitempty"`
	Age           Age    `json:"age,omitempty"`
	Image         string `json:"image"`
	Subtitle      string `json:"subtitle"`
	URL           string `json:"url"`
}

// Fields is the editable part of a record as submitted by the form.
type Fields struct {
	Title         string
	Author        string
	PublishedDate string
	Publisher     string
	Email         string
	Age           Age
	Image         string
}

// IsRemote reports whether the record is read-only.
func (b Book) IsRemote() bool {
	return b.Origin == OriginRemote
}

// Fields returns the editable part of the record.
func (b Book) Fields() Fields {
	return Fields{
		Title:         b.Title,
		Author:        b.Author,
		PublishedDate: b.PublishedDate,
		Publisher:     b.Publisher,
		Email:         b.Email,
		Age:           b.Age,
		Image:         b.Image,
	}
}

// IsRemoteID reports whether id belongs to the remote catalog namespace.
func IsRemoteID(id string) bool {
	return strings.HasPrefix(id, constants.RemoteIDPrefix)
}

// LocalID builds the id of a record created at the given unix millisecond.
func LocalID(unixMilli int64) string {
	return constants.LocalIDPrefix + strconv.FormatInt(unixMilli, 10)
}

// RemoteID builds the id of a catalog entry.
func RemoteID(catalogID string) string {
	return constants.RemoteIDPrefix + catalogID
}

// NewLocalBook builds a fresh local record. An empty image gets placeholder.
func NewLocalBook(id string, fields Fields, placeholder string) Book {
	image := fields.Image
	if image == "" {
		image = placeholder
	}
	return Book{
		ID:            id,
		Origin:        OriginLocal,
		Title:         fields.Title,
		Author:        fields.Author,
		PublishedDate: fields.PublishedDate,
		Publisher:     fields.Publisher,
		Email:         fields.Email,
		Age:           fields.Age,
		Image:         image,
		Subtitle:      "",
		URL:           constants.LocalBookURL,
	}
}

// NewRemoteBook maps one catalog entry to a read-only record.
func NewRemoteBook(catalogID, title, authors, subtitle, image, url string) Book {
	return Book{
		ID:       RemoteID(catalogID),
		Origin:   OriginRemote,
		Title:    title,
		Author:   authors,
		Subtitle: subtitle,
		Image:    image,
		URL:      url,
	}
}

// normalize fills in the origin of records persisted without one.
func normalize(books []Book) []Book {
	for index := range books {
		if books[index].Origin.Valid() {
			continue
		}
		if IsRemoteID(books[index].ID) {
			books[index].Origin = OriginRemote
		} else {
			books[index].Origin = OriginLocal
		}
	}
	return books
}
