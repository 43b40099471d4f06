// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package inventory

import (
	"slices"

	"github.com/taibuivan/bookshelf/internal/platform/apperr"
)

// FetchStatus is the progress of the one-shot catalog fetch.
type FetchStatus string

const (
	FetchIdle    FetchStatus = "idle"
	FetchLoading FetchStatus = "loading"
	FetchLoaded  FetchStatus = "loaded"
	FetchFailed  FetchStatus = "failed"
)

// State is the whole observable state of the collection.
type State struct {
	Books      []Book      `json:"books"`
	Fetch      FetchStatus `json:"fetch"`
	FetchError string      `json:"fetchError,omitempty"`
}

// Clone returns a copy whose Books slice can be modified freely.
func (s State) Clone() State {
	s.Books = slices.Clone(s.Books)
	if s.Books == nil {
		s.Books = []Book{}
	}
	return s
}

// Find returns the record with the given id.
func (s State) Find(id string) (Book, bool) {
	index := s.indexOf(id)
	if index < 0 {
		return Book{}, false
	}
	return s.Books[index], true
}

func (s State) indexOf(id string) int {
	return slices.IndexFunc(s.Books, func(b Book) bool { return b.ID == id })
}

// Action is a state transition understood by [Reduce].
type Action interface {
	// persists reports whether the transition changes the stored collection.
	persists() bool
}

// AddBook appends a record whose id has already been assigned.
type AddBook struct{ Book Book }

// UpdateBook replaces the editable fields of a local record.
type UpdateBook struct {
	ID     string
	Fields Fields
}

// DeleteBook removes a local record.
type DeleteBook struct{ ID string }

// MergeRemote keeps local records in order and appends the fresh remote set.
type MergeRemote struct{ Books []Book }

// FetchStarted moves the fetch status to loading.
type FetchStarted struct{}

// FetchFailedWith moves the fetch status to failed with a user-visible message.
type FetchFailedWith struct{ Message string }

// FetchSkipped ends the fetch without consuming the payload.
type FetchSkipped struct{}

func (AddBook) persists() bool         { return true }
func (UpdateBook) persists() bool      { return true }
func (DeleteBook) persists() bool      { return true }
func (MergeRemote) persists() bool     { return true }
func (FetchStarted) persists() bool    { return false }
func (FetchFailedWith) persists() bool { return false }
func (FetchSkipped) persists() bool    { return false }

// Reduce applies action to state and returns the next state. The input state
// is never modified. A rejected action returns the input state and an error.
func Reduce(state State, action Action) (State, error) {
	next := state.Clone()

	switch act := action.(type) {
	case AddBook:
		if next.indexOf(act.Book.ID) >= 0 {
			return state, apperr.Conflict("Book id already exists")
		}
		next.Books = append(next.Books, act.Book)

	case UpdateBook:
		if IsRemoteID(act.ID) {
			return state, apperr.Forbidden(NoticeCannotEdit)
		}
		index := next.indexOf(act.ID)
		if index < 0 {
			return state, apperr.NotFound("Book")
		}
		current := next.Books[index]
		if current.IsRemote() {
			return state, apperr.Forbidden(NoticeCannotEdit)
		}

		image := act.Fields.Image
		if image == "" {
			image = current.Image
		}
		current.Title = act.Fields.Title
		current.Author = act.Fields.Author
		current.PublishedDate = act.Fields.PublishedDate
		current.Publisher = act.Fields.Publisher
		current.Email = act.Fields.Email
		current.Age = act.Fields.Age
		current.Image = image
		next.Books[index] = current

	case DeleteBook:
		if IsRemoteID(act.ID) {
			return state, apperr.Forbidden(NoticeCannotDelete)
		}
		index := next.indexOf(act.ID)
		if index < 0 {
			return state, apperr.NotFound("Book")
		}
		if next.Books[index].IsRemote() {
			return state, apperr.Forbidden(NoticeCannotDelete)
		}
		next.Books = slices.Delete(next.Books, index, index+1)

	case MergeRemote:
		merged := make([]Book, 0, len(next.Books)+len(act.Books))
		for _, book := range next.Books {
			if !book.IsRemote() {
				merged = append(merged, book)
			}
		}
		next.Books = append(merged, act.Books...)
		next.Fetch = FetchLoaded
		next.FetchError = ""

	case FetchStarted:
		next.Fetch = FetchLoading
		next.FetchError = ""

	case FetchFailedWith:
		next.Fetch = FetchFailed
		next.FetchError = act.Message

	case FetchSkipped:
		next.Fetch = FetchLoaded
		next.FetchError = ""
	}

	return next, nil
}
