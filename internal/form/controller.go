// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package form

import (
	"context"
	"log/slog"
	"maps"
	"sync"

	"github.com/taibuivan/bookshelf/internal/inventory"
	"github.com/taibuivan/bookshelf/internal/platform/apperr"
)

// Committer receives validated submissions. [*inventory.Service] implements it.
type Committer interface {
	Get(id string) (inventory.Book, error)
	Add(ctx context.Context, fields inventory.Fields) (inventory.Book, error)
	Update(ctx context.Context, id string, fields inventory.Fields) (inventory.Book, error)
}

// Mode is the controller state.
type Mode string

const (
	ModeEmpty   Mode = "empty"
	ModeEditing Mode = "editing"
)

// View is a snapshot of the form for rendering.
type View struct {
	Mode      Mode
	Draft     Draft
	Errors    FieldErrors
	Preview   string
	EditingID string
	Notice    string
}

// Controller drives one form through
// empty → editing → (submitted | cancelled) → empty.
// It is safe for concurrent use.
type Controller struct {
	mu        sync.Mutex
	draft     Draft
	errors    FieldErrors
	preview   string
	editingID string
	notice    string

	// imageSeq identifies the latest image selection; older tasks are dropped.
	imageSeq uint64

	committer Committer
	logger    *slog.Logger
}

func NewController(committer Committer, logger *slog.Logger) *Controller {
	return &Controller{
		errors:    FieldErrors{},
		committer: committer,
		logger:    logger,
	}
}

// View returns the current form snapshot.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	mode := ModeEmpty
	if c.editingID != "" {
		mode = ModeEditing
	}
	return View{
		Mode:      mode,
		Draft:     c.draft,
		Errors:    maps.Clone(c.errors),
		Preview:   c.preview,
		EditingID: c.editingID,
		Notice:    c.notice,
	}
}

// Set replaces the typed fields of the draft. An empty image keeps the
// current one.
func (c *Controller) Set(draft Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if draft.Image == "" {
		draft.Image = c.draft.Image
	} else {
		c.preview = draft.Image
	}
	c.draft = draft
}

// SetFieldErrors adds errs to the current field errors. It is used for
// failures found before the draft reaches the controller.
func (c *Controller) SetFieldErrors(errs FieldErrors) {
	c.mu.Lock()
	defer c.mu.Unlock()
	maps.Copy(c.errors, errs)
}

// SetNotice shows message until [Controller.TakeNotice] is called.
func (c *Controller) SetNotice(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = message
}

// TakeNotice returns and clears the pending notice.
func (c *Controller) TakeNotice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	notice := c.notice
	c.notice = ""
	return notice
}

// SelectImage validates file and starts encoding it. A rejected file sets
// only the image error and returns nil; draft image and preview are kept.
func (c *Controller) SelectImage(file ImageFile) *ImageTask {
	c.mu.Lock()
	defer c.mu.Unlock()

	if message := CheckImage(file); message != "" {
		c.errors[FieldImage] = message
		return nil
	}
	delete(c.errors, FieldImage)

	c.imageSeq++
	seq := c.imageSeq

	return StartImageTask(file, func(dataURL string, err error) {
		c.mu.Lock()
		defer c.mu.Unlock()

		if err != nil {
			c.logger.Warn("image_encode_failed", slog.Any("error", err))
			return
		}
		if seq != c.imageSeq {
			return
		}
		c.draft.Image = dataURL
		c.preview = dataURL
	})
}

// BeginEdit loads a local record into the draft. Remote records are refused
// with a notice.
func (c *Controller) BeginEdit(id string) error {
	if inventory.IsRemoteID(id) {
		c.SetNotice(inventory.NoticeCannotEdit)
		return apperr.Forbidden(inventory.NoticeCannotEdit)
	}

	book, err := c.committer.Get(id)
	if err != nil {
		return err
	}
	if book.IsRemote() {
		c.SetNotice(inventory.NoticeCannotEdit)
		return apperr.Forbidden(inventory.NoticeCannotEdit)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.draft = DraftFrom(book)
	c.preview = book.Image
	c.editingID = id
	c.errors = FieldErrors{}
	c.imageSeq++
	return nil
}

// Cancel discards the draft and leaves edit mode.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// Submit validates the draft and hands it to the committer. On success the
// form returns to an empty draft; on failure the draft is kept.
func (c *Controller) Submit(ctx context.Context) (inventory.Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	errs := Validate(c.draft)
	c.errors = errs
	if err := errs.Err(); err != nil {
		return inventory.Book{}, err
	}

	var (
		book inventory.Book
		err  error
	)
	if c.editingID != "" {
		book, err = c.committer.Update(ctx, c.editingID, c.draft.Fields())
	} else {
		book, err = c.committer.Add(ctx, c.draft.Fields())
	}
	if err != nil {
		return inventory.Book{}, err
	}

	c.resetLocked()
	return book, nil
}

func (c *Controller) resetLocked() {
	c.draft = Draft{}
	c.errors = FieldErrors{}
	c.preview = ""
	c.editingID = ""
	c.imageSeq++
}
