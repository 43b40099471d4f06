// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package web serves the bookshelf over HTTP: a server-rendered page for
// browsers and a JSON API for programs. Both drive the same inventory.
package web

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/taibuivan/bookshelf/internal/form"
	"github.com/taibuivan/bookshelf/internal/inventory"
	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/constants"
	requestutil "github.com/taibuivan/bookshelf/internal/platform/request"
)

// Inventory is the part of [*inventory.Service] the web layer uses.
type Inventory interface {
	form.Committer
	List(filter inventory.Filter) []inventory.Book
	Delete(ctx context.Context, id string, confirmed bool) (bool, error)
	Snapshot() inventory.State
}

// submission is one decoded create or edit request.
type submission struct {
	draft form.Draft
	image form.ImageFile

	// rejected holds field errors found while reading the body. The typed
	// fields read so far are still in draft.
	rejected form.FieldErrors
}

// readSubmission decodes a JSON body or a multipart/urlencoded form. A body
// that cannot be read at all is an error; an oversized image is reported
// through the submission so the typed fields survive.
func readSubmission(writer http.ResponseWriter, request *http.Request) (submission, error) {
	switch {
	case requestutil.IsMultipart(request):
		request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxUploadBodyBytes)
		return readMultipart(request)
	case isJSON(request):
		request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxJSONBodyBytes)
		return readJSON(request)
	}

	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxUploadBodyBytes)
	if err := request.ParseForm(); err != nil {
		if isTooLarge(err) {
			return submission{}, apperr.ValidationError("Validation failed", apperr.FieldError{Field: form.FieldImage, Message: form.MsgImageTooLarge})
		}
		return submission{}, apperr.ValidationError("Invalid form payload")
	}
	return submission{draft: draftFrom(request.PostForm)}, nil
}

func readJSON(request *http.Request) (submission, error) {
	var result submission

	if err := requestutil.DecodeJSON(request, &result.draft); err != nil {
		if request.ContentLength > constants.MaxJSONBodyBytes || errors.Is(err, requestutil.ErrBodyTooLarge) {
			return result, apperr.ValidationError("Validation failed", apperr.FieldError{Field: form.FieldImage, Message: form.MsgImageTooLarge})
		}
		return result, err
	}

	if result.draft.Image != "" {
		if message := form.CheckImageSource(result.draft.Image); message != "" {
			result.draft.Image = ""
			result.rejected = form.FieldErrors{form.FieldImage: message}
		}
	}
	return result, nil
}

// readMultipart streams the parts so that text fields sent before an
// oversized image are kept.
func readMultipart(request *http.Request) (submission, error) {
	var result submission

	reader, err := request.MultipartReader()
	if err != nil {
		return result, apperr.ValidationError("Invalid form payload")
	}

	values := url.Values{}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if !isTooLarge(err) {
				return result, apperr.ValidationError("Invalid form payload")
			}
			result.rejected = form.FieldErrors{form.FieldImage: form.MsgImageTooLarge}
			break
		}

		if part.FileName() == "" {
			text, err := io.ReadAll(io.LimitReader(part, constants.MaxFieldBytes))
			if err != nil {
				if !isTooLarge(err) {
					return result, apperr.ValidationError("Invalid form payload")
				}
				result.rejected = form.FieldErrors{form.FieldImage: form.MsgImageTooLarge}
				break
			}
			values.Add(part.FormName(), string(text))
			continue
		}

		if part.FormName() != form.FieldImage {
			_, _ = io.Copy(io.Discard, part)
			continue
		}

		image, complete := readImagePart(part)
		result.image = image
		if !complete {
			break
		}
	}

	result.draft = draftFrom(values)
	return result, nil
}

// readImagePart reads one uploaded file, keeping at most one byte past the
// image limit. complete is false when the body ended inside the part.
func readImagePart(part *multipart.Part) (form.ImageFile, bool) {
	contentType := part.Header.Get("Content-Type")

	content, err := io.ReadAll(io.LimitReader(part, constants.MaxImageBytes+1))
	if err != nil {
		return form.FromUpload(contentType, nil, constants.MaxImageBytes+1), false
	}
	if len(content) <= constants.MaxImageBytes {
		return form.FromUpload(contentType, content, int64(len(content))), true
	}

	// The rest of an oversized file is skipped to reach any later fields.
	if _, err := io.Copy(io.Discard, part); err != nil {
		return form.FromUpload(contentType, nil, constants.MaxImageBytes+1), false
	}
	return form.FromUpload(contentType, nil, constants.MaxImageBytes+1), true
}

func draftFrom(values url.Values) form.Draft {
	return form.Draft{
		Title:         values.Get(form.FieldTitle),
		Author:        values.Get(form.FieldAuthor),
		PublishedDate: values.Get(form.FieldPublishedDate),
		Publisher:     values.Get(form.FieldPublisher),
		Email:         values.Get(form.FieldEmail),
		Age:           form.AgeText(values.Get(form.FieldAge)),
	}
}

func isJSON(request *http.Request) bool {
	contentType := request.Header.Get("Content-Type")
	return contentType == "" || strings.HasPrefix(contentType, "application/json")
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}

// apply pushes the submission into controller and waits for the image, if any.
// A rejected image returns the controller's field errors.
func (s submission) apply(ctx context.Context, controller *form.Controller, logger *slog.Logger) error {
	controller.Set(s.draft)
	if len(s.rejected) > 0 {
		controller.SetFieldErrors(s.rejected)
		return s.rejected.Err()
	}
	if s.image == nil {
		return nil
	}

	task := controller.SelectImage(s.image)
	if task == nil {
		return controller.View().Errors.Err()
	}

	if _, err := task.Wait(ctx); err != nil {
		logger.WarnContext(ctx, "image_upload_unreadable", slog.Any("error", err))
		rejected := form.FieldErrors{form.FieldImage: form.MsgNotAnImage}
		controller.SetFieldErrors(rejected)
		return rejected.Err()
	}
	return nil
}
