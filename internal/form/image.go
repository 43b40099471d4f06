// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package form

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/taibuivan/bookshelf/internal/platform/constants"
	"github.com/taibuivan/bookshelf/internal/platform/validate"
)

// ImageFile is a user-selected cover file.
type ImageFile interface {
	ContentType() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// CheckImage returns the rejection message for file, or "" when acceptable.
func CheckImage(file ImageFile) string {
	if !strings.HasPrefix(file.ContentType(), "image/") {
		return MsgNotAnImage
	}
	if file.Size() > constants.MaxImageBytes {
		return MsgImageTooLarge
	}
	return ""
}

// CheckImageSource returns the rejection message for an image given as text
// instead of a file, or "" when acceptable. http(s) URLs pass as they are;
// data URLs must declare an image type and decode to at most 5 MiB.
func CheckImageSource(source string) string {
	if strings.HasPrefix(source, "https://") || strings.HasPrefix(source, "http://") {
		return ""
	}

	mediaType, content, ok := decodeDataURL(source)
	validator := &validate.Validator{}
	validator.
		Custom(FieldImage, !ok || !strings.HasPrefix(mediaType, "image/"), MsgNotAnImage).
		Custom(FieldImage, len(content) > constants.MaxImageBytes, MsgImageTooLarge)

	return validator.Fields()[FieldImage]
}

// decodeDataURL splits a data URL into its media type and decoded payload.
func decodeDataURL(source string) (string, []byte, bool) {
	rest, found := strings.CutPrefix(source, "data:")
	if !found {
		return "", nil, false
	}
	header, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", nil, false
	}

	mediaType, isBase64 := strings.CutSuffix(header, ";base64")
	if index := strings.IndexByte(mediaType, ';'); index >= 0 {
		mediaType = mediaType[:index]
	}

	if isBase64 {
		content, err := base64.StdEncoding.DecodeString(payload)
		return mediaType, content, err == nil
	}
	text, err := url.PathUnescape(payload)
	return mediaType, []byte(text), err == nil
}

type uploadedImage struct {
	contentType string
	content     []byte
	size        int64
}

// FromUpload wraps an uploaded file read into memory. The declared content
// type is trusted. size may exceed len(content) when the upload was cut
// short for being too large.
func FromUpload(contentType string, content []byte, size int64) ImageFile {
	return uploadedImage{contentType: contentType, content: content, size: size}
}

func (u uploadedImage) ContentType() string { return u.contentType }
func (u uploadedImage) Size() int64         { return u.size }

func (u uploadedImage) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(u.content)), nil
}

// ImageTask encodes a file into a data URL in the background.
type ImageTask struct {
	done    chan struct{}
	dataURL string
	err     error
}

// StartImageTask begins encoding file. onDone runs on the task goroutine
// before waiters are released.
func StartImageTask(file ImageFile, onDone func(dataURL string, err error)) *ImageTask {
	task := &ImageTask{done: make(chan struct{})}

	go func() {
		defer close(task.done)
		task.dataURL, task.err = encodeDataURL(file)
		if onDone != nil {
			onDone(task.dataURL, task.err)
		}
	}()

	return task
}

// Done is closed once the task finished.
func (task *ImageTask) Done() <-chan struct{} {
	return task.done
}

// Wait blocks until the task finished or ctx ends.
func (task *ImageTask) Wait(ctx context.Context) (string, error) {
	select {
	case <-task.done:
		return task.dataURL, task.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func encodeDataURL(file ImageFile) (string, error) {
	reader, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("form: open image: %w", err)
	}
	defer reader.Close()

	// One extra byte detects files larger than declared.
	content, err := io.ReadAll(io.LimitReader(reader, constants.MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("form: read image: %w", err)
	}
	if len(content) > constants.MaxImageBytes {
		return "", fmt.Errorf("form: image exceeds %d bytes", constants.MaxImageBytes)
	}

	return "data:" + file.ContentType() + ";base64," + base64.StdEncoding.EncodeToString(content), nil
}
