// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package form_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookshelf/internal/form"
	"github.com/taibuivan/bookshelf/internal/inventory"
	"github.com/taibuivan/bookshelf/internal/platform/apperr"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newInventory(t *testing.T) *inventory.Service {
	t.Helper()
	service, err := inventory.NewService(context.Background(), inventory.NewMemoryRepository(discardLogger()), discardLogger())
	require.NoError(t, err)
	return service
}

// fakeImage is an in-memory ImageFile.
type fakeImage struct {
	contentType string
	content     []byte
	size        int64
}

func newFakeImage(contentType string, content []byte) fakeImage {
	return fakeImage{contentType: contentType, content: content, size: int64(len(content))}
}

func (f fakeImage) ContentType() string { return f.contentType }
func (f fakeImage) Size() int64         { return f.size }
func (f fakeImage) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.content)), nil
}

func validDraft() form.Draft {
	return form.Draft{Title: "Dune", Author: "Herbert", Email: "a@b.co", Age: "30"}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*form.Draft)
		want   form.FieldErrors
	}{
		{name: "valid", mutate: func(*form.Draft) {}, want: form.FieldErrors{}},
		{name: "empty title", mutate: func(d *form.Draft) { d.Title = "" }, want: form.FieldErrors{"title": form.MsgTitleRequired}},
		{name: "whitespace title", mutate: func(d *form.Draft) { d.Title = "   " }, want: form.FieldErrors{}},
		{name: "missing author", mutate: func(d *form.Draft) { d.Author = "" }, want: form.FieldErrors{"author": form.MsgAuthorRequired}},
		{name: "bad email", mutate: func(d *form.Draft) { d.Email = "a@b" }, want: form.FieldErrors{"email": form.MsgInvalidEmail}},
		{name: "empty email", mutate: func(d *form.Draft) { d.Email = "" }, want: form.FieldErrors{"email": form.MsgInvalidEmail}},
		{name: "no-break space in email", mutate: func(d *form.Draft) { d.Email = "a\u00a0b@c.de" }, want: form.FieldErrors{"email": form.MsgInvalidEmail}},
		{name: "ideographic space in email", mutate: func(d *form.Draft) { d.Email = "ab@c\u3000d.de" }, want: form.FieldErrors{"email": form.MsgInvalidEmail}},
		{name: "byte order mark in email", mutate: func(d *form.Draft) { d.Email = "ab@cd.d\ufeffe" }, want: form.FieldErrors{"email": form.MsgInvalidEmail}},
		{name: "unicode email", mutate: func(d *form.Draft) { d.Email = "jürgen@bücher.de" }, want: form.FieldErrors{}},
		{name: "zero age", mutate: func(d *form.Draft) { d.Age = "0" }, want: form.FieldErrors{"age": form.MsgAgeNotPositive}},
		{name: "negative age", mutate: func(d *form.Draft) { d.Age = "-3" }, want: form.FieldErrors{"age": form.MsgAgeNotPositive}},
		{name: "text age", mutate: func(d *form.Draft) { d.Age = "abc" }, want: form.FieldErrors{"age": form.MsgAgeNotPositive}},
		{name: "infinite age", mutate: func(d *form.Draft) { d.Age = "Inf" }, want: form.FieldErrors{"age": form.MsgAgeNotPositive}},
		{name: "fractional age", mutate: func(d *form.Draft) { d.Age = "2.5" }, want: form.FieldErrors{}},
		{
			name: "every rule runs",
			mutate: func(d *form.Draft) {
				*d = form.Draft{}
			},
			want: form.FieldErrors{
				"title":  form.MsgTitleRequired,
				"author": form.MsgAuthorRequired,
				"email":  form.MsgInvalidEmail,
				"age":    form.MsgAgeNotPositive,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := validDraft()
			tt.mutate(&draft)
			assert.Equal(t, tt.want, form.Validate(draft))
		})
	}
}

func TestFieldErrors_DetailsOrdered(t *testing.T) {
	errs := form.FieldErrors{"age": "a", "title": "t", "email": "e"}
	details := errs.Details()

	require.Len(t, details, 3)
	assert.Equal(t, "title", details[0].Field)
	assert.Equal(t, "email", details[1].Field)
	assert.Equal(t, "age", details[2].Field)
	assert.NoError(t, form.FieldErrors{}.Err())
}

func TestAgeText_UnmarshalJSON(t *testing.T) {
	var draft form.Draft
	require.NoError(t, json.Unmarshal([]byte(`{"age": 30}`), &draft))
	assert.Equal(t, form.AgeText("30"), draft.Age)

	require.NoError(t, json.Unmarshal([]byte(`{"age": "12.5"}`), &draft))
	assert.Equal(t, form.AgeText("12.5"), draft.Age)

	require.NoError(t, json.Unmarshal([]byte(`{"age": null}`), &draft))
	assert.Equal(t, form.AgeText(""), draft.Age)
}

func TestCheckImage(t *testing.T) {
	assert.Equal(t, "", form.CheckImage(newFakeImage("image/png", []byte("x"))))
	assert.Equal(t, form.MsgNotAnImage, form.CheckImage(newFakeImage("text/plain", []byte("x"))))

	big := fakeImage{contentType: "image/jpeg", size: 6 * 1024 * 1024}
	assert.Equal(t, form.MsgImageTooLarge, form.CheckImage(big))

	exact := fakeImage{contentType: "image/jpeg", size: 5 * 1024 * 1024}
	assert.Equal(t, "", form.CheckImage(exact))
}

func TestCheckImageSource(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "https", source: "https://placeholder.com/150", want: ""},
		{name: "http", source: "http://covers.example/1.jpg", want: ""},
		{name: "png data url", source: "data:image/png;base64,aGk=", want: ""},
		{name: "svg percent-encoded", source: "data:image/svg+xml,%3Csvg%2F%3E", want: ""},
		{name: "html data url", source: "data:text/html;base64,PGgxPg==", want: form.MsgNotAnImage},
		{name: "bad base64", source: "data:image/png;base64,%%%", want: form.MsgNotAnImage},
		{name: "no comma", source: "data:image/png;base64", want: form.MsgNotAnImage},
		{name: "relative path", source: "/covers/1.png", want: form.MsgNotAnImage},
		{name: "javascript", source: "javascript:alert(1)", want: form.MsgNotAnImage},
		{name: "exactly five megabytes", source: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(make([]byte, 5*1024*1024)), want: ""},
		{name: "over five megabytes", source: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(make([]byte, 5*1024*1024+1)), want: form.MsgImageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, form.CheckImageSource(tt.source))
		})
	}
}

func TestFromUpload(t *testing.T) {
	upload := form.FromUpload("image/png", []byte("hi"), 2)
	assert.Equal(t, "", form.CheckImage(upload))

	task := form.StartImageTask(upload, nil)
	dataURL, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aGk=", dataURL)

	truncated := form.FromUpload("image/png", nil, 5*1024*1024+1)
	assert.Equal(t, form.MsgImageTooLarge, form.CheckImage(truncated))
}

func TestImageTask(t *testing.T) {
	var callbackURL string
	task := form.StartImageTask(newFakeImage("image/png", []byte("hi")), func(dataURL string, err error) {
		callbackURL = dataURL
	})

	dataURL, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aGk=", dataURL)
	assert.Equal(t, dataURL, callbackURL)
}

func TestImageTask_WaitHonoursContext(t *testing.T) {
	blocked := blockingImage{release: make(chan struct{})}
	defer close(blocked.release)

	task := form.StartImageTask(blocked, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := task.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type blockingImage struct{ release chan struct{} }

func (blockingImage) ContentType() string { return "image/png" }
func (blockingImage) Size() int64         { return 1 }
func (b blockingImage) Open() (io.ReadCloser, error) {
	<-b.release
	return io.NopCloser(bytes.NewReader(nil)), nil
}

func TestController_CreateFlow(t *testing.T) {
	service := newInventory(t)
	controller := form.NewController(service, discardLogger())
	ctx := context.Background()

	controller.Set(validDraft())
	task := controller.SelectImage(newFakeImage("image/png", []byte("hi")))
	require.NotNil(t, task)
	_, err := task.Wait(ctx)
	require.NoError(t, err)

	view := controller.View()
	assert.Equal(t, "data:image/png;base64,aGk=", view.Draft.Image)
	assert.Equal(t, view.Draft.Image, view.Preview)

	book, err := controller.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, inventory.Age(30), book.Age)
	assert.Equal(t, "data:image/png;base64,aGk=", book.Image)

	view = controller.View()
	assert.Equal(t, form.ModeEmpty, view.Mode)
	assert.Equal(t, form.Draft{}, view.Draft)
	assert.Empty(t, view.Preview)
	assert.Empty(t, view.Errors)
}

func TestController_InvalidSubmitKeepsDraft(t *testing.T) {
	service := newInventory(t)
	controller := form.NewController(service, discardLogger())

	draft := validDraft()
	draft.Email = "nope"
	draft.Age = "-1"
	controller.Set(draft)

	_, err := controller.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))

	view := controller.View()
	assert.Equal(t, draft, view.Draft)
	assert.Equal(t, form.FieldErrors{"email": form.MsgInvalidEmail, "age": form.MsgAgeNotPositive}, view.Errors)
	assert.Empty(t, service.Snapshot().Books)
}

func TestController_RejectedImageKeepsPrevious(t *testing.T) {
	controller := form.NewController(newInventory(t), discardLogger())
	controller.Set(form.Draft{Image: "https://covers/1.png"})

	big := fakeImage{contentType: "image/png", size: 6 * 1024 * 1024}
	assert.Nil(t, controller.SelectImage(big))

	view := controller.View()
	assert.Equal(t, form.MsgImageTooLarge, view.Errors["image"])
	assert.Equal(t, "https://covers/1.png", view.Draft.Image)
	assert.Equal(t, "https://covers/1.png", view.Preview)

	assert.Nil(t, controller.SelectImage(newFakeImage("application/pdf", []byte("%PDF"))))
	assert.Equal(t, form.MsgNotAnImage, controller.View().Errors["image"])
}

func TestController_SetFieldErrorsKeepsDraft(t *testing.T) {
	controller := form.NewController(newInventory(t), discardLogger())
	controller.Set(validDraft())

	controller.SetFieldErrors(form.FieldErrors{form.FieldImage: form.MsgImageTooLarge})

	view := controller.View()
	assert.Equal(t, form.FieldErrors{"image": form.MsgImageTooLarge}, view.Errors)
	assert.Equal(t, "Dune", view.Draft.Title)
	assert.Equal(t, form.ModeEmpty, view.Mode)
}

func TestController_EditFlow(t *testing.T) {
	service := newInventory(t)
	ctx := context.Background()
	book, err := service.Add(ctx, validDraft().Fields())
	require.NoError(t, err)

	controller := form.NewController(service, discardLogger())
	require.NoError(t, controller.BeginEdit(book.ID))

	view := controller.View()
	assert.Equal(t, form.ModeEditing, view.Mode)
	assert.Equal(t, book.ID, view.EditingID)
	assert.Equal(t, "30", string(view.Draft.Age))
	assert.Equal(t, book.Image, view.Preview)

	draft := view.Draft
	draft.Author = "Frank Herbert"
	controller.Set(draft)

	updated, err := controller.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, book.ID, updated.ID)
	assert.Equal(t, "Frank Herbert", updated.Author)
	assert.Len(t, service.Snapshot().Books, 1)
	assert.Equal(t, form.ModeEmpty, controller.View().Mode)
}

func TestController_CancelEdit(t *testing.T) {
	service := newInventory(t)
	book, err := service.Add(context.Background(), validDraft().Fields())
	require.NoError(t, err)

	controller := form.NewController(service, discardLogger())
	require.NoError(t, controller.BeginEdit(book.ID))
	controller.Cancel()

	view := controller.View()
	assert.Equal(t, form.ModeEmpty, view.Mode)
	assert.Equal(t, form.Draft{}, view.Draft)
}

func TestController_BeginEditRemote(t *testing.T) {
	service := newInventory(t)
	require.NoError(t, service.MergeRemote(context.Background(), []inventory.Book{
		inventory.NewRemoteBook("1", "Go", "Rob", "", "", ""),
	}))

	controller := form.NewController(service, discardLogger())
	err := controller.BeginEdit("api-1")
	require.Error(t, err)
	assert.Equal(t, inventory.NoticeCannotEdit, err.Error())

	assert.Equal(t, form.ModeEmpty, controller.View().Mode)
	assert.Equal(t, inventory.NoticeCannotEdit, controller.TakeNotice())
	assert.Empty(t, controller.TakeNotice())
}
