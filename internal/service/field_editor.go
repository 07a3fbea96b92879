package service

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"sophrologie-backend/internal/models"
)

// FieldEditor tracks one inline edit of a text field. The editor buffers a
// draft value and reports on Commit whether the value actually changed;
// callers skip the section update entirely when it did not, so clicking into
// a field and clicking away never dirties the document.
type FieldEditor struct {
	original string
	draft    string
	editing  bool
}

// NewFieldEditor starts an edit session over the field's current value.
func NewFieldEditor(value string) *FieldEditor {
	return &FieldEditor{original: value, draft: value, editing: true}
}

func (e *FieldEditor) Editing() bool {
	return e.editing
}

func (e *FieldEditor) Draft() string {
	return e.draft
}

// SetDraft replaces the buffered value. It has no effect once the edit has
// been committed or cancelled.
func (e *FieldEditor) SetDraft(value string) {
	if !e.editing {
		return
	}
	e.draft = value
}

// Commit ends the edit and returns the final value plus whether it differs
// from the value the edit started from.
func (e *FieldEditor) Commit() (string, bool) {
	if !e.editing {
		return e.original, false
	}
	e.editing = false
	return e.draft, e.draft != e.original
}

// Cancel ends the edit and discards the draft.
func (e *FieldEditor) Cancel() string {
	e.editing = false
	e.draft = e.original
	return e.original
}

// ImageFieldEditor edits an image reference, either by URL or by staging a
// locally selected file. Staged files get a pending reference that the upload
// handler later resolves to a permanent URL.
type ImageFieldEditor struct {
	original string
	draft    string
	editing  bool
}

func NewImageFieldEditor(url string) *ImageFieldEditor {
	return &ImageFieldEditor{original: url, draft: url, editing: true}
}

func (e *ImageFieldEditor) Draft() string {
	return e.draft
}

// SetURL points the field at an externally hosted image.
func (e *ImageFieldEditor) SetURL(url string) {
	if !e.editing {
		return
	}
	e.draft = strings.TrimSpace(url)
}

// StageLocalFile buffers an uploaded file under a pending reference, keeping
// the original extension so the upload handler can name the stored file.
func (e *ImageFieldEditor) StageLocalFile(filename string) string {
	if !e.editing {
		return e.draft
	}
	ext := strings.ToLower(path.Ext(filename))
	e.draft = fmt.Sprintf("/uploads/pending/%s%s", uuid.New().String(), ext)
	return e.draft
}

func (e *ImageFieldEditor) Commit() (string, bool) {
	if !e.editing {
		return e.original, false
	}
	e.editing = false
	return e.draft, e.draft != e.original
}

func (e *ImageFieldEditor) Cancel() string {
	e.editing = false
	e.draft = e.original
	return e.original
}

// IsPendingUpload reports whether an image reference is a staged local file
// that has not been through the upload handler yet.
func IsPendingUpload(url string) bool {
	return strings.HasPrefix(url, "/uploads/pending/")
}

// PendingUploads lists the ids of sections whose image references are still
// staged local files. Persisting such a reference would store a URL no upload
// backs, so manual saves refuse content that contains one.
func PendingUploads(sections models.PageSections) []string {
	var ids []string
	for _, section := range sections {
		if sectionHasPendingUpload(section) {
			ids = append(ids, section.ID)
		}
	}
	return ids
}

func sectionHasPendingUpload(section models.Section) bool {
	if section.Image != nil && IsPendingUpload(section.Image.URL) {
		return true
	}
	for _, item := range section.Items {
		if item.Image != nil && IsPendingUpload(item.Image.URL) {
			return true
		}
	}
	return false
}
