package service

import "errors"

var (
	// ErrPageNotFound is returned for page identifiers outside the seeded set
	// or rows missing from the store.
	ErrPageNotFound = errors.New("page not found")

	// ErrVersionNotFound is returned when a restore targets a version number
	// that was never snapshotted for the page.
	ErrVersionNotFound = errors.New("version not found")

	// ErrSessionNotFound is returned when an editing operation arrives for a
	// page with no open edit session.
	ErrSessionNotFound = errors.New("edit session not found")
	ErrStaleSave       = errors.New("page was modified elsewhere since it was loaded")

	// ErrPendingUpload is returned when a manual save would persist an image
	// reference still staged under /uploads/pending/, which no stored file
	// backs yet.
	ErrPendingUpload = errors.New("content references an image upload that has not completed")
)
