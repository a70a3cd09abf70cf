package errors

// Package errors provides sentinel errors for source discovery operations.
// These enable consistent classification of discovery stage failures.

import "errors"

var (
	// ErrSourceDirNotFound indicates the configured source directory does not exist.
	ErrSourceDirNotFound = errors.New("source directory not found")

	// ErrSourceNotDir indicates the source path exists but is not a directory.
	ErrSourceNotDir = errors.New("source path is not a directory")

	// ErrSourceDirReadFailed indicates listing the source directory failed.
	ErrSourceDirReadFailed = errors.New("source directory read failed")

	// ErrIntermediateExists indicates a markup source would overwrite an existing HTML file.
	ErrIntermediateExists = errors.New("intermediate file already exists")
)
