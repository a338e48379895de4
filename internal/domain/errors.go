package domain

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid configuration")

	// Validation
	ErrNoDownloadURL = errors.New("no download URL")
	ErrInvalidURL    = errors.New("invalid download URL")

	// Network failures: retried while validating, terminal while downloading
	ErrNetwork = errors.New("network failure")

	// Host served an HTML page instead of the archive; needs a manual download
	ErrInterstitial = errors.New("non-binary payload")

	// Format failures
	ErrEmptyArchive        = errors.New("archive is empty")
	ErrCorruptArchive      = errors.New("corrupted archive")
	ErrSevenZipUnavailable = errors.New("7z support unavailable")

	// Security rejection, never retried
	ErrPathTraversal = errors.New("path traversal detected")

	ErrCancelled = errors.New("cancelled")
)
