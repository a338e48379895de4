package domain

import "sort"

// Format is the detected container format of a staged archive
type Format int

const (
	FormatUnknown Format = iota
	FormatZip
	FormatSevenZip
	FormatHTMLError // Host returned an interstitial page
)

func (f Format) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatSevenZip:
		return "7z"
	case FormatHTMLError:
		return "html-error"
	default:
		return "unknown"
	}
}

// Extension returns the file suffix used for staged archives of this format
func (f Format) Extension() string {
	if f == FormatSevenZip {
		return ".7z"
	}
	return ".zip"
}

// StagedArchive is a downloaded payload waiting for extraction
type StagedArchive struct {
	Path   string
	Format Format
	Size   int64
}

// ArchiveEntry is a single path inside an archive
type ArchiveEntry struct {
	Name   string // Relative path as declared by the archive, slash separated
	IsDir  bool
	IsLink bool // Symbolic link; only reported by backends that would create it
}

// InstallStatus is the result category of a single mod install
type InstallStatus int

const (
	StatusFailed InstallStatus = iota
	StatusInstalled
	StatusSkippedPresent // Single root folder already exists
	StatusSkippedOverlap // Loose files would overwrite existing ones
)

func (s InstallStatus) String() string {
	switch s {
	case StatusInstalled:
		return "installed"
	case StatusSkippedPresent:
		return "skipped-already-present"
	case StatusSkippedOverlap:
		return "skipped-overlap"
	default:
		return "failed"
	}
}

// InstallOutcome is the per-mod result handed back to callers
type InstallOutcome struct {
	Mod     ModDescriptor
	Status  InstallStatus
	Reason  string // Human readable, empty on success
	Err     error  // Wrapped sentinel from errors.go, nil unless failed
	RootDir string // Top-level folder when the archive uses one
	ModID   string // From mod_info.json, empty if unknown
}

// Succeeded reports whether the mod ended up installed
func (o InstallOutcome) Succeeded() bool {
	return o.Status == StatusInstalled
}

// Skipped reports whether the install was deliberately not performed
func (o InstallOutcome) Skipped() bool {
	return o.Status == StatusSkippedPresent || o.Status == StatusSkippedOverlap
}

// Failed builds a failed outcome from err
func Failed(mod ModDescriptor, reason string, err error) InstallOutcome {
	return InstallOutcome{Mod: mod, Status: StatusFailed, Reason: reason, Err: err}
}

// Source categories with dedicated probing
const (
	CategoryGitHub      = "github"
	CategoryGoogleDrive = "google_drive"
	CategoryOther       = "other"
)

// ValidationFailure is a mod that did not pass URL validation
type ValidationFailure struct {
	Mod    ModDescriptor
	Reason string
	Err    error
}

// ValidationResult partitions mods by source category.
// Mods in CategoryOther are grouped by literal host in Other.
type ValidationResult struct {
	Valid      []ModDescriptor // Every validated mod, input order
	ByCategory map[string][]ModDescriptor
	Other      map[string][]ModDescriptor
	Failed     []ValidationFailure
}

// NewValidationResult returns an empty result ready for use
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		ByCategory: make(map[string][]ModDescriptor),
		Other:      make(map[string][]ModDescriptor),
	}
}

// Hosts returns the hosts of the generic category, sorted
func (r *ValidationResult) Hosts() []string {
	hosts := make([]string, 0, len(r.Other))
	for h := range r.Other {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}
