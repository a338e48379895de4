package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/DonovanMods/modlist-installer/internal/domain"
	"github.com/DonovanMods/modlist-installer/internal/storage/config"
)

// archiveReader is an opened archive of either supported format
type archiveReader interface {
	Entries(ctx context.Context) ([]domain.ArchiveEntry, error)
	ExtractTo(ctx context.Context, root string, dest func(name string) (string, error)) error
	Close() error
}

// Extractor unpacks staged archives into the mods directory.
// It is not safe to run two extractions into the same directory at once;
// the Installer serializes calls.
type Extractor struct {
	sevenZipBackend string
	sevenZipBin     string
	logger          domain.Logger
}

// NewExtractor creates a new Extractor.
// backend selects the 7z implementation (config.SevenZipNative or config.SevenZipSystem).
func NewExtractor(backend string, logger domain.Logger) *Extractor {
	if backend == "" {
		backend = config.SevenZipNative
	}
	if logger == nil {
		logger = domain.NopLogger
	}
	return &Extractor{
		sevenZipBackend: backend,
		sevenZipBin:     "7z",
		logger:          logger,
	}
}

// Extract installs staged into targetDir.
// The checks run in a fixed order: empty archive, already installed or
// overlapping, then path containment of every entry. Nothing is written
// unless all of them pass. The returned outcome has no Mod set.
func (e *Extractor) Extract(ctx context.Context, staged domain.StagedArchive, targetDir string) domain.InstallOutcome {
	fail := func(reason string, err error) domain.InstallOutcome {
		return domain.Failed(domain.ModDescriptor{}, reason, err)
	}

	format := sniffFormat(staged.Path, staged.Format)

	archive, err := e.open(staged.Path, format)
	if err != nil {
		return e.archiveFailure(format, err)
	}
	defer archive.Close()

	entries, err := archive.Entries(ctx)
	if err != nil {
		return e.archiveFailure(format, err)
	}

	var members []string
	for _, entry := range entries {
		if !entry.IsDir && entry.Name != "" {
			members = append(members, entry.Name)
		}
	}
	if len(members) == 0 {
		e.logger.Log("  ✗ Error: Archive is empty", domain.SeverityError)
		return fail("archive is empty", domain.ErrEmptyArchive)
	}

	root, err := canonicalRoot(targetDir)
	if err != nil {
		e.logger.Log(fmt.Sprintf("  ✗ Extraction error: %v", err), domain.SeverityError)
		return fail(err.Error(), err)
	}

	// Duplicate detection runs before the containment check
	if outcome, skipped := e.checkInstalled(root, members); skipped {
		return outcome
	}

	if err := checkEntries(root, entries); err != nil {
		e.logger.Log("  ✗ Security: Attempted path traversal detected in archive (blocked)", domain.SeverityError)
		return fail("path traversal detected in archive", err)
	}

	e.logger.Log("  Extracting...", domain.SeverityPlain)

	if err := os.MkdirAll(root, 0755); err != nil {
		e.logger.Log(fmt.Sprintf("  ✗ Extraction error: %v", err), domain.SeverityError)
		return fail(err.Error(), fmt.Errorf("creating mods directory: %w", err))
	}

	if err := archive.ExtractTo(ctx, root, func(name string) (string, error) {
		return containedPath(root, name)
	}); err != nil {
		if ctx.Err() != nil {
			return fail("cancelled", fmt.Errorf("%w: %v", domain.ErrCancelled, ctx.Err()))
		}
		if errors.Is(err, domain.ErrCorruptArchive) {
			return e.archiveFailure(format, err)
		}
		e.logger.Log(fmt.Sprintf("  ✗ Extraction error: %v", err), domain.SeverityError)
		return fail(err.Error(), err)
	}

	return domain.InstallOutcome{
		Status:  domain.StatusInstalled,
		RootDir: rootFolder(members),
	}
}

func (e *Extractor) open(archivePath string, format domain.Format) (archiveReader, error) {
	switch format {
	case domain.FormatZip:
		return openZip(archivePath)
	case domain.FormatSevenZip:
		if e.sevenZipBackend == config.SevenZipSystem {
			return openSystemSevenZip(e.sevenZipBin, archivePath)
		}
		return openNativeSevenZip(archivePath)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", format)
	}
}

// archiveFailure turns an open or read error into an outcome with the
// matching log line
func (e *Extractor) archiveFailure(format domain.Format, err error) domain.InstallOutcome {
	switch {
	case errors.Is(err, domain.ErrSevenZipUnavailable):
		msg := "7z support unavailable: install p7zip (the 7z command) or set sevenzip_backend: native"
		e.logger.Log("  ✗ Error: "+msg, domain.SeverityError)
		return domain.Failed(domain.ModDescriptor{}, msg, err)
	case errors.Is(err, domain.ErrCorruptArchive):
		label := "ZIP"
		if format == domain.FormatSevenZip {
			label = "7z"
		}
		e.logger.Log(fmt.Sprintf("  ✗ Error: Corrupted %s file", label), domain.SeverityError)
		return domain.Failed(domain.ModDescriptor{}, "corrupted archive", err)
	default:
		e.logger.Log(fmt.Sprintf("  ✗ Extraction error: %v", err), domain.SeverityError)
		return domain.Failed(domain.ModDescriptor{}, err.Error(), err)
	}
}

// checkInstalled reports a skip when the archive's content is already present.
// A single plain top-level segment is treated as the mod's root folder;
// otherwise every member is checked for an existing file.
func (e *Extractor) checkInstalled(root string, members []string) (domain.InstallOutcome, bool) {
	tops := topLevel(members)

	if len(tops) == 1 {
		top := tops[0]
		if isPlainSegment(top) {
			if _, err := os.Lstat(filepath.Join(root, top)); err == nil {
				e.logger.Log(fmt.Sprintf("  ℹ Skipped: Mod '%s' already installed", top), domain.SeverityInfo)
				return domain.InstallOutcome{
					Status:  domain.StatusSkippedPresent,
					Reason:  fmt.Sprintf("mod '%s' already installed", top),
					RootDir: top,
				}, true
			}
		}
		return domain.InstallOutcome{}, false
	}

	for _, member := range members {
		dest, err := containedPath(root, member)
		if err != nil {
			// Left for the containment check
			continue
		}
		if _, err := os.Lstat(dest); err == nil {
			e.logger.Log("  ℹ Skipped: Installation would overlap existing files", domain.SeverityInfo)
			return domain.InstallOutcome{
				Status: domain.StatusSkippedOverlap,
				Reason: "installation would overlap existing files",
			}, true
		}
	}
	return domain.InstallOutcome{}, false
}

// topLevel returns the distinct first path segments of names, in first-seen order
func topLevel(names []string) []string {
	seen := make(map[string]bool)
	var tops []string
	for _, name := range names {
		name = trimDotSlash(name)
		first := strings.SplitN(name, "/", 2)[0]
		if first == "" && strings.HasPrefix(name, "/") {
			first = "/"
		}
		if first == "" || seen[first] {
			continue
		}
		seen[first] = true
		tops = append(tops, first)
	}
	return tops
}

// rootFolder returns the single top-level directory of members, if any
func rootFolder(members []string) string {
	tops := topLevel(members)
	if len(tops) != 1 || !isPlainSegment(tops[0]) {
		return ""
	}
	for _, m := range members {
		if strings.HasPrefix(trimDotSlash(m), tops[0]+"/") {
			return tops[0]
		}
	}
	return ""
}

func trimDotSlash(name string) string {
	for strings.HasPrefix(name, "./") {
		name = name[2:]
	}
	return name
}

func isPlainSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`) && !filepath.IsAbs(s)
}

// canonicalRoot returns the absolute, symlink-free form of dir.
// dir does not have to exist yet.
func canonicalRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving mods directory: %w", err)
	}
	return resolveExisting(abs), nil
}

// resolveExisting evaluates symlinks along the longest existing prefix of p
func resolveExisting(p string) string {
	p = filepath.Clean(p)
	var rest []string
	cur := p
	for {
		if resolved, err := filepath.EvalSymlinks(cur); err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return p
		}
		rest = append([]string{filepath.Base(cur)}, rest...)
		cur = parent
	}
}

// checkEntries rejects archives that could write outside root once extracted.
// Links are refused outright, as is a file that another entry nests under:
// either one lets a later entry be written through something the archive made.
func checkEntries(root string, entries []domain.ArchiveEntry) error {
	files := make(map[string]struct{})
	for _, entry := range entries {
		if entry.IsLink {
			return fmt.Errorf("%w: link %s", domain.ErrPathTraversal, entry.Name)
		}
		if _, err := containedPath(root, entry.Name); err != nil {
			return err
		}
		if !entry.IsDir {
			files[path.Clean(entry.Name)] = struct{}{}
		}
	}

	for _, entry := range entries {
		for dir := path.Dir(path.Clean(entry.Name)); dir != "." && dir != "/"; dir = path.Dir(dir) {
			if _, ok := files[dir]; ok {
				return fmt.Errorf("%w: %s nests under file %s", domain.ErrPathTraversal, entry.Name, dir)
			}
		}
	}
	return nil
}

// containedPath joins name onto root and verifies the canonical result stays
// inside root. root must already be canonical.
func containedPath(root, name string) (string, error) {
	if strings.HasPrefix(name, "/") || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return "", fmt.Errorf("%w: %s", domain.ErrPathTraversal, name)
	}

	dest := filepath.Join(root, filepath.FromSlash(name))

	rel, err := filepath.Rel(root, resolveExisting(dest))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", domain.ErrPathTraversal, name)
	}
	return dest, nil
}

var (
	zipMagic      = []byte("PK\x03\x04")
	zipEmptyMagic = []byte("PK\x05\x06")
	sevenZipMagic = []byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}
)

// sniffFormat corrects the declared format when the file's signature says otherwise
func sniffFormat(archivePath string, declared domain.Format) domain.Format {
	f, err := os.Open(archivePath)
	if err != nil {
		return declared
	}
	defer f.Close()

	head := make([]byte, len(sevenZipMagic))
	n, _ := io.ReadFull(f, head)
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, sevenZipMagic):
		return domain.FormatSevenZip
	case bytes.HasPrefix(head, zipMagic), bytes.HasPrefix(head, zipEmptyMagic):
		return domain.FormatZip
	default:
		return declared
	}
}
