package core

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/DonovanMods/modlist-installer/internal/domain"

	"github.com/mholt/archives"
)

// nativeSevenZip decodes 7z archives in process
type nativeSevenZip struct {
	f *os.File
}

func openNativeSevenZip(archivePath string) (archiveReader, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	return &nativeSevenZip{f: f}, nil
}

func (n *nativeSevenZip) Entries(ctx context.Context) ([]domain.ArchiveEntry, error) {
	var entries []domain.ArchiveEntry
	err := archives.SevenZip{}.Extract(ctx, n.f, func(ctx context.Context, f archives.FileInfo) error {
		entries = append(entries, domain.ArchiveEntry{Name: f.NameInArchive, IsDir: f.IsDir()})
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptArchive, err)
	}
	return entries, nil
}

func (n *nativeSevenZip) ExtractTo(ctx context.Context, root string, dest func(string) (string, error)) error {
	var handlerErr error
	err := archives.SevenZip{}.Extract(ctx, n.f, func(ctx context.Context, f archives.FileInfo) error {
		destPath, err := dest(f.NameInArchive)
		if err == nil {
			err = writeArchiveFile(f, destPath)
		}
		if err != nil {
			handlerErr = err
		}
		return err
	})
	if handlerErr != nil {
		return handlerErr
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", domain.ErrCorruptArchive, err)
	}
	return nil
}

func (n *nativeSevenZip) Close() error {
	return n.f.Close()
}

func writeArchiveFile(f archives.FileInfo, destPath string) (err error) {
	if f.IsDir() {
		return os.MkdirAll(destPath, 0755)
	}
	// Links are not followed or created
	if f.Mode()&os.ModeSymlink != 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", f.NameInArchive, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrCorruptArchive, f.NameInArchive, err)
	}
	defer rc.Close()

	perm := f.Mode().Perm()
	if perm == 0 {
		perm = 0644
	}
	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", destPath, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing file %s: %w", destPath, cerr)
		}
	}()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrCorruptArchive, f.NameInArchive, err)
	}
	return nil
}

// extract7zTimeout bounds a single 7z invocation (corrupted archives can hang)
const extract7zTimeout = 5 * time.Minute

// systemSevenZip shells out to the 7z command
type systemSevenZip struct {
	bin  string
	path string
}

func openSystemSevenZip(bin, archivePath string) (archiveReader, error) {
	resolved, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%w: %s command not found", domain.ErrSevenZipUnavailable, bin)
	}
	return &systemSevenZip{bin: resolved, path: archivePath}, nil
}

func (s *systemSevenZip) Entries(ctx context.Context) ([]domain.ArchiveEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, extract7zTimeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.bin, "l", "-slt", "-sccUTF-8", s.path)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, s.runError(ctx, err, stderr.String())
	}
	return parseSevenZipListing(out), nil
}

func (s *systemSevenZip) ExtractTo(ctx context.Context, root string, _ func(string) (string, error)) error {
	ctx, cancel := context.WithTimeout(ctx, extract7zTimeout)
	defer cancel()

	// -y: assume yes to all queries; -o: output directory (no space between -o and path)
	cmd := exec.CommandContext(ctx, s.bin, "x", "-y", "-o"+root, s.path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return s.runError(ctx, err, string(output))
	}
	return nil
}

func (s *systemSevenZip) Close() error { return nil }

func (s *systemSevenZip) runError(ctx context.Context, err error, output string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("7z timed out after %v", extract7zTimeout)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 2 {
		// 7z reports fatal archive errors with exit code 2
		return fmt.Errorf("%w: %s", domain.ErrCorruptArchive, strings.TrimSpace(output))
	}
	return fmt.Errorf("7z failed: %w\nOutput: %s", err, output)
}

// parseSevenZipListing reads the technical listing printed by "7z l -slt".
// Blocks before the "----------" separator describe the archive itself.
// Links are reported because "7z x" recreates them.
func parseSevenZipListing(out []byte) []domain.ArchiveEntry {
	var (
		entries []domain.ArchiveEntry
		current *domain.ArchiveEntry
		started bool
	)

	flush := func() {
		if current != nil && current.Name != "" {
			entries = append(entries, *current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if !started {
			started = strings.HasPrefix(line, "----------")
			continue
		}

		key, value, ok := strings.Cut(line, " = ")
		if !ok {
			if strings.TrimSpace(line) == "" {
				flush()
			}
			continue
		}

		switch key {
		case "Path":
			flush()
			current = &domain.ArchiveEntry{Name: filepath.ToSlash(value)}
		case "Folder":
			if current != nil && value == "+" {
				current.IsDir = true
			}
		case "Attributes":
			if current == nil {
				continue
			}
			if strings.HasPrefix(value, "D") {
				current.IsDir = true
			}
			// The unix mode follows the windows flags, e.g. "A_ lrwxrwxrwx"
			for _, field := range strings.Fields(value) {
				if len(field) == 10 && field[0] == 'l' {
					current.IsLink = true
				}
			}
		case "Symbolic Link":
			if current != nil && value != "" {
				current.IsLink = true
			}
		}
	}
	flush()
	return entries
}
