package core

import (
	"archive/zip"
	"compress/flate"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/DonovanMods/modlist-installer/internal/domain"
)

type zipArchive struct {
	r *zip.ReadCloser
}

func openZip(archivePath string) (archiveReader, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil && !(errors.Is(err, zip.ErrInsecurePath) && r != nil) {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptArchive, err)
	}
	return &zipArchive{r: r}, nil
}

func (z *zipArchive) Entries(ctx context.Context) ([]domain.ArchiveEntry, error) {
	entries := make([]domain.ArchiveEntry, 0, len(z.r.File))
	for _, f := range z.r.File {
		entries = append(entries, domain.ArchiveEntry{
			Name:  f.Name,
			IsDir: f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/"),
		})
	}
	return entries, nil
}

func (z *zipArchive) ExtractTo(ctx context.Context, root string, dest func(string) (string, error)) error {
	for _, f := range z.r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		destPath, err := dest(f.Name)
		if err != nil {
			return err
		}
		if err := extractZipFile(f, destPath); err != nil {
			return err
		}
	}
	return nil
}

func (z *zipArchive) Close() error {
	return z.r.Close()
}

// extractZipFile writes a single entry to destPath
func extractZipFile(f *zip.File, destPath string) (err error) {
	if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
		// 0755 so files can be written into it
		return os.MkdirAll(destPath, 0755)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return zipReadError(f.Name, err)
	}
	defer func() {
		if cerr := rc.Close(); err == nil && cerr != nil {
			err = zipReadError(f.Name, cerr)
		}
	}()

	perm := f.Mode().Perm()
	if perm == 0 {
		perm = 0644
	}
	outFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", destPath, err)
	}
	defer func() {
		if cerr := outFile.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing file %s: %w", destPath, cerr)
		}
	}()

	if _, err = io.Copy(outFile, rc); err != nil {
		return zipReadError(f.Name, err)
	}
	return nil
}

// zipReadError classifies decode failures as a corrupt archive
func zipReadError(name string, err error) error {
	var flateErr flate.CorruptInputError
	if errors.Is(err, zip.ErrFormat) || errors.Is(err, zip.ErrChecksum) ||
		errors.Is(err, zip.ErrAlgorithm) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.As(err, &flateErr) {
		return fmt.Errorf("%w: %s: %v", domain.ErrCorruptArchive, name, err)
	}
	return fmt.Errorf("extracting %s: %w", name, err)
}
