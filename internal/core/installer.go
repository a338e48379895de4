package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/DonovanMods/modlist-installer/internal/domain"

	"golang.org/x/sync/errgroup"
)

// BatchProgress receives updates while a batch runs. Either field may be nil.
// OnDownload is called from fetch workers; OnOutcome from the caller's goroutine.
type BatchProgress struct {
	OnDownload func(mod domain.ModDescriptor, p DownloadProgress)
	OnOutcome  func(done, total int, outcome domain.InstallOutcome)
}

// Installer sequences fetch, extract and cleanup for mods
type Installer struct {
	fetcher     *Fetcher
	extractor   *Extractor
	logger      domain.Logger
	parallelism int
}

// NewInstaller creates a new installer.
// parallelism bounds concurrent downloads in InstallBatch.
func NewInstaller(fetcher *Fetcher, extractor *Extractor, logger domain.Logger, parallelism int) *Installer {
	if logger == nil {
		logger = domain.NopLogger
	}
	if extractor == nil {
		extractor = NewExtractor("", logger)
	}
	if fetcher == nil {
		fetcher = NewFetcher(nil, nil, nil, 0)
	}
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	return &Installer{
		fetcher:     fetcher,
		extractor:   extractor,
		logger:      logger,
		parallelism: parallelism,
	}
}

// Install downloads mod and extracts it into targetDir.
// The staged archive is removed whatever the outcome.
func (i *Installer) Install(ctx context.Context, mod domain.ModDescriptor, targetDir string) domain.InstallOutcome {
	staged, failed := i.fetch(ctx, mod, nil)
	if staged == nil {
		return failed
	}
	return i.extract(ctx, mod, staged, targetDir)
}

type fetchResult struct {
	index   int
	staged  *domain.StagedArchive
	outcome domain.InstallOutcome
}

// InstallBatch installs mods into targetDir.
// Downloads run concurrently, bounded by the configured parallelism;
// extraction happens one archive at a time in the order downloads finish.
// Outcomes are returned in input order. When ctx is cancelled no further
// downloads start, staged files are removed and every mod that did not
// finish is reported as cancelled.
func (i *Installer) InstallBatch(ctx context.Context, mods []domain.ModDescriptor, targetDir string, progress BatchProgress) []domain.InstallOutcome {
	outcomes := make([]domain.InstallOutcome, len(mods))
	finished := make([]bool, len(mods))
	results := make(chan fetchResult, len(mods))

	go func() {
		defer close(results)

		var g errgroup.Group
		g.SetLimit(i.parallelism)
		for idx, mod := range mods {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				var onProgress ProgressFunc
				if progress.OnDownload != nil {
					onProgress = func(p DownloadProgress) { progress.OnDownload(mod, p) }
				}
				staged, failed := i.fetch(ctx, mod, onProgress)
				results <- fetchResult{index: idx, staged: staged, outcome: failed}
				return nil
			})
		}
		g.Wait()
	}()

	done := 0
	for r := range results {
		mod := mods[r.index]
		outcome := r.outcome

		switch {
		case r.staged == nil:
		case ctx.Err() != nil:
			i.fetcher.Staging().Remove(r.staged.Path)
			outcome = cancelledOutcome(mod)
		default:
			// Sole writer to targetDir
			outcome = i.extract(ctx, mod, r.staged, targetDir)
		}

		outcomes[r.index] = outcome
		finished[r.index] = true
		done++
		if progress.OnOutcome != nil {
			progress.OnOutcome(done, len(mods), outcome)
		}
	}

	for idx, mod := range mods {
		if !finished[idx] {
			outcomes[idx] = cancelledOutcome(mod)
		}
	}
	return outcomes
}

// fetch stages mod's archive. On failure it returns nil and the failed outcome.
func (i *Installer) fetch(ctx context.Context, mod domain.ModDescriptor, onProgress ProgressFunc) (*domain.StagedArchive, domain.InstallOutcome) {
	if mod.Version != "" {
		i.logger.Log(fmt.Sprintf("  Downloading %s v%s...", mod.Name, mod.Version), domain.SeverityPlain)
	} else {
		i.logger.Log(fmt.Sprintf("  Downloading %s...", mod.Name), domain.SeverityPlain)
	}
	i.logger.Log(fmt.Sprintf("  From: %s", mod.DownloadURL), domain.SeverityPlain)

	if _, err := mod.ParsedURL(); err != nil {
		reason := "Invalid URL"
		if errors.Is(err, domain.ErrNoDownloadURL) {
			reason = "No download URL"
		}
		i.logger.Log("  ✗ Error: "+reason, domain.SeverityError)
		return nil, domain.Failed(mod, reason, err)
	}

	staged, err := i.fetcher.Fetch(ctx, mod.DownloadURL, onProgress)
	if err == nil {
		return staged, domain.InstallOutcome{}
	}

	switch {
	case errors.Is(err, domain.ErrCancelled):
		i.logger.Log(fmt.Sprintf("  ✗ Cancelled: %s", mod.Name), domain.SeverityError)
		return nil, domain.Failed(mod, "cancelled", err)
	case errors.Is(err, domain.ErrInterstitial):
		i.logger.Log("  ✗ Error: Host returned a web page instead of the file (large file warning?). Download it manually from the URL above", domain.SeverityError)
		return nil, domain.Failed(mod, "host returned a web page instead of the archive, download manually", err)
	default:
		i.logger.Log(fmt.Sprintf("  ✗ Download error: %v", err), domain.SeverityError)
		return nil, domain.Failed(mod, err.Error(), err)
	}
}

// extract installs a staged archive and removes it afterwards
func (i *Installer) extract(ctx context.Context, mod domain.ModDescriptor, staged *domain.StagedArchive, targetDir string) (outcome domain.InstallOutcome) {
	defer i.fetcher.Staging().Remove(staged.Path)
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("unexpected error: %v", r)
			i.logger.Log(fmt.Sprintf("  ✗ %v", err), domain.SeverityError)
			outcome = domain.Failed(mod, err.Error(), err)
		}
	}()

	i.logger.Log("  Inspecting archive contents...", domain.SeverityPlain)

	outcome = i.extractor.Extract(ctx, *staged, targetDir)
	outcome.Mod = mod
	if !outcome.Succeeded() {
		return outcome
	}

	if outcome.RootDir != "" {
		if info, err := ReadModInfo(filepath.Join(targetDir, outcome.RootDir)); err == nil {
			outcome.ModID = info.ID
			if info.Version != UnknownVersion {
				outcome.Mod.Version = info.Version
			}
		}
	}

	i.logger.Log(fmt.Sprintf("  ✓ %s installed successfully", mod.Name), domain.SeverityPlain)
	return outcome
}

func cancelledOutcome(mod domain.ModDescriptor) domain.InstallOutcome {
	return domain.Failed(mod, "cancelled", domain.ErrCancelled)
}
