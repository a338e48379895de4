package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/DonovanMods/modlist-installer/internal/domain"
	"github.com/DonovanMods/modlist-installer/internal/source"
	"github.com/DonovanMods/modlist-installer/internal/source/github"
	"github.com/DonovanMods/modlist-installer/internal/source/googledrive"
	"github.com/DonovanMods/modlist-installer/internal/storage/config"
	"github.com/DonovanMods/modlist-installer/internal/storage/db"
	"github.com/DonovanMods/modlist-installer/internal/storage/staging"
)

// ServiceConfig holds configuration for the core service
type ServiceConfig struct {
	ConfigDir string // Directory holding config.yaml
	DataDir   string // Directory for the modlist, preferences and history database

	// Overrides for config.yaml, zero values keep the file's settings
	ModsDir     string
	Parallelism int

	Logger     domain.Logger
	HTTPClient *http.Client // Defaults to a client using the configured timeouts
}

// InstalledMod is a mod folder found in the mods directory
type InstalledMod struct {
	Dir     string
	ID      string
	Version string
}

// Service is the main entry point for modlist operations
type Service struct {
	config    *config.Config
	store     *config.Store
	db        *db.DB
	hosts     *source.Registry
	staging   *staging.Staging
	validator *Validator
	installer *Installer
	logger    domain.Logger

	configDir string
	dataDir   string
}

// NewService creates a new core service instance.
// Stale staged downloads from earlier runs are removed.
func NewService(cfg ServiceConfig) (*Service, error) {
	appConfig, err := config.Load(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.ModsDir != "" {
		appConfig.ModsDir = cfg.ModsDir
	}
	if cfg.Parallelism > 0 {
		appConfig.Parallelism = cfg.Parallelism
	}
	if err := appConfig.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = domain.NopLogger
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	database, err := db.New(filepath.Join(cfg.DataDir, "modlist.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	hosts := source.NewRegistry()
	hosts.Register(github.New())
	hosts.Register(googledrive.New())

	stage := staging.New(appConfig.StagingDir)
	if _, err := stage.Sweep(); err != nil {
		logger.Log(fmt.Sprintf("Could not clean staging directory: %v", err), domain.SeverityError)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		// Bounds the wait for a response, not the length of the transfer
		transport.ResponseHeaderTimeout = appConfig.RequestTimeout
		httpClient = &http.Client{Transport: transport}
	}

	fetcher := NewFetcher(httpClient, hosts, stage, appConfig.ChunkSize)
	fetcher.SetReadTimeout(appConfig.RequestTimeout)
	extractor := NewExtractor(appConfig.SevenZipBackend, logger)

	return &Service{
		config:  appConfig,
		store:   config.NewStore(cfg.DataDir),
		db:      database,
		hosts:   hosts,
		staging: stage,
		validator: NewValidator(httpClient, hosts, ValidatorOptions{
			Parallelism:  appConfig.Parallelism,
			ProbeTimeout: appConfig.ProbeTimeout,
			Retries:      appConfig.ProbeRetries,
		}),
		installer: NewInstaller(fetcher, extractor, logger, appConfig.Parallelism),
		logger:    logger,
		configDir: cfg.ConfigDir,
		dataDir:   cfg.DataDir,
	}, nil
}

// Close removes staged files still in flight and releases the database
func (s *Service) Close() error {
	s.staging.Cleanup()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Config returns the effective configuration
func (s *Service) Config() *config.Config {
	return s.config
}

// Store returns the modlist store
func (s *Service) Store() *config.Store {
	return s.store
}

// DB returns the history database
func (s *Service) DB() *db.DB {
	return s.db
}

// Registry returns the host registry
func (s *Service) Registry() *source.Registry {
	return s.hosts
}

// ConfigDir returns the configuration directory
func (s *Service) ConfigDir() string {
	return s.configDir
}

// ModsDir returns the validated mods directory.
// Falls back to the last directory used when none is configured.
func (s *Service) ModsDir() (string, error) {
	dir := s.config.ModsDir
	if dir == "" {
		dir = s.store.LoadPreferences().LastModsDir
	}
	if dir == "" {
		return "", fmt.Errorf("%w: no mods directory configured, use --mods-dir", domain.ErrInvalidConfig)
	}
	return config.ParseModsDir(dir)
}

// Validate probes the download URL of every mod in the modlist
func (s *Service) Validate(ctx context.Context) (*domain.ValidationResult, error) {
	list, err := s.store.LoadModlist()
	if err != nil {
		return nil, err
	}
	return s.validator.Validate(ctx, list.Mods), nil
}

// InstallAll installs every mod in the modlist
func (s *Service) InstallAll(ctx context.Context, progress BatchProgress) ([]domain.InstallOutcome, error) {
	return s.Install(ctx, nil, progress)
}

// Install validates and installs the named mods, or all mods when names is empty.
// URL failures become failed outcomes. Every outcome is recorded in the
// history, recovered versions are written back to the modlist and the
// outcomes are returned in modlist order.
func (s *Service) Install(ctx context.Context, names []string, progress BatchProgress) ([]domain.InstallOutcome, error) {
	modsDir, err := s.ModsDir()
	if err != nil {
		return nil, err
	}

	list, err := s.store.LoadModlist()
	if err != nil {
		return nil, err
	}

	mods, err := selectMods(list.Mods, names)
	if err != nil {
		return nil, err
	}
	if len(mods) == 0 {
		s.logger.Log("No mods to install", domain.SeverityInfo)
		return nil, nil
	}

	s.logger.Log(fmt.Sprintf("Validating %d mod URLs...", len(mods)), domain.SeverityPlain)
	result := s.validator.Validate(ctx, mods)
	for _, f := range result.Failed {
		s.logger.Log(fmt.Sprintf("  ✗ %s: %s", f.Mod.Name, f.Reason), domain.SeverityError)
	}

	s.logger.Log(fmt.Sprintf("Installing %d mods to %s", len(result.Valid), modsDir), domain.SeverityPlain)
	installed := s.installer.InstallBatch(ctx, result.Valid, modsDir, progress)

	outcomes := mergeOutcomes(mods, result.Failed, installed)

	var errs []error
	changed := false
	for _, o := range outcomes {
		if err := s.db.RecordOutcome(o); err != nil {
			errs = append(errs, err)
		}
		if o.Succeeded() && o.Mod.Version != "" {
			if list.SetVersion(o.Mod.Key(), o.Mod.Version) {
				changed = true
			}
		}
	}
	if _, err := s.db.Prune(db.DefaultHistoryLimit); err != nil {
		errs = append(errs, err)
	}
	if changed {
		if err := s.store.SaveModlist(list); err != nil {
			errs = append(errs, err)
		}
	}

	prefs := s.store.LoadPreferences()
	if prefs.LastModsDir != modsDir {
		prefs.LastModsDir = modsDir
		if err := s.store.SavePreferences(prefs); err != nil {
			errs = append(errs, err)
		}
	}

	s.logSummary(outcomes)
	return outcomes, errors.Join(errs...)
}

func (s *Service) logSummary(outcomes []domain.InstallOutcome) {
	var installed, skipped, failed int
	for _, o := range outcomes {
		switch {
		case o.Succeeded():
			installed++
		case o.Skipped():
			skipped++
		default:
			failed++
		}
	}
	sev := domain.SeverityInfo
	if failed > 0 {
		sev = domain.SeverityError
	}
	s.logger.Log(fmt.Sprintf("Done: %d installed, %d skipped, %d failed", installed, skipped, failed), sev)
}

// ScanInstalled reports the id and version of every mod folder in the mods directory
func (s *Service) ScanInstalled() ([]InstalledMod, error) {
	modsDir, err := s.ModsDir()
	if err != nil {
		return nil, err
	}
	return ScanModsDir(modsDir)
}

// ScanModsDir reads mod_info.json from each direct subdirectory of modsDir.
// Folders without one are skipped.
func ScanModsDir(modsDir string) ([]InstalledMod, error) {
	entries, err := os.ReadDir(modsDir)
	if err != nil {
		return nil, fmt.Errorf("reading mods directory: %w", err)
	}

	var mods []InstalledMod
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := ReadModInfo(filepath.Join(modsDir, e.Name()))
		if err != nil {
			continue
		}
		mods = append(mods, InstalledMod{Dir: e.Name(), ID: info.ID, Version: info.Version})
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].Dir < mods[j].Dir })
	return mods, nil
}

// History returns recorded install attempts, newest first
func (s *Service) History(limit int) ([]db.HistoryEntry, error) {
	return s.db.RecentOutcomes(limit)
}

// LastInstalled returns the newest successful install of the named mod, or nil
func (s *Service) LastInstalled(name string) (*db.HistoryEntry, error) {
	return s.db.LastInstalled(name)
}

// selectMods returns the mods named in names, in modlist order
func selectMods(mods []domain.ModDescriptor, names []string) ([]domain.ModDescriptor, error) {
	if len(names) == 0 {
		return mods, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = false
	}

	var selected []domain.ModDescriptor
	for _, m := range mods {
		if _, ok := wanted[m.Name]; ok {
			wanted[m.Name] = true
			selected = append(selected, m)
		}
	}

	var missing []string
	for n, found := range wanted {
		if !found {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: mods not in modlist: %v", domain.ErrInvalidConfig, missing)
	}
	return selected, nil
}

// mergeOutcomes interleaves validation failures and install outcomes back
// into the order of mods. Both inputs keep the relative order of mods.
func mergeOutcomes(mods []domain.ModDescriptor, failed []domain.ValidationFailure, installed []domain.InstallOutcome) []domain.InstallOutcome {
	outcomes := make([]domain.InstallOutcome, 0, len(mods))
	fi, ii := 0, 0
	for _, m := range mods {
		if fi < len(failed) && failed[fi].Mod.Key() == m.Key() {
			f := failed[fi]
			outcomes = append(outcomes, domain.Failed(f.Mod, f.Reason, f.Err))
			fi++
			continue
		}
		if ii < len(installed) {
			outcomes = append(outcomes, installed[ii])
			ii++
		}
	}
	return outcomes
}
