package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/DonovanMods/modlist-installer/internal/domain"
	"github.com/DonovanMods/modlist-installer/internal/source"

	"golang.org/x/sync/errgroup"
)

// Default validator settings
const (
	DefaultProbeTimeout = 10 * time.Second
	DefaultProbeRetries = 1
	DefaultParallelism  = 4
)

// ValidatorOptions configures a Validator
type ValidatorOptions struct {
	Parallelism  int           // Concurrent probes
	ProbeTimeout time.Duration // Per request
	Retries      int           // Extra attempts after a transient failure
}

// Validator checks that mod download URLs are reachable before anything is downloaded
type Validator struct {
	httpClient  *http.Client
	hosts       *source.Registry
	parallelism int
	timeout     time.Duration
	retries     int
}

// NewValidator creates a new Validator.
// Zero option values fall back to the package defaults.
func NewValidator(httpClient *http.Client, hosts *source.Registry, opts ValidatorOptions) *Validator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if hosts == nil {
		hosts = source.NewRegistry()
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = DefaultParallelism
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &Validator{
		httpClient:  httpClient,
		hosts:       hosts,
		parallelism: opts.Parallelism,
		timeout:     opts.ProbeTimeout,
		retries:     opts.Retries,
	}
}

// statusError is a completed probe with an unacceptable status code
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.code, http.StatusText(e.code))
}

type probeResult struct {
	category string
	key      string
	failure  *domain.ValidationFailure
}

// Validate probes every mod URL and partitions the mods by source category.
// The input slice is not modified. Valid and Failed keep input order.
func (v *Validator) Validate(ctx context.Context, mods []domain.ModDescriptor) *domain.ValidationResult {
	results := make([]probeResult, len(mods))

	var g errgroup.Group
	g.SetLimit(v.parallelism)

	for i := range mods {
		mod := mods[i]
		g.Go(func() error {
			results[i] = v.check(ctx, mod)
			return nil
		})
	}
	g.Wait()

	result := domain.NewValidationResult()
	for i, mod := range mods {
		r := results[i]
		if r.failure != nil {
			result.Failed = append(result.Failed, *r.failure)
			continue
		}
		result.Valid = append(result.Valid, mod)
		if r.category == domain.CategoryOther {
			result.Other[r.key] = append(result.Other[r.key], mod)
		} else {
			result.ByCategory[r.category] = append(result.ByCategory[r.category], mod)
		}
	}
	return result
}

func (v *Validator) check(ctx context.Context, mod domain.ModDescriptor) probeResult {
	fail := func(reason string, err error) probeResult {
		return probeResult{failure: &domain.ValidationFailure{Mod: mod, Reason: reason, Err: err}}
	}

	u, err := mod.ParsedURL()
	if errors.Is(err, domain.ErrNoDownloadURL) {
		return fail("No download URL", err)
	}
	if err != nil {
		return fail("Invalid URL", err)
	}

	strategy := source.ProbeHeadFirst
	if h := v.hosts.Lookup(u); h != nil {
		strategy = h.Probe()
	}

	if err := v.probe(ctx, strategy, u.String()); err != nil {
		if ctx.Err() != nil {
			return fail("Cancelled", fmt.Errorf("%w: %v", domain.ErrCancelled, ctx.Err()))
		}
		return fail(err.Error(), fmt.Errorf("%w: %v", domain.ErrNetwork, err))
	}

	category, key := v.hosts.Classify(u)
	return probeResult{category: category, key: key}
}

// probe retries transport failures; a definite HTTP answer is final
func (v *Validator) probe(ctx context.Context, strategy source.ProbeStrategy, target string) error {
	var err error
	for attempt := 0; attempt <= v.retries; attempt++ {
		err = v.probeOnce(ctx, strategy, target)
		if err == nil {
			return nil
		}
		var se *statusError
		if errors.As(err, &se) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

func (v *Validator) probeOnce(ctx context.Context, strategy source.ProbeStrategy, target string) error {
	if strategy == source.ProbeHeadFirst {
		code, err := v.head(ctx, target)
		if err != nil {
			return err
		}
		switch {
		case code >= 200 && code < 300:
			return nil
		case code == http.StatusForbidden || code == http.StatusMethodNotAllowed:
			// Some hosts refuse HEAD; try a real request
		default:
			return &statusError{code: code}
		}
	}

	code, err := v.get(ctx, target)
	if err != nil {
		return err
	}
	if code >= 200 && code < 300 {
		return nil
	}
	return &statusError{code: code}
}

func (v *Validator) head(ctx context.Context, target string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return 0, err
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// get asks for the first byte only and drops the connection after reading it
func (v *Validator) get(ctx context.Context, target string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Range", "bytes=0-0")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if _, err := io.CopyN(io.Discard, resp.Body, 1); err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}
	return resp.StatusCode, nil
}
