package core

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/DonovanMods/modlist-installer/internal/domain"
	"github.com/DonovanMods/modlist-installer/internal/source"
	"github.com/DonovanMods/modlist-installer/internal/storage/staging"
)

const (
	// DefaultChunkSize is the write size used while streaming to disk
	DefaultChunkSize = 8192
	// DefaultReadTimeout is how long a download may go without receiving data
	DefaultReadTimeout = 30 * time.Second
)

// DownloadProgress represents the current state of a download
type DownloadProgress struct {
	TotalBytes int64   // Total size in bytes (0 if unknown)
	Downloaded int64   // Bytes downloaded so far
	Percentage float64 // Completion percentage (0-100)
}

// ProgressFunc is called periodically during download with progress updates
type ProgressFunc func(DownloadProgress)

// Fetcher streams mod archives into the staging area
type Fetcher struct {
	httpClient *http.Client
	hosts      *source.Registry
	staging    *staging.Staging
	chunkSize  int

	readTimeout time.Duration
}

// NewFetcher creates a new Fetcher.
// If httpClient is nil, http.DefaultClient is used; nil hosts means no host
// quirks; nil stage stages into the system temporary directory.
func NewFetcher(httpClient *http.Client, hosts *source.Registry, stage *staging.Staging, chunkSize int) *Fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if hosts == nil {
		hosts = source.NewRegistry()
	}
	if stage == nil {
		stage = staging.New("")
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Fetcher{
		httpClient: httpClient,
		hosts:      hosts,
		staging:    stage,
		chunkSize:  chunkSize,

		readTimeout: DefaultReadTimeout,
	}
}

// SetReadTimeout sets how long a download may wait for its response or its
// next bytes before it fails. Non-positive values are ignored.
func (f *Fetcher) SetReadTimeout(d time.Duration) {
	if d > 0 {
		f.readTimeout = d
	}
}

// Staging returns the staging area downloads are written to
func (f *Fetcher) Staging() *staging.Staging {
	return f.staging
}

// Fetch downloads rawURL into a new staged file.
// Failures wrap domain.ErrNetwork, or domain.ErrInterstitial when the host
// answered with an HTML page instead of the archive. No file is left behind
// on failure. Downloads are never retried. A transfer that receives nothing
// for the read timeout fails with domain.ErrNetwork.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, progressFn ProgressFunc) (*domain.StagedArchive, error) {
	target := f.hosts.NormalizeURL(strings.TrimSpace(rawURL))

	// The deadline restarts whenever data arrives, so only a stalled transfer trips it
	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var timedOut atomic.Bool
	idle := time.AfterFunc(f.readTimeout, func() {
		timedOut.Store(true)
		cancel()
	})
	defer idle.Stop()

	failure := func(prefix string, err error) error {
		switch {
		case timedOut.Load():
			return fmt.Errorf("%w: timed out after %v without data", domain.ErrNetwork, f.readTimeout)
		case ctx.Err() != nil:
			return fmt.Errorf("%w: %v", domain.ErrCancelled, ctx.Err())
		default:
			return fmt.Errorf("%w: %s%v", domain.ErrNetwork, prefix, err)
		}
	}

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", domain.ErrNetwork, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, failure("", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP error: %d %s", domain.ErrNetwork, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	// Checked before anything touches the disk
	format := DetectFormat(target, resp.Header, f.servesInterstitial(target))
	if format == domain.FormatHTMLError {
		return nil, fmt.Errorf("%w: host returned an HTML page, download the file manually", domain.ErrInterstitial)
	}

	file, err := f.staging.Create(format.Extension())
	if err != nil {
		return nil, err
	}
	path := file.Name()

	reader := &progressReader{
		reader:     resp.Body,
		totalBytes: resp.ContentLength,
		progressFn: progressFn,
		idle:       idle,
		timeout:    f.readTimeout,
	}

	// Hide ReadFrom so writes really happen in chunkSize pieces
	written, err := io.CopyBuffer(struct{ io.Writer }{file}, reader, make([]byte, f.chunkSize))
	if err != nil {
		file.Close()
		f.staging.Remove(path)
		return nil, failure("downloading file: ", err)
	}

	if err := file.Close(); err != nil {
		f.staging.Remove(path)
		return nil, fmt.Errorf("closing staged file: %w", err)
	}

	return &domain.StagedArchive{
		Path:   path,
		Format: format,
		Size:   written,
	}, nil
}

func (f *Fetcher) servesInterstitial(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	h := f.hosts.Lookup(u)
	return h != nil && h.ServesInterstitial()
}

// DetectFormat classifies a response from its URL and headers.
// HTML from a host known for interstitial pages is FormatHTMLError; a 7z
// hint in the URL, Content-Type or Content-Disposition is FormatSevenZip;
// anything else is assumed to be zip.
func DetectFormat(rawURL string, header http.Header, interstitialHost bool) domain.Format {
	contentType := strings.ToLower(header.Get("Content-Type"))
	if interstitialHost && strings.Contains(contentType, "text/html") {
		return domain.FormatHTMLError
	}

	if strings.Contains(strings.ToLower(rawURL), ".7z") || strings.Contains(contentType, "7z") {
		return domain.FormatSevenZip
	}

	if _, params, err := mime.ParseMediaType(header.Get("Content-Disposition")); err == nil {
		if strings.HasSuffix(strings.ToLower(params["filename"]), ".7z") {
			return domain.FormatSevenZip
		}
	}

	return domain.FormatZip
}

// progressReader wraps an io.Reader to track download progress
type progressReader struct {
	reader     io.Reader
	totalBytes int64
	downloaded int64
	progressFn ProgressFunc

	idle    *time.Timer
	timeout time.Duration
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		if r.idle != nil {
			r.idle.Reset(r.timeout)
		}
		r.downloaded += int64(n)
		if r.progressFn != nil {
			progress := DownloadProgress{
				TotalBytes: r.totalBytes,
				Downloaded: r.downloaded,
			}
			if r.totalBytes > 0 {
				progress.Percentage = float64(r.downloaded) / float64(r.totalBytes) * 100
			}
			r.progressFn(progress)
		}
	}
	return n, err
}
