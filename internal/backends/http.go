package backends

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CheerlessCloud/veendor/internal/ports"
	"github.com/CheerlessCloud/veendor/internal/shared"
	"github.com/CheerlessCloud/veendor/internal/types"
)

const defaultHTTPTimeoutSec = 60

// HTTPBackend pulls bundles over plain GET. It is read-only: a CDN or
// artifact proxy in front of another backend's storage.
type HTTPBackend struct {
	alias   string
	archive ports.Archive
	opts    httpOptions
	client  *http.Client
}

type httpOptions struct {
	// ResolveURL is either a template with a {hash} placeholder or a
	// base URL the bundle file name is joined onto.
	ResolveURL string `yaml:"resolveUrl"`

	// Strict surfaces non-404 failures instead of treating them as a
	// chain miss.
	Strict bool `yaml:"strict"`

	TimeoutSec int `yaml:"timeoutSec"`
}

func NewHTTPBackend(entry types.BackendConfig, archive ports.Archive) (*HTTPBackend, error) {
	if entry.Push {
		return nil, types.ErrInvalidOptions(entry.Alias, "http backend cannot push")
	}
	backend := &HTTPBackend{alias: entry.Alias, archive: archive}
	if err := decodeOptions(entry, &backend.opts); err != nil {
		return nil, err
	}
	return backend, nil
}

func (b *HTTPBackend) ValidateOptions(_ context.Context) error {
	if b.opts.ResolveURL == "" {
		return types.ErrInvalidOptions(b.alias, "resolveUrl is required")
	}
	parsed, err := url.Parse(b.opts.ResolveURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return types.ErrInvalidOptions(b.alias, "resolveUrl must be an http(s) url")
	}
	if b.opts.TimeoutSec <= 0 {
		b.opts.TimeoutSec = defaultHTTPTimeoutSec
	}
	b.client = &http.Client{Timeout: time.Duration(b.opts.TimeoutSec) * time.Second}
	return nil
}

func (b *HTTPBackend) Pull(ctx context.Context, hash string, cacheDir string) error {
	bundleURL := b.resolve(hash)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, bundleURL, nil)
	if err != nil {
		return types.ErrBackend(b.alias, "failed to build request", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		if b.opts.Strict {
			return types.ErrBackend(b.alias, "request failed", err)
		}
		return types.ErrBundleNotFound(b.alias, hash)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return types.ErrBundleNotFound(b.alias, hash)
	}
	if resp.StatusCode != http.StatusOK {
		if b.opts.Strict {
			return types.ErrBackend(b.alias, "unexpected response", shared.HTTPStatusError(resp.StatusCode, bundleURL))
		}
		return types.ErrBundleNotFound(b.alias, hash)
	}
	staging := filepath.Join(cacheDir, shared.BundleFileName(hash))
	out, err := os.Create(staging)
	if err != nil {
		return types.ErrBackend(b.alias, "failed to create staging file", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return types.ErrBackend(b.alias, "failed to download bundle", err)
	}
	if err := out.Close(); err != nil {
		return types.ErrBackend(b.alias, "failed to finish download", err)
	}
	if err := b.archive.Extract(ctx, staging, cacheDir); err != nil {
		return types.ErrBackend(b.alias, "failed to extract bundle", err)
	}
	return nil
}

func (b *HTTPBackend) Push(_ context.Context, _ string, _ string, _ string) error {
	return types.ErrBackend(b.alias, "push not supported", nil)
}

func (b *HTTPBackend) resolve(hash string) string {
	if strings.Contains(b.opts.ResolveURL, "{hash}") {
		return strings.ReplaceAll(b.opts.ResolveURL, "{hash}", hash)
	}
	return strings.TrimRight(b.opts.ResolveURL, "/") + "/" + shared.BundleFileName(hash)
}

var _ ports.Backend = (*HTTPBackend)(nil)
