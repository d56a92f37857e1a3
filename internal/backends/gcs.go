package backends

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/CheerlessCloud/veendor/internal/ports"
	"github.com/CheerlessCloud/veendor/internal/shared"
	"github.com/CheerlessCloud/veendor/internal/types"
)

// GCSBackend stores bundles as objects in a Cloud Storage bucket. Push
// writes with a does-not-exist precondition, so a concurrent writer
// surfaces as a bundle conflict rather than a silent overwrite.
type GCSBackend struct {
	alias   string
	archive ports.Archive
	opts    gcsOptions

	clientOnce sync.Once
	client     *storage.Client
	clientErr  error
}

type gcsOptions struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`

	// CredentialsFile points at a service-account key; when empty the
	// ambient application-default credentials are used.
	CredentialsFile string `yaml:"credentialsFile"`
}

func NewGCSBackend(entry types.BackendConfig, archive ports.Archive) (*GCSBackend, error) {
	backend := &GCSBackend{alias: entry.Alias, archive: archive}
	if err := decodeOptions(entry, &backend.opts); err != nil {
		return nil, err
	}
	return backend, nil
}

func (b *GCSBackend) ValidateOptions(_ context.Context) error {
	if b.opts.Bucket == "" {
		return types.ErrInvalidOptions(b.alias, "bucket is required")
	}
	if b.opts.CredentialsFile != "" {
		if _, err := os.Stat(b.opts.CredentialsFile); err != nil {
			return types.ErrInvalidOptions(b.alias, "credentials file not readable: "+err.Error())
		}
	}
	return nil
}

func (b *GCSBackend) Pull(ctx context.Context, hash string, cacheDir string) error {
	client, err := b.storageClient(ctx)
	if err != nil {
		return types.ErrBackend(b.alias, "failed to create storage client", err)
	}
	reader, err := client.Bucket(b.opts.Bucket).Object(b.objectName(hash)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return types.ErrBundleNotFound(b.alias, hash)
	}
	if err != nil {
		return types.ErrBackend(b.alias, "failed to open bundle object", err)
	}
	defer reader.Close()
	staging := filepath.Join(cacheDir, shared.BundleFileName(hash))
	out, err := os.Create(staging)
	if err != nil {
		return types.ErrBackend(b.alias, "failed to create staging file", err)
	}
	if _, err := io.Copy(out, reader); err != nil {
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

func (b *GCSBackend) Push(ctx context.Context, hash string, projectDir string, cacheDir string) error {
	client, err := b.storageClient(ctx)
	if err != nil {
		return types.ErrBackend(b.alias, "failed to create storage client", err)
	}
	staging := filepath.Join(cacheDir, shared.BundleFileName(hash))
	if err := b.archive.Create(ctx, staging, projectDir); err != nil {
		return types.ErrBackend(b.alias, "failed to archive bundle", err)
	}
	in, err := os.Open(staging)
	if err != nil {
		return types.ErrBackend(b.alias, "failed to open staged bundle", err)
	}
	defer in.Close()

	object := client.Bucket(b.opts.Bucket).Object(b.objectName(hash))
	writer := object.If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = "application/gzip"
	if _, err := io.Copy(writer, in); err != nil {
		_ = writer.Close()
		return types.ErrBackend(b.alias, "failed to upload bundle", err)
	}
	if err := writer.Close(); err != nil {
		if isPreconditionFailed(err) {
			return types.ErrBundleAlreadyExists(b.alias, hash)
		}
		return types.ErrBackend(b.alias, "failed to finish upload", err)
	}
	return nil
}

func (b *GCSBackend) storageClient(ctx context.Context) (*storage.Client, error) {
	b.clientOnce.Do(func() {
		opts := []option.ClientOption{}
		if b.opts.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(b.opts.CredentialsFile))
		}
		b.client, b.clientErr = storage.NewClient(ctx, opts...)
	})
	return b.client, b.clientErr
}

func (b *GCSBackend) objectName(hash string) string {
	return path.Join(b.opts.Prefix, shared.BundleFileName(hash))
}

func isPreconditionFailed(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == 412
}

var _ ports.Backend = (*GCSBackend)(nil)
