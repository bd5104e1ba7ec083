// Package remote uploads archive bundles to Azure Blob Storage.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
)

// ErrNotConfigured is returned when no container URL is set.
var ErrNotConfigured = errors.New("remote container URL not configured")

// Uploader stores a named stream and returns its location.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
}

// BlobUploader writes block blobs into a single container.
type BlobUploader struct {
	client *container.Client
	prefix string
}

var _ Uploader = (*BlobUploader)(nil)

// Options configures NewBlobUploader.
type Options struct {
	// Prefix is prepended to every blob name, e.g. "ci/".
	Prefix string
	// Credential is used when the container URL carries no SAS token.
	// Nil means azidentity.DefaultAzureCredential.
	Credential azcore.TokenCredential
	// Client is passed to the underlying container client.
	Client *container.ClientOptions
}

// NewBlobUploader creates an uploader for containerURL. URLs with a SAS
// signature are used as is; others authenticate with Entra ID.
func NewBlobUploader(containerURL string, opts Options) (*BlobUploader, error) {
	if containerURL == "" {
		return nil, ErrNotConfigured
	}

	parts, err := azblob.ParseURL(containerURL)
	if err != nil {
		// url.Error repeats the raw URL, SAS signature included.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("parsing container URL %q: %w", redact(containerURL), err)
	}
	if parts.ContainerName == "" || parts.BlobName != "" {
		return nil, fmt.Errorf("container URL %q must point at a container", redact(containerURL))
	}

	var client *container.Client
	if parts.SAS.Signature() != "" {
		client, err = container.NewClientWithNoCredential(containerURL, opts.Client)
	} else {
		cred := opts.Credential
		if cred == nil {
			cred, err = azidentity.NewDefaultAzureCredential(nil)
			if err != nil {
				return nil, fmt.Errorf("creating Azure credential: %w", err)
			}
		}
		client, err = container.NewClient(containerURL, cred, opts.Client)
	}
	if err != nil {
		return nil, fmt.Errorf("creating container client: %w", err)
	}

	return &BlobUploader{client: client, prefix: opts.Prefix}, nil
}

// BlobName returns the blob name used for name.
func (u *BlobUploader) BlobName(name string) string {
	return BlobName(u.prefix, name)
}

// Upload streams r into a block blob and returns the blob URL without any
// SAS query.
func (u *BlobUploader) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	if name == "" {
		return "", errors.New("blob name is required")
	}
	blob := u.client.NewBlockBlobClient(u.BlobName(name))
	if _, err := blob.UploadStream(ctx, r, &blockblob.UploadStreamOptions{}); err != nil {
		return "", fmt.Errorf("uploading %s: %w", u.BlobName(name), err)
	}
	return redact(blob.URL()), nil
}

// BlobName joins prefix and name with a single slash when prefix is a
// directory-like path without a trailing one.
func BlobName(prefix, name string) string {
	name = strings.TrimLeft(name, "/")
	if prefix == "" {
		return name
	}
	if strings.HasSuffix(prefix, "/") {
		return prefix + name
	}
	return prefix + "/" + name
}

// redact drops the query string so SAS tokens never reach logs.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		before, _, _ := strings.Cut(raw, "?")
		return before
	}
	u.RawQuery = ""
	return u.String()
}
