package registry

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// IsBlobSource reports whether an artifact source location points at an
// Azure blob container rather than a plain HTTP server.
func IsBlobSource(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return strings.HasSuffix(u.Host, ".blob.core.windows.net")
}

// fetchBlobFile downloads one artifact file from an Azure blob source of
// the form https://<account>.blob.core.windows.net/<container>/<prefix>.
// Authentication uses the ambient credential chain (env vars, managed
// identity, az CLI).
func fetchBlobFile(ctx context.Context, source, file string) ([]byte, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parsing blob source %q: %w", source, err)
	}
	parts := strings.SplitN(strings.Trim(u.Path, "/"), "/", 2)
	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("blob source %q has no container", source)
	}
	container := parts[0]
	blobPath := file
	if len(parts) == 2 && parts[1] != "" {
		blobPath = parts[1] + "/" + file
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("building azure credential: %w", err)
	}
	serviceURL := u.Scheme + "://" + u.Host
	client, err := azblob.NewClient(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("building blob client for %s: %w", serviceURL, err)
	}

	resp, err := client.DownloadStream(ctx, container, blobPath, nil)
	if err != nil {
		return nil, fmt.Errorf("downloading %s/%s: %w", container, blobPath, err)
	}
	defer resp.Body.Close() //nolint:errcheck
	return io.ReadAll(resp.Body)
}
