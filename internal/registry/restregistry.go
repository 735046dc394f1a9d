package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/champlabs/champ/internal/artifact"
	"github.com/champlabs/champ/internal/evaluate"
	"github.com/champlabs/champ/internal/models"
	"github.com/go-viper/mapstructure/v2"
)

// RESTRegistry talks to a remote model registry over HTTP. The wire
// protocol follows the common tracking-server layout: version listings and
// champion resolution are GETs, promotion and tagging are POSTs, and
// artifacts are fetched from each version's source location.
type RESTRegistry struct {
	base     *url.URL
	strategy Strategy
	client   *http.Client

	// fetchBlob downloads an artifact file from a blob-store source URL.
	// Overridable in tests.
	fetchBlob func(ctx context.Context, source, file string) ([]byte, error)
}

var _ Client = (*RESTRegistry)(nil)

// statusError is a non-200 answer from the registry. The registry
// answered, so this is not ErrRegistryUnavailable.
type statusError struct {
	Path string
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("registry: %s returned %d: %s", e.Path, e.Code, e.Body)
}

// NewRESTRegistry builds a client for the registry at baseURI, e.g.
// "http://mlflow.internal:5000".
func NewRESTRegistry(baseURI string, strategy Strategy) (*RESTRegistry, error) {
	base, err := url.Parse(baseURI)
	if err != nil {
		return nil, fmt.Errorf("registry: parsing URI %q: %w", baseURI, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("registry: URI %q is not http(s)", baseURI)
	}
	return &RESTRegistry{
		base:      base,
		strategy:  strategy,
		client:    &http.Client{Timeout: 30 * time.Second},
		fetchBlob: fetchBlobFile,
	}, nil
}

// get issues a GET and decodes the JSON response into out. Remote
// registries are loose with numeric types (versions often arrive as
// strings), so decoding goes through a weakly typed mapstructure pass.
func (r *RESTRegistry) get(ctx context.Context, path string, query url.Values, out any) error {
	u := r.base.JoinPath(path)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("registry: building request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrRegistryUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return &statusError{Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return fmt.Errorf("registry: parsing %s response: %w", path, err)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return fmt.Errorf("registry: building decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("registry: decoding %s response: %w", path, err)
	}
	return nil
}

func (r *RESTRegistry) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("registry: encoding request: %w", err)
	}
	u := r.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("registry: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return &statusError{Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	return nil
}

// ListVersions implements Client.
func (r *RESTRegistry) ListVersions(ctx context.Context, name string) ([]models.ModelVersion, error) {
	var out struct {
		Versions []models.ModelVersion `json:"versions"`
	}
	q := url.Values{"name": {name}}
	if err := r.get(ctx, "api/2.0/models/versions", q, &out); err != nil {
		return nil, err
	}
	return out.Versions, nil
}

// ResolveChampion implements Client. A 404 from the champion endpoint
// means no champion is designated, which is not an error.
func (r *RESTRegistry) ResolveChampion(ctx context.Context, name string) (*models.ModelVersion, error) {
	var out struct {
		Version *models.ModelVersion `json:"version"`
	}
	q := url.Values{"name": {name}, "strategy": {string(r.strategy)}}
	err := r.get(ctx, "api/2.0/models/champion", q, &out)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return out.Version, nil
}

// LoadPredictor implements Client. The artifact files are downloaded from
// the version's source location into a temp directory and loaded from
// there.
func (r *RESTRegistry) LoadPredictor(ctx context.Context, name string, version int) (evaluate.Predictor, error) {
	versions, err := r.ListVersions(ctx, name)
	if err != nil {
		return nil, err
	}
	var source string
	for _, v := range versions {
		if v.Version == version {
			source = v.Source
		}
	}
	if source == "" {
		return nil, &ModelLoadError{Name: name, Version: version, Err: fmt.Errorf("no source location")}
	}

	dir, err := os.MkdirTemp("", "champ-artifact-*")
	if err != nil {
		return nil, &ModelLoadError{Name: name, Version: version, Err: err}
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	for _, file := range []string{artifact.ManifestFile, artifact.WeightsFile} {
		data, err := r.fetchArtifactFile(ctx, source, file)
		if err != nil {
			return nil, &ModelLoadError{Name: name, Version: version, Err: err}
		}
		if err := os.WriteFile(dir+"/"+file, data, 0o644); err != nil {
			return nil, &ModelLoadError{Name: name, Version: version, Err: err}
		}
	}

	p, _, err := artifact.Load(dir)
	if err != nil {
		return nil, &ModelLoadError{Name: name, Version: version, Err: err}
	}
	return p, nil
}

// fetchArtifactFile retrieves one artifact file from a source location,
// which is either a plain HTTP URL or an Azure blob container path.
func (r *RESTRegistry) fetchArtifactFile(ctx context.Context, source, file string) ([]byte, error) {
	if IsBlobSource(source) {
		return r.fetchBlob(ctx, source, file)
	}

	u := strings.TrimSuffix(source, "/") + "/" + file
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building artifact request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artifact %s returned %s", u, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Promote implements Client.
func (r *RESTRegistry) Promote(ctx context.Context, name string, version int) error {
	return r.post(ctx, "api/2.0/models/promote", map[string]string{
		"name":     name,
		"version":  strconv.Itoa(version),
		"strategy": string(r.strategy),
	})
}

// Tag implements Client.
func (r *RESTRegistry) Tag(ctx context.Context, name string, version int, key, value string) error {
	return r.post(ctx, "api/2.0/models/tag", map[string]string{
		"name":    name,
		"version": strconv.Itoa(version),
		"key":     key,
		"value":   value,
	})
}
