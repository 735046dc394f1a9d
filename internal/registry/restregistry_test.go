package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/champlabs/champ/internal/artifact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTrackingServer serves the registry endpoints plus artifact files for
// a single two-version model.
func fakeTrackingServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("GET /api/2.0/models/versions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "iris", r.URL.Query().Get("name"))
		// Versions arrive as strings, the way tracking servers send them.
		_, _ = w.Write([]byte(`{"versions": [
			{"name": "iris", "version": "1", "stage": "Production", "source": "` + srv.URL + `/artifacts/1"},
			{"name": "iris", "version": "2", "stage": "None", "source": "` + srv.URL + `/artifacts/2"}
		]}`))
	})

	mux.HandleFunc("GET /api/2.0/models/champion", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "alias", r.URL.Query().Get("strategy"))
		_, _ = w.Write([]byte(`{"version": {"name": "iris", "version": "1", "stage": "Production"}}`))
	})

	mux.HandleFunc("POST /api/2.0/models/promote", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "2", payload["version"])
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("POST /api/2.0/models/tag", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "decision", payload["key"])
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("GET /artifacts/2/"+artifact.ManifestFile, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"iris","version":2,"kind":"centroid","classes":2,"features":["x1","x2"]}`))
	})
	mux.HandleFunc("GET /artifacts/2/"+artifact.WeightsFile, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"centroids":[[0,0],[10,10]]}`))
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRESTRegistryListVersions(t *testing.T) {
	srv := fakeTrackingServer(t)
	r, err := NewRESTRegistry(srv.URL, StrategyAlias)
	require.NoError(t, err)

	versions, err := r.ListVersions(context.Background(), "iris")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	// String versions decode to ints.
	assert.Equal(t, 1, versions[0].Version)
	assert.Equal(t, 2, versions[1].Version)
	assert.Equal(t, "Production", versions[0].Stage)
}

func TestRESTRegistryResolveChampion(t *testing.T) {
	srv := fakeTrackingServer(t)
	r, err := NewRESTRegistry(srv.URL, StrategyAlias)
	require.NoError(t, err)

	champ, err := r.ResolveChampion(context.Background(), "iris")
	require.NoError(t, err)
	require.NotNil(t, champ)
	assert.Equal(t, 1, champ.Version)
}

func TestRESTRegistryResolveChampionNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/2.0/models/champion", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no champion", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	r, err := NewRESTRegistry(srv.URL, StrategyAlias)
	require.NoError(t, err)

	champ, err := r.ResolveChampion(context.Background(), "iris")
	require.NoError(t, err)
	assert.Nil(t, champ)
}

func TestRESTRegistryLoadPredictor(t *testing.T) {
	srv := fakeTrackingServer(t)
	r, err := NewRESTRegistry(srv.URL, StrategyAlias)
	require.NoError(t, err)

	p, err := r.LoadPredictor(context.Background(), "iris", 2)
	require.NoError(t, err)

	preds, err := p.Predict([][]float64{{9, 9}, {1, 1}})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, preds)
}

func TestRESTRegistryPromoteAndTag(t *testing.T) {
	srv := fakeTrackingServer(t)
	r, err := NewRESTRegistry(srv.URL, StrategyAlias)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, r.Promote(ctx, "iris", 2))
	require.NoError(t, r.Tag(ctx, "iris", 2, "decision", "promoted"))
}

func TestRESTRegistryUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r, err := NewRESTRegistry(url, StrategyAlias)
	require.NoError(t, err)

	_, err = r.ListVersions(context.Background(), "iris")
	require.ErrorIs(t, err, ErrRegistryUnavailable)
}

func TestNewRESTRegistryRejectsBadURI(t *testing.T) {
	_, err := NewRESTRegistry("ftp://somewhere", StrategyAlias)
	require.Error(t, err)
}

func TestIsBlobSource(t *testing.T) {
	assert.True(t, IsBlobSource("https://acct.blob.core.windows.net/artifacts/iris/2"))
	assert.False(t, IsBlobSource("http://localhost:5000/artifacts/2"))
	assert.False(t, IsBlobSource("/local/path"))
}
