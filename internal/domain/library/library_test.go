package library

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"adventure/internal/domain/story"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storyDoc = `scenes:
  cave:
    name: Cave
    description: A dark cave.
    is_first_scene: true
    items:
      torch:
        name: torch
        description: A wooden torch.
`

func storyServer(t *testing.T, status *atomic.Int32, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if code := int(status.Load()); code != http.StatusOK {
			w.WriteHeader(code)
			return
		}
		w.Write([]byte(storyDoc))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Story.yaml")
	require.NoError(t, os.WriteFile(path, []byte(storyDoc), 0644))

	s, err := NewStoryLibrary(nil).Open(context.Background(), path)
	require.NoError(t, err)

	scene, err := s.InitialScene()
	require.NoError(t, err)
	assert.Equal(t, "Cave", scene.Name)
}

func TestOpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := NewStoryLibrary(nil).Open(context.Background(), path)

	var loadErr *story.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, path, loadErr.Source)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestOpenRemoteWithoutCache(t *testing.T) {
	_, err := NewStoryLibrary(nil).Open(context.Background(), "https://example.com/story.yaml")

	var loadErr *story.LoadError
	require.ErrorAs(t, err, &loadErr)
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("http://example.com/s.yaml"))
	assert.True(t, IsRemote("HTTPS://example.com/s.yaml"))
	assert.False(t, IsRemote("res/Story.yaml"))
	assert.False(t, IsRemote("/tmp/http/story.yaml"))
}

func TestOpenRemoteUsesFreshCache(t *testing.T) {
	var status, hits atomic.Int32
	status.Store(http.StatusOK)
	srv := storyServer(t, &status, &hits)

	lib := NewStoryLibrary(NewStoryCache(t.TempDir(), time.Hour, 5*time.Second))

	for i := 0; i < 3; i++ {
		s, err := lib.Open(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Contains(t, s.Scenes, "cave")
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestCacheFallsBackToStaleCopy(t *testing.T) {
	var status, hits atomic.Int32
	status.Store(http.StatusOK)
	srv := storyServer(t, &status, &hits)

	cache := NewStoryCache(t.TempDir(), 0, 5*time.Second)
	first, err := cache.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	status.Store(http.StatusInternalServerError)
	second, err := cache.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(2), hits.Load())
}

func TestCacheFetchFailureWithoutCopy(t *testing.T) {
	var status, hits atomic.Int32
	status.Store(http.StatusNotFound)
	srv := storyServer(t, &status, &hits)

	_, err := NewStoryLibrary(NewStoryCache(t.TempDir(), time.Hour, 5*time.Second)).
		Open(context.Background(), srv.URL+"/missing.yaml")

	var loadErr *story.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestCacheInfoAndClear(t *testing.T) {
	var status, hits atomic.Int32
	status.Store(http.StatusOK)
	srv := storyServer(t, &status, &hits)

	cache := NewStoryCache(t.TempDir(), time.Hour, 5*time.Second)
	assert.False(t, cache.Info(srv.URL).Exists)

	_, err := cache.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	info := cache.Info(srv.URL)
	assert.True(t, info.Exists)
	assert.True(t, info.Fresh)
	assert.Equal(t, int64(len(storyDoc)), info.Size)
	assert.Equal(t, time.Hour, info.MaxAge)

	require.NoError(t, cache.ClearCache())
	assert.False(t, cache.Info(srv.URL).Exists)
}
