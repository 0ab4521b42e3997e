package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JasonDebnath001/QuickTix-server/internal/shared/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *TMDBClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewTMDBClient(config.CatalogConfig{
		BaseURL:     srv.URL,
		AccessToken: "test-token",
		Timeout:     2 * time.Second,
	})
}

func TestFetchNowPlaying(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/now_playing", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results":[{"id":550,"title":"Fight Club","vote_average":8.4,"genre_ids":[18]}]}`)
	})

	movies, err := client.FetchNowPlaying(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, 550, movies[0].ID)
	assert.Equal(t, "Fight Club", movies[0].Title)
	assert.Equal(t, []int{18}, movies[0].GenreIDs)
}

func TestFetchMovieDetailsTrimsCast(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/movie/550":
			fmt.Fprint(w, `{"id":550,"title":"Fight Club","tagline":"Mischief.","runtime":139,"genres":[{"id":18,"name":"Drama"}]}`)
		case "/movie/550/credits":
			var cast []string
			for i := 0; i < 15; i++ {
				cast = append(cast, fmt.Sprintf(`{"name":"Actor %d","character":"Role %d"}`, i, i))
			}
			fmt.Fprintf(w, `{"cast":[%s]}`, strings.Join(cast, ","))
		default:
			http.NotFound(w, r)
		}
	})

	details, err := client.FetchMovieDetails(context.Background(), "550")
	require.NoError(t, err)

	assert.Equal(t, "550", details.ID)
	assert.Equal(t, "Fight Club", details.Title)
	assert.Equal(t, 139, details.Runtime)
	assert.Equal(t, []Genre{{ID: 18, Name: "Drama"}}, details.Genres)
	require.Len(t, details.Cast, maxCast)
	assert.Equal(t, "Actor 0", details.Cast[0].Name)
}

func TestFetchMovieDetailsErrors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
		_, err := client.FetchMovieDetails(context.Background(), "1")
		assert.ErrorIs(t, err, ErrMovieNotFound)
	})

	t.Run("upstream failure", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		_, err := client.FetchMovieDetails(context.Background(), "1")
		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("invalid id", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})
		_, err := client.FetchMovieDetails(context.Background(), "abc")
		assert.ErrorIs(t, err, ErrMovieNotFound)
	})
}
