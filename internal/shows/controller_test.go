package shows

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(f *fixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ctrl := NewController(f.svc)
	r.POST("/shows", ctrl.AddShows)
	r.GET("/shows", ctrl.ListUpcomingMovies)
	r.GET("/shows/:movieId", ctrl.GetMovieShows)
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestController_AddShows(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"malformed json", `{"movieId":`, http.StatusBadRequest},
		{"missing shows", `{"movieId":"1","showPrice":10}`, http.StatusBadRequest},
		{"zero price", `{"movieId":"1","showsInput":[{"date":"2026-07-02","time":["10:00"]}],"showPrice":0}`, http.StatusBadRequest},
		{"bad date", `{"movieId":"1","showsInput":[{"date":"tomorrow","time":["10:00"]}],"showPrice":10}`, http.StatusBadRequest},
		{"created", `{"movieId":"1","showsInput":[{"date":"2026-07-02","time":["10:00","13:00"]}],"showPrice":10}`, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/shows", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			newTestRouter(f).ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.wantCode == http.StatusCreated, body["success"])
		})
	}
}

func TestController_GetMovieShows(t *testing.T) {
	f := newFixture(t)
	seedShows(t, f)
	r := newTestRouter(f)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/shows/1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Contains(t, data["dateTime"], "2026-07-02")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/shows/999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
