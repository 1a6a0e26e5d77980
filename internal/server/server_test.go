package server

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glasspane/preview/internal/config"
	"github.com/glasspane/preview/internal/logging"
)

var handleURL = regexp.MustCompile(`/__preview/assets/asset_[0-9A-Z]+`)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Preview.Debounce = 10 * time.Millisecond

	srv, err := NewServer(cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return srv
}

func do(srv *Server, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func awaitGeneration(t *testing.T, srv *Server, match func(string) bool) string {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		w := do(srv, http.MethodGet, "/preview/document", "")
		if w.Code == http.StatusOK && match(w.Body.String()) {
			return w.Body.String()
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatal("generation never matched")
	return ""
}

func TestServerBootsWithStarter(t *testing.T) {
	srv := newTestServer(t)

	w := do(srv, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	doc := do(srv, http.MethodGet, "/preview/document", "")
	require.Equal(t, http.StatusOK, doc.Code)
	assert.Contains(t, doc.Body.String(), "data-preview-bridge")
	assert.NotContains(t, doc.Body.String(), `href="./style.css"`, "starter assets must be rewritten")
}

func TestServerAssetRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	doc := do(srv, http.MethodGet, "/preview/document", "")
	require.Equal(t, http.StatusOK, doc.Code)

	url := handleURL.FindString(doc.Body.String())
	require.NotEmpty(t, url, "document should reference a handle")

	asset := do(srv, http.MethodGet, url, "")
	require.Equal(t, http.StatusOK, asset.Code)
	assert.NotEmpty(t, asset.Header().Get("ETag"))

	// conditional revalidation
	req := httptest.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("If-None-Match", asset.Header().Get("ETag"))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotModified, w.Code)

	missing := do(srv, http.MethodGet, "/__preview/assets/asset_NOPE", "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestServerEditTriggersRegeneration(t *testing.T) {
	srv := newTestServer(t)

	body, _ := sonic.MarshalString(map[string]string{
		"content": "<html><head><title>Edited</title></head><body></body></html>",
	})
	w := do(srv, http.MethodPut, "/files/index.html", body)
	require.Equal(t, http.StatusOK, w.Code)

	awaitGeneration(t, srv, func(doc string) bool {
		return strings.Contains(doc, "<title>Edited</title>")
	})
}

func TestServerFileAPI(t *testing.T) {
	srv := newTestServer(t)

	list := do(srv, http.MethodGet, "/files?glob=**/*.css", "")
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), "/style.css")

	read := do(srv, http.MethodGet, "/files/style.css", "")
	require.Equal(t, http.StatusOK, read.Code)

	del := do(srv, http.MethodDelete, "/files/app.js", "")
	require.Equal(t, http.StatusOK, del.Code)
	gone := do(srv, http.MethodGet, "/files/app.js", "")
	assert.Equal(t, http.StatusNotFound, gone.Code)

	merge, _ := sonic.MarshalString(map[string]interface{}{
		"files": map[string]string{
			"/a.txt": "a",
			"/b.txt": "b",
		},
	})
	w := do(srv, http.MethodPost, "/files", merge)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)
}

func TestServerImportIsGloballyLimited(t *testing.T) {
	srv := newTestServer(t)

	// drain the shared import bucket with rejected uploads; the limiter sits
	// in front of body parsing, so once the bucket empties the 400s turn 429
	var last int
	for i := 0; i < 10; i++ {
		last = do(srv, http.MethodPost, "/import", "").Code
		if last == http.StatusTooManyRequests {
			break
		}
		assert.NotEqual(t, http.StatusOK, last, "empty import must not succeed")
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestServerOverlayFlow(t *testing.T) {
	srv := newTestServer(t)

	frag, _ := sonic.MarshalString(map[string]string{"fragment": "<p>overlay text</p>"})
	w := do(srv, http.MethodPost, "/overlay/fragments", frag)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		RegionID string `json:"region_id"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.RegionID)

	index := do(srv, http.MethodGet, "/files/index.html", "")
	assert.Contains(t, index.Body.String(), resp.RegionID)

	commit, _ := sonic.MarshalString(map[string]string{"content": "committed text"})
	w = do(srv, http.MethodPost, "/overlay/regions/"+resp.RegionID+"/commit", commit)
	require.Equal(t, http.StatusOK, w.Code)

	index = do(srv, http.MethodGet, "/files/index.html", "")
	assert.Contains(t, index.Body.String(), "committed text")

	format, _ := sonic.MarshalString(map[string]string{"action": "align", "align": "center"})
	w = do(srv, http.MethodPost, "/overlay/regions/"+resp.RegionID+"/format", format)
	require.Equal(t, http.StatusOK, w.Code)
}
