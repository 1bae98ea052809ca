package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridex-labs/veridex/internal/api/handlers"
	"github.com/veridex-labs/veridex/internal/embedding"
	"github.com/veridex-labs/veridex/internal/parser"
	"github.com/veridex-labs/veridex/internal/repository"
	"github.com/veridex-labs/veridex/internal/service"
	"github.com/veridex-labs/veridex/internal/vectorindex"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	provider := embedding.NewHashProvider(embedding.DefaultHashDimensions)
	ix, err := vectorindex.New(provider.Dimension())
	require.NoError(t, err)
	docs := repository.NewMemoryDocumentRepository()

	ingest := service.NewIngestService(parser.NewRegistry(nil), provider, ix, docs, nil, service.ChunkingConfig{})
	search := service.NewSearchService(provider, ix)
	admin := service.NewAdminService(docs, ix)

	router := NewRouter(RouterConfig{
		DocumentHandler: handlers.NewDocumentHandler(ingest, admin),
		SearchHandler:   handlers.NewSearchHandler(search),
		AdminHandler:    handlers.NewAdminHandler(admin),
		MaxBodyBytes:    1 << 20,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func uploadFile(t *testing.T, srv *httptest.Server, owner, filename, content string) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/documents", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Owner-ID", owner)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Data
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestUploadSearchDeleteFlow(t *testing.T) {
	srv := newTestServer(t)

	data := uploadFile(t, srv, "owner-1", "notice.txt",
		"Offence No. 123456789 issued in NSW. Payment is due within 28 days.")
	assert.Equal(t, "123456789", data["detected_identifier"])
	assert.Equal(t, "NSW", data["detected_region"])
	docID := data["doc_id"].(string)

	// search finds it
	searchBody := strings.NewReader(`{"query":"payment due within 28 days"}`)
	resp, err := http.Post(srv.URL+"/search", "application/json", searchBody)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Data struct {
			Results []struct {
				Content string `json:"content"`
			} `json:"results"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Data.Results)

	// delete removes it from search
	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/documents/"+docID, nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	resp2, err := http.Post(srv.URL+"/search", "application/json",
		strings.NewReader(`{"query":"payment due within 28 days"}`))
	require.NoError(t, err)
	defer resp2.Body.Close()
	var out2 struct {
		Data struct {
			Results []json.RawMessage `json:"results"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&out2))
	assert.Empty(t, out2.Data.Results)
}

func TestUploadUnsupportedFormat(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "bundle.tar.gz")
	require.NoError(t, err)
	_, err = fw.Write([]byte("binary"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/documents", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Owner-ID", "owner-1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestUploadMissingOwner(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "a.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("text"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/documents", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchEmptyQueryReturns400(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/search", "application/json", strings.NewReader(`{"query":""}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListScopedByOwnerHeader(t *testing.T) {
	srv := newTestServer(t)

	uploadFile(t, srv, "owner-a", "a.txt", "first document content")
	uploadFile(t, srv, "owner-b", "b.txt", "second document content")

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/documents", nil)
	require.NoError(t, err)
	req.Header.Set("X-Owner-ID", "owner-a")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out struct {
		Data []struct {
			OwnerID string `json:"owner_id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Data, 1)
	assert.Equal(t, "owner-a", out.Data[0].OwnerID)
}

func TestStatsAndRebuild(t *testing.T) {
	srv := newTestServer(t)

	data := uploadFile(t, srv, "owner-1", "a.txt", "speeding infringement on the highway")
	docID := data["doc_id"].(string)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/documents/"+docID, nil)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	delResp.Body.Close()

	// slot still occupied before rebuild
	statsResp, err := http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	var stats struct {
		Data struct {
			IndexSlots int `json:"index_slots"`
			LiveChunks int `json:"live_chunks"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(statsResp.Body).Decode(&stats))
	statsResp.Body.Close()
	assert.Equal(t, 1, stats.Data.IndexSlots)
	assert.Zero(t, stats.Data.LiveChunks)

	rebuildResp, err := http.Post(srv.URL+"/index/rebuild", "application/json", nil)
	require.NoError(t, err)
	defer rebuildResp.Body.Close()
	require.Equal(t, http.StatusOK, rebuildResp.StatusCode)

	var rebuild struct {
		Data struct {
			Removed   int `json:"removed"`
			Remaining int `json:"remaining"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rebuildResp.Body).Decode(&rebuild))
	assert.Equal(t, 1, rebuild.Data.Removed)
	assert.Zero(t, rebuild.Data.Remaining)
}

func TestUploadTooLargeRejected(t *testing.T) {
	srv := newTestServer(t)

	big := strings.Repeat("x", 2<<20)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "big.txt")
	require.NoError(t, err)
	fmt.Fprint(fw, big)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/documents", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Owner-ID", "owner-1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}
