//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veridex-labs/veridex/internal/api/handlers"
	"github.com/veridex-labs/veridex/internal/embedding"
	"github.com/veridex-labs/veridex/internal/parser"
	"github.com/veridex-labs/veridex/internal/repository"
	"github.com/veridex-labs/veridex/internal/server"
	"github.com/veridex-labs/veridex/internal/service"
	"github.com/veridex-labs/veridex/internal/storage"
	"github.com/veridex-labs/veridex/internal/testutil"
	"github.com/veridex-labs/veridex/internal/vectorindex"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T           *testing.T
	Ctx         context.Context
	PostgresC   *testutil.PostgresContainer
	RustFSC     *testutil.RustFSContainer
	Pool        *pgxpool.Pool
	S3Client    *storage.S3Client
	SnapshotDir string
	Server      *httptest.Server
	Index       *vectorindex.Index
	HTTPClient  *http.Client
}

// SetupE2EEnv creates a full E2E test environment with containers and server
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "veridex-e2e",
		Prefix:          "snapshots",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	env := &E2ETestEnv{
		T:           t,
		Ctx:         ctx,
		PostgresC:   pgC,
		RustFSC:     s3C,
		Pool:        pool,
		S3Client:    s3Client,
		SnapshotDir: t.TempDir(),
		HTTPClient:  &http.Client{Timeout: 30 * time.Second},
	}
	env.StartServer()
	return env
}

// StartServer builds the full stack and starts an in-process HTTP server.
// It restores the index from the latest snapshot, so calling it after
// StopServer simulates a daemon restart.
func (e *E2ETestEnv) StartServer() {
	provider := embedding.NewHashProvider(embedding.DefaultHashDimensions)

	ix, err := vectorindex.New(provider.Dimension(),
		vectorindex.WithPersistence(&vectorindex.Persistence{Dir: e.SnapshotDir, Remote: e.S3Client}))
	if err != nil {
		e.T.Fatalf("failed to create index: %v", err)
	}
	if err := ix.Load(e.Ctx); err != nil {
		e.T.Fatalf("failed to load snapshot: %v", err)
	}
	e.Index = ix

	docs := repository.NewDocumentRepository(e.Pool)
	mirror := repository.NewChunkMirrorRepository(e.Pool)

	ingest := service.NewIngestService(parser.NewRegistry(nil), provider, ix, docs, mirror, service.ChunkingConfig{})
	search := service.NewSearchService(provider, ix)
	admin := service.NewAdminService(docs, ix)

	router := server.NewRouter(server.RouterConfig{
		DocumentHandler: handlers.NewDocumentHandler(ingest, admin),
		SearchHandler:   handlers.NewSearchHandler(search),
		AdminHandler:    handlers.NewAdminHandler(admin),
	})
	e.Server = httptest.NewServer(router)
}

// StopServer snapshots the index and shuts the server down.
func (e *E2ETestEnv) StopServer() {
	if e.Index != nil && e.Index.Dirty() {
		if err := e.Index.Save(e.Ctx); err != nil {
			e.T.Fatalf("failed to save snapshot: %v", err)
		}
	}
	if e.Server != nil {
		e.Server.Close()
		e.Server = nil
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.Server != nil {
		e.Server.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// APIResponse mirrors the server's response envelope.
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// Upload posts a file as multipart form data for the given owner.
func (e *E2ETestEnv) Upload(owner, filename string, content []byte) (*APIResponse, int) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		e.T.Fatalf("failed to create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		e.T.Fatalf("failed to write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		e.T.Fatalf("failed to close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, e.Server.URL+"/documents", &buf)
	if err != nil {
		e.T.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Owner-ID", owner)

	return e.send(req)
}

// Post performs a JSON POST request.
func (e *E2ETestEnv) Post(path string, body interface{}, owner string) (*APIResponse, int) {
	payload, err := json.Marshal(body)
	if err != nil {
		e.T.Fatalf("failed to marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, e.Server.URL+path, bytes.NewReader(payload))
	if err != nil {
		e.T.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if owner != "" {
		req.Header.Set("X-Owner-ID", owner)
	}
	return e.send(req)
}

// Get performs a GET request.
func (e *E2ETestEnv) Get(path, owner string) (*APIResponse, int) {
	req, err := http.NewRequest(http.MethodGet, e.Server.URL+path, nil)
	if err != nil {
		e.T.Fatalf("failed to create request: %v", err)
	}
	if owner != "" {
		req.Header.Set("X-Owner-ID", owner)
	}
	return e.send(req)
}

// Delete performs a DELETE request.
func (e *E2ETestEnv) Delete(path string) int {
	req, err := http.NewRequest(http.MethodDelete, e.Server.URL+path, nil)
	if err != nil {
		e.T.Fatalf("failed to create request: %v", err)
	}
	_, status := e.send(req)
	return status
}

func (e *E2ETestEnv) send(req *http.Request) (*APIResponse, int) {
	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		e.T.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		e.T.Fatalf("failed to read response body: %v", err)
	}
	if len(body) == 0 {
		return &APIResponse{}, resp.StatusCode
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		e.T.Fatalf("failed to decode response %q: %v", string(body), err)
	}
	return &apiResp, resp.StatusCode
}

// MirroredChunkCount returns the number of pgvector-mirrored chunks for a document.
func (e *E2ETestEnv) MirroredChunkCount(docID string) int {
	var n int
	err := e.Pool.QueryRow(e.Ctx,
		"SELECT COUNT(*) FROM document_chunks WHERE doc_id = $1", docID).Scan(&n)
	if err != nil {
		e.T.Fatalf("failed to count mirrored chunks: %v", err)
	}
	return n
}

// unmarshalData decodes the data envelope into out.
func unmarshalData(t *testing.T, resp *APIResponse, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Data, out); err != nil {
		t.Fatalf("failed to decode data %q: %v", string(resp.Data), err)
	}
}
