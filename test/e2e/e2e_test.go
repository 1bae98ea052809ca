//go:build e2e

package e2e

import (
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOwner = "owner-e2e"

var noticeText = []byte(`PENALTY NOTICE

Penalty Notice No. 123456789
Issued under the Road Transport Act (NSW).

The vehicle was recorded exceeding the speed limit by more than 10 km/h
on the Pacific Highway. Payment is due within 28 days of the issue date.
`)

var reminderText = []byte(`REMINDER NOTICE

This is a reminder that infringement 987654321 remains unpaid.
An enforcement order will follow if the amount is not settled.
`)

type ingestResult struct {
	DocID              string `json:"doc_id"`
	NumChunks          int    `json:"num_chunks"`
	DetectedIdentifier string `json:"detected_identifier"`
	DetectedRegion     string `json:"detected_region"`
	ContentType        string `json:"content_type"`
	Empty              bool   `json:"empty"`
}

type searchOutput struct {
	Results []struct {
		Score    float32 `json:"score"`
		Content  string  `json:"content"`
		Metadata struct {
			ChunkID  string `json:"chunk_id"`
			DocID    string `json:"doc_id"`
			OwnerID  string `json:"owner_id"`
			Filename string `json:"filename"`
		} `json:"metadata"`
	} `json:"results"`
}

type statsOutput struct {
	Documents     int  `json:"documents"`
	IndexSlots    int  `json:"index_slots"`
	LiveChunks    int  `json:"live_chunks"`
	Dimension     int  `json:"dimension"`
	UnsavedChange bool `json:"unsaved_changes"`
}

type rebuildOutput struct {
	Removed   int `json:"removed"`
	Remaining int `json:"remaining"`
}

func searchFor(env *E2ETestEnv, query string) searchOutput {
	resp, status := env.Post("/search", map[string]interface{}{"query": query}, testOwner)
	require.Equal(env.T, http.StatusOK, status)
	var out searchOutput
	unmarshalData(env.T, resp, &out)
	return out
}

func TestIngestSearchDeleteFlow(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	resp, status := env.Upload(testOwner, "penalty-notice.txt", noticeText)
	require.Equal(t, http.StatusCreated, status)

	var result ingestResult
	unmarshalData(t, resp, &result)
	require.NotEmpty(t, result.DocID)
	assert.False(t, result.Empty)
	assert.Greater(t, result.NumChunks, 0)
	assert.Equal(t, "123456789", result.DetectedIdentifier)
	assert.Equal(t, "NSW", result.DetectedRegion)

	assert.Equal(t, result.NumChunks, env.MirroredChunkCount(result.DocID))

	out := searchFor(env, "vehicle exceeding the speed limit")
	require.NotEmpty(t, out.Results)
	assert.Equal(t, result.DocID, out.Results[0].Metadata.DocID)
	assert.Equal(t, testOwner, out.Results[0].Metadata.OwnerID)
	assert.Equal(t, "penalty-notice.txt", out.Results[0].Metadata.Filename)

	listResp, status := env.Get("/documents", testOwner)
	require.Equal(t, http.StatusOK, status)
	var docs []struct {
		ID         string `json:"id"`
		Identifier string `json:"identifier"`
	}
	unmarshalData(t, listResp, &docs)
	require.Len(t, docs, 1)
	assert.Equal(t, result.DocID, docs[0].ID)
	assert.Equal(t, "123456789", docs[0].Identifier)

	status = env.Delete("/documents/" + result.DocID)
	require.Equal(t, http.StatusNoContent, status)

	out = searchFor(env, "vehicle exceeding the speed limit")
	assert.Empty(t, out.Results)
	assert.Equal(t, 0, env.MirroredChunkCount(result.DocID))

	_, status = env.Get("/documents/"+result.DocID, testOwner)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRebuildReclaimsDeletedChunks(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	resp, status := env.Upload(testOwner, "notice.txt", noticeText)
	require.Equal(t, http.StatusCreated, status)
	var first ingestResult
	unmarshalData(t, resp, &first)

	resp, status = env.Upload(testOwner, "reminder.txt", reminderText)
	require.Equal(t, http.StatusCreated, status)
	var second ingestResult
	unmarshalData(t, resp, &second)

	status = env.Delete("/documents/" + first.DocID)
	require.Equal(t, http.StatusNoContent, status)

	resp, status = env.Get("/stats", testOwner)
	require.Equal(t, http.StatusOK, status)
	var stats statsOutput
	unmarshalData(t, resp, &stats)
	assert.Equal(t, first.NumChunks+second.NumChunks, stats.IndexSlots)
	assert.Equal(t, second.NumChunks, stats.LiveChunks)

	resp, status = env.Post("/index/rebuild", nil, testOwner)
	require.Equal(t, http.StatusOK, status)
	var rebuilt rebuildOutput
	unmarshalData(t, resp, &rebuilt)
	assert.Equal(t, first.NumChunks, rebuilt.Removed)
	assert.Equal(t, second.NumChunks, rebuilt.Remaining)

	resp, status = env.Get("/stats", testOwner)
	require.Equal(t, http.StatusOK, status)
	unmarshalData(t, resp, &stats)
	assert.Equal(t, second.NumChunks, stats.IndexSlots)
	assert.Equal(t, second.NumChunks, stats.LiveChunks)
	assert.False(t, stats.UnsavedChange)

	out := searchFor(env, "reminder infringement unpaid")
	require.NotEmpty(t, out.Results)
	assert.Equal(t, second.DocID, out.Results[0].Metadata.DocID)
}

func TestSnapshotSurvivesRestart(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	resp, status := env.Upload(testOwner, "penalty-notice.txt", noticeText)
	require.Equal(t, http.StatusCreated, status)
	var result ingestResult
	unmarshalData(t, resp, &result)

	env.StopServer()
	env.StartServer()

	out := searchFor(env, "vehicle exceeding the speed limit")
	require.NotEmpty(t, out.Results)
	assert.Equal(t, result.DocID, out.Results[0].Metadata.DocID)
}

func TestSnapshotRestoredFromObjectStore(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	resp, status := env.Upload(testOwner, "penalty-notice.txt", noticeText)
	require.Equal(t, http.StatusCreated, status)
	var result ingestResult
	unmarshalData(t, resp, &result)

	env.StopServer()

	// Wipe the local snapshot so the restart has to fall back to the mirror.
	entries, err := os.ReadDir(env.SnapshotDir)
	require.NoError(t, err)
	for _, entry := range entries {
		require.NoError(t, os.RemoveAll(env.SnapshotDir+"/"+entry.Name()))
	}

	env.StartServer()

	out := searchFor(env, "vehicle exceeding the speed limit")
	require.NotEmpty(t, out.Results)
	assert.Equal(t, result.DocID, out.Results[0].Metadata.DocID)
}
