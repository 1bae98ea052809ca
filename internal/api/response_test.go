package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridex-labs/veridex/internal/domain"
)

func TestDomainErrorToHTTP(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", domain.NewDomainError(domain.ErrCodeValidation, "bad"), http.StatusBadRequest},
		{"not found", domain.ErrDocumentNotFound, http.StatusNotFound},
		{"unsupported format", domain.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
		{"oversize upload", domain.ErrOversizeUpload, http.StatusRequestEntityTooLarge},
		{"corrupt snapshot", domain.ErrCountDivergence, http.StatusInternalServerError},
		{"invalid operation", domain.NewDomainError(domain.ErrCodeInvalidOperation, "no"), http.StatusBadRequest},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, DomainErrorToHTTP(tc.err))
		})
	}
}

func TestHandleErrorWritesJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, domain.ErrDocumentNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "document not found")
}

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, http.StatusCreated, map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "abc", body.Data["id"])
}
