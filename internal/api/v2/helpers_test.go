package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyforge/docregistry/internal/services"
)

func TestParseDocumentsURLPath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantID   string
		wantRest []string
		wantErr  bool
	}{
		{
			name:   "bare document",
			path:   "/api/v2/documents/abc-123",
			wantID: "abc-123",
		},
		{
			name:     "permanent subresource",
			path:     "/api/v2/documents/abc-123/permanent",
			wantID:   "abc-123",
			wantRest: []string{"permanent"},
		},
		{
			name:     "version notes",
			path:     "/api/v2/documents/abc-123/versions/2.0/notes",
			wantID:   "abc-123",
			wantRest: []string{"versions", "2.0", "notes"},
		},
		{
			name:    "collection path has no ID",
			path:    "/api/v2/documents/",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, rest, err := parseDocumentsURLPath(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}

func TestWriteServiceError(t *testing.T) {
	log := hclog.NewNullLogger()
	req := httptest.NewRequest("GET", "/api/v2/documents/x", nil)

	statusOf := func(err error) (int, errorResponse) {
		w := httptest.NewRecorder()
		writeServiceError(w, log, req, err)
		var body errorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		return w.Code, body
	}

	t.Run("not found", func(t *testing.T) {
		code, _ := statusOf(services.ErrNotFound)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("conflict carries the current version", func(t *testing.T) {
		code, body := statusOf(&services.ConflictError{
			Reason:         services.ConflictVersionMismatch,
			CurrentVersion: "3.1",
		})
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, services.ConflictVersionMismatch, body.Error)
		assert.Equal(t, "3.1", body.CurrentVersion)
	})

	t.Run("delete timeout", func(t *testing.T) {
		code, body := statusOf(services.ErrDeleteTimeout)
		assert.Equal(t, http.StatusRequestTimeout, code)
		assert.Contains(t, body.Error, "too many related records")
	})

	t.Run("validation", func(t *testing.T) {
		code, _ := statusOf(&services.ValidationError{
			Err: errors.New("title: cannot be blank"),
		})
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("everything else is an opaque 500", func(t *testing.T) {
		code, body := statusOf(errors.New("pq: connection reset"))
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "Internal server error", body.Error)
	})
}
