package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/complyforge/docregistry/internal/services"
)

// decodeRequest decodes a JSON request body, rejecting unknown fields so a
// typo in a patch never silently becomes a no-op.
func decodeRequest(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// respondJSON writes v as a JSON response.
func respondJSON(w http.ResponseWriter, log hclog.Logger, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("error encoding response", "error", err)
	}
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string `json:"error"`

	// CurrentVersion accompanies version-mismatch conflicts so the
	// caller can reconcile without re-fetching.
	CurrentVersion string `json:"currentVersion,omitempty"`
}

// writeServiceError maps the services error taxonomy onto HTTP statuses:
// NotFound to 404, Conflict to 409, Timeout to 408, ValidationError to 400
// and anything else to an opaque 500.
func writeServiceError(w http.ResponseWriter, log hclog.Logger, r *http.Request, err error) {
	var (
		conflictErr   *services.ConflictError
		validationErr *services.ValidationError
	)

	switch {
	case errors.Is(err, services.ErrNotFound):
		respondJSON(w, log, http.StatusNotFound, errorResponse{
			Error: "Document not found",
		})

	case errors.As(err, &conflictErr):
		respondJSON(w, log, http.StatusConflict, errorResponse{
			Error:          conflictErr.Reason,
			CurrentVersion: conflictErr.CurrentVersion,
		})

	case errors.Is(err, services.ErrDeleteTimeout):
		respondJSON(w, log, http.StatusRequestTimeout, errorResponse{
			Error: "Delete timed out; the document may have too many " +
				"related records. Retry, or contact support if the " +
				"problem persists.",
		})

	case errors.As(err, &validationErr):
		respondJSON(w, log, http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("Bad request: %s", validationErr.Error()),
		})

	default:
		log.Error("unexpected error handling request",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
		respondJSON(w, log, http.StatusInternalServerError, errorResponse{
			Error: "Internal server error",
		})
	}
}

// parseDocumentsURLPath splits the part of the URL after
// "/api/v2/documents" into the document ID and an optional subcollection
// ("permanent", "versions", or "versions/{version}/notes").
func parseDocumentsURLPath(path string) (id string, rest []string, err error) {
	path = strings.TrimPrefix(path, "/api/v2/documents")

	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "", nil, fmt.Errorf("no document ID in URL path")
	}

	return parts[0], parts[1:], nil
}

// requestActor extracts the authenticated actor stamped on the request by
// the upstream auth layer.
func requestActor(r *http.Request) services.Actor {
	return services.Actor{
		ID:    r.Header.Get("X-Actor-Id"),
		Email: r.Header.Get("X-Actor-Email"),
	}
}

// requestAccessToken extracts the caller-supplied storage credential used
// for SharePoint URL resolution. Absence is not an error; resolution is
// simply skipped.
func requestAccessToken(r *http.Request) string {
	return r.Header.Get("Storage-Access-Token")
}
