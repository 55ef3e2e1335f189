package api

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/complyforge/docregistry/internal/server"
	"github.com/complyforge/docregistry/internal/services"
)

// DocumentsHandler serves the document collection: registration and listing.
func DocumentsHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "POST":
			var req services.DocumentInput
			if err := decodeRequest(r, &req); err != nil {
				srv.Logger.Error("error decoding document request", "error", err)
				http.Error(w, fmt.Sprintf("Bad request: %q", err),
					http.StatusBadRequest)
				return
			}

			doc, err := srv.Documents.Create(
				r.Context(), requestActor(r), req, requestAccessToken(r))
			if err != nil {
				writeServiceError(w, srv.Logger, r, err)
				return
			}

			respondJSON(w, srv.Logger, http.StatusCreated, doc)

		case "GET":
			q := r.URL.Query()
			docs, err := srv.Documents.List(r.Context(), services.ListFilters{
				Status:       q.Get("status"),
				DocumentType: q.Get("documentType"),
				OwnerEmail:   q.Get("ownerEmail"),
				OverdueOnly:  q.Get("overdue") == "true",
			})
			if err != nil {
				writeServiceError(w, srv.Logger, r, err)
				return
			}

			respondJSON(w, srv.Logger, http.StatusOK, docs)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// DocumentHandler serves a single document and its subcollections:
//
//	GET/PATCH/DELETE /api/v2/documents/{id}
//	DELETE           /api/v2/documents/{id}/permanent
//	GET/POST         /api/v2/documents/{id}/versions
//	GET              /api/v2/documents/{id}/versions/{version}/notes
//
// The version label "current" resolves to the document's current version.
func DocumentHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawID, rest, err := parseDocumentsURLPath(r.URL.Path)
		if err != nil {
			srv.Logger.Error("error parsing document ID from URL path",
				"error", err,
				"path", r.URL.Path,
			)
			http.Error(w, "Document not found", http.StatusNotFound)
			return
		}

		id, err := uuid.Parse(rawID)
		if err != nil {
			http.Error(w, "Bad request: invalid document ID",
				http.StatusBadRequest)
			return
		}

		switch {
		case len(rest) == 0:
			documentResourceHandler(srv, w, r, id)

		case len(rest) == 1 && rest[0] == "permanent":
			documentPermanentHandler(srv, w, r, id)

		case len(rest) == 1 && rest[0] == "versions":
			documentVersionsHandler(srv, w, r, id)

		case len(rest) == 3 && rest[0] == "versions" && rest[2] == "notes":
			documentVersionNotesHandler(srv, w, r, id, rest[1])

		default:
			http.Error(w, "Not found", http.StatusNotFound)
		}
	})
}

func documentResourceHandler(
	srv server.Server, w http.ResponseWriter, r *http.Request, id uuid.UUID,
) {
	switch r.Method {
	case "GET":
		doc, err := srv.Documents.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, srv.Logger, r, err)
			return
		}
		respondJSON(w, srv.Logger, http.StatusOK, doc)

	case "PATCH":
		var req services.DocumentPatch
		if err := decodeRequest(r, &req); err != nil {
			srv.Logger.Error("error decoding document patch", "error", err)
			http.Error(w, fmt.Sprintf("Bad request: %q", err),
				http.StatusBadRequest)
			return
		}

		doc, err := srv.Documents.Update(
			r.Context(), requestActor(r), id, req, requestAccessToken(r))
		if err != nil {
			writeServiceError(w, srv.Logger, r, err)
			return
		}
		respondJSON(w, srv.Logger, http.StatusOK, doc)

	case "DELETE":
		doc, err := srv.Documents.SoftDelete(r.Context(), id)
		if err != nil {
			writeServiceError(w, srv.Logger, r, err)
			return
		}
		respondJSON(w, srv.Logger, http.StatusOK, doc)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func documentPermanentHandler(
	srv server.Server, w http.ResponseWriter, r *http.Request, id uuid.UUID,
) {
	if r.Method != "DELETE" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	doc, err := srv.Documents.HardDelete(r.Context(), id)
	if err != nil {
		writeServiceError(w, srv.Logger, r, err)
		return
	}
	respondJSON(w, srv.Logger, http.StatusOK, doc)
}

func documentVersionsHandler(
	srv server.Server, w http.ResponseWriter, r *http.Request, id uuid.UUID,
) {
	switch r.Method {
	case "POST":
		var req services.AdvanceVersionInput
		if err := decodeRequest(r, &req); err != nil {
			srv.Logger.Error("error decoding version transition request",
				"error", err)
			http.Error(w, fmt.Sprintf("Bad request: %q", err),
				http.StatusBadRequest)
			return
		}

		doc, err := srv.Documents.AdvanceVersion(
			r.Context(), requestActor(r), id, req)
		if err != nil {
			writeServiceError(w, srv.Logger, r, err)
			return
		}
		respondJSON(w, srv.Logger, http.StatusOK, doc)

	case "GET":
		rows, err := srv.Documents.ListVersionHistory(r.Context(), id)
		if err != nil {
			writeServiceError(w, srv.Logger, r, err)
			return
		}
		respondJSON(w, srv.Logger, http.StatusOK, rows)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func documentVersionNotesHandler(
	srv server.Server,
	w http.ResponseWriter,
	r *http.Request,
	id uuid.UUID,
	version string,
) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	notes, err := srv.Documents.GetVersionNotes(r.Context(), id, version)
	if err != nil {
		writeServiceError(w, srv.Logger, r, err)
		return
	}
	respondJSON(w, srv.Logger, http.StatusOK, notes)
}
