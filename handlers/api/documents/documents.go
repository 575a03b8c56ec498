package documents

import (
	"errors"
	"io"
	"net/http"
	"time"

	"document-manager/core"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type (
	// Notifier is told about every document saved through the API.
	Notifier interface {
		DocumentSaved(document *core.Document)
	}

	ErrorResponse struct {
		Error string `json:"error"`
	}
)

// Routes mounts the document API. notifier may be nil.
func Routes(documentStore core.DocumentStore, notifier Notifier) chi.Router {
	r := chi.NewRouter()
	r.Get("/", HandleList(documentStore))
	r.Post("/", HandleSave(documentStore, notifier))
	r.Post("/search", HandleSearch(documentStore))
	r.Get("/{id}", HandleGet(documentStore))
	return r
}

func respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: msg})
}

func HandleSave(documentStore core.DocumentStore, notifier Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		document := &core.Document{}
		if err := render.DecodeJSON(r.Body, document); err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid document")
			return
		}
		if document.Created.IsZero() {
			document.Created = time.Now().UTC()
		}

		saved, err := documentStore.Save(r.Context(), document)
		if err != nil {
			logrus.WithField("error", err).Error("Failed to save document")
			respondError(w, r, http.StatusInternalServerError, "failed to save")
			return
		}
		if notifier != nil {
			notifier.DocumentSaved(saved)
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, saved)
	}
}

func HandleGet(documentStore core.DocumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		document, err := documentStore.FindID(r.Context(), id)
		if err != nil {
			logrus.WithFields(logrus.Fields{"document_id": id, "error": err}).Error("Failed to retrieve document")
			respondError(w, r, http.StatusInternalServerError, "failed to retrieve")
			return
		}
		if document == nil {
			respondError(w, r, http.StatusNotFound, "not found")
			return
		}
		render.JSON(w, r, document)
	}
}

// HandleSearch reads a SearchRequest from the body. An empty body searches
// without constraints.
func HandleSearch(documentStore core.DocumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request *core.SearchRequest
		body := &core.SearchRequest{}
		switch err := render.DecodeJSON(r.Body, body); {
		case err == nil:
			request = body
		case errors.Is(err, io.EOF):
		default:
			respondError(w, r, http.StatusBadRequest, "invalid search request")
			return
		}
		search(w, r, documentStore, request)
	}
}

func HandleList(documentStore core.DocumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		search(w, r, documentStore, nil)
	}
}

func search(w http.ResponseWriter, r *http.Request, documentStore core.DocumentStore, request *core.SearchRequest) {
	documents, err := documentStore.Search(r.Context(), request)
	if err != nil {
		logrus.WithField("error", err).Error("Failed to search documents")
		respondError(w, r, http.StatusInternalServerError, "failed to search")
		return
	}
	if documents == nil {
		documents = []*core.Document{}
	}
	render.JSON(w, r, documents)
}
