package api

import (
	"encoding/json"
	"net/http"

	"openquery-hq/vanguard/pkg/rest"
)

// indexesHandler serves the index management routes:
//
//	GET    /api/v1/indexes          list indexes
//	POST   /api/v1/indexes          create an index
//	GET    /api/v1/indexes/{index}  describe one index
//	DELETE /api/v1/indexes/{index}  delete one index
type indexesHandler struct {
	store *IndexStore
}

func (h *indexesHandler) Serve(w http.ResponseWriter, r *http.Request) *rest.Rejection {
	seg := segments(r.URL.Path)
	if len(seg) < 3 || len(seg) > 4 || seg[0] != "api" || seg[1] != "v1" || seg[2] != "indexes" {
		return rest.NotFound()
	}

	if len(seg) == 3 {
		switch r.Method {
		case http.MethodGet:
			rest.WriteJSON(w, http.StatusOK, h.store.List())
			return nil
		case http.MethodPost:
			return h.create(w, r)
		default:
			return rest.MethodNotAllowed()
		}
	}

	indexID := seg[3]
	switch r.Method {
	case http.MethodGet:
		meta, err := h.store.Get(indexID)
		if err != nil {
			rest.WriteError(w, rest.Error{StatusCode: http.StatusNotFound, Message: err.Error()})
			return nil
		}
		rest.WriteJSON(w, http.StatusOK, meta)
		return nil

	case http.MethodDelete:
		if err := h.store.Delete(indexID); err != nil {
			rest.WriteError(w, rest.Error{StatusCode: http.StatusNotFound, Message: err.Error()})
			return nil
		}
		rest.WriteJSON(w, http.StatusOK, map[string]string{"index_id": indexID})
		return nil

	default:
		return rest.MethodNotAllowed()
	}
}

func (h *indexesHandler) create(w http.ResponseWriter, r *http.Request) *rest.Rejection {
	if contentType := r.Header.Get("Content-Type"); !isJSONContentType(contentType) {
		return rest.UnsupportedMediaType(contentType)
	}

	var req CreateIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return rest.InvalidJSON(err)
	}

	meta, err := h.store.Create(req.IndexID)
	if err != nil {
		// Both an invalid ID and a duplicate index are caller mistakes.
		return rest.InvalidArgument(err.Error())
	}

	rest.WriteJSON(w, http.StatusOK, meta)
	return nil
}
