package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"openquery-hq/vanguard/pkg/rest"
)

// searchHandler serves GET/POST /api/v1/{index}/search.
type searchHandler struct {
	store *IndexStore
}

func (h *searchHandler) Serve(w http.ResponseWriter, r *http.Request) *rest.Rejection {
	seg := segments(r.URL.Path)
	if len(seg) != 4 || seg[0] != "api" || seg[1] != "v1" || seg[3] != "search" {
		return rest.NotFound()
	}
	indexID := seg[2]

	var req SearchRequest
	switch r.Method {
	case http.MethodGet:
		parsed, rej := parseSearchParams(r)
		if rej != nil {
			return rej
		}
		req = parsed

	case http.MethodPost:
		if contentType := r.Header.Get("Content-Type"); !isJSONContentType(contentType) {
			return rest.UnsupportedMediaType(contentType)
		}
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			return rest.InvalidJSON(err)
		}

	default:
		return rest.MethodNotAllowed()
	}

	if req.MaxHits < 0 {
		return rest.InvalidArgument("max_hits must not be negative")
	}
	if req.StartOffset < 0 {
		return rest.InvalidArgument("start_offset must not be negative")
	}

	resp, err := h.store.Search(indexID, req)
	if err != nil {
		var notFound ErrIndexNotFound
		if errors.As(err, &notFound) {
			rest.WriteError(w, rest.Error{StatusCode: http.StatusNotFound, Message: err.Error()})
			return nil
		}
		return rest.Internal(err)
	}

	rest.WriteJSON(w, http.StatusOK, resp)
	return nil
}

// parseSearchParams reads search parameters from the query string.
func parseSearchParams(r *http.Request) (SearchRequest, *rest.Rejection) {
	values, err := url.ParseQuery(r.URL.RawQuery)
	if err != nil {
		return SearchRequest{}, rest.MalformedQueryString(err)
	}

	for name := range values {
		switch name {
		case "query", "max_hits", "start_offset":
		default:
			return SearchRequest{}, rest.InvalidQueryParameter(name, fmt.Errorf("unknown parameter"))
		}
	}

	req := SearchRequest{Query: values.Get("query")}

	if raw := values.Get("max_hits"); raw != "" {
		req.MaxHits, err = strconv.Atoi(raw)
		if err != nil {
			return SearchRequest{}, rest.InvalidQueryParameter("max_hits", err)
		}
	}
	if raw := values.Get("start_offset"); raw != "" {
		req.StartOffset, err = strconv.Atoi(raw)
		if err != nil {
			return SearchRequest{}, rest.InvalidQueryParameter("start_offset", err)
		}
	}

	return req, nil
}
