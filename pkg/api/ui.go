package api

import (
	"embed"
	"net/http"
	"strconv"
	"strings"

	"openquery-hq/vanguard/pkg/rest"
)

//go:embed ui
var uiAssets embed.FS

// rootRedirectHandler sends / to the search UI.
type rootRedirectHandler struct{}

func (rootRedirectHandler) Serve(w http.ResponseWriter, r *http.Request) *rest.Rejection {
	if r.URL.Path != "/" {
		return rest.NotFound()
	}
	http.Redirect(w, r, "/ui/search", http.StatusMovedPermanently)
	return nil
}

// uiHandler serves the embedded UI assets under /ui/.
type uiHandler struct{}

func (uiHandler) Serve(w http.ResponseWriter, r *http.Request) *rest.Rejection {
	seg := segments(r.URL.Path)
	if len(seg) == 0 || seg[0] != "ui" {
		return rest.NotFound()
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return rest.MethodNotAllowed()
	}

	name := strings.Join(seg[1:], "/")
	if name == "" || name == "search" {
		name = "search.html"
	}

	body, err := uiAssets.ReadFile("ui/" + name)
	if err != nil {
		return rest.NotFound()
	}

	contentType := "application/octet-stream"
	switch {
	case strings.HasSuffix(name, ".html"):
		contentType = "text/html; charset=utf-8"
	case strings.HasSuffix(name, ".css"):
		contentType = "text/css; charset=utf-8"
	case strings.HasSuffix(name, ".js"):
		contentType = "application/javascript"
	case strings.HasSuffix(name, ".png"):
		contentType = "image/png"
	case strings.HasSuffix(name, ".svg"):
		contentType = "image/svg+xml"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(body)
	}
	return nil
}
