package rest

import (
	"log/slog"
	"net/http"
)

// Filter is a unit that matches some class of requests and either produces a
// reply or a rejection. Serve returns nil once a reply has been written.
//
// Returning a non-terminal rejection (NotFound, MethodNotAllowed) means the
// filter did not structurally match and composition should try the next
// filter. Returning a terminal rejection means the filter matched but the
// request failed validation; no other filter gets a chance at it.
type Filter interface {
	Serve(w http.ResponseWriter, r *http.Request) *Rejection
}

// FilterFunc adapts a function to the Filter interface.
type FilterFunc func(w http.ResponseWriter, r *http.Request) *Rejection

// Serve implements the Filter interface.
func (f FilterFunc) Serve(w http.ResponseWriter, r *http.Request) *Rejection {
	return f(w, r)
}

// Registry composes independently authored route filters into one dispatch
// surface using ordered alternative-try semantics. Filter order mirrors
// subsystem priority; it decides only which subsystem's rejection surfaces
// first on a genuinely ambiguous request, not correctness.
type Registry struct {
	filters []Filter
	log     *slog.Logger
}

// NewRegistry creates a Registry dispatching to the given filters in order.
func NewRegistry(log *slog.Logger, filters ...Filter) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		filters: filters,
		log:     log,
	}
}

// ServeHTTP implements the http.Handler interface. It tries each filter in
// order, threading every non-terminal rejection through an explicit list.
// Exactly one reply or one terminal error is produced per request.
func (reg *Registry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var rejections []*Rejection

	for _, f := range reg.filters {
		rej := f.Serve(w, r)
		if rej == nil {
			return
		}
		if rej.Terminal() {
			WriteError(w, ClassifyFinal([]*Rejection{rej}, reg.log))
			return
		}
		rejections = append(rejections, rej)
	}

	WriteError(w, ClassifyFinal(rejections, reg.log))
}
