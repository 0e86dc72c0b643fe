package handler

import (
	"net/http"
	"strconv"
)

// The dashboard lists every admin on one screen, so the default page is
// large enough to hold them all.
const (
	defaultPageSize = 100
	maxPageSize     = 500
)

type page struct {
	Limit  int
	Offset int
}

// parsePage reads ?limit and ?offset. Missing or out of range values fall
// back to the defaults rather than failing the request.
func parsePage(r *http.Request) page {
	q := r.URL.Query()
	p := page{Limit: defaultPageSize}

	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 && v <= maxPageSize {
		p.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		p.Offset = v
	}
	return p
}
