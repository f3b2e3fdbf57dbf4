package handlers

import (
	"net/http"
	"strconv"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// pageParams parses ?page and ?size with the shared defaults and caps.
func pageParams(r *http.Request) (page, size int) {
	page, size = 1, defaultPageSize
	if p := r.URL.Query().Get("page"); p != "" {
		if val, err := strconv.Atoi(p); err == nil && val > 0 {
			page = val
		}
	}
	if s := r.URL.Query().Get("size"); s != "" {
		if val, err := strconv.Atoi(s); err == nil && val > 0 && val <= maxPageSize {
			size = val
		}
	}
	return page, size
}
