package models

// Page is the standard paginated list envelope.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Size  int `json:"size"`
}

// NewPage builds a Page, computing the page count from total and size.
func NewPage[T any](items []T, total, page, size int) Page[T] {
	pages := 1
	if total > 0 && size > 0 {
		pages = (total + size - 1) / size
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Page: page, Pages: pages, Size: size}
}
