package httpx

import (
	"math"
	"net/http"
	"strconv"
)

const (
	maxPageSize = 100
	// maxPage keeps (page-1)*page_size within int range.
	maxPage = math.MaxInt / maxPageSize
)

// Page is an offset page request.
type Page struct {
	Number int
	Size   int
}

// ParsePage reads page and page_size from the query string. Missing or
// invalid values fall back to page 1 and defaultSize; page is capped
// so the offset cannot overflow.
func ParsePage(r *http.Request, defaultSize int) Page {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	size, _ := strconv.Atoi(query.Get("page_size"))
	if size <= 0 || size > maxPageSize {
		size = defaultSize
	}
	return Page{Number: page, Size: size}
}

func (p Page) Limit() int  { return p.Size }
func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// TotalPages is the number of pages needed for total items.
func TotalPages(total, size int) int {
	if size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Meta is the pagination block of a list response.
func (p Page) Meta(total int) map[string]any {
	return map[string]any{
		"page":        p.Number,
		"page_size":   p.Size,
		"total":       total,
		"total_pages": TotalPages(total, p.Size),
	}
}
