package helper

import (
	"net/http"
	"net/url"
	"strconv"

	"tasksapi/internal/core/domain"
	"tasksapi/internal/core/model/response"
	"tasksapi/internal/core/util"

	"github.com/gin-gonic/gin"
)

const (
	PageParam     = "page"
	PageSizeParam = "page_size"
)

// PaginationFromQuery reads page and page_size. Missing or malformed values
// fall back to the first page and defaultSize.
func PaginationFromQuery(c *gin.Context, defaultSize int) domain.Pagination {
	return domain.Pagination{
		Page:     util.QueryInt(c, PageParam, 1),
		PageSize: util.QueryInt(c, PageSizeParam, defaultSize),
	}.Normalize(defaultSize)
}

// SendPage writes the count/next/previous/results envelope for page, mapping
// every item with toResponse.
func SendPage[T any, R any](c *gin.Context, page domain.Page[T], toResponse func(T) R) {
	body := response.PageResponse[R]{
		Count:   page.Count,
		Results: make([]R, 0, len(page.Items)),
	}

	for _, item := range page.Items {
		body.Results = append(body.Results, toResponse(item))
	}

	if page.HasNext() {
		next := pageURL(c.Request, page.Page+1)
		body.Next = &next
	}

	if page.HasPrevious() {
		previous := pageURL(c.Request, page.Page-1)
		body.Previous = &previous
	}

	SendSuccess(c, http.StatusOK, body)
}

// pageURL rebuilds the absolute request URL pointing at page. The first page
// is linked without a page parameter.
func pageURL(r *http.Request, page int) string {
	u := url.URL{
		Scheme: "http",
		Host:   r.Host,
		Path:   r.URL.Path,
	}

	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}

	query := r.URL.Query()

	if page <= 1 {
		query.Del(PageParam)
	} else {
		query.Set(PageParam, strconv.Itoa(page))
	}

	u.RawQuery = query.Encode()

	return u.String()
}
