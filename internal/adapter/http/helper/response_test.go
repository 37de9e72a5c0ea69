package helper

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"tasksapi/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)

	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)

	return c, rr
}

func TestSendServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"not found", fmt.Errorf("task: get: %w", domain.ErrNotFound), http.StatusNotFound, `{"detail":"Not found."}`},
		{"invalid page", domain.ErrInvalidPage, http.StatusNotFound, `{"detail":"Invalid page."}`},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusBadRequest, `{"non_field_errors":["Unable to log in with provided credentials."]}`},
		{"field errors", domain.FieldErrors{"title": {"Título es obligatorio"}}, http.StatusBadRequest, `{"title":["Título es obligatorio"]}`},
		{"invalid token", fmt.Errorf("%w: expired", domain.ErrInvalidToken), http.StatusUnauthorized, `{"detail":"Invalid token."}`},
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, `{"detail":"Authentication credentials were not provided."}`},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, `{"detail":"A server error occurred."}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rr := newContext("/tasks/")

			SendServiceError(c, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			assert.JSONEq(t, tt.body, rr.Body.String())
			assert.True(t, c.IsAborted())

			if tt.status == http.StatusUnauthorized {
				assert.Equal(t, AuthenticateHeader, rr.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestSendNoContent(t *testing.T) {
	c, rr := newContext("/tasks/1/")

	SendNoContent(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestPaginationFromQuery(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		expected domain.Pagination
	}{
		{"defaults", "/tasks/", domain.Pagination{Page: 1, PageSize: 10}},
		{"explicit", "/tasks/?page=3&page_size=5", domain.Pagination{Page: 3, PageSize: 5}},
		{"malformed", "/tasks/?page=abc&page_size=x", domain.Pagination{Page: 1, PageSize: 10}},
		{"capped", "/tasks/?page_size=500", domain.Pagination{Page: 1, PageSize: domain.MaxPageSize}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext(tt.target)

			assert.Equal(t, tt.expected, PaginationFromQuery(c, 10))
		})
	}
}

func TestSendPage(t *testing.T) {
	t.Run("should link both neighbours", func(t *testing.T) {
		c, rr := newContext("http://example.com/tasks/?search=foo&page=2&page_size=2")

		page := domain.Page[int]{
			Items:      []int{3, 4},
			Count:      5,
			Pagination: domain.Pagination{Page: 2, PageSize: 2},
		}

		SendPage(c, page, func(i int) int { return i * 10 })

		require.Equal(t, http.StatusOK, rr.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

		assert.Equal(t, float64(5), body["count"])
		assert.Equal(t, "http://example.com/tasks/?page=3&page_size=2&search=foo", body["next"])
		assert.Equal(t, "http://example.com/tasks/?page_size=2&search=foo", body["previous"])
		assert.Equal(t, []any{float64(30), float64(40)}, body["results"])
	})

	t.Run("should render an empty first page", func(t *testing.T) {
		c, rr := newContext("/users/")

		SendPage(c, domain.Page[int]{Pagination: domain.Pagination{Page: 1, PageSize: 10}}, func(i int) int { return i })

		assert.JSONEq(t, `{"count":0,"next":null,"previous":null,"results":[]}`, rr.Body.String())
	})

	t.Run("should honour forwarded https", func(t *testing.T) {
		c, rr := newContext("http://api.example.com/users/")
		c.Request.Header.Set("X-Forwarded-Proto", "https")

		page := domain.Page[int]{Items: []int{1}, Count: 2, Pagination: domain.Pagination{Page: 1, PageSize: 1}}
		SendPage(c, page, func(i int) int { return i })

		var body map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

		assert.Equal(t, "https://api.example.com/users/?page=2", body["next"])
	})
}
