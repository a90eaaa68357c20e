package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Pagination carries the page-size policy for list endpoints.
type Pagination struct {
	DefaultLimit int
	MaxLimit     int
}

// Parse reads the "page" and "limit" query parameters, clamping limit to the
// configured maximum.
func (p Pagination) Parse(c *gin.Context) (page, limit int) {
	page = 1
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	limit = p.DefaultLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > p.MaxLimit {
		limit = p.MaxLimit
	}
	return page, limit
}

// PageResponse is the paginated list envelope.
type PageResponse struct {
	Count   int64       `json:"count"`
	Results interface{} `json:"results"`
}

// viewerID returns the authenticated user's id, or nil for anonymous
// requests.
func viewerID(c *gin.Context) *uuid.UUID {
	v, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}
