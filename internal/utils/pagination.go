package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/stepflow-api/internal/constants"
)

// PaginationParams is a resolved page window
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse is the pagination block of list responses
type PaginationResponse struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"has_more"`
}

type pageQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// GetPaginationParams reads ?page and ?limit. Missing, malformed or out-of-range
// values fall back to the first page and the default page size. Pages past
// constants.MaxPage are clamped so the offset cannot overflow.
func GetPaginationParams(c *gin.Context) PaginationParams {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		q = pageQuery{}
	}

	if q.Page < constants.MinPageSize {
		q.Page = constants.MinPageSize
	}
	if q.Page > constants.MaxPage {
		q.Page = constants.MaxPage
	}
	if q.Limit < constants.MinPageSize || q.Limit > constants.MaxPageSize {
		q.Limit = constants.DefaultPageSize
	}

	return PaginationParams{
		Page:   q.Page,
		Limit:  q.Limit,
		Offset: (q.Page - 1) * q.Limit,
	}
}

// NewPaginationResponse describes the window params cut out of total rows
func NewPaginationResponse(params PaginationParams, total int64) PaginationResponse {
	return PaginationResponse{
		Page:    params.Page,
		Limit:   params.Limit,
		Total:   total,
		HasMore: int64(params.Offset+params.Limit) < total,
	}
}
