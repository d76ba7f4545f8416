package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/stepflow-api/internal/constants"
)

func TestGetPaginationParams(t *testing.T) {
	cases := []struct {
		name   string
		query  string
		page   int
		limit  int
		offset int
	}{
		{"defaults", "", 1, constants.DefaultPageSize, 0},
		{"explicit", "page=3&limit=10", 3, 10, 20},
		{"page below minimum", "page=0&limit=5", 1, 5, 0},
		{"limit above maximum", "page=2&limit=1000", 2, constants.DefaultPageSize, constants.DefaultPageSize},
		{"garbage", "page=abc&limit=xyz", 1, constants.DefaultPageSize, 0},
		{"huge page is clamped", "page=9223372036854775807&limit=100", constants.MaxPage, 100, (constants.MaxPage - 1) * 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/?"+tc.query, nil)

			params := GetPaginationParams(c)

			assert.Equal(t, tc.page, params.Page)
			assert.Equal(t, tc.limit, params.Limit)
			assert.Equal(t, tc.offset, params.Offset)
		})
	}
}

func TestNewPaginationResponse(t *testing.T) {
	params := PaginationParams{Page: 2, Limit: 10, Offset: 10}

	assert.True(t, NewPaginationResponse(params, 21).HasMore)
	assert.False(t, NewPaginationResponse(params, 20).HasMore)
	assert.Equal(t, int64(20), NewPaginationResponse(params, 20).Total)
}
