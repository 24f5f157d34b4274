package utils

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Pagination struct {
	Page     int
	PageSize int
}

type PageData struct {
	Total           int64 `json:"total"`
	Page            int   `json:"page"`
	PageSize        int   `json:"page_size"`
	TotalPages      int   `json:"total_pages"`
	HasPreviousPage bool  `json:"has_previous_page"`
	HasNextPage     bool  `json:"has_next_page"`
}

type PaginatedResult struct {
	Data     interface{} `json:"data"`
	PageData PageData    `json:"page_data"`
}

// ParsePagination -> baca ?page=&page_size= dengan default 1/20
func ParsePagination(c *gin.Context) Pagination {
	p := Pagination{Page: DefaultPage, PageSize: DefaultPageSize}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(c.Query("page_size")); err == nil && v > 0 {
		p.PageSize = v
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Scope dipakai sebagai db.Scopes(p.Scope)
func (p Pagination) Scope(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset()).Limit(p.PageSize)
}

func (p Pagination) Result(data interface{}, total int64) PaginatedResult {
	totalPages := int(math.Ceil(float64(total) / float64(p.PageSize)))
	return PaginatedResult{
		Data: data,
		PageData: PageData{
			Total:           total,
			Page:            p.Page,
			PageSize:        p.PageSize,
			TotalPages:      totalPages,
			HasPreviousPage: p.Page > 1,
			HasNextPage:     p.Page < totalPages,
		},
	}
}
