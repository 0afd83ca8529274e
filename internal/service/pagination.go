package service

import "github.com/noah-isme/hostel-api/internal/models"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// newPagination mirrors the clamping the repositories apply to page and size.
func newPagination(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > maxPageSize {
		size = defaultPageSize
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
