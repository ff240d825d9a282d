package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// PageRequest carries page/page_size query parameters.
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize clamps the page window to sane defaults.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 || p.PageSize > 100 {
		p.PageSize = 20
	}
	return p
}

// Offset returns the SQL offset of the page.
func (p PageRequest) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Pagination builds response metadata for total rows.
func (p PageRequest) Pagination(total int) *Pagination {
	n := p.Normalize()
	return &Pagination{Page: n.Page, PageSize: n.PageSize, TotalCount: total}
}
