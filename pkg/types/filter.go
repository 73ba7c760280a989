package types

// Filter represents query parameters for filtering and pagination.
type Filter struct {
	Filter         map[string]interface{} `json:"filter,omitempty"`
	Sort           map[string]string      `json:"sort,omitempty"`
	Limit          int                    `json:"limit"`
	Offset         int                    `json:"offset"`
	Page           int                    `json:"page"`
	WithPagination bool                   `json:"withPagination"`
}

// Pagination represents pagination metadata.
type Pagination struct {
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	Total      uint64 `json:"total"`
	TotalPages int    `json:"totalPages"`
}

func NewPagination(page, limit int, total uint64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + uint64(limit) - 1) / uint64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}
