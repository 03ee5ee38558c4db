package echoapi

// pagedResponse wraps a page of items with the pagination echo of the
// request and the total matching count.
type pagedResponse struct {
	Items      interface{} `json:"items"`
	PageNumber int         `json:"pageNumber"`
	PageSize   int         `json:"pageSize"`
	TotalCount int         `json:"totalCount"`
}

type successResponse struct {
	Success string `json:"success"`
}
