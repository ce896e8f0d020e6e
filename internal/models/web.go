package models

// Paging describes the window returned by a search.
type Paging struct {
	CurrentPage int `json:"current_page"`
	Size        int `json:"size"`
	TotalPage   int `json:"total_page"`
}

// WebResponse is the envelope around every successful API response.
type WebResponse[T any] struct {
	Data   T       `json:"data"`
	Paging *Paging `json:"paging,omitempty"`
}

// ErrorResponse is returned for every failed request. Errors is either a
// message or a field -> message map for validation failures.
type ErrorResponse struct {
	Errors any `json:"errors"`
}
