package repository

// Page is a limit/offset window for listing operations. The service layer derives it
// from the page number and page size a client asks for.
type Page struct {
	Limit  int
	Offset int
}

// PageResult carries one window of items and the total count matching the query, so the
// caller can compute the page range without an extra round trip.
type PageResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}
