package types

// ------------------------------
// Response Types
// ------------------------------

// LoginResponse carries the bearer token issued by the users backend.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ProductPage is a paginated product listing, used by both the catalog and
// the search backend.
type ProductPage struct {
	Items []Product `json:"items"`
	Page  int       `json:"page"`
	Size  int       `json:"size"`
	Total int64     `json:"total"`
}

// FlushResponse acknowledges a search cache flush.
type FlushResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}
