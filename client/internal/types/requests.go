package types

import "strings"

// ------------------------------
// Request Types
// ------------------------------

// RegisterRequest holds parameters for a new account.
type RegisterRequest struct {
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
	Password string `json:"password" yaml:"password"`
}

// LoginRequest holds credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProductInput is the body of product create and update calls. OwnerID is
// only honored for admins; others always own what they create.
type ProductInput struct {
	OwnerID     *uint    `json:"owner_id,omitempty" yaml:"owner_id,omitempty"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"descripcion" yaml:"descripcion"`
	Price       float64  `json:"precio" yaml:"precio"`
	Stock       int      `json:"stock" yaml:"stock"`
	Type        string   `json:"tipo" yaml:"tipo"`
	Season      string   `json:"estacion" yaml:"estacion"`
	Occasion    string   `json:"ocasion" yaml:"ocasion"`
	Notes       []string `json:"notas" yaml:"notas"`
	Gender      string   `json:"genero" yaml:"genero"`
	Brand       string   `json:"marca" yaml:"marca"`
	Image       string   `json:"imagen" yaml:"imagen"`
}

// CheckoutItem is one line of a purchase request.
type CheckoutItem struct {
	ProductID string `json:"producto_id"`
	Quantity  int    `json:"cantidad"`
}

// CreatePurchaseRequest is the checkout body.
type CreatePurchaseRequest struct {
	Items []CheckoutItem `json:"items"`
}

// ProductFilter holds the catalog filters shared by listing and search.
// Zero values are left out of the query string.
type ProductFilter struct {
	Text     string // free-text query, sent as "q"
	Type     string
	Season   string
	Occasion string
	Gender   string
	Brand    string
	Page     int
	Size     int
}

// Query returns the filter as query parameters.
func (f ProductFilter) Query() map[string]any {
	q := map[string]any{
		"q":        f.Text,
		"tipo":     f.Type,
		"estacion": f.Season,
		"ocasion":  f.Occasion,
		"genero":   f.Gender,
		"marca":    f.Brand,
	}
	if f.Page > 0 {
		q["page"] = f.Page
	}
	if f.Size > 0 {
		q["size"] = f.Size
	}
	return q
}

// SortField orders search results by Field, "asc" or "desc".
type SortField struct {
	Field string
	Order string
}

// SearchRequest adds ordering to ProductFilter.
type SearchRequest struct {
	ProductFilter
	Sort []SortField
}

// Query returns the search parameters. Sort fields are sent as a single
// comma-separated "field:order" list, which is what the search backend
// parses.
func (r SearchRequest) Query() map[string]any {
	q := r.ProductFilter.Query()
	parts := make([]string, 0, len(r.Sort))
	for _, s := range r.Sort {
		field := strings.TrimSpace(s.Field)
		if field == "" {
			continue
		}
		order := strings.ToLower(strings.TrimSpace(s.Order))
		if order != "desc" {
			order = "asc"
		}
		parts = append(parts, field+":"+order)
	}
	if len(parts) > 0 {
		q["sort"] = strings.Join(parts, ",")
	}
	return q
}

// ParseSort parses "precio:desc,name" into sort fields.
func ParseSort(raw string) []SortField {
	var out []SortField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		field, order, _ := strings.Cut(part, ":")
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		out = append(out, SortField{Field: field, Order: strings.TrimSpace(order)})
	}
	return out
}
