package types

import "time"

// ------------------------------
// Core Domain Entities
// ------------------------------

// User roles as reported by the users backend.
const (
	RoleNormal = "normal"
	RoleAdmin  = "admin"
)

// User is the sanitized profile returned by the users backend.
type User struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the user may use the catalog admin endpoints.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Product is a catalog entry. The same shape is returned by the products
// backend and by the search index (which leaves Image, OwnerID and Score
// empty).
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"descripcion"`
	Price       float64   `json:"precio"`
	Stock       int       `json:"stock"`
	Type        string    `json:"tipo"`
	Season      string    `json:"estacion"`
	Occasion    string    `json:"ocasion"`
	Notes       []string  `json:"notas"`
	Gender      string    `json:"genero"`
	Brand       string    `json:"marca"`
	Image       string    `json:"imagen,omitempty"`
	OwnerID     string    `json:"owner_id,omitempty"`
	Score       float64   `json:"score,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PurchaseItem is a snapshot of a product at checkout time.
type PurchaseItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"nombre"`
	Brand     string  `json:"marca"`
	Image     string  `json:"imagen"`
	UnitPrice float64 `json:"precio_unitario"`
	Quantity  int     `json:"cantidad"`
}

// Purchase is a completed checkout.
type Purchase struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	PurchasedAt time.Time      `json:"fecha_compra"`
	Total       float64        `json:"total"`
	Items       []PurchaseItem `json:"items"`
}
