package models

// MenuItem is immutable once fetched and shared read-only.
type MenuItem struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Image       string `json:"image"`
	Price       Price  `json:"price"`
	Description string `json:"description"`
}
