package models

import "time"

// Vendor is a dimension entity keyed by its natural vendor_id.
// Immutable once created; first-write wins.
type Vendor struct {
	VendorID   string    `json:"vendor_id"`
	VendorName string    `json:"vendor_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Product is a dimension entity keyed by its natural product_id.
// Immutable once created; first-write wins.
type Product struct {
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Category is a dimension entity keyed by its natural category_id.
// Linked to campaigns only when the source row's asset type is LISTING.
type Category struct {
	CategoryID   string    `json:"category_id"`
	CategoryName string    `json:"category_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Keyword is a dimension entity deduplicated by exact keyword text.
// KeywordID is a surrogate id assigned on first creation and is needed
// synchronously during ingestion for fact and link rows.
type Keyword struct {
	KeywordID int64     `json:"keyword_id"`
	Keyword   string    `json:"keyword"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
