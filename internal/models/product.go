package models

import "time"

// Column limits of the products table. Name is varchar(100); price is
// decimal(10,2), so it must stay below 10^8.
const (
	MaxNameLength = 100
	MaxPrice      = 100000000
)

// Product represents a stock item in the inventory.
type Product struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null"`
	Price        float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	Availability bool      `json:"availability" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// ProductDraft holds the fields accepted when creating a product.
type ProductDraft struct {
	Name  string
	Price float64
}

// ProductChanges holds a full replacement of the mutable product fields.
type ProductChanges struct {
	Name         string
	Price        float64
	Availability bool
}
