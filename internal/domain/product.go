package domain

import (
	"fmt"
	"strings"
	"time"
)

// Product is a catalogue item imported from a product search.
type Product struct {
	ID        int64
	Name      string
	Price     float64
	ImageURL  string
	CreatedAt time.Time
}

// Offer is a store listing for a product.
type Offer struct {
	ID        int64
	ProductID int64
	StoreName string
	Price     float64
	Link      string
}

// Review is a user opinion collected for a product.
type Review struct {
	ID        int64
	ProductID int64
	Content   string
	Rating    float64
	Source    string
}

// NewProduct creates a new Product instance
func NewProduct(name string, price float64, imageURL string, createdAt time.Time) *Product {
	return &Product{
		Name:      strings.TrimSpace(name),
		Price:     price,
		ImageURL:  imageURL,
		CreatedAt: createdAt,
	}
}

// ValidateProduct validates a Product instance
func ValidateProduct(p *Product) error {
	if p == nil {
		return fmt.Errorf("product cannot be nil")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product Name is required")
	}
	if p.Price < 0 {
		return fmt.Errorf("product Price cannot be negative")
	}
	return nil
}

// ValidateReview validates a Review instance
func ValidateReview(r *Review) error {
	if r == nil {
		return fmt.Errorf("review cannot be nil")
	}
	if strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("review Content is required")
	}
	if r.Rating < 0 || r.Rating > 5 {
		return fmt.Errorf("review Rating must be between 0 and 5")
	}
	return nil
}

// CleanLink removes line breaks and surrounding whitespace that some stores
// embed in tracking links.
func CleanLink(link string) string {
	link = strings.TrimSpace(link)
	link = strings.ReplaceAll(link, "\r", "")
	return strings.ReplaceAll(link, "\n", "")
}
