// internal/models/ad.go
package models

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryPotteries Category = "potteries"
	CategoryJewelries Category = "jewelries"
	CategoryCarpets   Category = "carpets"
	CategoryZelliges  Category = "zelliges"
	CategoryOthers    Category = "others"
)

// Categories lists every selectable category in display order.
func Categories() []Category {
	return []Category{
		CategoryPotteries,
		CategoryJewelries,
		CategoryCarpets,
		CategoryZelliges,
		CategoryOthers,
	}
}

// Label is the capitalized form shown in selectors and charts.
func (c Category) Label() string {
	s := string(c)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (c Category) Valid() bool {
	switch c {
	case CategoryPotteries, CategoryJewelries, CategoryCarpets, CategoryZelliges, CategoryOthers:
		return true
	}
	return false
}

// Ad is a single handicraft listing as served by the upstream API. The
// server owns every field; the frontend holds transient copies only.
type Ad struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    Category  `json:"category"`
	PhoneNumber string    `json:"phone_number"`
	ImagePath   string    `json:"image_path"`
	CreatedAt   time.Time `json:"created_at"`
}
