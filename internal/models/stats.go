// internal/models/stats.go
package models

import "time"

// AdminStats is the precomputed aggregate payload from GET /api/admin/stats.
type AdminStats struct {
	Total           int             `json:"total"`
	ByCategory      []CategoryCount `json:"byCategory"`
	TopContributors []Contributor   `json:"topContributors"`
	Latest          []LatestAd      `json:"latest"`
}

type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

type Contributor struct {
	PhoneNumber string `json:"phone_number"`
	AdCount     int    `json:"ad_count"`
}

type LatestAd struct {
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
