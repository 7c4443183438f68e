// internal/handlers/listing.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/soukcraft/soukcraft-web/internal/apiclient"
	"github.com/soukcraft/soukcraft-web/internal/browse"
	"github.com/soukcraft/soukcraft-web/internal/models"
)

type ListingHandler struct {
	api *apiclient.Client
}

func NewListingHandler(api *apiclient.Client) *ListingHandler {
	return &ListingHandler{api: api}
}

// ListingCard is one ad prepared for rendering.
type ListingCard struct {
	Title         string
	Description   string
	PriceLabel    string
	CategoryLabel string
	PhoneNumber   string
	ImageURL      string
}

// GET /
func (h *ListingHandler) Home(c *gin.Context) {
	query := c.Query("q")
	category := models.Category(c.Query("category"))
	if !category.Valid() {
		category = ""
	}

	ads, err := h.api.Ads(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("Failed to load public feed")
		c.HTML(http.StatusOK, "home.html", gin.H{
			"Error":      "Failed to load ads. Please try again later.",
			"Query":      query,
			"Category":   string(category),
			"Categories": models.Categories(),
		})
		return
	}

	filtered := browse.Filter(ads, query, category)

	cards := make([]ListingCard, 0, len(filtered))
	for _, ad := range filtered {
		cards = append(cards, ListingCard{
			Title:         ad.Title,
			Description:   ad.Description,
			PriceLabel:    fmt.Sprintf("%.2f MAD", ad.Price),
			CategoryLabel: ad.Category.Label(),
			PhoneNumber:   ad.PhoneNumber,
			ImageURL:      h.api.ImageURL(ad.ImagePath),
		})
	}

	c.HTML(http.StatusOK, "home.html", gin.H{
		"Ads":        cards,
		"Query":      query,
		"Category":   string(category),
		"Categories": models.Categories(),
	})
}
