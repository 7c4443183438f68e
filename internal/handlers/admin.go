// internal/handlers/admin.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/soukcraft/soukcraft-web/internal/apiclient"
)

type AdminHandler struct {
	api *apiclient.Client
}

func NewAdminHandler(api *apiclient.Client) *AdminHandler {
	return &AdminHandler{api: api}
}

type categoryRow struct {
	Label   string
	Count   int
	Percent int
}

type latestRow struct {
	Title string
	Date  string
}

// GET /admin
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.api.AdminStats(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("Failed to load admin statistics")
		c.HTML(http.StatusOK, "admin.html", gin.H{
			"Error": "Failed to load statistics",
		})
		return
	}

	categories := make([]categoryRow, 0, len(stats.ByCategory))
	for _, cc := range stats.ByCategory {
		row := categoryRow{Label: cc.Category.Label(), Count: cc.Count}
		if stats.Total > 0 {
			row.Percent = cc.Count * 100 / stats.Total
		}
		categories = append(categories, row)
	}

	latest := make([]latestRow, 0, len(stats.Latest))
	for _, ad := range stats.Latest {
		latest = append(latest, latestRow{
			Title: ad.Title,
			Date:  ad.CreatedAt.Format("02/01/2006"),
		})
	}

	c.HTML(http.StatusOK, "admin.html", gin.H{
		"Total":           stats.Total,
		"ByCategory":      categories,
		"TopContributors": stats.TopContributors,
		"Latest":          latest,
	})
}
