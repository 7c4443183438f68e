// internal/handlers/submit.go
package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/soukcraft/soukcraft-web/internal/apiclient"
	"github.com/soukcraft/soukcraft-web/internal/models"
	"github.com/soukcraft/soukcraft-web/internal/validation"
)

type SubmitHandler struct {
	api          *apiclient.Client
	maxImageSize int64
}

func NewSubmitHandler(api *apiclient.Client, maxImageSize int64) *SubmitHandler {
	return &SubmitHandler{api: api, maxImageSize: maxImageSize}
}

// GET /add
func (h *SubmitHandler) Form(c *gin.Context) {
	c.HTML(http.StatusOK, "add.html", gin.H{
		"Values":     validation.AdInput{Category: models.CategoryPotteries},
		"Errors":     map[string]string{},
		"Categories": models.Categories(),
	})
}

// POST /add
func (h *SubmitHandler) Submit(c *gin.Context) {
	// Bound the multipart body; the UI advertises images up to 10MB.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImageSize+1<<20)

	input := validation.AdInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Price:       c.PostForm("price"),
		Category:    models.Category(c.PostForm("category")),
		PhoneNumber: c.PostForm("phone_number"),
	}
	if !input.Category.Valid() {
		input.Category = models.CategoryOthers
	}

	file, header, fileErr := c.Request.FormFile("image")
	hasImage := fileErr == nil && header != nil && header.Size > 0

	errs := validation.ValidateNewAd(input, hasImage)
	if hasImage && header.Size > h.maxImageSize {
		errs["image"] = "Image must be 10MB or smaller"
	}
	if len(errs) > 0 {
		if file != nil {
			file.Close()
		}
		// Local validation failure never reaches the network.
		c.HTML(http.StatusOK, "add.html", gin.H{
			"Values":     input,
			"Errors":     errs,
			"Categories": models.Categories(),
		})
		return
	}

	data, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		c.HTML(http.StatusOK, "add.html", gin.H{
			"Values":      input,
			"Errors":      map[string]string{},
			"ServerError": "Submission failed. Please try again.",
			"Categories":  models.Categories(),
		})
		return
	}

	accessCode, err := h.api.CreateAd(c.Request.Context(), apiclient.NewAd{
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		PhoneNumber: input.PhoneNumber,
		Image:       apiclient.Upload{Filename: header.Filename, Data: data},
	})
	if err != nil {
		logrus.WithError(err).Error("Ad submission failed")
		// Failed submit just re-enables the form; no retry policy.
		c.HTML(http.StatusOK, "add.html", gin.H{
			"Values":      input,
			"Errors":      map[string]string{},
			"ServerError": "Submission failed. Please try again.",
			"Categories":  models.Categories(),
		})
		return
	}

	// The access code is shown exactly once; the user must save it.
	c.HTML(http.StatusOK, "add.html", gin.H{
		"Values":     input,
		"Errors":     map[string]string{},
		"AccessCode": accessCode,
		"Categories": models.Categories(),
	})
}
