// internal/handlers/manage.go
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/soukcraft/soukcraft-web/internal/apiclient"
	"github.com/soukcraft/soukcraft-web/internal/manage"
	"github.com/soukcraft/soukcraft-web/internal/models"
)

// SessionCookie carries only the opaque session id. The access code itself
// stays inside the in-memory flow and must be re-entered each session.
const SessionCookie = "manage_session"

var draftFields = []string{"title", "description", "price", "category", "phone_number"}

type ManageHandler struct {
	api          *apiclient.Client
	store        *manage.Store
	maxImageSize int64
}

func NewManageHandler(api *apiclient.Client, store *manage.Store, maxImageSize int64) *ManageHandler {
	return &ManageHandler{api: api, store: store, maxImageSize: maxImageSize}
}

// GET /manage
func (h *ManageHandler) Page(c *gin.Context) {
	flow := h.flow(c, true)

	if flow.State() == manage.StateEditing {
		h.renderEdit(c, flow)
		return
	}

	c.HTML(http.StatusOK, "manage_lookup.html", gin.H{
		"AccessCode": flow.EnteredCode(),
		"Error":      flow.ErrorMessage(),
	})
}

// POST /manage/lookup
func (h *ManageHandler) Lookup(c *gin.Context) {
	flow := h.flow(c, true)

	code := c.PostForm("access_code")
	if err := flow.FetchByCode(c.Request.Context(), code); err != nil && !errors.Is(err, manage.ErrAlreadyEditing) {
		logrus.WithError(err).Warn("Ad lookup failed")
	}

	c.Redirect(http.StatusSeeOther, "/manage")
}

// POST /manage/update
func (h *ManageHandler) Update(c *gin.Context) {
	flow := h.flow(c, false)
	if flow == nil || flow.State() != manage.StateEditing {
		c.Redirect(http.StatusSeeOther, "/manage")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImageSize+1<<20)

	for _, name := range draftFields {
		if err := flow.UpdateField(name, c.PostForm(name)); err != nil {
			c.Redirect(http.StatusSeeOther, "/manage")
			return
		}
	}

	// Leaving the file input empty keeps the current image.
	if file, header, err := c.Request.FormFile("image"); err == nil && header.Size > 0 {
		data, readErr := io.ReadAll(file)
		file.Close()
		if readErr == nil {
			flow.SetPendingImage(header.Filename, data)
		}
	}

	if err := flow.SubmitUpdate(c.Request.Context()); err != nil && !errors.Is(err, manage.ErrValidation) {
		logrus.WithError(err).Warn("Ad update failed")
	}

	c.Redirect(http.StatusSeeOther, "/manage")
}

// POST /manage/delete
func (h *ManageHandler) Delete(c *gin.Context) {
	flow := h.flow(c, false)
	if flow == nil || flow.State() != manage.StateEditing {
		c.Redirect(http.StatusSeeOther, "/manage")
		return
	}

	// Deleting is irreversible; an explicit confirmation step comes first.
	if c.PostForm("confirm") != "yes" {
		c.HTML(http.StatusOK, "manage_confirm.html", gin.H{
			"Title": flow.Draft().Title,
		})
		return
	}

	if err := flow.DeleteAd(c.Request.Context()); err != nil {
		logrus.WithError(err).Warn("Ad delete failed")
		c.Redirect(http.StatusSeeOther, "/manage")
		return
	}

	if id, err := c.Cookie(SessionCookie); err == nil {
		h.store.Remove(id)
	}
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)

	// Back to the public listing; the draft is gone with the session.
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *ManageHandler) renderEdit(c *gin.Context, flow *manage.Flow) {
	draft := flow.Draft()

	c.HTML(http.StatusOK, "manage_edit.html", gin.H{
		"Draft":      draft,
		"ImageURL":   h.api.ImageURL(draft.ImagePath),
		"HasPending": draft.PendingImage != nil,
		"Errors":     flow.FieldErrors(),
		"Error":      flow.ErrorMessage(),
		"Success":    flow.SuccessMessage(),
		"Categories": models.Categories(),
	})
}

// flow resolves the session cookie to its live flow, optionally starting a
// fresh Lookup session when none exists.
func (h *ManageHandler) flow(c *gin.Context, create bool) *manage.Flow {
	if id, err := c.Cookie(SessionCookie); err == nil {
		if flow, ok := h.store.Get(id); ok {
			return flow
		}
	}

	if !create {
		return nil
	}

	id, flow := h.store.Create(h.api)
	c.SetCookie(SessionCookie, id, 0, "/", "", false, true)
	return flow
}
