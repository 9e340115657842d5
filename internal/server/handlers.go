package server

import (
	"net/http"

	apperrors "quicknotes/internal/errors"
	"quicknotes/internal/logging"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type tokenRequest struct {
	APIToken string `json:"api_token"`
}

type selectPageRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type noteRequest struct {
	Text string `json:"text"`
}

// Handler adapts the Service to the gin surface.
type Handler struct {
	svc *Service
}

// NewHandler builds the HTTP handler set.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// abortWithError renders the error envelope with the taxonomy's status.
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := apperrors.HTTPStatus(err)
	logging.WithReq(c, log.Fields{
		"kind":   logging.ErrorKind(status, true),
		"status": status,
	}).Warn(apperrors.AsAppError(err).Message)
	c.AbortWithStatusJSON(status, apperrors.ToResponse(err))
}

// GetToken reports whether a credential is configured. The credential
// itself never leaves the server.
func (h *Handler) GetToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"token_set":  h.svc.TokenSet(),
		"configured": h.svc.Configured(),
	})
}

// SetToken verifies and stores a credential.
func (h *Handler) SetToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, apperrors.NewValidation("Invalid request body"))
		return
	}
	if err := h.svc.SetAPIToken(c.Request.Context(), req.APIToken); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token_set": true})
}

// ListPages returns the workspace's pages for the destination picker.
func (h *Handler) ListPages(c *gin.Context) {
	pages, err := h.svc.Pages(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pages": pages})
}

// GetPage resolves one page by id.
func (h *Handler) GetPage(c *gin.Context) {
	page, err := h.svc.PageInfo(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetSelected returns the persisted destination page, or null.
func (h *Handler) GetSelected(c *gin.Context) {
	page, ok := h.svc.Selected()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"selected": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": page})
}

// PutSelected persists the destination page.
func (h *Handler) PutSelected(c *gin.Context) {
	var req selectPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, apperrors.NewValidation("Invalid request body"))
		return
	}
	if err := h.svc.SetSelected(c.Request.Context(), req.ID, req.Title); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": gin.H{"id": req.ID}})
}

// PostNote appends a note to the selected page.
func (h *Handler) PostNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, apperrors.NewValidation("Invalid request body"))
		return
	}
	if err := h.svc.AppendNote(c.Request.Context(), req.Text); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true})
}

// GetRateLimit serves the current credential's quota snapshot.
func (h *Handler) GetRateLimit(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Status())
}
