package handler

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/blood-donation-api/pkg/errors"
	"github.com/noah-isme/blood-donation-api/pkg/response"
)

type documentOpener interface {
	Open(token string) (*os.File, string, error)
}

// DocumentHandler streams evaluation result documents held in local storage.
type DocumentHandler struct {
	store documentOpener
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(store documentOpener) *DocumentHandler {
	return &DocumentHandler{store: store}
}

// Download godoc
// @Summary Download an evaluation result document
// @Tags Sessions
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /documents/{token} [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	file, key, err := h.store.Open(c.Param("token"))
	if err != nil {
		if os.IsNotExist(err) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "document not found"))
			return
		}
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token"))
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read document"))
		return
	}
	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filepath.Base(key)))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, nil)
}
