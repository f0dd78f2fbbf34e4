package handler

import (
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
	"github.com/ecolearn/ecolearn-api/pkg/response"
)

type fileOpener interface {
	Open(token string) (*os.File, string, error)
}

// FileHandler streams stored files referenced by signed download tokens.
// The route is public; the token itself carries the authorization.
type FileHandler struct {
	files  fileOpener
	logger *zap.Logger
}

// NewFileHandler builds a new handler.
func NewFileHandler(files fileOpener, logger *zap.Logger) *FileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileHandler{files: files, logger: logger}
}

// Download godoc
// @Summary Download a file via its signed token
// @Tags Files
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Router /files/{token} [get]
func (h *FileHandler) Download(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "download token is required"))
		return
	}
	file, fileID, err := h.files.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		h.logger.Warn("file stream interrupted", zap.String("file_id", fileID), zap.Error(err))
	}
}
