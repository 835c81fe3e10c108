package handlers

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/yoorecord/internal/services"
)

type ExportHandler struct {
	svc services.ExportService
}

func NewExportHandler(svc services.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// DownloadSelected zips the recordings named by the repeated "files" field.
func (h *ExportHandler) DownloadSelected(c *gin.Context) {
	files := c.PostFormArray("files")

	arc, err := h.svc.BuildArchive(c.Request.Context(), files)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": arc.Name}))
	c.Data(http.StatusOK, "application/zip", arc.Data)
}
