package handlers

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/yoorecord/internal/services"
)

type TranscriptHandler struct {
	svc services.TranscriptService
}

func NewTranscriptHandler(svc services.TranscriptService) *TranscriptHandler {
	return &TranscriptHandler{svc: svc}
}

// Download renders a stored transcript as srt, vtt, ttml or json.
func (h *TranscriptHandler) Download(c *gin.Context) {
	out, err := h.svc.Export(c.Request.Context(), c.Param("filename"), c.Param("format"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.Name}))
	c.Data(http.StatusOK, out.ContentType, out.Data)
}
