package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/yoorecord/internal/services"
	"github.com/yoockh/yoorecord/internal/storage"
	"github.com/yoockh/yoorecord/internal/utils"
)

type AudioHandler struct {
	ingest   services.IngestService
	blobs    storage.BlobStore
	maxBytes int64
}

func NewAudioHandler(ingest services.IngestService, blobs storage.BlobStore, maxBytes int64) *AudioHandler {
	return &AudioHandler{ingest: ingest, blobs: blobs, maxBytes: maxBytes}
}

type UploadResponse struct {
	Status   string   `json:"status"`
	Filename string   `json:"filename"`
	JSON     string   `json:"json,omitempty"` // transcript location
	Text     *string  `json:"text,omitempty"`
	Language *string  `json:"language,omitempty"`
	Duration *float64 `json:"duration,omitempty"`
}

// Upload takes the raw request body as one recording.
func (h *AudioHandler) Upload(c *gin.Context) {
	const op = "AudioHandler.Upload"

	body := c.Request.Body
	if h.maxBytes > 0 {
		body = http.MaxBytesReader(c.Writer, body, h.maxBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, utils.E(utils.CodeInvalidArgument, op, "payload too large", err))
			return
		}
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "failed to read body", err))
		return
	}

	res, err := h.ingest.Ingest(c.Request.Context(), data)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := UploadResponse{Status: statusOK, Filename: res.Filename}
	if res.Transcribed {
		text := res.Text
		resp.JSON = res.TranscriptPath
		resp.Text = &text
		resp.Language = res.Language
		resp.Duration = res.Duration
	}
	c.JSON(http.StatusOK, resp)
}

// Serve streams one stored recording; range requests are honoured.
func (h *AudioHandler) Serve(c *gin.Context) {
	b, err := h.blobs.Open(c.Request.Context(), c.Param("filename"))
	if err != nil {
		if errors.Is(err, utils.ErrInvalidName) {
			writeError(c, utils.E(utils.CodeNotFound, "AudioHandler.Serve", "recording not found", err))
			return
		}
		writeError(c, err)
		return
	}
	defer b.Close()

	c.Header("Content-Type", storage.AudioMIMEType)
	http.ServeContent(c.Writer, c.Request, b.Name, b.ModTime, b)
}
