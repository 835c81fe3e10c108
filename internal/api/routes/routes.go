package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yoockh/yoorecord/internal/api/handlers"
)

type Deps struct {
	Audio      *handlers.AudioHandler
	Export     *handlers.ExportHandler
	Search     *handlers.SearchHandler
	Transcript *handlers.TranscriptHandler // nil when no transcript store is configured
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.POST("/upload_audio", d.Audio.Upload)
	r.GET("/audio/:filename", d.Audio.Serve)
	r.POST("/download_selected", d.Export.DownloadSelected)

	r.GET("/", d.Search.Index)
	r.POST("/", d.Search.Index)

	if d.Transcript != nil {
		r.GET("/transcript/:filename/:format", d.Transcript.Download)
	}
}
