package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/yoorecord/internal/models"
	"github.com/yoockh/yoorecord/internal/services"
	"github.com/yoockh/yoorecord/internal/utils"
)

const indexTemplate = "index.html"

type SearchHandler struct {
	svc services.RecordService
	now func() time.Time
}

func NewSearchHandler(svc services.RecordService, now func() time.Time) *SearchHandler {
	if now == nil {
		now = time.Now
	}
	return &SearchHandler{svc: svc, now: now}
}

type SearchForm struct {
	StartDate string `form:"start_date" json:"start_date"`
	StartTime string `form:"start_time" json:"start_time"`
	EndDate   string `form:"end_date" json:"end_date"`
	EndTime   string `form:"end_time" json:"end_time"`
}

type SearchPage struct {
	SearchForm
	Items []models.ViewRecord `json:"items"`
}

// withDefaults fills blank fields: today for both dates, the whole day for times.
func (f SearchForm) withDefaults(now time.Time) SearchForm {
	today := now.Format(services.DateLayout)
	if f.StartDate == "" {
		f.StartDate = today
	}
	if f.EndDate == "" {
		f.EndDate = today
	}
	if f.StartTime == "" {
		f.StartTime = services.DefaultStartTime
	}
	if f.EndTime == "" {
		f.EndTime = services.DefaultEndTime
	}
	return f
}

// Index serves the search page for GET (query string) and POST (form).
func (h *SearchHandler) Index(c *gin.Context) {
	var form SearchForm
	if err := c.ShouldBind(&form); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SearchHandler.Index", "invalid search form", err))
		return
	}
	form = form.withDefaults(h.now())

	start := services.ParseBound(form.StartDate, form.StartTime, false)
	end := services.ParseBound(form.EndDate, form.EndTime, true)

	items, err := h.svc.Search(c.Request.Context(), start, end)
	if err != nil {
		writeError(c, err)
		return
	}

	page := SearchPage{SearchForm: form, Items: items}
	switch c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) {
	case gin.MIMEJSON:
		c.JSON(http.StatusOK, page)
	default:
		c.HTML(http.StatusOK, indexTemplate, page)
	}
}
