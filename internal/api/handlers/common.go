package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/yoorecord/internal/utils"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

type APIError struct {
	Status  string     `json:"status"`
	Code    utils.Code `json:"code"`
	Stage   string     `json:"stage,omitempty"`
	Message string     `json:"message"`
}

func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)

	var ae *utils.AppError
	if errors.As(err, &ae) {
		msg := ae.Message
		// ingestion failures surface the underlying cause, ex: "save failed: <cause>"
		if ae.Stage != "" && ae.Err != nil {
			msg = msg + ": " + ae.Err.Error()
		}
		c.JSON(status, APIError{
			Status:  statusError,
			Code:    ae.Code,
			Stage:   ae.Stage,
			Message: msg,
		})
		return
	}

	c.JSON(status, APIError{
		Status:  statusError,
		Code:    utils.CodeInternal,
		Message: http.StatusText(status),
	})
}
