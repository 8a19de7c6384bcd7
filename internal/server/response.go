package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KaramelBytes/socialpulse-cli/internal/charts"
	"github.com/KaramelBytes/socialpulse-cli/internal/pipeline"
	"github.com/KaramelBytes/socialpulse-cli/internal/views"
)

// Response is the envelope for every JSON reply.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{Code: status, Message: message})
}

// writeError maps domain errors onto HTTP statuses. Anything unrecognised is
// an internal error and gets logged by the request logger.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	var (
		ufe *pipeline.UnknownFieldError
		ire *pipeline.InvalidRangeError
		bad *badRequestError
	)
	switch {
	case errors.As(err, &ufe), errors.As(err, &ire), errors.As(err, &bad):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, views.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, charts.ErrNoData):
		fail(c, http.StatusUnprocessableEntity, err.Error())
	default:
		fail(c, http.StatusInternalServerError, "internal error")
	}
}

// badRequestError marks malformed query input that is not a field or range
// problem, such as a non-numeric age.
type badRequestError struct{ err error }

func (e *badRequestError) Error() string { return "bad request: " + e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }
