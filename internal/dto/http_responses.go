package dto

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CacheControlHeaderValue = "public, max-age=300, s-maxage=300, state-while-revalidate=300, stale-if-error=300"

	NotFound           = "Not Found"
	CreateURLMalformed = "url malformed"
	UpdateURLMalformed = "Url malformed"
	InvalidRequestBody = "invalid request body"
	HealthOK           = "ok"
)

// LinkTargetRequest is the body of create and update calls.
type LinkTargetRequest struct {
	TargetURL *string `json:"targetUrl" validate:"required"`
}

func TemporaryRedirect(c *gin.Context, location string) {
	c.Header("Location", location)
	c.Header("Cache-Control", CacheControlHeaderValue)
	c.Status(http.StatusTemporaryRedirect)
}

func NotFoundError(c *gin.Context) {
	c.String(http.StatusNotFound, NotFound)
}

func ConflictError(c *gin.Context, msg string) {
	c.String(http.StatusConflict, msg)
}

func BadRequestError(c *gin.Context, err error) {
	c.String(http.StatusBadRequest, InvalidRequestBody+": "+err.Error())
}

func UnprocessableEntityError(c *gin.Context, err error) {
	c.String(http.StatusUnprocessableEntity, err.Error())
}

// InternalServerError exposes the raw error text to the caller.
func InternalServerError(c *gin.Context, err error) {
	c.String(http.StatusInternalServerError, err.Error())
}

func ServiceUnavailableError(c *gin.Context, err error) {
	c.String(http.StatusServiceUnavailable, err.Error())
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}
