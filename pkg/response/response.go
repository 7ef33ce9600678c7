package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tripora-travel/service-booking/pkg/domain"
)

// ErrorBody is the error envelope returned for every failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta carries pagination metadata alongside list responses.
type Meta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Success writes a 200 response with the payload under "data".
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Created writes a 201 response with the payload under "data".
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// Paginated writes a 200 list response with pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"meta": Meta{Total: total, Page: page, Limit: limit},
	})
}

// BadRequest writes a 400 validation error.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": ErrorBody{Code: string(domain.CodeValidation), Message: message},
	})
}

// Unauthorized writes a 401 error.
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error": ErrorBody{Code: string(domain.CodeUnauthorized), Message: message},
	})
}

// Error writes an error response with the HTTP status derived from the domain
// error code. Non-domain errors are reported as a generic 500 without leaking
// the underlying message.
func Error(c *gin.Context, err error) {
	code := domain.CodeOf(err)
	message := err.Error()

	var status int
	switch code {
	case domain.CodeValidation, domain.CodeInvalidTransition, domain.CodeInvalidState:
		status = http.StatusBadRequest
	case domain.CodeUnauthorized:
		status = http.StatusUnauthorized
	case domain.CodeForbidden:
		status = http.StatusForbidden
	case domain.CodeNotFound:
		status = http.StatusNotFound
	case domain.CodeAlreadyProcessed, domain.CodeConflict:
		status = http.StatusConflict
	case domain.CodeGatewayFailure:
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
		message = "internal server error"
	}

	c.JSON(status, gin.H{"error": ErrorBody{Code: string(code), Message: message}})
}
