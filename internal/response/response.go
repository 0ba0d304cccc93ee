// Package response defines the JSON envelope returned by every endpoint and
// the mapping from the service error taxonomy to HTTP status codes.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/horizon-tours/service-booking/internal/apperr"
)

// Envelope is the uniform response body.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Success writes a 200 with the given payload.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Created writes a 201 with the given payload.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// BadRequest writes a 400 with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: message})
}

// Error maps a service error onto its status code: 422 for validation
// failures (with the full field enumeration), 404 for missing records, 500
// for storage and unknown failures.
func Error(c *gin.Context, err error) {
	var validationErr *apperr.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusUnprocessableEntity, Envelope{
			Success: false,
			Message: "validation failed",
			Errors:  validationErr.Fields,
		})
		return
	}

	var notFoundErr *apperr.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, Envelope{Success: false, Message: notFoundErr.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, Envelope{
		Success: false,
		Message: "internal server error",
	})
}
