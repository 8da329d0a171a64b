// Package response writes the JSON envelope every endpoint answers with:
//
//	{"status":200,"data":{...},"meta":{"cart_count":3}}
package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/storefront/pkg/orm"
)

// Envelope is the response body shape.
type Envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Meta    map[string]any    `json:"meta,omitempty"`
}

// Write sends body with its own status code.
func Write(w http.ResponseWriter, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.Status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 JSON response with data.
func Success(w http.ResponseWriter, data interface{}) {
	Write(w, Envelope{Status: http.StatusOK, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(w http.ResponseWriter, data interface{}) {
	Write(w, Envelope{Status: http.StatusCreated, Data: data})
}

// Error sends a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, Envelope{Status: status, Message: message})
}

// ValidationError sends a 422 with one message per failing field.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	Write(w, Envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// Page is the data shape of a paginated list.
type Page struct {
	Items      interface{}    `json:"items"`
	Pagination orm.Pagination `json:"pagination"`
}

// Paginated sends a 200 response with items and pagination metadata.
func Paginated(w http.ResponseWriter, items interface{}, p orm.Pagination) {
	Success(w, Page{Items: items, Pagination: p})
}

func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}

func MethodNotAllowed(w http.ResponseWriter) {
	Error(w, http.StatusMethodNotAllowed, "Method not allowed")
}
