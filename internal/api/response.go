package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// MessageResponse — ответ с одним сообщением.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse — ответ на внутреннюю ошибку.
type ErrorResponse struct {
	Message   string    `json:"message"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// MethodNotAllowedResponse — ответ на неподдерживаемый метод.
type MethodNotAllowedResponse struct {
	Message        string   `json:"message"`
	AllowedMethods []string `json:"allowedMethods"`
}

// JSON отправляет JSON ответ.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// BadRequest отправляет ошибку 400.
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, MessageResponse{Message: message})
}

// NotFound отправляет ошибку 404.
func NotFound(w http.ResponseWriter, message string) {
	JSON(w, http.StatusNotFound, MessageResponse{Message: message})
}

// MethodNotAllowed отправляет ошибку 405.
func MethodNotAllowed(w http.ResponseWriter) {
	JSON(w, http.StatusMethodNotAllowed, MethodNotAllowedResponse{
		Message:        "Method not allowed",
		AllowedMethods: []string{"GET", "POST"},
	})
}

// InternalError отправляет ошибку 500.
// Клиенту уходит только message ошибки, без внутренних деталей.
func InternalError(w http.ResponseWriter, logger *slog.Logger, err error) {
	msg := "unknown error"
	if err != nil {
		logger.Error("internal error", "error", err)
		msg = err.Error()
	}

	JSON(w, http.StatusInternalServerError, ErrorResponse{
		Message:   "Internal server error",
		Error:     msg,
		Timestamp: time.Now(),
	})
}
