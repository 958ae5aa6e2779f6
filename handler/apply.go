package handler

import (
	"encoding/json"
	"net/http"
)

type H map[string]any

// StatusError 带 HTTP 状态码的错误
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// fail 以 {error:"..."} 返回错误
func fail(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, H{"error": err.Error()})
}

func respondText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(text))
}

// RespondError 以 {error:{message,status}} 的格式返回错误
func RespondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if se, ok := err.(*StatusError); ok {
		status = se.Status
	}
	respondJSON(w, status, H{"error": H{"message": err.Error(), "status": status}})
}
