package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// APIResponse is the envelope every API route answers with.
type APIResponse struct {
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload APIResponse) {
	body, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error("failed to encode api response", zap.String("message", payload.Message), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		zap.L().Debug("client went away before response was written", zap.Error(err))
	}
}

func errorResponse(w http.ResponseWriter, message string, statusCode int) {
	respondWithJSON(w, statusCode, APIResponse{Message: message, Status: statusError})
}

func successResponse(w http.ResponseWriter, message string, data interface{}) {
	respondWithJSON(w, http.StatusOK, APIResponse{Message: message, Status: statusSuccess, Data: data})
}
