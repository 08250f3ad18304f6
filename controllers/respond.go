package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"go-storefront/services"
)

const requestTimeout = 5 * time.Second

func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

type errorBody struct {
	Error       string `json:"error"`
	OrderID     string `json:"orderId,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// writeError maps a service error to its status and a {error} body.
func writeError(w http.ResponseWriter, err error) {
	var se *services.Error
	if !errors.As(err, &se) {
		log.Printf("unexpected error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
		return
	}
	if se.Kind == services.KindInternal && se.Err != nil {
		log.Printf("%v", se)
	}
	writeJSON(w, services.StatusFor(se.Kind), errorBody{
		Error:       se.Message,
		OrderID:     se.OrderID,
		RedirectURL: se.RedirectURL,
	})
}

func decodeJSON(r *http.Request, v interface{}) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

func invalidInput(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid input"})
}

func unauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
}
