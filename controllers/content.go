package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"go-storefront/models"
	"go-storefront/services"
)

// ContentController handles the about and contact pages and contact messages
type ContentController struct {
	content *services.ContentService
}

// NewContentController creates a new ContentController
func NewContentController(content *services.ContentService) *ContentController {
	return &ContentController{content: content}
}

func (cc *ContentController) GetAboutUs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	about, err := cc.content.AboutUs(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, about)
}

func (cc *ContentController) SaveAboutUs(w http.ResponseWriter, r *http.Request) {
	var about models.AboutUs
	if !decodeJSON(r, &about) {
		invalidInput(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := cc.content.SaveAboutUs(ctx, &about); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, about)
}

func (cc *ContentController) GetContactUs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	contact, err := cc.content.ContactUs(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

func (cc *ContentController) SaveContactUs(w http.ResponseWriter, r *http.Request) {
	var contact models.ContactUs
	if !decodeJSON(r, &contact) {
		invalidInput(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := cc.content.SaveContactUs(ctx, &contact); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

// SubmitMessage accepts a public contact form submission
func (cc *ContentController) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var msg models.ContactMessage
	if !decodeJSON(r, &msg) {
		invalidInput(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := cc.content.SubmitMessage(ctx, &msg); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "id": msg.ID})
}

// GetMessages lists contact messages (Admin only)
func (cc *ContentController) GetMessages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	msgs, err := cc.content.Messages(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// UpdateMessageStatus marks a message read or unread (Admin only)
func (cc *ContentController) UpdateMessageStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if !decodeJSON(r, &body) {
		invalidInput(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := cc.content.SetMessageStatus(ctx, mux.Vars(r)["id"], body.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Message updated"})
}
