package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"go-storefront/models"
	"go-storefront/store"
)

// ContentService handles the about and contact pages and contact messages.
type ContentService struct {
	store  store.Store
	mailer Mailer
}

// NewContentService creates a new ContentService. mailer may be nil.
func NewContentService(st store.Store, mailer Mailer) *ContentService {
	return &ContentService{store: st, mailer: mailer}
}

// AboutUs returns the about page, empty when it was never saved.
func (s *ContentService) AboutUs(ctx context.Context) (*models.AboutUs, error) {
	about, err := s.store.GetAboutUs(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return &models.AboutUs{ID: models.AboutUsID, TeamMembers: []models.TeamMember{}}, nil
	}
	if err != nil {
		return nil, internal("failed to load about page", err)
	}
	if about.TeamMembers == nil {
		about.TeamMembers = []models.TeamMember{}
	}
	return about, nil
}

// SaveAboutUs replaces the about page.
func (s *ContentService) SaveAboutUs(ctx context.Context, about *models.AboutUs) error {
	for _, m := range about.TeamMembers {
		if strings.TrimSpace(m.Name) == "" {
			return validationError("Team member name is required")
		}
	}
	if err := s.store.SaveAboutUs(ctx, about); err != nil {
		return internal("failed to save about page", err)
	}
	return nil
}

// ContactUs returns the contact page, empty when it was never saved.
func (s *ContentService) ContactUs(ctx context.Context) (*models.ContactUs, error) {
	contact, err := s.store.GetContactUs(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return &models.ContactUs{ID: models.ContactUsID, SocialMedia: []models.SocialLink{}}, nil
	}
	if err != nil {
		return nil, internal("failed to load contact page", err)
	}
	if contact.SocialMedia == nil {
		contact.SocialMedia = []models.SocialLink{}
	}
	return contact, nil
}

// SaveContactUs replaces the contact page.
func (s *ContentService) SaveContactUs(ctx context.Context, contact *models.ContactUs) error {
	for _, link := range contact.SocialMedia {
		if link.Platform == "" || link.URL == "" {
			return validationError("Social media links need a platform and a url")
		}
	}
	if err := s.store.SaveContactUs(ctx, contact); err != nil {
		return internal("failed to save contact page", err)
	}
	return nil
}

// SubmitMessage stores a contact form message as unread and notifies the
// store mailbox.
func (s *ContentService) SubmitMessage(ctx context.Context, msg *models.ContactMessage) error {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	if msg.Name == "" || msg.Email == "" || strings.TrimSpace(msg.Subject) == "" || strings.TrimSpace(msg.Message) == "" {
		return validationError("Name, email, subject and message are required")
	}
	if !strings.Contains(msg.Email, "@") {
		return validationError("Invalid email address")
	}
	msg.ID = ""
	msg.Status = models.MessageStatusUnread
	if err := s.store.InsertContactMessage(ctx, msg); err != nil {
		return internal("failed to save message", err)
	}
	if s.mailer != nil {
		if err := s.mailer.SendContactNotification(msg); err != nil {
			log.Printf("contact notification %s: %v", msg.ID, err)
		}
	}
	return nil
}

// Messages lists contact messages newest first.
func (s *ContentService) Messages(ctx context.Context) ([]models.ContactMessage, error) {
	msgs, err := s.store.ListContactMessages(ctx)
	if err != nil {
		return nil, internal("failed to load messages", err)
	}
	if msgs == nil {
		msgs = []models.ContactMessage{}
	}
	return msgs, nil
}

// SetMessageStatus marks a message read or unread.
func (s *ContentService) SetMessageStatus(ctx context.Context, id, status string) error {
	if status != models.MessageStatusRead && status != models.MessageStatusUnread {
		return validationError("Status must be read or unread")
	}
	if err := s.store.UpdateContactMessageStatus(ctx, id, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("Message not found")
		}
		return internal("failed to update message", err)
	}
	return nil
}
