package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/models"
	"go-storefront/store"
)

func TestContentPagesDefaultToEmpty(t *testing.T) {
	svc := NewContentService(store.NewMemory(), nil)
	ctx := context.Background()

	about, err := svc.AboutUs(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.AboutUsID, about.ID)
	assert.NotNil(t, about.TeamMembers)

	contact, err := svc.ContactUs(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ContactUsID, contact.ID)
	assert.NotNil(t, contact.SocialMedia)
}

func TestSaveContentPages(t *testing.T) {
	svc := NewContentService(store.NewMemory(), nil)
	ctx := context.Background()

	err := svc.SaveAboutUs(ctx, &models.AboutUs{Title: "About", TeamMembers: []models.TeamMember{{Name: ""}}})
	assert.Equal(t, KindValidation, KindOf(err))

	require.NoError(t, svc.SaveAboutUs(ctx, &models.AboutUs{
		Title:       "About",
		Mission:     "Lamps for everyone",
		TeamMembers: []models.TeamMember{{Name: "Ada", Position: "Founder"}},
	}))
	about, err := svc.AboutUs(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Lamps for everyone", about.Mission)
	assert.Len(t, about.TeamMembers, 1)

	err = svc.SaveContactUs(ctx, &models.ContactUs{SocialMedia: []models.SocialLink{{Platform: "x"}}})
	assert.Equal(t, KindValidation, KindOf(err))
	require.NoError(t, svc.SaveContactUs(ctx, &models.ContactUs{Email: "hello@example.com"}))
	contact, err := svc.ContactUs(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello@example.com", contact.Email)
}

func TestSubmitMessage(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewContentService(store.NewMemory(), mailer)
	ctx := context.Background()

	err := svc.SubmitMessage(ctx, &models.ContactMessage{Name: "Ada", Email: "ada@example.com", Subject: "Hi"})
	assert.Equal(t, KindValidation, KindOf(err))
	err = svc.SubmitMessage(ctx, &models.ContactMessage{Name: "Ada", Email: "ada", Subject: "Hi", Message: "Hello"})
	assert.Equal(t, KindValidation, KindOf(err))

	msg := &models.ContactMessage{Name: "Ada", Email: "ada@example.com", Subject: "Hi", Message: "Hello", Status: models.MessageStatusRead}
	require.NoError(t, svc.SubmitMessage(ctx, msg))
	assert.Equal(t, models.MessageStatusUnread, msg.Status)
	assert.Equal(t, []string{msg.ID}, mailer.contact)

	require.NoError(t, svc.SetMessageStatus(ctx, msg.ID, models.MessageStatusRead))
	assert.Equal(t, KindValidation, KindOf(svc.SetMessageStatus(ctx, msg.ID, "archived")))
	assert.Equal(t, KindNotFound, KindOf(svc.SetMessageStatus(ctx, "missing", models.MessageStatusRead)))

	msgs, err := svc.Messages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.MessageStatusRead, msgs[0].Status)
}
