package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"
)

func newAccounts(t *testing.T) (*AccountService, *store.Memory, *fakeMailer, *fakeBlobs) {
	t.Helper()
	st := store.NewMemory()
	mailer := &fakeMailer{}
	blobs := newFakeBlobs()
	tokens := utils.NewTokenIssuer("test-secret", time.Hour)
	return NewAccountService(st, tokens, mailer, NewUploadService(blobs)), st, mailer, blobs
}

func TestRegisterVerifyLogin(t *testing.T) {
	svc, st, mailer, _ := newAccounts(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, Registration{Email: "ada@example.com", Password: "secret1", FirstName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEqual(t, "secret1", user.Password)
	assert.Equal(t, []string{"ada@example.com"}, mailer.verification)

	_, err = svc.Login(ctx, "ada@example.com", "secret1")
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Email not verified", se.Message)

	stored, err := st.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.NoError(t, svc.VerifyEmail(ctx, stored.VerificationToken))
	assert.Equal(t, KindValidation, KindOf(svc.VerifyEmail(ctx, stored.VerificationToken)), "tokens are single use")

	token, err := svc.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = svc.Login(ctx, "ada@example.com", "wrong")
	assert.Equal(t, KindAuthenticationRequired, KindOf(err))
	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.Equal(t, KindAuthenticationRequired, KindOf(err))
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _, _ := newAccounts(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, Registration{Email: "bad", Password: "secret1"})
	assert.Equal(t, KindValidation, KindOf(err))
	_, err = svc.Register(ctx, Registration{Email: "ada@example.com", Password: "123"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.Register(ctx, Registration{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, Registration{Email: "ada@example.com", Password: "secret1"})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestVerifyEmailRejectsSessionTokens(t *testing.T) {
	svc, _, _, _ := newAccounts(t)
	session, err := utils.NewTokenIssuer("test-secret", time.Hour).Issue("u1", "a@example.com", models.RoleCustomer)
	require.NoError(t, err)

	assert.Equal(t, KindValidation, KindOf(svc.VerifyEmail(context.Background(), session)))
	assert.Equal(t, KindValidation, KindOf(svc.VerifyEmail(context.Background(), "")))
}

func TestProfile(t *testing.T) {
	svc, _, _, blobs := newAccounts(t)
	ctx := context.Background()
	id := customer("u1")

	user, err := svc.Profile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "u1@example.com", user.Email)

	updated, err := svc.UpdateProfile(ctx, id, ProfileUpdate{FirstName: " Ada ", Address: models.Address{City: "London"}})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, "London", updated.Address.City)

	first, err := svc.SetProfileImage(ctx, id, "me.png", strings.NewReader("one"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/profiles/me.png", first.ProfileImage)

	_, err = svc.SetProfileImage(ctx, id, "me2.png", strings.NewReader("two"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/profiles/me.png"}, blobs.deleted)
}
