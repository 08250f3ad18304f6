package services

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"
)

const minPasswordLength = 6

// Registration is the sign-up form.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ProfileUpdate is the editable part of a user's profile.
type ProfileUpdate struct {
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	Phone        string         `json:"phone"`
	Address      models.Address `json:"address_info"`
	ProfileImage *string        `json:"profile_image,omitempty"`
}

// AccountService handles registration, login and profiles.
type AccountService struct {
	store   store.Store
	tokens  *utils.TokenIssuer
	mailer  Mailer
	uploads *UploadService
}

// NewAccountService creates a new AccountService. mailer may be nil.
func NewAccountService(st store.Store, tokens *utils.TokenIssuer, mailer Mailer, uploads *UploadService) *AccountService {
	return &AccountService{store: st, tokens: tokens, mailer: mailer, uploads: uploads}
}

// Register creates an unverified customer and mails the verification link.
func (s *AccountService) Register(ctx context.Context, reg Registration) (*models.User, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	if reg.Email == "" || !strings.Contains(reg.Email, "@") {
		return nil, validationError("A valid email is required")
	}
	if len(reg.Password) < minPasswordLength {
		return nil, validationError("Password must be at least 6 characters")
	}

	if _, err := s.store.GetUserByEmail(ctx, reg.Email); err == nil {
		return nil, validationError("User already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, internal("database error", err)
	}

	// Hash the password
	hashed, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internal("error hashing password", err)
	}

	user := &models.User{
		Email:     reg.Email,
		Password:  string(hashed),
		Role:      models.RoleCustomer,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, validationError("User already exists")
		}
		return nil, internal("error creating user", err)
	}

	token, err := s.tokens.IssueVerification(user.ID, user.Email)
	if err != nil {
		return nil, internal("error generating verification token", err)
	}
	user.VerificationToken = token
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, internal("error saving verification token", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendVerificationEmail(user.Email, token); err != nil {
			log.Printf("verification email for %s: %v", user.Email, err)
		}
	}
	return user, nil
}

// VerifyEmail marks the user holding token as verified.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return validationError("Verification token missing")
	}
	claims, err := s.tokens.Parse(token)
	if err != nil || claims.Purpose != utils.PurposeVerify {
		return validationError("Invalid token")
	}
	user, err := s.store.GetUserByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return validationError("User not found or already verified")
		}
		return internal("database error", err)
	}
	user.IsVerified = true
	user.VerificationToken = ""
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return internal("error updating user verification status", err)
	}
	return nil
}

// Login checks credentials and returns a session token.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	invalid := &Error{Kind: KindAuthenticationRequired, Message: "Invalid email or password"}
	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", invalid
		}
		return "", internal("database error", err)
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", invalid
	}
	if !user.IsVerified {
		return "", &Error{Kind: KindAuthenticationRequired, Message: "Email not verified"}
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return "", internal("error generating token", err)
	}
	return token, nil
}

// Profile returns the caller's user row, creating it when missing.
func (s *AccountService) Profile(ctx context.Context, id *Identity) (*models.User, error) {
	user, err := ensureUser(ctx, s.store, id)
	if err != nil {
		return nil, internal("failed to load profile", err)
	}
	return user, nil
}

// UpdateProfile saves the editable profile fields.
func (s *AccountService) UpdateProfile(ctx context.Context, id *Identity, upd ProfileUpdate) (*models.User, error) {
	user, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	user.FirstName = strings.TrimSpace(upd.FirstName)
	user.LastName = strings.TrimSpace(upd.LastName)
	user.Phone = strings.TrimSpace(upd.Phone)
	user.Address = upd.Address
	if upd.ProfileImage != nil {
		user.ProfileImage = *upd.ProfileImage
	}
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, internal("failed to update profile", err)
	}
	return user, nil
}

// SetProfileImage uploads a new profile image and replaces the old one.
func (s *AccountService) SetProfileImage(ctx context.Context, id *Identity, filename string, body io.Reader, contentType string) (*models.User, error) {
	user, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := s.uploads.Upload(ctx, "profiles", filename, body, contentType)
	if err != nil {
		return nil, err
	}
	old := user.ProfileImage
	user.ProfileImage = url
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, internal("failed to update profile", err)
	}
	if old != "" {
		if err := s.uploads.Delete(ctx, old); err != nil {
			log.Printf("delete old profile image %s: %v", old, err)
		}
	}
	return user, nil
}
