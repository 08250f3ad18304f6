package controllers

import (
	"bytes"
	"io"
	"net/http"

	"go-storefront/middleware"
	"go-storefront/services"
)

const maxUploadBytes = 10 << 20

// UserController handles user-related requests
type UserController struct {
	accounts *services.AccountService
}

// NewUserController creates a new UserController
func NewUserController(accounts *services.AccountService) *UserController {
	return &UserController{accounts: accounts}
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var reg services.Registration
	if !decodeJSON(r, &reg) {
		invalidInput(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if _, err := uc.accounts.Register(ctx, reg); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "User registered successfully. Please check your email to verify your account.",
	})
}

// VerifyEmail handles email verification
func (uc *UserController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	if err := uc.accounts.VerifyEmail(ctx, r.URL.Query().Get("token")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Email verified successfully. You can now log in."})
}

// Login handles user authentication
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(r, &creds) {
		invalidInput(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	token, err := uc.accounts.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GetProfile retrieves the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFrom(r.Context())
	if id == nil {
		unauthorized(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := uc.accounts.Profile(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile saves the authenticated user's profile fields
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFrom(r.Context())
	if id == nil {
		unauthorized(w)
		return
	}
	var upd services.ProfileUpdate
	if !decodeJSON(r, &upd) {
		invalidInput(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := uc.accounts.UpdateProfile(ctx, id, upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UploadProfileImage stores the request body as the user's profile image
func (uc *UserController) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFrom(r.Context())
	if id == nil {
		unauthorized(w)
		return
	}
	body, ok := readUpload(w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := uc.accounts.SetProfileImage(ctx, id, r.URL.Query().Get("filename"), body, r.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// readUpload buffers a raw request body of at most maxUploadBytes.
func readUpload(w http.ResponseWriter, r *http.Request) (io.Reader, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "File too large"})
		return nil, false
	}
	if len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "File is empty"})
		return nil, false
	}
	return bytes.NewReader(data), true
}
