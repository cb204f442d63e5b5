package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/askgita/askgita/internal/common"
	"github.com/askgita/askgita/internal/server/chats"
	"github.com/askgita/askgita/internal/server/models"
	"github.com/askgita/askgita/internal/server/users"
)

var validate = validator.New()

// identityPayload is the account shape shared by the auth endpoints. Token
// is set only on login and register responses.
type identityPayload struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Token        string `json:"token,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

func identityFrom(user *models.User, token string) identityPayload {
	return identityPayload{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Token:        token,
		ProfileImage: user.ProfileImage,
		CreatedAt:    user.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// AuthHandler handles the account endpoints.
type AuthHandler struct {
	users *users.Service
	chats *chats.Service
}

func NewAuthHandler(userService *users.Service, chatService *chats.Service) *AuthHandler {
	return &AuthHandler{users: userService, chats: chatService}
}

// SendOTP emails a signup verification code.
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		BadRequest(w, err.Error())
		return
	}

	if err := h.users.SendRegistrationOTP(r.Context(), input.Email); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			Conflict(w, "email is already registered")
			return
		}
		InternalError(w, "failed to send verification code")
		return
	}
	OK(w, map[string]any{"sent": true})
}

// VerifyOTP checks a signup code without consuming it.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email" validate:"required,email"`
		OTP   string `json:"otp" validate:"required,len=6"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		BadRequest(w, err.Error())
		return
	}

	if err := h.users.VerifyRegistrationOTP(r.Context(), input.Email, input.OTP); err != nil {
		BadRequest(w, "invalid or expired verification code")
		return
	}
	OK(w, map[string]any{"valid": true})
}

// Register creates an account from a verified signup.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username" validate:"required,min=2,max=64"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
		OTP      string `json:"otp" validate:"required,len=6"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		BadRequest(w, err.Error())
		return
	}

	user, token, err := h.users.Register(r.Context(), input.Username, input.Email, input.Password, input.OTP)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidOTP):
			BadRequest(w, "invalid or expired verification code")
		case errors.Is(err, common.ErrAlreadyExists):
			Conflict(w, "email is already registered")
		default:
			InternalError(w, "failed to create account")
		}
		return
	}

	Created(w, identityFrom(user, token))
}

// Login authenticates and issues a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		BadRequest(w, err.Error())
		return
	}

	user, token, err := h.users.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			Unauthorized(w, "invalid email or password")
			return
		}
		InternalError(w, "login failed")
		return
	}

	OK(w, identityFrom(user, token))
}

// Logout acknowledges the session end. Tokens are stateless, so there is
// nothing to revoke server-side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	OK(w, map[string]any{"loggedOut": true})
}

// Profile returns the caller's account.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	user, err := h.users.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			NotFound(w, "account not found")
			return
		}
		InternalError(w, "failed to load profile")
		return
	}
	OK(w, identityFrom(user, ""))
}

// UpdateProfile changes the caller's display fields.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var input struct {
		Username     string `json:"username" validate:"omitempty,min=2,max=64"`
		ProfileImage string `json:"profileImage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		BadRequest(w, err.Error())
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, input.Username, input.ProfileImage)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			NotFound(w, "account not found")
			return
		}
		InternalError(w, "failed to update profile")
		return
	}
	OK(w, identityFrom(user, ""))
}

// SendDeleteOTP emails a deletion-confirmation code.
func (h *AuthHandler) SendDeleteOTP(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	if err := h.users.SendDeleteOTP(r.Context(), userID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			NotFound(w, "account not found")
			return
		}
		InternalError(w, "failed to send confirmation code")
		return
	}
	OK(w, map[string]any{"sent": true})
}

// DeleteAccount removes the account and its archive after confirming the
// emailed code.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var input struct {
		OTP string `json:"otp" validate:"required,len=6"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		BadRequest(w, err.Error())
		return
	}

	if err := h.users.Delete(r.Context(), userID, input.OTP); err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidOTP):
			BadRequest(w, "invalid or expired confirmation code")
		case errors.Is(err, common.ErrNotFound):
			NotFound(w, "account not found")
		default:
			InternalError(w, "failed to delete account")
		}
		return
	}

	// The archive goes with the account. A failure here leaves orphaned
	// documents scoped to a user id that can never authenticate again.
	_ = h.chats.DeleteAll(r.Context(), userID)

	OK(w, map[string]any{"deleted": true})
}
