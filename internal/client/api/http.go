package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/askgita/askgita/internal/client/models"
	"github.com/askgita/askgita/internal/common"
)

// CredentialFunc supplies the current bearer token and user id for outbound
// requests. It returns empty strings for a guest session. The auth gate
// provides this after wiring.
type CredentialFunc func() (token, userID string)

// HTTPClient implements Client over the backend's JSON REST API.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
	creds   CredentialFunc
}

// NewHTTPClient builds a client for the API rooted at baseURL
// (e.g. "http://localhost:5000").
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 120 * time.Second},
	}
}

// SetCredentialFunc wires the credential source. Requests made before wiring
// go out unauthenticated.
func (c *HTTPClient) SetCredentialFunc(f CredentialFunc) {
	c.creds = f
}

func (c *HTTPClient) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}

// envelope is the server's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

func (e *envelope) errorText() string {
	if len(e.Error) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Error, &s); err == nil {
		return s
	}
	return string(e.Error)
}

// do performs one JSON request/response round trip. A nil out skips body
// decoding. Transport-level failures map to common.ErrUnavailable; HTTP
// error statuses map to the sentinel taxonomy with the server's message
// preserved.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.creds != nil {
		token, userID := c.creds()
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		if userID != "" {
			req.Header.Set(common.UserIDHeaderName, userID)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode >= 400 {
		msg := env.errorText()
		if msg == "" {
			msg = resp.Status
		}
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", common.ErrUnauthorized, msg)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", common.ErrNotFound, msg)
		case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
			return fmt.Errorf("%w: %s", common.ErrValidation, msg)
		default:
			return fmt.Errorf("%w: %s", common.ErrUnavailable, msg)
		}
	}

	if out == nil {
		return nil
	}
	if decodeErr != nil {
		return fmt.Errorf("%w: bad response body: %v", common.ErrUnavailable, decodeErr)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: bad response payload: %v", common.ErrUnavailable, err)
	}
	return nil
}

func (c *HTTPClient) Send(ctx context.Context, prompt, language string) (*ChatResult, error) {
	in := struct {
		Prompt   string `json:"prompt"`
		Language string `json:"language"`
	}{Prompt: prompt, Language: language}

	var out ChatResult
	if err := c.do(ctx, http.MethodPost, "/api/chat", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.Identity, error) {
	in := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var out models.Identity
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Register(ctx context.Context, username, email, password, otp string) (*models.Identity, error) {
	in := struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		OTP      string `json:"otp"`
	}{Username: username, Email: email, Password: password, OTP: otp}

	var out models.Identity
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (c *HTTPClient) Profile(ctx context.Context) (*models.Identity, error) {
	var out models.Identity
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, username, profileImage string) (*models.Identity, error) {
	in := struct {
		Username     string `json:"username,omitempty"`
		ProfileImage string `json:"profileImage,omitempty"`
	}{Username: username, ProfileImage: profileImage}

	var out models.Identity
	if err := c.do(ctx, http.MethodPut, "/api/auth/profile", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) SendRegistrationOTP(ctx context.Context, email string) error {
	in := struct {
		Email string `json:"email"`
	}{Email: email}
	return c.do(ctx, http.MethodPost, "/api/auth/otp/send", in, nil)
}

func (c *HTTPClient) VerifyRegistrationOTP(ctx context.Context, email, otp string) error {
	in := struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}{Email: email, OTP: otp}
	return c.do(ctx, http.MethodPost, "/api/auth/otp/verify", in, nil)
}

func (c *HTTPClient) SendDeleteOTP(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/delete/otp", nil, nil)
}

func (c *HTTPClient) DeleteAccount(ctx context.Context, otp string) error {
	in := struct {
		OTP string `json:"otp"`
	}{OTP: otp}
	return c.do(ctx, http.MethodPost, "/api/auth/delete", in, nil)
}

func (c *HTTPClient) History(ctx context.Context) ([]models.ArchivedConversation, error) {
	var out []models.ArchivedConversation
	if err := c.do(ctx, http.MethodGet, "/api/history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Conversation(ctx context.Context, id string) (*models.ArchivedConversation, error) {
	var out models.ArchivedConversation
	if err := c.do(ctx, http.MethodGet, "/api/history/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteConversation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/history/"+id, nil, nil)
}

func (c *HTTPClient) DeleteAllConversations(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/history", nil, nil)
}

var _ Client = (*HTTPClient)(nil)
