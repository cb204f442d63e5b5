package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askgita/askgita/internal/common"
	"github.com/askgita/askgita/internal/server/auth"
)

var testSecret = []byte("test-secret")

func identityRequest(bearer, headerID string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	if bearer != "" {
		r.Header.Set("Authorization", "Bearer "+bearer)
	}
	if headerID != "" {
		r.Header.Set(common.UserIDHeaderName, headerID)
	}
	return r
}

func TestIdentify(t *testing.T) {
	signed, err := auth.GenerateToken("u1", testSecret, time.Hour)
	require.NoError(t, err)

	a := NewAuthenticator(testSecret)

	tests := []struct {
		name     string
		bearer   string
		headerID string
		wantID   string
		wantErr  bool
	}{
		{name: "guest", wantID: ""},
		{name: "signed token", bearer: signed, wantID: "u1"},
		{name: "legacy token", bearer: common.LegacyTokenPrefix + "u1", wantID: "u1"},
		{name: "header only", headerID: "u1", wantID: "u1"},
		{name: "token and agreeing header", bearer: signed, headerID: "u1", wantID: "u1"},
		{name: "token and disagreeing header", bearer: signed, headerID: "u2", wantErr: true},
		{name: "damaged token with header fallback", bearer: "garbage", headerID: "u1", wantID: "u1"},
		{name: "damaged token without header", bearer: "garbage", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := a.identify(identityRequest(tt.bearer, tt.headerID))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestIdentifyRejectsMalformedAuthorizationHeader(t *testing.T) {
	a := NewAuthenticator(testSecret)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Basic abc")

	_, err := a.identify(r)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestRequiredRejectsGuests(t *testing.T) {
	a := NewAuthenticator(testSecret)

	var called bool
	h := a.Required(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, identityRequest("", ""))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}

func TestRequiredPutsUserIDInContext(t *testing.T) {
	signed, err := auth.GenerateToken("u1", testSecret, time.Hour)
	require.NoError(t, err)

	a := NewAuthenticator(testSecret)

	var gotID string
	var gotOK bool
	h := a.Required(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotID, gotOK = UserID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, identityRequest(signed, ""))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gotOK)
	assert.Equal(t, "u1", gotID)
}

func TestOptionalPassesGuestsButRejectsDamagedTokens(t *testing.T) {
	a := NewAuthenticator(testSecret)

	var gotOK bool
	h := a.Optional(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, gotOK = UserID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, identityRequest("", ""))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, gotOK)

	// An unreadable token with no fallback id is an error, not a guest.
	w = httptest.NewRecorder()
	h.ServeHTTP(w, identityRequest("garbage", ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClientIPStripsPort(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:51234"
	assert.Equal(t, "203.0.113.9", clientIP(r))

	r.RemoteAddr = "203.0.113.9"
	assert.Equal(t, "203.0.113.9", clientIP(r))
}
