package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askgita/askgita/internal/common"
)

var secretKey = []byte("test-secret")

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("u1", secretKey, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := GetUserIDFromToken(token, secretKey)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateToken("u1", secretKey, -time.Minute)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(token, secretKey)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := GenerateToken("u1", secretKey, time.Hour)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(token, []byte("other-secret"))
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGarbageTokenRejected(t *testing.T) {
	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := GetUserIDFromToken(token, secretKey)
		assert.ErrorIs(t, err, common.ErrInvalidToken, "token %q", token)
	}
}

func TestLegacyTokenAccepted(t *testing.T) {
	userID, err := GetUserIDFromToken(common.LegacyTokenPrefix+"u42", secretKey)
	require.NoError(t, err)
	assert.Equal(t, "u42", userID)
}

func TestLegacyTokenUserID(t *testing.T) {
	tests := []struct {
		token  string
		wantID string
		wantOK bool
	}{
		{token: common.LegacyTokenPrefix + "u1", wantID: "u1", wantOK: true},
		{token: common.LegacyTokenPrefix, wantID: "", wantOK: false},
		{token: "u1", wantID: "", wantOK: false},
		{token: "", wantID: "", wantOK: false},
	}

	for _, tt := range tests {
		id, ok := LegacyTokenUserID(tt.token)
		assert.Equal(t, tt.wantOK, ok, "token %q", tt.token)
		assert.Equal(t, tt.wantID, id, "token %q", tt.token)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
