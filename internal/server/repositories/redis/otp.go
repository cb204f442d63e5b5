package redis

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/askgita/askgita/internal/common"
)

const otpPrefix = "otp:"

// OTP purposes. A code issued for one purpose never verifies for another.
const (
	OTPPurposeRegister = "register"
	OTPPurposeDelete   = "delete"
)

// OTPStore keeps emailed verification codes with a TTL. Codes are six
// decimal digits, scoped to a purpose and recipient, and single-use:
// verification consumes the code atomically via GETDEL.
type OTPStore struct {
	client *Client
	ttl    time.Duration
}

func NewOTPStore(client *Client, ttl time.Duration) *OTPStore {
	return &OTPStore{client: client, ttl: ttl}
}

func otpKey(purpose, recipient string) string {
	return fmt.Sprintf("%s%s:%s", otpPrefix, purpose, recipient)
}

// Issue generates a fresh code for recipient, replacing any previous one.
func (s *OTPStore) Issue(ctx context.Context, purpose, recipient string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	if err := s.client.rdb.Set(ctx, otpKey(purpose, recipient), code, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store verification code: %w", err)
	}
	return code, nil
}

// Verify consumes the stored code for recipient and compares it to code.
// A missing, expired, or mismatched code yields common.ErrInvalidOTP. On a
// mismatch the code is already consumed, so it cannot be brute-forced by
// repeated guesses.
func (s *OTPStore) Verify(ctx context.Context, purpose, recipient, code string) error {
	stored, err := s.client.rdb.GetDel(ctx, otpKey(purpose, recipient)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return common.ErrInvalidOTP
		}
		return fmt.Errorf("failed to read verification code: %w", err)
	}
	if stored != code {
		return common.ErrInvalidOTP
	}
	return nil
}

// Peek compares code against the stored value without consuming it. Used
// by the early-validation endpoint; the signup itself still goes through
// Verify.
func (s *OTPStore) Peek(ctx context.Context, purpose, recipient, code string) error {
	stored, err := s.client.rdb.Get(ctx, otpKey(purpose, recipient)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return common.ErrInvalidOTP
		}
		return fmt.Errorf("failed to read verification code: %w", err)
	}
	if stored != code {
		return common.ErrInvalidOTP
	}
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
