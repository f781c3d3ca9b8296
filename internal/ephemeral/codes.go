package ephemeral

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"
)

// VerificationCodes issues and checks single-use numeric codes sent to a
// receiver (phone number or email address).
type VerificationCodes struct {
	store     Store
	fixedCode string
	random    io.Reader
}

// NewVerificationCodes creates a code issuer over store. A non-empty
// fixedCode is returned for every issue instead of random digits and must
// only be configured in test environments.
func NewVerificationCodes(store Store, fixedCode string) *VerificationCodes {
	return &VerificationCodes{store: store, fixedCode: fixedCode, random: rand.Reader}
}

func codeKey(receiver, codeType string) string {
	return "otp:" + strings.ToLower(codeType) + ":" + receiver
}

// IssueCode generates a code of length digits, stores it for ttl and returns
// it. Issuing again for the same receiver and type replaces the previous code.
func (v *VerificationCodes) IssueCode(ctx context.Context, receiver, codeType string, length int, ttl time.Duration) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("code length must be positive, got %d", length)
	}
	code := v.fixedCode
	if code == "" {
		var err error
		if code, err = v.digits(length); err != nil {
			return "", err
		}
	}
	if err := v.store.Put(ctx, codeKey(receiver, codeType), code, ttl); err != nil {
		return "", fmt.Errorf("store code: %w", err)
	}
	return code, nil
}

// Verify reports whether code matches the outstanding code for receiver and
// type. A match consumes the code.
func (v *VerificationCodes) Verify(ctx context.Context, receiver, codeType, code string) (bool, error) {
	key := codeKey(receiver, codeType)
	stored, ok, err := v.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load code: %w", err)
	}
	if !ok || subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return false, nil
	}
	if err := consume(ctx, v.store, key); err != nil {
		return false, fmt.Errorf("consume code: %w", err)
	}
	return true, nil
}

func (v *VerificationCodes) digits(n int) (string, error) {
	ten := big.NewInt(10)
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		d, err := rand.Int(v.random, ten)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}
