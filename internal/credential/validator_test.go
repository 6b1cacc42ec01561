package credential

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func signedToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestCheckValidToken(t *testing.T) {
	v := NewValidator(nil, zap.NewNop())
	token := signedToken(t, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(45 * time.Minute)),
	})

	status := v.Check(token)
	require.True(t, status.Valid)
	require.InDelta(t, 45, status.Remaining.Minutes(), 1)
}

func TestCheckExpiredToken(t *testing.T) {
	v := NewValidator(nil, zap.NewNop())
	token := signedToken(t, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})

	require.False(t, v.Check(token).Valid)
}

func TestCheckExpiryExactlyNow(t *testing.T) {
	v := NewValidator(nil, zap.NewNop())
	moment := time.Now()
	v.now = func() time.Time { return moment }
	token := signedToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(moment)})

	require.False(t, v.Check(token).Valid, "expiry at now must fail closed")
}

func TestCheckMissingToken(t *testing.T) {
	v := NewValidator(nil, zap.NewNop())
	require.False(t, v.Check("").Valid)
}

func TestCheckMalformedToken(t *testing.T) {
	v := NewValidator(nil, zap.NewNop())
	require.False(t, v.Check("not-a-jwt").Valid)
	require.False(t, v.Check("a.b").Valid)
}

func TestCheckTokenWithoutExpiry(t *testing.T) {
	v := NewValidator(nil, zap.NewNop())
	token := signedToken(t, jwt.RegisteredClaims{Subject: "user"})
	require.False(t, v.Check(token).Valid)
}
