package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/model"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("s3cret", time.Hour)
	account := &model.Account{ID: uuid.New(), Email: "a@b.c", Role: model.RoleAdmin}

	token, err := svc.GenerateAccessToken(account)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.AccountID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.Equal(t, "a@b.c", claims.Email)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewJWTService("s3cret", time.Hour)
	account := &model.Account{ID: uuid.New(), Role: model.RoleStaff}

	foreign, err := NewJWTService("other", time.Hour).GenerateAccessToken(account)
	require.NoError(t, err)

	expiredSvc := NewJWTService("s3cret", time.Hour).(*hmacService)
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredSvc.GenerateAccessToken(account)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"id": account.ID.String()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":        "abc.def.ghi",
		"wrong secret":   foreign,
		"expired":        expired,
		"unsigned token": none,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
