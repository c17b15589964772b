package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name           string
		accessSecret   string
		refreshSecret  string
		accessMinutes  int
		refreshMinutes int
	}{
		{
			name:           "valid parameters",
			accessSecret:   "access-secret-key",
			refreshSecret:  "refresh-secret-key",
			accessMinutes:  15,
			refreshMinutes: 10080,
		},
		{
			name:           "empty secrets",
			accessSecret:   "",
			refreshSecret:  "",
			accessMinutes:  30,
			refreshMinutes: 2880,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := NewTokenService(tt.accessSecret, tt.refreshSecret, tt.accessMinutes, tt.refreshMinutes)

			assert.NotNil(t, ts)
			assert.Equal(t, tt.accessSecret, ts.AccessTokenSecret)
			assert.Equal(t, tt.refreshSecret, ts.RefreshTokenSecret)
			assert.Equal(t, time.Duration(tt.accessMinutes)*time.Minute, ts.AccessTokenExpiry)
			assert.Equal(t, time.Duration(tt.refreshMinutes)*time.Minute, ts.RefreshTokenExpiry)
		})
	}
}

func TestTokenService_Generate(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		email  string
		role   string
	}{
		{
			name:   "student role",
			userID: "user-123",
			email:  "test@example.com",
			role:   "student",
		},
		{
			name:   "admin role",
			userID: "admin-456",
			email:  "admin@example.com",
			role:   "admin",
		},
		{
			name:   "empty user data",
			userID: "",
			email:  "",
			role:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := NewTokenService("test-access-secret", "test-refresh-secret", 15, 10080)

			beforeGenerate := time.Now()
			accessToken, refreshToken, expiryTime, err := ts.Generate(tt.userID, tt.email, tt.role)
			afterGenerate := time.Now()

			require.NoError(t, err)
			assert.NotEmpty(t, accessToken)
			assert.NotEmpty(t, refreshToken)
			assert.True(t, expiryTime.After(beforeGenerate.Add(ts.AccessTokenExpiry).Add(-time.Second)))
			assert.True(t, expiryTime.Before(afterGenerate.Add(ts.AccessTokenExpiry).Add(time.Second)))

			// Verify access token claims
			accessClaims := &JWTCustomClaims{}
			parsed, err := jwt.ParseWithClaims(accessToken, accessClaims, func(token *jwt.Token) (interface{}, error) {
				return []byte(ts.AccessTokenSecret), nil
			})
			require.NoError(t, err)
			assert.True(t, parsed.Valid)
			assert.Equal(t, tt.userID, accessClaims.UserID)
			assert.Equal(t, tt.email, accessClaims.Email)
			assert.Equal(t, tt.role, accessClaims.Role)

			// Refresh token carries identity but no role, and outlives the
			// access token.
			refreshClaims := &JWTCustomClaims{}
			parsed, err = jwt.ParseWithClaims(refreshToken, refreshClaims, func(token *jwt.Token) (interface{}, error) {
				return []byte(ts.RefreshTokenSecret), nil
			})
			require.NoError(t, err)
			assert.True(t, parsed.Valid)
			assert.Equal(t, tt.userID, refreshClaims.UserID)
			assert.Empty(t, refreshClaims.Role)
			assert.True(t, refreshClaims.ExpiresAt.Time.After(accessClaims.ExpiresAt.Time))
		})
	}
}

func TestTokenService_VerifyAccessToken(t *testing.T) {
	ts := NewTokenService("test-access-secret", "test-refresh-secret", 15, 10080)

	accessToken, refreshToken, _, err := ts.Generate("user-123", "test@example.com", "student")
	require.NoError(t, err)

	t.Run("valid access token", func(t *testing.T) {
		claims, err := ts.VerifyAccessToken(accessToken)

		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.UserID)
		assert.Equal(t, "test@example.com", claims.Email)
		assert.Equal(t, "student", claims.Role)
	})

	t.Run("refresh token rejected as access token", func(t *testing.T) {
		// Signed with the other secret, so verification must fail.
		claims, err := ts.VerifyAccessToken(refreshToken)

		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("garbage token", func(t *testing.T) {
		claims, err := ts.VerifyAccessToken("not-a-jwt")

		assert.Error(t, err)
		assert.Nil(t, claims)
	})
}

func TestTokenService_VerifyRefreshToken(t *testing.T) {
	ts := NewTokenService("test-access-secret", "test-refresh-secret", 15, 10080)

	accessToken, refreshToken, _, err := ts.Generate("user-123", "test@example.com", "student")
	require.NoError(t, err)

	t.Run("valid refresh token", func(t *testing.T) {
		claims, err := ts.VerifyRefreshToken(refreshToken)

		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.UserID)
	})

	t.Run("access token rejected as refresh token", func(t *testing.T) {
		claims, err := ts.VerifyRefreshToken(accessToken)

		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		shortLived := NewTokenService("test-access-secret", "test-refresh-secret", -1, -1)

		_, expired, _, err := shortLived.Generate("user-123", "test@example.com", "student")
		require.NoError(t, err)

		claims, err := ts.VerifyRefreshToken(expired)

		assert.Error(t, err)
		assert.Nil(t, claims)
	})
}

func TestTokenService_Getters(t *testing.T) {
	accessTokenExpiry := 15 * time.Minute
	refreshTokenExpiry := 7 * 24 * time.Hour

	ts := &TokenService{
		AccessTokenExpiry:  accessTokenExpiry,
		RefreshTokenExpiry: refreshTokenExpiry,
	}

	assert.Equal(t, accessTokenExpiry, ts.GetAccessTokenExpiry())
	assert.Equal(t, refreshTokenExpiry, ts.GetRefreshTokenExpiry())
}
