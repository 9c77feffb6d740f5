package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockRedis(t *testing.T) (*miniredis.Miniredis, *RedisDenylist) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRedisDenylist(client)
}

func setupRouter(denylist Denylist) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(denylist), func(c *gin.Context) {
		id, ok := GetUserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, id.String())
	})
	return r
}

func doRequest(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateAndValidateToken(t *testing.T) {
	InitJWT("test_secret", time.Hour)
	userID := uuid.New()

	token, expires, err := GenerateToken(userID, "alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice", claims.Name)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	InitJWT("test_secret", time.Hour)
	token, _, err := GenerateToken(uuid.New(), "alice")
	require.NoError(t, err)

	InitJWT("other_secret", time.Hour)
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	InitJWT("test_secret", time.Hour)
	claims := &Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test_secret"))
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	InitJWT("test_secret", time.Hour)
	_, denylist := setupMockRedis(t)
	r := setupRouter(denylist)

	userID := uuid.New()
	token, _, err := GenerateToken(userID, "bob")
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doRequest(r, "Token "+token).Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w := doRequest(r, "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userID.String(), w.Body.String())
	})

	t.Run("revoked token", func(t *testing.T) {
		claims, err := ValidateToken(token)
		require.NoError(t, err)
		require.NoError(t, denylist.Revoke(context.Background(), claims.ID, time.Hour))

		assert.Equal(t, http.StatusUnauthorized, doRequest(r, "Bearer "+token).Code)
	})
}

func TestAuthMiddlewareDenylistUnavailable(t *testing.T) {
	InitJWT("test_secret", time.Hour)
	mr, denylist := setupMockRedis(t)
	r := setupRouter(denylist)

	token, _, err := GenerateToken(uuid.New(), "carol")
	require.NoError(t, err)

	mr.Close()
	assert.Equal(t, http.StatusInternalServerError, doRequest(r, "Bearer "+token).Code)
}

func TestRedisDenylistExpires(t *testing.T) {
	mr, denylist := setupMockRedis(t)
	ctx := context.Background()

	require.NoError(t, denylist.Revoke(ctx, "jti-1", time.Minute))
	revoked, err := denylist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = denylist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}
