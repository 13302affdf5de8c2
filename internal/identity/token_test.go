package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/FloraSpot/FloraSpot-Back/internal/errs"
	"github.com/FloraSpot/FloraSpot-Back/internal/store"
)

const testSecret = "secret-de-test"

func signToken(t *testing.T, secret, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func TestVerifyToken(t *testing.T) {
	resolver := NewTokenResolver(store.NewMemory(), testSecret, "", "")

	t.Run("Valid token yields sub claim", func(t *testing.T) {
		userID, err := resolver.VerifyToken(signToken(t, testSecret, "u1"))
		assert.NoError(t, err)
		assert.Equal(t, "u1", userID)
	})

	t.Run("Wrong secret rejected", func(t *testing.T) {
		_, err := resolver.VerifyToken(signToken(t, "autre-secret", "u1"))
		assert.Error(t, err)
		assert.Equal(t, errs.NotAuthenticated, errs.KindOf(err))
	})

	t.Run("Garbage token rejected", func(t *testing.T) {
		_, err := resolver.VerifyToken("pas-un-jwt")
		assert.Error(t, err)
		assert.Equal(t, errs.NotAuthenticated, errs.KindOf(err))
	})
}

func TestResolveUsesStoredProfile(t *testing.T) {
	ms := store.NewMemory()
	err := ms.Write(context.Background(), "users/u1", User{
		ID:       "u1",
		Username: "lea_botanique",
	})
	assert.NoError(t, err)

	resolver := NewTokenResolver(ms, testSecret, "", "")
	user, err := resolver.Resolve(context.Background(), signToken(t, testSecret, "u1"))
	assert.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "lea_botanique", user.Username)
}

func TestResolveWithoutProfileKeepsBareIdentity(t *testing.T) {
	// Pas de profil ni d'endpoint Supabase : identité nue
	resolver := NewTokenResolver(store.NewMemory(), testSecret, "", "")
	user, err := resolver.Resolve(context.Background(), signToken(t, testSecret, "u2"))
	assert.NoError(t, err)
	assert.Equal(t, "u2", user.ID)
	assert.Empty(t, user.Username)
}

func TestStaticProvider(t *testing.T) {
	user, err := Static{User: &User{ID: "u1"}}.CurrentUser(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = Anonymous().CurrentUser(context.Background())
	assert.Error(t, err)
	assert.Equal(t, errs.NotAuthenticated, errs.KindOf(err))
}

func TestForUser(t *testing.T) {
	ms := store.NewMemory()
	err := ms.Write(context.Background(), "users/u1", User{Username: "lea"})
	assert.NoError(t, err)

	user, err := ForUser(ms, "u1").CurrentUser(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "lea", user.Username)

	// Profil absent : identité nue, pas d'erreur
	user, err = ForUser(ms, "u2").CurrentUser(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "u2", user.ID)

	_, err = ForUser(ms, "").CurrentUser(context.Background())
	assert.Error(t, err)
}
