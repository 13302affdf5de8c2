package identity

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/FloraSpot/FloraSpot-Back/internal/errs"
	"github.com/FloraSpot/FloraSpot-Back/internal/logs"
	"github.com/FloraSpot/FloraSpot-Back/internal/store"
)

// TokenResolver : résout un token Bearer (JWT Supabase, HS256) en identité.
// Le profil vient du document users/{sub} ; à défaut, repli sur l'endpoint
// /auth/v1/user de Supabase.
type TokenResolver struct {
	store       store.Store
	secret      []byte
	supabaseURL string
	supabaseKey string
	client      *resty.Client
}

func NewTokenResolver(s store.Store, secret, supabaseURL, supabaseKey string) *TokenResolver {
	return &TokenResolver{
		store:       s,
		secret:      []byte(secret),
		supabaseURL: supabaseURL,
		supabaseKey: supabaseKey,
		client:      resty.New(),
	}
}

// Resolve valide le token et retourne l'utilisateur correspondant
func (r *TokenResolver) Resolve(ctx context.Context, tokenStr string) (*User, error) {
	userID, err := r.VerifyToken(tokenStr)
	if err != nil {
		return nil, err
	}

	var u User
	if err := r.store.Get(ctx, "users/"+userID, &u); err == nil {
		u.ID = userID
		return &u, nil
	}

	// Profil absent du store : repli Supabase Auth
	if r.supabaseURL != "" {
		if u, err := r.fetchSupabaseUser(ctx, tokenStr); err == nil {
			return u, nil
		} else {
			logs.LogJSON("WARN", "Supabase user fetch failed", map[string]interface{}{
				"error":  err.Error(),
				"userID": userID,
			})
		}
	}
	return &User{ID: userID}, nil
}

// VerifyToken valide la signature HS256 et extrait le claim sub
func (r *TokenResolver) VerifyToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// Vérifie que Supabase a bien utilisé HS256
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("méthode de signature invalide")
		}
		return r.secret, nil
	})
	if err != nil || !token.Valid {
		return "", errs.E(errs.NotAuthenticated, "identity.VerifyToken", "token invalide", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errs.E(errs.NotAuthenticated, "identity.VerifyToken", "claims illisibles", nil)
	}
	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", errs.E(errs.NotAuthenticated, "identity.VerifyToken", "claim sub manquant", nil)
	}
	return userID, nil
}

func (r *TokenResolver) fetchSupabaseUser(ctx context.Context, tokenStr string) (*User, error) {
	var body struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Metadata struct {
			Username  string `json:"username"`
			AvatarURL string `json:"avatar_url"`
		} `json:"user_metadata"`
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("apikey", r.supabaseKey).
		SetHeader("Authorization", "Bearer "+tokenStr).
		SetResult(&body).
		Get(r.supabaseURL + "/auth/v1/user")
	if err != nil {
		return nil, errs.E(errs.StoreUnavailable, "identity.fetchSupabaseUser", "appel Supabase échoué", err)
	}
	if resp.IsError() {
		return nil, errs.E(errs.NotAuthenticated, "identity.fetchSupabaseUser", "réponse Supabase : "+resp.Status(), nil)
	}
	return &User{
		ID:        body.ID,
		Username:  body.Metadata.Username,
		AvatarURL: body.Metadata.AvatarURL,
	}, nil
}
