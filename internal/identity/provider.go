package identity

import (
	"context"

	"github.com/FloraSpot/FloraSpot-Back/internal/errs"
	"github.com/FloraSpot/FloraSpot-Back/internal/logs"
	"github.com/FloraSpot/FloraSpot-Back/internal/store"
)

// User : profil public d'un utilisateur (document users/{id})
type User struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	AvatarURL      string `json:"avatar_url"`
	Bio            string `json:"bio,omitempty"`
	CreatedAt      int64  `json:"created_at"`
	RecordCount    int    `json:"record_count"`
	FollowerCount  int    `json:"follower_count"`
	FollowingCount int    `json:"following_count"`
	IsVerified     bool   `json:"is_verified"`
}

// Provider : fournit l'identité courante de la session.
// Retourne une erreur NotAuthenticated en l'absence d'identité.
type Provider interface {
	CurrentUser(ctx context.Context) (*User, error)
}

// Static : identité fixe (tests) ou anonyme si User est nil
type Static struct {
	User *User
}

func (s Static) CurrentUser(ctx context.Context) (*User, error) {
	if s.User == nil {
		return nil, errs.E(errs.NotAuthenticated, "identity.CurrentUser", "aucun utilisateur connecté", nil)
	}
	return s.User, nil
}

// Anonymous : provider sans identité
func Anonymous() Provider {
	return Static{}
}

// storeProvider : identité déjà établie par le middleware, profil résolu
// à la demande depuis le store
type storeProvider struct {
	store  store.Store
	userID string
}

// ForUser : provider lié à un utilisateur authentifié en amont.
// userID vide = anonyme.
func ForUser(s store.Store, userID string) Provider {
	if userID == "" {
		return Anonymous()
	}
	return &storeProvider{store: s, userID: userID}
}

func (p *storeProvider) CurrentUser(ctx context.Context) (*User, error) {
	var u User
	if err := p.store.Get(ctx, "users/"+p.userID, &u); err != nil {
		// Profil absent ou store indisponible : on garde l'identité nue,
		// le nom d'affichage restera vide
		logs.LogJSON("WARN", "User profile lookup failed", map[string]interface{}{
			"error":  err.Error(),
			"userID": p.userID,
		})
		return &User{ID: p.userID}, nil
	}
	u.ID = p.userID
	return &u, nil
}
