package comment

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FloraSpot/FloraSpot-Back/internal/errs"
	"github.com/FloraSpot/FloraSpot-Back/internal/store"
)

// Adapter : accès aux commentaires d'un post
type Adapter struct {
	store store.Store
}

func NewAdapter(s store.Store) *Adapter {
	return &Adapter{store: s}
}

// Add valide puis écrit un commentaire sous comments/{postID}/{id}.
// Le texte vide est rejeté avant tout appel au store.
func (a *Adapter) Add(ctx context.Context, postID, userID, username, avatarURL, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", errs.E(errs.ValidationFailed, "comment.Add", "commentaire vide", nil)
	}
	if userID == "" {
		return "", errs.E(errs.NotAuthenticated, "comment.Add", "utilisateur non authentifié", nil)
	}

	var exists struct {
		ID string `json:"id"`
	}
	if err := a.store.Get(ctx, "posts/"+postID, &exists); err != nil {
		if errs.KindOf(err) == errs.NotFound {
			return "", errs.E(errs.NotFound, "comment.Add", "post non trouvé : "+postID, nil)
		}
		return "", errs.E(errs.StoreUnavailable, "comment.Add", "vérification du post échouée", err)
	}

	id := uuid.New().String()
	cm := Comment{
		ID:        id,
		PostID:    postID,
		UserID:    userID,
		Username:  username,
		AvatarURL: avatarURL,
		Content:   content,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := a.store.Write(ctx, "comments/"+postID+"/"+id, cm); err != nil {
		return "", errs.E(errs.StoreUnavailable, "comment.Add", "écriture du commentaire échouée", err)
	}
	return id, nil
}

// List retourne les commentaires dans l'ordre rendu par le store
func (a *Adapter) List(ctx context.Context, postID string) ([]Comment, error) {
	docs, err := a.store.List(ctx, "comments/"+postID, store.ListOptions{})
	if err != nil {
		return nil, errs.E(errs.StoreUnavailable, "comment.List", "lecture des commentaires échouée", err)
	}

	comments := make([]Comment, 0, len(docs))
	for _, doc := range docs {
		var cm Comment
		if err := json.Unmarshal(doc.Data, &cm); err != nil {
			continue
		}
		comments = append(comments, cm)
	}
	return comments, nil
}

// Count : agrégat direct du store, pas de compteur maintenu à part
func (a *Adapter) Count(ctx context.Context, postID string) (int64, error) {
	n, err := a.store.Count(ctx, "comments/"+postID)
	if err != nil {
		return 0, errs.E(errs.StoreUnavailable, "comment.Count", "comptage des commentaires échoué", err)
	}
	return n, nil
}
