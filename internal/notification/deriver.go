package notification

import (
	"context"
	"encoding/json"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/FloraSpot/FloraSpot-Back/internal/comment"
	"github.com/FloraSpot/FloraSpot-Back/internal/errs"
	"github.com/FloraSpot/FloraSpot-Back/internal/feed"
	"github.com/FloraSpot/FloraSpot-Back/internal/identity"
	"github.com/FloraSpot/FloraSpot-Back/internal/logs"
	"github.com/FloraSpot/FloraSpot-Back/internal/store"
)

type Kind string

const (
	KindLike    Kind = "LIKE"
	KindComment Kind = "COMMENT"
)

// fallbackActorName quand le profil de l'auteur du like est introuvable
const fallbackActorName = "Utilisateur inconnu"

// derivationConcurrency borne le fan-out par post
const derivationConcurrency = 8

// Notification : événement dérivé, jamais persisté. Régénéré à chaque
// chargement. ID composite {postID}:{actorID}:{kind} pour dédupliquer.
type Notification struct {
	ID        string `json:"id"`
	Kind      Kind   `json:"kind"`
	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name"`
	PostID    string `json:"post_id"`
	PostTitle string `json:"post_title"`
	CreatedAt int64  `json:"created_at"`
}

// Deriver croise les posts d'un utilisateur avec leurs likes et
// commentaires pour produire la liste de notifications
type Deriver struct {
	store store.Store
}

func NewDeriver(s store.Store) *Deriver {
	return &Deriver{store: s}
}

// Derive retourne les notifications de userID, triées par date décroissante.
// Un échec de la requête posts rend (nil, erreur) ; un échec sur les
// sous-données d'un post n'écarte que ce post.
func (d *Deriver) Derive(ctx context.Context, userID string) ([]Notification, error) {
	docs, err := d.store.Query(ctx, "posts", "user_id", userID)
	if err != nil {
		return nil, errs.E(errs.StoreUnavailable, "notification.Derive", "chargement des posts échoué", err)
	}

	results := make([][]Notification, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(derivationConcurrency)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			// Les erreurs par post sont absorbées ici pour que le
			// groupe se règle toujours en entier
			results[i] = d.forPost(gctx, doc, userID)
			return nil
		})
	}
	_ = g.Wait()

	merged := dedupe(results)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt > merged[j].CreatedAt
	})
	return merged, nil
}

func (d *Deriver) forPost(ctx context.Context, doc store.Document, userID string) []Notification {
	var p feed.Post
	if err := json.Unmarshal(doc.Data, &p); err != nil {
		logs.LogJSON("WARN", "Skipping unreadable post document", map[string]interface{}{
			"error": err.Error(),
			"path":  doc.Path,
		})
		return nil
	}

	var out []Notification

	likes, err := d.store.List(ctx, "likes/"+p.ID, store.ListOptions{})
	if err != nil {
		logs.LogJSON("WARN", "Like fetch failed for post", map[string]interface{}{
			"error":  err.Error(),
			"postID": p.ID,
		})
	}
	for _, likeDoc := range likes {
		var like feed.Like
		if err := json.Unmarshal(likeDoc.Data, &like); err != nil {
			continue
		}
		// Jamais de notification pour ses propres likes
		if like.UserID == userID {
			continue
		}
		out = append(out, Notification{
			ID:        p.ID + ":" + like.UserID + ":" + string(KindLike),
			Kind:      KindLike,
			ActorID:   like.UserID,
			ActorName: d.actorName(ctx, like.UserID),
			PostID:    p.ID,
			PostTitle: p.Title,
			CreatedAt: like.CreatedAt,
		})
	}

	comments, err := d.store.List(ctx, "comments/"+p.ID, store.ListOptions{})
	if err != nil {
		logs.LogJSON("WARN", "Comment fetch failed for post", map[string]interface{}{
			"error":  err.Error(),
			"postID": p.ID,
		})
	}
	for _, commentDoc := range comments {
		var cm comment.Comment
		if err := json.Unmarshal(commentDoc.Data, &cm); err != nil {
			continue
		}
		if cm.UserID == userID {
			continue
		}
		// Nom embarqué, pas de lookup ; même repli que les likes s'il manque
		actorName := cm.Username
		if actorName == "" {
			actorName = fallbackActorName
		}
		out = append(out, Notification{
			ID:        p.ID + ":" + cm.UserID + ":" + string(KindComment),
			Kind:      KindComment,
			ActorID:   cm.UserID,
			ActorName: actorName,
			PostID:    p.ID,
			PostTitle: p.Title,
			CreatedAt: cm.CreatedAt,
		})
	}

	return out
}

// actorName : lookup best-effort du nom d'affichage, jamais bloquant
// pour la dérivation
func (d *Deriver) actorName(ctx context.Context, actorID string) string {
	var u identity.User
	if err := d.store.Get(ctx, "users/"+actorID, &u); err != nil {
		logs.LogJSON("WARN", "Actor name lookup failed", map[string]interface{}{
			"error":   err.Error(),
			"actorID": actorID,
		})
		return fallbackActorName
	}
	if u.Username == "" {
		return fallbackActorName
	}
	return u.Username
}

// dedupe fusionne les résultats par ID composite en conservant l'ordre
// d'émission ; à ID égal, le timestamp le plus récent l'emporte
func dedupe(results [][]Notification) []Notification {
	var merged []Notification
	seen := make(map[string]int)
	for _, batch := range results {
		for _, n := range batch {
			if i, ok := seen[n.ID]; ok {
				if n.CreatedAt > merged[i].CreatedAt {
					merged[i] = n
				}
				continue
			}
			seen[n.ID] = len(merged)
			merged = append(merged, n)
		}
	}
	return merged
}
