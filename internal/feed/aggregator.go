package feed

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/FloraSpot/FloraSpot-Back/internal/errs"
	"github.com/FloraSpot/FloraSpot-Back/internal/identity"
	"github.com/FloraSpot/FloraSpot-Back/internal/logs"
	"github.com/FloraSpot/FloraSpot-Back/internal/store"
)

const DefaultPageSize = 20

// Aggregator : session de fil paginée. Possède la collection de posts en
// mémoire, le curseur de pagination et les filtres actifs pour la durée
// d'une session ; reconstruit à chaque refresh. Un seul writer par session.
type Aggregator struct {
	store    store.Store
	identity identity.Provider

	mu         sync.Mutex
	posts      []Post
	cursor     int64 // created_at du dernier post chargé, 0 = début
	exhausted  bool
	typeFilter string
	textFilter string
	generation uint64 // invalide les résultats de fetch périmés

	fetchMu sync.Mutex // au plus un fetch de page en vol

	likeMu    sync.Mutex
	likeLocks map[string]*sync.Mutex // sérialise les toggles par (post, user)
}

func NewAggregator(s store.Store, p identity.Provider) *Aggregator {
	return &Aggregator{
		store:     s,
		identity:  p,
		likeLocks: make(map[string]*sync.Mutex),
	}
}

// LoadFeed remplace entièrement la collection par la première page
func (a *Aggregator) LoadFeed(ctx context.Context, limit int) ([]Post, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	a.mu.Lock()
	a.generation++
	gen := a.generation
	a.mu.Unlock()

	a.fetchMu.Lock()
	defer a.fetchMu.Unlock()

	page, raw, err := a.fetchPage(ctx, 0, limit)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.generation != gen {
		// Un refresh plus récent a pris la main : résultat abandonné
		return nil, nil
	}
	a.posts = append(a.posts[:0:0], page...)
	a.advanceCursor(raw, limit)
	return a.visibleLocked(), nil
}

// LoadMore ajoute la page strictement plus ancienne que le curseur.
// Sans effet (et sans fetch) une fois la pagination épuisée.
func (a *Aggregator) LoadMore(ctx context.Context, limit int) ([]Post, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	a.mu.Lock()
	gen := a.generation
	cursor := a.cursor
	exhausted := a.exhausted
	a.mu.Unlock()

	if exhausted {
		return nil, nil
	}

	a.fetchMu.Lock()
	defer a.fetchMu.Unlock()

	a.mu.Lock()
	if a.generation != gen {
		// La session a été réinitialisée pendant l'attente
		a.mu.Unlock()
		return nil, nil
	}
	cursor = a.cursor
	exhausted = a.exhausted
	a.mu.Unlock()
	if exhausted {
		return nil, nil
	}

	page, raw, err := a.fetchPage(ctx, cursor, limit)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.generation != gen {
		return nil, nil
	}
	a.posts = append(a.posts, page...)
	a.advanceCursor(raw, limit)
	return append([]Post(nil), page...), nil
}

// Refresh repart du début sans toucher aux filtres actifs
func (a *Aggregator) Refresh(ctx context.Context, limit int) ([]Post, error) {
	return a.LoadFeed(ctx, limit)
}

// Resume reprend une session au curseur donné (pagination côté client)
func (a *Aggregator) Resume(cursor int64) {
	a.mu.Lock()
	a.cursor = cursor
	a.exhausted = false
	a.mu.Unlock()
}

// advanceCursor : appelé sous mu. L'épuisement se juge sur le nombre de
// documents rendus par le store, pas sur le nombre décodé : une page
// pleine contenant un document corrompu ne doit pas couper la pagination
func (a *Aggregator) advanceCursor(docs []store.Document, limit int) {
	if len(docs) > 0 {
		a.cursor = docCreatedAt(docs[len(docs)-1])
	}
	a.exhausted = len(docs) < limit
}

func docCreatedAt(doc store.Document) int64 {
	var ts struct {
		CreatedAt int64 `json:"created_at"`
	}
	if err := json.Unmarshal(doc.Data, &ts); err != nil {
		return 0
	}
	return ts.CreatedAt
}

func (a *Aggregator) fetchPage(ctx context.Context, before int64, limit int) ([]Post, []store.Document, error) {
	docs, err := a.store.List(ctx, "posts", store.ListOptions{Before: before, Limit: limit})
	if err != nil {
		return nil, nil, errs.E(errs.StoreUnavailable, "feed.fetchPage", "chargement du fil échoué", err)
	}

	viewerID := ""
	if user, err := a.identity.CurrentUser(ctx); err == nil {
		viewerID = user.ID
	}

	page := make([]Post, 0, len(docs))
	for _, doc := range docs {
		var p Post
		if err := json.Unmarshal(doc.Data, &p); err != nil {
			logs.LogJSON("WARN", "Skipping unreadable post document", map[string]interface{}{
				"error": err.Error(),
				"path":  doc.Path,
			})
			continue
		}
		a.decorate(ctx, &p, viewerID)
		page = append(page, p)
	}
	return page, docs, nil
}

// decorate dérive like_count / comment_count / is_liked pour le viewer.
// Un échec ici laisse les compteurs à zéro et n'interrompt pas la page.
func (a *Aggregator) decorate(ctx context.Context, p *Post, viewerID string) {
	status, err := LikeStatusOf(ctx, a.store, p.ID, viewerID)
	if err != nil {
		logs.LogJSON("WARN", "Like status lookup failed", map[string]interface{}{
			"error":  err.Error(),
			"postID": p.ID,
		})
	} else {
		p.LikeCount = status.LikeCount
		p.IsLiked = status.IsLiked
	}

	count, err := a.store.Count(ctx, "comments/"+p.ID)
	if err != nil {
		logs.LogJSON("WARN", "Comment count lookup failed", map[string]interface{}{
			"error":  err.Error(),
			"postID": p.ID,
		})
		return
	}
	p.CommentCount = count
}

// FilterByType restreint la vue à une catégorie ("" = toutes)
func (a *Aggregator) FilterByType(category string) []Post {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.typeFilter = category
	return a.visibleLocked()
}

// SearchByText filtre la vue par sous-chaîne, insensible à la casse,
// sur le titre, la description et le nom d'auteur
func (a *Aggregator) SearchByText(query string) []Post {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.textFilter = strings.TrimSpace(query)
	return a.visibleLocked()
}

// Visible : intersection des filtres actifs, toujours recalculée depuis
// la collection complète pour que lever un filtre restaure les posts
// déjà chargés sans re-fetch
func (a *Aggregator) Visible() []Post {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.visibleLocked()
}

func (a *Aggregator) visibleLocked() []Post {
	out := make([]Post, 0, len(a.posts))
	needle := strings.ToLower(a.textFilter)
	for _, p := range a.posts {
		if a.typeFilter != "" && p.Category != a.typeFilter {
			continue
		}
		if needle != "" && !matchesText(p, needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesText(p Post, needle string) bool {
	return strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) ||
		strings.Contains(strings.ToLower(p.Username), needle)
}

// Cursor : position de pagination courante (0 = début)
func (a *Aggregator) Cursor() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cursor
}

// Exhausted : vrai quand la dernière page était incomplète
func (a *Aggregator) Exhausted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.exhausted
}

// Hydrate charge un post précis dans la session s'il n'y est pas déjà
func (a *Aggregator) Hydrate(ctx context.Context, postID string) error {
	a.mu.Lock()
	if a.indexOfLocked(postID) >= 0 {
		a.mu.Unlock()
		return nil
	}
	a.mu.Unlock()

	var p Post
	if err := a.store.Get(ctx, "posts/"+postID, &p); err != nil {
		if errs.KindOf(err) == errs.NotFound {
			return errs.E(errs.NotFound, "feed.Hydrate", "post non trouvé : "+postID, nil)
		}
		return errs.E(errs.StoreUnavailable, "feed.Hydrate", "chargement du post échoué", err)
	}

	viewerID := ""
	if user, err := a.identity.CurrentUser(ctx); err == nil {
		viewerID = user.ID
	}
	a.decorate(ctx, &p, viewerID)

	a.mu.Lock()
	if a.indexOfLocked(postID) < 0 {
		a.posts = append(a.posts, p)
	}
	a.mu.Unlock()
	return nil
}

// ToggleLike bascule le like du viewer sur un post : mutation optimiste
// de la collection en mémoire, écriture dans le store, restauration de
// l'instantané pré-bascule si l'écriture échoue
func (a *Aggregator) ToggleLike(ctx context.Context, postID string) (*LikeStatus, error) {
	user, err := a.identity.CurrentUser(ctx)
	if err != nil {
		return nil, errs.E(errs.NotAuthenticated, "feed.ToggleLike", "utilisateur non authentifié", err)
	}

	// Sérialise les doubles toggles sur le même couple (post, user) :
	// le dernier appelant l'emporte
	lock := a.likeLock(postID + "/" + user.ID)
	lock.Lock()
	defer lock.Unlock()

	// Phase 1 : bascule optimiste, remplacement atomique de l'entrée
	a.mu.Lock()
	idx := a.indexOfLocked(postID)
	if idx < 0 {
		a.mu.Unlock()
		return nil, errs.E(errs.NotFound, "feed.ToggleLike", "post absent de la session : "+postID, nil)
	}
	snapshot := a.posts[idx]
	updated := snapshot
	if snapshot.IsLiked {
		updated.IsLiked = false
		if updated.LikeCount > 0 {
			updated.LikeCount--
		}
	} else {
		updated.IsLiked = true
		updated.LikeCount++
	}
	a.posts[idx] = updated
	a.mu.Unlock()

	// Phase 2 : effet distant
	path := "likes/" + postID + "/" + user.ID
	var storeErr error
	if updated.IsLiked {
		storeErr = a.store.Write(ctx, path, Like{
			UserID:    user.ID,
			PostID:    postID,
			CreatedAt: time.Now().UnixMilli(),
		})
	} else {
		storeErr = a.store.Delete(ctx, path)
	}

	if storeErr != nil {
		// Rollback : l'état optimiste n'était pas durable
		a.mu.Lock()
		if idx := a.indexOfLocked(postID); idx >= 0 {
			a.posts[idx] = snapshot
		}
		a.mu.Unlock()
		logs.LogJSON("ERROR", "Like toggle write failed", map[string]interface{}{
			"error":  storeErr.Error(),
			"postID": postID,
			"userID": user.ID,
		})
		return nil, errs.E(errs.StoreUnavailable, "feed.ToggleLike", "écriture du like échouée", storeErr)
	}

	return &LikeStatus{PostID: postID, LikeCount: updated.LikeCount, IsLiked: updated.IsLiked}, nil
}

func (a *Aggregator) likeLock(key string) *sync.Mutex {
	a.likeMu.Lock()
	defer a.likeMu.Unlock()
	lock, ok := a.likeLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		a.likeLocks[key] = lock
	}
	return lock
}

// indexOfLocked : appelé sous mu
func (a *Aggregator) indexOfLocked(postID string) int {
	for i := range a.posts {
		if a.posts[i].ID == postID {
			return i
		}
	}
	return -1
}

// LikeStatusOf dérive compteur et état de like d'un post depuis le store.
// viewerID vide = viewer anonyme, is_liked reste faux.
func LikeStatusOf(ctx context.Context, s store.Store, postID, viewerID string) (LikeStatus, error) {
	count, err := s.Count(ctx, "likes/"+postID)
	if err != nil {
		return LikeStatus{}, err
	}

	isLiked := false
	if viewerID != "" {
		var like Like
		if err := s.Get(ctx, "likes/"+postID+"/"+viewerID, &like); err == nil {
			isLiked = true
		}
	}

	return LikeStatus{PostID: postID, LikeCount: count, IsLiked: isLiked}, nil
}
