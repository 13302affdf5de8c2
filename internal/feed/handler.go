package feed

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/FloraSpot/FloraSpot-Back/internal/errs"
	"github.com/FloraSpot/FloraSpot-Back/internal/identity"
	"github.com/FloraSpot/FloraSpot-Back/internal/logs"
	"github.com/FloraSpot/FloraSpot-Back/internal/relevance"
	"github.com/FloraSpot/FloraSpot-Back/internal/store"
)

const (
	searchPageSize = 100
	maxPageSize    = 100
)

type Handler struct {
	store store.Store
}

func NewHandler(s store.Store) *Handler {
	return &Handler{store: s}
}

func (h *Handler) session(c *gin.Context) *Aggregator {
	return NewAggregator(h.store, identity.ForUser(h.store, c.GetString("user_id")))
}

// GetFeed GET /api/posts?limit=&before=
func (h *Handler) GetFeed(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")

	limit := pageLimit(c.Query("limit"))
	before, _ := strconv.ParseInt(c.Query("before"), 10, 64)

	agg := h.session(c)

	var posts []Post
	var err error
	if before > 0 {
		agg.Resume(before)
		posts, err = agg.LoadMore(c.Request.Context(), limit)
	} else {
		posts, err = agg.LoadFeed(c.Request.Context(), limit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération du fil"})
		logs.LogJSON("ERROR", "Feed retrieval failed", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":       posts,
		"next_cursor": agg.Cursor(),
		"exhausted":   agg.Exhausted(),
	})
}

// ToggleLike POST /api/posts/:id/like
func (h *Handler) ToggleLike(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")
	postID := c.Param("id")

	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		logs.LogJSON("WARN", "Unauthenticated user", map[string]interface{}{
			"route":  route,
			"postID": postID,
		})
		return
	}

	agg := h.session(c)
	if err := agg.Hydrate(c.Request.Context(), postID); err != nil {
		if errs.KindOf(err) == errs.NotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post non trouvé"})
			logs.LogJSON("WARN", "Post not found", map[string]interface{}{
				"route":  route,
				"userID": userID,
				"postID": postID,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur de base de données"})
		logs.LogJSON("ERROR", "Database error", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
			"postID": postID,
		})
		return
	}

	status, err := agg.ToggleLike(c.Request.Context(), postID)
	if err != nil {
		c.JSON(errs.Status(err), gin.H{"error": "Erreur lors de la bascule du like"})
		logs.LogJSON("ERROR", "Like toggle failed", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
			"postID": postID,
		})
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetLikeStatus GET /api/posts/:id/likes
func (h *Handler) GetLikeStatus(c *gin.Context) {
	route := c.FullPath()
	postID := c.Param("id")
	userID := c.GetString("user_id") // Peut être vide si non connecté

	var p Post
	if err := h.store.Get(c.Request.Context(), "posts/"+postID, &p); err != nil {
		if errs.KindOf(err) == errs.NotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post non trouvé"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur de base de données"})
		}
		logs.LogJSON("WARN", "Post lookup failed", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
			"postID": postID,
		})
		return
	}

	status, err := LikeStatusOf(c.Request.Context(), h.store, postID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur de base de données"})
		logs.LogJSON("ERROR", "Like status failed", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
			"postID": postID,
		})
		return
	}

	c.JSON(http.StatusOK, status)
}

// Search GET /api/search?q=&type=
// Classe la page courante par pertinence (interactions, fraîcheur,
// complétude de l'observation)
func (h *Handler) Search(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")
	query := c.Query("q")
	category := c.Query("type")

	agg := h.session(c)
	if _, err := agg.LoadFeed(c.Request.Context(), searchPageSize); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la recherche"})
		logs.LogJSON("ERROR", "Search retrieval failed", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	agg.FilterByType(category)
	posts := agg.SearchByText(query)

	now := time.Now()
	sort.SliceStable(posts, func(i, j int) bool {
		return postRelevance(posts[i], now) > postRelevance(posts[j], now)
	})

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// pageLimit borne la taille de page demandée par le client :
// chaque post chargé coûte des lectures de compteurs
func pageLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return DefaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

func postRelevance(p Post, now time.Time) float64 {
	return relevance.Relevance(
		int(p.LikeCount), int(p.CommentCount), 0,
		p.CreatedAt,
		p.ScientificName != "", p.MediaURL != "", p.Observation != "",
		now,
	)
}
