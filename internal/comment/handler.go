package comment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FloraSpot/FloraSpot-Back/internal/errs"
	"github.com/FloraSpot/FloraSpot-Back/internal/identity"
	"github.com/FloraSpot/FloraSpot-Back/internal/logs"
	"github.com/FloraSpot/FloraSpot-Back/internal/store"
)

type Handler struct {
	adapter *Adapter
	store   store.Store
}

func NewHandler(s store.Store) *Handler {
	return &Handler{adapter: NewAdapter(s), store: s}
}

// AddComment POST /api/posts/:id/comments
func (h *Handler) AddComment(c *gin.Context) {
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

	var input struct {
		Content string `json:"content"`
	}
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide"})
		return
	}

	user, err := identity.ForUser(h.store, userID).CurrentUser(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	id, err := h.adapter.Add(c.Request.Context(), postID, user.ID, user.Username, user.AvatarURL, input.Content)
	if err != nil {
		switch errs.KindOf(err) {
		case errs.ValidationFailed:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Le commentaire ne peut pas être vide"})
		case errs.NotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Post non trouvé"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'ajout du commentaire"})
			logs.LogJSON("ERROR", "Comment creation failed", map[string]interface{}{
				"error":  err.Error(),
				"route":  route,
				"userID": userID,
				"postID": postID,
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Commentaire ajouté avec succès",
		"comment_id": id,
	})
}

// GetComments GET /api/posts/:id/comments
func (h *Handler) GetComments(c *gin.Context) {
	route := c.FullPath()
	postID := c.Param("id")

	comments, err := h.adapter.List(c.Request.Context(), postID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des commentaires"})
		logs.LogJSON("ERROR", "Comment retrieval failed", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"postID": postID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// GetCommentCount GET /api/posts/:id/comments/count
func (h *Handler) GetCommentCount(c *gin.Context) {
	route := c.FullPath()
	postID := c.Param("id")

	count, err := h.adapter.Count(c.Request.Context(), postID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du comptage des commentaires"})
		logs.LogJSON("ERROR", "Comment count failed", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"postID": postID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"post_id": postID, "comment_count": count})
}
