package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FloraSpot/FloraSpot-Back/internal/logs"
	"github.com/FloraSpot/FloraSpot-Back/internal/store"
)

type Handler struct {
	deriver *Deriver
}

func NewHandler(s store.Store) *Handler {
	return &Handler{deriver: NewDeriver(s)}
}

// GetNotifications GET /api/notifications
func (h *Handler) GetNotifications(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")

	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		logs.LogJSON("WARN", "Unauthenticated user", map[string]interface{}{
			"route": route,
		})
		return
	}

	notifications, err := h.deriver.Derive(c.Request.Context(), userID)
	if err != nil {
		// Résultat vide + erreur signalée : jamais de liste partielle
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des notifications"})
		logs.LogJSON("ERROR", "Notification derivation failed", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}
