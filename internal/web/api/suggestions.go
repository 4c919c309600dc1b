package api

import (
	"errors"
	"net/http"

	"estatecore/internal/models"
	"estatecore/internal/suggestions"
	"estatecore/internal/web/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterSuggestionRoutes mounts the operator-facing suggestion lifecycle.
func RegisterSuggestionRoutes(r *gin.Engine, auth *middleware.AuthManager, svc *suggestions.Service) {
	group := r.Group("/suggestions")
	group.Use(auth.RequireAuth())
	{
		group.GET("", func(c *gin.Context) {
			estateID := c.Query("estateId")
			if estateID == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Missing estateId"})
				return
			}
			list, err := svc.List(c.Request.Context(), estateID, c.Query("status"))
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch suggestions"})
				return
			}
			if list == nil {
				list = []models.Suggestion{}
			}
			c.JSON(http.StatusOK, list)
		})

		group.POST("/:id/accept", func(c *gin.Context) {
			resolved, err := svc.Accept(c.Request.Context(), c.Param("id"))
			if err != nil {
				if errors.Is(err, suggestions.ErrNotFound) {
					c.JSON(http.StatusNotFound, gin.H{"error": "Suggestion not found or already resolved"})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept suggestion"})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"ok":        true,
				"action":    resolved.Action,
				"device_id": resolved.DeviceID,
			})
		})

		group.POST("/:id/dismiss", func(c *gin.Context) {
			_, err := svc.Dismiss(c.Request.Context(), c.Param("id"))
			if err != nil {
				if errors.Is(err, suggestions.ErrNotFound) {
					c.JSON(http.StatusNotFound, gin.H{"error": "Suggestion not found or already resolved"})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to dismiss suggestion"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
	}
}
