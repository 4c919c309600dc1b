package api

import (
	"context"
	"encoding/json"
	"net/http"

	"estatecore/internal/models"
	"estatecore/internal/web/middleware"

	"github.com/gin-gonic/gin"
)

// AutomationStore is the subset of the store the automation routes need.
type AutomationStore interface {
	ListAutomations(ctx context.Context, estateID string) ([]models.Automation, error)
	InsertAutomation(ctx context.Context, a *models.Automation) (*models.Automation, error)
}

// Enqueuer triggers an automation run through the durable queue.
type Enqueuer interface {
	EnqueueAutomation(ctx context.Context, automationID string) error
}

type addAutomationRequest struct {
	EstateID string          `json:"estate_id" binding:"required"`
	Name     string          `json:"name" binding:"required"`
	Trigger  json.RawMessage `json:"trigger" binding:"required"`
	Action   json.RawMessage `json:"action" binding:"required"`
	Enabled  bool            `json:"enabled"`
}

// RegisterAutomationRoutes mounts automation listing, creation and the
// manual trigger endpoint. Triggering only enqueues; execution happens in
// the worker.
func RegisterAutomationRoutes(r *gin.Engine, auth *middleware.AuthManager, store AutomationStore, queue Enqueuer) {
	group := r.Group("/automations")
	group.Use(auth.RequireAuth())
	{
		group.GET("", func(c *gin.Context) {
			list, err := store.ListAutomations(c.Request.Context(), c.Query("estateId"))
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch automations"})
				return
			}
			if list == nil {
				list = []models.Automation{}
			}
			c.JSON(http.StatusOK, list)
		})

		group.POST("", func(c *gin.Context) {
			var req addAutomationRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			created, err := store.InsertAutomation(c.Request.Context(), &models.Automation{
				EstateID:  req.EstateID,
				Name:      req.Name,
				Trigger:   req.Trigger,
				Action:    req.Action,
				Enabled:   req.Enabled,
				CreatedBy: c.GetString("user_id"),
			})
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create automation"})
				return
			}
			c.JSON(http.StatusOK, created)
		})

		group.POST("/:id/trigger", func(c *gin.Context) {
			if err := queue.EnqueueAutomation(c.Request.Context(), c.Param("id")); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Automation enqueued"})
		})
	}
}
