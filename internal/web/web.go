package web

import (
	"net/http"

	"estatecore/internal/db"
	"estatecore/internal/realtime"
	"estatecore/internal/suggestions"
	"estatecore/internal/taskqueue"
	"estatecore/internal/web/api"
	"estatecore/internal/web/middleware"

	"github.com/gin-gonic/gin"
)

type WebServer struct {
	router *gin.Engine
}

func NewWebServer(
	dbConn *db.DB,
	hub *realtime.Hub,
	suggestionSvc *suggestions.Service,
	queue *taskqueue.Client,
	jwtSecret string,
) *WebServer {
	router := gin.Default()

	auth := middleware.NewAuthManager(jwtSecret)

	api.RegisterSuggestionRoutes(router, auth, suggestionSvc)
	api.RegisterAutomationRoutes(router, auth, dbConn, queue)

	router.GET("/ws", hub.ServeWS)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return &WebServer{router: router}
}

func (ws *WebServer) Start(addr string) error {
	return ws.router.Run(addr)
}
