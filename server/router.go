package server

import "github.com/gin-gonic/gin"

// NewRouter builds the gin engine with the chat endpoint mounted.
func NewRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.POST("/api/chat", handler.Chat)
	return router
}
