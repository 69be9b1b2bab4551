package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"chat-app/controllers"
	"chat-app/middlewares"
)

// RegisterRoutes wires every endpoint onto a gin engine.
func RegisterRoutes(wsHandler *controllers.WS) *gin.Engine {
	r := gin.Default()

	corsConfig := cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	r.Use(cors.New(corsConfig))

	r.GET("/ws", wsHandler.Handle)

	api := r.Group("/api")
	api.POST("/auth/register", controllers.Register)
	api.POST("/auth/login", controllers.Login)

	protected := api.Group("")
	protected.Use(middlewares.TokenAuthMiddleware())
	{
		protected.POST("/auth/logout", controllers.Logout)
		protected.GET("/auth/status", controllers.Status)

		protected.GET("/contacts", controllers.ListContacts)
		protected.POST("/contacts/add", controllers.AddContact)
		protected.DELETE("/contacts/remove/:user_id", controllers.RemoveContact)

		protected.GET("/chats", controllers.GetConversations)
		protected.POST("/chats/create", controllers.CreateConversation)
		protected.GET("/chats/:conversation_id/messages", controllers.GetConversationMessages)
	}

	return r
}
