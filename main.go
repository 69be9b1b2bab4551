package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"chat-app/config"
	"chat-app/controllers"
	"chat-app/models"
	"chat-app/routes"
	"chat-app/services"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.DBDSN == "" || cfg.JWTSecret == "" {
		log.Fatal("DB_DSN and JWT_SECRET must be set")
	}

	if err := config.InitDB(cfg.DBDSN); err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := models.Migrate(config.DB); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	presence := services.NewPresence()
	hub := services.NewHub(presence)

	r := routes.RegisterRoutes(&controllers.WS{
		Presence: presence,
		Hub:      hub,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Println("listening on", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server failed to start: %v", err)
	}
}
