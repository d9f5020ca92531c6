package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"genie-chat-be/internal/config"
	"genie-chat-be/internal/dto"
	"genie-chat-be/internal/model"
	"genie-chat-be/internal/pkg/logger"
	"genie-chat-be/internal/pkg/mailer"
	"genie-chat-be/internal/pkg/serverutils"
	"genie-chat-be/internal/repository/memory"
	"genie-chat-be/internal/repository/unitofwork"
	"genie-chat-be/internal/service"
	"genie-chat-be/pkg/database"
	"genie-chat-be/pkg/events"
)

// Seeds a demo account with one conversation so the terminal client has something to open.
func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("Error: JWT_SECRET is not set")
	}

	db, err := database.Connect(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}
	if err := database.Migrate(db, model.All()...); err != nil {
		log.Fatalf("Error: %v", err)
	}

	ctx := context.Background()
	nop := logger.NewNopLogger()
	uowFactory := unitofwork.NewRepositoryFactory(db)
	tokens := serverutils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	ownership := memory.NewOwnershipCache(time.Minute)

	auth := service.NewAuthService(uowFactory, tokens, cfg.Auth.BcryptCost, mailer.NopEmailService{}, events.NopPublisher{}, nop)
	conversations := service.NewConversationService(uowFactory, ownership, events.NopPublisher{}, nop)
	messages := service.NewMessageService(uowFactory, ownership, events.NopPublisher{}, nop)

	email := getEnv("SEED_EMAIL", "demo@genie.local")
	password := getEnv("SEED_PASSWORD", "demo1234")

	log.Printf("Seeding demo user %s...", email)
	err = auth.Signup(ctx, &dto.SignupRequest{FullName: "Genie Demo", Email: email, Password: password})
	switch {
	case errors.Is(err, service.ErrDuplicateEmail):
		log.Printf("User '%s' already exists, skipping...", email)
		return
	case err != nil:
		log.Fatalf("Error creating user: %v", err)
	}

	login, err := auth.Login(ctx, &dto.LoginRequest{Email: email, Password: password})
	if err != nil {
		log.Fatalf("Error logging in: %v", err)
	}
	userId, err := tokens.Verify(login.Token)
	if err != nil {
		log.Fatalf("Error reading token: %v", err)
	}

	conversation, err := conversations.Create(ctx, userId)
	if err != nil {
		log.Fatalf("Error creating conversation: %v", err)
	}
	for _, m := range []dto.CreateMessageRequest{
		{Sender: "user", Text: "What can you help me with?"},
		{Sender: "bot", Text: "I answer questions using the documents indexed for this assistant."},
	} {
		if _, err := messages.Append(ctx, userId, conversation.Id.String(), &m); err != nil {
			log.Fatalf("Error appending message: %v", err)
		}
	}

	log.Printf("Created conversation %s", conversation.Id)
	log.Println("Seeding completed!")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
