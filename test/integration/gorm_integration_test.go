// FILE: test/integration/gorm_integration_test.go
package integration

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"genie-chat-be/internal/dto"
	"genie-chat-be/internal/entity"
	"genie-chat-be/internal/model"
	"genie-chat-be/internal/pkg/logger"
	"genie-chat-be/internal/repository/memory"
	"genie-chat-be/internal/repository/specification"
	"genie-chat-be/internal/repository/unitofwork"
	"genie-chat-be/internal/service"
	"genie-chat-be/pkg/database"
	"genie-chat-be/pkg/events"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresConversationStore(t *testing.T) {
	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(gormDB, model.All()...))

	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)

	user := &entity.User{
		Id:           uuid.New(),
		FullName:     "Integration",
		Email:        uuid.NewString() + "@integration.test",
		PasswordHash: "x",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, uowFactory.NewUnitOfWork(ctx).UserRepository().Create(ctx, user))
	t.Cleanup(func() {
		gormDB.Where("id = ?", user.Id).Delete(&model.User{})
	})

	nop := logger.NewNopLogger()
	ownership := memory.NewOwnershipCache(time.Minute)
	conversations := service.NewConversationService(uowFactory, ownership, events.NopPublisher{}, nop)
	messages := service.NewMessageService(uowFactory, ownership, events.NopPublisher{}, nop)

	created, err := conversations.Create(ctx, user.Id)
	require.NoError(t, err)

	// Row locks on the conversation serialise concurrent appends.
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := messages.Append(ctx, user.Id, created.Id.String(), &dto.CreateMessageRequest{Text: "ping", Sender: "user"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	loaded, err := uowFactory.NewUnitOfWork(ctx).ConversationRepository().FindOne(ctx,
		specification.ByID{ID: created.Id},
		specification.WithMessages{},
	)
	require.NoError(t, err)
	require.Len(t, loaded.Messages, 11)
	for i, m := range loaded.Messages {
		assert.Equal(t, i+1, m.Position)
	}
}
