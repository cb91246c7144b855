package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/repository/specification"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDB(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.ThreadRepository())
	assert.NotNil(t, uow.TurnRepository())
	assert.NotNil(t, uow.MemoryEmbeddingRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check Thread Repository", func(t *testing.T) {
		count, err := uow.ThreadRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Thread count: %d", count)
	})

	t.Run("Check Memory Embedding Repository", func(t *testing.T) {
		// Count implies the table and vector column exist
		count, err := uow.MemoryEmbeddingRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("MemoryEmbedding count: %d", count)
	})

	t.Run("Thread And Turn Round Trip", func(t *testing.T) {
		ctx := context.Background()
		userId := uuid.New()

		thread := &entity.Thread{
			Id:        uuid.New(),
			Title:     "integration test thread",
			UserId:    userId,
			CreatedAt: time.Now(),
		}
		require.NoError(t, uow.ThreadRepository().Create(ctx, thread))
		defer func() {
			_ = uow.TurnRepository().DeleteByThreadId(ctx, thread.Id)
			_ = uow.ThreadRepository().Delete(ctx, thread.Id)
		}()

		completion := 2.5
		turn := &entity.Turn{
			Id:                    uuid.New(),
			ThreadId:              thread.Id,
			Query:                 "what is in my notes",
			Reply:                 "nothing yet",
			CompletionTimeSeconds: &completion,
			CreatedAt:             time.Now(),
		}
		require.NoError(t, uow.TurnRepository().Create(ctx, turn))

		loaded, err := uow.TurnRepository().FindAll(ctx, specification.ByThreadID{ThreadID: thread.Id})
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.Equal(t, "what is in my notes", loaded[0].Query)
		require.NotNil(t, loaded[0].CompletionTimeSeconds)
		assert.InDelta(t, 2.5, *loaded[0].CompletionTimeSeconds, 1e-9)
	})
}
