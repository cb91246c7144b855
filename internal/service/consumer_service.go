package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/repository/specification"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/pkg/embedding"
	"ai-assistant-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService embeds persisted turns into the memory store off the
// request path.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedTurnMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing memory embedding for TurnId: %s", payload.TurnId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	turn, err := uow.TurnRepository().FindOne(ctx, specification.ByID{ID: payload.TurnId})
	if err != nil {
		log.Printf("[ERROR] Failed to get turn %s: %v", payload.TurnId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if turn == nil {
		log.Printf("[ERROR] Turn not found: %s", payload.TurnId)
		msg.Ack() // Turn deleted? Ack.
		return
	}

	thread, err := uow.ThreadRepository().FindOne(ctx, specification.ByID{ID: turn.ThreadId})
	if err != nil {
		log.Printf("[ERROR] Failed to get thread %s: %v", turn.ThreadId, err)
		msg.Nack()
		return
	}
	if thread == nil {
		log.Printf("[ERROR] Thread not found for turn %s", turn.Id)
		msg.Ack()
		return
	}

	content := fmt.Sprintf(`Question: %s

Answer: %s

Asked At: %s`,
		turn.Query,
		turn.Reply,
		turn.CreatedAt.Format(time.RFC3339),
	)

	// ChunkSize: 1500 chars (approx 375 tokens), overlap 200 chars
	chunks := utils.SplitText(content, 1500, 200)
	log.Printf("[INFO] Turn content split into %d chunks", len(chunks))

	vectors, err := cs.embeddingProvider.GenerateBatch(ctx, chunks, embedding.TaskRetrievalDocument)
	if err != nil {
		log.Printf("[ERROR] Failed to generate embeddings for turn %s: %v", payload.TurnId, err)
		msg.Nack()
		return
	}
	if len(vectors) != len(chunks) {
		log.Printf("[ERROR] Embedding count mismatch for turn %s: %d chunks, %d vectors", payload.TurnId, len(chunks), len(vectors))
		msg.Nack()
		return
	}

	newEmbeddings := make([]*entity.MemoryEmbedding, len(chunks))
	for i, chunk := range chunks {
		newEmbeddings[i] = &entity.MemoryEmbedding{
			Id:             uuid.New(),
			Document:       chunk,
			EmbeddingValue: vectors[i],
			TurnId:         turn.Id,
			UserId:         thread.UserId,
			ChunkIndex:     i,
			CreatedAt:      time.Now(),
		}
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	// Replays of the same message must not duplicate memories.
	if err := uow.MemoryEmbeddingRepository().DeleteByTurnId(ctx, turn.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old embeddings: %v", err)
		msg.Nack()
		return
	}

	if len(newEmbeddings) > 0 {
		if err := uow.MemoryEmbeddingRepository().CreateBulk(ctx, newEmbeddings); err != nil {
			log.Printf("[ERROR] Failed to create bulk embeddings: %v", err)
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Turn processed: %d chunks for TurnId: %s", len(newEmbeddings), payload.TurnId)
	msg.Ack()
}
