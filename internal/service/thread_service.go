package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/repository/specification"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/pkg/events"
	pktNats "ai-assistant-be/pkg/nats"
)

const threadTitleMaxLen = 50

type IThreadService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateThreadRequest) (*dto.CreateThreadResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetThreadsResponse, error)
	GetTurns(ctx context.Context, userId uuid.UUID, threadId uuid.UUID) ([]*dto.GetTurnsResponse, error)
	PersistTurn(ctx context.Context, userId uuid.UUID, threadId uuid.UUID, req *dto.PersistTurnRequest) (*dto.PersistTurnResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, threadId uuid.UUID) error
}

type threadService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
}

func NewThreadService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
) IThreadService {
	return &threadService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
	}
}

func (s *threadService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateThreadRequest) (*dto.CreateThreadResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	thread := entity.Thread{
		Id:        uuid.New(),
		Title:     titleFromMessage(req.FirstMessage),
		UserId:    userId,
		CreatedAt: time.Now(),
	}

	if err := uow.ThreadRepository().Create(ctx, &thread); err != nil {
		return nil, err
	}

	return &dto.CreateThreadResponse{
		Id:    thread.Id,
		Title: thread.Title,
	}, nil
}

func (s *threadService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetThreadsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	threads, err := uow.ThreadRepository().FindAll(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetThreadsResponse, len(threads))
	for i, t := range threads {
		res[i] = &dto.GetThreadsResponse{
			Id:        t.Id,
			Title:     t.Title,
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
		}
	}
	return res, nil
}

func (s *threadService) GetTurns(ctx context.Context, userId uuid.UUID, threadId uuid.UUID) ([]*dto.GetTurnsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	thread, err := s.findOwnedThread(ctx, uow, userId, threadId)
	if err != nil {
		return nil, err
	}

	turns, err := uow.TurnRepository().FindAll(ctx,
		specification.ByThreadID{ThreadID: thread.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetTurnsResponse, len(turns))
	for i, t := range turns {
		res[i] = &dto.GetTurnsResponse{
			Id:                    t.Id,
			Query:                 t.Query,
			Reply:                 t.Reply,
			Sources:               t.Sources,
			CompletionTimeSeconds: t.CompletionTimeSeconds,
			CreatedAt:             t.CreatedAt,
		}
	}
	return res, nil
}

// PersistTurn finalizes one streamed exchange. The turn is written once;
// the memory-embedding job and the bus event fan out after the write and
// never fail the request.
func (s *threadService) PersistTurn(ctx context.Context, userId uuid.UUID, threadId uuid.UUID, req *dto.PersistTurnRequest) (*dto.PersistTurnResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	thread, err := s.findOwnedThread(ctx, uow, userId, threadId)
	if err != nil {
		return nil, err
	}

	turn := entity.Turn{
		Id:                    uuid.New(),
		ThreadId:              thread.Id,
		Query:                 req.Query,
		Reply:                 req.Reply,
		Sources:               req.Sources,
		CompletionTimeSeconds: req.CompletionTimeSeconds,
		CreatedAt:             time.Now(),
	}

	if err := uow.TurnRepository().Create(ctx, &turn); err != nil {
		return nil, err
	}

	msgPayload := dto.PublishEmbedTurnMessage{TurnId: turn.Id}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		fmt.Printf("[WARN] Failed to publish embed-turn message: %v\n", err)
	}

	if s.eventPublisher != nil {
		evt := events.NewTurnCompletedEvent(turn.Id, thread.Id, userId, len(turn.Sources), turn.CompletionTimeSeconds)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish %s event: %v\n", events.EventTypeTurnCompleted, err)
		}
	}

	return &dto.PersistTurnResponse{Id: turn.Id}, nil
}

func (s *threadService) Delete(ctx context.Context, userId uuid.UUID, threadId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	thread, err := s.findOwnedThread(ctx, uow, userId, threadId)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.MemoryEmbeddingRepository().DeleteByThreadId(ctx, thread.Id); err != nil {
		return err
	}
	if err := uow.TurnRepository().DeleteByThreadId(ctx, thread.Id); err != nil {
		return err
	}
	if err := uow.ThreadRepository().Delete(ctx, thread.Id); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *threadService) findOwnedThread(ctx context.Context, uow unitofwork.UnitOfWork, userId, threadId uuid.UUID) (*entity.Thread, error) {
	thread, err := uow.ThreadRepository().FindOne(ctx,
		specification.ByID{ID: threadId},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Thread not found")
	}
	return thread, nil
}

func titleFromMessage(message string) string {
	title := strings.Join(strings.Fields(message), " ")
	if len(title) > threadTitleMaxLen {
		title = strings.TrimSpace(title[:threadTitleMaxLen]) + "..."
	}
	if title == "" {
		title = "New thread"
	}
	return title
}
