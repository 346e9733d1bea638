package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/adapter/utils"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/config"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/data/redisStore"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/domain/jobModel"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/pkg/logger_i"
)

type RedisMessageStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisMessageStore(ctx context.Context) *RedisMessageStore {
	internalStore := redisStore.GetRedisStore(ctx, config.RedisMessageStore)
	if internalStore == nil {
		return nil
	}
	return &RedisMessageStore{
		store:  internalStore,
		logger: logger_i.NewLogger("MessageStore"),
	}
}

func (s *RedisMessageStore) ValidateChatId(ctx context.Context, chatId string) bool {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	isFound, err := s.store.Exists(ctx, chatId)
	if s.store.IsNil(err) {
		return false
	} else if err != nil {
		log.Error("Failed to check if chatId exists", "err", err)
		return false
	}
	return isFound
}

func (s *RedisMessageStore) TrySaveChat(ctx context.Context, id string, message jobModel.ChatMessage) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)
	if s.ValidateChatId(ctx, id) == false {
		err := errors.New("invalid chat id")
		log.Error("Failed Validation before saving", "err", err)
		return err
	}
	return s.saveChatId(ctx, id, message)
}

func (s *RedisMessageStore) saveChatId(ctx context.Context, id string, message jobModel.ChatMessage) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)
	err := s.store.ListPush(ctx, id, marshallJson(message, s.logger))
	if err != nil {
		log.Error("error saving chat", "error:", err)
	}
	return err
}

func (s *RedisMessageStore) InitNewChat(ctx context.Context, id string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)
	log.Debug("Initializing new chat")
	err := s.store.Del(ctx, id)
	if s.store.IsNil(err) {
		log.Error("Error initializing chat", "chatId", id)
	}
	return s.saveChatId(ctx, id, jobModel.ChatMessage{})
}

func marshallJson(message jobModel.ChatMessage, logger *logger_i.Logger) []byte {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Error marshalling json :", "err", err)
	}
	return data
}

func TestMessageStore(store *redisStore.Store) *RedisMessageStore {
	return &RedisMessageStore{
		store:  store,
		logger: logger_i.NewLogger("test redis messages"),
	}
}

func (s *RedisMessageStore) GetMessageHistory(ctx context.Context, chatId string) (error, []string) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	log.Debug("Getting message history")

	res, err := s.store.ListGet5PastMessage(ctx, chatId)
	if err != nil {
		log.Error("Error getting history", "error:", err)
		return err, nil
	}
	return nil, utils.ReverseStringArray(res)
}
