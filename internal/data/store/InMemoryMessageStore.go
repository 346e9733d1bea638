package store

import (
	"context"
	"errors"
	"sync"

	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/domain/jobModel"
)

type InMemoryMessageStore struct {
	chatLock *sync.RWMutex
	chatMap  map[string][]jobModel.ChatMessage
}

func InitMessageStore() *InMemoryMessageStore {
	return &InMemoryMessageStore{
		chatLock: new(sync.RWMutex),
		chatMap:  make(map[string][]jobModel.ChatMessage),
	}
}

func (store *InMemoryMessageStore) ValidateChatId(ctx context.Context, chatId string) bool {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	_, ok := store.chatMap[chatId]
	return ok
}

func (store *InMemoryMessageStore) saveChatId(id string, message jobModel.ChatMessage) {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[id] = append(store.chatMap[id], message)
	inMemLogger.Debug(id, " : Saved message to chat store")
}

func (store *InMemoryMessageStore) TrySaveChat(ctx context.Context, id string, message jobModel.ChatMessage) error {
	//same contract as the redis store, an unknown chat is an error
	if store.ValidateChatId(ctx, id) == false {
		return errors.New("invalid chat id")
	}
	store.saveChatId(id, message)
	return nil
}

func (store *InMemoryMessageStore) InitNewChat(ctx context.Context, id string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[id] = make([]jobModel.ChatMessage, 0)
	return nil
}

func (store *InMemoryMessageStore) GetMessageHistory(ctx context.Context, chatId string) (error, []string) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()

	messages := store.chatMap[chatId]
	history := make([]string, 0, len(messages))
	for _, message := range messages {
		history = append(history, "Q: "+message.Question+"\nA: "+message.Answer)
	}
	return nil, history
}
