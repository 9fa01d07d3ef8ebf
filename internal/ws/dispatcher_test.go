package ws

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chat-backend/internal/mocks"
	"chat-backend/internal/models"
	"chat-backend/internal/repositories"
)

func TestSendMessagePersists(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	dispatcher := NewDispatcher(NewHub(), messages)
	chatID := mustChatID(t, "private_3_7")

	stored := models.Message{ID: 1, ChatID: "private_3_7", SenderID: 3, Sender: "Alice", Content: "hi"}
	messages.On("CreateMessage", mock.Anything, "private_3_7", 3, "hi", mock.Anything).Return(stored, nil).Once()

	msg, err := dispatcher.SendMessage(context.Background(), chatID, models.User{ID: 3}, "hi")
	require.NoError(t, err)
	require.Equal(t, stored, msg)
	messages.AssertExpectations(t)
}

func TestSendMessagePersistenceFailure(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	dispatcher := NewDispatcher(NewHub(), messages)
	chatID := mustChatID(t, "general")

	messages.On("CreateMessage", mock.Anything, "general", 3, "hi", mock.Anything).Return(models.Message{}, assert.AnError).Once()

	_, err := dispatcher.SendMessage(context.Background(), chatID, models.User{ID: 3}, "hi")
	require.Error(t, err)
	messages.AssertExpectations(t)
}

func TestDeleteMessageRejectsForeignSender(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	dispatcher := NewDispatcher(NewHub(), messages)
	chatID := mustChatID(t, "private_3_7")

	messages.On("GetMessage", mock.Anything, 1).Return(models.Message{ID: 1, ChatID: "private_3_7", SenderID: 3}, nil).Once()

	err := dispatcher.DeleteMessage(context.Background(), chatID, 7, 1)
	require.ErrorIs(t, err, ErrNotSender)
	messages.AssertNotCalled(t, "MarkDeleted", mock.Anything, mock.Anything)
}

func TestDeleteMessageRejectsMissingMessage(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	dispatcher := NewDispatcher(NewHub(), messages)
	chatID := mustChatID(t, "private_3_7")

	messages.On("GetMessage", mock.Anything, 99).Return(models.Message{}, repositories.ErrMessageNotFound).Once()

	err := dispatcher.DeleteMessage(context.Background(), chatID, 3, 99)
	require.ErrorIs(t, err, repositories.ErrMessageNotFound)
	messages.AssertNotCalled(t, "MarkDeleted", mock.Anything, mock.Anything)
}

func TestDeleteMessageRejectsCrossChatTarget(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	dispatcher := NewDispatcher(NewHub(), messages)
	chatID := mustChatID(t, "general")

	messages.On("GetMessage", mock.Anything, 1).Return(models.Message{ID: 1, ChatID: "private_3_7", SenderID: 3}, nil).Once()

	err := dispatcher.DeleteMessage(context.Background(), chatID, 3, 1)
	require.ErrorIs(t, err, repositories.ErrMessageNotFound)
	messages.AssertNotCalled(t, "MarkDeleted", mock.Anything, mock.Anything)
}

func TestDeleteMessageBySender(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	dispatcher := NewDispatcher(NewHub(), messages)
	chatID := mustChatID(t, "private_3_7")

	messages.On("GetMessage", mock.Anything, 1).Return(models.Message{ID: 1, ChatID: "private_3_7", SenderID: 3}, nil).Once()
	messages.On("MarkDeleted", mock.Anything, 1).Return(nil).Once()

	err := dispatcher.DeleteMessage(context.Background(), chatID, 3, 1)
	require.NoError(t, err)
	messages.AssertExpectations(t)
}

func TestKeyedMutexReleasesIdleEntries(t *testing.T) {
	var km keyedMutex
	km.lock("a")
	km.unlock("a")
	km.lock("a")
	km.unlock("a")

	km.mu.Lock()
	defer km.mu.Unlock()
	require.Empty(t, km.entries)
}
