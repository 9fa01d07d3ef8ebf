package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chat-backend/internal/chat"
	"chat-backend/internal/mocks"
	"chat-backend/internal/models"
	"chat-backend/internal/repositories"
	"chat-backend/internal/ws"
)

type chatFixture struct {
	friends  *mocks.FriendRepositoryMock
	groups   *mocks.GroupRepositoryMock
	messages *mocks.MessageRepositoryMock
	router   *gin.Engine
}

func newChatFixture(userID int) *chatFixture {
	gin.SetMode(gin.TestMode)

	f := &chatFixture{
		friends:  new(mocks.FriendRepositoryMock),
		groups:   new(mocks.GroupRepositoryMock),
		messages: new(mocks.MessageRepositoryMock),
	}

	authorizer := chat.NewAuthorizer(f.groups)
	dispatcher := ws.NewDispatcher(ws.NewHub(), f.messages)
	handler := NewChatHandler(f.friends, f.groups, f.messages, authorizer, dispatcher)

	f.router = gin.New()
	f.router.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	f.router.GET("/chats/list", handler.ListChats)
	f.router.GET("/messages/:chat_id", handler.GetMessages)
	f.router.POST("/messages/delete", handler.DeleteMessage)
	return f
}

func TestListChatsIncludesGeneralFriendsAndGroups(t *testing.T) {
	f := newChatFixture(3)

	f.friends.On("ListFriends", mock.Anything, 3).Return([]models.UserSummary{{ID: 7, Username: "bob", DisplayName: "Bob"}}, nil).Once()
	f.groups.On("ListGroupsForUser", mock.Anything, 3).Return([]models.Group{{ID: 5, Name: "gophers", OwnerID: 3}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/list", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 3)
	assert.Equal(t, "general", resp[0]["chat_id"])
	assert.Equal(t, "private_3_7", resp[1]["chat_id"])
	assert.Equal(t, "Bob", resp[1]["name"])
	assert.Equal(t, "group_5", resp[2]["chat_id"])
	f.friends.AssertExpectations(t)
	f.groups.AssertExpectations(t)
}

func TestGetMessagesReturnsHistoryWithDeletedIncluded(t *testing.T) {
	f := newChatFixture(3)

	msgs := []models.Message{
		{ID: 1, ChatID: "private_3_7", SenderID: 3, Sender: "Alice", Content: "hi", Timestamp: 100},
		{ID: 2, ChatID: "private_3_7", SenderID: 7, Sender: "Bob", Content: "secret", Timestamp: 200, Deleted: true},
	}
	f.messages.On("ListMessages", mock.Anything, "private_3_7").Return(msgs, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/private_3_7", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.Equal(t, true, resp[1]["deleted"])
	assert.Equal(t, "secret", resp[1]["content"], "content stays intact; redaction is the presentation layer's call")
	f.messages.AssertExpectations(t)
}

func TestGetMessagesNormalizesReversedPrivateID(t *testing.T) {
	f := newChatFixture(3)

	f.messages.On("ListMessages", mock.Anything, "private_3_7").Return([]models.Message{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/private_7_3", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	f.messages.AssertExpectations(t)
}

func TestGetMessagesForbiddenForOutsider(t *testing.T) {
	f := newChatFixture(5)

	req := httptest.NewRequest(http.MethodGet, "/messages/private_3_7", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	f.messages.AssertNotCalled(t, "ListMessages", mock.Anything, mock.Anything)
}

func TestGetMessagesForbiddenForNonGroupMember(t *testing.T) {
	f := newChatFixture(3)
	f.groups.On("IsMember", mock.Anything, 5, 3).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/group_5", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetMessagesInvalidChatID(t *testing.T) {
	f := newChatFixture(3)

	req := httptest.NewRequest(http.MethodGet, "/messages/private_4_4", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteMessageBySender(t *testing.T) {
	f := newChatFixture(3)

	stored := models.Message{ID: 9, ChatID: "private_3_7", SenderID: 3, Content: "hi"}
	f.messages.On("GetMessage", mock.Anything, 9).Return(stored, nil).Twice()
	f.messages.On("MarkDeleted", mock.Anything, 9).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages/delete", bytes.NewBufferString(`{"message_id":9}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	f.messages.AssertExpectations(t)
}

func TestDeleteMessageByNonSenderForbidden(t *testing.T) {
	f := newChatFixture(7)

	stored := models.Message{ID: 9, ChatID: "private_3_7", SenderID: 3, Content: "hi"}
	f.messages.On("GetMessage", mock.Anything, 9).Return(stored, nil).Twice()

	req := httptest.NewRequest(http.MethodPost, "/messages/delete", bytes.NewBufferString(`{"message_id":9}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	f.messages.AssertNotCalled(t, "MarkDeleted", mock.Anything, mock.Anything)
}

func TestDeleteMessageNotFound(t *testing.T) {
	f := newChatFixture(3)

	f.messages.On("GetMessage", mock.Anything, 9).Return(models.Message{}, repositories.ErrMessageNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages/delete", bytes.NewBufferString(`{"message_id":9}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
