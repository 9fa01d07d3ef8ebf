package chat

import (
	"context"

	"chat-backend/internal/models"
	"chat-backend/internal/repositories"
)

// Authorizer decides whether a user may enter a chat. It is a pure function
// of current persisted state: callers re-evaluate on every connection attempt
// and every history read, never caching across reconnects.
type Authorizer struct {
	groups repositories.GroupRepository
}

// NewAuthorizer constructs an Authorizer.
func NewAuthorizer(groups repositories.GroupRepository) *Authorizer {
	return &Authorizer{groups: groups}
}

// CanAccess reports chat eligibility: the general room admits everyone, a
// private room exactly the two users in its identifier, a group room its
// current members.
func (a *Authorizer) CanAccess(ctx context.Context, userID int, chatID models.ChatID) (bool, error) {
	switch chatID.Kind {
	case models.ChatGeneral:
		return true, nil
	case models.ChatPrivate:
		return chatID.Includes(userID), nil
	case models.ChatGroup:
		return a.groups.IsMember(ctx, chatID.GroupID, userID)
	default:
		return false, nil
	}
}
