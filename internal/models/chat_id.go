package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ChatKind discriminates the three room shapes.
type ChatKind int

const (
	ChatGeneral ChatKind = iota
	ChatPrivate
	ChatGroup
)

var ErrInvalidChatID = errors.New("invalid chat id")

// String names the kind for metrics labels.
func (k ChatKind) String() string {
	switch k {
	case ChatPrivate:
		return "private"
	case ChatGroup:
		return "group"
	default:
		return "general"
	}
}

// ChatID is the canonical key naming a room. For private chats User1 < User2
// always holds; construct values through ParseChatID or PrivateChatID so the
// invariant cannot be violated.
type ChatID struct {
	Kind    ChatKind
	User1   int
	User2   int
	GroupID int
}

// GeneralChatID names the single global room.
func GeneralChatID() ChatID {
	return ChatID{Kind: ChatGeneral}
}

// PrivateChatID builds the canonical id for a pair of users, normalizing the
// order so PrivateChatID(7,3) and PrivateChatID(3,7) name the same room.
func PrivateChatID(a, b int) (ChatID, error) {
	if a < 0 || b < 0 || a == b {
		return ChatID{}, ErrInvalidChatID
	}
	if a > b {
		a, b = b, a
	}
	return ChatID{Kind: ChatPrivate, User1: a, User2: b}, nil
}

// GroupChatID builds the id for a group room.
func GroupChatID(groupID int) (ChatID, error) {
	if groupID < 0 {
		return ChatID{}, ErrInvalidChatID
	}
	return ChatID{Kind: ChatGroup, GroupID: groupID}, nil
}

// ParseChatID parses the wire grammar: "general", "private_<a>_<b>" or
// "group_<g>". Reversed private pairs are normalized rather than rejected so
// both spellings resolve to the same room.
func ParseChatID(s string) (ChatID, error) {
	switch {
	case s == "general":
		return GeneralChatID(), nil
	case strings.HasPrefix(s, "private_"):
		parts := strings.Split(strings.TrimPrefix(s, "private_"), "_")
		if len(parts) != 2 {
			return ChatID{}, ErrInvalidChatID
		}
		a, err := strconv.Atoi(parts[0])
		if err != nil {
			return ChatID{}, ErrInvalidChatID
		}
		b, err := strconv.Atoi(parts[1])
		if err != nil {
			return ChatID{}, ErrInvalidChatID
		}
		return PrivateChatID(a, b)
	case strings.HasPrefix(s, "group_"):
		g, err := strconv.Atoi(strings.TrimPrefix(s, "group_"))
		if err != nil {
			return ChatID{}, ErrInvalidChatID
		}
		return GroupChatID(g)
	default:
		return ChatID{}, ErrInvalidChatID
	}
}

// String renders the canonical form, used as the registry key and as the
// messages.chat_id column value.
func (id ChatID) String() string {
	switch id.Kind {
	case ChatPrivate:
		return fmt.Sprintf("private_%d_%d", id.User1, id.User2)
	case ChatGroup:
		return fmt.Sprintf("group_%d", id.GroupID)
	default:
		return "general"
	}
}

// Includes reports whether a private chat names the given user. It is false
// for non-private kinds; group membership needs a repository lookup.
func (id ChatID) Includes(userID int) bool {
	return id.Kind == ChatPrivate && (id.User1 == userID || id.User2 == userID)
}
