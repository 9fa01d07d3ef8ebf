package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"chat-backend/internal/models"
	"chat-backend/internal/repositories"
)

// ErrNotSender marks a delete attempt by someone other than the message's
// author. At the registry boundary it is a silent rejection: no broadcast, no
// error surfaced to other participants.
var ErrNotSender = errors.New("only the sender can delete a message")

// Dispatcher runs the persist-then-broadcast path. Dispatches against the
// same chat are strictly ordered: the write and the fan-out of call N finish
// before call N+1 starts, so no participant can observe a deletion before the
// creation of the same message or two sends out of timestamp order. Unrelated
// chats never serialize against each other.
type Dispatcher struct {
	hub      *Hub
	messages repositories.MessageRepository
	locks    keyedMutex
	now      func() time.Time
}

// NewDispatcher constructs a Dispatcher over the hub and message store.
func NewDispatcher(hub *Hub, messages repositories.MessageRepository) *Dispatcher {
	return &Dispatcher{hub: hub, messages: messages, now: time.Now}
}

// SendMessage persists a new message and fans it out to every connection in
// the chat, the sender's own included; the sender gets no local echo and sees
// the message only through the broadcast. A persistence failure aborts before
// any broadcast.
func (d *Dispatcher) SendMessage(ctx context.Context, chatID models.ChatID, sender models.User, content string) (models.Message, error) {
	key := chatID.String()
	d.locks.lock(key)
	defer d.locks.unlock(key)

	msg, err := d.messages.CreateMessage(ctx, key, sender.ID, content, d.now().Unix())
	if err != nil {
		return models.Message{}, err
	}

	d.hub.BroadcastMessage(chatID, msg)
	return msg, nil
}

// DeleteMessage soft-deletes a message on behalf of its sender and broadcasts
// the deletion. A missing message or a foreign requester rejects without
// broadcasting; only the requester's own channel may observe the error.
func (d *Dispatcher) DeleteMessage(ctx context.Context, chatID models.ChatID, requesterID, messageID int) error {
	key := chatID.String()
	d.locks.lock(key)
	defer d.locks.unlock(key)

	msg, err := d.messages.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.ChatID != key {
		return repositories.ErrMessageNotFound
	}
	if msg.SenderID != requesterID {
		return ErrNotSender
	}
	if err := d.messages.MarkDeleted(ctx, messageID); err != nil {
		return err
	}

	d.hub.BroadcastDeletion(chatID, messageID)
	return nil
}

// keyedMutex serializes callers per key without holding entries for idle
// keys: an entry lives only while someone holds or waits for it.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*keyedMutexEntry
}

type keyedMutexEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) {
	k.mu.Lock()
	if k.entries == nil {
		k.entries = make(map[string]*keyedMutexEntry)
	}
	e, ok := k.entries[key]
	if !ok {
		e = &keyedMutexEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

func (k *keyedMutex) unlock(key string) {
	k.mu.Lock()
	e := k.entries[key]
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}
