package models

// Message is a persisted chat message. Sender carries the author's current
// display name, joined at read time rather than denormalized, so renames
// relabel history. Timestamp is unix seconds.
type Message struct {
	ID        int    `db:"id" json:"id"`
	ChatID    string `db:"chat_id" json:"-"`
	SenderID  int    `db:"sender_id" json:"sender_id"`
	Sender    string `db:"sender" json:"sender"`
	Content   string `db:"content" json:"content"`
	Timestamp int64  `db:"timestamp" json:"timestamp"`
	Deleted   bool   `db:"deleted" json:"deleted"`
}

// ChatEvent is broadcast through websockets. Type is "message" for new
// messages (Message set) and "delete" for soft deletions (ID set).
type ChatEvent struct {
	Type    string   `json:"type"`
	Message *Message `json:"message,omitempty"`
	ID      int      `json:"id,omitempty"`
}
