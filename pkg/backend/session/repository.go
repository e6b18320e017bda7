package session

import "context"

// Repository persists chat transcripts by session id. Get distinguishes "no
// such session" from an empty transcript so callers can decide when to seed
// a fresh one.
type Repository interface {
	Get(ctx context.Context, sessionID string) ([]Message, bool, error)
	Put(ctx context.Context, sessionID string, messages []Message) error
	Delete(ctx context.Context, sessionID string) error
}
