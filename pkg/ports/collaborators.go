package ports

import "context"

// ReplyGenerator produces a conversational reply for a free-text message.
type ReplyGenerator interface {
	Reply(ctx context.Context, message string) (string, error)
}

// ZipChecker decides whether a ZIP code is inside the served area.
type ZipChecker interface {
	Eligible(ctx context.Context, zip string) bool
}
