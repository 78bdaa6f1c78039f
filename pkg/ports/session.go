package ports

import "context"

// SessionStore is the narrow contract the wizard engine needs from session storage.
// Every operation is independently atomic per field; callers never assume
// cross-field transactions. Implementations apply their own expiry when a session
// record is first created.
type SessionStore interface {
	// GetField returns the value of a session field. found is false when the
	// session or the field does not exist.
	GetField(ctx context.Context, sessionID, field string) (value string, found bool, err error)

	// SetField writes a session field, creating the session record if needed.
	SetField(ctx context.Context, sessionID, field, value string) error

	// GetAllAnswers returns the saved answers keyed by answer key (without the
	// "answers:" namespace). A missing session yields an empty map.
	GetAllAnswers(ctx context.Context, sessionID string) (map[string]string, error)
}

// SessionDeleter is implemented by session stores that can drop a session record.
type SessionDeleter interface {
	Delete(ctx context.Context, sessionID string) error
}
