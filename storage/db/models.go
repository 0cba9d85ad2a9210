package db

// LocalStorage is one key/value entry of a browser session's storage.
// Timestamps are unix milliseconds.
type LocalStorage struct {
	SessionID string
	Key       string
	Value     string
	CreatedAt int64
	UpdatedAt int64
}
