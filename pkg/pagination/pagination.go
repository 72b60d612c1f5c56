package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit is the page size applied when the caller does not set one.
	DefaultLimit = 20
	// MaxLimit caps the page size a single request may ask for.
	MaxLimit = 100
)

// Params carries keyset pagination inputs from the query string.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor pins the position of the last row of the previous page. Listings
// order by (created_at DESC, id DESC), so both fields are needed to break
// timestamp ties deterministically.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// FetchLimit returns the normalized limit plus one sentinel row, used to
// detect whether another page exists without a COUNT query.
func FetchLimit(limit int) int {
	return NormalizeLimit(limit) + 1
}

// Encode serializes the cursor into an opaque base64 token.
func (c Cursor) Encode() string {
	raw := fmt.Sprintf("%s|%s", c.CreatedAt.UTC().Format(time.RFC3339Nano), c.ID)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// Parse decodes an opaque cursor token. An empty token means "first page"
// and yields a nil cursor with no error.
func Parse(token string) (*Cursor, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("malformed cursor")
	}

	createdAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, fmt.Errorf("bad cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, fmt.Errorf("bad cursor id: %w", err)
	}

	return &Cursor{CreatedAt: createdAt, ID: id}, nil
}
