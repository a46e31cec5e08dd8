// Package record owns the per-user application aggregate and the rules for
// changing it. Persistence is delegated to a Store backend.
package record

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// Store persists UserRecords one top-level field at a time.
//
// Load initializes and persists an empty record on first access. SavePartial
// overwrites exactly one field; saves to different fields never clobber each
// other and saves to the same field are last-write-wins.
type Store interface {
	Load(ctx context.Context, userID uuid.UUID) (*UserRecord, error)
	SavePartial(ctx context.Context, userID uuid.UUID, field Field, value json.RawMessage) error
}
