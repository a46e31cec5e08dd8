package record

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps records in process. It backs tests and the admin CLI's
// dry runs.
type MemoryStore struct {
	mu   sync.Mutex
	data map[uuid.UUID]map[Field]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[uuid.UUID]map[Field]json.RawMessage)}
}

func (m *MemoryStore) Load(_ context.Context, userID uuid.UUID) (*UserRecord, error) {
	m.mu.Lock()
	fields, ok := m.data[userID]
	if !ok {
		fields = make(map[Field]json.RawMessage, len(Fields))
		for _, f := range Fields {
			fields[f] = f.EmptyValue()
		}
		m.data[userID] = fields
	}
	snapshot := make(map[Field]json.RawMessage, len(fields))
	for f, v := range fields {
		snapshot[f] = v
	}
	m.mu.Unlock()

	return Assemble(snapshot)
}

func (m *MemoryStore) SavePartial(_ context.Context, userID uuid.UUID, field Field, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	fields, ok := m.data[userID]
	if !ok {
		fields = make(map[Field]json.RawMessage, len(Fields))
		m.data[userID] = fields
	}
	cp := make(json.RawMessage, len(value))
	copy(cp, value)
	fields[field] = cp
	return nil
}
