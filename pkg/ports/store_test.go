package ports_test

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// MockStore is an in-memory implementation of SnapshotStore for testing purposes.
type MockStore struct {
	data map[string][]byte
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string][]byte),
	}
}

func (m *MockStore) Save(ctx context.Context, containerID string, snap *domain.Snapshot) error {
	// Serialize to simulate a real backend
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	m.data[containerID] = data
	return nil
}

func (m *MockStore) Load(ctx context.Context, containerID string) (*domain.Snapshot, error) {
	data, ok := m.data[containerID]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (m *MockStore) Delete(ctx context.Context, containerID string) error {
	delete(m.data, containerID)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func TestSnapshotStore_Contract(t *testing.T) {
	// The mock doubles as a self-check of the contract suite itself.
	ports.RunSnapshotStoreContract(t, NewMockStore())
}
