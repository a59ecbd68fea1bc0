package ports_test

import (
	"context"
	"testing"

	"github.com/aretw0/rescuegrid/pkg/domain"
	"github.com/aretw0/rescuegrid/pkg/ports"
)

// MockStore is a minimal map-backed ScenarioStore used to exercise the contract suite itself.
type MockStore struct {
	data map[string]*domain.Snapshot
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]*domain.Snapshot)}
}

func (m *MockStore) Save(ctx context.Context, name string, snap *domain.Snapshot) error {
	m.data[name] = snap.Clone()
	return nil
}

func (m *MockStore) Load(ctx context.Context, name string) (*domain.Snapshot, error) {
	snap, ok := m.data[name]
	if !ok {
		return nil, domain.ErrScenarioNotFound
	}
	return snap.Clone(), nil
}

func (m *MockStore) Delete(ctx context.Context, name string) error {
	delete(m.data, name)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(m.data))
	for n := range m.data {
		names = append(names, n)
	}
	return names, nil
}

func TestScenarioStore_Contract(t *testing.T) {
	ports.RunScenarioStoreContract(t, NewMockStore())
}
