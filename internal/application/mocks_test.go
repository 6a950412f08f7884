package application

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ericfisherdev/secretvault/internal/domain/model"
	"github.com/ericfisherdev/secretvault/internal/domain/port/driven"
)

// --- In-memory port implementations ---

type memMasterStore struct {
	mu     sync.Mutex
	record *model.MasterPassword
	err    error
}

func (m *memMasterStore) Exists(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	return m.record != nil, nil
}

func (m *memMasterStore) Create(_ context.Context, mp model.MasterPassword) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.record != nil {
		return driven.ErrAlreadyInitialized
	}
	m.record = &mp
	return nil
}

func (m *memMasterStore) Get(_ context.Context) (*model.MasterPassword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.record == nil {
		return nil, nil
	}
	rec := *m.record
	return &rec, nil
}

type memSecretStore struct {
	mu       sync.Mutex
	payloads map[string][]byte
	getCalls int
	saves    int
	err      error
}

func newMemSecretStore() *memSecretStore {
	return &memSecretStore{payloads: make(map[string][]byte)}
}

func (m *memSecretStore) Save(_ context.Context, name string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saves++
	m.payloads[name] = append([]byte(nil), payload...)
	return nil
}

func (m *memSecretStore) Get(_ context.Context, name string) (*model.Secret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.err != nil {
		return nil, m.err
	}
	payload, ok := m.payloads[name]
	if !ok {
		return nil, nil
	}
	return &model.Secret{Name: name, Payload: payload}, nil
}

func (m *memSecretStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.payloads, name)
	return nil
}

func (m *memSecretStore) Search(_ context.Context, substr string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	names := []string{}
	for name := range m.payloads {
		if strings.Contains(name, substr) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *memSecretStore) List(_ context.Context) ([]model.Secret, error) {
	names, err := m.Search(context.Background(), "")
	if err != nil {
		return nil, err
	}
	secrets := make([]model.Secret, 0, len(names))
	for _, name := range names {
		secrets = append(secrets, model.Secret{Name: name})
	}
	return secrets, nil
}
