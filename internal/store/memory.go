package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/ppiankov/plancours/internal/model"
)

// MemoryStore is an in-process Store
type MemoryStore struct {
	mu    sync.RWMutex
	forms map[string]*model.Form
	plans map[string]*model.Plan
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		forms: make(map[string]*model.Form),
		plans: make(map[string]*model.Plan),
	}
}

func (s *MemoryStore) SaveForm(_ context.Context, form *model.Form) error {
	if form.ID == "" {
		return fmt.Errorf("save form: empty id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forms[form.ID] = cloneForm(form)
	return nil
}

func (s *MemoryStore) GetForm(_ context.Context, id string) (*model.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.forms[id]
	if !ok {
		return nil, fmt.Errorf("form %s: %w", id, model.ErrNotFound)
	}
	return cloneForm(f), nil
}

func (s *MemoryStore) ListForms(_ context.Context) ([]model.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Form, 0, len(s.forms))
	for _, f := range s.forms {
		out = append(out, *cloneForm(f))
	}
	sortForms(out)
	return out, nil
}

func (s *MemoryStore) ActiveForm(_ context.Context) (*model.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.forms {
		if f.IsActive {
			return cloneForm(f), nil
		}
	}
	return nil, model.ErrNoActiveForm
}

func (s *MemoryStore) SetActiveForm(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forms[id]; !ok {
		return fmt.Errorf("form %s: %w", id, model.ErrNotFound)
	}
	for fid, f := range s.forms {
		f.IsActive = fid == id
	}
	return nil
}

func (s *MemoryStore) CreatePlan(_ context.Context, plan *model.Plan) error {
	if plan.ID == "" {
		return fmt.Errorf("create plan: empty id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.plans[plan.ID]; exists {
		return fmt.Errorf("create plan: id %s already used", plan.ID)
	}
	s.plans[plan.ID] = clonePlan(plan)
	return nil
}

func (s *MemoryStore) GetPlan(_ context.Context, id string) (*model.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[id]
	if !ok {
		return nil, fmt.Errorf("plan %s: %w", id, model.ErrNotFound)
	}
	return clonePlan(p), nil
}

func (s *MemoryStore) UpdatePlan(_ context.Context, plan *model.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.plans[plan.ID]; !ok {
		return fmt.Errorf("plan %s: %w", plan.ID, model.ErrNotFound)
	}
	s.plans[plan.ID] = clonePlan(plan)
	return nil
}

func (s *MemoryStore) ListPlans(_ context.Context, q PlanQuery) ([]model.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Plan, 0)
	for _, p := range s.plans {
		if q.match(p) {
			out = append(out, *clonePlan(p))
		}
	}
	sortPlans(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

// MemoryBlobStore is an in-process BlobStore
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryBlobStore creates an empty blob store
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (b *MemoryBlobStore) Put(_ context.Context, path string, data []byte, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.blobs[path]; exists {
		return "", fmt.Errorf("put %s: %w", path, ErrBlobExists)
	}
	b.blobs[path] = append([]byte(nil), data...)
	return "mem://" + path, nil
}

func (b *MemoryBlobStore) Delete(_ context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blobs, path)
	return nil
}

// Get returns the stored bytes
func (b *MemoryBlobStore) Get(path string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.blobs[path]
	return data, ok
}

// Len reports how many blobs are stored
func (b *MemoryBlobStore) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.blobs)
}
