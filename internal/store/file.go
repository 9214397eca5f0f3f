package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ppiankov/plancours/internal/model"
)

// FileStore keeps one JSON document per form and per plan under a directory:
//
//	<dir>/forms/<id>.json
//	<dir>/plans/<id>.json
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the directory layout under dir
func NewFileStore(dir string) (*FileStore, error) {
	dir = expandHome(dir)
	for _, sub := range []string{"forms", "plans"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) SaveForm(_ context.Context, form *model.Form) error {
	path, err := s.docPath("forms", form.ID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(path, form)
}

func (s *FileStore) GetForm(_ context.Context, id string) (*model.Form, error) {
	path, err := s.docPath("forms", id)
	if err != nil {
		return nil, err
	}
	var f model.Form
	if err := readJSON(path, &f); err != nil {
		return nil, fmt.Errorf("form %s: %w", id, err)
	}
	return &f, nil
}

func (s *FileStore) ListForms(_ context.Context) ([]model.Form, error) {
	forms := make([]model.Form, 0)
	err := s.each("forms", func(data []byte) error {
		var f model.Form
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		forms = append(forms, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortForms(forms)
	return forms, nil
}

func (s *FileStore) ActiveForm(ctx context.Context) (*model.Form, error) {
	forms, err := s.ListForms(ctx)
	if err != nil {
		return nil, err
	}
	for i := range forms {
		if forms[i].IsActive {
			return &forms[i], nil
		}
	}
	return nil, model.ErrNoActiveForm
}

func (s *FileStore) SetActiveForm(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.GetForm(ctx, id); err != nil {
		return err
	}
	forms, err := s.ListForms(ctx)
	if err != nil {
		return err
	}
	for i := range forms {
		active := forms[i].ID == id
		if forms[i].IsActive == active {
			continue
		}
		forms[i].IsActive = active
		path, err := s.docPath("forms", forms[i].ID)
		if err != nil {
			return err
		}
		if err := writeJSON(path, &forms[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) CreatePlan(_ context.Context, plan *model.Plan) error {
	path, err := s.docPath("plans", plan.ID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("create plan: id %s already used", plan.ID)
	}
	return writeJSON(path, plan)
}

func (s *FileStore) GetPlan(_ context.Context, id string) (*model.Plan, error) {
	path, err := s.docPath("plans", id)
	if err != nil {
		return nil, err
	}
	var p model.Plan
	if err := readJSON(path, &p); err != nil {
		return nil, fmt.Errorf("plan %s: %w", id, err)
	}
	return &p, nil
}

func (s *FileStore) UpdatePlan(_ context.Context, plan *model.Plan) error {
	path, err := s.docPath("plans", plan.ID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("plan %s: %w", plan.ID, model.ErrNotFound)
	}
	return writeJSON(path, plan)
}

func (s *FileStore) ListPlans(_ context.Context, q PlanQuery) ([]model.Plan, error) {
	plans := make([]model.Plan, 0)
	err := s.each("plans", func(data []byte) error {
		var p model.Plan
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		if q.match(&p) {
			plans = append(plans, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortPlans(plans)
	return plans, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) docPath(kind, id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("invalid %s id %q", strings.TrimSuffix(kind, "s"), id)
	}
	return filepath.Join(s.dir, kind, id+".json"), nil
}

func (s *FileStore) each(kind string, fn func(data []byte) error) error {
	matches, err := filepath.Glob(filepath.Join(s.dir, kind, "*.json"))
	if err != nil {
		return err
	}
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := fn(data); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// writeJSON replaces path atomically
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
