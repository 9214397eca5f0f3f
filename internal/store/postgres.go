package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"github.com/ppiankov/plancours/internal/model"
)

const schema = `
create table if not exists forms (
	id         text primary key,
	name       text not null,
	session    text not null,
	questions  jsonb not null,
	is_active  boolean not null default false,
	created_at timestamptz not null,
	updated_at timestamptz not null
);
create table if not exists course_plans (
	id          text primary key,
	form_id     text not null,
	teacher_uid text not null,
	status      text not null,
	doc         jsonb not null,
	created_at  timestamptz not null,
	updated_at  timestamptz not null
);
create index if not exists course_plans_teacher_idx on course_plans (teacher_uid, created_at desc);`

// PostgresStore keeps forms and plans in PostgreSQL. Plans are stored whole
// as jsonb next to the columns used for filtering.
type PostgresStore struct {
	DB *sql.DB
}

// OpenPostgres connects through the pgx stdlib driver and creates the schema
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}

	s := &PostgresStore{DB: db}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the tables when missing
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error { return s.DB.Close() }

func (s *PostgresStore) SaveForm(ctx context.Context, form *model.Form) error {
	questions, err := json.Marshal(form.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	const q = `
insert into forms(id, name, session, questions, is_active, created_at, updated_at)
values ($1,$2,$3,$4,$5,$6,$7)
on conflict (id)
do update set name=excluded.name, session=excluded.session, questions=excluded.questions,
              is_active=excluded.is_active, updated_at=excluded.updated_at`
	_, err = s.DB.ExecContext(ctx, q, form.ID, form.Name, form.Session, questions,
		form.IsActive, form.CreatedAt, form.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save form %s: %w", form.ID, err)
	}
	return nil
}

const formColumns = `id, name, session, questions, is_active, created_at, updated_at`

func scanForm(row interface{ Scan(...any) error }) (*model.Form, error) {
	var (
		f  model.Form
		qs []byte
	)
	if err := row.Scan(&f.ID, &f.Name, &f.Session, &qs, &f.IsActive, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(qs, &f.Questions); err != nil {
		return nil, fmt.Errorf("decode questions of form %s: %w", f.ID, err)
	}
	return &f, nil
}

func (s *PostgresStore) GetForm(ctx context.Context, id string) (*model.Form, error) {
	row := s.DB.QueryRowContext(ctx, `select `+formColumns+` from forms where id=$1`, id)
	f, err := scanForm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("form %s: %w", id, model.ErrNotFound)
	}
	return f, err
}

func (s *PostgresStore) ListForms(ctx context.Context) ([]model.Form, error) {
	rows, err := s.DB.QueryContext(ctx, `select `+formColumns+` from forms order by created_at desc`)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	defer rows.Close()

	forms := make([]model.Form, 0)
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		forms = append(forms, *f)
	}
	return forms, rows.Err()
}

func (s *PostgresStore) ActiveForm(ctx context.Context) (*model.Form, error) {
	row := s.DB.QueryRowContext(ctx, `select `+formColumns+` from forms where is_active limit 1`)
	f, err := scanForm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNoActiveForm
	}
	return f, err
}

func (s *PostgresStore) SetActiveForm(ctx context.Context, id string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx, `select exists(select 1 from forms where id=$1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("activate form %s: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("form %s: %w", id, model.ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx, `update forms set is_active = (id = $1), updated_at = now() where is_active or id = $1`, id); err != nil {
		return fmt.Errorf("activate form %s: %w", id, err)
	}
	return tx.Commit()
}

func (s *PostgresStore) CreatePlan(ctx context.Context, plan *model.Plan) error {
	doc, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	const q = `
insert into course_plans(id, form_id, teacher_uid, status, doc, created_at, updated_at)
values ($1,$2,$3,$4,$5,$6,$7)`
	_, err = s.DB.ExecContext(ctx, q, plan.ID, plan.FormID, plan.TeacherUID, string(plan.Status),
		doc, plan.CreatedAt, plan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create plan %s: %w", plan.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetPlan(ctx context.Context, id string) (*model.Plan, error) {
	var doc []byte
	err := s.DB.QueryRowContext(ctx, `select doc from course_plans where id=$1`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plan %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get plan %s: %w", id, err)
	}
	var p model.Plan
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("decode plan %s: %w", id, err)
	}
	return &p, nil
}

func (s *PostgresStore) UpdatePlan(ctx context.Context, plan *model.Plan) error {
	doc, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	res, err := s.DB.ExecContext(ctx,
		`update course_plans set status=$2, doc=$3, updated_at=$4 where id=$1`,
		plan.ID, string(plan.Status), doc, plan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update plan %s: %w", plan.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("plan %s: %w", plan.ID, model.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) ListPlans(ctx context.Context, q PlanQuery) ([]model.Plan, error) {
	rows, err := s.DB.QueryContext(ctx, `
select doc from course_plans
where ($1 = '' or teacher_uid = $1)
order by created_at desc, id desc`, q.TeacherUID)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	plans := make([]model.Plan, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var p model.Plan
		if err := json.Unmarshal(doc, &p); err != nil {
			return nil, fmt.Errorf("decode plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}
