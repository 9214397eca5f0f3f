package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/plancours/internal/model"
)

func testPlan(id, teacher string, created time.Time) *model.Plan {
	return &model.Plan{
		ID:       id,
		FormID:   "f1",
		FormName: "Plan de cours",
		Session:  "Automne 2024",
		Answers: []model.PlanAnswer{{
			QuestionID: "q1",
			Prompt:     "Décrivez vos objectifs",
			Response:   "Comprendre la thermodynamique.",
			Status:     model.StatusAmeliorer,
			Feedback:   "Ajoutez davantage de détails (80 caractères minimum).",
			Highlights: []string{},
			Engine:     model.EngineHeuristic,
			Model:      model.HeuristicModel,
		}},
		Summary:    model.Summary{Ameliorer: 1},
		Status:     model.ReviewSubmitted,
		TeacherUID: teacher,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func testForm(id string, created time.Time) *model.Form {
	return &model.Form{
		ID:        id,
		Name:      "Formulaire " + id,
		Session:   "Hiver 2025",
		Questions: []model.Question{{ID: "q1", Text: "Objectifs", Rule: "objectifs"}},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// runStoreSuite exercises the Store contract against one implementation
func runStoreSuite(t *testing.T, s Store) {
	ctx := context.Background()
	base := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)

	t.Run("forms", func(t *testing.T) {
		_, err := s.ActiveForm(ctx)
		assert.ErrorIs(t, err, model.ErrNoActiveForm)

		require.NoError(t, s.SaveForm(ctx, testForm("f1", base)))
		require.NoError(t, s.SaveForm(ctx, testForm("f2", base.Add(time.Hour))))

		got, err := s.GetForm(ctx, "f1")
		require.NoError(t, err)
		assert.Equal(t, "Formulaire f1", got.Name)
		assert.Len(t, got.Questions, 1)

		forms, err := s.ListForms(ctx)
		require.NoError(t, err)
		require.Len(t, forms, 2)
		assert.Equal(t, "f2", forms[0].ID)

		require.NoError(t, s.SetActiveForm(ctx, "f1"))
		require.NoError(t, s.SetActiveForm(ctx, "f2"))
		active, err := s.ActiveForm(ctx)
		require.NoError(t, err)
		assert.Equal(t, "f2", active.ID)

		f1, err := s.GetForm(ctx, "f1")
		require.NoError(t, err)
		assert.False(t, f1.IsActive, "only one form may be active")

		assert.ErrorIs(t, s.SetActiveForm(ctx, "absent"), model.ErrNotFound)
		_, err = s.GetForm(ctx, "absent")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("plans", func(t *testing.T) {
		require.NoError(t, s.CreatePlan(ctx, testPlan("p1", "u1", base)))
		require.NoError(t, s.CreatePlan(ctx, testPlan("p2", "u2", base.Add(time.Minute))))
		require.NoError(t, s.CreatePlan(ctx, testPlan("p3", "u1", base.Add(2*time.Minute))))

		assert.Error(t, s.CreatePlan(ctx, testPlan("p1", "u1", base)), "ids are unique")

		got, err := s.GetPlan(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, model.StatusAmeliorer, got.Answers[0].Status)
		assert.Equal(t, 1, got.Summary.Total())

		mine, err := s.ListPlans(ctx, PlanQuery{TeacherUID: "u1"})
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, "p3", mine[0].ID, "newest first")

		all, err := s.ListPlans(ctx, PlanQuery{})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		got.Status = model.ReviewApproved
		got.ReviewComment = "Bon travail"
		require.NoError(t, s.UpdatePlan(ctx, got))
		updated, err := s.GetPlan(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, model.ReviewApproved, updated.Status)
		assert.Equal(t, "Bon travail", updated.ReviewComment)

		assert.ErrorIs(t, s.UpdatePlan(ctx, testPlan("absent", "u1", base)), model.ErrNotFound)
		_, err = s.GetPlan(ctx, "absent")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, NewMemoryStore())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := testPlan("p1", "u1", time.Now())
	require.NoError(t, s.CreatePlan(ctx, p))

	p.Answers[0].Response = "modifié"
	got, err := s.GetPlan(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Comprendre la thermodynamique.", got.Answers[0].Response)
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	runStoreSuite(t, s)
}

func TestFileStore_RejectsPathIDs(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, s.CreatePlan(context.Background(), testPlan("../escape", "u1", time.Now())))
	assert.Error(t, s.SaveForm(context.Background(), testForm("", time.Now())))
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("PLANCOURS_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("PLANCOURS_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.DB.ExecContext(ctx, `truncate forms, course_plans`)
	require.NoError(t, err)

	runStoreSuite(t, s)
}

func TestOpen_DefaultsToFileStore(t *testing.T) {
	s, err := Open(context.Background(), model.StoreConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	defer s.Close()

	_, isFile := s.(*FileStore)
	assert.True(t, isFile)
}
