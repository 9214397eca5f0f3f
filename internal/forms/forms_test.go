package forms

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/plancours/internal/model"
	"github.com/ppiankov/plancours/internal/store"
)

func formWith(n int) *model.Form {
	f := &model.Form{Name: " Plan de cours ", Session: " Automne 2024 "}
	for i := 0; i < n; i++ {
		f.Questions = append(f.Questions, model.Question{
			Text: fmt.Sprintf("  Question %d  ", i+1),
			Rule: " objectifs ",
		})
	}
	return f
}

func TestNormalize(t *testing.T) {
	now := time.Date(2024, 8, 20, 9, 0, 0, 0, time.UTC)
	f := formWith(2)
	f.Questions[1].ID = "keep"

	Normalize(f, now)

	assert.NotEmpty(t, f.ID)
	assert.Equal(t, "Plan de cours", f.Name)
	assert.Equal(t, "Automne 2024", f.Session)
	assert.Equal(t, "Question 1", f.Questions[0].Text)
	assert.Equal(t, "objectifs", f.Questions[0].Rule)
	assert.NotEmpty(t, f.Questions[0].ID)
	assert.Equal(t, "keep", f.Questions[1].ID)
	assert.Equal(t, now, f.CreatedAt)
	assert.Equal(t, now, f.UpdatedAt)

	later := now.Add(time.Hour)
	Normalize(f, later)
	assert.Equal(t, now, f.CreatedAt)
	assert.Equal(t, later, f.UpdatedAt)
}

func TestValidate(t *testing.T) {
	valid := formWith(10)
	Normalize(valid, time.Now())
	assert.NoError(t, Validate(valid, 10))

	tooFew := formWith(9)
	Normalize(tooFew, time.Now())
	err := Validate(tooFew, 10)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Errors[0], "au moins 10 questions")

	blank := formWith(10)
	Normalize(blank, time.Now())
	blank.Name = "  "
	blank.Questions[3].Text = ""
	require.ErrorAs(t, Validate(blank, 10), &verr)
	assert.Len(t, verr.Errors, 2)
	assert.Contains(t, verr.Errors[0], "name")
	assert.Contains(t, verr.Errors[1], "questions[3].text")

	dup := formWith(10)
	Normalize(dup, time.Now())
	dup.Questions[1].ID = dup.Questions[0].ID
	require.ErrorAs(t, Validate(dup, 10), &verr)
	assert.Contains(t, verr.Errors[0], "en double")
}

func TestValidateTeacher(t *testing.T) {
	assert.NoError(t, ValidateTeacher(model.Teacher{UID: "u1", Email: "prof@cegep.qc.ca"}))
	assert.NoError(t, ValidateTeacher(model.Teacher{UID: "u1"}))

	var verr *model.ValidationError
	require.ErrorAs(t, ValidateTeacher(model.Teacher{UID: " ", Email: "pas-un-courriel"}), &verr)
	assert.Len(t, verr.Errors, 2)
}

func TestPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	p := &Publisher{Store: st, MinQuestions: 10}

	first := formWith(10)
	require.NoError(t, p.Publish(ctx, first))
	assert.True(t, first.IsActive)

	second := formWith(12)
	require.NoError(t, p.Publish(ctx, second))

	active, err := st.ActiveForm(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	stored, err := st.GetForm(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestPublisher_SaveRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	p := &Publisher{Store: st, MinQuestions: 10}

	err := p.Save(ctx, formWith(3))
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)

	forms, err := st.ListForms(ctx)
	require.NoError(t, err)
	assert.Empty(t, forms, "nothing is stored when validation fails")
}
