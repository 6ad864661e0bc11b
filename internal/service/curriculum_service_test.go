package service

import (
	"context"
	"testing"

	"growwise/internal/model"
	"growwise/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCurriculumFixture(result *model.AssessmentResult) (*CurriculumService, *fakeCurriculumRepo, *fakeAssessmentRepo) {
	paths := newFakeCurriculumRepo()
	results := &fakeAssessmentRepo{}
	if result != nil {
		results.SaveResult(context.Background(), result)
	}
	svc := NewCurriculumService(newDisabledAI(), paths, results)
	return svc, paths, results
}

func TestCurriculum_GeneratePathFromResult(t *testing.T) {
	result := &model.AssessmentResult{
		ID:            "r1",
		UserID:        "u1",
		Topic:         "React",
		Score:         55,
		DetectedLevel: model.LevelBeginner,
		Weaknesses:    []string{"hooks"},
	}
	svc, paths, _ := newCurriculumFixture(result)

	path, err := svc.GeneratePath(context.Background(), "u1", "r1")
	require.NoError(t, err)
	assert.NotEmpty(t, path.ID)
	assert.Equal(t, "React", path.Topic)
	assert.Equal(t, model.LevelBeginner, path.Level)
	require.Len(t, path.Stages, 3)
	assert.Equal(t, "Fundamentals", path.Stages[0].Name)
	assert.Equal(t, []int{1, 2, 3}, []int{path.Stages[0].Order, path.Stages[1].Order, path.Stages[2].Order})

	stored, err := paths.GetByID(context.Background(), path.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestCurriculum_GeneratePathOwnership(t *testing.T) {
	result := &model.AssessmentResult{ID: "r1", UserID: "owner", Topic: "Go", DetectedLevel: model.LevelIntermediate}
	svc, _, _ := newCurriculumFixture(result)

	_, err := svc.GeneratePath(context.Background(), "intruder", "r1")
	assert.ErrorIs(t, err, ErrResultNotFound, "foreign results look like missing results")

	_, err = svc.GeneratePath(context.Background(), "owner", "nope")
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestCurriculum_FallbackStagesPerLevel(t *testing.T) {
	cases := []struct {
		level model.SkillLevel
		first string
	}{
		{model.LevelBeginner, "Fundamentals"},
		{model.LevelIntermediate, "Advanced Concepts"},
		{model.LevelAdvanced, "Expert Techniques"},
	}
	for _, tc := range cases {
		stages := fallbackStages("Go", tc.level)
		require.Len(t, stages, 3, "level %s", tc.level)
		assert.Equal(t, tc.first, stages[0].Name)
		for _, st := range stages {
			assert.NotEmpty(t, st.Content)
			for _, c := range st.Content {
				assert.NotEmpty(t, c.ID)
			}
		}
	}
}

func TestCurriculum_CompleteContentReturnsPercentage(t *testing.T) {
	result := &model.AssessmentResult{ID: "r1", UserID: "u1", Topic: "Go", DetectedLevel: model.LevelBeginner}
	svc, _, _ := newCurriculumFixture(result)

	path, err := svc.GeneratePath(context.Background(), "u1", "r1")
	require.NoError(t, err)

	total := 0
	for _, st := range path.Stages {
		total += len(st.Content)
	}
	require.Positive(t, total)

	first := path.Stages[0].Content[0].ID
	pct, err := svc.CompleteContent(context.Background(), path.ID, "u1", first)
	require.NoError(t, err)
	assert.Equal(t, 100/total, pct)

	_, err = svc.CompleteContent(context.Background(), path.ID, "u2", first)
	assert.ErrorIs(t, err, ErrNotYourPath)

	_, err = svc.CompleteContent(context.Background(), path.ID, "u1", "no-such-content")
	assert.ErrorIs(t, err, repository.ErrContentNotFound)
}

func TestCurriculum_GetByID(t *testing.T) {
	result := &model.AssessmentResult{ID: "r1", UserID: "u1", Topic: "Go", DetectedLevel: model.LevelAdvanced}
	svc, _, _ := newCurriculumFixture(result)

	path, err := svc.GeneratePath(context.Background(), "u1", "r1")
	require.NoError(t, err)

	got, err := svc.GetByID(context.Background(), path.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, path.ID, got.ID)

	_, err = svc.GetByID(context.Background(), "missing", "u1")
	assert.ErrorIs(t, err, ErrPathNotFound)
}
