package manuscript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ink-studio-ai-api/internal/domain/entity"
)

func checkByCriterion(t *testing.T, readiness entity.PublicationReadiness, criterion string) entity.ReadinessCheck {
	t.Helper()
	for _, c := range readiness.Checklist {
		if c.Criterion == criterion {
			return c
		}
	}
	t.Fatalf("criterion %s not found in checklist", criterion)
	return entity.ReadinessCheck{}
}

func TestCalculateReadinessScoreEmptyProject(t *testing.T) {
	readiness := CalculateReadinessScore(entity.ProjectMetadata{})

	assert.Equal(t, 0, readiness.Score)
	assert.Equal(t, 100, readiness.MaxScore)
	assert.Equal(t, 0.0, readiness.Percentage)
	require.Len(t, readiness.Checklist, 10)
	// 十项全不通过，十条建议
	assert.Len(t, readiness.Recommendations, 10)
}

func TestCalculateReadinessScoreMetadataOnly(t *testing.T) {
	meta := entity.ProjectMetadata{
		Title:          "The Silent Harbor",
		Author:         "Jane Doe",
		Genre:          "mystery",
		TargetAudience: "adult readers",
		HasCover:       true,
		Text:           "Hello world.",
	}
	readiness := CalculateReadinessScore(meta)

	// 五项元数据检查通过，五项内容检查不通过
	assert.Equal(t, 50, readiness.Score)
	assert.Equal(t, 50.0, readiness.Percentage)
	assert.Len(t, readiness.Recommendations, 5)

	assert.True(t, checkByCriterion(t, readiness, "title").Passed)
	assert.True(t, checkByCriterion(t, readiness, "author").Passed)
	assert.True(t, checkByCriterion(t, readiness, "cover_design").Passed)
	assert.False(t, checkByCriterion(t, readiness, "word_count").Passed)
	assert.False(t, checkByCriterion(t, readiness, "chapter_structure").Passed)
}

func TestCalculateReadinessScoreWordCountBands(t *testing.T) {
	// children 体裁区间 500-10000
	inBand := entity.ProjectMetadata{Genre: "children", Text: strings.Repeat("word ", 600)}
	check := checkByCriterion(t, CalculateReadinessScore(inBand), "word_count")
	assert.True(t, check.Passed)
	assert.Equal(t, 10, check.Points)

	// 达到下限一半给一半分
	halfBand := entity.ProjectMetadata{Genre: "children", Text: strings.Repeat("word ", 300)}
	check = checkByCriterion(t, CalculateReadinessScore(halfBand), "word_count")
	assert.False(t, check.Passed)
	assert.Equal(t, 5, check.Points)

	// 远低于下限零分
	farBelow := entity.ProjectMetadata{Genre: "children", Text: "tiny"}
	check = checkByCriterion(t, CalculateReadinessScore(farBelow), "word_count")
	assert.Equal(t, 0, check.Points)
}

func TestCalculateReadinessScoreStructureChecks(t *testing.T) {
	text := "Title Page\n\nCopyright © 2026\n\nTable of Contents\n\n" +
		"Chapter 1\nstory\n\nChapter 2\nmore story\n\n" +
		"About the Author\nbio"
	readiness := CalculateReadinessScore(entity.ProjectMetadata{Text: text})

	assert.True(t, checkByCriterion(t, readiness, "chapter_structure").Passed)

	// 前辅文三项齐全得满分
	front := checkByCriterion(t, readiness, "front_matter")
	assert.True(t, front.Passed)
	assert.Equal(t, 10, front.Points)

	// 后辅文只有一项得一半分
	back := checkByCriterion(t, readiness, "back_matter")
	assert.False(t, back.Passed)
	assert.Equal(t, 5, back.Points)
}

func TestCalculateReadinessScoreDeterministic(t *testing.T) {
	meta := entity.ProjectMetadata{
		Title:  "A Book",
		Author: "Jane Doe",
		Genre:  "fantasy",
		Text:   twoChapterText,
	}
	first := CalculateReadinessScore(meta)
	second := CalculateReadinessScore(meta)
	assert.Equal(t, first, second)
}

func TestBandForGenre(t *testing.T) {
	assert.Equal(t, wordBand{min: 90000, max: 120000}, bandFor("Fantasy"))
	assert.Equal(t, wordBand{min: 90000, max: 120000}, bandFor("  science fiction  "))
	assert.Equal(t, defaultWordBand, bandFor("unknown genre"))
	assert.Equal(t, defaultWordBand, bandFor(""))
}
