package manuscript

import (
	"fmt"
	"strings"

	"ink-studio-ai-api/internal/domain/entity"
)

type wordBand struct {
	min, max int
}

// genreWordBands 各体裁的典型字数区间，键为小写体裁名
var genreWordBands = map[string]wordBand{
	"fantasy":          {min: 90000, max: 120000},
	"science fiction":  {min: 90000, max: 120000},
	"romance":          {min: 70000, max: 100000},
	"mystery":          {min: 70000, max: 90000},
	"thriller":         {min: 70000, max: 90000},
	"literary fiction": {min: 80000, max: 100000},
	"young adult":      {min: 50000, max: 80000},
	"middle grade":     {min: 25000, max: 50000},
	"children":         {min: 500, max: 10000},
	"non-fiction":      {min: 50000, max: 75000},
	"memoir":           {min: 60000, max: 90000},
	"self-help":        {min: 40000, max: 60000},
	"poetry":           {min: 10000, max: 30000},
}

var defaultWordBand = wordBand{min: 50000, max: 100000}

// 就绪检查的固定检查项名
const (
	criterionTitle            = "title"
	criterionAuthor           = "author"
	criterionWordCount        = "word_count"
	criterionChapterStructure = "chapter_structure"
	criterionCoverDesign      = "cover_design"
	criterionFrontMatter      = "front_matter"
	criterionBackMatter       = "back_matter"
	criterionContentQuality   = "content_quality"
	criterionGenre            = "genre"
	criterionTargetAudience   = "target_audience"
)

// readinessRecommendations 未通过检查项对应的固定建议文案
var readinessRecommendations = map[string]string{
	criterionTitle:            "Add a title to your book project.",
	criterionAuthor:           "Add an author name to your book project.",
	criterionWordCount:        "Adjust your manuscript length toward the typical range for your genre.",
	criterionChapterStructure: "Organize your manuscript into multiple chapters.",
	criterionCoverDesign:      "Create or upload a cover design for your book.",
	criterionFrontMatter:      "Add front matter such as a title page, copyright page, or table of contents.",
	criterionBackMatter:       "Add back matter such as an about-the-author page or acknowledgments.",
	criterionContentQuality:   "Revise for readability: aim for a reading ease between 30 and 80 and an average sentence length of 10-25 words.",
	criterionGenre:            "Specify a genre for your book project.",
	criterionTargetAudience:   "Specify a target audience for your book project.",
}

const pointsPerCheck = 10

func bandFor(genre string) wordBand {
	if b, ok := genreWordBands[strings.ToLower(strings.TrimSpace(genre))]; ok {
		return b
	}
	return defaultWordBand
}

func countPresent(elems []entity.MatterElement) int {
	n := 0
	for _, e := range elems {
		if e.Present {
			n++
		}
	}
	return n
}

// CalculateReadinessScore 出版就绪评分：十项检查，每项满分 10 分。
// 纯输入函数，相同输入必得相同结果，不依赖时钟与随机。
func CalculateReadinessScore(meta entity.ProjectMetadata) entity.PublicationReadiness {
	structure := DetectStructure(meta.Text)
	content := AnalyzeContent(meta.Text, structure.Chapters, meta.TrimSize, 0)

	checks := make([]entity.ReadinessCheck, 0, 10)
	addBool := func(criterion string, ok bool, detail string) {
		points := 0
		if ok {
			points = pointsPerCheck
		}
		checks = append(checks, entity.ReadinessCheck{
			Criterion: criterion,
			Passed:    ok,
			Points:    points,
			MaxPoints: pointsPerCheck,
			Detail:    detail,
		})
	}
	addPartial := func(criterion string, points int, detail string) {
		if points > pointsPerCheck {
			points = pointsPerCheck
		}
		checks = append(checks, entity.ReadinessCheck{
			Criterion: criterion,
			Passed:    points == pointsPerCheck,
			Points:    points,
			MaxPoints: pointsPerCheck,
			Detail:    detail,
		})
	}

	addBool(criterionTitle, strings.TrimSpace(meta.Title) != "", "Project has a title")
	addBool(criterionAuthor, strings.TrimSpace(meta.Author) != "", "Project has an author")

	band := bandFor(meta.Genre)
	wc := content.TotalWordCount
	switch {
	case wc >= band.min && wc <= band.max:
		addPartial(criterionWordCount, pointsPerCheck,
			fmt.Sprintf("Word count %d is within the typical range %d-%d", wc, band.min, band.max))
	case wc >= band.min/2:
		addPartial(criterionWordCount, pointsPerCheck/2,
			fmt.Sprintf("Word count %d is outside the typical range %d-%d", wc, band.min, band.max))
	default:
		addPartial(criterionWordCount, 0,
			fmt.Sprintf("Word count %d is far below the typical range %d-%d", wc, band.min, band.max))
	}

	addBool(criterionChapterStructure, len(structure.Chapters) > 1,
		fmt.Sprintf("Detected %d chapter(s)", len(structure.Chapters)))
	addBool(criterionCoverDesign, meta.HasCover, "Cover design uploaded")

	frontCount := countPresent(structure.FrontMatter)
	frontPoints := pointsPerCheck
	if frontCount < 3 {
		frontPoints = frontCount * pointsPerCheck / 3
	}
	addPartial(criterionFrontMatter, frontPoints,
		fmt.Sprintf("Detected %d front matter element(s)", frontCount))

	backCount := countPresent(structure.BackMatter)
	backPoints := 0
	switch {
	case backCount >= 2:
		backPoints = pointsPerCheck
	case backCount >= 1:
		backPoints = pointsPerCheck / 2
	}
	addPartial(criterionBackMatter, backPoints,
		fmt.Sprintf("Detected %d back matter element(s)", backCount))

	ease := content.ReadingLevel.Ease
	avgLen := content.AvgSentenceLength
	qualityPoints := 0
	switch {
	case ease >= 30 && ease <= 80 && avgLen >= 10 && avgLen <= 25:
		qualityPoints = pointsPerCheck
	case ease >= 20 && ease <= 90 && avgLen >= 5 && avgLen <= 35:
		qualityPoints = pointsPerCheck / 2
	}
	addPartial(criterionContentQuality, qualityPoints,
		fmt.Sprintf("Reading ease %.1f, average sentence length %.1f words", ease, avgLen))

	addBool(criterionGenre, strings.TrimSpace(meta.Genre) != "", "Genre specified")
	addBool(criterionTargetAudience, strings.TrimSpace(meta.TargetAudience) != "", "Target audience specified")

	score := 0
	for _, c := range checks {
		score += c.Points
	}
	maxScore := len(checks) * pointsPerCheck

	recommendations := make([]string, 0, len(checks))
	for _, c := range checks {
		if !c.Passed {
			if rec, ok := readinessRecommendations[c.Criterion]; ok {
				recommendations = append(recommendations, rec)
			}
		}
	}

	return entity.PublicationReadiness{
		Score:           score,
		MaxScore:        maxScore,
		Percentage:      float64(score) / float64(maxScore) * 100,
		Checklist:       checks,
		Recommendations: recommendations,
	}
}
