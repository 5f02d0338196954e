package manuscript

import (
	"math"
	"regexp"
	"strings"

	"ink-studio-ai-api/internal/domain/entity"
)

var (
	sentenceSplitPattern  = regexp.MustCompile(`[.!?]+`)
	paragraphSplitPattern = regexp.MustCompile(`\n\s*\n`)
	nonLetterPattern      = regexp.MustCompile(`[^a-z]`)
	vowelGroupPattern     = regexp.MustCompile(`[aeiouy]+`)
)

// wordsPerPage 各开本的每页词数估算表
var wordsPerPage = map[string]int{
	"5x8":     250,
	"5.5x8.5": 275,
	"6x9":     300,
	"7x10":    400,
	"8.5x11":  500,
}

// defaultTrimSize 未指定开本时的默认值
const defaultTrimSize = "6x9"

// countSentences 按 .!? 连续串切句，丢弃空片段
func countSentences(text string) int {
	n := 0
	for _, frag := range sentenceSplitPattern.Split(text, -1) {
		if strings.TrimSpace(frag) != "" {
			n++
		}
	}
	return n
}

// countParagraphs 按空行串切段，丢弃空片段
func countParagraphs(text string) int {
	n := 0
	for _, frag := range paragraphSplitPattern.Split(text, -1) {
		if strings.TrimSpace(frag) != "" {
			n++
		}
	}
	return n
}

// countSyllables 规则式音节估算：去尾部哑音 e/ed/es，去首字母 y，
// 数元音连续串，每词下限 1。刻意近似，不查词典。
func countSyllables(word string) int {
	w := nonLetterPattern.ReplaceAllString(strings.ToLower(word), "")
	if w == "" {
		return 0
	}
	if strings.HasSuffix(w, "ed") || strings.HasSuffix(w, "es") {
		w = w[:len(w)-2]
	} else if strings.HasSuffix(w, "e") {
		w = w[:len(w)-1]
	}
	w = strings.TrimPrefix(w, "y")
	n := len(vowelGroupPattern.FindAllString(w, -1))
	if n < 1 {
		n = 1
	}
	return n
}

func totalSyllables(words []string) int {
	n := 0
	for _, w := range words {
		n += countSyllables(w)
	}
	return n
}

// easeDescription 按 Flesch 易读度分段给出固定描述
func easeDescription(ease float64) string {
	switch {
	case ease >= 90:
		return "Very Easy"
	case ease >= 80:
		return "Easy"
	case ease >= 70:
		return "Fairly Easy"
	case ease >= 60:
		return "Standard"
	case ease >= 50:
		return "Fairly Difficult"
	case ease >= 30:
		return "Difficult"
	default:
		return "Very Difficult"
	}
}

// estimatePages 按开本词密度估算印刷页数。
// fontSize > 0 时按 (12/fontSize)^2 做面积近似修正。
func estimatePages(totalWords int, trimSize string, fontSize float64) int {
	if totalWords <= 0 {
		return 0
	}
	wpp, ok := wordsPerPage[strings.TrimSpace(trimSize)]
	if !ok {
		wpp = wordsPerPage[defaultTrimSize]
	}
	density := float64(wpp)
	if fontSize > 0 {
		density *= (12 / fontSize) * (12 / fontSize)
	}
	if density <= 0 {
		density = float64(wordsPerPage[defaultTrimSize])
	}
	return int(math.Ceil(float64(totalWords) / density))
}

// AnalyzeContent 对纯文本与章节切分结果做可读性与篇幅统计。
// 零句输入不做除法，易读度取 100、年级取 0。
func AnalyzeContent(raw string, chapters []entity.Chapter, trimSize string, fontSize float64) entity.ContentAnalysis {
	plain := stripMarkup(raw)
	words := strings.Fields(plain)
	wordCount := len(words)
	sentenceCount := countSentences(plain)
	paragraphCount := countParagraphs(plain)

	chapterWordCounts := make([]int, 0, len(chapters))
	for _, ch := range chapters {
		chapterWordCounts = append(chapterWordCounts, ch.WordCount)
	}

	var grade, ease, avgSentenceLen float64
	if sentenceCount == 0 || wordCount == 0 {
		grade = 0
		ease = 100
	} else {
		avgSentenceLen = float64(wordCount) / float64(sentenceCount)
		syllablesPerWord := float64(totalSyllables(words)) / float64(wordCount)

		grade = 0.39*avgSentenceLen + 11.8*syllablesPerWord - 15.59
		if grade < 0 {
			grade = 0
		}
		ease = 206.835 - 1.015*avgSentenceLen - 84.6*syllablesPerWord
		if ease < 0 {
			ease = 0
		}
		if ease > 100 {
			ease = 100
		}
	}

	return entity.ContentAnalysis{
		TotalWordCount:    wordCount,
		ChapterWordCounts: chapterWordCounts,
		AvgSentenceLength: avgSentenceLen,
		ReadingLevel: entity.ReadingLevel{
			Grade:       grade,
			Ease:        ease,
			Description: easeDescription(ease),
		},
		EstimatedPages: estimatePages(wordCount, trimSize, fontSize),
		ParagraphCount: paragraphCount,
		SentenceCount:  sentenceCount,
	}
}
