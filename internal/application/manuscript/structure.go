// Package manuscript 提供书稿结构识别、可读性统计与出版就绪评分。
// 全部为纯内存计算，不依赖任何外部 I/O。
package manuscript

import (
	"html"
	"regexp"
	"strings"

	"ink-studio-ai-api/internal/domain/entity"
)

// chapterPatterns 章节标题模式，逐行按顺序匹配，先中者胜
var chapterPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*chapter\s+\d+\b.*$`),
	regexp.MustCompile(`(?i)^\s*chapter\s+(one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen|twenty)\b.*$`),
	regexp.MustCompile(`(?i)^\s*chapter\s+[ivxlcdm]+\b.*$`),
	regexp.MustCompile(`(?i)^\s*part\s+(\d+|[ivxlcdm]+|one|two|three|four|five|six|seven|eight|nine|ten)\b.*$`),
	regexp.MustCompile(`^\s*#{1,2}\s+.+$`),
	regexp.MustCompile(`(?i)^\s*(prologue|epilogue)\b.*$`),
}

// 图片引用的三类独立模式，结果拼接不去重
var (
	imgTagPattern       = regexp.MustCompile(`(?i)<img[^>]*>`)
	imageCalloutPattern = regexp.MustCompile(`(?i)\[(?:image|img|photo|illustration)\s*:?[^\]]*\]`)
	figureRefPattern    = regexp.MustCompile(`(?i)\b(?:figure|fig\.)\s*\d+`)
)

type matterPattern struct {
	kind    string
	pattern *regexp.Regexp
}

// frontMatterPatterns 前辅文存在性检测，只判有无不取区间
var frontMatterPatterns = []matterPattern{
	{"title_page", regexp.MustCompile(`(?i)\btitle\s+page\b`)},
	{"copyright", regexp.MustCompile(`(?i)\bcopyright\b|©|\(c\)\s*\d{4}`)},
	{"dedication", regexp.MustCompile(`(?i)\bdedicat(?:ed|ion)\b`)},
	{"table_of_contents", regexp.MustCompile(`(?im)\btable\s+of\s+contents\b|^\s*contents\s*$`)},
	{"preface", regexp.MustCompile(`(?i)\bpreface\b`)},
	{"introduction", regexp.MustCompile(`(?i)\bintroduction\b`)},
}

// backMatterPatterns 后辅文存在性检测
var backMatterPatterns = []matterPattern{
	{"about_author", regexp.MustCompile(`(?i)\babout\s+the\s+author\b`)},
	{"acknowledgments", regexp.MustCompile(`(?i)\backnowledg(?:e)?ments\b`)},
	{"appendix", regexp.MustCompile(`(?i)\bappendix\b`)},
	{"index", regexp.MustCompile(`(?im)^\s*index\s*$`)},
	{"bibliography", regexp.MustCompile(`(?i)\bbibliography\b|\breferences\b`)},
	{"glossary", regexp.MustCompile(`(?i)\bglossary\b`)},
}

var (
	h1Pattern        = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	htmlTagPattern   = regexp.MustCompile(`(?is)<[^>]+>`)
	htmlBreakPattern = regexp.MustCompile(`(?i)<(?:br\s*/?|/p|/div|/h[1-6])>`)
	authorByPattern  = regexp.MustCompile(`(?m)^\s*[Bb]y\s+([A-Z][A-Za-z.'\-]*(?:\s+[A-Z][A-Za-z.'\-]*){1,3})\s*$`)
	authorTagPattern = regexp.MustCompile(`(?i)author:\s*([A-Z][A-Za-z.'\-]*(?:\s+[A-Z][A-Za-z.'\-]*){0,3})`)
)

// stripMarkup 将富文本降为纯文本。
// <img> 标签保留原文，图片引用检测依赖它；块级闭合标签换成换行以保住段落边界。
func stripMarkup(raw string) string {
	if !strings.Contains(raw, "<") {
		return raw
	}
	imgs := imgTagPattern.FindAllString(raw, -1)
	placeholder := "\x01IMG\x01"
	text := imgTagPattern.ReplaceAllString(raw, placeholder)
	text = htmlBreakPattern.ReplaceAllString(text, "\n")
	text = htmlTagPattern.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	for _, img := range imgs {
		text = strings.Replace(text, placeholder, img, 1)
	}
	return text
}

func countWords(text string) int {
	return len(strings.Fields(text))
}

func isChapterHeading(line string) bool {
	for _, p := range chapterPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// headingTitle 取标题文本，Markdown 标题去掉前导 #
func headingTitle(line string) string {
	t := strings.TrimSpace(line)
	t = strings.TrimLeft(t, "#")
	return strings.TrimSpace(t)
}

// detectImageRefs 按三类模式检测图片引用，结果拼接不去重
func detectImageRefs(content string) []string {
	var refs []string
	refs = append(refs, imgTagPattern.FindAllString(content, -1)...)
	refs = append(refs, imageCalloutPattern.FindAllString(content, -1)...)
	refs = append(refs, figureRefPattern.FindAllString(content, -1)...)
	return refs
}

// ExtractChapters 将原始书稿切分为章节。
// 不变式：非空与空输入都至少返回一个章节，找不到任何标题时
// 整篇文本作为标题为 "Main Content" 的单章返回。
func ExtractChapters(raw string) []entity.Chapter {
	plain := stripMarkup(raw)
	lines := strings.Split(plain, "\n")

	type boundary struct {
		title  string
		offset int
	}
	var boundaries []boundary
	offset := 0
	for _, line := range lines {
		if strings.TrimSpace(line) != "" && isChapterHeading(line) {
			boundaries = append(boundaries, boundary{title: headingTitle(line), offset: offset})
		}
		offset += len(line) + 1
	}

	if len(boundaries) == 0 {
		return []entity.Chapter{{
			Title:       "Main Content",
			StartOffset: 0,
			EndOffset:   len(plain),
			WordCount:   countWords(plain),
			ImageRefs:   detectImageRefs(plain),
			Content:     plain,
		}}
	}

	chapters := make([]entity.Chapter, 0, len(boundaries))
	for i, b := range boundaries {
		end := len(plain)
		if i+1 < len(boundaries) {
			end = boundaries[i+1].offset
		}
		content := plain[b.offset:end]
		chapters = append(chapters, entity.Chapter{
			Title:       b.title,
			StartOffset: b.offset,
			EndOffset:   end,
			WordCount:   countWords(content),
			ImageRefs:   detectImageRefs(content),
			Content:     content,
		})
	}
	return chapters
}

// detectTitle 标题检测：优先 <h1>，其次第一行非空短文本（<100 字符且不像章节/版权行）
func detectTitle(raw, plain string) string {
	if m := h1Pattern.FindStringSubmatch(raw); m != nil {
		t := strings.TrimSpace(htmlTagPattern.ReplaceAllString(m[1], ""))
		if t != "" {
			return html.UnescapeString(t)
		}
	}
	for _, line := range strings.Split(plain, "\n") {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		if len(t) < 100 && !isChapterHeading(t) && !strings.Contains(strings.ToLower(t), "copyright") {
			return t
		}
		break
	}
	return ""
}

// detectAuthor 作者检测："by FIRST LAST" 或 "Author: FIRST LAST"，首个匹配胜出，可为空
func detectAuthor(plain string) string {
	if m := authorByPattern.FindStringSubmatch(plain); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := authorTagPattern.FindStringSubmatch(plain); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func detectMatter(plain string, patterns []matterPattern) []entity.MatterElement {
	out := make([]entity.MatterElement, 0, len(patterns))
	for _, mp := range patterns {
		out = append(out, entity.MatterElement{
			Kind:    mp.kind,
			Present: mp.pattern.MatchString(plain),
		})
	}
	return out
}

// matterTitle 辅文类别的人类可读名
func matterTitle(kind string) string {
	parts := strings.Split(kind, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// DetectStructure 结构识别：章节切分 + 前/后辅文存在性 + 标题/作者检测
func DetectStructure(raw string) entity.StructureDetection {
	plain := stripMarkup(raw)
	chapters := ExtractChapters(raw)
	front := detectMatter(plain, frontMatterPatterns)
	back := detectMatter(plain, backMatterPatterns)

	// Sections 是辅文与章节的统一有序视图，辅文只有存在性没有区间
	sections := make([]entity.Section, 0, len(chapters)+len(front)+len(back))
	for _, m := range front {
		if m.Present {
			sections = append(sections, entity.Section{
				Title: matterTitle(m.Kind),
				Kind:  entity.SectionFrontMatter,
			})
		}
	}
	for _, ch := range chapters {
		sections = append(sections, entity.Section{
			Title:       ch.Title,
			Kind:        entity.SectionChapter,
			StartOffset: ch.StartOffset,
			EndOffset:   ch.EndOffset,
			WordCount:   ch.WordCount,
		})
	}
	for _, m := range back {
		if m.Present {
			sections = append(sections, entity.Section{
				Title: matterTitle(m.Kind),
				Kind:  entity.SectionBackMatter,
			})
		}
	}

	return entity.StructureDetection{
		Title:       detectTitle(raw, plain),
		Author:      detectAuthor(plain),
		Chapters:    chapters,
		Sections:    sections,
		FrontMatter: front,
		BackMatter:  back,
	}
}
