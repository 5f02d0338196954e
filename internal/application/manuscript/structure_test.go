package manuscript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoChapterText = "Chapter 1: Beginnings\nSome text here.\n\nChapter 2: Middle\nMore text."

func TestExtractChaptersOffsets(t *testing.T) {
	chapters := ExtractChapters(twoChapterText)
	require.Len(t, chapters, 2)

	first := chapters[0]
	assert.Equal(t, "Chapter 1: Beginnings", first.Title)
	assert.Equal(t, 0, first.StartOffset)
	// 首章终点即次章标题行的行首偏移
	assert.Equal(t, 39, first.EndOffset)
	assert.Equal(t, 6, first.WordCount)
	assert.Equal(t, "Chapter 1: Beginnings\nSome text here.\n\n", first.Content)

	second := chapters[1]
	assert.Equal(t, "Chapter 2: Middle", second.Title)
	assert.Equal(t, 39, second.StartOffset)
	assert.Equal(t, len(twoChapterText), second.EndOffset)
	assert.Equal(t, 5, second.WordCount)
}

func TestExtractChaptersAlwaysReturnsAtLeastOne(t *testing.T) {
	// 空输入
	chapters := ExtractChapters("")
	require.Len(t, chapters, 1)
	assert.Equal(t, "Main Content", chapters[0].Title)
	assert.Equal(t, 0, chapters[0].StartOffset)
	assert.Equal(t, 0, chapters[0].EndOffset)
	assert.Equal(t, 0, chapters[0].WordCount)

	// 无任何章节标题的纯文本
	chapters = ExtractChapters("Just a plain paragraph without headings.")
	require.Len(t, chapters, 1)
	assert.Equal(t, "Main Content", chapters[0].Title)
	assert.Equal(t, 6, chapters[0].WordCount)
}

func TestExtractChaptersHeadingVariants(t *testing.T) {
	text := "Chapter One\naaa\n\nCHAPTER IV\nbbb\n\nPart 2\nccc\n\n# Markdown Heading\nddd\n\nEpilogue\neee"
	chapters := ExtractChapters(text)
	require.Len(t, chapters, 5)
	assert.Equal(t, "Chapter One", chapters[0].Title)
	assert.Equal(t, "CHAPTER IV", chapters[1].Title)
	assert.Equal(t, "Part 2", chapters[2].Title)
	// Markdown 标题去掉前导 #
	assert.Equal(t, "Markdown Heading", chapters[3].Title)
	assert.Equal(t, "Epilogue", chapters[4].Title)
}

func TestStripMarkup(t *testing.T) {
	assert.Equal(t, "no markup here", stripMarkup("no markup here"))

	out := stripMarkup("<p>Hello &amp; goodbye</p>")
	assert.Contains(t, out, "Hello & goodbye")
	assert.NotContains(t, out, "<p>")

	// <img> 标签原样保留，供图片引用检测使用
	out = stripMarkup(`<p>Look: <img src="cover.png"> done</p>`)
	assert.Contains(t, out, `<img src="cover.png">`)
	assert.NotContains(t, out, "<p>")
}

func TestDetectImageRefs(t *testing.T) {
	content := `Intro <img src="a.png"> middle [Image: cover art] and see Figure 3 for details. Also fig. 12.`
	refs := detectImageRefs(content)
	require.Len(t, refs, 4)
	assert.Contains(t, refs, `<img src="a.png">`)
	assert.Contains(t, refs, "[Image: cover art]")
	assert.Contains(t, refs, "Figure 3")
	assert.Contains(t, refs, "fig. 12")
}

func TestDetectTitle(t *testing.T) {
	// h1 优先
	raw := "<h1>My Great Novel</h1><p>by Jane Doe</p>"
	structure := DetectStructure(raw)
	assert.Equal(t, "My Great Novel", structure.Title)

	// 无 h1 时取第一行非空短文本
	structure = DetectStructure("The Silent Harbor\nby Jane Doe\n\nChapter 1\ntext")
	assert.Equal(t, "The Silent Harbor", structure.Title)

	// 首个非空行是章节标题则不当标题
	structure = DetectStructure(twoChapterText)
	assert.Equal(t, "", structure.Title)
}

func TestDetectAuthor(t *testing.T) {
	assert.Equal(t, "Jane Doe", detectAuthor("The Silent Harbor\nby Jane Doe\n\ntext"))
	assert.Equal(t, "John Q. Smith", detectAuthor("Author: John Q. Smith"))
	assert.Equal(t, "", detectAuthor("no attribution at all"))
}

func TestDetectStructureMatter(t *testing.T) {
	text := "Title Page\n\nCopyright © 2026 Jane Doe\n\nTable of Contents\n\n" +
		"Chapter 1\nstory text\n\nChapter 2\nmore story\n\n" +
		"About the Author\nJane writes books.\n\nAcknowledgments\nThanks everyone."
	structure := DetectStructure(text)

	present := map[string]bool{}
	for _, m := range structure.FrontMatter {
		present[m.Kind] = m.Present
	}
	assert.True(t, present["title_page"])
	assert.True(t, present["copyright"])
	assert.True(t, present["table_of_contents"])
	assert.False(t, present["preface"])

	present = map[string]bool{}
	for _, m := range structure.BackMatter {
		present[m.Kind] = m.Present
	}
	assert.True(t, present["about_author"])
	assert.True(t, present["acknowledgments"])
	assert.False(t, present["glossary"])

	// Sections: 前辅文在前、章节居中、后辅文在后
	require.GreaterOrEqual(t, len(structure.Sections), 7)
	assert.Equal(t, "Title Page", structure.Sections[0].Title)
}

func TestMatterTitle(t *testing.T) {
	assert.Equal(t, "Table Of Contents", matterTitle("table_of_contents"))
	assert.Equal(t, "About Author", matterTitle("about_author"))
	assert.Equal(t, "Index", matterTitle("index"))
}
