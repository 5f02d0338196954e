// Package entity 定义领域实体
package entity

// SectionKind 书稿结构单元类别
type SectionKind string

const (
	SectionFrontMatter SectionKind = "front_matter"
	SectionChapter     SectionKind = "chapter"
	SectionPlain       SectionKind = "section"
	SectionSubsection  SectionKind = "subsection"
	SectionBackMatter  SectionKind = "back_matter"
)

// Chapter 结构识别出的单个章节，每次分析重新生成，不持久化
type Chapter struct {
	Title       string   `json:"title"`
	StartOffset int      `json:"start_offset"`
	EndOffset   int      `json:"end_offset"`
	WordCount   int      `json:"word_count"`
	ImageRefs   []string `json:"image_refs,omitempty"`
	Content     string   `json:"content"`
}

// Section 结构单元的统一视图，按出现顺序排列
type Section struct {
	Title       string      `json:"title"`
	Kind        SectionKind `json:"kind"`
	StartOffset int         `json:"start_offset"`
	EndOffset   int         `json:"end_offset"`
	WordCount   int         `json:"word_count"`
}

// MatterElement 前/后辅文元素的存在性标记
type MatterElement struct {
	Kind    string `json:"kind"`
	Present bool   `json:"present"`
}

// StructureDetection 书稿结构识别结果
type StructureDetection struct {
	Title       string          `json:"title,omitempty"`
	Author      string          `json:"author,omitempty"`
	Chapters    []Chapter       `json:"chapters"`
	Sections    []Section       `json:"sections"`
	FrontMatter []MatterElement `json:"front_matter"`
	BackMatter  []MatterElement `json:"back_matter"`
}

// ReadingLevel 阅读难度评估
type ReadingLevel struct {
	Grade       float64 `json:"grade"`
	Ease        float64 `json:"ease"`
	Description string  `json:"description"`
}

// ContentAnalysis 书稿内容统计结果
type ContentAnalysis struct {
	TotalWordCount    int          `json:"total_word_count"`
	ChapterWordCounts []int        `json:"chapter_word_counts"`
	AvgSentenceLength float64      `json:"avg_sentence_length"`
	ReadingLevel      ReadingLevel `json:"reading_level"`
	EstimatedPages    int          `json:"estimated_pages"`
	ParagraphCount    int          `json:"paragraph_count"`
	SentenceCount     int          `json:"sentence_count"`
}

// ManuscriptAnalysis 结构 + 内容的组合分析结果
type ManuscriptAnalysis struct {
	Structure StructureDetection `json:"structure"`
	Content   ContentAnalysis    `json:"content"`
}

// ReadinessCheck 出版就绪检查单项
type ReadinessCheck struct {
	Criterion string `json:"criterion"`
	Passed    bool   `json:"passed"`
	Points    int    `json:"points"`
	MaxPoints int    `json:"max_points"`
	Detail    string `json:"detail"`
}

// PublicationReadiness 出版就绪评分结果，纯输入的函数
type PublicationReadiness struct {
	Score           int              `json:"score"`
	MaxScore        int              `json:"max_score"`
	Percentage      float64          `json:"percentage"`
	Checklist       []ReadinessCheck `json:"checklist"`
	Recommendations []string         `json:"recommendations"`
}

// ProjectMetadata 就绪评分所需的项目元数据，由调用方提供
type ProjectMetadata struct {
	Title          string
	Author         string
	Genre          string
	TargetAudience string
	HasCover       bool
	Text           string
	TrimSize       string
}
