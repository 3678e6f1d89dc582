package parsing

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultPhonePattern matches CN mobile numbers with an optional country code.
const DefaultPhonePattern = `(?:\+?86[-\s]?)?1[3-9]\d{9}`

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	namePattern  = regexp.MustCompile(`姓名[:：]\s*([\p{Han}]{2,4})`)
)

// skillVocabulary is checked in order; hits keep this order.
var skillVocabulary = []string{
	"python", "java", "javascript", "typescript", "go", "rust",
	"c++", "c#", "sql", "html", "css",
	"react", "vue", "node.js", "spring", "django", "flask",
	"docker", "kubernetes", "linux", "git", "redis", "kafka",
	"excel", "机器学习", "深度学习", "数据分析", "自然语言处理",
}

// educationMarkers is ordered highest degree first; hits keep this order.
var educationMarkers = []string{"博士", "硕士", "本科", "大专"}

// LocalExtractor is the regex/dictionary extraction baseline. It is pure,
// performs no I/O, and never fails: absent fields stay empty.
type LocalExtractor struct {
	phone *regexp.Regexp
}

// NewLocalExtractor constructs an extractor with the default phone pattern.
func NewLocalExtractor() *LocalExtractor {
	return &LocalExtractor{phone: regexp.MustCompile(DefaultPhonePattern)}
}

// NewLocalExtractorWithPhonePattern constructs an extractor with a custom
// national mobile-number pattern.
func NewLocalExtractorWithPhonePattern(pattern string) (*LocalExtractor, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile phone pattern: %w", err)
	}
	return &LocalExtractor{phone: re}, nil
}

// Extract derives fields from raw resume text.
func (e *LocalExtractor) Extract(text string) Fields {
	var f Fields

	f.Email = emailPattern.FindString(text)
	f.Phone = e.phone.FindString(text)
	if m := namePattern.FindStringSubmatch(text); len(m) == 2 {
		f.Name = m[1]
	}

	lower := strings.ToLower(text)
	for _, skill := range skillVocabulary {
		if strings.Contains(lower, skill) {
			f.Skills = append(f.Skills, skill)
		}
	}
	for _, marker := range educationMarkers {
		if strings.Contains(text, marker) {
			f.Education = append(f.Education, marker)
		}
	}

	seen := make(map[string]struct{}, len(f.Skills)+len(f.Education))
	for _, kw := range append(append([]string{}, f.Skills...), f.Education...) {
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		f.Keywords = append(f.Keywords, kw)
	}

	return f
}

var defaultLocal = NewLocalExtractor()

// ExtractLocal runs the default local extractor.
func ExtractLocal(text string) Fields {
	return defaultLocal.Extract(text)
}
