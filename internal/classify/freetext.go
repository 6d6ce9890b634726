package classify

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
)

var sentenceStart = regexp.MustCompile(`([.!?]\s*)(\S)`)

// FreeText collects cleaned verbatims of answers with at least two words.
func FreeText(q *survey.Question, name string) survey.FreeTextEntry {
	entry := survey.FreeTextEntry{QuestionID: q.ID, Question: name}
	for _, a := range q.Answers {
		if len(strings.Split(a.Value, " ")) < 2 {
			continue
		}
		if s := CleanVerbatim(a.Value); s != "" {
			entry.Answers = append(entry.Answers, s)
		}
	}
	return entry
}

// CleanVerbatim lower-cases s, capitalises sentence starts, drops one
// trailing period and wraps the result in guillemets.
func CleanVerbatim(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = sentenceStart.ReplaceAllStringFunc(s, func(m string) string {
		r, size := utf8.DecodeLastRuneInString(m)
		return m[:len(m)-size] + string(unicode.ToUpper(r))
	})
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return "«" + string(unicode.ToUpper(r)) + s[size:] + "»"
}
