// Package textclean removes repetition artifacts and boilerplate credits that
// speech models tend to hallucinate on low-confidence audio.
package textclean

import (
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// Credit lines crowd-sourced subtitle communities embed in training data; the
// model reproduces them near silence. Matches may span newlines.
var creditPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)sottotitoli creati dalla comunità amara\.org.*?qtss\.?`),
	regexp.MustCompile(`(?is)subtitles created by.*?community.*?amara\.org.*?qtss\.?`),
	regexp.MustCompile(`(?is)subtitles created by.*?amara\.org community`),
	regexp.MustCompile(`(?is)sottotitoli e revisione a cura di.*?qtss\.?`),
	regexp.MustCompile(`(?is)subtitles and revision by.*?qtss\.?`),
	regexp.MustCompile(`(?is)traduzione e adattamento.*?qtss\.?`),
	regexp.MustCompile(`(?is)translation and adaptation.*?qtss\.?`),
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Cleaner post-processes raw transcripts. The zero value is usable; a logger
// only adds an informational record when a pass removed something.
type Cleaner struct {
	log *zap.Logger
}

func NewCleaner(log *zap.Logger) *Cleaner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cleaner{log: log}
}

// Clean applies all suppression passes in order. It is total and
// deterministic: empty input comes back unchanged, and a second application
// of Clean to its own output is a no-op.
func (c *Cleaner) Clean(text string) string {
	if text == "" {
		return text
	}

	originalLen := len(text)

	for _, pattern := range creditPatterns {
		text = pattern.ReplaceAllString(text, "")
	}

	tokens := strings.Fields(text)
	tokens = collapseShortTokenRuns(tokens)
	tokens = dropLongTokenRuns(tokens)
	tokens = trimTrailingWordRuns(tokens)
	tokens = trimTrailingLetterRuns(tokens)

	cleaned := strings.TrimSpace(whitespaceRun.ReplaceAllString(strings.Join(tokens, " "), " "))

	if len(cleaned) < originalLen {
		removed := originalLen - len(cleaned)
		c.log.Info("cleaned transcript",
			zap.Int("removed_chars", removed),
			zap.Float64("removed_pct", float64(removed)/float64(originalLen)*100),
		)
	}

	return cleaned
}

// collapseShortTokenRuns reduces >=11 case-insensitive repeats of a word
// token up to 3 characters long ("la la la ...") to a single occurrence, then
// reduces >=6 repeats of a single-character token to one occurrence.
func collapseShortTokenRuns(tokens []string) []string {
	tokens = collapseRuns(tokens, func(tok string) bool {
		return isWordToken(tok) && len([]rune(tok)) <= 3
	}, strings.EqualFold, 11, 1)

	return collapseRuns(tokens, func(tok string) bool {
		return isWordToken(tok) && len([]rune(tok)) == 1
	}, func(a, b string) bool { return a == b }, 6, 1)
}

// dropLongTokenRuns removes >=9 exact repeats of a word token up to 4
// characters long entirely.
func dropLongTokenRuns(tokens []string) []string {
	return collapseRuns(tokens, func(tok string) bool {
		return isWordToken(tok) && len([]rune(tok)) <= 4
	}, func(a, b string) bool { return a == b }, 9, 0)
}

// trimTrailingWordRuns drops all but one of a final word repeated more than
// five times, but only for transcripts longer than four words.
func trimTrailingWordRuns(tokens []string) []string {
	if len(tokens) <= 4 {
		return tokens
	}

	last := tokens[len(tokens)-1]
	count := 0
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i] != last {
			break
		}
		count++
	}

	if count > 5 {
		tokens = tokens[:len(tokens)-count+1]
	}
	return tokens
}

// trimTrailingLetterRuns removes a final run of three or more identical
// single-letter tokens, as long as the run is not the entire transcript.
func trimTrailingLetterRuns(tokens []string) []string {
	if len(tokens) == 0 {
		return tokens
	}

	last := tokens[len(tokens)-1]
	if !isASCIILetterToken(last) {
		return tokens
	}

	count := 0
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i] != last {
			break
		}
		count++
	}

	if count >= 3 && count < len(tokens) {
		tokens = tokens[:len(tokens)-count]
	}
	return tokens
}

// collapseRuns replaces every run of at least minRun consecutive tokens that
// satisfy eligible and match under eq with keep occurrences of the first
// token in the run.
func collapseRuns(tokens []string, eligible func(string) bool, eq func(a, b string) bool, minRun, keep int) []string {
	out := tokens[:0:0]
	for i := 0; i < len(tokens); {
		j := i + 1
		if eligible(tokens[i]) {
			for j < len(tokens) && eq(tokens[i], tokens[j]) {
				j++
			}
		}

		if j-i >= minRun {
			for k := 0; k < keep; k++ {
				out = append(out, tokens[i])
			}
		} else {
			out = append(out, tokens[i:j]...)
		}
		i = j
	}
	return out
}

func isWordToken(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

func isASCIILetterToken(tok string) bool {
	if len(tok) != 1 {
		return false
	}
	r := tok[0]
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
