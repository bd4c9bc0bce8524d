package rules

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const separator = "=>"

// Vocabulary rewrites spoken phrases into their written form. Rules apply in
// file order, once each, case-insensitively and on word boundaries.
type Vocabulary struct {
	rules []phraseRule
}

type phraseRule struct {
	spoken  string
	written string
	re      *regexp.Regexp

	// Sides of the phrase that end in a word rune must not touch another
	// word rune in the text.
	boundedStart bool
	boundedEnd   bool
}

// Load reads a vocabulary file. An empty path or a missing file yields an
// empty vocabulary.
func Load(path string) (*Vocabulary, error) {
	if strings.TrimSpace(path) == "" {
		return &Vocabulary{}, nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Vocabulary{}, nil
		}
		return nil, fmt.Errorf("failed to read vocabulary file %q: %w", path, err)
	}

	vocab, err := Parse(string(contents))
	if err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary file %q: %w", path, err)
	}
	return vocab, nil
}

// Parse compiles `spoken phrase => written form` lines. Blank lines and lines
// starting with # are skipped.
func Parse(contents string) (*Vocabulary, error) {
	lines := strings.Split(contents, "\n")
	vocab := &Vocabulary{rules: make([]phraseRule, 0, len(lines))}

	for index, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		rule, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", index+1, err)
		}
		vocab.rules = append(vocab.rules, rule)
	}
	return vocab, nil
}

func parseLine(line string) (phraseRule, error) {
	spoken, written, ok := strings.Cut(line, separator)
	if !ok {
		return phraseRule{}, fmt.Errorf("expected %q between phrase and replacement", separator)
	}
	spoken = strings.Join(strings.Fields(spoken), " ")
	written = strings.TrimSpace(written)
	if spoken == "" {
		return phraseRule{}, errors.New("spoken phrase cannot be empty")
	}

	re, err := regexp.Compile(phrasePattern(spoken))
	if err != nil {
		return phraseRule{}, fmt.Errorf("invalid phrase %q: %w", spoken, err)
	}
	first, _ := utf8.DecodeRuneInString(spoken)
	last, _ := utf8.DecodeLastRuneInString(spoken)
	return phraseRule{
		spoken:       spoken,
		written:      written,
		re:           re,
		boundedStart: isWordRune(first),
		boundedEnd:   isWordRune(last),
	}, nil
}

// phrasePattern matches the phrase with any run of whitespace between words.
// Boundaries are checked in Go: RE2's \b only knows ASCII word characters.
func phrasePattern(spoken string) string {
	words := strings.Fields(spoken)
	quoted := make([]string, len(words))
	for i, word := range words {
		quoted[i] = regexp.QuoteMeta(word)
	}
	return "(?i)" + strings.Join(quoted, `\s+`)
}

func (r phraseRule) apply(text string) string {
	var b strings.Builder
	last, pos := 0, 0
	for pos < len(text) {
		loc := r.re.FindStringIndex(text[pos:])
		if loc == nil || loc[0] == loc[1] {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if !r.bounded(text, start, end) {
			_, size := utf8.DecodeRuneInString(text[start:])
			pos = start + size
			continue
		}
		b.WriteString(text[last:start])
		b.WriteString(r.written)
		last, pos = end, end
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

func (r phraseRule) bounded(text string, start, end int) bool {
	if r.boundedStart && start > 0 {
		if before, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(before) {
			return false
		}
	}
	if r.boundedEnd && end < len(text) {
		if after, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(after) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Len reports the number of loaded rules.
func (v *Vocabulary) Len() int {
	return len(v.rules)
}

// Apply rewrites text with every rule in order.
func (v *Vocabulary) Apply(text string) (string, error) {
	result := text
	for _, rule := range v.rules {
		result = rule.apply(result)
	}
	return result, nil
}
