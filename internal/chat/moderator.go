package chat

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

const censorRune = '*'

// Moderator masks banned words in chat messages, including simple leetspeak
// and punctuation-padded spellings.
type Moderator struct {
	matcher *goahocorasick.Machine
}

// NewModerator builds the matcher. With no words every message passes unchanged.
func NewModerator(words []string) (*Moderator, error) {
	patterns := make([][]rune, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		p := foldRunes([]rune(w))
		if _, dup := seen[string(p)]; dup || len(p) == 0 {
			continue
		}
		seen[string(p)] = struct{}{}
		patterns = append(patterns, p)
	}
	if len(patterns) == 0 {
		return &Moderator{}, nil
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m}, nil
}

// Censor replaces every rune of each banned occurrence with '*', keeping spacing.
func (m *Moderator) Censor(text string) string {
	if m == nil || m.matcher == nil {
		return text
	}

	orig := []rune(text)
	folded := make([]rune, 0, len(orig))
	positions := make([]int, 0, len(orig))
	for i, r := range orig {
		f := foldRune(r)
		if isNoise(f) {
			continue
		}
		folded = append(folded, f)
		positions = append(positions, i)
	}
	if len(folded) == 0 {
		return text
	}

	hits := m.matcher.MultiPatternSearch(folded, false)
	if len(hits) == 0 {
		return text
	}
	for _, hit := range hits {
		end := hit.Pos + len(hit.Word)
		if hit.Pos < 0 || end > len(positions) {
			continue
		}
		for i := positions[hit.Pos]; i <= positions[end-1]; i++ {
			orig[i] = censorRune
		}
	}
	return string(orig)
}

func foldRunes(in []rune) []rune {
	out := make([]rune, 0, len(in))
	for _, r := range in {
		if f := foldRune(r); !isNoise(f) {
			out = append(out, f)
		}
	}
	return out
}

func foldRune(r rune) rune {
	switch r {
	case '4', '@':
		r = 'a'
	case '3':
		r = 'e'
	case '1', '!', '|':
		r = 'i'
	case '0':
		r = 'o'
	case '5', '$':
		r = 's'
	}
	return unicode.ToLower(r)
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
