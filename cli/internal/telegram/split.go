package telegram

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is the Bot API limit for one message, in characters.
const MaxMessageLength = 4096

// Split breaks text into chunks of at most limit characters. It prefers
// paragraph boundaries, then line boundaries, and cuts inside a line only
// when a single line is longer than limit.
func Split(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		parts []string
		cur   strings.Builder
		n     int
	)
	flush := func() {
		if s := strings.Trim(cur.String(), "\n"); s != "" {
			parts = append(parts, s)
		}
		cur.Reset()
		n = 0
	}
	add := func(piece, sep string) {
		size := utf8.RuneCountInString(piece)
		if n > 0 && n+utf8.RuneCountInString(sep)+size > limit {
			flush()
		}
		if n > 0 {
			cur.WriteString(sep)
			n += utf8.RuneCountInString(sep)
		}
		cur.WriteString(piece)
		n += size
	}

	for _, para := range strings.Split(text, "\n\n") {
		if utf8.RuneCountInString(para) <= limit {
			add(para, "\n\n")
			continue
		}
		sep := "\n\n"
		for _, line := range strings.Split(para, "\n") {
			for _, chunk := range splitRunes(line, limit) {
				add(chunk, sep)
				sep = "\n"
			}
		}
	}
	flush()
	return parts
}

func splitRunes(s string, limit int) []string {
	runes := []rune(s)
	if len(runes) <= limit {
		return []string{s}
	}
	var out []string
	for len(runes) > limit {
		out = append(out, string(runes[:limit]))
		runes = runes[limit:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}
