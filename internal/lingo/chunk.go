package lingo

import (
	"strings"
	"unicode/utf8"
)

// chunkSeparators are tried coarsest first.
var chunkSeparators = []string{"\n\n", "\n", " "}

// chunk is one piece of a split text. sep is the separator that stood
// between it and the previous chunk in the source; empty for the first
// chunk and inside a split word.
type chunk struct {
	text string
	sep  string
}

// splitChunks cuts text into pieces of at most limit runes. Cuts fall on
// paragraph breaks where possible, then on line breaks, then on spaces, and
// only split a word when it alone exceeds the limit. joinChunks with the
// pieces rebuilds the text.
func splitChunks(text string, limit int) []chunk {
	if utf8.RuneCountInString(text) <= limit {
		return []chunk{{text: text}}
	}
	return packChunks(text, 0, limit)
}

func packChunks(text string, level, limit int) []chunk {
	if level == len(chunkSeparators) {
		return splitRunes(text, limit)
	}

	sep := chunkSeparators[level]
	var chunks []chunk
	for _, part := range strings.Split(text, sep) {
		if level == 0 {
			part = strings.TrimSpace(part)
		}
		if part == "" {
			continue
		}

		if n := len(chunks); n > 0 {
			joined := chunks[n-1].text + sep + part
			if utf8.RuneCountInString(joined) <= limit {
				chunks[n-1].text = joined
				continue
			}
		}

		pieces := []chunk{{text: part}}
		if utf8.RuneCountInString(part) > limit {
			pieces = packChunks(part, level+1, limit)
		}
		if len(pieces) == 0 {
			continue
		}
		if len(chunks) > 0 {
			pieces[0].sep = sep
		}
		chunks = append(chunks, pieces...)
	}
	return chunks
}

func splitRunes(word string, limit int) []chunk {
	runes := []rune(word)
	var out []chunk
	for len(runes) > limit {
		out = append(out, chunk{text: string(runes[:limit])})
		runes = runes[limit:]
	}
	if len(runes) > 0 {
		out = append(out, chunk{text: string(runes)})
	}
	return out
}

// joinChunks concatenates texts, one per chunk, with the chunks' separators.
func joinChunks(chunks []chunk, texts []string) string {
	var b strings.Builder
	for i, c := range chunks {
		b.WriteString(c.sep)
		b.WriteString(texts[i])
	}
	return b.String()
}
