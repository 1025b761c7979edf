package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var pageMarker = regexp.MustCompile(`(?m)^---- Page (\d+) ----$`)

// Chunk is a piece of resume text small enough to embed.
type Chunk struct {
	Page  int
	Index int
	Text  string
}

type TextChunker interface {
	ChunkResume(text string) []Chunk
}

type textChunker struct {
	maxChunkSize int
	overlap      int
}

func NewTextChunker(maxChunkSize, overlap int) TextChunker {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}
	return &textChunker{maxChunkSize: maxChunkSize, overlap: overlap}
}

// ChunkResume splits text at page markers and then by size. Text without
// markers is treated as page 1.
func (tc *textChunker) ChunkResume(text string) []Chunk {
	var chunks []Chunk
	for _, page := range splitPages(text) {
		for _, piece := range tc.chunkText(page.text) {
			chunks = append(chunks, Chunk{
				Page:  page.number,
				Index: len(chunks),
				Text:  piece,
			})
		}
	}
	return chunks
}

type pageText struct {
	number int
	text   string
}

func splitPages(text string) []pageText {
	locs := pageMarker.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return []pageText{{number: 1, text: text}}
	}

	pages := make([]pageText, 0, len(locs))
	for i, loc := range locs {
		number, _ := strconv.Atoi(text[loc[2]:loc[3]])
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		pages = append(pages, pageText{number: number, text: text[loc[1]:end]})
	}
	return pages
}

func (tc *textChunker) chunkText(text string) []string {
	var (
		chunks  []string
		current strings.Builder
	)

	flush := func(sep string) {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, current.String())
		current.Reset()
		if tail := lastNRunes(chunks[len(chunks)-1], tc.overlap); tail != "" {
			current.WriteString(tail)
			current.WriteString(sep)
		}
	}

	appendPiece := func(piece, sep string) {
		if current.Len() > 0 && utf8.RuneCountInString(current.String())+utf8.RuneCountInString(piece)+len(sep) > tc.maxChunkSize {
			flush(sep)
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(piece)
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if utf8.RuneCountInString(para) <= tc.maxChunkSize {
			appendPiece(para, "\n\n")
			continue
		}
		for _, sentence := range splitIntoSentences(para) {
			appendPiece(sentence, " ")
		}
	}

	if strings.TrimSpace(current.String()) != "" {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func splitIntoSentences(text string) []string {
	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	var result []string
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s != "" {
			result = append(result, s)
		}
	}
	return result
}

func lastNRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}
