package processor

import (
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"
)

type ProcessorConfig struct {
	ChunkSize       int
	// ChunkOverlap of 0 selects the default; use a negative value for none.
	ChunkOverlap    int
	MinChunkLength  int
	Lowercase       bool
	RemoveStopwords bool
	CustomStopwords []string
}

// Processor splits text into sentence-aligned chunks.
type Processor struct {
	config ProcessorConfig
}

var _ textsplitter.TextSplitter = Processor{}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.ChunkSize <= 0 {
		config.ChunkSize = 1000
	}
	if config.ChunkOverlap < 0 {
		config.ChunkOverlap = 0
	} else if config.ChunkOverlap == 0 {
		config.ChunkOverlap = 200
	}
	if config.ChunkOverlap >= config.ChunkSize {
		config.ChunkOverlap = config.ChunkSize / 5
	}
	if config.MinChunkLength <= 0 {
		config.MinChunkLength = 1
	}

	return Processor{
		config: config,
	}
}

func New() Processor {
	return NewWithConfig(ProcessorConfig{})
}

// SplitText cleans text and cuts it into chunks of at most ChunkSize bytes,
// except where a single sentence is longer. Consecutive chunks share up to
// ChunkOverlap trailing bytes of the previous chunk.
func (p Processor) SplitText(text string) ([]string, error) {
	return p.splitIntoChunks(p.cleanText(text)), nil
}

func (p Processor) cleanText(text string) string {
	if p.config.Lowercase {
		text = strings.ToLower(text)
	}

	// Replace runs of whitespace with a single space
	text = strings.Join(strings.Fields(text), " ")

	if p.config.RemoveStopwords {
		text = p.removeStopwords(text)
	}

	return strings.TrimSpace(text)
}

func (p Processor) splitIntoChunks(text string) []string {
	var chunks []string

	sentences := p.splitIntoSentences(text)

	current := strings.Builder{}

	flush := func() {
		chunk := strings.TrimSpace(current.String())
		if len(chunk) >= p.config.MinChunkLength {
			chunks = append(chunks, chunk)
		}
	}

	for _, sentence := range sentences {
		if current.Len() > 0 && current.Len()+len(sentence) > p.config.ChunkSize {
			flush()

			// Start the next chunk with the tail of this one
			tail := overlapTail(strings.TrimSpace(current.String()), p.config.ChunkOverlap)
			current.Reset()
			if tail != "" {
				current.WriteString(tail)
				current.WriteString(" ")
			}
		}

		current.WriteString(sentence)
		current.WriteString(" ")
	}

	if current.Len() > 0 {
		flush()
	}

	return chunks
}

// overlapTail returns at most n trailing bytes of s, cut on a rune boundary.
func overlapTail(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return ""
	}
	start := len(s) - n
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return strings.TrimSpace(s[start:])
}

func (p Processor) splitIntoSentences(text string) []string {
	var sentences []string

	current := strings.Builder{}
	runes := []rune(text)

	for i, r := range runes {
		current.WriteRune(r)

		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && runes[i+1] != ' ' && runes[i+1] != '\n' {
			continue
		}
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

func (p Processor) removeStopwords(text string) string {
	stopwords := make(map[string]struct{})
	for _, w := range getStopwords() {
		stopwords[w] = struct{}{}
	}
	for _, w := range p.config.CustomStopwords {
		stopwords[strings.ToLower(w)] = struct{}{}
	}

	var filtered []string
	for _, word := range strings.Fields(text) {
		if _, ok := stopwords[strings.ToLower(word)]; !ok {
			filtered = append(filtered, word)
		}
	}

	return strings.Join(filtered, " ")
}

// Common English stopwords
func getStopwords() []string {
	return []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for",
		"from", "has", "he", "in", "is", "it", "its", "of", "on",
		"that", "the", "to", "was", "were", "will", "with",
	}
}
