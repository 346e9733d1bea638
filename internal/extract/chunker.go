package extract

import (
	"strings"

	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/config"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/domain/commonModels"
)

// Chunk splits extracted text into consecutive slices of at most
// maxChunkSize characters and returns them with the document word count.
// Splitting is rune based so a multi-byte code point is never cut in half.
// A document with no extractable content yields exactly one chunk carrying
// the no-content marker and a word count of 0.
func Chunk(text string, maxChunkSize int) ([]commonModels.Chunk, int) {
	if maxChunkSize <= 0 {
		maxChunkSize = config.MaxChunkSize
	}

	if strings.TrimSpace(text) == "" {
		return []commonModels.Chunk{{Index: 0, Text: config.NoContentMarker}}, 0
	}

	wordCount := len(strings.Fields(text))

	runes := []rune(text)
	chunks := make([]commonModels.Chunk, 0, (len(runes)+maxChunkSize-1)/maxChunkSize)
	for start, index := 0, 0; start < len(runes); start, index = start+maxChunkSize, index+1 {
		end := start + maxChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, commonModels.Chunk{Index: index, Text: string(runes[start:end])})
	}
	return chunks, wordCount
}
