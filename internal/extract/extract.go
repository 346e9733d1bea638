package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/config"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/domain/commonModels"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/pkg/logger_i"
)

type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

var logger *logger_i.Logger

func GetDocType(docPath string) commonModels.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".txt", ".rtf", ".odt":
		return commonModels.DOCX
	default:
		return commonModels.ERR
	}
}

// ExtractText pulls the full text out of an uploaded document. The per-page
// structure only matters for logging, the chunker works on the joined text.
func ExtractText(path string, contentType commonModels.DocType) (string, error) {
	if logger == nil {
		logger = logger_i.NewLogger("Document Extraction")
	}

	var pages []rawPage
	var err error
	switch contentType {
	case commonModels.PDF:
		pages, err = extractPDF(path)
	case commonModels.DOCX:
		pages, err = extractdocxTxtRtf(path)
	default:
		return "", fmt.Errorf("unsupported content type: %s", contentType)
	}
	if err != nil {
		return "", err
	}

	logger.Debug("Extracted document", "path", path, "pages", len(pages))

	var text strings.Builder
	for _, page := range pages {
		text.WriteString(page.Content)
		text.WriteString("\n")
	}
	return text.String(), nil
}

// ChunkDocument is the full document-to-chunks path used by the upload
// handler: extract, then split for fan-out.
func ChunkDocument(path string, contentType commonModels.DocType) ([]commonModels.Chunk, int, error) {
	text, err := ExtractText(path, contentType)
	if err != nil {
		return nil, 0, err
	}
	chunks, wordCount := Chunk(text, config.MaxChunkSize)
	return chunks, wordCount, nil
}
