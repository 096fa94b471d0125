package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nkodali/KBaseAPI/internal/domain/kbError"
	"github.com/nkodali/KBaseAPI/pkg/logger_i"
)

// This package turns uploaded files into plain text for the knowledge
// base. Everything downstream (chunking, embedding, indexing) only ever
// sees the extracted string.

type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

var logger = logger_i.NewLogger("Document Extraction")

type DocType string

const (
	PDF DocType = "PDF"
	TXT DocType = "TXT"
	ERR DocType = "ERROR"
)

func GetDocType(docPath string) DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return PDF
	case ".docx", ".txt", ".rtf", ".odt":
		return TXT
	default:
		return ERR
	}
}

// ExtractText reads the file at path and returns its full plain-text
// content, pages joined by newlines.
func ExtractText(path string) (string, error) {
	docType := GetDocType(path)
	logger.Debug("Extracting document", "path", path, "type", docType)

	var pages []rawPage
	var err error
	switch docType {
	case PDF:
		pages, err = extractPDF(path)
	case TXT:
		pages, err = extractDocxTxtRtf(path)
	default:
		return "", kbError.New(kbError.KindValidation,
			fmt.Sprintf("unsupported file type: %s", filepath.Ext(path)))
	}
	if err != nil {
		return "", err
	}

	var parts []string
	for _, page := range pages {
		if strings.TrimSpace(page.Content) != "" {
			parts = append(parts, page.Content)
		}
	}
	return strings.Join(parts, "\n"), nil
}
