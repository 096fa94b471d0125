package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetDocType(t *testing.T) {
	tests := []struct {
		path     string
		expected DocType
	}{
		{"test.pdf", PDF},
		{"DOC.DOCX", TXT},
		{"notes.txt", TXT},
		{"letter.rtf", TXT},
		{"image.png", ERR},
		{"noextension", ERR},
	}

	for _, tt := range tests {
		if got := GetDocType(tt.path); got != tt.expected {
			t.Errorf("GetDocType(%s) = %v; want %v", tt.path, got, tt.expected)
		}
	}
}

func TestExtractText_Plaintext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	content := "First line of notes.\nSecond line of notes."
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	text, err := ExtractText(path)
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if !strings.Contains(text, "Second line of notes.") {
		t.Errorf("Extracted text missing content: %q", text)
	}
}

func TestExtractText_UnsupportedType(t *testing.T) {
	if _, err := ExtractText("diagram.png"); err == nil {
		t.Error("Expected an error for unsupported file type")
	}
}
