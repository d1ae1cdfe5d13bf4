// Package upload stores user-supplied files and derives text previews from them.
package upload

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var supportedExtensions = map[string]bool{
	// Text
	".txt": true, ".md": true, ".py": true, ".js": true, ".html": true,
	".css": true, ".json": true, ".xml": true, ".csv": true,
	// Documents
	".pdf": true, ".doc": true, ".docx": true,
	// Images
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".webp": true,
	// Code
	".cpp": true, ".c": true, ".java": true, ".php": true, ".rb": true,
	".go": true, ".rs": true, ".swift": true,
}

var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".py": true, ".js": true, ".html": true,
	".css": true, ".json": true, ".xml": true, ".csv": true,
	".cpp": true, ".c": true, ".java": true, ".php": true, ".rb": true,
	".go": true, ".rs": true, ".swift": true,
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".webp": true,
}

// FileInfo describes a stored upload
type FileInfo struct {
	Filename         string
	OriginalFilename string
	Path             string
	Size             int64
	MimeType         string
	Extension        string
}

// Processor saves uploads under a directory and produces content previews
type Processor struct {
	dir      string
	maxBytes int64
}

// NewProcessor creates a processor rooted at dir
func NewProcessor(dir string, maxBytes int64) (*Processor, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Processor{dir: dir, maxBytes: maxBytes}, nil
}

// MaxBytes returns the configured upload size limit
func (p *Processor) MaxBytes() int64 {
	return p.maxBytes
}

// IsSupported reports whether the file extension is on the whitelist
func (p *Processor) IsSupported(filename string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Save writes the upload to disk under a timestamped safe filename
func (p *Processor) Save(content []byte, filename string) (*FileInfo, error) {
	safeName := safeFilename(filename)
	path := filepath.Join(p.dir, safeName)

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	return &FileInfo{
		Filename:         safeName,
		OriginalFilename: filename,
		Path:             path,
		Size:             int64(len(content)),
		MimeType:         mime.TypeByExtension(ext),
		Extension:        ext,
	}, nil
}

// Preview returns the text content or a description of the stored file
func (p *Processor) Preview(info *FileInfo) string {
	switch {
	case textExtensions[info.Extension]:
		return p.previewText(info)
	case info.Extension == ".pdf":
		return fmt.Sprintf(
			"PDF file uploaded successfully.\nFile size: %d bytes\n\nNote: PDF text extraction is not available. Consider uploading the text content directly for analysis.",
			info.Size,
		)
	case imageExtensions[info.Extension]:
		return fmt.Sprintf(
			"Image uploaded: %s\nSize: %d bytes\nFormat: %s\n\nThe image has been saved and can be referenced in our conversation.",
			info.OriginalFilename, info.Size, info.Extension,
		)
	default:
		return fmt.Sprintf(
			"File uploaded: %s (%d bytes)\nFile type: %s\n\nThis file type is supported but content analysis is not available yet.",
			info.OriginalFilename, info.Size, info.MimeType,
		)
	}
}

func (p *Processor) previewText(info *FileInfo) string {
	content, err := os.ReadFile(info.Path)
	if err != nil {
		return fmt.Sprintf("Error processing file %s: %v", info.OriginalFilename, err)
	}
	if !utf8.Valid(content) {
		return "Could not decode file content. Binary file or unsupported encoding."
	}
	return "File content:\n\n" + string(content)
}

// safeFilename prefixes a timestamp and strips unsafe characters
func safeFilename(filename string) string {
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filepath.Base(filename), ext)

	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	safe := strings.TrimRight(b.String(), " ")

	return fmt.Sprintf("%s_%s%s", time.Now().Format("20060102_150405"), safe, ext)
}
