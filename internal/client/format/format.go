// Package format renders the markdown subset used in chat messages.
//
// Formatting is a fixed, order-sensitive substitution chain: line breaks,
// then bold markers, then italic markers, then inline-code markers, then a
// leading-icon substitution for upload-tagged messages. Later substitutions
// never reinterpret text produced by earlier ones.
package format

import (
	"regexp"
	"strings"
)

// UploadMarker tags messages that record a file upload.
const UploadMarker = "📎"

var (
	boldRe   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe = regexp.MustCompile(`\*(.+?)\*`)
	codeRe   = regexp.MustCompile("`(.+?)`")
)

// Formatter applies the substitution chain with target-specific replacements
type Formatter struct {
	LineBreak  string
	Bold       func(string) string
	Italic     func(string) string
	Code       func(string) string
	UploadIcon string
}

// HTML returns a formatter producing message-bubble markup
func HTML() *Formatter {
	return &Formatter{
		LineBreak:  "<br>",
		Bold:       func(s string) string { return "<strong>" + s + "</strong>" },
		Italic:     func(s string) string { return "<em>" + s + "</em>" },
		Code:       func(s string) string { return "<code>" + s + "</code>" },
		UploadIcon: `<span class="msg-icon">` + UploadMarker + `</span>`,
	}
}

// Format applies the substitution chain in its fixed order
func (f *Formatter) Format(s string) string {
	out := strings.ReplaceAll(s, "\n", f.LineBreak)

	out = boldRe.ReplaceAllStringFunc(out, func(m string) string {
		return f.Bold(m[2 : len(m)-2])
	})
	out = italicRe.ReplaceAllStringFunc(out, func(m string) string {
		return f.Italic(m[1 : len(m)-1])
	})
	out = codeRe.ReplaceAllStringFunc(out, func(m string) string {
		return f.Code(m[1 : len(m)-1])
	})

	if strings.HasPrefix(out, UploadMarker) {
		out = f.UploadIcon + strings.TrimPrefix(out, UploadMarker)
	}
	return out
}
