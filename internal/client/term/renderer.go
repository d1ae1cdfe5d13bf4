// Package term renders the chat client in a terminal using lipgloss styles.
package term

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/client"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/client/format"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/domain"
)

var (
	userLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	assistantLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Italic(true)

	activeMark = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	notifyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	boldStyle   = lipgloss.NewStyle().Bold(true)
	italicStyle = lipgloss.NewStyle().Italic(true)
	codeStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("13")).
			Background(lipgloss.Color("0"))
)

// Renderer draws transcripts and session lists to a terminal. Confirm
// prompts read a line from the input reader.
type Renderer struct {
	out       io.Writer
	in        *bufio.Reader
	formatter *format.Formatter
}

// New creates a terminal renderer writing to out and reading confirmations
// from in.
func New(out io.Writer, in io.Reader) *Renderer {
	return &Renderer{
		out: out,
		in:  bufio.NewReader(in),
		formatter: &format.Formatter{
			LineBreak:  "\n",
			Bold:       func(s string) string { return boldStyle.Render(s) },
			Italic:     func(s string) string { return italicStyle.Render(s) },
			Code:       func(s string) string { return codeStyle.Render(s) },
			UploadIcon: format.UploadMarker,
		},
	}
}

// RenderTranscript prints the full conversation.
func (r *Renderer) RenderTranscript(entries []client.Entry) {
	fmt.Fprintln(r.out)
	for _, e := range entries {
		label := assistantLabel.Render("AI")
		if e.Role == domain.RoleUser {
			label = userLabel.Render("You")
		}

		body := r.formatter.Format(e.Content)
		if e.Pending {
			body = pendingStyle.Render(e.Content)
		}
		fmt.Fprintf(r.out, "%s %s\n%s\n\n",
			label,
			dimStyle.Render(e.Timestamp.Format("15:04:05")),
			body)
	}
}

// RenderDirectory prints the session list, newest first. An empty list
// prints nothing.
func (r *Renderer) RenderDirectory(sessions []client.SessionInfo, activeID string) {
	if len(sessions) == 0 {
		return
	}

	fmt.Fprintln(r.out, boldStyle.Render("Sessions"))
	for i, s := range sessions {
		mark := "  "
		if s.ID == activeID {
			mark = activeMark.Render("* ")
		}
		fmt.Fprintf(r.out, "%s%d. %s %s\n",
			mark, i+1, s.Title,
			dimStyle.Render(fmt.Sprintf("(%d messages)", s.MessageCount)))
	}
	fmt.Fprintln(r.out)
}

// Notify prints a transient status line.
func (r *Renderer) Notify(message string) {
	fmt.Fprintln(r.out, notifyStyle.Render(message))
}

// FocusInput is a no-op for a line-oriented terminal.
func (r *Renderer) FocusInput() {}

// Confirm prompts for a y/N answer.
func (r *Renderer) Confirm(prompt string) bool {
	fmt.Fprintf(r.out, "%s [y/N] ", prompt)
	line, err := r.in.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
