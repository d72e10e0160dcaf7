package repl

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	notifyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func prompt() string {
	return promptStyle.Render("you") + " > "
}

// renderer turns router replies into terminal output. Markdown goes through
// glamour; short single-line replies are printed as-is.
type renderer struct {
	md *glamour.TermRenderer
}

func newRenderer() *renderer {
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		md = nil
	}
	return &renderer{md: md}
}

func (r *renderer) reply(text string) string {
	if r.md == nil || !looksLikeMarkdown(text) {
		return text
	}
	rendered, err := r.md.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}

func (r *renderer) notification(message string) string {
	return notifyStyle.Render("🔔 " + message)
}

func (r *renderer) errorLine(err error) string {
	return errorStyle.Render("error: " + err.Error())
}

func (r *renderer) welcome() string {
	return fmt.Sprintf("%s\n%s\n\n",
		promptStyle.Render("jarvis"),
		dimStyle.Render("Talk to me in plain language. /help for commands, /quit to leave."))
}

func (r *renderer) help() string {
	return dimStyle.Render(`Commands:
  /help    show this help
  /quit    exit

Everything else goes to the assistant, for example:
  remind me to call mom at 15:00
  what reminders do I have?
  open firefox
  run a speed test
`) + "\n"
}

// looksLikeMarkdown is a cheap gate so plain confirmations skip the renderer.
func looksLikeMarkdown(s string) bool {
	if strings.Contains(s, "```") || strings.Contains(s, "**") {
		return true
	}
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			return true
		}
	}
	return false
}
