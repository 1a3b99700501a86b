package bubbletea

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/finsight/finsight"
	"github.com/finsight/finsight/markdown"
)

// transcript holds one chat container's conversation entries. User
// messages render with a "> " prefix, assistant messages through the
// markdown renderer, assistant error lines in the error style. Markdown
// output is cached per width since entries never change once appended.
type transcript struct {
	theme       finsight.Theme
	styles      Styles
	placeholder string
	entries     []*transcriptEntry
}

type transcriptEntry struct {
	msg             finsight.Message
	renderedByWidth map[int]string
}

func newTranscript(theme finsight.Theme, styles Styles, placeholder string) *transcript {
	return &transcript{
		theme:       theme,
		styles:      styles,
		placeholder: placeholder,
	}
}

func (t *transcript) append(msg finsight.Message) {
	t.entries = append(t.entries, &transcriptEntry{
		msg:             msg,
		renderedByWidth: make(map[int]string),
	})
}

func (t *transcript) clear() {
	t.entries = nil
}

func (t *transcript) view(width int) string {
	if len(t.entries) == 0 {
		return t.styles.Muted.Render(t.placeholder)
	}
	parts := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		parts = append(parts, t.renderEntry(e, width))
	}
	return strings.Join(parts, "\n\n")
}

func (t *transcript) renderEntry(e *transcriptEntry, width int) string {
	if cached, ok := e.renderedByWidth[width]; ok {
		return cached
	}

	var rendered string
	switch {
	case e.msg.Role == finsight.RoleUser:
		content := t.styles.UserMsg.Render("> ") + e.msg.Text
		rendered = lipgloss.NewStyle().Width(width).Render(content)
	case strings.HasPrefix(e.msg.Text, "Error: "):
		rendered = lipgloss.NewStyle().Width(width).Render(t.styles.Error.Render(e.msg.Text))
	default:
		rendered = markdown.Render(e.msg.Text, width, t.theme)
	}

	e.renderedByWidth[width] = rendered
	return rendered
}
