package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/todolist/internal/model"
)

const maxTitle = 80

func OK(w io.Writer, msg string) {
	fmt.Fprintln(w, current.Success.Render(current.SymDone+" "+msg))
}

func Fail(w io.Writer, msg string) {
	fmt.Fprintln(w, current.Error.Render("✖ "+msg))
}

// ProgressBar renders a bar with a done/total suffix.
func ProgressBar(done, total, width int) string {
	if width < 5 {
		width = 5
	}
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf("] %d/%d", done, total)
}

// Header shows counts over the whole list and the active filter.
func Header(done, pending int, filter string) string {
	t := current
	return fmt.Sprintf("%s  %s %d  %s %d  %s %d  %s",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
		t.Accent.Render("Total"), done+pending,
		t.Muted.Render("filter: "+filter),
	)
}

// ItemLine renders one row; index is 1-based.
func ItemLine(index int, it model.Item) string {
	t := current
	box, color, title := t.BoxUnchecked, t.Muted, truncate(it.Title)
	if it.Done {
		box, color, title = t.BoxChecked, t.Success, t.Done.Render(title)
	}
	line := fmt.Sprintf("%s %s %s", t.Muted.Render(fmt.Sprintf("%2d.", index)), color.Render(box), title)
	if tags := tagSuffix(it); tags != "" {
		line += " " + t.Muted.Render(tags)
	}
	return line
}

func ItemLines(items []model.Item) []string {
	if len(items) == 0 {
		return []string{current.Muted.Render("no items")}
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		out = append(out, ItemLine(i+1, it))
	}
	return out
}

// GroupLines lists pending items first, then done ones. Indices keep their
// position in items so they stay valid for done/rm.
func GroupLines(items []model.Item) []string {
	t := current
	var pend, done []string
	for i, it := range items {
		if it.Done {
			done = append(done, ItemLine(i+1, it))
		} else {
			pend = append(pend, ItemLine(i+1, it))
		}
	}
	section := func(name string, lines []string) []string {
		out := []string{t.Accent.Render(name)}
		if len(lines) == 0 {
			return append(out, t.Muted.Render("(none)"))
		}
		return append(out, lines...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}

// Panel frames lines in the theme border.
func Panel(lines []string) string {
	return lipgloss.NewStyle().
		Border(current.Border).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) > maxTitle {
		return string(r[:maxTitle-3]) + "..."
	}
	return s
}

func tagSuffix(it model.Item) string {
	var tags []string
	if it.Priority != "" && it.Priority != model.PriorityMedium {
		tags = append(tags, string(it.Priority))
	}
	if it.Category != "" {
		tags = append(tags, it.Category)
	}
	if len(tags) == 0 {
		return ""
	}
	return "[" + strings.Join(tags, " · ") + "]"
}
