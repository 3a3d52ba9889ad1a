package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/andihoo/chrono/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// HumanTimestampFrom renders t relative to now: "Just now", "5m ago",
// "3h ago", or a short date.
func HumanTimestampFrom(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < 0:
		return ShortDateTime(t)
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return ShortDateTime(t)
	}
}

// ShortDateTime renders a timestamp in local time, e.g. "Mar 10 09:30".
func ShortDateTime(t time.Time) string {
	return t.Local().Format("Jan 2 15:04")
}

// DueLabel renders an optional due date; overdue dates are red.
func DueLabel(due *time.Time, now time.Time) string {
	if due == nil {
		return Dim("--")
	}
	label := due.Local().Format("Jan 2")
	if due.Before(now) {
		return StyleRed.Render(label)
	}
	if due.Sub(now) < 48*time.Hour {
		return StyleYellow.Render(label)
	}
	return StyleFg.Render(label)
}

// TaskStatusPill returns a colored status indicator.
func TaskStatusPill(status string) string {
	switch domain.TaskStatus(status) {
	case domain.TaskTodo:
		return StyleBlue.Render("○ Todo")
	case domain.TaskInProgress:
		return StyleGreen.Render("● In Progress")
	case domain.TaskDone:
		return StyleDim.Render("✔ Done")
	case domain.TaskDeleted:
		return StyleDim.Render("✖ Deleted")
	default:
		return StyleDim.Render(status)
	}
}

// RoleBadge marks administrators.
func RoleBadge(role string) string {
	if domain.Role(role) == domain.RoleAdmin {
		return StylePurple.Render("admin")
	}
	return Dim("user")
}

// Truncate shortens s to at most n visible runes, ending with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
