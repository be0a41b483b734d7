package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// OrderStatusPill returns a colored indicator such as "● InProgress".
func OrderStatusPill(s domain.OrderStatus) string {
	switch s {
	case domain.OrderPlanned:
		return StyleBlue.Render("○ Planned")
	case domain.OrderInProgress:
		return StyleYellow.Render("● InProgress")
	case domain.OrderDone:
		return StyleGreen.Render("✔ Done")
	case domain.OrderCanceled:
		return StyleDim.Render("✖ Canceled")
	default:
		return StyleDim.Render(string(s))
	}
}

func WorkOrderStatusPill(s domain.WorkOrderStatus) string {
	switch s {
	case domain.WorkOrderPending:
		return StyleBlue.Render("○ Pending")
	case domain.WorkOrderStarted:
		return StyleYellow.Render("● Started")
	case domain.WorkOrderPaused:
		return StylePurple.Render("‖ Paused")
	case domain.WorkOrderCompleted:
		return StyleGreen.Render("✔ Completed")
	case domain.WorkOrderCanceled:
		return StyleDim.Render("✖ Canceled")
	default:
		return StyleDim.Render(string(s))
	}
}

func PriorityBadge(p domain.Priority) string {
	switch p {
	case domain.PriorityUrgent:
		return StyleRed.Render("URGENT")
	case domain.PriorityHigh:
		return StyleYellow.Render("High")
	case domain.PriorityLow:
		return StyleDim.Render("Low")
	default:
		return StyleFg.Render(string(p))
	}
}

// Header renders a section header with an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
