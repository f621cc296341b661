package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/miniquest/engine/state"
)

// renderStatusBar produces a full-width inverted status line showing
// current room, paths, hp, inventory, and turn count. The bar turns red
// while a fight is on.
func (m Model) renderStatusBar() string {
	s := m.engine.State

	var paths []string
	if rs := state.CurrentRoom(s); rs != nil {
		paths = rs.Connections
	}

	left := fmt.Sprintf(" %s | Paths: %s", s.Player.Location, strings.Join(paths, ", "))
	if m.engine.InCombat() {
		left = fmt.Sprintf(" %s | Fighting the Goblin", s.Player.Location)
	}
	right := fmt.Sprintf("HP:%d | T:%d ", s.Player.HP, s.TurnCount)

	// Show inventory items if they fit, otherwise just count.
	if invCount := len(s.Player.Inventory); invCount > 0 {
		invStr := strings.Join(s.Player.Inventory, ", ")
		candidate := fmt.Sprintf("HP:%d | Inv: %s | T:%d ", s.Player.HP, invStr, s.TurnCount)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("HP:%d | Inv: %d | T:%d ", s.Player.HP, invCount, s.TurnCount)
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	style := styleStatusBar
	if m.engine.InCombat() {
		style = styleStatusCombat
	}
	return style.Width(m.width).Render(bar)
}
