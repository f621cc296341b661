package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleStatusCombat = lipgloss.NewStyle().
				Background(lipgloss.Color("88")).
				Foreground(lipgloss.Color("255")).
				Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleModalPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214")).
				Bold(true)

	styleRoomDesc = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleHeading = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117")).
			Bold(true)

	styleYouSee = lipgloss.NewStyle().
			Bold(true)

	styleExits = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleDialogue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleSuccess = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindRoomDesc lineKind = iota
	kindHeading
	kindYouSee
	kindExits
	kindDialogue
	kindSystem
	kindError
	kindSuccess
	kindTrace
)

var errorPrefixes = []string{
	"There is no",
	"You don't",
	"You can't",
	"You need",
	"I don't understand",
	"Invalid action",
	"The chest is locked",
	"That's not the right answer",
	"No save file",
	"Could not",
	"The Goblin hits you",
	"You have been defeated",
	"You have succumbed",
	"A sudden gust",
}

// The riddle voice in the cave speaks in its own color.
var voicePrefixes = []string{
	"A voice whispers:",
	"The voice ",
}

var successPrefixes = []string{
	"You picked up",
	"You have slain",
	"You managed to flee",
	"Correct!",
	"Congratulations!",
	"Game saved!",
	"Game loaded!",
}

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "Location:"), strings.HasPrefix(line, "You return to:"):
		return kindHeading
	case strings.HasPrefix(line, "You see:"):
		return kindYouSee
	case strings.HasPrefix(line, "Paths:"):
		return kindExits
	case hasAnyPrefix(line, errorPrefixes):
		return kindError
	case hasAnyPrefix(line, successPrefixes):
		return kindSuccess
	case hasAnyPrefix(line, voicePrefixes):
		return kindDialogue
	default:
		return kindRoomDesc
	}
}

func hasAnyPrefix(line string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// styledYouSee renders "You see: item1, item2" with item names bold.
func styledYouSee(line string) string {
	const prefix = "You see: "
	if !strings.HasPrefix(line, prefix) {
		return styleRoomDesc.Render(line)
	}
	return styleRoomDesc.Render(prefix) + styleYouSee.Render(line[len(prefix):])
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
