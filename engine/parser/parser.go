// Package parser converts command strings into typed Actions.
// Intentionally dumb: no NLP, just a fixed grammar.
package parser

import (
	"strings"

	"github.com/nathoo/miniquest/types"
)

// phrases are the commands that take no argument.
var phrases = map[string]types.ActionKind{
	"quit":           types.ActQuit,
	"view inventory": types.ActViewInventory,
	"save":           types.ActSave,
	"load":           types.ActLoad,
	"hint":           types.ActHint,
	"fight":          types.ActFight,
	"open chest":     types.ActOpenChest,
	"map":            types.ActMap,
	"help":           types.ActHelp,
	"look":           types.ActLook,
	"riddle":         types.ActRiddle,
}

var phraseAliases = map[string]string{
	"inventory": "view inventory",
	"inv":       "view inventory",
	"i":         "view inventory",
	"l":         "look",
	"exit":      "quit",
	"?":         "help",
}

// argVerbs are the verb prefixes that take a trailing argument, longest first
// so that "pick up" wins over a hypothetical "pick".
var argVerbs = []struct {
	prefix string
	kind   types.ActionKind
}{
	{"pick up", types.ActPickUp},
	{"take", types.ActPickUp},
	{"get", types.ActPickUp},
	{"use", types.ActUse},
	{"answer", types.ActAnswer},
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Normalize trims, lowercases and collapses internal whitespace.
func Normalize(input string) string {
	return strings.Join(strings.Fields(strings.ToLower(input)), " ")
}

// Parse converts a raw command string into an Action. exits are the
// connections of the player's current room; a bare room name matching one
// of them (case-insensitively) becomes a Move carrying the exit's canonical
// spelling.
func Parse(input string, exits []string) types.Action {
	cmd := Normalize(input)
	if cmd == "" {
		return types.Action{Kind: types.ActUnknown}
	}

	if alias, ok := phraseAliases[cmd]; ok {
		cmd = alias
	}
	if kind, ok := phrases[cmd]; ok {
		return types.Action{Kind: kind}
	}

	for _, v := range argVerbs {
		if cmd == v.prefix {
			return types.Action{Kind: v.kind}
		}
		if rest, ok := strings.CutPrefix(cmd, v.prefix+" "); ok {
			if v.kind == types.ActAnswer {
				return types.Action{Kind: v.kind, Arg: rest}
			}
			return types.Action{Kind: v.kind, Arg: stripArticles(rest)}
		}
	}

	if room, ok := matchExit(cmd, exits); ok {
		return types.Action{Kind: types.ActMove, Arg: room}
	}
	// "go <room>" is accepted as a courtesy.
	if rest, ok := strings.CutPrefix(cmd, "go "); ok {
		if room, ok := matchExit(strings.TrimPrefix(rest, "to "), exits); ok {
			return types.Action{Kind: types.ActMove, Arg: room}
		}
	}

	return types.Action{Kind: types.ActUnknown, Arg: cmd}
}

// matchExit finds the exit whose normalized name equals cmd.
func matchExit(cmd string, exits []string) (string, bool) {
	for _, exit := range exits {
		if Normalize(exit) == cmd {
			return exit, true
		}
	}
	return "", false
}

// stripArticles removes leading articles ("the", "a", "an") from the argument.
func stripArticles(arg string) string {
	words := strings.Fields(arg)
	for len(words) > 1 && articles[words[0]] {
		words = words[1:]
	}
	return strings.Join(words, " ")
}
