// Package types defines the shared data structures for the miniquest engine.
// This package contains only type definitions: no logic, no methods beyond
// trivial string forms.
package types

// ItemType classifies an item in the catalog.
type ItemType string

const (
	ItemHealing  ItemType = "healing"
	ItemLight    ItemType = "light"
	ItemWeapon   ItemType = "weapon"
	ItemArmor    ItemType = "armor"
	ItemMystical ItemType = "mystical"
	ItemUnlock   ItemType = "unlock"
	ItemOther    ItemType = "other"
)

// ItemDef is a catalog entry. Only the numeric field matching Type is used.
type ItemDef struct {
	Name        string   `json:"-"`
	Type        ItemType `json:"type"`
	Description string   `json:"description"`
	HealAmount  int      `json:"heal_amount,omitempty"`
	Damage      int      `json:"damage,omitempty"`
	Defense     int      `json:"defense,omitempty"`
}

// RoomDef is the static definition of a room.
type RoomDef struct {
	Name        string   `json:"-"`
	Description string   `json:"description"`
	Items       []string `json:"items"`
	Connections []string `json:"connections"`
	Hints       string   `json:"hints,omitempty"`
}

// GameDef holds game metadata.
type GameDef struct {
	Title   string `json:"title"`
	Start   string `json:"start"`
	StartHP int    `json:"hp"`
	Intro   string `json:"intro"`
}

// RoomState is the mutable part of a room. It is what gets persisted.
type RoomState struct {
	Items       []string `json:"items"`
	Connections []string `json:"connections"`
	Visited     bool     `json:"visited"`
}

// Player holds the player's runtime state.
type Player struct {
	Location  string   `json:"location"`
	Inventory []string `json:"inventory"`
	HP        int      `json:"hp"`
}

// State is the complete mutable game state.
type State struct {
	Player    Player
	Rooms     map[string]*RoomState
	TurnCount int
	Over      Outcome // non-Continue once the session has ended
}

// Enemy is a combat-scoped opponent. It is never persisted.
type Enemy struct {
	Name   string
	HP     int
	Attack int
}

// ActionKind tags a parsed command.
type ActionKind int

const (
	ActUnknown ActionKind = iota
	ActMove
	ActUse
	ActPickUp
	ActFight
	ActOpenChest
	ActHint
	ActMap
	ActSave
	ActLoad
	ActViewInventory
	ActHelp
	ActQuit
	ActLook
	ActRiddle
	ActAnswer
)

var actionNames = map[ActionKind]string{
	ActUnknown:       "unknown",
	ActMove:          "move",
	ActUse:           "use",
	ActPickUp:        "pick_up",
	ActFight:         "fight",
	ActOpenChest:     "open_chest",
	ActHint:          "hint",
	ActMap:           "map",
	ActSave:          "save",
	ActLoad:          "load",
	ActViewInventory: "view_inventory",
	ActHelp:          "help",
	ActQuit:          "quit",
	ActLook:          "look",
	ActRiddle:        "riddle",
	ActAnswer:        "answer",
}

func (k ActionKind) String() string {
	if s, ok := actionNames[k]; ok {
		return s
	}
	return "unknown"
}

// Action is the parsed representation of a player command.
// Arg carries the room name (Move), item name (Use, PickUp), the riddle
// answer (Answer) or the raw normalized input (Unknown).
type Action struct {
	Kind ActionKind
	Arg  string
}

// Outcome is the session-level result of a step.
type Outcome int

const (
	OutcomeContinue Outcome = iota
	OutcomeVictory
	OutcomeDefeat
	OutcomeQuit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	case OutcomeQuit:
		return "quit"
	default:
		return "continue"
	}
}

// CombatStatus is the state of a combat encounter.
type CombatStatus string

const (
	CombatOngoing        CombatStatus = "ongoing"
	CombatPlayerWon      CombatStatus = "player_won"
	CombatPlayerFled     CombatStatus = "player_fled"
	CombatPlayerDefeated CombatStatus = "player_defeated"
	CombatCanceled       CombatStatus = "canceled"
)

// Effect is a single atomic state mutation instruction.
type Effect struct {
	Type   string
	Params map[string]any
}

// Event is emitted after effects are applied.
type Event struct {
	Type string
	Data map[string]any
}

// Result is the output of a single game step.
type Result struct {
	Effects []Effect
	Events  []Event
	Output  []string
	Outcome Outcome
	// Prompt is non-empty when the engine expects the next input to answer
	// a question (combat action or riddle) rather than be a command.
	Prompt string
	// Moved is set when the player's location changed or state was reloaded.
	Moved bool
}
