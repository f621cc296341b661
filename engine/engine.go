// Package engine provides the Step() orchestrator that wires together
// parsing, resolution, combat, effects, and events into a single turn.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nathoo/miniquest/engine/effects"
	"github.com/nathoo/miniquest/engine/events"
	"github.com/nathoo/miniquest/engine/parser"
	"github.com/nathoo/miniquest/engine/resolve"
	"github.com/nathoo/miniquest/engine/save"
	"github.com/nathoo/miniquest/engine/shuffle"
	"github.com/nathoo/miniquest/engine/state"
	"github.com/nathoo/miniquest/types"
)

// Fixed places and items the built-in puzzles hang on.
const (
	RiddleRoom   = "Cave"
	RiddleItem   = "torch"
	SecretRoom   = "Hidden Chamber"
	ChestRoom    = "Hidden Chamber"
	ChestKey     = "key"
	MapItem      = "map"
	riddleAnswer = "echo"
)

// RiddlePrompt labels the input line while the riddle awaits an answer.
const RiddlePrompt = "Your answer:"

// DefaultSaveFile is where the game is saved when no store is configured.
const DefaultSaveFile = "savegame.json"

// DefaultHazardOdds is the N in the 1-in-N chance of a hazard each turn.
const DefaultHazardOdds = 5

var helpLines = []string{
	"Available commands:",
	"- view inventory        (shows your carried items)",
	"- hint                  (shows a hint for this room)",
	"- save                  (save your progress)",
	"- load                  (load from last save)",
	"- use [item]            (use an item from inventory)",
	"- pick up [item]        (pick up an item in the room)",
	"- fight                 (engage in combat if available)",
	"- open chest            (only works in Hidden Chamber if you have a key)",
	"- map                   (view world map if you have a map)",
	"- look                  (describe the room again)",
	"- help                  (show this list again)",
	"- quit                  (exit the game)",
	"- <room name>           (walk to a connected room)",
}

// Engine holds the game definitions and mutable state.
type Engine struct {
	Defs  *state.Defs
	State *types.State
	RNG   *RNG

	store      save.Store
	bus        *events.Bus
	log        *slog.Logger
	roller     Roller
	hazardOdds int

	combat *Encounter
	riddle bool // the next Step input answers the riddle
}

type options struct {
	seed       int64
	seeded     bool
	shuffle    bool
	store      save.Store
	bus        *events.Bus
	log        *slog.Logger
	roller     Roller
	hazardOdds int
}

// Option configures an Engine.
type Option func(*options)

// WithSeed fixes the RNG seed. Without it the engine seeds from the clock.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed, o.seeded = seed, true }
}

// WithoutShuffle keeps the items where the content placed them.
func WithoutShuffle() Option {
	return func(o *options) { o.shuffle = false }
}

// WithStore sets where save and load go.
func WithStore(s save.Store) Option {
	return func(o *options) { o.store = s }
}

// WithBus sets the bus every emitted event is dispatched to.
func WithBus(b *events.Bus) Option {
	return func(o *options) { o.bus = b }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithRoller overrides the source of combat escape rolls.
func WithRoller(r Roller) Option {
	return func(o *options) { o.roller = r }
}

// WithHazardOdds sets the 1-in-n hazard chance. Zero disables hazards.
func WithHazardOdds(n int) Option {
	return func(o *options) { o.hazardOdds = n }
}

// New creates a new engine from definitions. Unless WithoutShuffle is
// given, the items in defs are redistributed across rooms first; defs is
// modified in place.
func New(defs *state.Defs, opts ...Option) *Engine {
	o := options{shuffle: true, hazardOdds: DefaultHazardOdds}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.seeded {
		o.seed = time.Now().UnixNano()
	}
	if o.log == nil {
		o.log = slog.New(slog.DiscardHandler)
	}
	if o.store == nil {
		o.store = save.NewFileStore(DefaultSaveFile)
	}
	if o.bus == nil {
		o.bus = events.NewBus()
	}

	rng := NewRNG(o.seed)
	if o.shuffle {
		shuffle.Apply(defs, rng)
	}
	if o.roller == nil {
		o.roller = rng
	}

	e := &Engine{
		Defs:       defs,
		State:      state.NewState(defs),
		RNG:        rng,
		store:      o.store,
		bus:        o.bus,
		log:        o.log,
		roller:     o.roller,
		hazardOdds: o.hazardOdds,
	}
	e.bus.OnAll(func(ev types.Event) {
		e.log.Debug("event", "type", ev.Type, "data", ev.Data)
	})
	e.log.Info("game initialized",
		"seed", o.seed,
		"shuffled", o.shuffle,
		"rooms", len(defs.Rooms),
		"items", defs.Catalog.Len(),
		"start", defs.Game.Start)
	return e
}

// InCombat reports whether a fight is in progress.
func (e *Engine) InCombat() bool {
	return e.combat != nil
}

// Pending returns the prompt for the question the engine is waiting on,
// or "" when the next input is an ordinary command.
func (e *Engine) Pending() string {
	switch {
	case e.combat != nil:
		return CombatPrompt
	case e.riddle:
		return RiddlePrompt
	}
	return ""
}

// Step processes one line of player input and returns the result.
func (e *Engine) Step(input string) types.Result {
	var result types.Result

	// Terminal outcomes stop all further play.
	if e.State.Over != types.OutcomeContinue {
		result.Output = append(result.Output, "The adventure is over.")
		result.Outcome = e.State.Over
		return result
	}

	// Pending questions take the input before the parser does.
	if e.combat != nil {
		e.State.TurnCount++
		return e.finishRound(e.combat.Round(input))
	}
	if e.riddle {
		e.riddle = false
		e.State.TurnCount++
		return e.answerRiddle(input)
	}

	act := parser.Parse(input, e.exits())
	e.State.TurnCount++
	e.log.Debug("command", "input", input, "action", act.Kind.String(), "arg", act.Arg, "turn", e.State.TurnCount)

	var effs []types.Effect
	switch act.Kind {
	case types.ActMove:
		effs = []types.Effect{
			say(fmt.Sprintf("Moving to %s...", act.Arg)),
			{Type: "move_player", Params: map[string]any{"room": act.Arg}},
		}
		result.Moved = true

	case types.ActPickUp:
		effs = e.pickUp(act.Arg)

	case types.ActUse:
		effs = e.use(act.Arg)

	case types.ActViewInventory:
		inv := "empty"
		if len(e.State.Player.Inventory) > 0 {
			inv = strings.Join(e.State.Player.Inventory, ", ")
		}
		effs = []types.Effect{say("Your inventory: " + inv)}

	case types.ActHint:
		hint := e.Defs.Rooms[e.State.Player.Location].Hints
		if hint == "" {
			effs = []types.Effect{say("No hint for this room.")}
		} else {
			effs = []types.Effect{say("Hint: " + hint)}
		}

	case types.ActMap:
		effs = e.worldMap()

	case types.ActFight:
		return e.startCombat()

	case types.ActOpenChest:
		effs = e.openChest()

	case types.ActSave:
		effs = e.save()

	case types.ActLoad:
		var moved bool
		effs, moved = e.load()
		result.Moved = moved

	case types.ActHelp:
		for _, line := range helpLines {
			effs = append(effs, say(line))
		}

	case types.ActQuit:
		effs = []types.Effect{
			say("Thanks for playing! Goodbye!"),
			{Type: "end_game", Params: map[string]any{"outcome": types.OutcomeQuit}},
		}

	case types.ActLook:
		result.Output = e.Look()
		result.Outcome = e.State.Over
		return result

	case types.ActRiddle:
		if e.riddleActive() {
			return e.askRiddle()
		}
		effs = []types.Effect{say("There is no riddle here.")}

	case types.ActAnswer:
		switch {
		case !e.riddleActive():
			effs = []types.Effect{say("There is no riddle here.")}
		case act.Arg == "":
			return e.askRiddle()
		default:
			return e.answerRiddle(act.Arg)
		}

	default:
		// Anything unrecognized in the riddle room wakes the voice.
		if e.riddleActive() {
			return e.askRiddle()
		}
		effs = []types.Effect{say("I don't understand that command.")}
	}

	e.apply(act.Kind.String(), effs, &result)
	return result
}

// Look renders the current room. The first view of a room shows its full
// description and marks it visited.
func (e *Engine) Look() []string {
	name := e.State.Player.Location
	rs := state.CurrentRoom(e.State)
	if rs == nil {
		return []string{"You are somewhere unknown."}
	}

	var out []string
	if !rs.Visited {
		out = append(out, "Location: "+name)
		if desc := e.Defs.Rooms[name].Description; desc != "" {
			out = append(out, desc)
		}
		var result types.Result
		e.apply("look", []types.Effect{{Type: "mark_visited", Params: map[string]any{"room": name}}}, &result)
	} else {
		out = append(out, "You return to: "+name)
	}

	items := "Nothing here."
	if len(rs.Items) > 0 {
		items = strings.Join(rs.Items, ", ")
	}
	out = append(out,
		"You see: "+items,
		"Paths: "+strings.Join(rs.Connections, ", "),
		fmt.Sprintf("Your HP: %d", e.State.Player.HP),
	)
	return out
}

// Hazard rolls for the wind that chills the player between turns. It does
// nothing while a question is pending or after the session ended.
func (e *Engine) Hazard() types.Result {
	var result types.Result
	result.Outcome = e.State.Over
	if e.hazardOdds <= 0 || e.State.Over != types.OutcomeContinue || e.Pending() != "" {
		return result
	}
	if e.RNG.Roll(e.hazardOdds) != 1 {
		return result
	}

	hp := e.State.Player.HP - 1
	effs := []types.Effect{
		say("A sudden gust of wind chills you to the bone!"),
		{Type: "damage", Params: map[string]any{"amount": 1, "source": "hazard"}},
		say(fmt.Sprintf("Your HP is now %d.", hp)),
	}
	if hp <= 0 {
		effs = append(effs,
			say("You have succumbed to the cold. Game over!"),
			types.Effect{Type: "end_game", Params: map[string]any{"outcome": types.OutcomeDefeat}},
		)
	}
	e.apply("hazard", effs, &result)
	e.log.Info("hazard", "hp", e.State.Player.HP)
	return result
}

// ResolveCombat drives the current fight to its end, reading one move per
// round from src and emitting every line as it is produced. It returns the
// combined result of all rounds.
func (e *Engine) ResolveCombat(ctx context.Context, src ActionSource, emit func(string)) (types.Result, error) {
	var total types.Result
	if e.combat == nil {
		return total, errors.New("no combat in progress")
	}
	_, err := Resolve(ctx, e.combat, src, func(r RoundResult) {
		if r.Status != types.CombatCanceled {
			e.State.TurnCount++
		}
		res := e.finishRound(r)
		for _, line := range res.Output {
			emit(line)
		}
		total.Effects = append(total.Effects, res.Effects...)
		total.Events = append(total.Events, res.Events...)
		total.Output = append(total.Output, res.Output...)
	})
	total.Outcome = e.State.Over
	return total, err
}

// CancelCombat abandons the current fight. Damage already taken stands.
func (e *Engine) CancelCombat() types.Result {
	if e.combat == nil {
		return types.Result{Outcome: e.State.Over}
	}
	lines := e.combat.Cancel()
	return e.finishRound(RoundResult{Lines: lines, Status: e.combat.Status()})
}

// CancelPrompt abandons a pending riddle without answering it.
func (e *Engine) CancelPrompt() types.Result {
	if !e.riddle {
		return types.Result{Outcome: e.State.Over}
	}
	e.riddle = false
	return types.Result{Output: []string{"The voice falls silent."}, Outcome: e.State.Over}
}

// Help returns the command reference.
func (e *Engine) Help() []string {
	out := make([]string, len(helpLines))
	copy(out, helpLines)
	return out
}

func (e *Engine) exits() []string {
	if rs := state.CurrentRoom(e.State); rs != nil {
		return rs.Connections
	}
	return nil
}

func (e *Engine) pickUp(name string) []types.Effect {
	if name == "" {
		return []types.Effect{say("Pick up what?")}
	}
	rs := state.CurrentRoom(e.State)
	if rs == nil {
		return []types.Effect{say("There is no such item here.")}
	}
	item, err := resolve.Item(rs.Items, name)
	if err != nil {
		var ae *resolve.AmbiguityError
		if errors.As(err, &ae) {
			return []types.Effect{say(capitalize(ae.Error()))}
		}
		return []types.Effect{say("There is no such item here.")}
	}
	return []types.Effect{
		{Type: "take_item", Params: map[string]any{"item": item}},
		say(fmt.Sprintf("You picked up the %s!", item)),
	}
}

func (e *Engine) use(name string) []types.Effect {
	if name == "" {
		return []types.Effect{say("Use what?")}
	}
	item, err := resolve.Item(e.State.Player.Inventory, name)
	if err != nil {
		var ae *resolve.AmbiguityError
		if errors.As(err, &ae) {
			return []types.Effect{say(capitalize(ae.Error()))}
		}
		// Fall through with the raw name so the usual message is reported.
		item = name
	}
	if state.HasItem(e.State, item) {
		if _, err := e.Defs.Catalog.Get(item); err != nil {
			e.log.Warn("carried item has no definition", "error", err)
		}
	}
	return []types.Effect{{Type: "use_item", Params: map[string]any{"item": item}}}
}

func (e *Engine) worldMap() []types.Effect {
	if !state.HasItem(e.State, MapItem) {
		return []types.Effect{say("You need to pick up a map first.")}
	}
	effs := []types.Effect{say("World Map:")}
	for _, name := range e.Defs.RoomOrder {
		rs := state.Room(e.State, name)
		if rs == nil {
			continue
		}
		effs = append(effs, say(fmt.Sprintf("  - %s → %s", name, strings.Join(rs.Connections, ", "))))
	}
	return effs
}

func (e *Engine) openChest() []types.Effect {
	if e.State.Player.Location != ChestRoom {
		return []types.Effect{say("There is no chest to open here.")}
	}
	if !state.HasItem(e.State, ChestKey) {
		return []types.Effect{say("The chest is locked. You need a key.")}
	}
	return []types.Effect{
		say("You use the key to unlock the chest and find the legendary treasure."),
		say("Congratulations! You completed your adventure!"),
		{Type: "end_game", Params: map[string]any{"outcome": types.OutcomeVictory}},
	}
}

func (e *Engine) save() []types.Effect {
	if err := e.store.Write(save.Snapshot(e.State)); err != nil {
		e.log.Error("save failed", "error", err)
		return []types.Effect{say("Could not save the game.")}
	}
	e.log.Info("game saved", "location", e.State.Player.Location, "hp", e.State.Player.HP)
	return []types.Effect{
		say("Game saved!"),
		{Type: "emit_event", Params: map[string]any{"event": "game_saved", "data": map[string]any{"room": e.State.Player.Location}}},
	}
}

func (e *Engine) load() ([]types.Effect, bool) {
	sd, err := e.store.Read()
	if errors.Is(err, save.ErrNoSave) {
		e.log.Warn("load requested without a save")
		return []types.Effect{say("No save file found.")}, false
	}
	if err == nil {
		err = save.ApplySave(e.State, sd)
	}
	if err != nil {
		e.log.Error("load failed", "error", err)
		return []types.Effect{say("Could not load the save file.")}, false
	}
	e.log.Info("game loaded", "location", e.State.Player.Location, "hp", e.State.Player.HP)
	return []types.Effect{
		say("Game loaded!"),
		{Type: "emit_event", Params: map[string]any{"event": "game_loaded", "data": map[string]any{"room": e.State.Player.Location}}},
	}, true
}

func (e *Engine) startCombat() types.Result {
	var result types.Result
	e.combat = NewEncounter(e.State, e.Defs.Catalog, e.roller)
	e.log.Info("combat started", "enemy", e.combat.Enemy.Name, "hp", e.State.Player.HP)

	result.Output = e.combat.Log()
	e.apply("fight", []types.Effect{{
		Type:   "emit_event",
		Params: map[string]any{"event": "combat_started", "data": map[string]any{"enemy": e.combat.Enemy.Name}},
	}}, &result)
	result.Prompt = CombatPrompt
	return result
}

// finishRound commits a resolved round to the game state. Terminal rounds
// close the encounter.
func (e *Engine) finishRound(r RoundResult) types.Result {
	var result types.Result
	result.Output = append(result.Output, r.Lines...)

	var effs []types.Effect
	if r.Damage > 0 {
		effs = append(effs, types.Effect{
			Type:   "damage",
			Params: map[string]any{"amount": r.Damage, "source": e.combat.Enemy.Name},
		})
	}
	if r.Status != types.CombatOngoing {
		effs = append(effs, types.Effect{
			Type: "emit_event",
			Params: map[string]any{"event": "combat_ended", "data": map[string]any{
				"enemy": e.combat.Enemy.Name, "status": string(r.Status),
			}},
		})
	}
	if r.Status == types.CombatPlayerDefeated {
		effs = append(effs, types.Effect{Type: "end_game", Params: map[string]any{"outcome": types.OutcomeDefeat}})
	}
	e.apply("combat", effs, &result)

	e.log.Debug("combat round", "status", string(r.Status), "hp", e.combat.PlayerHP(), "enemy_hp", e.combat.Enemy.HP)
	if r.Status == types.CombatOngoing {
		result.Prompt = CombatPrompt
	} else {
		e.log.Info("combat ended", "status", string(r.Status), "hp", e.State.Player.HP)
		e.combat = nil
	}
	return result
}

// riddleActive reports whether the voice in the riddle room still speaks.
func (e *Engine) riddleActive() bool {
	return e.State.Player.Location == RiddleRoom &&
		state.RoomHasItem(e.State, RiddleRoom, RiddleItem)
}

func (e *Engine) askRiddle() types.Result {
	e.riddle = true
	return types.Result{
		Output:  []string{"A voice whispers: 'I speak without a mouth and hear without ears. What am I?'"},
		Prompt:  RiddlePrompt,
		Outcome: e.State.Over,
	}
}

func (e *Engine) answerRiddle(answer string) types.Result {
	var result types.Result
	var effs []types.Effect
	if strings.EqualFold(strings.TrimSpace(answer), riddleAnswer) {
		effs = []types.Effect{
			say("Correct! A secret passage to the Hidden Chamber opens."),
			{Type: "open_connection", Params: map[string]any{"room": RiddleRoom, "target": SecretRoom}},
		}
	} else {
		effs = []types.Effect{say("That's not the right answer. Try again later.")}
	}
	e.apply("answer", effs, &result)
	return result
}

// apply runs effects through the central mutator and dispatches the events
// they emit.
func (e *Engine) apply(verb string, effs []types.Effect, result *types.Result) {
	evts, output := effects.Apply(e.State, e.Defs, effs, effects.Context{Verb: verb})
	result.Effects = append(result.Effects, effs...)
	result.Events = append(result.Events, evts...)
	result.Output = append(result.Output, output...)
	events.Dispatch(e.bus, evts)
	result.Outcome = e.State.Over
}

func say(text string) types.Effect {
	return types.Effect{Type: "say", Params: map[string]any{"text": text}}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
