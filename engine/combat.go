package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nathoo/miniquest/engine/catalog"
	"github.com/nathoo/miniquest/engine/state"
	"github.com/nathoo/miniquest/types"
)

// CombatPrompt asks for the player's move each round.
const CombatPrompt = "Do you want to [attack], [defend], or [run]?"

// ErrCanceled is returned by Resolve when the action source gives up.
var ErrCanceled = errors.New("combat canceled")

// combatAliases maps accepted shorthands onto the three combat moves.
var combatAliases = map[string]string{
	"attack": "attack", "a": "attack",
	"defend": "defend", "d": "defend",
	"run": "run", "r": "run", "flee": "run",
}

// Roller draws the escape roll.
type Roller interface {
	Float64() float64
}

// NewGoblin returns a fresh copy of the only enemy type.
func NewGoblin() types.Enemy {
	return types.Enemy{Name: "Goblin", HP: 5, Attack: 1}
}

// RoundResult describes one resolved round.
type RoundResult struct {
	Lines  []string
	Damage int // damage the player took this round
	Status types.CombatStatus
}

// Encounter is a single fight against one enemy. Attack and defense are
// fixed when the encounter starts. The encounter tracks the player's HP on
// its own; callers apply RoundResult.Damage to the real player.
type Encounter struct {
	Enemy   types.Enemy
	hp      int
	attack  int
	defense int
	roller  Roller
	status  types.CombatStatus
	log     []string
}

// NewEncounter starts a fight against a fresh Goblin.
func NewEncounter(s *types.State, cat *catalog.Catalog, roller Roller) *Encounter {
	enc := &Encounter{
		Enemy:   NewGoblin(),
		hp:      s.Player.HP,
		attack:  state.AttackPower(s, cat),
		defense: state.DefenseBonus(s, cat),
		roller:  roller,
		status:  types.CombatOngoing,
	}
	enc.log = append(enc.log, fmt.Sprintf("A wild %s appears!", enc.Enemy.Name))
	return enc
}

// Status returns the current state of the encounter.
func (enc *Encounter) Status() types.CombatStatus { return enc.status }

// Done reports whether the encounter reached a terminal status.
func (enc *Encounter) Done() bool { return enc.status != types.CombatOngoing }

// PlayerHP is the player's HP as seen by the encounter.
func (enc *Encounter) PlayerHP() int { return enc.hp }

// Log returns every line produced so far, starting with the opening line.
func (enc *Encounter) Log() []string {
	out := make([]string, len(enc.log))
	copy(out, enc.log)
	return out
}

// Round resolves one player action and, if the enemy survives, its
// counter-attack. Unrecognized input only produces a message.
func (enc *Encounter) Round(input string) RoundResult {
	if enc.Done() {
		return RoundResult{Status: enc.status}
	}

	var r RoundResult
	say := func(format string, args ...any) {
		r.Lines = append(r.Lines, fmt.Sprintf(format, args...))
	}

	action := combatAliases[strings.ToLower(strings.TrimSpace(input))]
	defended := false
	name := enc.Enemy.Name

	switch action {
	case "attack":
		enc.Enemy.HP -= enc.attack
		say("You strike the %s for %d damage!", name, enc.attack)
		if enc.Enemy.HP > 0 {
			say("%s HP is now %d.", name, enc.Enemy.HP)
		} else {
			say("%s is defeated!", name)
			say("You have slain the %s!", name)
			enc.status = types.CombatPlayerWon
		}

	case "defend":
		defended = true
		say("You brace for the %s's next attack, reducing incoming damage this round.", name)

	case "run":
		if enc.roller.Float64() < 0.5 {
			say("You managed to flee safely!")
			enc.status = types.CombatPlayerFled
		} else {
			say("You couldn't escape!")
		}

	default:
		say("Invalid action. Please choose [attack], [defend], or [run].")
	}

	if action != "" && !enc.Done() {
		dmg := enc.Enemy.Attack
		if defended {
			dmg = max(dmg-1, 0)
		}
		dmg = max(dmg-enc.defense, 0)
		enc.hp -= dmg
		r.Damage = dmg
		say("The %s hits you for %d damage!", name, dmg)
		say("Your HP is now %d.", enc.hp)
		if enc.hp <= 0 {
			say("You have been defeated by the %s. Game over!", name)
			enc.status = types.CombatPlayerDefeated
		}
	}

	enc.log = append(enc.log, r.Lines...)
	r.Status = enc.status
	return r
}

// Cancel abandons an ongoing encounter. It has no effect once the
// encounter is over.
func (enc *Encounter) Cancel() []string {
	if enc.Done() {
		return nil
	}
	enc.status = types.CombatCanceled
	line := "Combat canceled."
	enc.log = append(enc.log, line)
	return []string{line}
}

// ActionSource supplies one combat move per call.
type ActionSource interface {
	NextAction(ctx context.Context) (string, error)
}

// ActionSourceFunc adapts a function to ActionSource.
type ActionSourceFunc func(ctx context.Context) (string, error)

// NextAction calls f.
func (f ActionSourceFunc) NextAction(ctx context.Context) (string, error) { return f(ctx) }

// Resolve drives enc to a terminal status, reading moves from src and
// handing every round to onRound as soon as it is resolved. When src
// returns io.EOF or the context ends, the encounter is canceled and
// ErrCanceled is returned. Other source errors cancel the encounter and
// are returned wrapped.
func Resolve(ctx context.Context, enc *Encounter, src ActionSource, onRound func(RoundResult)) (types.CombatStatus, error) {
	for !enc.Done() {
		input, err := src.NextAction(ctx)
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			lines := enc.Cancel()
			onRound(RoundResult{Lines: lines, Status: enc.Status()})
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return enc.Status(), ErrCanceled
			}
			return enc.Status(), fmt.Errorf("reading combat action: %w", err)
		}
		onRound(enc.Round(input))
	}
	return enc.Status(), nil
}
