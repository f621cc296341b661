// Package effects implements centralized state mutation via the Apply function.
// Every effect type is one atomic operation. No logic in effects.
package effects

import (
	"github.com/nathoo/miniquest/engine/state"
	"github.com/nathoo/miniquest/types"
)

// Context carries the command that produced the effects.
type Context struct {
	Verb string
}

// Apply applies a list of effects to the game state, mutating it.
// Returns events emitted and output text collected.
func Apply(s *types.State, defs *state.Defs, effects []types.Effect, ctx Context) ([]types.Event, []string) {
	var events []types.Event
	var output []string

	for _, eff := range effects {
		switch eff.Type {
		case "say":
			text, _ := eff.Params["text"].(string)
			output = append(output, text)

		case "move_player":
			room, _ := eff.Params["room"].(string)
			from := s.Player.Location
			s.Player.Location = room
			events = append(events, types.Event{
				Type: "player_moved",
				Data: map[string]any{"from": from, "room": room},
			})

		case "take_item":
			item, _ := eff.Params["item"].(string)
			room := s.Player.Location
			if !state.RemoveRoomItem(s, room, item) {
				continue
			}
			state.PickUp(s, item)
			events = append(events, types.Event{
				Type: "item_taken",
				Data: map[string]any{"item": item, "room": room},
			})

		case "use_item":
			item, _ := eff.Params["item"].(string)
			before := len(s.Player.Inventory)
			lines, ok := state.UseItem(s, defs.Catalog, item)
			output = append(output, lines...)
			if ok {
				events = append(events, types.Event{
					Type: "item_used",
					Data: map[string]any{"item": item, "consumed": len(s.Player.Inventory) < before},
				})
			}

		case "damage":
			amount := toInt(eff.Params["amount"])
			s.Player.HP -= amount
			events = append(events, types.Event{
				Type: "player_damaged",
				Data: map[string]any{"amount": amount, "hp": s.Player.HP},
			})
			if s.Player.HP <= 0 {
				events = append(events, types.Event{
					Type: "player_defeated",
					Data: map[string]any{"hp": s.Player.HP},
				})
			}

		case "open_connection":
			room, _ := eff.Params["room"].(string)
			target, _ := eff.Params["target"].(string)
			if state.AddConnection(s, room, target) {
				events = append(events, types.Event{
					Type: "connection_opened",
					Data: map[string]any{"room": room, "target": target},
				})
			}

		case "mark_visited":
			room, _ := eff.Params["room"].(string)
			if rs := state.Room(s, room); rs != nil && !rs.Visited {
				rs.Visited = true
				events = append(events, types.Event{
					Type: "room_visited",
					Data: map[string]any{"room": room},
				})
			}

		case "end_game":
			outcome, _ := eff.Params["outcome"].(types.Outcome)
			s.Over = outcome
			events = append(events, types.Event{
				Type: "game_over",
				Data: map[string]any{"outcome": outcome.String()},
			})

		case "emit_event":
			eventType, _ := eff.Params["event"].(string)
			data, _ := eff.Params["data"].(map[string]any)
			events = append(events, types.Event{Type: eventType, Data: data})
		}
	}

	if ctx.Verb != "" {
		for i := range events {
			if events[i].Data == nil {
				events[i].Data = map[string]any{}
			}
			events[i].Data["verb"] = ctx.Verb
		}
	}

	return events, output
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}
