package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/nathoo/miniquest/types"
)

const (
	roomsFile = "rooms.json"
	itemsFile = "items.json"
	gameFile  = "game.json"
)

// loadJSON reads rooms.json, items.json and, if present, game.json.
func loadJSON(fsys fs.FS) (*content, error) {
	c := &content{}

	rf, err := fsys.Open(roomsFile)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", roomsFile, err)
	}
	defer rf.Close()
	if c.rooms, err = decodeRooms(rf); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", roomsFile, err)
	}

	data, err := fs.ReadFile(fsys, itemsFile)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", itemsFile, err)
	}
	if err := json.Unmarshal(data, &c.items); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", itemsFile, err)
	}
	for name, it := range c.items {
		it.Name = name
		c.items[name] = it
	}

	data, err = fs.ReadFile(fsys, gameFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading %s: %w", gameFile, err)
	default:
		if err := json.Unmarshal(data, &c.game); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", gameFile, err)
		}
	}

	return c, nil
}

// decodeRooms reads a JSON object of name → room, keeping the order the
// keys appear in. Room order drives the item shuffle and the world map.
func decodeRooms(r io.Reader) ([]types.RoomDef, error) {
	dec := json.NewDecoder(r)

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var rooms []types.RoomDef
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected room name, got %v", tok)
		}
		var room types.RoomDef
		if err := dec.Decode(&room); err != nil {
			return nil, fmt.Errorf("room %q: %w", name, err)
		}
		room.Name = name
		if room.Items == nil {
			room.Items = []string{}
		}
		if room.Connections == nil {
			room.Connections = []string{}
		}
		rooms = append(rooms, room)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return rooms, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
