// Package save implements the save record, its JSON encoding and the
// single-slot file store.
package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nathoo/miniquest/types"
)

// ErrNoSave is returned by Read when the save file does not exist.
var ErrNoSave = errors.New("no save found")

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Player types.Player                `json:"player"`
	Rooms  map[string]types.RoomState `json:"rooms"`
}

// Snapshot captures the player and the dynamic state of every room.
// Slices are copied so later play cannot alter the snapshot.
func Snapshot(s *types.State) *SaveData {
	sd := &SaveData{
		Player: types.Player{
			Location:  s.Player.Location,
			Inventory: clone(s.Player.Inventory),
			HP:        s.Player.HP,
		},
		Rooms: make(map[string]types.RoomState, len(s.Rooms)),
	}
	for name, rs := range s.Rooms {
		sd.Rooms[name] = types.RoomState{
			Items:       clone(rs.Items),
			Connections: clone(rs.Connections),
			Visited:     rs.Visited,
		}
	}
	return sd
}

// Marshal serializes a save record to JSON bytes.
func Marshal(sd *SaveData) ([]byte, error) {
	return json.MarshalIndent(sd, "", "  ")
}

// Unmarshal deserializes JSON bytes into a save record.
func Unmarshal(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	// Ensure slices and maps are never nil after load.
	if sd.Player.Inventory == nil {
		sd.Player.Inventory = []string{}
	}
	if sd.Rooms == nil {
		sd.Rooms = map[string]types.RoomState{}
	}
	return &sd, nil
}

// ApplySave overwrites the player and the dynamic state of every room the
// record names. Rooms unknown to s are ignored. A record whose player
// location is not a known room is rejected and s is left untouched.
func ApplySave(s *types.State, sd *SaveData) error {
	if _, ok := s.Rooms[sd.Player.Location]; !ok {
		return fmt.Errorf("save places player in unknown room %q", sd.Player.Location)
	}

	s.Player = types.Player{
		Location:  sd.Player.Location,
		Inventory: clone(sd.Player.Inventory),
		HP:        sd.Player.HP,
	}
	for name, rd := range sd.Rooms {
		rs, ok := s.Rooms[name]
		if !ok {
			continue
		}
		rs.Items = clone(rd.Items)
		rs.Connections = clone(rd.Connections)
		rs.Visited = rd.Visited
	}
	return nil
}

// Store reads and writes the single save slot.
type Store interface {
	Write(sd *SaveData) error
	Read() (*SaveData, error)
}

// FileStore keeps the save slot in one JSON file.
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Write replaces the save file.
func (f *FileStore) Write(sd *SaveData) error {
	data, err := Marshal(sd)
	if err != nil {
		return fmt.Errorf("marshalling save: %w", err)
	}
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating save directory: %w", err)
		}
	}
	return atomicWrite(f.Path, data, 0o644)
}

// Read loads the save file. A missing file yields ErrNoSave.
func (f *FileStore) Read() (*SaveData, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSave
	}
	if err != nil {
		return nil, fmt.Errorf("reading save: %w", err)
	}
	sd, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decoding save %s: %w", filepath.Base(f.Path), err)
	}
	return sd, nil
}

// atomicWrite writes data to a temp file then renames it to the target path.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
