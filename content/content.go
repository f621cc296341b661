// Package content embeds the default game world.
package content

import (
	"embed"
	"io/fs"
)

//go:embed game.json rooms.json items.json
var files embed.FS

// FS returns the embedded content files.
func FS() fs.FS {
	return files
}
