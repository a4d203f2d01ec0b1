// Package library holds the built-in song catalog and loads user catalogs
// from YAML or JSON files. Songs are plain expression sources; compiling them
// is left to the caller so a catalog with one broken song still lists the
// rest.
package library

import (
	"strings"

	"github.com/samber/lo"
)

// Song is one catalog entry. Code is a single-line bytebeat expression.
type Song struct {
	Author      string `json:"author" mapstructure:"author"`
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description,omitempty" mapstructure:"description"`
	Code        string `json:"code" mapstructure:"code"`
}

// Included songs are copyright their respective owners.
var builtin = []Song{
	{
		Author:      "viznut",
		Name:        "the 42 melody",
		Description: "the one that started it all",
		Code:        "t*(42&t>>10)",
	},
	{
		Author:      "ryg",
		Name:        "fractalized past",
		Description: "dense self-similar arpeggios",
		Code:        "t*(t>>11&t>>8&123&t>>3)",
	},
	{
		Author:      "tejeez",
		Name:        "crowd",
		Description: "a crowd cheering, somehow",
		Code:        "((t<<1)^((t<<1)+(t>>7)&t>>12))|t>>(4-(1^7&(t>>19)))|t>>7",
	},
	{
		Author:      "miiro",
		Name:        "tempered glass",
		Description: "glassy overlapping voices",
		Code:        "t*5&t>>7|t*3&t>>10",
	},
	{
		Author:      "visy",
		Name:        "sierpinski harmony",
		Description: "the sierpinski triangle, audible",
		Code:        "t*5&t>>7|t*3&t/1024",
	},
	{
		Author:      "anonymous",
		Name:        "sawtooth valley",
		Description: "bare sawtooth with a slow sweep",
		Code:        "t&t>>8",
	},
}

// Builtin returns a copy of the built-in catalog.
func Builtin() []Song {
	songs := make([]Song, len(builtin))
	copy(songs, builtin)
	return songs
}

// Find looks a song up by name, case-insensitively.
func Find(songs []Song, name string) (Song, bool) {
	return lo.Find(songs, func(s Song) bool {
		return strings.EqualFold(s.Name, name)
	})
}
