package assets

import _ "embed"

// PlayersYAML is the built-in player pool.
//
//go:embed players.yaml
var PlayersYAML []byte
