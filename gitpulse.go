package gitpulse

import (
	"embed"
)

var (
	VERSION = "dev"
	COMMIT  = "unknown"
)

//go:embed web
var Web embed.FS
