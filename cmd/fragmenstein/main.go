// Command fragmenstein combines fragment hits and places follow-up compounds.
package main

import (
	"os"

	"github.com/mwinokan/Fragmenstein/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	os.Exit(cli.Execute())
}

//Personal.AI order the ending
