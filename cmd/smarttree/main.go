// Command smarttree is the thin executable entrypoint: it delegates
// everything to internal/cli, mirroring the teacher's cmd/harvx/main.go.
package main

import (
	"os"

	"github.com/smarttree/smarttree/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
