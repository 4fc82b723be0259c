// Command pitwall collects F1 UDP telemetry and turns stored sessions into
// race simulation parameters.
package main

import (
	"context"
	"os"

	"github.com/banshee-data/pitwall/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
