// rooftakeoff: roof measurement and material takeoff
//
// Build:
//   go build -o rooftakeoff ./cmd/rooftakeoff
//
// Stamp the version:
//   go build -ldflags "-X github.com/piwi3910/rooftakeoff/internal/version.Version=1.2.0" ./cmd/rooftakeoff

package main

import "github.com/piwi3910/rooftakeoff/internal/cli"

func main() {
	cli.Execute()
}
