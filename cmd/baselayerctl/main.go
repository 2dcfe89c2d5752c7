// baselayerctl is the operator CLI for the baselayer core.
package main

import (
	"os"

	"github.com/akz4ol/baselayer/internal/baselayerctl"
)

func main() {
	if err := baselayerctl.Execute(); err != nil {
		os.Exit(1)
	}
}
