package main

import (
	"os"

	measurescmder "github.com/papercomputeco/measures/cmd/measures"
)

func main() {
	cmd := measurescmder.NewMeasuresCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
