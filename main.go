package main

import (
	"os"

	"github.com/signedhq/signed-matcher/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
