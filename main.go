package main

import (
	"os"

	"github.com/orbistools/pkgforge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
