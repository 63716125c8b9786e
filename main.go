package main

import (
	"os"

	"github.com/gokulchand98/jobscout/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
