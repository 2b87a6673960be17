package main

import (
	"os"

	ambercmder "github.com/amberhq/amber/cmd/amber"
)

func main() {
	cmd := ambercmder.NewAmberCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
