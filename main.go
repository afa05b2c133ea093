package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/docbridge/docbridge/cmd"
)

func main() {
	cmd.Execute()
}
