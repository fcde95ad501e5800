package main

import (
	"github.com/gitpulse-io/gitpulse/cmd"
)

func main() {
	cmd.Execute()
}
