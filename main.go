package main

import (
	"github.com/northstar-funding/discovery/cmd"
)

func main() {
	cmd.Execute()
}
