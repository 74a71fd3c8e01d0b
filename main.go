package main

import (
	"github.com/dszqbsm/notifier/cmd"
)

func main() {
	cmd.Execute()
}
