package main

import (
	"os"

	"devinit/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
