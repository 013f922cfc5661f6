package main

import (
	"os"

	"github.com/scan-io-git/complyscan/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
