package main

import (
	"os"

	"github.com/funvibe/still/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
