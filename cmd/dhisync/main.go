package main

import (
	"os"

	"github.com/openclinic-tools/dhisync/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
