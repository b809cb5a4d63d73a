package main

import (
	"os"
	_ "time/tzdata"

	"github.com/nycstandup/showcatalog/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
