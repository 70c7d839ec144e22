package main

import (
	"os"

	"github.com/phannguyenbuu/dinh-tot-dong/cmd"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
