package main

import (
	"fmt"
	"os"

	"github.com/hengadev/recordseal/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
