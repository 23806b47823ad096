package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"daytrack/internal/cli"
)

var CLI struct {
	Serve   cli.ServeCmd   `cmd:"" help:"Run the HTTP API." default:"1"`
	Summary cli.SummaryCmd `cmd:"" help:"Print the summary of a month."`
	Check   cli.CheckCmd   `cmd:"" help:"Check whether a date is still free."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("daytrack"),
		kong.Description("Daily record tracker with monthly analytics"),
		kong.UsageOnError(),
	)

	cli.LoadEnvFile()
	app, err := cli.NewApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := ctx.Run(app); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
