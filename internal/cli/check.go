package cli

import (
	"context"
	"fmt"
)

type CheckCmd struct {
	Date string `arg:"" help:"Candidate date (YYYY-MM-DD)."`
}

// Run prints whether a record for the date could be created. A conflict
// is returned as an error so the exit status reflects it.
func (c *CheckCmd) Run(app *App) error {
	if err := app.requirePersistentBackend(); err != nil {
		return err
	}
	svc, err := openService(app)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.Check(cmdContext(), c.Date); err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "%s is free\n", c.Date)
	return nil
}

func cmdContext() context.Context {
	return context.Background()
}
