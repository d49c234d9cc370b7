package cli

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/bookmarkonce/internal/app"
)

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the expiry supervisor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(e.cfg, e.logger)
			if err != nil {
				return err
			}
			return a.Run()
		},
	}
}
