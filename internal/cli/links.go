package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/bookmarkonce/internal/domain"
	"github.com/MrSnakeDoc/bookmarkonce/internal/store"
)

func newLinksCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "links",
		Aliases: []string{"link"},
		Short:   "Manage standalone links",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStores(func(links *store.LinkStore, _ *store.SessionStore) error {
				all, err := links.ListAll(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tURL")
				for _, l := range all {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", l.ID, l.Title, l.URL)
				}
				return tw.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <title> <url>",
		Short: "Save a link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			link := domain.Link{Title: args[0], URL: args[1]}
			if err := link.Validate(); err != nil {
				return err
			}
			return e.withStores(func(links *store.LinkStore, _ *store.SessionStore) error {
				created, err := links.Create(cmd.Context(), link)
				if err != nil {
					return err
				}
				fmt.Fprintln(e.out, created.ID)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"delete"},
		Short:   "Delete links",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStores(func(links *store.LinkStore, _ *store.SessionStore) error {
				for _, id := range args {
					if err := links.Delete(cmd.Context(), id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	})

	return cmd
}
