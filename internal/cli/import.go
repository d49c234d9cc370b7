package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/bookmarkonce/internal/scheduler"
	"github.com/MrSnakeDoc/bookmarkonce/internal/store"
)

func newImportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import [bookmarks.yaml]",
		Short: "Import homepage bookmarks as links once",
		Long:  "Import reads a homepage bookmarks.yaml (default BMO_BOOKMARK_FILE) and saves every new URL as a link. Links already imported are skipped.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := e.cfg.BookmarkFile
			if len(args) == 1 {
				file = args[0]
			}
			if file == "" {
				return errors.New("no bookmarks file given and BMO_BOOKMARK_FILE is not set")
			}

			return e.withStores(func(links *store.LinkStore, _ *store.SessionStore) error {
				importer := scheduler.NewLinkImporter(file, links, e.logger, time.Hour, nil)
				res, err := importer.Import(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(e.out, "loaded %d, created %d, skipped %d\n", res.Loaded, res.Created, res.Skipped)
				return nil
			})
		},
	}
}
