// Package cli implements the bookmarkonce command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/bookmarkonce/internal/app"
	"github.com/MrSnakeDoc/bookmarkonce/internal/config"
	"github.com/MrSnakeDoc/bookmarkonce/internal/logger"
	"github.com/MrSnakeDoc/bookmarkonce/internal/store"
	"github.com/MrSnakeDoc/bookmarkonce/internal/utils"
)

// env is built once per invocation by the root PersistentPreRunE.
type env struct {
	cfg    *config.Config
	logger logger.Logger
	out    io.Writer

	engineFlag string
	dbFlag     string
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

// NewRootCmd assembles the command tree.
func NewRootCmd() *cobra.Command {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:   "bookmarkonce",
		Short: "Timed bookmark sessions",
		Long:  "bookmarkonce keeps links and sessions of links that delete themselves once their time runs out.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			e.cfg = config.Load()
			if e.engineFlag != "" {
				e.cfg.StorageEngine = e.engineFlag
			}
			if e.dbFlag != "" {
				e.cfg.DBPath = e.dbFlag
			}
			log, err := logger.New(e.cfg.LogLevel, e.cfg.PrettyLog)
			if err != nil {
				return err
			}
			e.logger = log
			e.out = cmd.OutOrStdout()
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&e.engineFlag, "engine", "", "override BMO_STORAGE_ENGINE (bolt, redis, memory)")
	rootCmd.PersistentFlags().StringVar(&e.dbFlag, "db", "", "override BMO_DB_PATH")

	// Subcommands
	rootCmd.AddCommand(newServeCmd(e))
	rootCmd.AddCommand(newLinksCmd(e))
	rootCmd.AddCommand(newSessionsCmd(e))
	rootCmd.AddCommand(newImportCmd(e))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// withStores opens the configured storage for the duration of fn.
func (e *env) withStores(fn func(links *store.LinkStore, sessions *store.SessionStore) error) error {
	conn, err := app.NewConnection(e.cfg, e.logger)
	if err != nil {
		return err
	}
	defer utils.MustClose(conn, e.logger, "storage")

	return fn(store.NewLinkStore(conn), store.NewSessionStore(conn))
}
