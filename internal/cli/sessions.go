package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/bookmarkonce/internal/domain"
	"github.com/MrSnakeDoc/bookmarkonce/internal/store"
)

func newSessionsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session"},
		Short:   "Manage sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sessions with their remaining time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStores(func(_ *store.LinkStore, sessions *store.SessionStore) error {
				all, err := sessions.ListAll(cmd.Context())
				if err != nil {
					return err
				}
				now := time.Now()
				tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tREMAINING\tLINKS")
				for _, s := range all {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", s.ID, s.Title, domain.Countdown(s.EndsAt, now), len(s.Links))
				}
				return tw.Flush()
			})
		},
	})

	cmd.AddCommand(newSessionsAddCmd(e))
	cmd.AddCommand(newSessionsUpdateCmd(e))

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"delete"},
		Short:   "Delete sessions",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStores(func(_ *store.LinkStore, sessions *store.SessionStore) error {
				for _, id := range args {
					if err := sessions.Delete(cmd.Context(), id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	})

	return cmd
}

// sessionFlags are the lifetime and link flags shared by add and update.
type sessionFlags struct {
	lifetime domain.Lifetime
	links    []string
}

func (f *sessionFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.lifetime.Permanent, "permanent", false, "never expire")
	cmd.Flags().IntVar(&f.lifetime.Hours, "hours", 0, "hours until expiry")
	cmd.Flags().IntVar(&f.lifetime.Minutes, "minutes", 0, "minutes until expiry")
	cmd.Flags().StringVar(&f.lifetime.EndsAt, "ends-at", "", "absolute deadline (RFC 3339)")
	cmd.Flags().StringArrayVar(&f.links, "link", nil, "embedded link as title=url (repeatable)")
}

// lifetimeChanged reports whether any lifetime flag was given.
func lifetimeChanged(cmd *cobra.Command) bool {
	for _, name := range []string{"permanent", "hours", "minutes", "ends-at"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func newSessionsAddCmd(e *env) *cobra.Command {
	var f sessionFlags

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a session",
		Example: `  bookmarkonce sessions add "Sprint review" --hours 2 --link "Board=https://example.com/board"
  bookmarkonce sessions add Reading --permanent`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endsAt, err := f.lifetime.Resolve(time.Now())
			if err != nil {
				return err
			}

			embedded, err := parseLinkFlags(f.links)
			if err != nil {
				return err
			}

			session := domain.Session{Title: args[0], Links: embedded, EndsAt: endsAt}
			if err := session.Validate(); err != nil {
				return err
			}

			return e.withStores(func(_ *store.LinkStore, sessions *store.SessionStore) error {
				created, err := sessions.Create(cmd.Context(), session)
				if err != nil {
					return err
				}
				fmt.Fprintf(e.out, "%s\t%s\n", created.ID, domain.Countdown(created.EndsAt, time.Now()))
				return nil
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func newSessionsUpdateCmd(e *env) *cobra.Command {
	var (
		f     sessionFlags
		title string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a session",
		Long: `Replace a session record. The links of the session become exactly the
--link flags given, so links left out are dropped. Title and lifetime keep
their current value unless --title or a lifetime flag is given.`,
		Example: `  bookmarkonce sessions update 3f2c... --hours 1 --link "Board=https://example.com/board"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			embedded, err := parseLinkFlags(f.links)
			if err != nil {
				return err
			}

			return e.withStores(func(_ *store.LinkStore, sessions *store.SessionStore) error {
				current, err := sessions.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				next := domain.Session{ID: current.ID, Title: current.Title, EndsAt: current.EndsAt, Links: embedded}
				if cmd.Flags().Changed("title") {
					next.Title = title
				}
				if lifetimeChanged(cmd) {
					if next.EndsAt, err = f.lifetime.Resolve(time.Now()); err != nil {
						return err
					}
				}
				if err := next.Validate(); err != nil {
					return err
				}

				updated, err := sessions.Update(cmd.Context(), next)
				if err != nil {
					return err
				}
				fmt.Fprintf(e.out, "%s\t%s\n", updated.ID, domain.Countdown(updated.EndsAt, time.Now()))
				return nil
			})
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&title, "title", "", "new title")
	return cmd
}

// parseLinkFlags turns "title=url" pairs into embedded links.
func parseLinkFlags(raw []string) ([]domain.Link, error) {
	out := make([]domain.Link, 0, len(raw))
	for _, r := range raw {
		title, url, ok := strings.Cut(r, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --link %q, want title=url", r)
		}
		l := domain.Link{ID: store.NewID(), Title: strings.TrimSpace(title), URL: strings.TrimSpace(url)}
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --link %q: %w", r, err)
		}
		out = append(out, l)
	}
	return out, nil
}
