package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackforge/internal/api"
	"github.com/matzehuels/stackforge/pkg/project/store"
)

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		retries int
		noStore bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolution engine over HTTP",
		Long: `Serve exposes the feature catalog, target support, stateless resolution and
the project store as a JSON API. Connecting to a Redis or MongoDB store is
retried while the database starts up.`,
		Example: `  stackforge serve --addr :8080
  stackforge serve --store redis://localhost:6379/0 --retries 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := c.engine()
			if err != nil {
				return err
			}

			opts := []api.Option{api.WithLogger(c.Logger)}
			if !noStore {
				s, err := c.openStoreRetry(ctx, retries)
				if err != nil {
					return err
				}
				defer s.Close()
				opts = append(opts, api.WithStore(s))
			}

			printSuccess("Listening on %s", StyleHighlight.Render(addr))
			printKeyValue("Tables", eng.Source())
			return api.New(eng, opts...).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&retries, "retries", 5, "attempts to reach the project store")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "serve without the /projects routes")
	return cmd
}

// openStoreRetry opens the configured store behind a spinner, retrying
// connection failures.
func (c *CLI) openStoreRetry(ctx context.Context, attempts int) (store.Store, error) {
	dsn, err := c.storeLocation()
	if err != nil {
		return nil, err
	}
	spin := newSpinner(ctx, os.Stderr, "Connecting to "+redactDSN(dsn)+"...")
	spin.Start()
	s, err := store.OpenRetry(ctx, dsn, attempts, time.Second)
	if err != nil {
		spin.StopWithError("Project store unavailable")
		return nil, err
	}
	spin.StopWithSuccess("Opened " + store.BackendOf(s) + " store")
	return s, nil
}
