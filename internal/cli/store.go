package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackforge/pkg/project/store"
)

// storeCommand creates the project store command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect the project store",
	}

	cmd.AddCommand(c.storePathCommand())
	cmd.AddCommand(c.storeInfoCommand())

	return cmd
}

// storePathCommand creates the "store path" subcommand.
func (c *CLI) storePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the project store location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := c.storeLocation()
			if err != nil {
				return fmt.Errorf("get store location: %w", err)
			}
			fmt.Println(redactDSN(loc))
			return nil
		},
	}
}

// storeInfoCommand creates the "store info" subcommand.
func (c *CLI) storeInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the store backend and how many projects it holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			loc, err := c.storeLocation()
			if err != nil {
				return fmt.Errorf("get store location: %w", err)
			}
			s, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			list, err := s.List(ctx)
			if err != nil {
				return err
			}
			printKeyValue("Backend", store.BackendOf(s))
			printKeyValue("Location", redactDSN(loc))
			printKeyValue("Projects", fmt.Sprintf("%d", len(list)))
			return nil
		},
	}
}
