// Package cli implements the stackforge command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackforge/pkg/buildinfo"
	"github.com/matzehuels/stackforge/pkg/engine"
	errs "github.com/matzehuels/stackforge/pkg/errors"
	"github.com/matzehuels/stackforge/pkg/observability"
	"github.com/matzehuels/stackforge/pkg/project/store"
	"github.com/matzehuels/stackforge/pkg/target"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "stackforge"

	// envStore overrides the project store DSN.
	envStore = "STACKFORGE_STORE"

	// envTables points at a TOML file replacing the embedded feature tables.
	envTables = "STACKFORGE_TABLES"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	tablesPath string
	storeDSN   string
	eng        *engine.Engine
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Stackforge configures backend projects from a feature catalog",
		Long: `Stackforge keeps a project's feature selection consistent with its target
language and framework. Enabling a feature pulls in what it requires;
switching framework or disabling a feature switches off what no longer holds.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			hooks := newLogHooks(c.Logger)
			observability.SetEngineHooks(hooks)
			observability.SetStoreHooks(hooks)
			observability.SetHTTPHooks(hooks)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.tablesPath, "tables", "", "feature tables TOML file (env "+envTables+", default: embedded)")
	root.PersistentFlags().StringVar(&c.storeDSN, "store", "", "project store: directory, memory://, redis:// or mongodb:// URL (env "+envStore+")")

	// Register all subcommands
	root.AddCommand(c.featuresCommand())
	root.AddCommand(c.depsCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.projectCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Engine & Store
// =============================================================================

// engine loads the feature tables once per process.
func (c *CLI) engine() (*engine.Engine, error) {
	if c.eng != nil {
		return c.eng, nil
	}
	path := c.tablesPath
	if path == "" {
		path = os.Getenv(envTables)
	}

	var (
		eng *engine.Engine
		err error
	)
	if path == "" {
		eng, err = engine.Default(engine.WithLogger(c.Logger))
	} else {
		eng, err = engine.LoadFile(path, engine.WithLogger(c.Logger))
	}
	if err != nil {
		return nil, err
	}
	c.eng = eng
	return eng, nil
}

// storeLocation returns the configured store DSN, falling back to the
// default project directory.
func (c *CLI) storeLocation() (string, error) {
	if c.storeDSN != "" {
		return c.storeDSN, nil
	}
	if dsn := os.Getenv(envStore); dsn != "" {
		return dsn, nil
	}
	return store.DefaultDir()
}

func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	dsn, err := c.storeLocation()
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("opening store", "dsn", redactDSN(dsn))
	return store.Open(ctx, dsn)
}

// redactDSN hides the password of a connection URL before it is logged.
func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	userinfo := dsn[scheme+3 : at]
	if user, _, ok := strings.Cut(userinfo, ":"); ok {
		return dsn[:scheme+3] + user + ":***" + dsn[at:]
	}
	return dsn
}

// =============================================================================
// Target Helpers
// =============================================================================

// resolveTarget fills in a missing language from the framework, or a
// missing framework with the language's default.
func resolveTarget(eng *engine.Engine, lang, fw string) (target.Language, target.Framework, error) {
	reg := eng.Targets()
	l, f := target.Language(lang), target.Framework(fw)
	if l == "" && f == "" {
		return "", "", errs.New(errs.ErrCodeInvalidInput, "a --language or --framework is required")
	}
	if l == "" {
		owner, ok := reg.LanguageOf(f)
		if !ok {
			return "", "", errs.New(errs.ErrCodeInvalidFramework, "unknown framework %q", f)
		}
		l = owner
	}
	if f == "" {
		def, ok := reg.DefaultFramework(l)
		if !ok {
			return "", "", errs.New(errs.ErrCodeInvalidLanguage, "unknown language %q", l)
		}
		f = def
	}
	if err := reg.Check(l, f); err != nil {
		return "", "", err
	}
	return l, f, nil
}
