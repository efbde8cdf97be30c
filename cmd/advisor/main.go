// Command advisor recommends Next.js App Router file layouts for natural
// language requirements, using a declarative pattern catalog.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"nextadvisor/internal/catalog"
	"nextadvisor/internal/config"
	"nextadvisor/internal/engine"
	"nextadvisor/internal/logging"
	"nextadvisor/internal/resolver"
	"nextadvisor/internal/store"
)

// maxLineSize bounds one requirement line read by batch and watch.
const maxLineSize = 4 * 1024 * 1024

// Exit codes beyond the generic failure.
const (
	exitNoMatch       = 2
	exitClarification = 3
	exitInvalid       = 4
)

// app holds the state shared by one command tree.
type app struct {
	configPath  string
	catalogPath string
	verbose     bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "advisor",
		Short: "Recommend Next.js App Router files for a requirement",
		Long: `advisor maps a plain-language requirement onto a catalog of App Router
patterns and answers with the files to create, their directives, imports and
code skeletons, plus the anti-patterns that were avoided.

The catalog is embedded by default; point --catalog at a YAML/JSON/JSONC file
or a directory of them to use your own.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.boot()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultFileName, "Config file")
	root.PersistentFlags().StringVar(&a.catalogPath, "catalog", "", "Catalog file or directory (default: embedded)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		a.resolveCmd(),
		a.batchCmd(),
		a.catalogCmd(),
		a.watchCmd(),
		a.historyCmd(),
	)
	return root
}

// boot loads config and initializes logging.
func (a *app) boot() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.catalogPath != "" {
		cfg.Catalog.Path = a.catalogPath
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logging.Initialize(cfg.Logging.ToLogging()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	logging.Get(logging.CategoryCLI).Debug("config loaded from %s", a.configPath)
	return nil
}

// loadCatalog returns the configured catalog, or the embedded one.
func (a *app) loadCatalog() (*catalog.Catalog, error) {
	if a.cfg.Catalog.Path == "" {
		return catalog.LoadEmbedded()
	}
	return catalog.LoadPath(a.cfg.Catalog.Path)
}

func (a *app) newEngine() (*engine.Engine, error) {
	cat, err := a.loadCatalog()
	if err != nil {
		return nil, err
	}
	return engine.New(cat, engine.OptionsFromConfig(a.cfg))
}

func (a *app) openStore() (*store.Store, error) {
	return store.Open(a.cfg.Store.DatabasePath)
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return sc
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// exitCode maps an error onto the process exit status.
func exitCode(err error) int {
	var ite *resolver.IncompleteTemplateError
	var cle *catalog.CatalogLoadError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, resolver.ErrNoMatch):
		return exitNoMatch
	case errors.As(err, &ite):
		return exitClarification
	case errors.As(err, &cle):
		return exitInvalid
	}
	return 1
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
