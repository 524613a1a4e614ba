package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/stuttgart-things/sealer/internal/collector"
	"github.com/stuttgart-things/sealer/internal/config"
	"github.com/stuttgart-things/sealer/internal/session"
)

var (
	executablePath      string
	useLocalCertificate bool
	configPath          string
	interactive         bool
	nonInteractive      bool
	verbose             bool
)

var rootCmd = &cobra.Command{
	Use:   "sealer",
	Short: "Seal Kubernetes secrets with kubeseal",
	Long: `Sealer turns Secret manifests and individual values into SealedSecrets with kubeseal.
Sealing parameters are derived from the document and confirmed in a short prompt.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(logo)
		_ = cmd.Usage()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&executablePath, "executable-path", "", "Path to the kubeseal executable (default: config file or $SEALER_EXECUTABLE_PATH)")
	rootCmd.PersistentFlags().BoolVar(&useLocalCertificate, "use-local-certificate", true, "Seal with a local certificate instead of fetching it from the cluster")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $SEALER_CONFIG or $XDG_CONFIG_HOME/sealer/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&interactive, "interactive", "i", false, "Force interactive mode")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Force non-interactive mode")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log diagnostic output to stderr")
	rootCmd.MarkFlagsMutuallyExclusive("interactive", "non-interactive")
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, session.ErrSaveDeclined) {
			return
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		stop()
		os.Exit(1)
	}
}

// environment is what every sealing command needs: configuration, the
// logger and the prompt mode.
type environment struct {
	store       *config.Store
	logger      *slog.Logger
	interactive bool

	// overrides applies the configuration flags given on the command line.
	overrides func(*config.Config)
}

func newEnvironment(cmd *cobra.Command) (*environment, error) {
	logger := newLogger(verbose)

	path := configPath
	if path == "" {
		var err error
		path, err = config.FilePath()
		if err != nil {
			return nil, err
		}
	}

	store, err := config.Open(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("configuration loaded", "path", store.Path())

	flags := cmd.Flags()
	return &environment{
		store:       store,
		logger:      logger,
		interactive: isInteractive(interactive, nonInteractive),
		overrides: func(c *config.Config) {
			if flags.Changed("executable-path") {
				c.ExecutablePath = executablePath
			}
			if flags.Changed("use-local-certificate") {
				c.UseLocalCertificate = useLocalCertificate
			}
		},
	}, nil
}

// applyOverrides layers the command-line flags over the loaded
// configuration. Subscribers of the store are notified of the change.
func (e *environment) applyOverrides() {
	if e.overrides != nil {
		e.store.Set(e.overrides)
	}
}

// collector returns the huh prompter in interactive mode and the
// non-prompting validator otherwise.
func (e *environment) collector() session.Collector {
	if e.interactive {
		return collector.New(collector.NewFormPrompter())
	}
	return collector.NewStatic()
}

// session creates a session following the store and then applies the
// command-line overrides, which reach it as a configuration change.
func (e *environment) session(host session.Host) *session.Session {
	s := session.New(e.store, e.collector(), host, e.logger)
	e.applyOverrides()
	return s
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func isInteractive(force, forceOff bool) bool {
	if forceOff {
		return false
	}
	if force {
		return true
	}
	// Auto-detect: interactive if TTY, non-interactive otherwise
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}
