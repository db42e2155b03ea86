package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/config"
	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/logging"
	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/mutation"
	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/session"
)

// version is the program version. It can be overridden at build time with -ldflags "-X main.version=..."
var version = "0.1.0"

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
	okColor   = color.New(color.FgGreen)
)

// app carries what every subcommand needs after flags are parsed.
type app struct {
	configPath string
	verbose    bool

	cfg     *config.Config
	logger  *log.Logger
	closeFn func() error
	fetcher session.Fetcher
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	a.logger, a.closeFn = logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel, Verbose: a.verbose})
	a.logger.Debug("loaded config", "uniprot_base_url", cfg.UniprotBaseURL, "log_file", cfg.LogFile, "log_level", cfg.LogLevel, "http_timeout_seconds", cfg.HTTPTimeoutSecs)
	if a.fetcher == nil {
		a.fetcher = cfg.Client()
	}
	return nil
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.closeFn != nil {
		return a.closeFn()
	}
	return nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:                "protgps",
		Short:              "Fetch UniProt sequences, apply point mutations and export FASTA",
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config.json (optional)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose (debug) logging")

	root.AddCommand(newFetchCmd(a), newMutateCmd(), newVersionCmd())
	return root
}

func newFetchCmd(a *app) *cobra.Command {
	var (
		code    string
		asFASTA bool
		outPath string
	)
	cmd := &cobra.Command{
		Use:     "fetch <accession>",
		Short:   "Fetch a UniProt entry and print it, optionally mutated",
		Args:    cobra.ExactArgs(1),
		Example: "  protgps fetch Q9Y5B6 -m M1P --fasta -o sequences.fasta",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFetch(cmd.Context(), cmd.OutOrStdout(), args[0], code, asFASTA, outPath)
		},
	}
	cmd.Flags().StringVarP(&code, "mutation", "m", "", "mutation code such as P30R or P30TER")
	cmd.Flags().BoolVar(&asFASTA, "fasta", false, "print the FASTA block instead of the text block")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "also write the FASTA block to this file")
	return cmd
}

func (a *app) runFetch(ctx context.Context, w io.Writer, accession, code string, asFASTA bool, outPath string) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.HTTPTimeout())
	defer cancel()

	start := time.Now()
	s := session.New()
	v, err := s.Fetch(ctx, a.fetcher, accession, code)
	if err != nil {
		a.logger.Error("fetch failed", "accession", accession, "err", err)
		return err
	}
	a.logger.Info("fetched record", "accession", v.Record.Accession, "length", len(v.Record.Sequence), "duration_ms", time.Since(start).Milliseconds())

	if v.MutationErr != nil {
		warnColor.Fprintln(w, "mutation not applied, showing the wild-type sequence")
	} else if v.Mutated() {
		okColor.Fprintf(w, "applied %s (position %d)\n", v.Code, v.Preview.Code.Position)
	}

	e, _ := s.Add()
	if asFASTA {
		fmt.Fprintln(w, e.FASTA)
	} else {
		fmt.Fprintln(w, v.Text)
	}

	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := s.Export(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		a.logger.Info("wrote FASTA", "path", outPath, "entries", s.Len())
	}
	if v.MutationErr != nil {
		return v.MutationErr
	}
	return nil
}

func newMutateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mutate <sequence> <code>",
		Short: "Apply a mutation code to a sequence without fetching",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := mutation.Apply(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",

		// no config or logger needed
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "protgps", version)
		},
	}
}

// exitCode distinguishes bad input from failed fetches for scripts.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, mutation.ErrInvalidFormat), errors.Is(err, mutation.ErrOutOfRange), errors.Is(err, mutation.ErrMismatch):
		return 2
	default:
		return 1
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newRootCmd(&app{}).ExecuteContext(ctx)
	if err != nil {
		errColor.Fprintln(os.Stderr, "Error:", err)
	}
	stop()
	os.Exit(exitCode(err))
}
