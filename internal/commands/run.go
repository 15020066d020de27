package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/audit"
	"github.com/cleared-dev/tally/internal/config"
	"github.com/cleared-dev/tally/internal/export"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/logging"
	"github.com/cleared-dev/tally/internal/script"
)

type runOptions struct {
	configPath string
	exportPath string
	logLevel   string
	verify     bool
	summary    bool
}

func newRunCommand() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <script.csv>",
		Short: "Replay an operation script into a fresh ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.Logging.Level = opts.logLevel
			}
			return runScript(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", ConfigFile, "path to tally.yaml")
	cmd.Flags().StringVar(&opts.exportPath, "export", "", "write the transaction log as CSV to this path")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "audit ledger invariants after the replay")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print balances and top senders after the replay")

	return cmd
}

// loadConfig reads the config file. A missing default file falls back to
// defaults; a missing file named explicitly is an error.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return config.Default("tally"), nil
	}
	return nil, err
}

func runScript(out, errOut io.Writer, cfg *config.Config, path string, opts runOptions) error {
	logger, err := logging.New(cfg.Logging, errOut)
	if err != nil {
		return err
	}
	log := logger.WithFields(logrus.Fields{
		"run_id": uuid.NewString(),
		"ledger": cfg.Ledger.Name,
		"script": filepath.Base(path),
	})

	ops, err := script.ParseFile(path)
	if err != nil {
		return err
	}
	log.WithField("ops", len(ops)).Info("replaying script")

	l := ledger.New(ledger.WithLogger(log))
	results := script.Execute(l, ops, cfg.Display.Scale)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
		fmt.Fprintln(out, r.String())
	}
	log.WithField("failed", failed).Info("replay finished")

	if opts.summary {
		if err := printSummary(out, l, cfg); err != nil {
			return err
		}
	}

	if opts.exportPath != "" {
		if err := export.WriteFile(opts.exportPath, l.Records(), cfg.Display.Scale); err != nil {
			return err
		}
		log.WithField("path", opts.exportPath).Info("exported transaction log")
	}

	if opts.verify {
		violations := audit.Check(l.Snapshot())
		for _, v := range violations {
			fmt.Fprintf(out, "violation: %v\n", v)
		}
		if len(violations) > 0 {
			return fmt.Errorf("audit found %d violation(s)", len(violations))
		}
		fmt.Fprintln(out, "audit: ok")
	}
	return nil
}

func printSummary(out io.Writer, l *ledger.Ledger, cfg *config.Config) error {
	fmt.Fprintf(out, "\n== %s ==\n", cfg.Ledger.Name)
	for _, a := range l.Accounts() {
		fmt.Fprintf(out, "%-12s %-6s %s\n", a.ID, a.Status, export.FormatAmount(a.Balance, cfg.Display.Scale))
	}

	pending := l.Pending()
	fmt.Fprintf(out, "pending: %d\n", len(pending))
	for _, p := range pending {
		fmt.Fprintf(out, "  %s %s->%s %s @%d\n", p.ID, p.From, p.To, export.FormatAmount(p.Amount, cfg.Display.Scale), p.ExecuteAt)
	}

	top, err := l.TopKByOutgoingAllTime(cfg.Reports.TopK)
	if err != nil {
		return fmt.Errorf("ranking senders: %w", err)
	}
	fmt.Fprintf(out, "top senders: %s\n", strings.Join(top, ", "))
	return nil
}
