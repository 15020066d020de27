package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/config"
)

// ConfigFile is the name of the project configuration file.
const ConfigFile = "tally.yaml"

const exampleScript = `# Example ledger script: one operation per line.
create_account,alice,1000
create_account,bob,10
create_account,carol,0
transfer,bob,alice,1000,1
transfer,alice,bob,250,2
schedule_transfer,alice,carol,300,5
schedule_transfer,bob,carol,100,10
run_scheduled_until,10
merge_accounts,alice,bob,team,20
get_balance,team
top_k_by_outgoing,0,20,3
get_statement,team,0,20
`

func newInitCommand() *cobra.Command {
	var name string
	var scale int32

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new tally project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir, name, scale); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized tally project at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "ledger name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().Int32Var(&scale, "scale", 0, "decimal places used when printing amounts")

	return cmd
}

func runInit(dir, name string, scale int32) error {
	if err := os.MkdirAll(filepath.Join(dir, "scripts"), 0o755); err != nil {
		return fmt.Errorf("creating directory scripts: %w", err)
	}

	cfg := config.Default(name)
	cfg.Display.Scale = scale
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(filepath.Join(dir, ConfigFile), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "scripts", "example.csv"), []byte(exampleScript), 0o644); err != nil {
		return fmt.Errorf("writing example script: %w", err)
	}
	return nil
}
