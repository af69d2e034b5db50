package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/booktracker/internal/config"
	"github.com/five82/booktracker/internal/logging"
	"github.com/five82/booktracker/internal/logtail"
)

func newLogsCommand(flags *rootFlags) *cobra.Command {
	var (
		lines int
		level string
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the end of the booktracker log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			minLevel, err := logging.ParseLevel(level)
			if err != nil {
				return err
			}
			out, err := logtail.Read(cfg.LogFile, logtail.Options{Lines: lines, MinLevel: minLevel})
			if err != nil {
				return err
			}
			if len(out) == 0 {
				p := &printer{w: cmd.ErrOrStderr()}
				p.printf("no log entries in %s\n", cfg.LogFile)
				return p.err
			}
			p := &printer{w: cmd.OutOrStdout()}
			for _, line := range out {
				p.println(line)
			}
			return p.err
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines, 0 for all")
	cmd.Flags().StringVar(&level, "level", "debug", "minimum level to show")
	return cmd
}
