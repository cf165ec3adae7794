package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lukejcollins/litroulette/internal/core/service"
	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent picks",
		Long:  "List the most recent picks recorded in the history database (LR_HISTORY_PATH).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be at least 1")
			}

			cfg, _, err := setup(cmd, opts)
			if err != nil {
				return err
			}

			store, err := service.CreateHistoryStore(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			if store == nil {
				return errors.New("history is disabled: set LR_HISTORY_PATH or history_path in the config file")
			}
			defer store.Close()

			picks, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}

			out := cmd.OutOrStdout()
			if opts.asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(picks)
			}

			if len(picks) == 0 {
				fmt.Fprintln(out, "No picks recorded yet.")
				return nil
			}
			for _, p := range picks {
				line := fmt.Sprintf("%s  %-16s  %s", p.PickedAt.Local().Format("2006-01-02 15:04"), p.Genre, p.Title)
				if len(p.Authors) > 0 {
					line += " by " + strings.Join(p.Authors, ", ")
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of picks to list")
	return cmd
}
