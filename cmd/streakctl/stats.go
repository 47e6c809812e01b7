package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/comitanigiacomo/kanso-habits/internal/core/streak"
)

type statsOutput struct {
	streak.Stats
	Today    string `json:"today"`
	TimeZone string `json:"time_zone"`
	Rejected int    `json:"rejected_entries"`
}

func statsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print streak statistics for a completion history",
		Long: `Reads a JSON array of ISO-8601 timestamps, or an object with a
"completion_history" array, and prints the derived statistics as JSON.
Use --file - to read from standard input.`,
		Example: `  streakctl stats --file history.json --tz Europe/Rome
  streakctl stats --file - --today 2025-01-03 < history.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, v.GetString("file"), v.GetString("today"), v.GetString("tz"))
		},
	}

	cmd.Flags().StringP("file", "f", "", "history file, or - for stdin")
	cmd.Flags().String("today", "", "evaluate as of this day (YYYY-MM-DD, default: now)")
	cmd.Flags().String("tz", "", "IANA time zone of the evaluator (default: local)")
	_ = cmd.MarkFlagRequired("file")

	_ = v.BindPFlag("file", cmd.Flags().Lookup("file"))
	_ = v.BindPFlag("today", cmd.Flags().Lookup("today"))
	_ = v.BindPFlag("tz", cmd.Flags().Lookup("tz"))

	return cmd
}

func runStats(cmd *cobra.Command, file, todayFlag, tz string) error {
	loc := time.Local
	if tz != "" {
		var err error
		if loc, err = time.LoadLocation(tz); err != nil {
			return fmt.Errorf("invalid time zone %q: %w", tz, err)
		}
	}

	today := streak.DayOf(time.Now(), loc)
	if todayFlag != "" {
		var err error
		if today, err = streak.ParseDay(todayFlag); err != nil {
			return fmt.Errorf("invalid --today %q, expected YYYY-MM-DD", todayFlag)
		}
	}

	raw, err := readHistory(cmd.InOrStdin(), file)
	if err != nil {
		return err
	}

	stats, rejected := streak.ComputeRaw(raw, today, loc)
	if rejected > 0 {
		slog.Warn("skipped malformed timestamps", "count", rejected, "file", file)
	}
	slog.Debug("computed stats", "entries", len(raw), "today", today.String(), "tz", loc.String())

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(statsOutput{
		Stats:    stats,
		Today:    today.String(),
		TimeZone: loc.String(),
		Rejected: rejected,
	})
}

func readHistory(stdin io.Reader, file string) ([]string, error) {
	var data []byte
	var err error
	if file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	return decodeHistory(data)
}

// decodeHistory accepts either a bare array of timestamps or a habit record
// carrying a completion_history field.
func decodeHistory(data []byte) ([]string, error) {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var record struct {
		CompletionHistory *[]string `json:"completion_history"`
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	if record.CompletionHistory == nil {
		return nil, errors.New("history must be a JSON array or an object with completion_history")
	}

	return *record.CompletionHistory, nil
}
