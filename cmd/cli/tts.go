package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mednis/medsbot/datastore"
	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/storage"
	"github.com/mednis/medsbot/internal/tts"
	"github.com/mednis/medsbot/pkg/retrylimit"
)

var ttsCmd = &cobra.Command{
	Use:   "tts",
	Short: "Exercise the speech pipeline",
}

var ttsFetchCmd = &cobra.Command{
	Use:   "fetch <voice> <text...>",
	Short: "Download one clip with the configured speech backend",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := datastore.Open(datastore.DefaultConfig(storePath))
		if err != nil {
			return err
		}
		settings, err := storage.New(ds, config.Defaults()).TTSGlobal()
		if err != nil {
			return err
		}

		if err := os.MkdirAll(audioDir, 0o755); err != nil {
			return err
		}
		f := &tts.Fetcher{
			Dir:     audioDir,
			HTTP:    &http.Client{Timeout: 30 * time.Second},
			Limiter: retrylimit.NewAdaptiveLimiter(1, 1, 1, 0, 1),
		}
		path, err := f.Fetch(cmd.Context(), settings, args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var ttsFilterCmd = &cobra.Command{
	Use:   "filter <text...>",
	Short: "Show what the chat filter would speak",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := tts.Filter(strings.Join(args, " "), tts.DefaultFilterOptions())
		if out == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "(skipped)")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	ttsCmd.AddCommand(ttsFetchCmd, ttsFilterCmd)
}
