// Command medsbot-cli inspects the bot's datastore and exercises its
// RCON and speech backends from a terminal.
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	storePath string
	audioDir  string

	rootCmd = &cobra.Command{
		Use:           "medsbot-cli",
		Short:         "Maintenance tools for medsbot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&storePath, "store", envOr("STORAGE_PATH", "data/datastore.json"), "path of the datastore file")
	rootCmd.PersistentFlags().StringVar(&audioDir, "audio-dir", envOr("AUDIO_DIR", "data/audio"), "directory fetched speech is written to")

	rootCmd.AddCommand(storeCmd, rconCmd, ttsCmd)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("medsbot-cli", "err", err)
		os.Exit(1)
	}
}
