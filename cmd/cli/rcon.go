package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mednis/medsbot/internal/minecraft"
)

var rconTimeout time.Duration

var rconCmd = &cobra.Command{
	Use:   "rcon <address> <password> <command...>",
	Short: "Run one console command on a Minecraft server",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), rconTimeout)
		defer cancel()

		client := minecraft.NewRCONClient(args[0], args[1])
		out, err := client.Execute(ctx, strings.Join(args[2:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rconCmd.Flags().DurationVar(&rconTimeout, "timeout", 5*time.Second, "how long to wait for the server")
}
