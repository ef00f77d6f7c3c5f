package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mednis/medsbot/datastore"
	"github.com/mednis/medsbot/internal/config"
	"github.com/mednis/medsbot/internal/storage"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect the datastore",
}

var storeKeysCmd = &cobra.Command{
	Use:   "keys [prefix]",
	Short: "List stored keys, optionally filtered by prefix",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := datastore.Open(datastore.DefaultConfig(storePath))
		if err != nil {
			return err
		}
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}
		for _, k := range ds.Keys(prefix) {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}

var storeGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one stored value as indented JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := datastore.Open(datastore.DefaultConfig(storePath))
		if err != nil {
			return err
		}
		raw, ok := ds.Raw(args[0])
		if !ok {
			return fmt.Errorf("key %q not found", args[0])
		}
		out, err := indent(raw)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var storeForgetCmd = &cobra.Command{
	Use:   "forget <user-id>",
	Short: "Erase a user's record and their entries in guild lists",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := datastore.Open(datastore.DefaultConfig(storePath))
		if err != nil {
			return err
		}
		st := storage.New(ds, config.Defaults())
		if err := st.DeleteUserData(args[0]); err != nil {
			st.Close()
			return err
		}
		if err := st.Close(); err != nil {
			return err
		}
		log.Info("Erased user data", "user", args[0])
		return nil
	},
}

func init() {
	storeCmd.AddCommand(storeKeysCmd, storeGetCmd, storeForgetCmd)
}

func indent(raw json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}
