package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/drivevault/pkg/internal/storage/kv"
)

var kvCmd = &cobra.Command{
	Use:     "kv",
	Short:   "Key-Value store related commands",
	Aliases: []string{"keyvalue"},
}

var kvListCmd = &cobra.Command{
	Use:     "list",
	Short:   "list all registered kv types",
	Aliases: []string{"ls", "l"},
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "Registered kv types:")

		for _, t := range kv.GetRegisteredKVTypes() {
			fmt.Fprintln(cmd.OutOrStdout(), "   - "+string(t))
		}
	},
}

func registerKVCommands() {
	kvCmd.AddCommand(kvListCmd)
	rootCmd.AddCommand(kvCmd)
}
