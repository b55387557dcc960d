package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/drivevault/pkg/internal/storage/mq"
)

var mqCmd = &cobra.Command{
	Use:     "mq",
	Short:   "Message queue related commands",
	Aliases: []string{"messagequeue"},
}

var mqListCmd = &cobra.Command{
	Use:     "list",
	Short:   "list all registered mq types",
	Aliases: []string{"ls", "l"},
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "Registered mq types:")

		for _, t := range mq.GetRegisteredMQTypes() {
			fmt.Fprintln(cmd.OutOrStdout(), "   - "+string(t))
		}
	},
}

func registerMQCommands() {
	mqCmd.AddCommand(mqListCmd)
	rootCmd.AddCommand(mqCmd)
}
