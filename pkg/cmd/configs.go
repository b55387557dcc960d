package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/drivevault/pkg/configs"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "config subcommands",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "print the path of the current config file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		v := configs.GetViper()
		if v == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "config not initialized")

			return nil
		}

		path := v.ConfigFileUsed()
		if path == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "no config file used (maybe using defaults or env)")

			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), path)

		return nil
	},
}

// config debug 把解析后的完整配置以 JSON 打印，排查环境变量覆盖时用.
var configDebugCmd = &cobra.Command{
	Use:   "debug",
	Short: "print the current config values",
	RunE: func(cmd *cobra.Command, _ []string) error {
		v := configs.GetViper()
		if v == nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "config not initialized.")

			return nil
		}

		if debug {
			v.Debug()
		}

		b, err := json.MarshalIndent(configs.GetConfig(), "", "  ")
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "failed to marshal config to JSON:", err)

			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(b))

		return nil
	},
}

func registerConfigsCommands() {
	configCmd.AddCommand(configPathCmd, configDebugCmd)
	rootCmd.AddCommand(configCmd)
}
