// Hive CLI — инструмент командной строки для управления
// ботами, кампаниями и контентом через HTTP API.
//
// Использование:
//
//	hive [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	bot       Управление ботами
//	campaign  Управление кампаниями
//	content   Управление контентом
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Hive/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "hive",
		Short:         "Hive CLI — bot and campaign automation tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewBotCmd(clientFn, outputFn),
		cli.NewCampaignCmd(clientFn, outputFn),
		cli.NewContentCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
