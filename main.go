// Command yieldkit serves and queries yield rates, slippage bounds and
// static token conversions.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	envFile string
	verbose bool
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "yieldkit",
	Short:         "Yield rates, slippage bounds and contract lookups",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment from this file (default: .env if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Timeout for one-shot commands")

	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (overrides LISTEN_ADDR)")
	minOutCmd.Flags().StringVar(&minOutAmount, "amount", "", "Input amount in base units (empty: undefined)")
	minOutCmd.Flags().StringVar(&minOutBps, "bps", "50", "Slippage in basis points (0-10000)")
	convertCmd.Flags().StringVar(&convertDirection, "direction", "to_dynamic", "to_dynamic or to_static")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print build information as JSON")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ratesCmd)
	rootCmd.AddCommand(minOutCmd)
	rootCmd.AddCommand(contractsCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
