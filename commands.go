package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alchemix-labs/yieldkit/internal/adapters/chain"
	"github.com/alchemix-labs/yieldkit/internal/api"
	"github.com/alchemix-labs/yieldkit/internal/core/domain"
	"github.com/alchemix-labs/yieldkit/pkg/contracts"
	"github.com/alchemix-labs/yieldkit/pkg/slippage"
	"github.com/alchemix-labs/yieldkit/pkg/version"
)

var (
	listenAddr       string
	minOutAmount     string
	minOutBps        string
	convertDirection string
	versionJSON      bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serves rates, minimum output, contract lookups and static token
conversions over HTTP, proxies /llama/* to the pools API and streams
aggregated rates on /ws/rates.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var ratesCmd = &cobra.Command{
	Use:   "rates [provider]",
	Short: "Fetch yield rates once and print them as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRates,
}

var minOutCmd = &cobra.Command{
	Use:   "min-out",
	Short: "Compute the slippage-adjusted minimum output",
	Long: `Computes amount - floor(amount * bps / 10000).

An omitted amount is undefined and yields 2^256-1, which no swap can meet.`,
	Args: cobra.NoArgs,
	RunE: runMinOut,
}

var contractsCmd = &cobra.Command{
	Use:   "contracts [chain]",
	Short: "List contract addresses per chain",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runContracts,
}

var convertCmd = &cobra.Command{
	Use:   "convert <chain> <token> <amount>",
	Short: "Convert an amount between static and dynamic units on chain",
	Example: `  yieldkit convert ethereum staticAaveUSDC 1000000
  yieldkit convert 10 staticAaveUSDC 1000000 --direction to_static`,
	Args: cobra.ExactArgs(3),
	RunE: runConvert,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionJSON {
			return printJSON(cmd, version.GetBuildInfo())
		}
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
		return nil
	},
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := api.NewServer(api.Options{
		Rates:          a.rates,
		Converters:     chain.NewDialer(a.cfg.RPCURLs),
		LlamaUpstream:  a.cfg.LlamaUpstream,
		AdminJWTSecret: a.cfg.AdminJWTSecret,
		StreamInterval: a.cfg.StreamInterval,
		Logger:         a.logger,
	})
	if err != nil {
		return err
	}
	if a.cfg.AdminJWTSecret == "" {
		a.logger.Info("ADMIN_JWT_SECRET not set, admin endpoints disabled")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := a.cfg.ListenAddr
	if listenAddr != "" {
		addr = listenAddr
	}
	a.logger.Info("Starting yieldkit",
		zap.String("version", version.Version()),
		zap.Strings("providers", a.rates.Providers()))
	return srv.Run(ctx, addr)
}

func runRates(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if len(args) == 1 {
		quote, err := a.rates.Rate(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, quote)
	}

	snapshot, err := a.rates.Aggregate(ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd, snapshot)
}

func runMinOut(cmd *cobra.Command, args []string) error {
	bps, err := slippage.ParseBps(minOutBps)
	if err != nil {
		return err
	}
	amount, err := slippage.ParseAmount(minOutAmount)
	if err != nil {
		return err
	}
	out, err := slippage.MinOut(amount, bps)
	if err != nil {
		return err
	}

	result := domain.MinOutResult{
		SlippageBps: bps,
		Slippage:    slippage.FormatPercent(bps),
		MinOut:      out.String(),
		Sentinel:    amount.IsNil(),
	}
	if !amount.IsNil() {
		result.Amount = amount.String()
	}
	return printJSON(cmd, result)
}

func runContracts(cmd *cobra.Command, args []string) error {
	chains := contracts.Chains()
	if len(args) == 1 {
		id, err := contracts.ParseChainID(args[0])
		if err != nil {
			return err
		}
		chains = []contracts.ChainID{id}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CHAIN\tCONTRACT\tADDRESS\tSTATIC")
	for _, id := range chains {
		book, err := contracts.ForChain(id)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(book))
		for name := range book {
			names = append(names, string(name))
		}
		sort.Strings(names)
		for _, name := range names {
			c := contracts.Contract(name)
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", id, name, book[c].Hex(), contracts.IsStaticToken(c))
		}
	}
	return w.Flush()
}

func runConvert(cmd *cobra.Command, args []string) error {
	id, err := contracts.ParseChainID(args[0])
	if err != nil {
		return err
	}
	token := contracts.Contract(args[1])
	if !contracts.IsStaticToken(token) {
		return fmt.Errorf("%w: %s has no static conversion", domain.ErrUnknownContract, token)
	}
	address, err := contracts.Lookup(token, id)
	if err != nil {
		return err
	}
	direction := domain.ConversionDirection(convertDirection)
	if direction != domain.ToDynamic && direction != domain.ToStatic {
		return fmt.Errorf("invalid direction %q: must be %s or %s", direction, domain.ToDynamic, domain.ToStatic)
	}
	amount, err := slippage.ParseAmount(args[2])
	if err != nil {
		return err
	}
	if amount.IsNil() {
		return fmt.Errorf("amount is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rpcURL, ok := cfg.RPCURL(uint64(id))
	if !ok {
		return fmt.Errorf("%w: set RPC_URL_%d", domain.ErrUnsupportedChain, uint64(id))
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	client, release, err := chain.Dial(ctx, rpcURL, address)
	if err != nil {
		return err
	}
	defer release()

	out, err := chain.Convert(ctx, client, direction, amount.BigInt())
	if err != nil {
		return err
	}

	return printJSON(cmd, domain.ConversionResult{
		ChainID:   uint64(id),
		Token:     string(token),
		Address:   address.Hex(),
		Direction: direction,
		AmountIn:  amount.String(),
		AmountOut: out.String(),
	})
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
