package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemix-labs/yieldkit/internal/core/domain"
	"github.com/alchemix-labs/yieldkit/pkg/version"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		minOutAmount, minOutBps = "", "50"
		convertDirection, versionJSON = "to_dynamic", false
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestMinOutCommand(t *testing.T) {
	out, err := execute(t, "min-out", "--amount", "1000000", "--bps", "500")
	require.NoError(t, err)

	var res domain.MinOutResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "950000", res.MinOut)
	assert.Equal(t, "5.00%", res.Slippage)
	assert.False(t, res.Sentinel)
}

func TestMinOutCommand_Rejects(t *testing.T) {
	_, err := execute(t, "min-out", "--amount", "1", "--bps", "10001")
	assert.Error(t, err)
}

func TestContractsCommand(t *testing.T) {
	out, err := execute(t, "contracts", "ethereum")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "CHAIN"))
	assert.Contains(t, out, "staticAaveUSDC")
	assert.NotContains(t, out, "arbitrum")

	_, err = execute(t, "contracts", "solana")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "yieldkit v"))
}

func TestVersionCommand_JSON(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var info version.BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, version.Version(), info.Version)
	assert.NotEmpty(t, info.GoVersion)
}

func TestConvertCommand_RejectsDirectionBeforeDialing(t *testing.T) {
	t.Setenv("RPC_URL_1", "http://127.0.0.1:1")

	_, err := execute(t, "convert", "ethereum", "staticAaveUSDC", "100", "--direction", "sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid direction")
}

func TestConvertCommand_RequiresRPCURL(t *testing.T) {
	t.Setenv("RPC_URL_10", "")
	t.Setenv("PROVIDERS_FILE", "")

	_, err := execute(t, "convert", "optimism", "staticAaveUSDC", "100")
	assert.ErrorIs(t, err, domain.ErrUnsupportedChain)
}

func TestConvertCommand_RejectsOctalLookingAmount(t *testing.T) {
	_, err := execute(t, "convert", "ethereum", "staticAaveUSDC", "0b101")
	assert.Error(t, err)
}
