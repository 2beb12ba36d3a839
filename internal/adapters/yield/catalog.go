package yield

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/alchemix-labs/yieldkit/internal/core/domain"
)

// Public endpoints used by the built-in catalog.
const (
	LidoSMAAPRURL     = "https://eth-api.lido.fi/v1/protocol/steth/apr/sma"
	RocketPoolAPRURL  = "https://api.rocketpool.net/api/apr"
	FraxSummaryURL    = "https://api.frax.finance/v2/frxeth/summary/latest"
	YearnVaultURL     = "https://ydaemon.yearn.fi/1/vaults/0xdA816459F1AB5631232FE5e97a05BBBb94970c95"
	DefiLlamaYieldURL = "https://yields.llama.fi"

	// Aave V3 USDC on Ethereum.
	DefiLlamaAaveUSDCPool = "aa70268e-4b52-42bf-a116-608b370f9501"
)

// Provider kinds accepted in a Definition.
const (
	KindJSON      = "json"
	KindDefiLlama = "defillama"
)

// DefaultFeeMultiplier is the share of yield passed through to depositors.
var DefaultFeeMultiplier = decimal.RequireFromString("0.9")

// Definition describes one provider. It is the unit of the providers file.
type Definition struct {
	Name   string  `yaml:"name" json:"name"`
	Kind   string  `yaml:"kind,omitempty" json:"kind,omitempty"`
	URL    string  `yaml:"url" json:"url"`
	Field  string  `yaml:"field,omitempty" json:"field,omitempty"`
	Scale  float64 `yaml:"scale,omitempty" json:"scale,omitempty"`
	PoolID string  `yaml:"pool_id,omitempty" json:"pool_id,omitempty"`
}

// DefaultDefinitions returns the built-in provider catalog.
func DefaultDefinitions() []Definition {
	return []Definition{
		{Name: "lido", Kind: KindJSON, URL: LidoSMAAPRURL, Field: "data.smaApr"},
		{Name: "rocketpool", Kind: KindJSON, URL: RocketPoolAPRURL, Field: "yearlyAPR"},
		{Name: "frax", Kind: KindJSON, URL: FraxSummaryURL, Field: "sfrxethApr"},
		{Name: "yearn-dai", Kind: KindJSON, URL: YearnVaultURL, Field: "apr.netAPR", Scale: 100},
		{Name: "aave-usdc", Kind: KindDefiLlama, URL: DefiLlamaYieldURL, PoolID: DefiLlamaAaveUSDCPool},
	}
}

// Validate checks a definition for required fields.
func (d Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("provider name is required")
	}
	if d.URL == "" {
		return fmt.Errorf("provider %s: url is required", d.Name)
	}
	switch d.kind() {
	case KindJSON:
		if d.Field == "" {
			return fmt.Errorf("provider %s: field is required", d.Name)
		}
	case KindDefiLlama:
		if d.PoolID == "" {
			return fmt.Errorf("provider %s: pool_id is required", d.Name)
		}
	default:
		return fmt.Errorf("provider %s: unknown kind %q", d.Name, d.Kind)
	}
	if d.Scale < 0 {
		return fmt.Errorf("provider %s: scale must be positive", d.Name)
	}
	return nil
}

func (d Definition) kind() string {
	if d.Kind == "" {
		return KindJSON
	}
	return d.Kind
}

// Build turns definitions into providers sharing one fee multiplier.
func Build(defs []Definition, fee decimal.Decimal, opts ...Option) ([]domain.RateProvider, error) {
	seen := make(map[string]bool, len(defs))
	providers := make([]domain.RateProvider, 0, len(defs))

	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("duplicate provider %q", d.Name)
		}
		seen[d.Name] = true

		switch d.kind() {
		case KindDefiLlama:
			providers = append(providers, NewDefiLlamaPoolProvider(d.Name, d.URL, d.PoolID, fee, opts...))
		default:
			scale := decimal.NewFromInt(1)
			if d.Scale > 0 {
				scale = decimal.NewFromFloat(d.Scale)
			}
			providers = append(providers, NewJSONFieldProvider(d.Name, d.URL, d.Field, scale, fee, opts...))
		}
	}
	return providers, nil
}
