package contracts

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alchemix-labs/yieldkit/internal/core/domain"
)

// ChainID is an EVM chain identifier.
type ChainID uint64

const (
	Ethereum ChainID = 1
	Optimism ChainID = 10
	Arbitrum ChainID = 42161
)

var chainNames = map[ChainID]string{
	Ethereum: "ethereum",
	Optimism: "optimism",
	Arbitrum: "arbitrum",
}

func (c ChainID) String() string {
	if name, ok := chainNames[c]; ok {
		return name
	}
	return strconv.FormatUint(uint64(c), 10)
}

// ParseChainID accepts a numeric id or a known chain name.
func ParseChainID(s string) (ChainID, error) {
	if id, err := strconv.ParseUint(s, 10, 64); err == nil {
		if _, ok := chainNames[ChainID(id)]; ok {
			return ChainID(id), nil
		}
		return 0, fmt.Errorf("%w: %d", domain.ErrUnsupportedChain, id)
	}
	for id, name := range chainNames {
		if name == s {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", domain.ErrUnsupportedChain, s)
}

// Chains returns supported chains in ascending id order.
func Chains() []ChainID {
	ids := make([]ChainID, 0, len(chainNames))
	for id := range chainNames {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Contract names a deployed contract family.
type Contract string

const (
	AlUSD            Contract = "alUSD"
	AlETH            Contract = "alETH"
	AlchemistUSD     Contract = "alchemistUSD"
	AlchemistETH     Contract = "alchemistETH"
	StaticAaveUSDC   Contract = "staticAaveUSDC"
	WrappedStakedETH Contract = "wstETH"
)

// StaticTokens lists the contracts that implement the static/dynamic
// conversion interface.
var StaticTokens = []Contract{StaticAaveUSDC}

// addressBook is built once and never mutated.
var addressBook = map[Contract]map[ChainID]common.Address{
	AlUSD: {
		Ethereum: common.HexToAddress("0xBC6DA0FE9aD5f3b0d58160288917AA56653660E9"),
		Optimism: common.HexToAddress("0xCB8FA9a76b8e203D8C3797bF438d8FB81Ea3326A"),
		Arbitrum: common.HexToAddress("0xCB8FA9a76b8e203D8C3797bF438d8FB81Ea3326A"),
	},
	AlETH: {
		Ethereum: common.HexToAddress("0x0100546F2cD4C9D97f798fFC9755E47865FF7Ee6"),
		Optimism: common.HexToAddress("0x3E29D3A9316dAB217754d13b28646B76607c5f04"),
		Arbitrum: common.HexToAddress("0x17573150d67d820542EFb24210371545a4868B03"),
	},
	AlchemistUSD: {
		Ethereum: common.HexToAddress("0x5C6374a2ac4EBC38DeA0Fc1F8716e5Ea1AdD94dd"),
	},
	AlchemistETH: {
		Ethereum: common.HexToAddress("0x062Bf725dC4cDF947aa79Ca2aaCCD4F385b13b5c"),
	},
	StaticAaveUSDC: {
		Ethereum: common.HexToAddress("0xf65f1b3EA0d64E8C1E5E1b63DE6CbD8B7B0e4Fdf"),
		Optimism: common.HexToAddress("0x4186Eb285b1efdf372AC5896a08C346c7E373cC4"),
	},
	WrappedStakedETH: {
		Ethereum: common.HexToAddress("0x7f39C581F595B53c5cb19bD0b3f8dA6c935E2Ca0"),
		Optimism: common.HexToAddress("0x1F32b1c2345538c0c6f582fCB022739c4A194Ebb"),
		Arbitrum: common.HexToAddress("0x5979D7b546E38E414F7E9822514be443A4800529"),
	},
}

// Lookup returns the address of contract on chain.
func Lookup(contract Contract, chain ChainID) (common.Address, error) {
	byChain, ok := addressBook[contract]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s", domain.ErrUnknownContract, contract)
	}
	addr, ok := byChain[chain]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s not deployed on %s", domain.ErrUnsupportedChain, contract, chain)
	}
	return addr, nil
}

// ForChain returns every contract deployed on chain. The map is a copy.
func ForChain(chain ChainID) (map[Contract]common.Address, error) {
	if _, ok := chainNames[chain]; !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrUnsupportedChain, uint64(chain))
	}
	out := make(map[Contract]common.Address)
	for contract, byChain := range addressBook {
		if addr, ok := byChain[chain]; ok {
			out[contract] = addr
		}
	}
	return out, nil
}

// IsStaticToken reports whether contract supports the conversion interface.
func IsStaticToken(contract Contract) bool {
	for _, c := range StaticTokens {
		if c == contract {
			return true
		}
	}
	return false
}
