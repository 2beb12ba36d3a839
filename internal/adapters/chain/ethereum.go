package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/alchemix-labs/yieldkit/internal/core/domain"
	"github.com/alchemix-labs/yieldkit/pkg/contracts"
)

// ContractCaller is the read-only subset of ethclient.Client used here.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

var _ domain.TokenConverter = (*StaticTokenClient)(nil)

// StaticTokenClient calls the static/dynamic conversion views of one wrapper.
type StaticTokenClient struct {
	caller  ContractCaller
	address common.Address
}

func NewStaticTokenClient(caller ContractCaller, address common.Address) *StaticTokenClient {
	return &StaticTokenClient{caller: caller, address: address}
}

// Dial connects to rpcURL and binds the wrapper at address.
func Dial(ctx context.Context, rpcURL string, address common.Address) (*StaticTokenClient, func(), error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}
	return NewStaticTokenClient(client, address), client.Close, nil
}

func (c *StaticTokenClient) StaticToDynamic(ctx context.Context, amount *big.Int) (*big.Int, error) {
	return c.call(ctx, contracts.MethodStaticToDynamic, amount)
}

func (c *StaticTokenClient) DynamicToStatic(ctx context.Context, amount *big.Int) (*big.Int, error) {
	return c.call(ctx, contracts.MethodDynamicToStatic, amount)
}

func (c *StaticTokenClient) call(ctx context.Context, method string, amount *big.Int) (*big.Int, error) {
	data, err := contracts.PackConversion(method, amount)
	if err != nil {
		return nil, err
	}

	result, err := c.caller.CallContract(ctx, ethereum.CallMsg{
		To:   &c.address,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}

	return contracts.UnpackConversion(method, result)
}

// Convert runs the conversion selected by direction.
func Convert(ctx context.Context, conv domain.TokenConverter, direction domain.ConversionDirection, amount *big.Int) (*big.Int, error) {
	switch direction {
	case domain.ToDynamic:
		return conv.StaticToDynamic(ctx, amount)
	case domain.ToStatic:
		return conv.DynamicToStatic(ctx, amount)
	default:
		return nil, fmt.Errorf("unknown conversion direction %q", direction)
	}
}
