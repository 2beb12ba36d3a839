package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alchemix-labs/yieldkit/internal/core/domain"
)

// Dialer opens StaticTokenClients against per-chain RPC endpoints.
type Dialer struct {
	rpcURLs map[uint64]string
}

func NewDialer(rpcURLs map[uint64]string) *Dialer {
	return &Dialer{rpcURLs: rpcURLs}
}

// Converter returns a converter bound to address on chainID and a func that
// closes the underlying connection.
func (d *Dialer) Converter(ctx context.Context, chainID uint64, address common.Address) (domain.TokenConverter, func(), error) {
	url, ok := d.rpcURLs[chainID]
	if !ok || url == "" {
		return nil, nil, fmt.Errorf("%w: no RPC URL configured for chain %d", domain.ErrUnsupportedChain, chainID)
	}
	client, closeFn, err := Dial(ctx, url, address)
	if err != nil {
		return nil, nil, err
	}
	return client, closeFn, nil
}
