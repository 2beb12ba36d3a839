package contracts

import (
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Static token wrapper view methods.
const (
	MethodStaticToDynamic = "staticToDynamicAmount"
	MethodDynamicToStatic = "dynamicToStaticAmount"
)

const staticTokenABIJSON = `[
	{
		"name": "staticToDynamicAmount",
		"type": "function",
		"inputs": [{"name": "amount", "type": "uint256"}],
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view"
	},
	{
		"name": "dynamicToStaticAmount",
		"type": "function",
		"inputs": [{"name": "amount", "type": "uint256"}],
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view"
	}
]`

var (
	staticTokenOnce sync.Once
	staticTokenABI  abi.ABI
	staticTokenErr  error
)

// StaticTokenABI returns the parsed conversion interface. It is parsed once.
func StaticTokenABI() (abi.ABI, error) {
	staticTokenOnce.Do(func() {
		staticTokenABI, staticTokenErr = abi.JSON(strings.NewReader(staticTokenABIJSON))
	})
	return staticTokenABI, staticTokenErr
}

// PackConversion encodes calldata for one of the conversion methods.
func PackConversion(method string, amount *big.Int) ([]byte, error) {
	parsed, err := StaticTokenABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse static token ABI: %w", err)
	}
	if amount == nil || amount.Sign() < 0 {
		return nil, fmt.Errorf("amount must be a non-negative integer")
	}
	data, err := parsed.Pack(method, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}
	return data, nil
}

// UnpackConversion decodes the uint256 returned by a conversion method.
func UnpackConversion(method string, data []byte) (*big.Int, error) {
	parsed, err := StaticTokenABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse static token ABI: %w", err)
	}
	out, err := parsed.Unpack(method, data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected %s output count: %d", method, len(out))
	}
	amount, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected %s output type %T", method, out[0])
	}
	return amount, nil
}
