package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemix-labs/yieldkit/internal/core/domain"
	"github.com/alchemix-labs/yieldkit/pkg/contracts"
)

// rateCaller emulates a wrapper whose dynamic amount is static * num / den.
type rateCaller struct {
	num, den int64
	lastTo   common.Address
	err      error
}

func (r *rateCaller) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.lastTo = *call.To

	parsed, err := contracts.StaticTokenABI()
	if err != nil {
		return nil, err
	}
	method, err := parsed.MethodById(call.Data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, err
	}
	in := args[0].(*big.Int)

	out := new(big.Int)
	switch method.Name {
	case contracts.MethodStaticToDynamic:
		out.Mul(in, big.NewInt(r.num)).Quo(out, big.NewInt(r.den))
	case contracts.MethodDynamicToStatic:
		out.Mul(in, big.NewInt(r.den)).Quo(out, big.NewInt(r.num))
	}
	return method.Outputs.Pack(out)
}

func TestStaticTokenClient_Conversions(t *testing.T) {
	caller := &rateCaller{num: 105, den: 100}
	addr := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	client := NewStaticTokenClient(caller, addr)

	dyn, err := client.StaticToDynamic(context.Background(), big.NewInt(1_000_000))
	require.NoError(t, err)
	assert.Equal(t, int64(1_050_000), dyn.Int64())
	assert.Equal(t, addr, caller.lastTo)

	st, err := client.DynamicToStatic(context.Background(), big.NewInt(1_050_000))
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), st.Int64())
}

func TestConvert(t *testing.T) {
	client := NewStaticTokenClient(&rateCaller{num: 2, den: 1}, common.Address{})

	out, err := Convert(context.Background(), client, domain.ToDynamic, big.NewInt(21))
	require.NoError(t, err)
	assert.Equal(t, int64(42), out.Int64())

	out, err = Convert(context.Background(), client, domain.ToStatic, big.NewInt(42))
	require.NoError(t, err)
	assert.Equal(t, int64(21), out.Int64())

	_, err = Convert(context.Background(), client, domain.ConversionDirection("sideways"), big.NewInt(1))
	assert.Error(t, err)
}

func TestStaticTokenClient_CallError(t *testing.T) {
	client := NewStaticTokenClient(&rateCaller{err: errors.New("execution reverted")}, common.Address{})

	_, err := client.StaticToDynamic(context.Background(), big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execution reverted")
}

func TestStaticTokenClient_RejectsNegative(t *testing.T) {
	client := NewStaticTokenClient(&rateCaller{num: 1, den: 1}, common.Address{})

	_, err := client.DynamicToStatic(context.Background(), big.NewInt(-5))
	assert.Error(t, err)
}

func TestDialer_RequiresRPCURL(t *testing.T) {
	d := NewDialer(map[uint64]string{1: ""})

	_, _, err := d.Converter(context.Background(), 1, common.Address{})
	assert.ErrorIs(t, err, domain.ErrUnsupportedChain)

	_, _, err = d.Converter(context.Background(), 10, common.Address{})
	assert.ErrorIs(t, err, domain.ErrUnsupportedChain)
}
