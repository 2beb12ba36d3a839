package api

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/alchemix-labs/yieldkit/internal/adapters/chain"
	"github.com/alchemix-labs/yieldkit/internal/core/domain"
	"github.com/alchemix-labs/yieldkit/pkg/contracts"
	"github.com/alchemix-labs/yieldkit/pkg/slippage"
	"github.com/alchemix-labs/yieldkit/pkg/version"
)

type healthResponse struct {
	Status    string   `json:"status"`
	Version   string   `json:"version"`
	Providers []string `json:"providers"`
}

type contractEntry struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Static  bool   `json:"static,omitempty"`
}

type contractsResponse struct {
	ChainID   uint64          `json:"chain_id"`
	Chain     string          `json:"chain"`
	Contracts []contractEntry `json:"contracts"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   version.Version(),
		Providers: s.rates.Providers(),
	})
}

func (s *Server) listRoutes(c *gin.Context) {
	c.JSON(http.StatusOK, s.Routes())
}

func (s *Server) getRates(c *gin.Context) {
	snapshot, err := s.rates.Aggregate(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) getRate(c *gin.Context) {
	quote, err := s.rates.Rate(c.Request.Context(), c.Param("provider"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !quote.OK {
		_ = c.Error(&domain.FetchError{Provider: quote.Provider, Kind: domain.FetchErrorKind(quote.ErrorKind), Err: fmt.Errorf("%s", quote.Error)})
		return
	}
	c.JSON(http.StatusOK, quote)
}

// getMinOut computes the minimum output for ?amount=&slippageBps=. An absent
// amount is the undefined amount and yields the sentinel.
func (s *Server) getMinOut(c *gin.Context) {
	rawBps, ok := c.GetQuery("slippageBps")
	if !ok {
		_ = c.Error(fmt.Errorf("%w: slippageBps is required", errInvalidInput))
		return
	}
	bps, err := slippage.ParseBps(rawBps)
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: %w", errInvalidInput, err))
		return
	}
	amount, err := slippage.ParseAmount(c.Query("amount"))
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: %w", errInvalidInput, err))
		return
	}

	out, err := slippage.MinOut(amount, bps)
	if err != nil {
		_ = c.Error(err)
		return
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
	c.JSON(http.StatusOK, result)
}

func (s *Server) getContracts(c *gin.Context) {
	id, err := contracts.ParseChainID(c.Param("chainId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	book, err := contracts.ForChain(id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := contractsResponse{ChainID: uint64(id), Chain: id.String()}
	for name, addr := range book {
		resp.Contracts = append(resp.Contracts, contractEntry{
			Name:    string(name),
			Address: addr.Hex(),
			Static:  contracts.IsStaticToken(name),
		})
	}
	sort.Slice(resp.Contracts, func(i, j int) bool {
		return resp.Contracts[i].Name < resp.Contracts[j].Name
	})
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getConversion(c *gin.Context) {
	id, err := contracts.ParseChainID(c.Param("chainId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	token := contracts.Contract(c.Param("token"))
	if !contracts.IsStaticToken(token) {
		_ = c.Error(fmt.Errorf("%w: %s has no static conversion", domain.ErrUnknownContract, token))
		return
	}
	address, err := contracts.Lookup(token, id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	direction := domain.ConversionDirection(c.DefaultQuery("direction", string(domain.ToDynamic)))
	if direction != domain.ToDynamic && direction != domain.ToStatic {
		_ = c.Error(fmt.Errorf("%w: direction must be %s or %s", errInvalidInput, domain.ToDynamic, domain.ToStatic))
		return
	}
	amount, err := slippage.ParseAmount(c.Query("amount"))
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: %w", errInvalidInput, err))
		return
	}
	if amount.IsNil() {
		_ = c.Error(fmt.Errorf("%w: amount is required", errInvalidInput))
		return
	}

	if s.converters == nil {
		_ = c.Error(fmt.Errorf("%w: no RPC configured", domain.ErrUnsupportedChain))
		return
	}
	conv, release, err := s.converters.Converter(c.Request.Context(), uint64(id), address)
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: %w", errUpstream, err))
		return
	}
	defer release()

	out, err := chain.Convert(c.Request.Context(), conv, direction, amount.BigInt())
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: %w", errUpstream, err))
		return
	}

	c.JSON(http.StatusOK, domain.ConversionResult{
		ChainID:   uint64(id),
		Token:     string(token),
		Address:   address.Hex(),
		Direction: direction,
		AmountIn:  amount.String(),
		AmountOut: out.String(),
	})
}

func (s *Server) flushCache(c *gin.Context) {
	if err := s.rates.FlushCache(c.Request.Context()); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flushed": true, "by": c.GetString(keyAdminSubject)})
}
