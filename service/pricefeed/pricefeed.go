package pricefeed

import (
	"math/big"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/domain"
)

// Pricefeed reads chainlink aggregator answers.
type Pricefeed interface {
	GetLatestAnswer(c ctx.Ctx, chainId domain.ChainId, feedAddress domain.Address) (*big.Int, error)
}
