package domain

import (
	"github.com/bidhaus/goapi/base/ctx"
)

type PayTokenId struct {
	ChainId ChainId `bson:"chainId"`
	Address Address `bson:"address"`
}

// PayToken describes an erc20 token accepted for bidding, together with
// the chainlink feed used to price it in native units
type PayToken struct {
	Name                  string  `json:"name" bson:"name"`
	Symbol                string  `json:"symbol" bson:"symbol"`
	Decimals              int32   `json:"decimals" bson:"decimals"` // decimals for chainlink pricefeed
	TokenDecimals         int32   `json:"tokenDecimals" bson:"tokenDecimals"`
	ChainId               ChainId `json:"chainId" bson:"chainId"`
	Address               Address `json:"address" bson:"address"`
	ChainlinkProxyAddress Address `json:"chainlinkProxyAddress" bson:"chainlinkProxyAddress"`
}

func (t *PayToken) ToId() *PayTokenId {
	return &PayTokenId{
		ChainId: t.ChainId,
		Address: t.Address,
	}
}

type PayTokenRepo interface {
	FindOne(ctx.Ctx, ChainId, Address) (*PayToken, error)
	FindAll(ctx.Ctx, ChainId) ([]*PayToken, error)
	Upsert(ctx.Ctx, *PayToken) error
}
