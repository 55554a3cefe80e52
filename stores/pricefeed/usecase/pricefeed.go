package usecase

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/base/log"
	"github.com/bidhaus/goapi/domain"
	"github.com/bidhaus/goapi/domain/auction"
	"github.com/bidhaus/goapi/service/pricefeed"
)

const nativeDecimals = 18

type impl struct {
	pricefeed pricefeed.Pricefeed
	paytoken  domain.PayTokenRepo
}

// New creates a price normalizer that values erc20 amounts in the
// chain's native currency through each token's chainlink feed.
func New(
	pricefeed pricefeed.Pricefeed,
	paytoken domain.PayTokenRepo,
) auction.PriceNormalizer {
	return &impl{pricefeed: pricefeed, paytoken: paytoken}
}

func (im *impl) ToNative(c ctx.Ctx, chainId domain.ChainId, payToken domain.Address, amount *big.Int) (*big.Int, error) {
	if payToken.IsEmpty() {
		return new(big.Int).Set(amount), nil
	}

	paytoken, err := im.paytoken.FindOne(c, chainId, payToken)
	if err != nil {
		c.WithFields(log.Fields{
			"err":          err,
			"chainId":      chainId,
			"tokenAddress": payToken,
		}).Error("paytoken.FindOne failed")
		return nil, err
	}

	if len(paytoken.ChainlinkProxyAddress) == 0 {
		return nil, domain.ErrNoPriceFeed
	}

	answer, err := im.pricefeed.GetLatestAnswer(c, chainId, paytoken.ChainlinkProxyAddress)
	if err != nil {
		c.WithFields(log.Fields{
			"err":          err,
			"chainId":      chainId,
			"tokenAddress": payToken,
		}).Error("pricefeed.GetLatestAnswer failed")
		return nil, err
	}
	if answer.Sign() <= 0 {
		c.WithFields(log.Fields{
			"chainId":      chainId,
			"tokenAddress": payToken,
			"answer":       answer.String(),
		}).Error("non-positive feed answer")
		return nil, domain.ErrNoPriceFeed
	}

	// amount is in the token's smallest unit, the answer prices one
	// whole token in native currency at the feed's decimals.
	tokens := decimal.NewFromBigInt(amount, -paytoken.TokenDecimals)
	rate := decimal.NewFromBigInt(answer, -paytoken.Decimals)
	native := tokens.Mul(rate).Shift(nativeDecimals)

	return native.BigInt(), nil
}
