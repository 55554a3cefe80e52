package pricefeed

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bidhaus/goapi/base/abi"
	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/base/log"
	"github.com/bidhaus/goapi/domain"
	"github.com/bidhaus/goapi/service/chain"
)

type impl struct {
	chainClient chain.Client
}

// New creates an uncached pricefeed reader. Answers back bid ordering
// and reserve checks, so every read goes to the aggregator.
func New(chainClient chain.Client) Pricefeed {
	return &impl{
		chainClient: chainClient,
	}
}

func (im *impl) GetLatestAnswer(c ctx.Ctx, chainId domain.ChainId, address domain.Address) (*big.Int, error) {
	feedAddr := common.HexToAddress(string(address))

	res, err := im.chainClient.Call(c, int32(chainId), feedAddr, nil, abi.ChainlinkFeedABI, "latestAnswer")
	if err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"chainId": chainId,
			"address": address,
		}).Error("chainClient.Call failed")
		return nil, err
	}

	return res[0].(*big.Int), nil
}
