package contract

import (
	"math/big"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	baseabi "github.com/bidhaus/goapi/base/abi"
	bCtx "github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/base/log"
	"github.com/bidhaus/goapi/domain"
	"github.com/bidhaus/goapi/domain/auction"
	"github.com/bidhaus/goapi/service/chain"
)

// Erc721 reads token state and, with a sender, performs custody
// transfers. It implements auction.AssetCustody.
type Erc721 struct {
	chainService      chain.Client
	sender            chain.Sender
	abi               ethabi.ABI
	erc721InterfaceId [4]byte
}

func NewErc721(chainService chain.Client, sender chain.Sender) *Erc721 {
	var interfaceId [4]byte
	copy(interfaceId[:], common.Hex2Bytes("80ac58cd"))
	return &Erc721{
		abi:               baseabi.ERC721TokenABI,
		chainService:      chainService,
		sender:            sender,
		erc721InterfaceId: interfaceId,
	}
}

func (e *Erc721) Supports721Interface(ctx bCtx.Ctx, chainId int32, addr string) (bool, error) {
	method := "supportsInterface"
	unpacked, err := e.chainService.Call(ctx, chainId, common.HexToAddress(addr), nil, e.abi, method, e.erc721InterfaceId)
	if err != nil {
		return false, err
	}
	return unpacked[0].(bool), nil
}

func (e *Erc721) OwnerOf(ctx bCtx.Ctx, asset auction.AssetRef) (domain.Address, error) {
	method := "ownerOf"
	tokenId, err := parseTokenId(asset.TokenId)
	if err != nil {
		return "", err
	}
	unpacked, err := e.chainService.Call(ctx, int32(asset.ChainId), common.HexToAddress(string(asset.Collection)), nil, e.abi, method, tokenId)
	if err != nil {
		return "", err
	}
	return domain.Address(unpacked[0].(common.Address).String()).ToLower(), nil
}

func (e *Erc721) IsApproved(ctx bCtx.Ctx, asset auction.AssetRef, owner, operator domain.Address) (bool, error) {
	tokenId, err := parseTokenId(asset.TokenId)
	if err != nil {
		return false, err
	}
	collection := common.HexToAddress(string(asset.Collection))

	unpacked, err := e.chainService.Call(ctx, int32(asset.ChainId), collection, nil, e.abi, "getApproved", tokenId)
	if err != nil {
		return false, err
	}
	if unpacked[0].(common.Address) == common.HexToAddress(string(operator)) {
		return true, nil
	}

	unpacked, err = e.chainService.Call(ctx, int32(asset.ChainId), collection, nil, e.abi, "isApprovedForAll",
		common.HexToAddress(string(owner)), common.HexToAddress(string(operator)))
	if err != nil {
		return false, err
	}
	return unpacked[0].(bool), nil
}

func (e *Erc721) Transfer(ctx bCtx.Ctx, asset auction.AssetRef, from, to domain.Address) (domain.TxHash, error) {
	tokenId, err := parseTokenId(asset.TokenId)
	if err != nil {
		return "", err
	}
	txHash, err := e.sender.Transact(ctx, int32(asset.ChainId), common.HexToAddress(string(asset.Collection)), e.abi, "safeTransferFrom",
		common.HexToAddress(string(from)), common.HexToAddress(string(to)), tokenId)
	if err != nil {
		ctx.WithFields(log.Fields{
			"asset": asset,
			"from":  from,
			"to":    to,
			"err":   err,
		}).Error("safeTransferFrom failed")
		return "", err
	}
	return domain.TxHash(txHash.Hex()), nil
}

func parseTokenId(id domain.TokenId) (*big.Int, error) {
	v, ok := new(big.Int).SetString(id.String(), 10)
	if !ok {
		return nil, domain.ErrInvalidNumberFormat
	}
	return v, nil
}
