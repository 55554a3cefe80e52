package chain

import (
	"crypto/ecdsa"
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	bCtx "github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/base/log"
)

var ErrTxReverted = errors.New("transaction reverted")

type SenderCfg struct {
	RpcUrls map[int32]string
	// PrivateKey is the hex-encoded key of the operator account that
	// signs custody transfers.
	PrivateKey string
}

// Sender signs and submits state-changing contract calls with the
// operator key and waits for them to be mined.
type Sender interface {
	Transact(ctx bCtx.Ctx, chainId int32, addr common.Address, _abi abi.ABI, method string, params ...interface{}) (common.Hash, error)
	// Operator returns the address transactions are signed with.
	Operator() common.Address
}

type senderImpl struct {
	clients map[int32]*ethclient.Client
	key     *ecdsa.PrivateKey
}

func NewSender(ctx bCtx.Ctx, cfg *SenderCfg) (Sender, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		ctx.WithField("err", err).Error("crypto.HexToECDSA failed")
		return nil, err
	}

	clients := make(map[int32]*ethclient.Client)
	for chainId, url := range cfg.RpcUrls {
		client, err := ethclient.DialContext(ctx, url)
		if err != nil {
			ctx.WithFields(log.Fields{
				"err":     err,
				"chainId": chainId,
				"url":     url,
			}).Warn("failed to dial rpc")
			continue
		}
		clients[chainId] = client
	}
	return &senderImpl{
		clients: clients,
		key:     key,
	}, nil
}

func (s *senderImpl) Operator() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

func (s *senderImpl) Transact(ctx bCtx.Ctx, chainId int32, addr common.Address, _abi abi.ABI, method string, params ...interface{}) (common.Hash, error) {
	client, ok := s.clients[chainId]
	if !ok {
		return common.Hash{}, ErrUnsupportedChain
	}

	auth, err := bind.NewKeyedTransactorWithChainID(s.key, big.NewInt(int64(chainId)))
	if err != nil {
		ctx.WithField("err", err).Error("bind.NewKeyedTransactorWithChainID failed")
		return common.Hash{}, err
	}
	auth.Context = ctx

	contract := bind.NewBoundContract(addr, _abi, client, client, client)
	tx, err := contract.Transact(auth, method, params...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"method": method,
			"err":    err,
		}).Error("contract.Transact failed")
		return common.Hash{}, err
	}

	receipt, err := bind.WaitMined(ctx, client, tx)
	if err != nil {
		ctx.WithFields(log.Fields{
			"txHash": tx.Hash().Hex(),
			"err":    err,
		}).Error("bind.WaitMined failed")
		return common.Hash{}, err
	}
	if receipt.Status == 0 {
		ctx.WithField("txHash", tx.Hash().Hex()).Error("transaction reverted")
		return tx.Hash(), ErrTxReverted
	}
	return tx.Hash(), nil
}
