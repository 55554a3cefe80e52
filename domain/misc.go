package domain

import (
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/xerrors"
)

var (
	Big0     = big.NewInt(0)
	Big1     = big.NewInt(1)
	Big10    = big.NewInt(10)
	Big10000 = big.NewInt(10000)
)

type SortDir int8

const (
	SortDirAsc  = 1
	SortDirDesc = -1
)

type ChainId int32

type Address string

const EmptyAddress = Address("0x0000000000000000000000000000000000000000")

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerPtr() *Address {
	res := a.ToLower()
	return &res
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

func (a Address) IsEmpty() bool {
	return len(a) == 0 || a.Equals(EmptyAddress)
}

func (a Address) Equals(b Address) bool {
	return a.ToLowerStr() == b.ToLowerStr()
}

type TokenId string

func (i TokenId) String() string {
	return string(i)
}

func (i TokenId) ToHexString() (string, error) {
	id, ok := new(big.Int).SetString(i.String(), 10)
	if !ok {
		return "", xerrors.Errorf("invalid id %s", i)
	}
	return fmt.Sprintf("%064x", id), nil
}

type TxHash string

type Table string

const (
	TableAccounts       Table = "accounts"
	TableAuctions       Table = "auctions"
	TableAuctionEvents  Table = "auction_events"
	TableCounters       Table = "counters"
	TableDeposits       Table = "deposits"
	TableFeeSettings    Table = "fee_settings"
	TablePayTokens      Table = "pay_tokens"
)
