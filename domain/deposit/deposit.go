package deposit

import (
	"fmt"
	"math/big"
	"time"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/domain"
)

// AmountWidth is the digit count balances are zero-padded to, so that
// lexicographic comparison on the stored strings matches numeric
// comparison. 32 digits covers any uint256 amount in practice.
const AmountWidth = 32

// FormatAmount renders v as a zero-padded decimal string.
func FormatAmount(v *big.Int) (string, error) {
	if v == nil || v.Sign() < 0 {
		return "", domain.ErrInvalidNumberFormat
	}
	s := v.String()
	if len(s) > AmountWidth {
		return "", domain.ErrInvalidNumberFormat
	}
	return fmt.Sprintf("%0*s", AmountWidth, s), nil
}

// ParseAmount parses a stored balance back into a big int.
func ParseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, domain.ErrInvalidNumberFormat
	}
	return v, nil
}

// Account is one balance bucket: funds an owner holds in a given
// currency, scoped either to their free balance (empty AuctionId) or to
// a specific auction's escrow.
type Account struct {
	Owner     domain.Address `json:"owner" bson:"owner"`
	PayToken  domain.Address `json:"payToken" bson:"payToken"`
	AuctionId string         `json:"auctionId" bson:"auctionId"`
	// Balance is a zero-padded decimal string, see FormatAmount.
	Balance   string    `json:"balance" bson:"balance"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (a *Account) ToId() AccountId {
	return AccountId{
		Owner:     a.Owner,
		PayToken:  a.PayToken,
		AuctionId: a.AuctionId,
	}
}

type AccountId struct {
	Owner     domain.Address `json:"owner" bson:"owner"`
	PayToken  domain.Address `json:"payToken" bson:"payToken"`
	AuctionId string         `json:"auctionId" bson:"auctionId"`
}

type Repo interface {
	Get(ctx ctx.Ctx, id AccountId) (*Account, error)
	FindAll(ctx ctx.Ctx, owner domain.Address) ([]*Account, error)
	// FindAllByAuction lists the escrow buckets held for an auction in
	// the given currency.
	FindAllByAuction(ctx ctx.Ctx, auctionId string, payToken domain.Address) ([]*Account, error)
	// Add credits amount to the account, creating it when absent.
	Add(ctx ctx.Ctx, id AccountId, amount *big.Int) error
	// Deduct debits amount from the account only if its balance covers
	// it, returning domain.ErrInsufficientFunds otherwise.
	Deduct(ctx ctx.Ctx, id AccountId, amount *big.Int) error
}

// UseCase moves funds between free balances and auction escrows. It is
// the ledger behind auction bidding and settlement.
type UseCase interface {
	// Deposit credits owner's free balance.
	Deposit(ctx ctx.Ctx, owner, payToken domain.Address, amount string) (*Account, error)
	// Withdraw debits owner's free balance.
	Withdraw(ctx ctx.Ctx, owner, payToken domain.Address, amount string) (*Account, error)
	GetBalances(ctx ctx.Ctx, owner domain.Address) ([]*Account, error)
}
