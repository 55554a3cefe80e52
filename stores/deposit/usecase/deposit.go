package usecase

import (
	"math/big"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/base/log"
	"github.com/bidhaus/goapi/domain"
	"github.com/bidhaus/goapi/domain/auction"
	"github.com/bidhaus/goapi/domain/deposit"
)

type DepositUseCaseCfg struct {
	DepositRepo deposit.Repo
}

type impl struct {
	depositRepo deposit.Repo
}

// New creates the escrow ledger. It serves both the public balance
// endpoints and, as auction.PaymentService, the fund legs of bidding
// and settlement.
func New(cfg *DepositUseCaseCfg) *impl {
	return &impl{
		depositRepo: cfg.DepositRepo,
	}
}

var _ deposit.UseCase = (*impl)(nil)
var _ auction.PaymentService = (*impl)(nil)

func (im *impl) Deposit(c ctx.Ctx, owner, payToken domain.Address, amount string) (*deposit.Account, error) {
	v, err := deposit.ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	id := deposit.AccountId{Owner: owner.ToLower(), PayToken: payToken.ToLower()}
	if err := im.depositRepo.Add(c, id, v); err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"owner": owner,
		}).Error("depositRepo.Add failed")
		return nil, err
	}
	return im.depositRepo.Get(c, id)
}

func (im *impl) Withdraw(c ctx.Ctx, owner, payToken domain.Address, amount string) (*deposit.Account, error) {
	v, err := deposit.ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	id := deposit.AccountId{Owner: owner.ToLower(), PayToken: payToken.ToLower()}
	if err := im.depositRepo.Deduct(c, id, v); err != nil {
		if err != domain.ErrInsufficientFunds {
			c.WithFields(log.Fields{
				"err":   err,
				"owner": owner,
			}).Error("depositRepo.Deduct failed")
		}
		return nil, err
	}
	return im.depositRepo.Get(c, id)
}

func (im *impl) GetBalances(c ctx.Ctx, owner domain.Address) ([]*deposit.Account, error) {
	return im.depositRepo.FindAll(c, owner)
}

// Collect moves funds from the payer's free balance into the auction's
// escrow bucket. The deduct runs first so a failing payer cannot mint
// escrow balance.
func (im *impl) Collect(c ctx.Ctx, auctionId string, payer domain.Address, amount auction.DenominatedAmount) error {
	v, err := amount.AmountBig()
	if err != nil {
		return err
	}
	free := deposit.AccountId{Owner: payer.ToLower(), PayToken: amount.PayToken.ToLower()}
	escrow := deposit.AccountId{Owner: payer.ToLower(), PayToken: amount.PayToken.ToLower(), AuctionId: auctionId}

	if err := im.depositRepo.Deduct(c, free, v); err != nil {
		if err != domain.ErrInsufficientFunds {
			c.WithFields(log.Fields{
				"err":       err,
				"auctionId": auctionId,
				"payer":     payer,
			}).Error("depositRepo.Deduct failed")
		}
		return err
	}
	if err := im.depositRepo.Add(c, escrow, v); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": auctionId,
			"payer":     payer,
		}).Error("depositRepo.Add failed")
		// put the funds back so they are not stranded
		if rerr := im.depositRepo.Add(c, free, v); rerr != nil {
			c.WithFields(log.Fields{
				"err":       rerr,
				"auctionId": auctionId,
				"payer":     payer,
			}).Error("restore free balance failed")
		}
		return err
	}
	return nil
}

// Disburse pays amount out of the auction's escrow to payee's free
// balance. The escrow bucket is keyed by the original payer, so the
// caller passes the payee while the escrow owner comes from the legs
// recorded at settlement.
func (im *impl) Disburse(c ctx.Ctx, auctionId string, payee domain.Address, amount auction.DenominatedAmount) error {
	v, err := amount.AmountBig()
	if err != nil {
		return err
	}
	free := deposit.AccountId{Owner: payee.ToLower(), PayToken: amount.PayToken.ToLower()}

	deducted, err := im.deductEscrow(c, auctionId, amount.PayToken, v)
	if err != nil {
		return err
	}
	if err := im.depositRepo.Add(c, free, v); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": auctionId,
			"payee":     payee,
		}).Error("depositRepo.Add failed")
		im.restoreEscrow(c, auctionId, deducted)
		return err
	}
	return nil
}

type escrowDeduction struct {
	id     deposit.AccountId
	amount *big.Int
}

// deductEscrow takes v out of the auction's escrow buckets, which are
// keyed per payer. The plan is computed against all buckets first so an
// insufficient total touches nothing; a deduct failing midway puts the
// earlier deductions back.
func (im *impl) deductEscrow(c ctx.Ctx, auctionId string, payToken domain.Address, v *big.Int) ([]escrowDeduction, error) {
	accounts, err := im.depositRepo.FindAllByAuction(c, auctionId, payToken)
	if err != nil {
		return nil, err
	}

	plan := []escrowDeduction{}
	remaining := new(big.Int).Set(v)
	for _, acc := range accounts {
		if remaining.Sign() == 0 {
			break
		}
		bal, err := deposit.ParseAmount(acc.Balance)
		if err != nil {
			return nil, err
		}
		take := bal
		if bal.Cmp(remaining) > 0 {
			take = remaining
		}
		plan = append(plan, escrowDeduction{id: acc.ToId(), amount: take})
		remaining = new(big.Int).Sub(remaining, take)
	}
	if remaining.Sign() != 0 {
		return nil, domain.ErrInsufficientFunds
	}

	for i, d := range plan {
		if err := im.depositRepo.Deduct(c, d.id, d.amount); err != nil {
			c.WithFields(log.Fields{
				"err":       err,
				"auctionId": auctionId,
				"owner":     d.id.Owner,
			}).Error("depositRepo.Deduct failed")
			im.restoreEscrow(c, auctionId, plan[:i])
			return nil, err
		}
	}
	return plan, nil
}

func (im *impl) restoreEscrow(c ctx.Ctx, auctionId string, deducted []escrowDeduction) {
	for _, d := range deducted {
		if err := im.depositRepo.Add(c, d.id, d.amount); err != nil {
			c.WithFields(log.Fields{
				"err":       err,
				"auctionId": auctionId,
				"owner":     d.id.Owner,
			}).Error("restore escrow balance failed")
		}
	}
}
