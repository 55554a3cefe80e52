package repository

import (
	"math/big"
	"time"

	"github.com/bidhaus/goapi/base/backoff"
	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/base/log"
	"github.com/bidhaus/goapi/domain"
	"github.com/bidhaus/goapi/domain/deposit"
	"github.com/bidhaus/goapi/service/query"
)

const (
	casRetries      = 5
	casBackoffStart = 10 * time.Millisecond
	casBackoffLimit = 200 * time.Millisecond
)

type impl struct {
	q query.Mongo
}

func New(q query.Mongo) deposit.Repo {
	return &impl{q}
}

func (im *impl) Get(c ctx.Ctx, id deposit.AccountId) (*deposit.Account, error) {
	res := &deposit.Account{}
	id.Owner = id.Owner.ToLower()
	id.PayToken = id.PayToken.ToLower()
	if err := im.q.FindOne(c, domain.TableDeposits, id, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("q.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) FindAll(c ctx.Ctx, owner domain.Address) ([]*deposit.Account, error) {
	res := []*deposit.Account{}
	selector := map[string]interface{}{"owner": owner.ToLower()}
	if err := im.q.Search(c, domain.TableDeposits, 0, 0, "", selector, &res); err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"owner": owner,
		}).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) FindAllByAuction(c ctx.Ctx, auctionId string, payToken domain.Address) ([]*deposit.Account, error) {
	res := []*deposit.Account{}
	selector := map[string]interface{}{
		"auctionId": auctionId,
		"payToken":  payToken.ToLower(),
	}
	if err := im.q.Search(c, domain.TableDeposits, 0, 0, "", selector, &res); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": auctionId,
		}).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

// Add credits the account. Balances are stored as fixed-width decimal
// strings, so the update goes through a compare-and-swap on the old
// balance instead of $inc, retried with backoff on contention.
func (im *impl) Add(c ctx.Ctx, id deposit.AccountId, amount *big.Int) error {
	bo := backoff.NewExponential(casBackoffStart, casBackoffLimit)
	for i := 0; i < casRetries; i++ {
		cur, err := im.Get(c, id)
		if err == domain.ErrNotFound {
			balance, err := deposit.FormatAmount(amount)
			if err != nil {
				return err
			}
			acc := &deposit.Account{
				Owner:     id.Owner.ToLower(),
				PayToken:  id.PayToken.ToLower(),
				AuctionId: id.AuctionId,
				Balance:   balance,
				UpdatedAt: time.Now(),
			}
			if err := im.q.Insert(c, domain.TableDeposits, acc); err == query.ErrDuplicateKey {
				// lost the insert race, retry as an update
				continue
			} else if err != nil {
				c.WithFields(log.Fields{
					"err": err,
					"id":  id,
				}).Error("q.Insert failed")
				return err
			}
			return nil
		} else if err != nil {
			return err
		}

		if err := im.swapBalance(c, id, cur.Balance, amount, false); err == query.ErrNotFound {
			if err := bo.Backoff(c); err != nil {
				return err
			}
			continue
		} else if err != nil {
			return err
		}
		return nil
	}
	return domain.ErrConflict
}

// Deduct debits the account, failing when the balance cannot cover the
// amount.
func (im *impl) Deduct(c ctx.Ctx, id deposit.AccountId, amount *big.Int) error {
	bo := backoff.NewExponential(casBackoffStart, casBackoffLimit)
	for i := 0; i < casRetries; i++ {
		cur, err := im.Get(c, id)
		if err == domain.ErrNotFound {
			return domain.ErrInsufficientFunds
		} else if err != nil {
			return err
		}

		if err := im.swapBalance(c, id, cur.Balance, amount, true); err == query.ErrNotFound {
			if err := bo.Backoff(c); err != nil {
				return err
			}
			continue
		} else if err != nil {
			return err
		}
		return nil
	}
	return domain.ErrConflict
}

func (im *impl) swapBalance(c ctx.Ctx, id deposit.AccountId, oldBalance string, amount *big.Int, deduct bool) error {
	old, err := deposit.ParseAmount(oldBalance)
	if err != nil {
		return err
	}

	var next *big.Int
	if deduct {
		if old.Cmp(amount) < 0 {
			return domain.ErrInsufficientFunds
		}
		next = new(big.Int).Sub(old, amount)
	} else {
		next = new(big.Int).Add(old, amount)
	}
	nextStr, err := deposit.FormatAmount(next)
	if err != nil {
		return err
	}

	selector := map[string]interface{}{
		"owner":     id.Owner.ToLower(),
		"payToken":  id.PayToken.ToLower(),
		"auctionId": id.AuctionId,
		"balance":   oldBalance,
	}
	update := map[string]interface{}{
		"balance":   nextStr,
		"updatedAt": time.Now(),
	}
	if err := im.q.Patch(c, domain.TableDeposits, selector, update); err != nil {
		if err != query.ErrNotFound {
			c.WithFields(log.Fields{
				"err": err,
				"id":  id,
			}).Error("q.Patch failed")
		}
		return err
	}
	return nil
}
