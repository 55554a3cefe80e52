package usecase

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/base/ethereum"
	"github.com/bidhaus/goapi/base/log"
	"github.com/bidhaus/goapi/base/ptr"
	"github.com/bidhaus/goapi/domain"
	"github.com/bidhaus/goapi/domain/account"
)

const (
	// invalidNonce marks a burnt nonce, a signature can only be used once
	invalidNonce = int64(-1)
	nonceRange   = 1000000000
)

type AccountUsecaseCfg struct {
	AccountRepo  account.Repo
	SignatureMsg string
}

type impl struct {
	repo         account.Repo
	signatureMsg string
}

func New(cfg *AccountUsecaseCfg) account.Usecase {
	return &impl{
		repo:         cfg.AccountRepo,
		signatureMsg: cfg.SignatureMsg,
	}
}

func (im *impl) Get(c ctx.Ctx, address domain.Address) (*account.Account, error) {
	return im.repo.Get(c, address)
}

func (im *impl) Create(c ctx.Ctx, address domain.Address) (*account.Account, error) {
	now := time.Now()
	a := &account.Account{
		Address:   address.ToLower(),
		Nonce:     invalidNonce,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := im.repo.Insert(c, a); err != nil {
		c.WithFields(log.Fields{
			"address": address,
			"err":     err,
		}).Error("repo.Insert failed")
		return nil, err
	}
	return a, nil
}

func (im *impl) GetOrCreate(c ctx.Ctx, address domain.Address) (*account.Account, error) {
	a, err := im.repo.Get(c, address)
	if err == nil {
		return a, nil
	}
	if err != domain.ErrNotFound {
		return nil, err
	}
	return im.Create(c, address)
}

func (im *impl) GenerateNonce(c ctx.Ctx, address domain.Address) (int64, error) {
	if _, err := im.GetOrCreate(c, address); err != nil {
		return 0, err
	}

	nonce := im.genNonce()
	now := time.Now()
	if err := im.repo.Update(c, address, account.Patchable{
		Nonce:     &nonce,
		UpdatedAt: &now,
	}); err != nil {
		c.WithField("err", err).Error("repo.Update failed")
		return 0, err
	}
	return nonce, nil
}

func (im *impl) makeMessageWithNonce(nonce string) []byte {
	return []byte(fmt.Sprintf(im.signatureMsg, nonce))
}

func (im *impl) ValidateSignature(c ctx.Ctx, address domain.Address, signature string) error {
	c = ctx.WithValues(c, map[string]interface{}{
		"address":   address,
		"signature": signature,
	})

	a, err := im.repo.Get(c, address)
	if err != nil {
		c.WithField("err", err).Error("get address failed")
		return err
	}
	if a.Nonce == invalidNonce {
		return account.ErrInvalidNonce
	}

	// burn the nonce whether or not the signature checks out
	now := time.Now()
	defer im.repo.Update(c, address, account.Patchable{
		Nonce:     ptr.Int64(invalidNonce),
		UpdatedAt: &now,
	})

	msg := im.makeMessageWithNonce(strconv.Itoa(int(a.Nonce)))
	if isValid, err := ethereum.ValidateMsgSignature(msg, signature, string(address)); err != nil {
		c.WithField("err", err).Error("ValidateMsgSignature failed")
		return err
	} else if !isValid {
		return account.ErrInvalidSignature
	}
	return nil
}

func (im *impl) UpdateProfile(c ctx.Ctx, address domain.Address, alias, email *string) (*account.Account, error) {
	now := time.Now()
	if err := im.repo.Update(c, address, account.Patchable{
		Alias:     alias,
		Email:     email,
		UpdatedAt: &now,
	}); err != nil {
		c.WithFields(log.Fields{
			"address": address,
			"err":     err,
		}).Error("repo.Update failed")
		return nil, err
	}
	return im.repo.Get(c, address)
}

func (im *impl) genNonce() int64 {
	return int64(rand.Int31n(nonceRange))
}
