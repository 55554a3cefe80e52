package usecase

import (
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/base/log"
	"github.com/bidhaus/goapi/base/metrics"
	"github.com/bidhaus/goapi/domain"
	"github.com/bidhaus/goapi/domain/auction"
)

type AuctionUseCaseCfg struct {
	AuctionRepo     auction.Repo
	FeeSettingsRepo auction.FeeSettingsRepo
	EventRepo       auction.EventRepo
	Custody         auction.AssetCustody
	Normalizer      auction.PriceNormalizer
	Payments        auction.PaymentService
	// Operator is the custody account that holds listed assets in
	// escrow for the auction's lifetime.
	Operator domain.Address
	// DefaultFee is used for chains with no stored settings yet.
	DefaultFee auction.FeeSettings
}

type impl struct {
	auctionRepo     auction.Repo
	feeSettingsRepo auction.FeeSettingsRepo
	eventRepo       auction.EventRepo
	custody         auction.AssetCustody
	normalizer      auction.PriceNormalizer
	payments        auction.PaymentService
	operator        domain.Address
	defaultFee      auction.FeeSettings
	met             metrics.Service

	// muMu guards mus; each auction gets its own lock so transitions on
	// one auction serialize without blocking the others.
	muMu sync.Mutex
	mus  map[string]*sync.Mutex
}

func New(cfg *AuctionUseCaseCfg) auction.UseCase {
	return &impl{
		auctionRepo:     cfg.AuctionRepo,
		feeSettingsRepo: cfg.FeeSettingsRepo,
		eventRepo:       cfg.EventRepo,
		custody:         cfg.Custody,
		normalizer:      cfg.Normalizer,
		payments:        cfg.Payments,
		operator:        cfg.Operator,
		defaultFee:      cfg.DefaultFee,
		met:             metrics.New("auction"),
		mus:             map[string]*sync.Mutex{},
	}
}

func (im *impl) lock(id string) func() {
	im.muMu.Lock()
	mu, ok := im.mus[id]
	if !ok {
		mu = &sync.Mutex{}
		im.mus[id] = mu
	}
	im.muMu.Unlock()
	mu.Lock()
	return mu.Unlock
}

func (im *impl) feeSettings(c ctx.Ctx, chainId domain.ChainId) (auction.FeeSettings, error) {
	settings, err := im.feeSettingsRepo.Get(c, chainId)
	if err == domain.ErrNotFound {
		return im.defaultFee, nil
	} else if err != nil {
		return auction.FeeSettings{}, err
	}
	return *settings, nil
}

func (im *impl) emit(c ctx.Ctx, e *auction.Event) {
	e.Id = uuid.NewString()
	e.Time = time.Now()
	if err := im.eventRepo.Insert(c, e); err != nil {
		// events are a best-effort audit trail, the transition itself
		// already committed
		c.WithFields(log.Fields{
			"err":  err,
			"type": e.Type,
		}).Warn("eventRepo.Insert failed")
	}
}

func (im *impl) CreateAuction(c ctx.Ctx, payload auction.CreateAuctionPayload) (*auction.Auction, error) {
	defer im.met.BumpTime("time", "func", "createAuction").End()

	if payload.ChainId <= 0 {
		return nil, domain.ErrInvalidChainId
	}
	if payload.Duration <= 0 {
		return nil, domain.ErrInvalidDuration
	}
	if _, err := (auction.DenominatedAmount{Amount: payload.ReservePrice.Amount}).AmountBig(); err != nil {
		return nil, err
	}

	seller := payload.Seller.ToLower()
	asset := payload.Asset
	asset.ChainId = payload.ChainId
	asset.LowerCase()

	owner, err := im.custody.OwnerOf(c, asset)
	if err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"asset": asset,
		}).Error("custody.OwnerOf failed")
		return nil, err
	}
	if !owner.Equals(seller) {
		return nil, domain.ErrUnauthorizedAsset
	}
	if approved, err := im.custody.IsApproved(c, asset, seller, im.operator); err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"asset": asset,
		}).Error("custody.IsApproved failed")
		return nil, err
	} else if !approved {
		return nil, domain.ErrUnauthorizedAsset
	}

	if _, err := im.auctionRepo.FindOneByAsset(c, asset); err == nil {
		return nil, domain.ErrConflict
	} else if err != domain.ErrNotFound {
		return nil, err
	}

	fee, err := im.feeSettings(c, payload.ChainId)
	if err != nil {
		return nil, err
	}

	index, err := im.auctionRepo.NextIndex(c, payload.ChainId)
	if err != nil {
		return nil, err
	}

	// the asset moves into escrow up front, so settlement can never
	// fail on a revoked approval or a mid-auction sale
	if _, err := im.custody.Transfer(c, asset, seller, im.operator); err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"asset": asset,
		}).Error("custody.Transfer failed")
		return nil, domain.ErrTransferFailed
	}

	now := time.Now()
	a := &auction.Auction{
		Id:      uuid.NewString(),
		ChainId: payload.ChainId,
		Index:   index,
		Seller:  seller,
		Asset:   asset,
		ReservePrice: auction.DenominatedAmount{
			Amount:   payload.ReservePrice.Amount,
			PayToken: payload.ReservePrice.PayToken.ToLower(),
		},
		StartTime: now,
		EndTime:   now.Add(time.Duration(payload.Duration) * time.Second),
		State:     auction.StateActive,
		Fee:       fee,
		Refunds:   []auction.Refund{},
		Legs:      []auction.SettlementLeg{},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := im.auctionRepo.Insert(c, a); err != nil {
		// hand the asset back, the listing never came into being
		if _, terr := im.custody.Transfer(c, asset, im.operator, seller); terr != nil {
			c.WithFields(log.Fields{
				"err":   terr,
				"asset": asset,
			}).Error("return asset to seller failed")
		}
		return nil, err
	}

	im.emit(c, &auction.Event{
		Type:      auction.EventAuctionCreated,
		ChainId:   a.ChainId,
		AuctionId: a.Id,
		Actor:     seller,
		Amount:    a.ReservePrice,
	})
	return a, nil
}

func (im *impl) GetAuction(c ctx.Ctx, id string) (*auction.Auction, error) {
	return im.auctionRepo.FindOne(c, id)
}

func (im *impl) SearchAuctions(c ctx.Ctx, optFns ...auction.FindAllOptionsFunc) ([]*auction.Auction, int, error) {
	res, err := im.auctionRepo.FindAll(c, optFns...)
	if err != nil {
		return nil, 0, err
	}
	count, err := im.auctionRepo.Count(c, optFns...)
	if err != nil {
		return nil, 0, err
	}
	return res, count, nil
}

func (im *impl) GetAuctionsCount(c ctx.Ctx, chainId domain.ChainId) (int64, error) {
	count, err := im.auctionRepo.Count(c, auction.WithChainId(chainId))
	if err != nil {
		return 0, err
	}
	return int64(count), nil
}

func (im *impl) PlaceBid(c ctx.Ctx, id string, payload auction.PlaceBidPayload) (*auction.Auction, error) {
	defer im.met.BumpTime("time", "func", "placeBid").End()
	defer im.lock(id)()

	a, err := im.auctionRepo.FindOne(c, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if a.Closed(now) {
		return nil, domain.ErrAuctionClosed
	}

	bidder := payload.Bidder.ToLower()
	if bidder.Equals(a.Seller) {
		return nil, domain.ErrSelfBid
	}

	amount := auction.DenominatedAmount{
		Amount:   payload.Amount.Amount,
		PayToken: payload.Amount.PayToken.ToLower(),
	}
	v, err := amount.AmountBig()
	if err != nil {
		return nil, err
	}
	if v.Sign() == 0 {
		return nil, domain.ErrBidTooLow
	}

	normalized, err := im.normalizer.ToNative(c, a.ChainId, amount.PayToken, v)
	if err != nil {
		if err == domain.ErrNotFound || err == domain.ErrNoPriceFeed {
			return nil, domain.ErrInvalidCurrency
		}
		return nil, err
	}

	if a.HighestBid == nil {
		reserve, err := a.ReservePrice.AmountBig()
		if err != nil {
			return nil, err
		}
		normalizedReserve, err := im.normalizer.ToNative(c, a.ChainId, a.ReservePrice.PayToken, reserve)
		if err != nil {
			return nil, err
		}
		if normalized.Cmp(normalizedReserve) < 0 {
			return nil, domain.ErrBelowReserve
		}
	} else {
		prev, err := a.HighestBid.NormalizedBig()
		if err != nil {
			return nil, err
		}
		if normalized.Cmp(prev) <= 0 {
			return nil, domain.ErrBidTooLow
		}
	}

	// the displaced bid becomes a claim the old bidder pulls back out
	// through WithdrawRefund, it is never pushed
	refunds := a.Refunds
	if a.HighestBid != nil {
		refunds, err = auction.MergeRefund(refunds, auction.Refund{
			Bidder: a.HighestBid.Bidder,
			Amount: a.HighestBid.Amount,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := im.payments.Collect(c, a.Id, bidder, amount); err != nil {
		return nil, err
	}

	bid := &auction.Bid{
		Bidder:     bidder,
		Amount:     amount,
		Normalized: normalized.String(),
		PlacedAt:   now,
	}
	nextVersion := a.Version + 1
	patch := auction.Patchable{
		HighestBid: bid,
		Refunds:    &refunds,
		Version:    &nextVersion,
		UpdatedAt:  &now,
	}
	if err := im.auctionRepo.Patch(c, a.Id, a.Version, patch); err != nil {
		// release the collected funds, the bid was never recorded
		if rerr := im.payments.Disburse(c, a.Id, bidder, amount); rerr != nil {
			c.WithFields(log.Fields{
				"err":       rerr,
				"auctionId": a.Id,
				"bidder":    bidder,
			}).Error("release collected bid failed")
		}
		return nil, domain.ErrConflict
	}
	a.HighestBid = bid
	a.Refunds = refunds
	a.Version = nextVersion

	im.emit(c, &auction.Event{
		Type:      auction.EventBidPlaced,
		ChainId:   a.ChainId,
		AuctionId: a.Id,
		Actor:     bidder,
		Amount:    amount,
	})
	return a, nil
}

func (im *impl) WithdrawRefund(c ctx.Ctx, id string, bidder domain.Address) (*auction.Refund, error) {
	defer im.lock(id)()

	a, err := im.auctionRepo.FindOne(c, id)
	if err != nil {
		return nil, err
	}

	bidder = bidder.ToLower()
	refund := a.RefundFor(bidder)
	if refund == nil {
		return nil, domain.ErrNoRefundAvailable
	}
	claimed := *refund

	// zero the claim before paying out, dropping only the entry being
	// paid so claims in other denominations survive
	remaining := make([]auction.Refund, 0, len(a.Refunds))
	taken := false
	for _, r := range a.Refunds {
		if !taken && r.Bidder.Equals(bidder) && r.Amount.PayToken.Equals(claimed.Amount.PayToken) {
			taken = true
			continue
		}
		remaining = append(remaining, r)
	}
	now := time.Now()
	nextVersion := a.Version + 1
	patch := auction.Patchable{
		Refunds:   &remaining,
		Version:   &nextVersion,
		UpdatedAt: &now,
	}
	if err := im.auctionRepo.Patch(c, a.Id, a.Version, patch); err != nil {
		return nil, domain.ErrConflict
	}

	if err := im.payments.Disburse(c, a.Id, claimed.Bidder, claimed.Amount); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": a.Id,
			"bidder":    bidder,
		}).Error("payments.Disburse failed")
		// restore the claim
		restored := append(remaining, claimed)
		restoreVersion := nextVersion + 1
		if rerr := im.auctionRepo.Patch(c, a.Id, nextVersion, auction.Patchable{
			Refunds:   &restored,
			Version:   &restoreVersion,
			UpdatedAt: &now,
		}); rerr != nil {
			c.WithFields(log.Fields{
				"err":       rerr,
				"auctionId": a.Id,
				"bidder":    bidder,
			}).Error("restore refund failed")
		}
		return nil, domain.ErrTransferFailed
	}

	im.emit(c, &auction.Event{
		Type:      auction.EventBidRefunded,
		ChainId:   a.ChainId,
		AuctionId: a.Id,
		Actor:     bidder,
		Amount:    claimed.Amount,
	})
	return &claimed, nil
}

// EndAuction settles a closed auction. The transition to the ended
// state commits first with the payout legs recorded on the document, so
// a crash mid-settlement leaves legs the settler can finish later.
func (im *impl) EndAuction(c ctx.Ctx, id string) (*auction.Auction, error) {
	defer im.met.BumpTime("time", "func", "endAuction").End()
	defer im.lock(id)()

	a, err := im.auctionRepo.FindOne(c, id)
	if err != nil {
		return nil, err
	}
	if a.State != auction.StateActive {
		return nil, domain.ErrAuctionClosed
	}
	now := time.Now()
	if now.Before(a.EndTime) {
		return nil, domain.ErrAuctionNotYetEndable
	}

	if a.HighestBid == nil {
		// no sale, the escrowed asset goes back to the seller
		legs := []auction.SettlementLeg{{
			Kind:  auction.LegKindAsset,
			Payee: a.Seller,
		}}
		nextVersion := a.Version + 1
		state := auction.StateEnded
		patch := auction.Patchable{
			State:     &state,
			Legs:      &legs,
			Version:   &nextVersion,
			UpdatedAt: &now,
		}
		if err := im.auctionRepo.Patch(c, a.Id, a.Version, patch); err != nil {
			return nil, domain.ErrConflict
		}
		a.State = state
		a.Legs = legs
		a.Version = nextVersion

		if err := im.disburseLegs(c, a); err != nil {
			return nil, err
		}

		im.emit(c, &auction.Event{
			Type:      auction.EventAuctionEnded,
			ChainId:   a.ChainId,
			AuctionId: a.Id,
			Actor:     a.Seller,
		})
		return a, nil
	}

	winner := a.HighestBid.Bidder
	amount, err := a.HighestBid.Amount.AmountBig()
	if err != nil {
		return nil, err
	}
	fee := a.Fee.CalculateFee(amount)
	proceeds := new(big.Int).Sub(amount, fee)

	legs := []auction.SettlementLeg{{
		Kind:  auction.LegKindAsset,
		Payee: winner,
	}}
	if fee.Sign() > 0 && !a.Fee.Recipient.IsEmpty() {
		legs = append(legs, auction.SettlementLeg{
			Kind:  auction.LegKindFee,
			Payee: a.Fee.Recipient,
			Amount: auction.DenominatedAmount{
				Amount:   fee.String(),
				PayToken: a.HighestBid.Amount.PayToken,
			},
		})
	} else {
		// no recipient configured, the fee share stays with the seller
		proceeds = amount
	}
	legs = append(legs, auction.SettlementLeg{
		Kind:  auction.LegKindProceeds,
		Payee: a.Seller,
		Amount: auction.DenominatedAmount{
			Amount:   proceeds.String(),
			PayToken: a.HighestBid.Amount.PayToken,
		},
	})

	state := auction.StateEnded
	nextVersion := a.Version + 1
	patch := auction.Patchable{
		State:     &state,
		Winner:    &winner,
		Legs:      &legs,
		Version:   &nextVersion,
		UpdatedAt: &now,
	}
	if err := im.auctionRepo.Patch(c, a.Id, a.Version, patch); err != nil {
		return nil, domain.ErrConflict
	}
	a.State = state
	a.Winner = winner
	a.Legs = legs
	a.Version = nextVersion

	if err := im.disburseLegs(c, a); err != nil {
		return nil, err
	}

	im.emit(c, &auction.Event{
		Type:      auction.EventAuctionEnded,
		ChainId:   a.ChainId,
		AuctionId: a.Id,
		Actor:     winner,
		Amount:    a.HighestBid.Amount,
	})

	// the sale is committed either way, but a winner who paid and holds
	// no asset is worth surfacing; the leg stays pending for retries
	for _, leg := range a.Legs {
		if leg.Kind == auction.LegKindAsset && !leg.Done {
			return a, domain.ErrTransferFailed
		}
	}
	return a, nil
}

// disburseLegs executes the recorded settlement legs, marking each one
// done as it lands. Failed legs stay pending for the settler.
func (im *impl) disburseLegs(c ctx.Ctx, a *auction.Auction) error {
	legs := make([]auction.SettlementLeg, len(a.Legs))
	copy(legs, a.Legs)

	changed := false
	for i := range legs {
		if legs[i].Done {
			continue
		}
		var err error
		if legs[i].Kind == auction.LegKindAsset {
			// the token sits with the operator since listing
			_, err = im.custody.Transfer(c, a.Asset, im.operator, legs[i].Payee)
		} else {
			err = im.payments.Disburse(c, a.Id, legs[i].Payee, legs[i].Amount)
		}
		if err != nil {
			c.WithFields(log.Fields{
				"err":       err,
				"auctionId": a.Id,
				"payee":     legs[i].Payee,
				"kind":      legs[i].Kind,
			}).Warn("leg disburse failed, leaving pending")
			continue
		}
		legs[i].Done = true
		changed = true
	}
	if !changed {
		return nil
	}

	now := time.Now()
	nextVersion := a.Version + 1
	patch := auction.Patchable{
		Legs:      &legs,
		Version:   &nextVersion,
		UpdatedAt: &now,
	}
	if err := im.auctionRepo.Patch(c, a.Id, a.Version, patch); err != nil {
		return domain.ErrConflict
	}
	a.Legs = legs
	a.Version = nextVersion
	return nil
}

// RetrySettlement finishes the pending legs of a terminated auction,
// the payouts of an ended one or the asset return of a withdrawn one.
func (im *impl) RetrySettlement(c ctx.Ctx, id string) (*auction.Auction, error) {
	defer im.lock(id)()

	a, err := im.auctionRepo.FindOne(c, id)
	if err != nil {
		return nil, err
	}
	if a.State != auction.StateEnded && a.State != auction.StateWithdrawn {
		return nil, domain.ErrAuctionClosed
	}
	if err := im.disburseLegs(c, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (im *impl) CancelAuction(c ctx.Ctx, id string, seller domain.Address) (*auction.Auction, error) {
	defer im.lock(id)()

	a, err := im.auctionRepo.FindOne(c, id)
	if err != nil {
		return nil, err
	}
	if !a.Seller.Equals(seller) {
		return nil, domain.ErrUnauthorizedAsset
	}
	if a.State != auction.StateActive {
		return nil, domain.ErrAuctionClosed
	}
	if a.HighestBid != nil {
		return nil, domain.ErrConflict
	}

	now := time.Now()
	state := auction.StateWithdrawn
	legs := []auction.SettlementLeg{{
		Kind:  auction.LegKindAsset,
		Payee: a.Seller,
	}}
	nextVersion := a.Version + 1
	patch := auction.Patchable{
		State:     &state,
		Legs:      &legs,
		Version:   &nextVersion,
		UpdatedAt: &now,
	}
	if err := im.auctionRepo.Patch(c, a.Id, a.Version, patch); err != nil {
		return nil, domain.ErrConflict
	}
	a.State = state
	a.Legs = legs
	a.Version = nextVersion

	if err := im.disburseLegs(c, a); err != nil {
		return nil, err
	}

	im.emit(c, &auction.Event{
		Type:      auction.EventAuctionCancelled,
		ChainId:   a.ChainId,
		AuctionId: a.Id,
		Actor:     a.Seller,
	})
	return a, nil
}

func (im *impl) CalculateFee(c ctx.Ctx, chainId domain.ChainId, amount string) (string, error) {
	settings, err := im.feeSettings(c, chainId)
	if err != nil {
		return "", err
	}
	v, ok := new(big.Int).SetString(amount, 10)
	if !ok || v.Sign() < 0 {
		return "", domain.ErrInvalidNumberFormat
	}
	return settings.CalculateFee(v).String(), nil
}

func (im *impl) GetFeeSettings(c ctx.Ctx, chainId domain.ChainId) (*auction.FeeSettings, error) {
	settings, err := im.feeSettings(c, chainId)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (im *impl) SetFeeSettings(c ctx.Ctx, chainId domain.ChainId, settings auction.FeeSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	settings.UpdatedAt = time.Now()
	if err := im.feeSettingsRepo.Upsert(c, chainId, settings); err != nil {
		return err
	}

	im.emit(c, &auction.Event{
		Type:    auction.EventFeeSettingsUpdated,
		ChainId: chainId,
		Actor:   settings.Recipient,
	})
	return nil
}
