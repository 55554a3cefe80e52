package usecase

import (
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/base/metrics"
	"github.com/bidhaus/goapi/domain"
	"github.com/bidhaus/goapi/domain/auction"
	mockAuction "github.com/bidhaus/goapi/domain/auction/mocks"
)

var (
	mockCtx = ctx.Background()
)

type testsuite struct {
	suite.Suite
	mockRepo       *mockAuction.Repo
	mockFeeRepo    *mockAuction.FeeSettingsRepo
	mockEventRepo  *mockAuction.EventRepo
	mockCustody    *mockAuction.AssetCustody
	mockNormalizer *mockAuction.PriceNormalizer
	mockPayments   *mockAuction.PaymentService
	subject        *impl
}

func Test(t *testing.T) {
	suite.Run(t, new(testsuite))
}

func (t *testsuite) SetupTest() {
	t.mockRepo = &mockAuction.Repo{}
	t.mockFeeRepo = &mockAuction.FeeSettingsRepo{}
	t.mockEventRepo = &mockAuction.EventRepo{}
	t.mockCustody = &mockAuction.AssetCustody{}
	t.mockNormalizer = &mockAuction.PriceNormalizer{}
	t.mockPayments = &mockAuction.PaymentService{}
	t.subject = &impl{
		auctionRepo:     t.mockRepo,
		feeSettingsRepo: t.mockFeeRepo,
		eventRepo:       t.mockEventRepo,
		custody:         t.mockCustody,
		normalizer:      t.mockNormalizer,
		payments:        t.mockPayments,
		operator:        domain.Address("0x00000000000000000000000000000000000000ff"),
		defaultFee:      auction.FeeSettings{Percentage: 250, Recipient: "0x00000000000000000000000000000000000000fe"},
		met:             metrics.New("auction"),
		mus:             map[string]*sync.Mutex{},
	}
	t.mockEventRepo.On("Insert", mockCtx, mock.Anything).Return(nil).Maybe()
}

func (t *testsuite) asset() auction.AssetRef {
	return auction.AssetRef{
		ChainId:    1,
		Collection: "0x1111111111111111111111111111111111111111",
		TokenId:    "42",
	}
}

func (t *testsuite) activeAuction() *auction.Auction {
	now := time.Now()
	return &auction.Auction{
		Id:      "auction-1",
		ChainId: 1,
		Index:   0,
		Seller:  "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Asset:   t.asset(),
		ReservePrice: auction.DenominatedAmount{
			Amount: "1000",
		},
		StartTime: now.Add(-time.Hour),
		EndTime:   now.Add(time.Hour),
		State:     auction.StateActive,
		Fee:       auction.FeeSettings{Percentage: 250, Recipient: "0x00000000000000000000000000000000000000fe"},
		Refunds:   []auction.Refund{},
		Legs:      []auction.SettlementLeg{},
		Version:   1,
	}
}

func (t *testsuite) TestCreateAuction() {
	payload := auction.CreateAuctionPayload{
		ChainId:      1,
		Seller:       "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		Asset:        t.asset(),
		ReservePrice: auction.DenominatedAmount{Amount: "1000"},
		Duration:     3600,
	}
	seller := payload.Seller.ToLower()

	t.mockCustody.On("OwnerOf", mockCtx, mock.Anything).Return(seller, nil)
	t.mockCustody.On("IsApproved", mockCtx, mock.Anything, seller, t.subject.operator).Return(true, nil)
	t.mockRepo.On("FindOneByAsset", mockCtx, mock.Anything).Return(nil, domain.ErrNotFound)
	t.mockFeeRepo.On("Get", mockCtx, domain.ChainId(1)).Return(nil, domain.ErrNotFound)
	t.mockRepo.On("NextIndex", mockCtx, domain.ChainId(1)).Return(int64(0), nil)
	t.mockCustody.On("Transfer", mockCtx, mock.Anything, seller, t.subject.operator).
		Return(domain.TxHash("0x1"), nil).Once()
	t.mockRepo.On("Insert", mockCtx, mock.Anything).Return(nil)

	a, err := t.subject.CreateAuction(mockCtx, payload)
	t.NoError(err)
	t.Equal(seller, a.Seller)
	t.Equal(auction.StateActive, a.State)
	t.Equal(int64(0), a.Index)
	t.Equal(int64(250), a.Fee.Percentage)
	t.True(a.EndTime.After(a.StartTime))
	// the asset is escrowed with the operator from the moment of listing
	t.mockCustody.AssertExpectations(t.T())
}

func (t *testsuite) TestCreateAuctionEscrowTransferFails() {
	payload := auction.CreateAuctionPayload{
		ChainId:      1,
		Seller:       "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Asset:        t.asset(),
		ReservePrice: auction.DenominatedAmount{Amount: "1000"},
		Duration:     3600,
	}
	seller := payload.Seller

	t.mockCustody.On("OwnerOf", mockCtx, mock.Anything).Return(seller, nil)
	t.mockCustody.On("IsApproved", mockCtx, mock.Anything, seller, t.subject.operator).Return(true, nil)
	t.mockRepo.On("FindOneByAsset", mockCtx, mock.Anything).Return(nil, domain.ErrNotFound)
	t.mockFeeRepo.On("Get", mockCtx, domain.ChainId(1)).Return(nil, domain.ErrNotFound)
	t.mockRepo.On("NextIndex", mockCtx, domain.ChainId(1)).Return(int64(0), nil)
	t.mockCustody.On("Transfer", mockCtx, mock.Anything, seller, t.subject.operator).
		Return(domain.TxHash(""), domain.ErrInternalServerError)

	_, err := t.subject.CreateAuction(mockCtx, payload)
	t.ErrorIs(err, domain.ErrTransferFailed)
	t.mockRepo.AssertNotCalled(t.T(), "Insert", mockCtx, mock.Anything)
}

func (t *testsuite) TestCreateAuctionNotOwner() {
	payload := auction.CreateAuctionPayload{
		ChainId:      1,
		Seller:       "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Asset:        t.asset(),
		ReservePrice: auction.DenominatedAmount{Amount: "1000"},
		Duration:     3600,
	}

	t.mockCustody.On("OwnerOf", mockCtx, mock.Anything).
		Return(domain.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"), nil)

	_, err := t.subject.CreateAuction(mockCtx, payload)
	t.ErrorIs(err, domain.ErrUnauthorizedAsset)
}

func (t *testsuite) TestCreateAuctionNotApproved() {
	payload := auction.CreateAuctionPayload{
		ChainId:      1,
		Seller:       "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Asset:        t.asset(),
		ReservePrice: auction.DenominatedAmount{Amount: "1000"},
		Duration:     3600,
	}

	t.mockCustody.On("OwnerOf", mockCtx, mock.Anything).Return(payload.Seller, nil)
	t.mockCustody.On("IsApproved", mockCtx, mock.Anything, payload.Seller, t.subject.operator).Return(false, nil)

	_, err := t.subject.CreateAuction(mockCtx, payload)
	t.ErrorIs(err, domain.ErrUnauthorizedAsset)
}

func (t *testsuite) TestCreateAuctionDuplicateAsset() {
	payload := auction.CreateAuctionPayload{
		ChainId:      1,
		Seller:       "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Asset:        t.asset(),
		ReservePrice: auction.DenominatedAmount{Amount: "1000"},
		Duration:     3600,
	}

	t.mockCustody.On("OwnerOf", mockCtx, mock.Anything).Return(payload.Seller, nil)
	t.mockCustody.On("IsApproved", mockCtx, mock.Anything, payload.Seller, t.subject.operator).Return(true, nil)
	t.mockRepo.On("FindOneByAsset", mockCtx, mock.Anything).Return(t.activeAuction(), nil)

	_, err := t.subject.CreateAuction(mockCtx, payload)
	t.ErrorIs(err, domain.ErrConflict)
}

func (t *testsuite) TestCreateAuctionBadDuration() {
	payload := auction.CreateAuctionPayload{
		ChainId:      1,
		Seller:       "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Asset:        t.asset(),
		ReservePrice: auction.DenominatedAmount{Amount: "1000"},
		Duration:     0,
	}

	_, err := t.subject.CreateAuction(mockCtx, payload)
	t.ErrorIs(err, domain.ErrInvalidDuration)
}

func (t *testsuite) TestPlaceBidFirstMeetsReserve() {
	a := t.activeAuction()
	bidder := domain.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil)
	t.mockNormalizer.On("ToNative", mockCtx, a.ChainId, domain.Address(""), big.NewInt(1000)).
		Return(big.NewInt(1000), nil)
	t.mockPayments.On("Collect", mockCtx, a.Id, bidder, mock.Anything).Return(nil)
	t.mockRepo.On("Patch", mockCtx, a.Id, int64(1), mock.Anything).Return(nil)

	res, err := t.subject.PlaceBid(mockCtx, a.Id, auction.PlaceBidPayload{
		Bidder: bidder,
		Amount: auction.DenominatedAmount{Amount: "1000"},
	})
	t.NoError(err)
	t.Equal(bidder, res.HighestBid.Bidder)
	t.Equal("1000", res.HighestBid.Normalized)
	t.Equal(int64(2), res.Version)
}

func (t *testsuite) TestPlaceBidFirstBelowReserve() {
	a := t.activeAuction()
	bidder := domain.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil)
	t.mockNormalizer.On("ToNative", mockCtx, a.ChainId, domain.Address(""), big.NewInt(999)).
		Return(big.NewInt(999), nil)
	t.mockNormalizer.On("ToNative", mockCtx, a.ChainId, domain.Address(""), big.NewInt(1000)).
		Return(big.NewInt(1000), nil)

	_, err := t.subject.PlaceBid(mockCtx, a.Id, auction.PlaceBidPayload{
		Bidder: bidder,
		Amount: auction.DenominatedAmount{Amount: "999"},
	})
	t.ErrorIs(err, domain.ErrBelowReserve)
	t.mockPayments.AssertNotCalled(t.T(), "Collect", mockCtx, a.Id, bidder, mock.Anything)
}

func (t *testsuite) TestPlaceBidOutbidRefundsPrevious() {
	a := t.activeAuction()
	prev := domain.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	next := domain.Address("0xcccccccccccccccccccccccccccccccccccccccc")
	a.HighestBid = &auction.Bid{
		Bidder:     prev,
		Amount:     auction.DenominatedAmount{Amount: "1000"},
		Normalized: "1000",
	}

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil)
	t.mockNormalizer.On("ToNative", mockCtx, a.ChainId, domain.Address(""), big.NewInt(1500)).
		Return(big.NewInt(1500), nil)
	t.mockPayments.On("Collect", mockCtx, a.Id, next, mock.Anything).Return(nil)
	t.mockRepo.On("Patch", mockCtx, a.Id, int64(1), mock.Anything).Return(nil)

	res, err := t.subject.PlaceBid(mockCtx, a.Id, auction.PlaceBidPayload{
		Bidder: next,
		Amount: auction.DenominatedAmount{Amount: "1500"},
	})
	t.NoError(err)
	t.Equal(next, res.HighestBid.Bidder)
	// the displaced bid is recorded as a pull claim, never pushed out
	t.Len(res.Refunds, 1)
	t.Equal(prev, res.Refunds[0].Bidder)
	t.Equal("1000", res.Refunds[0].Amount.Amount)
	t.mockPayments.AssertNotCalled(t.T(), "Disburse", mockCtx, a.Id, prev, mock.Anything)
}

func (t *testsuite) TestPlaceBidSameBidderDisplacedTwice() {
	a := t.activeAuction()
	prev := domain.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	next := domain.Address("0xcccccccccccccccccccccccccccccccccccccccc")
	a.HighestBid = &auction.Bid{
		Bidder:     prev,
		Amount:     auction.DenominatedAmount{Amount: "1200"},
		Normalized: "1200",
	}
	a.Refunds = []auction.Refund{
		{Bidder: prev, Amount: auction.DenominatedAmount{Amount: "1000"}},
	}

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil)
	t.mockNormalizer.On("ToNative", mockCtx, a.ChainId, domain.Address(""), big.NewInt(1500)).
		Return(big.NewInt(1500), nil)
	t.mockPayments.On("Collect", mockCtx, a.Id, next, mock.Anything).Return(nil)
	t.mockRepo.On("Patch", mockCtx, a.Id, int64(1), mock.Anything).Return(nil)

	res, err := t.subject.PlaceBid(mockCtx, a.Id, auction.PlaceBidPayload{
		Bidder: next,
		Amount: auction.DenominatedAmount{Amount: "1500"},
	})
	t.NoError(err)
	// both displaced bids collapse into one claim
	t.Len(res.Refunds, 1)
	t.Equal(prev, res.Refunds[0].Bidder)
	t.Equal("2200", res.Refunds[0].Amount.Amount)
}

func (t *testsuite) TestPlaceBidPatchConflictReleasesFunds() {
	a := t.activeAuction()
	bidder := domain.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	amount := auction.DenominatedAmount{Amount: "1000"}

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil)
	t.mockNormalizer.On("ToNative", mockCtx, a.ChainId, domain.Address(""), big.NewInt(1000)).
		Return(big.NewInt(1000), nil)
	t.mockPayments.On("Collect", mockCtx, a.Id, bidder, amount).Return(nil)
	t.mockRepo.On("Patch", mockCtx, a.Id, int64(1), mock.Anything).
		Return(domain.ErrInternalServerError)
	t.mockPayments.On("Disburse", mockCtx, a.Id, bidder, amount).Return(nil)

	_, err := t.subject.PlaceBid(mockCtx, a.Id, auction.PlaceBidPayload{
		Bidder: bidder,
		Amount: amount,
	})
	t.ErrorIs(err, domain.ErrConflict)
	// the collected funds went back to the bidder, nothing is stranded
	t.mockPayments.AssertExpectations(t.T())
}

func (t *testsuite) TestPlaceBidTooLow() {
	a := t.activeAuction()
	a.HighestBid = &auction.Bid{
		Bidder:     "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		Amount:     auction.DenominatedAmount{Amount: "1000"},
		Normalized: "1000",
	}
	next := domain.Address("0xcccccccccccccccccccccccccccccccccccccccc")

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil)
	t.mockNormalizer.On("ToNative", mockCtx, a.ChainId, domain.Address(""), big.NewInt(1000)).
		Return(big.NewInt(1000), nil)

	_, err := t.subject.PlaceBid(mockCtx, a.Id, auction.PlaceBidPayload{
		Bidder: next,
		Amount: auction.DenominatedAmount{Amount: "1000"},
	})
	t.ErrorIs(err, domain.ErrBidTooLow)
}

func (t *testsuite) TestPlaceBidClosed() {
	a := t.activeAuction()
	a.EndTime = time.Now().Add(-time.Minute)

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil)

	_, err := t.subject.PlaceBid(mockCtx, a.Id, auction.PlaceBidPayload{
		Bidder: "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		Amount: auction.DenominatedAmount{Amount: "1000"},
	})
	t.ErrorIs(err, domain.ErrAuctionClosed)
}

func (t *testsuite) TestPlaceBidBySeller() {
	a := t.activeAuction()

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil)

	_, err := t.subject.PlaceBid(mockCtx, a.Id, auction.PlaceBidPayload{
		Bidder: a.Seller,
		Amount: auction.DenominatedAmount{Amount: "1000"},
	})
	t.ErrorIs(err, domain.ErrSelfBid)
}

func (t *testsuite) TestPlaceBidInsufficientFunds() {
	a := t.activeAuction()
	bidder := domain.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil)
	t.mockNormalizer.On("ToNative", mockCtx, a.ChainId, domain.Address(""), big.NewInt(1000)).
		Return(big.NewInt(1000), nil)
	t.mockPayments.On("Collect", mockCtx, a.Id, bidder, mock.Anything).
		Return(domain.ErrInsufficientFunds)

	_, err := t.subject.PlaceBid(mockCtx, a.Id, auction.PlaceBidPayload{
		Bidder: bidder,
		Amount: auction.DenominatedAmount{Amount: "1000"},
	})
	t.ErrorIs(err, domain.ErrInsufficientFunds)
}

func (t *testsuite) TestWithdrawRefund() {
	a := t.activeAuction()
	bidder := domain.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	a.Refunds = []auction.Refund{
		{Bidder: bidder, Amount: auction.DenominatedAmount{Amount: "1000"}},
	}

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil)
	t.mockRepo.On("Patch", mockCtx, a.Id, int64(1), mock.Anything).Return(nil)
	t.mockPayments.On("Disburse", mockCtx, a.Id, bidder, a.Refunds[0].Amount).Return(nil)

	refund, err := t.subject.WithdrawRefund(mockCtx, a.Id, bidder)
	t.NoError(err)
	t.Equal("1000", refund.Amount.Amount)
	t.mockPayments.AssertExpectations(t.T())
}

func (t *testsuite) TestWithdrawRefundOnlyOnce() {
	a := t.activeAuction()
	bidder := domain.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	a.Refunds = []auction.Refund{
		{Bidder: bidder, Amount: auction.DenominatedAmount{Amount: "1000"}},
	}
	drained := t.activeAuction()
	drained.Version = 2

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil).Once()
	t.mockRepo.On("Patch", mockCtx, a.Id, int64(1), mock.Anything).Return(nil)
	t.mockPayments.On("Disburse", mockCtx, a.Id, bidder, a.Refunds[0].Amount).Return(nil).Once()

	refund, err := t.subject.WithdrawRefund(mockCtx, a.Id, bidder)
	t.NoError(err)
	t.Equal("1000", refund.Amount.Amount)

	// the claim is gone after the first withdrawal
	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(drained, nil).Once()

	_, err = t.subject.WithdrawRefund(mockCtx, a.Id, bidder)
	t.ErrorIs(err, domain.ErrNoRefundAvailable)
	t.mockPayments.AssertNumberOfCalls(t.T(), "Disburse", 1)
}

func (t *testsuite) TestWithdrawRefundNoneAvailable() {
	a := t.activeAuction()

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil)

	_, err := t.subject.WithdrawRefund(mockCtx, a.Id, "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	t.ErrorIs(err, domain.ErrNoRefundAvailable)
}

func (t *testsuite) TestWithdrawRefundDisburseFails() {
	a := t.activeAuction()
	bidder := domain.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	a.Refunds = []auction.Refund{
		{Bidder: bidder, Amount: auction.DenominatedAmount{Amount: "1000"}},
	}

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil)
	t.mockRepo.On("Patch", mockCtx, a.Id, int64(1), mock.Anything).Return(nil)
	t.mockRepo.On("Patch", mockCtx, a.Id, int64(2), mock.Anything).Return(nil)
	t.mockPayments.On("Disburse", mockCtx, a.Id, bidder, a.Refunds[0].Amount).
		Return(domain.ErrInternalServerError)

	_, err := t.subject.WithdrawRefund(mockCtx, a.Id, bidder)
	t.ErrorIs(err, domain.ErrTransferFailed)
	// the claim is written back after the failed payout
	t.mockRepo.AssertNumberOfCalls(t.T(), "Patch", 2)
}

func (t *testsuite) TestEndAuctionNotYetEndable() {
	a := t.activeAuction()

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil)

	_, err := t.subject.EndAuction(mockCtx, a.Id)
	t.ErrorIs(err, domain.ErrAuctionNotYetEndable)
}

func (t *testsuite) TestEndAuctionNoBids() {
	a := t.activeAuction()
	a.EndTime = time.Now().Add(-time.Minute)

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil)
	t.mockRepo.On("Patch", mockCtx, a.Id, mock.Anything, mock.Anything).Return(nil)
	// the escrowed asset goes back to the seller
	t.mockCustody.On("Transfer", mockCtx, a.Asset, t.subject.operator, a.Seller).
		Return(domain.TxHash("0x1"), nil).Once()

	res, err := t.subject.EndAuction(mockCtx, a.Id)
	t.NoError(err)
	t.Equal(auction.StateEnded, res.State)
	t.True(res.Winner.IsEmpty())
	t.Len(res.Legs, 1)
	t.Equal(auction.LegKindAsset, res.Legs[0].Kind)
	t.True(res.Legs[0].Done)
	t.mockCustody.AssertExpectations(t.T())
}

func (t *testsuite) TestEndAuctionSettles() {
	a := t.activeAuction()
	a.EndTime = time.Now().Add(-time.Minute)
	winner := domain.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	a.HighestBid = &auction.Bid{
		Bidder:     winner,
		Amount:     auction.DenominatedAmount{Amount: "10000"},
		Normalized: "10000",
	}

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil)
	t.mockRepo.On("Patch", mockCtx, a.Id, mock.Anything, mock.Anything).Return(nil)
	t.mockCustody.On("Transfer", mockCtx, a.Asset, t.subject.operator, winner).
		Return(domain.TxHash("0xdead"), nil)
	// 2.5% of 10000
	t.mockPayments.On("Disburse", mockCtx, a.Id, a.Fee.Recipient,
		auction.DenominatedAmount{Amount: "250"}).Return(nil)
	t.mockPayments.On("Disburse", mockCtx, a.Id, a.Seller,
		auction.DenominatedAmount{Amount: "9750"}).Return(nil)

	res, err := t.subject.EndAuction(mockCtx, a.Id)
	t.NoError(err)
	t.Equal(auction.StateEnded, res.State)
	t.Equal(winner, res.Winner)
	t.Len(res.Legs, 3)
	for _, leg := range res.Legs {
		t.True(leg.Done)
	}
	t.mockPayments.AssertExpectations(t.T())
	t.mockCustody.AssertExpectations(t.T())
}

func (t *testsuite) TestEndAuctionTransferFails() {
	a := t.activeAuction()
	a.EndTime = time.Now().Add(-time.Minute)
	winner := domain.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	a.HighestBid = &auction.Bid{
		Bidder:     winner,
		Amount:     auction.DenominatedAmount{Amount: "10000"},
		Normalized: "10000",
	}

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil)
	t.mockRepo.On("Patch", mockCtx, a.Id, mock.Anything, mock.Anything).Return(nil)
	t.mockCustody.On("Transfer", mockCtx, a.Asset, t.subject.operator, winner).
		Return(domain.TxHash(""), domain.ErrInternalServerError)
	t.mockPayments.On("Disburse", mockCtx, a.Id, mock.Anything, mock.Anything).Return(nil)

	res, err := t.subject.EndAuction(mockCtx, a.Id)
	t.ErrorIs(err, domain.ErrTransferFailed)
	// the sale is committed and the asset leg stays pending for retries
	t.Equal(auction.StateEnded, res.State)
	t.Equal(auction.LegKindAsset, res.Legs[0].Kind)
	t.False(res.Legs[0].Done)
}

func (t *testsuite) TestRetrySettlementDeliversAsset() {
	a := t.activeAuction()
	winner := domain.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	a.State = auction.StateEnded
	a.Winner = winner
	a.Legs = []auction.SettlementLeg{
		{Kind: auction.LegKindAsset, Payee: winner},
	}

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil)
	t.mockRepo.On("Patch", mockCtx, a.Id, int64(1), mock.Anything).Return(nil)
	t.mockCustody.On("Transfer", mockCtx, a.Asset, t.subject.operator, winner).
		Return(domain.TxHash("0xdead"), nil).Once()

	res, err := t.subject.RetrySettlement(mockCtx, a.Id)
	t.NoError(err)
	t.True(res.Legs[0].Done)
	t.mockCustody.AssertExpectations(t.T())
}

func (t *testsuite) TestEndAuctionFailedLegStaysPending() {
	a := t.activeAuction()
	a.EndTime = time.Now().Add(-time.Minute)
	winner := domain.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	a.HighestBid = &auction.Bid{
		Bidder:     winner,
		Amount:     auction.DenominatedAmount{Amount: "10000"},
		Normalized: "10000",
	}

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil)
	t.mockRepo.On("Patch", mockCtx, a.Id, mock.Anything, mock.Anything).Return(nil)
	t.mockCustody.On("Transfer", mockCtx, a.Asset, t.subject.operator, winner).
		Return(domain.TxHash("0xdead"), nil)
	t.mockPayments.On("Disburse", mockCtx, a.Id, a.Fee.Recipient,
		auction.DenominatedAmount{Amount: "250"}).Return(domain.ErrInternalServerError)
	t.mockPayments.On("Disburse", mockCtx, a.Id, a.Seller,
		auction.DenominatedAmount{Amount: "9750"}).Return(nil)

	res, err := t.subject.EndAuction(mockCtx, a.Id)
	t.NoError(err)
	t.Len(res.Legs, 3)
	t.True(res.Legs[0].Done)  // asset
	t.False(res.Legs[1].Done) // fee
	t.True(res.Legs[2].Done)  // proceeds
}

func (t *testsuite) TestRetrySettlement() {
	a := t.activeAuction()
	a.State = auction.StateEnded
	a.Winner = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	a.Legs = []auction.SettlementLeg{
		{Kind: auction.LegKindProceeds, Payee: a.Seller, Amount: auction.DenominatedAmount{Amount: "9750"}},
	}

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil)
	t.mockRepo.On("Patch", mockCtx, a.Id, int64(1), mock.Anything).Return(nil)
	t.mockPayments.On("Disburse", mockCtx, a.Id, a.Seller, a.Legs[0].Amount).Return(nil)

	res, err := t.subject.RetrySettlement(mockCtx, a.Id)
	t.NoError(err)
	t.True(res.Legs[0].Done)
}

func (t *testsuite) TestEscrowConservation() {
	// every unit collected across an outbid, a settlement and a refund
	// withdrawal must leave through a disbursement or a payout leg
	first := domain.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	second := domain.Address("0xcccccccccccccccccccccccccccccccccccccccc")

	collected := big.NewInt(0)
	disbursed := big.NewInt(0)
	tally := func(total *big.Int) func(mock.Arguments) {
		return func(args mock.Arguments) {
			v, err := args.Get(3).(auction.DenominatedAmount).AmountBig()
			t.NoError(err)
			total.Add(total, v)
		}
	}

	a1 := t.activeAuction()
	t.mockNormalizer.On("ToNative", mockCtx, a1.ChainId, domain.Address(""), mock.Anything).
		Return(func(_ ctx.Ctx, _ domain.ChainId, _ domain.Address, v *big.Int) *big.Int {
			return v
		}, nil)
	t.mockPayments.On("Collect", mockCtx, a1.Id, mock.Anything, mock.Anything).
		Run(tally(collected)).Return(nil)
	t.mockPayments.On("Disburse", mockCtx, a1.Id, mock.Anything, mock.Anything).
		Run(tally(disbursed)).Return(nil)
	t.mockRepo.On("Patch", mockCtx, a1.Id, mock.Anything, mock.Anything).Return(nil)
	t.mockCustody.On("Transfer", mockCtx, a1.Asset, t.subject.operator, second).
		Return(domain.TxHash("0xdead"), nil)

	t.mockRepo.On("FindOne", mockCtx, a1.Id).Return(a1, nil).Once()
	_, err := t.subject.PlaceBid(mockCtx, a1.Id, auction.PlaceBidPayload{
		Bidder: first,
		Amount: auction.DenominatedAmount{Amount: "1000"},
	})
	t.NoError(err)

	a2 := t.activeAuction()
	a2.Version = 2
	a2.HighestBid = &auction.Bid{Bidder: first, Amount: auction.DenominatedAmount{Amount: "1000"}, Normalized: "1000"}
	t.mockRepo.On("FindOne", mockCtx, a1.Id).Return(a2, nil).Once()
	_, err = t.subject.PlaceBid(mockCtx, a1.Id, auction.PlaceBidPayload{
		Bidder: second,
		Amount: auction.DenominatedAmount{Amount: "1500"},
	})
	t.NoError(err)

	a3 := t.activeAuction()
	a3.Version = 3
	a3.EndTime = time.Now().Add(-time.Minute)
	a3.HighestBid = &auction.Bid{Bidder: second, Amount: auction.DenominatedAmount{Amount: "1500"}, Normalized: "1500"}
	a3.Refunds = []auction.Refund{{Bidder: first, Amount: auction.DenominatedAmount{Amount: "1000"}}}
	t.mockRepo.On("FindOne", mockCtx, a1.Id).Return(a3, nil).Once()
	_, err = t.subject.EndAuction(mockCtx, a1.Id)
	t.NoError(err)

	a4 := t.activeAuction()
	a4.Version = 5
	a4.State = auction.StateEnded
	a4.Winner = second
	a4.Refunds = []auction.Refund{{Bidder: first, Amount: auction.DenominatedAmount{Amount: "1000"}}}
	t.mockRepo.On("FindOne", mockCtx, a1.Id).Return(a4, nil).Once()
	_, err = t.subject.WithdrawRefund(mockCtx, a1.Id, first)
	t.NoError(err)

	// 1000 + 1500 in, 1000 refund + 37 fee + 1463 proceeds out
	t.Equal("2500", collected.String())
	t.Equal(collected.String(), disbursed.String())
}

func (t *testsuite) TestCancelAuction() {
	a := t.activeAuction()

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil)
	t.mockRepo.On("Patch", mockCtx, a.Id, mock.Anything, mock.Anything).Return(nil)
	t.mockCustody.On("Transfer", mockCtx, a.Asset, t.subject.operator, a.Seller).
		Return(domain.TxHash("0x1"), nil).Once()

	res, err := t.subject.CancelAuction(mockCtx, a.Id, a.Seller)
	t.NoError(err)
	t.Equal(auction.StateWithdrawn, res.State)
	t.Len(res.Legs, 1)
	t.True(res.Legs[0].Done)
	t.mockCustody.AssertExpectations(t.T())
}

func (t *testsuite) TestCancelAuctionNotSeller() {
	a := t.activeAuction()

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil)

	_, err := t.subject.CancelAuction(mockCtx, a.Id, "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	t.ErrorIs(err, domain.ErrUnauthorizedAsset)
}

func (t *testsuite) TestCancelAuctionWithBid() {
	a := t.activeAuction()
	a.HighestBid = &auction.Bid{
		Bidder:     "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		Amount:     auction.DenominatedAmount{Amount: "1000"},
		Normalized: "1000",
	}

	t.mockRepo.On("FindOne", mockCtx, a.Id).Return(a, nil)

	_, err := t.subject.CancelAuction(mockCtx, a.Id, a.Seller)
	t.ErrorIs(err, domain.ErrConflict)
}

func (t *testsuite) TestCalculateFee() {
	t.mockFeeRepo.On("Get", mockCtx, domain.ChainId(1)).
		Return(&auction.FeeSettings{Percentage: 250}, nil)

	fee, err := t.subject.CalculateFee(mockCtx, 1, "10000")
	t.NoError(err)
	t.Equal("250", fee)
}

func (t *testsuite) TestSetFeeSettingsTooHigh() {
	err := t.subject.SetFeeSettings(mockCtx, 1, auction.FeeSettings{Percentage: 1001})
	t.ErrorIs(err, domain.ErrFeeTooHigh)
}

func (t *testsuite) TestSetFeeSettings() {
	t.mockFeeRepo.On("Upsert", mockCtx, domain.ChainId(1), mock.Anything).Return(nil)

	t.NoError(t.subject.SetFeeSettings(mockCtx, 1, auction.FeeSettings{
		Percentage: 500,
		Recipient:  "0x00000000000000000000000000000000000000fe",
	}))
	t.mockFeeRepo.AssertExpectations(t.T())
}
