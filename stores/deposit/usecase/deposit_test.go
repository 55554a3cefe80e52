package usecase

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/domain"
	"github.com/bidhaus/goapi/domain/auction"
	"github.com/bidhaus/goapi/domain/deposit"
	mockDeposit "github.com/bidhaus/goapi/domain/deposit/mocks"
)

var (
	mockCtx = ctx.Background()
)

type testsuite struct {
	suite.Suite
	mockRepo *mockDeposit.Repo
	subject  *impl
}

func Test(t *testing.T) {
	suite.Run(t, new(testsuite))
}

func (t *testsuite) SetupTest() {
	t.mockRepo = &mockDeposit.Repo{}
	t.subject = New(&DepositUseCaseCfg{DepositRepo: t.mockRepo})
}

func (t *testsuite) TestDeposit() {
	var (
		owner = domain.Address("0xaaaa")
		id    = deposit.AccountId{Owner: owner, PayToken: ""}
	)

	t.mockRepo.On("Add", mockCtx, id, big.NewInt(100)).Return(nil)
	t.mockRepo.On("Get", mockCtx, id).Return(&deposit.Account{Owner: owner}, nil)

	acc, err := t.subject.Deposit(mockCtx, owner, "", "100")
	t.NoError(err)
	t.Equal(owner, acc.Owner)
}

func (t *testsuite) TestDepositBadAmount() {
	_, err := t.subject.Deposit(mockCtx, "0xaaaa", "", "not-a-number")
	t.ErrorIs(err, domain.ErrInvalidNumberFormat)
}

func (t *testsuite) TestWithdrawInsufficient() {
	var (
		owner = domain.Address("0xaaaa")
		id    = deposit.AccountId{Owner: owner, PayToken: ""}
	)

	t.mockRepo.On("Deduct", mockCtx, id, big.NewInt(100)).Return(domain.ErrInsufficientFunds)

	_, err := t.subject.Withdraw(mockCtx, owner, "", "100")
	t.ErrorIs(err, domain.ErrInsufficientFunds)
}

func (t *testsuite) TestCollect() {
	var (
		payer     = domain.Address("0xbbbb")
		auctionId = "auction-1"
		amount    = auction.DenominatedAmount{Amount: "500"}
		free      = deposit.AccountId{Owner: payer}
		escrow    = deposit.AccountId{Owner: payer, AuctionId: auctionId}
	)

	t.mockRepo.On("Deduct", mockCtx, free, big.NewInt(500)).Return(nil)
	t.mockRepo.On("Add", mockCtx, escrow, big.NewInt(500)).Return(nil)

	t.NoError(t.subject.Collect(mockCtx, auctionId, payer, amount))
	t.mockRepo.AssertExpectations(t.T())
}

func (t *testsuite) TestCollectInsufficient() {
	var (
		payer     = domain.Address("0xbbbb")
		auctionId = "auction-1"
		amount    = auction.DenominatedAmount{Amount: "500"}
		free      = deposit.AccountId{Owner: payer}
	)

	t.mockRepo.On("Deduct", mockCtx, free, big.NewInt(500)).Return(domain.ErrInsufficientFunds)

	t.ErrorIs(t.subject.Collect(mockCtx, auctionId, payer, amount), domain.ErrInsufficientFunds)
	t.mockRepo.AssertNotCalled(t.T(), "Add", mockCtx, deposit.AccountId{Owner: payer, AuctionId: auctionId}, big.NewInt(500))
}

func (t *testsuite) TestDisburse() {
	var (
		bidder    = domain.Address("0xbbbb")
		seller    = domain.Address("0xcccc")
		auctionId = "auction-1"
		amount    = auction.DenominatedAmount{Amount: "500"}
		escrowId  = deposit.AccountId{Owner: bidder, AuctionId: auctionId}
		sellerId  = deposit.AccountId{Owner: seller}
	)

	t.mockRepo.On("FindAllByAuction", mockCtx, auctionId, domain.Address("")).
		Return([]*deposit.Account{
			{Owner: bidder, AuctionId: auctionId, Balance: "00000000000000000000000000000500"},
		}, nil)
	t.mockRepo.On("Deduct", mockCtx, escrowId, big.NewInt(500)).Return(nil)
	t.mockRepo.On("Add", mockCtx, sellerId, big.NewInt(500)).Return(nil)

	t.NoError(t.subject.Disburse(mockCtx, auctionId, seller, amount))
	t.mockRepo.AssertExpectations(t.T())
}

func (t *testsuite) TestDisburseEscrowShort() {
	var (
		seller    = domain.Address("0xcccc")
		auctionId = "auction-1"
		amount    = auction.DenominatedAmount{Amount: "500"}
	)

	t.mockRepo.On("FindAllByAuction", mockCtx, auctionId, domain.Address("")).
		Return([]*deposit.Account{}, nil)

	t.ErrorIs(t.subject.Disburse(mockCtx, auctionId, seller, amount), domain.ErrInsufficientFunds)
	// nothing was deducted, the shortfall is detected before touching
	// any bucket
	t.mockRepo.AssertNotCalled(t.T(), "Deduct", mockCtx, mock.Anything, mock.Anything)
}

func (t *testsuite) TestDisburseDeductFailRestoresEarlierBuckets() {
	var (
		seller    = domain.Address("0xcccc")
		auctionId = "auction-1"
		amount    = auction.DenominatedAmount{Amount: "500"}
		firstId   = deposit.AccountId{Owner: "0xbbbb", AuctionId: auctionId}
		secondId  = deposit.AccountId{Owner: "0xdddd", AuctionId: auctionId}
	)

	t.mockRepo.On("FindAllByAuction", mockCtx, auctionId, domain.Address("")).
		Return([]*deposit.Account{
			{Owner: "0xbbbb", AuctionId: auctionId, Balance: "00000000000000000000000000000300"},
			{Owner: "0xdddd", AuctionId: auctionId, Balance: "00000000000000000000000000000200"},
		}, nil)
	t.mockRepo.On("Deduct", mockCtx, firstId, big.NewInt(300)).Return(nil).Once()
	t.mockRepo.On("Deduct", mockCtx, secondId, big.NewInt(200)).
		Return(domain.ErrInternalServerError).Once()
	// the first bucket's deduction comes back
	t.mockRepo.On("Add", mockCtx, firstId, big.NewInt(300)).Return(nil).Once()

	t.Error(t.subject.Disburse(mockCtx, auctionId, seller, amount))
	t.mockRepo.AssertExpectations(t.T())
}

func (t *testsuite) TestDisburseAddFailRestoresEscrow() {
	var (
		bidder    = domain.Address("0xbbbb")
		seller    = domain.Address("0xcccc")
		auctionId = "auction-1"
		amount    = auction.DenominatedAmount{Amount: "500"}
		escrowId  = deposit.AccountId{Owner: bidder, AuctionId: auctionId}
		sellerId  = deposit.AccountId{Owner: seller}
	)

	t.mockRepo.On("FindAllByAuction", mockCtx, auctionId, domain.Address("")).
		Return([]*deposit.Account{
			{Owner: bidder, AuctionId: auctionId, Balance: "00000000000000000000000000000500"},
		}, nil)
	t.mockRepo.On("Deduct", mockCtx, escrowId, big.NewInt(500)).Return(nil).Once()
	t.mockRepo.On("Add", mockCtx, sellerId, big.NewInt(500)).
		Return(domain.ErrInternalServerError).Once()
	// the payee credit failed, so the escrow balance comes back
	t.mockRepo.On("Add", mockCtx, escrowId, big.NewInt(500)).Return(nil).Once()

	t.Error(t.subject.Disburse(mockCtx, auctionId, seller, amount))
	t.mockRepo.AssertExpectations(t.T())
}
