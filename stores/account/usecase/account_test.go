package usecase

import (
	"crypto/ecdsa"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/domain"
	"github.com/bidhaus/goapi/domain/account"
	mockAccount "github.com/bidhaus/goapi/domain/account/mocks"
)

const testSignatureMsg = "Welcome to Bidhaus!\n\nPlease sign this one-time nonce to log in: %s"

var (
	mockCtx = ctx.Background()
)

type testsuite struct {
	suite.Suite
	mockRepo *mockAccount.Repo
	subject  account.Usecase
}

func Test(t *testing.T) {
	suite.Run(t, new(testsuite))
}

func (t *testsuite) SetupTest() {
	t.mockRepo = &mockAccount.Repo{}
	t.subject = New(&AccountUsecaseCfg{
		AccountRepo:  t.mockRepo,
		SignatureMsg: testSignatureMsg,
	})
}

func (t *testsuite) TestGetOrCreateExisting() {
	address := domain.Address("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	existing := &account.Account{Address: address, Nonce: 42}
	t.mockRepo.On("Get", mockCtx, address).Return(existing, nil).Once()

	a, err := t.subject.GetOrCreate(mockCtx, address)
	t.Nil(err)
	t.Equal(existing, a)
	t.mockRepo.AssertNotCalled(t.T(), "Insert", mock.Anything, mock.Anything)
}

func (t *testsuite) TestGetOrCreateCreates() {
	address := domain.Address("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	t.mockRepo.On("Get", mockCtx, address).Return(nil, domain.ErrNotFound).Once()
	t.mockRepo.On("Insert", mockCtx, mock.Anything).Return(nil).Once()

	a, err := t.subject.GetOrCreate(mockCtx, address)
	t.Nil(err)
	t.Equal(address.ToLower(), a.Address)
	t.Equal(int64(-1), a.Nonce)
}

func (t *testsuite) TestGenerateNonce() {
	address := domain.Address("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	t.mockRepo.On("Get", mockCtx, address).Return(&account.Account{Address: address, Nonce: -1}, nil).Once()
	t.mockRepo.On("Update", mockCtx, address, mock.MatchedBy(func(p account.Patchable) bool {
		return p.Nonce != nil && *p.Nonce >= 0 && *p.Nonce < nonceRange
	})).Return(nil).Once()

	nonce, err := t.subject.GenerateNonce(mockCtx, address)
	t.Nil(err)
	t.True(nonce >= 0 && nonce < nonceRange)
	t.mockRepo.AssertExpectations(t.T())
}

func (t *testsuite) signer() (*ecdsa.PrivateKey, domain.Address) {
	key, err := crypto.GenerateKey()
	t.Nil(err)
	address := strings.ToLower(crypto.PubkeyToAddress(key.PublicKey).Hex())
	return key, domain.Address(address)
}

func (t *testsuite) sign(key *ecdsa.PrivateKey, nonce int64) string {
	msg := []byte(fmt.Sprintf(testSignatureMsg, fmt.Sprint(nonce)))
	sig, err := crypto.Sign(accounts.TextHash(msg), key)
	t.Nil(err)
	return hexutil.Encode(sig)
}

func (t *testsuite) TestValidateSignature() {
	key, address := t.signer()
	nonce := int64(123456)
	t.mockRepo.On("Get", mock.Anything, address).Return(&account.Account{
		Address:   address,
		Nonce:     nonce,
		CreatedAt: time.Now(),
	}, nil).Once()
	t.mockRepo.On("Update", mock.Anything, address, mock.MatchedBy(func(p account.Patchable) bool {
		return p.Nonce != nil && *p.Nonce == invalidNonce
	})).Return(nil).Once()

	err := t.subject.ValidateSignature(mockCtx, address, t.sign(key, nonce))
	t.Nil(err)
	t.mockRepo.AssertExpectations(t.T())
}

func (t *testsuite) TestValidateSignatureBurntNonce() {
	_, address := t.signer()
	t.mockRepo.On("Get", mock.Anything, address).Return(&account.Account{
		Address: address,
		Nonce:   invalidNonce,
	}, nil).Once()

	err := t.subject.ValidateSignature(mockCtx, address, "0xdeadbeef")
	t.Equal(account.ErrInvalidNonce, err)
	t.mockRepo.AssertNotCalled(t.T(), "Update", mock.Anything, mock.Anything, mock.Anything)
}

func (t *testsuite) TestValidateSignatureWrongSigner() {
	_, address := t.signer()
	otherKey, _ := t.signer()
	nonce := int64(777)
	t.mockRepo.On("Get", mock.Anything, address).Return(&account.Account{
		Address: address,
		Nonce:   nonce,
	}, nil).Once()
	// nonce burns even when the signature fails to verify
	t.mockRepo.On("Update", mock.Anything, address, mock.MatchedBy(func(p account.Patchable) bool {
		return p.Nonce != nil && *p.Nonce == invalidNonce
	})).Return(nil).Once()

	err := t.subject.ValidateSignature(mockCtx, address, t.sign(otherKey, nonce))
	t.Equal(account.ErrInvalidSignature, err)
	t.mockRepo.AssertExpectations(t.T())
}

func (t *testsuite) TestValidateSignatureReplayRejected() {
	key, address := t.signer()
	nonce := int64(9001)
	signature := t.sign(key, nonce)

	t.mockRepo.On("Get", mock.Anything, address).Return(&account.Account{
		Address: address,
		Nonce:   nonce,
	}, nil).Once()
	t.mockRepo.On("Update", mock.Anything, address, mock.Anything).Return(nil)
	t.Nil(t.subject.ValidateSignature(mockCtx, address, signature))

	// second attempt sees the burnt nonce
	t.mockRepo.On("Get", mock.Anything, address).Return(&account.Account{
		Address: address,
		Nonce:   invalidNonce,
	}, nil).Once()
	t.Equal(account.ErrInvalidNonce, t.subject.ValidateSignature(mockCtx, address, signature))
}

func (t *testsuite) TestUpdateProfile() {
	address := domain.Address("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	alias := "alice"
	t.mockRepo.On("Update", mockCtx, address, mock.MatchedBy(func(p account.Patchable) bool {
		return p.Alias != nil && *p.Alias == alias && p.Email == nil
	})).Return(nil).Once()
	t.mockRepo.On("Get", mockCtx, address).Return(&account.Account{
		Address: address,
		Alias:   alias,
	}, nil).Once()

	a, err := t.subject.UpdateProfile(mockCtx, address, &alias, nil)
	t.Nil(err)
	t.Equal(alias, a.Alias)
	t.mockRepo.AssertExpectations(t.T())
}
