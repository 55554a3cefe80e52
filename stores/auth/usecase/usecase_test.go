package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/domain"
	"github.com/bidhaus/goapi/domain/account"
	mAccount "github.com/bidhaus/goapi/domain/account/mocks"
	"github.com/bidhaus/goapi/stores/auth/usecase"
)

func TestSignAndParseToken(t *testing.T) {
	mockAccountUC := &mAccount.Usecase{}

	mockAccountUC.On("ValidateSignature", mock.Anything, domain.Address("0xabc"), "sig").Return(nil)

	ctx := ctx.Background()
	u := usecase.New("jwt-secret", mockAccountUC)
	tkn, err := u.SignToken(ctx, "0xabc", "sig")
	assert.NoError(t, err)
	assert.NotEmpty(t, tkn)
	ads, err := u.ParseToken(ctx, tkn)
	assert.NoError(t, err)
	assert.Equal(t, "0xabc", ads)
}

func TestSignTokenBadSignature(t *testing.T) {
	mockAccountUC := &mAccount.Usecase{}

	mockAccountUC.On("ValidateSignature", mock.Anything, domain.Address("0xabc"), "sig").
		Return(account.ErrInvalidSignature)

	u := usecase.New("jwt-secret", mockAccountUC)
	_, err := u.SignToken(ctx.Background(), "0xabc", "sig")
	assert.ErrorIs(t, err, account.ErrInvalidSignature)
}

func TestParseTokenGarbage(t *testing.T) {
	u := usecase.New("jwt-secret", &mAccount.Usecase{})
	_, err := u.ParseToken(ctx.Background(), "not-a-token")
	assert.Error(t, err)
}
