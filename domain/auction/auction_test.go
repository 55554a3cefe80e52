package auction

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bidhaus/goapi/domain"
)

func TestCalculateFee(t *testing.T) {
	cases := []struct {
		name       string
		percentage int64
		amount     string
		want       string
	}{
		{
			name:       "2.5% of round amount",
			percentage: 250,
			amount:     "1000000000000000000",
			want:       "25000000000000000",
		},
		{
			name:       "truncates toward zero",
			percentage: 250,
			amount:     "3",
			want:       "0",
		},
		{
			name:       "max fee",
			percentage: 1000,
			amount:     "12345",
			want:       "1234",
		},
		{
			name:       "zero fee",
			percentage: 0,
			amount:     "12345",
			want:       "0",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			amount, ok := new(big.Int).SetString(c.amount, 10)
			assert.True(t, ok)
			settings := FeeSettings{Percentage: c.percentage}
			assert.Equal(t, c.want, settings.CalculateFee(amount).String())
		})
	}
}

func TestFeeSettingsValidate(t *testing.T) {
	assert.NoError(t, FeeSettings{Percentage: 0}.Validate())
	assert.NoError(t, FeeSettings{Percentage: 1000}.Validate())
	assert.ErrorIs(t, FeeSettings{Percentage: 1001}.Validate(), domain.ErrFeeTooHigh)
	assert.ErrorIs(t, FeeSettings{Percentage: -1}.Validate(), domain.ErrFeeTooHigh)
}

func TestDenominatedAmount(t *testing.T) {
	native := DenominatedAmount{Amount: "100"}
	assert.True(t, native.IsNative())

	zeroAddr := DenominatedAmount{Amount: "100", PayToken: domain.Address("0x0000000000000000000000000000000000000000")}
	assert.True(t, zeroAddr.IsNative())

	erc20 := DenominatedAmount{Amount: "100", PayToken: domain.Address("0x6b175474e89094c44da98b954eedeac495271d0f")}
	assert.False(t, erc20.IsNative())

	v, err := erc20.AmountBig()
	assert.NoError(t, err)
	assert.Equal(t, "100", v.String())

	_, err = DenominatedAmount{Amount: "abc"}.AmountBig()
	assert.ErrorIs(t, err, domain.ErrInvalidNumberFormat)

	_, err = DenominatedAmount{Amount: "-1"}.AmountBig()
	assert.ErrorIs(t, err, domain.ErrInvalidNumberFormat)
}

func TestAuctionClosed(t *testing.T) {
	now := time.Now()
	a := &Auction{State: StateActive, EndTime: now.Add(time.Hour)}
	assert.False(t, a.Closed(now))
	assert.True(t, a.Closed(now.Add(time.Hour)))
	assert.True(t, a.Closed(now.Add(2*time.Hour)))

	a.State = StateEnded
	assert.True(t, a.Closed(now))
}

func TestMeetsReserve(t *testing.T) {
	a := &Auction{}
	ok, err := a.MeetsReserve(big.NewInt(100))
	assert.NoError(t, err)
	assert.False(t, ok)

	a.HighestBid = &Bid{Normalized: "99"}
	ok, err = a.MeetsReserve(big.NewInt(100))
	assert.NoError(t, err)
	assert.False(t, ok)

	a.HighestBid.Normalized = "100"
	ok, err = a.MeetsReserve(big.NewInt(100))
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestRefundFor(t *testing.T) {
	a := &Auction{
		Refunds: []Refund{
			{Bidder: domain.Address("0xAaAa"), Amount: DenominatedAmount{Amount: "10"}},
			{Bidder: domain.Address("0xbbbb"), Amount: DenominatedAmount{Amount: "20"}},
		},
	}

	r := a.RefundFor(domain.Address("0xaaaa"))
	assert.NotNil(t, r)
	assert.Equal(t, "10", r.Amount.Amount)

	assert.Nil(t, a.RefundFor(domain.Address("0xcccc")))
}

func TestMergeRefund(t *testing.T) {
	refunds := []Refund{
		{Bidder: domain.Address("0xaaaa"), Amount: DenominatedAmount{Amount: "10"}},
	}

	// different bidder appends
	merged, err := MergeRefund(refunds, Refund{
		Bidder: domain.Address("0xbbbb"),
		Amount: DenominatedAmount{Amount: "20"},
	})
	assert.NoError(t, err)
	assert.Len(t, merged, 2)

	// same bidder and denomination folds into one claim
	merged, err = MergeRefund(merged, Refund{
		Bidder: domain.Address("0xAAAA"),
		Amount: DenominatedAmount{Amount: "5"},
	})
	assert.NoError(t, err)
	assert.Len(t, merged, 2)
	assert.Equal(t, "15", merged[0].Amount.Amount)

	// same bidder in another denomination stays a separate claim
	merged, err = MergeRefund(merged, Refund{
		Bidder: domain.Address("0xaaaa"),
		Amount: DenominatedAmount{Amount: "7", PayToken: domain.Address("0x6b175474e89094c44da98b954eedeac495271d0f")},
	})
	assert.NoError(t, err)
	assert.Len(t, merged, 3)

	// the input slice is left alone
	assert.Equal(t, "10", refunds[0].Amount.Amount)
}
