package auction

import (
	"math/big"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/domain"
)

// AssetCustody verifies and moves the auctioned token. The registry
// must hold the token (or an approval for it) for the auction's whole
// lifetime so settlement cannot fail for lack of the asset.
type AssetCustody interface {
	// OwnerOf returns the current owner of the token.
	OwnerOf(ctx ctx.Ctx, asset AssetRef) (domain.Address, error)
	// IsApproved reports whether operator may transfer the token on the
	// owner's behalf.
	IsApproved(ctx ctx.Ctx, asset AssetRef, owner, operator domain.Address) (bool, error)
	// Transfer moves the token from its current holder to recipient.
	Transfer(ctx ctx.Ctx, asset AssetRef, from, to domain.Address) (domain.TxHash, error)
}

// PriceNormalizer converts amounts between currencies so that bids in
// different tokens can be compared. Rates are read fresh on every call.
type PriceNormalizer interface {
	// ToNative converts amount of payToken into the chain's native
	// currency. A zero payToken is the identity conversion.
	ToNative(ctx ctx.Ctx, chainId domain.ChainId, payToken domain.Address, amount *big.Int) (*big.Int, error)
}

// PaymentService holds bidders' escrowed funds and pays them out.
type PaymentService interface {
	// Collect moves amount from payer into the auction's escrow and
	// fails with domain.ErrInsufficientFunds when the payer's balance
	// cannot cover it.
	Collect(ctx ctx.Ctx, auctionId string, payer domain.Address, amount DenominatedAmount) error
	// Disburse moves amount out of the auction's escrow to payee.
	Disburse(ctx ctx.Ctx, auctionId string, payee domain.Address, amount DenominatedAmount) error
}
