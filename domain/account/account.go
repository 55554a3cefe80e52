package account

import (
	"errors"
	"time"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/domain"
)

var (
	ErrInvalidNonce     = errors.New("invalid nonce")
	ErrInvalidSignature = errors.New("invalid signature")
)

// Account stores per-address profile data for marketplace participants.
type Account struct {
	Address   domain.Address `json:"address" bson:"address"`
	Alias     string         `json:"alias" bson:"alias"`
	Email     string         `json:"email" bson:"email"`
	Nonce     int64          `json:"nonce" bson:"nonce"`
	CreatedAt time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updatedAt"`
}

type Patchable struct {
	Alias     *string    `bson:"alias,omitempty"`
	Email     *string    `bson:"email,omitempty"`
	Nonce     *int64     `bson:"nonce,omitempty"`
	UpdatedAt *time.Time `bson:"updatedAt,omitempty"`
}

type Repo interface {
	Get(ctx ctx.Ctx, address domain.Address) (*Account, error)
	Insert(ctx ctx.Ctx, account *Account) error
	Update(ctx ctx.Ctx, address domain.Address, patchable Patchable) error
}

type Usecase interface {
	Get(ctx ctx.Ctx, address domain.Address) (*Account, error)
	Create(ctx ctx.Ctx, address domain.Address) (*Account, error)
	GetOrCreate(ctx ctx.Ctx, address domain.Address) (*Account, error)
	// GenerateNonce rotates the one-time nonce the client must sign to
	// authenticate.
	GenerateNonce(ctx ctx.Ctx, address domain.Address) (int64, error)
	// ValidateSignature checks a personal_sign signature over the nonce
	// message and burns the nonce.
	ValidateSignature(ctx ctx.Ctx, address domain.Address, signature string) error
	UpdateProfile(ctx ctx.Ctx, address domain.Address, alias, email *string) (*Account, error)
}
