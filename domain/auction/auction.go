package auction

import (
	"math/big"
	"time"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/domain"
)

type State string

const (
	StateActive    State = "active"
	StateEnded     State = "ended"
	StateWithdrawn State = "withdrawn"
)

// AssetRef identifies a single ERC721 token on a chain.
type AssetRef struct {
	ChainId    domain.ChainId `json:"chainId" bson:"chainId"`
	Collection domain.Address `json:"collection" bson:"collection"`
	TokenId    domain.TokenId `json:"tokenId" bson:"tokenId"`
}

func (a *AssetRef) LowerCase() {
	a.Collection = a.Collection.ToLower()
}

// DenominatedAmount is a token amount paired with the currency it is
// denominated in. An empty or zero PayToken means the chain's native
// currency. Amount is a base-10 unsigned integer string in the
// currency's smallest unit.
type DenominatedAmount struct {
	Amount   string         `json:"amount" bson:"amount"`
	PayToken domain.Address `json:"payToken" bson:"payToken"`
}

func (d DenominatedAmount) IsNative() bool {
	return d.PayToken.IsEmpty()
}

func (d DenominatedAmount) AmountBig() (*big.Int, error) {
	v, ok := new(big.Int).SetString(d.Amount, 10)
	if !ok || v.Sign() < 0 {
		return nil, domain.ErrInvalidNumberFormat
	}
	return v, nil
}

type Bid struct {
	Bidder   domain.Address    `json:"bidder" bson:"bidder"`
	Amount   DenominatedAmount `json:"amount" bson:"amount"`
	// Normalized is the bid value converted to the chain's native
	// currency via the price reference, used only for ordering bids
	// across currencies.
	Normalized string    `json:"normalized" bson:"normalized"`
	PlacedAt   time.Time `json:"placedAt" bson:"placedAt"`
}

func (b *Bid) NormalizedBig() (*big.Int, error) {
	v, ok := new(big.Int).SetString(b.Normalized, 10)
	if !ok || v.Sign() < 0 {
		return nil, domain.ErrInvalidNumberFormat
	}
	return v, nil
}

// FeeSettings is the platform fee policy. Percentage is in basis
// points and may not exceed MaxFeePercentage.
type FeeSettings struct {
	Percentage int64          `json:"percentage" bson:"percentage"`
	Recipient  domain.Address `json:"recipient" bson:"recipient"`
	UpdatedAt  time.Time      `json:"updatedAt" bson:"updatedAt"`
}

const MaxFeePercentage = 1000

func (f FeeSettings) Validate() error {
	if f.Percentage < 0 || f.Percentage > MaxFeePercentage {
		return domain.ErrFeeTooHigh
	}
	return nil
}

// CalculateFee returns amount * percentage / 10000, truncated.
func (f FeeSettings) CalculateFee(amount *big.Int) *big.Int {
	fee := new(big.Int).Mul(amount, big.NewInt(f.Percentage))
	return fee.Div(fee, domain.Big10000)
}

type LegKind string

const (
	LegKindFee      LegKind = "fee"
	LegKindProceeds LegKind = "proceeds"
	// LegKindAsset moves the escrowed token itself; Amount is unused.
	LegKindAsset LegKind = "asset"
)

// SettlementLeg is one pending transfer recorded during settlement.
// Legs are persisted before disbursement so a crash between the state
// transition and the payouts can be recovered.
type SettlementLeg struct {
	Kind   LegKind           `json:"kind" bson:"kind"`
	Payee  domain.Address    `json:"payee" bson:"payee"`
	Amount DenominatedAmount `json:"amount" bson:"amount"`
	Done   bool              `json:"done" bson:"done"`
}

// Refund is an amount a displaced bidder can pull back out.
type Refund struct {
	Bidder domain.Address    `json:"bidder" bson:"bidder"`
	Amount DenominatedAmount `json:"amount" bson:"amount"`
}

// MergeRefund folds r into refunds without mutating the input,
// combining it with an existing claim of the same bidder and
// denomination so a twice-displaced bidder holds a single claim.
func MergeRefund(refunds []Refund, r Refund) ([]Refund, error) {
	merged := make([]Refund, len(refunds))
	copy(merged, refunds)
	for i := range merged {
		if merged[i].Bidder.Equals(r.Bidder) && merged[i].Amount.PayToken.Equals(r.Amount.PayToken) {
			cur, err := merged[i].Amount.AmountBig()
			if err != nil {
				return nil, err
			}
			add, err := r.Amount.AmountBig()
			if err != nil {
				return nil, err
			}
			merged[i].Amount.Amount = new(big.Int).Add(cur, add).String()
			return merged, nil
		}
	}
	return append(merged, r), nil
}

type Auction struct {
	Id      string `json:"id" bson:"id"`
	ChainId domain.ChainId `json:"chainId" bson:"chainId"`
	// Index is the auction's position in creation order, starting at 0.
	Index        int64             `json:"index" bson:"index"`
	Seller       domain.Address    `json:"seller" bson:"seller"`
	Asset        AssetRef          `json:"asset" bson:"asset"`
	ReservePrice DenominatedAmount `json:"reservePrice" bson:"reservePrice"`
	StartTime    time.Time         `json:"startTime" bson:"startTime"`
	EndTime      time.Time         `json:"endTime" bson:"endTime"`
	State        State             `json:"state" bson:"state"`
	HighestBid   *Bid              `json:"highestBid,omitempty" bson:"highestBid,omitempty"`
	// Fee is snapshotted from the registry's settings at creation so a
	// later policy change cannot move the goalposts mid-auction.
	Fee     FeeSettings     `json:"fee" bson:"fee"`
	Refunds []Refund        `json:"refunds" bson:"refunds"`
	Legs    []SettlementLeg `json:"legs" bson:"legs"`
	Winner  domain.Address  `json:"winner" bson:"winner"`
	// Version guards compare-and-swap updates on state transitions.
	Version   int64     `json:"version" bson:"version"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (a *Auction) LowerCase() {
	a.Seller = a.Seller.ToLower()
	a.Winner = a.Winner.ToLower()
	a.Asset.LowerCase()
	a.ReservePrice.PayToken = a.ReservePrice.PayToken.ToLower()
}

func (a *Auction) HasBid() bool {
	return a.HighestBid != nil
}

func (a *Auction) Closed(now time.Time) bool {
	return a.State != StateActive || !now.Before(a.EndTime)
}

// MeetsReserve reports whether the highest bid's normalized value is at
// least the normalized reserve.
func (a *Auction) MeetsReserve(normalizedReserve *big.Int) (bool, error) {
	if a.HighestBid == nil {
		return false, nil
	}
	v, err := a.HighestBid.NormalizedBig()
	if err != nil {
		return false, err
	}
	return v.Cmp(normalizedReserve) >= 0, nil
}

// RefundFor returns the pending refund for bidder, or nil.
func (a *Auction) RefundFor(bidder domain.Address) *Refund {
	for i := range a.Refunds {
		if a.Refunds[i].Bidder.Equals(bidder) {
			return &a.Refunds[i]
		}
	}
	return nil
}

type Patchable struct {
	State      *State           `bson:"state,omitempty"`
	HighestBid *Bid             `bson:"highestBid,omitempty"`
	Refunds    *[]Refund        `bson:"refunds,omitempty"`
	Legs       *[]SettlementLeg `bson:"legs,omitempty"`
	Winner     *domain.Address  `bson:"winner,omitempty"`
	Version    *int64           `bson:"version,omitempty"`
	UpdatedAt  *time.Time       `bson:"updatedAt,omitempty"`
}

type FindAllOptions struct {
	ChainId    *domain.ChainId
	Seller     *domain.Address
	Collection *domain.Address
	TokenId    *domain.TokenId
	State       *State
	EndTimeLT   *time.Time
	PendingLegs *bool
	Offset      *int32
	Limit       *int32
	Sort        *string
}

type FindAllOptionsFunc func(*FindAllOptions) error

func GetFindAllOptions(opts ...FindAllOptionsFunc) (FindAllOptions, error) {
	res := FindAllOptions{}

	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}

	return res, nil
}

func WithChainId(chainId domain.ChainId) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.ChainId = &chainId
		return nil
	}
}

func WithSeller(seller domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Seller = &seller
		return nil
	}
}

func WithAsset(collection domain.Address, tokenId domain.TokenId) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Collection = &collection
		options.TokenId = &tokenId
		return nil
	}
}

func WithState(state State) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.State = &state
		return nil
	}
}

func WithPendingLegs(pending bool) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.PendingLegs = &pending
		return nil
	}
}

func WithEndTimeLT(t time.Time) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.EndTimeLT = &t
		return nil
	}
}

func WithPagination(offset int32, limit int32) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

func WithSort(sort string) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Sort = &sort
		return nil
	}
}

type Repo interface {
	FindAll(ctx ctx.Ctx, optFns ...FindAllOptionsFunc) ([]*Auction, error)
	Count(ctx ctx.Ctx, optFns ...FindAllOptionsFunc) (int, error)
	FindOne(ctx ctx.Ctx, id string) (*Auction, error)
	FindOneByAsset(ctx ctx.Ctx, asset AssetRef) (*Auction, error)
	Insert(ctx ctx.Ctx, a *Auction) error
	// Patch applies patchable to the auction only if its stored version
	// still equals version, and returns query.ErrNotFound otherwise.
	Patch(ctx ctx.Ctx, id string, version int64, patchable Patchable) error
	NextIndex(ctx ctx.Ctx, chainId domain.ChainId) (int64, error)
}

type FeeSettingsRepo interface {
	Get(ctx ctx.Ctx, chainId domain.ChainId) (*FeeSettings, error)
	Upsert(ctx ctx.Ctx, chainId domain.ChainId, settings FeeSettings) error
}

type CreateAuctionPayload struct {
	ChainId      domain.ChainId    `json:"chainId"`
	Seller       domain.Address    `json:"seller"`
	Asset        AssetRef          `json:"asset"`
	ReservePrice DenominatedAmount `json:"reservePrice"`
	Duration     int64             `json:"duration"`
}

type PlaceBidPayload struct {
	Bidder domain.Address    `json:"bidder"`
	Amount DenominatedAmount `json:"amount"`
}

type UseCase interface {
	CreateAuction(ctx ctx.Ctx, payload CreateAuctionPayload) (*Auction, error)
	GetAuction(ctx ctx.Ctx, id string) (*Auction, error)
	SearchAuctions(ctx ctx.Ctx, optFns ...FindAllOptionsFunc) ([]*Auction, int, error)
	GetAuctionsCount(ctx ctx.Ctx, chainId domain.ChainId) (int64, error)
	PlaceBid(ctx ctx.Ctx, id string, payload PlaceBidPayload) (*Auction, error)
	WithdrawRefund(ctx ctx.Ctx, id string, bidder domain.Address) (*Refund, error)
	EndAuction(ctx ctx.Ctx, id string) (*Auction, error)
	RetrySettlement(ctx ctx.Ctx, id string) (*Auction, error)
	CancelAuction(ctx ctx.Ctx, id string, seller domain.Address) (*Auction, error)
	CalculateFee(ctx ctx.Ctx, chainId domain.ChainId, amount string) (string, error)
	GetFeeSettings(ctx ctx.Ctx, chainId domain.ChainId) (*FeeSettings, error)
	SetFeeSettings(ctx ctx.Ctx, chainId domain.ChainId, settings FeeSettings) error
}
