package auction

import (
	"time"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/domain"
)

type EventType string

const (
	EventAuctionCreated     EventType = "auctionCreated"
	EventBidPlaced          EventType = "bidPlaced"
	EventBidRefunded        EventType = "bidRefunded"
	EventAuctionEnded       EventType = "auctionEnded"
	EventAuctionCancelled   EventType = "auctionCancelled"
	EventFeeSettingsUpdated EventType = "feeSettingsUpdated"
)

// Event is an append-only record of a marketplace action, mirroring
// what an on-chain log for the same action would carry.
type Event struct {
	Id        string            `json:"id" bson:"id"`
	Type      EventType         `json:"type" bson:"type"`
	ChainId   domain.ChainId    `json:"chainId" bson:"chainId"`
	AuctionId string            `json:"auctionId,omitempty" bson:"auctionId,omitempty"`
	Actor     domain.Address    `json:"actor" bson:"actor"`
	Amount    DenominatedAmount `json:"amount,omitempty" bson:"amount,omitempty"`
	Time      time.Time         `json:"time" bson:"time"`
}

type EventFindAllOptions struct {
	AuctionId *string
	Type      *EventType
	Actor     *domain.Address
	Offset    *int32
	Limit     *int32
}

type EventFindAllOptionsFunc func(*EventFindAllOptions) error

func GetEventFindAllOptions(opts ...EventFindAllOptionsFunc) (EventFindAllOptions, error) {
	res := EventFindAllOptions{}

	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}

	return res, nil
}

func WithEventAuctionId(id string) EventFindAllOptionsFunc {
	return func(options *EventFindAllOptions) error {
		options.AuctionId = &id
		return nil
	}
}

func WithEventType(t EventType) EventFindAllOptionsFunc {
	return func(options *EventFindAllOptions) error {
		options.Type = &t
		return nil
	}
}

func WithEventActor(actor domain.Address) EventFindAllOptionsFunc {
	return func(options *EventFindAllOptions) error {
		options.Actor = &actor
		return nil
	}
}

func WithEventPagination(offset int32, limit int32) EventFindAllOptionsFunc {
	return func(options *EventFindAllOptions) error {
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

type EventRepo interface {
	FindAll(ctx ctx.Ctx, optFns ...EventFindAllOptionsFunc) ([]*Event, error)
	Insert(ctx ctx.Ctx, e *Event) error
}
