package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/base/log"
	"github.com/bidhaus/goapi/domain"
	"github.com/bidhaus/goapi/domain/auction"
	"github.com/bidhaus/goapi/service/query"
)

type eventRepo struct {
	q query.Mongo
}

func NewEventRepo(q query.Mongo) auction.EventRepo {
	return &eventRepo{q}
}

func (r *eventRepo) FindAll(c ctx.Ctx, optFns ...auction.EventFindAllOptionsFunc) ([]*auction.Event, error) {
	opts, err := auction.GetEventFindAllOptions(optFns...)
	if err != nil {
		return nil, err
	}

	selector := bson.M{}
	offset := 0
	limit := 0
	if opts.AuctionId != nil {
		selector["auctionId"] = *opts.AuctionId
	}
	if opts.Type != nil {
		selector["type"] = *opts.Type
	}
	if opts.Actor != nil {
		selector["actor"] = opts.Actor.ToLower()
	}
	if opts.Offset != nil {
		offset = int(*opts.Offset)
	}
	if opts.Limit != nil {
		limit = int(*opts.Limit)
	}

	res := []*auction.Event{}
	if err := r.q.Search(c, domain.TableAuctionEvents, offset, limit, "-time", selector, &res); err != nil {
		c.WithFields(log.Fields{
			"err":      err,
			"selector": selector,
		}).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

func (r *eventRepo) Insert(c ctx.Ctx, e *auction.Event) error {
	e.Actor = e.Actor.ToLower()
	if err := r.q.Insert(c, domain.TableAuctionEvents, e); err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  e.Id,
		}).Error("q.Insert failed")
		return err
	}
	return nil
}
