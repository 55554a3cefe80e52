package repository

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/base/database/mongoclient"
	"github.com/bidhaus/goapi/base/log"
	"github.com/bidhaus/goapi/domain"
	"github.com/bidhaus/goapi/domain/auction"
	"github.com/bidhaus/goapi/service/query"
)

type auctionRepo struct {
	q query.Mongo
}

func NewAuctionRepo(q query.Mongo) auction.Repo {
	return &auctionRepo{q}
}

func (r *auctionRepo) makeSelector(optFns ...auction.FindAllOptionsFunc) (bson.M, int, int, string, error) {
	opts, err := auction.GetFindAllOptions(optFns...)
	if err != nil {
		return nil, 0, 0, "", err
	}

	selector := bson.M{}
	offset := 0
	limit := 0
	sort := ""

	if opts.ChainId != nil {
		selector["chainId"] = *opts.ChainId
	}
	if opts.Seller != nil {
		selector["seller"] = opts.Seller.ToLower()
	}
	if opts.Collection != nil {
		selector["asset.collection"] = opts.Collection.ToLower()
	}
	if opts.TokenId != nil {
		selector["asset.tokenId"] = *opts.TokenId
	}
	if opts.State != nil {
		selector["state"] = *opts.State
	}
	if opts.EndTimeLT != nil {
		selector["endTime"] = bson.M{"$lt": *opts.EndTimeLT}
	}
	if opts.PendingLegs != nil {
		selector["legs"] = bson.M{"$elemMatch": bson.M{"done": !*opts.PendingLegs}}
	}
	if opts.Offset != nil {
		offset = int(*opts.Offset)
	}
	if opts.Limit != nil {
		limit = int(*opts.Limit)
	}
	if opts.Sort != nil {
		sort = *opts.Sort
	}

	return selector, offset, limit, sort, nil
}

func (r *auctionRepo) FindAll(c ctx.Ctx, optFns ...auction.FindAllOptionsFunc) ([]*auction.Auction, error) {
	selector, offset, limit, sort, err := r.makeSelector(optFns...)
	if err != nil {
		return nil, err
	}

	res := []*auction.Auction{}
	if err := r.q.Search(c, domain.TableAuctions, offset, limit, sort, selector, &res); err != nil {
		c.WithFields(log.Fields{
			"err":      err,
			"selector": selector,
		}).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

func (r *auctionRepo) Count(c ctx.Ctx, optFns ...auction.FindAllOptionsFunc) (int, error) {
	selector, _, _, _, err := r.makeSelector(optFns...)
	if err != nil {
		return 0, err
	}

	count, err := r.q.Count(c, domain.TableAuctions, selector)
	if err != nil {
		c.WithFields(log.Fields{
			"err":      err,
			"selector": selector,
		}).Error("q.Count failed")
		return 0, err
	}
	return count, nil
}

func (r *auctionRepo) FindOne(c ctx.Ctx, id string) (*auction.Auction, error) {
	res := &auction.Auction{}
	if err := r.q.FindOne(c, domain.TableAuctions, bson.M{"id": id}, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("q.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (r *auctionRepo) FindOneByAsset(c ctx.Ctx, asset auction.AssetRef) (*auction.Auction, error) {
	res := &auction.Auction{}
	selector := bson.M{
		"asset.chainId":    asset.ChainId,
		"asset.collection": asset.Collection.ToLower(),
		"asset.tokenId":    asset.TokenId,
		"state":            auction.StateActive,
	}
	if err := r.q.FindOne(c, domain.TableAuctions, selector, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"asset": asset,
		}).Error("q.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (r *auctionRepo) Insert(c ctx.Ctx, a *auction.Auction) error {
	a.LowerCase()
	if err := r.q.Insert(c, domain.TableAuctions, a); err == query.ErrDuplicateKey {
		return domain.ErrConflict
	} else if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  a.Id,
		}).Error("q.Insert failed")
		return err
	}
	return nil
}

// Patch is the only write path for live auctions. The selector pins the
// stored version, so concurrent transitions lose with
// query.ErrNotFound instead of clobbering each other.
func (r *auctionRepo) Patch(c ctx.Ctx, id string, version int64, patchable auction.Patchable) error {
	update, err := mongoclient.MakeBsonM(&patchable)
	if err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return err
	}
	selector := bson.M{"id": id, "version": version}
	if err := r.q.Patch(c, domain.TableAuctions, selector, update); err != nil {
		if err != query.ErrNotFound {
			c.WithFields(log.Fields{
				"err": err,
				"id":  id,
			}).Error("q.Patch failed")
		}
		return err
	}
	return nil
}

type counter struct {
	Name  string `bson:"name"`
	Value int64  `bson:"value"`
}

// NextIndex hands out creation-order indexes per chain, starting at 0.
func (r *auctionRepo) NextIndex(c ctx.Ctx, chainId domain.ChainId) (int64, error) {
	res := counter{}
	selector := bson.M{"name": fmt.Sprintf("auctions:%d", chainId)}
	if err := r.q.Increment(c, domain.TableCounters, selector, &res, "value", 1); err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"chainId": chainId,
		}).Error("q.Increment failed")
		return 0, err
	}
	return res.Value - 1, nil
}
