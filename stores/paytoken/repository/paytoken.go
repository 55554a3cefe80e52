package repository

import (
	bCtx "github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/base/database/mongoclient"
	"github.com/bidhaus/goapi/base/log"
	"github.com/bidhaus/goapi/domain"
	"github.com/bidhaus/goapi/service/query"
)

type payTokenMongoRepo struct {
	q query.Mongo
}

func NewPayTokenRepo(q query.Mongo) domain.PayTokenRepo {
	return &payTokenMongoRepo{
		q: q,
	}
}

func (r *payTokenMongoRepo) FindOne(ctx bCtx.Ctx, chainId domain.ChainId, tokenAddress domain.Address) (*domain.PayToken, error) {
	payToken := &domain.PayToken{}
	qry, err := mongoclient.MakeBsonM(&domain.PayToken{ChainId: chainId, Address: tokenAddress.ToLower()})
	if err != nil {
		ctx.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return nil, err
	}
	if err := r.q.FindOne(ctx, domain.TablePayTokens, qry, payToken); err == query.ErrNotFound {
		// an unknown token is a caller error, not an empty result
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	}
	return payToken, nil
}

func (r *payTokenMongoRepo) FindAll(ctx bCtx.Ctx, chainId domain.ChainId) ([]*domain.PayToken, error) {
	qry, err := mongoclient.MakeBsonM(&domain.PayToken{ChainId: chainId})
	if err != nil {
		ctx.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return nil, err
	}
	payTokens := []*domain.PayToken{}
	if err := r.q.Search(ctx, domain.TablePayTokens, 0, 1000, "symbol", qry, &payTokens); err != nil {
		ctx.WithField("err", err).Error("q.Search failed")
		return nil, err
	}
	return payTokens, nil
}

func (r *payTokenMongoRepo) Upsert(ctx bCtx.Ctx, payToken *domain.PayToken) error {
	payToken.Address = payToken.Address.ToLower()
	payToken.ChainlinkProxyAddress = payToken.ChainlinkProxyAddress.ToLower()
	selector, err := mongoclient.MakeBsonM(payToken.ToId())
	if err != nil {
		ctx.WithField("err", err).Error("failed to make bson.M")
		return err
	}
	if err := r.q.Upsert(ctx, domain.TablePayTokens, selector, payToken); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  payToken.ToId(),
		}).Error("failed to update")
		return err
	}
	return nil
}
