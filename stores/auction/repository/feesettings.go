package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/base/log"
	"github.com/bidhaus/goapi/domain"
	"github.com/bidhaus/goapi/domain/auction"
	"github.com/bidhaus/goapi/service/query"
)

type feeSettingsDoc struct {
	ChainId             domain.ChainId `bson:"chainId"`
	auction.FeeSettings `bson:"inline"`
}

type feeSettingsRepo struct {
	q query.Mongo
}

func NewFeeSettingsRepo(q query.Mongo) auction.FeeSettingsRepo {
	return &feeSettingsRepo{q}
}

func (r *feeSettingsRepo) Get(c ctx.Ctx, chainId domain.ChainId) (*auction.FeeSettings, error) {
	res := &feeSettingsDoc{}
	if err := r.q.FindOne(c, domain.TableFeeSettings, bson.M{"chainId": chainId}, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"chainId": chainId,
		}).Error("q.FindOne failed")
		return nil, err
	}
	return &res.FeeSettings, nil
}

func (r *feeSettingsRepo) Upsert(c ctx.Ctx, chainId domain.ChainId, settings auction.FeeSettings) error {
	settings.Recipient = settings.Recipient.ToLower()
	doc := &feeSettingsDoc{ChainId: chainId, FeeSettings: settings}
	if err := r.q.Upsert(c, domain.TableFeeSettings, bson.M{"chainId": chainId}, doc); err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"chainId": chainId,
		}).Error("q.Upsert failed")
		return err
	}
	return nil
}
