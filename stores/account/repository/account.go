package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/base/database/mongoclient"
	"github.com/bidhaus/goapi/base/log"
	"github.com/bidhaus/goapi/domain"
	"github.com/bidhaus/goapi/domain/account"
	"github.com/bidhaus/goapi/service/cache"
	"github.com/bidhaus/goapi/service/cache/provider"
	"github.com/bidhaus/goapi/service/cache/provider/compound"
	"github.com/bidhaus/goapi/service/cache/provider/primitive"
	redisCache "github.com/bidhaus/goapi/service/cache/provider/redis"
	"github.com/bidhaus/goapi/service/query"
	"github.com/bidhaus/goapi/service/redis"
)

type impl struct {
	query        query.Mongo
	accountCache cache.Service
}

// New creates the account repo. The read path goes through a small
// in-process cache backed by redis, since profile reads dominate.
func New(query query.Mongo, redis redis.Service) account.Repo {
	cacheProviders := []provider.Provider{
		primitive.NewPrimitive("account", 128),
	}

	if redis != nil {
		cacheProviders = append(cacheProviders, redisCache.NewRedis(redis))
	}

	return &impl{
		query: query,
		accountCache: cache.New(cache.ServiceConfig{
			Ttl:   time.Hour,
			Pfx:   "account",
			Cache: compound.NewCompound(cacheProviders),
		}),
	}
}

func (im *impl) Get(c ctx.Ctx, address domain.Address) (*account.Account, error) {
	res := &account.Account{}

	if err := im.accountCache.GetByFunc(c, address.ToLowerStr(), res, func() (interface{}, error) {
		return im.get(c, address)
	}); err != nil {
		if err != domain.ErrNotFound {
			c.WithFields(log.Fields{
				"err":     err,
				"address": address,
			}).Error("accountCache.GetByFunc failed")
		}
		return nil, err
	}

	return res, nil
}

func (im *impl) get(c ctx.Ctx, address domain.Address) (*account.Account, error) {
	a := &account.Account{}
	err := im.query.FindOne(c, domain.TableAccounts, bson.M{"address": address.ToLowerStr()}, a)
	if err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{
			"address": address,
			"err":     err,
		}).Error("find account failed")
		return nil, err
	}
	return a, nil
}

func (im *impl) Insert(c ctx.Ctx, a *account.Account) error {
	a.Address = a.Address.ToLower()
	if err := im.query.Insert(c, domain.TableAccounts, a); err != nil {
		if err == query.ErrDuplicateKey {
			return domain.ErrConflict
		}
		c.WithFields(log.Fields{
			"address": a.Address,
			"err":     err,
		}).Error("insert account failed")
		return err
	}
	return nil
}

func (im *impl) Update(c ctx.Ctx, address domain.Address, patchable account.Patchable) error {
	updater, err := mongoclient.MakeBsonM(&patchable)
	if err != nil {
		c.WithFields(log.Fields{
			"address": address,
			"err":     err,
		}).Error("make bsonM failed")
		return err
	}

	if err := im.query.Patch(c, domain.TableAccounts, bson.M{"address": address.ToLowerStr()}, updater); err != nil {
		if err == query.ErrNotFound {
			return domain.ErrNotFound
		}
		c.WithFields(log.Fields{
			"address": address,
			"err":     err,
		}).Error("patch account failed")
		return err
	}

	// drop the cached copy so the next read sees the patch
	if err := im.accountCache.Del(c, address.ToLowerStr()); err != nil {
		c.WithFields(log.Fields{
			"address": address,
			"err":     err,
		}).Warn("invalidate account cache failed")
	}
	return nil
}
