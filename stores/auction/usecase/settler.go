package usecase

import (
	"time"

	"github.com/viney-shih/goroutines"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/base/log"
	"github.com/bidhaus/goapi/domain"
	"github.com/bidhaus/goapi/domain/auction"
	"github.com/bidhaus/goapi/domain/keys"
	"github.com/bidhaus/goapi/service/redis"
)

const (
	settlerLockTtl   = time.Minute
	settlerBatchSize = 100
)

type SettlerCfg struct {
	AuctionUseCase auction.UseCase
	AuctionRepo    auction.Repo
	Redis          redis.Service
	Interval       time.Duration
}

// Settler sweeps overdue auctions shut and finishes pending payout
// legs. A redis lock keeps concurrent replicas from settling the same
// round twice; individual transitions are still guarded by the version
// checks in the usecase.
type Settler struct {
	auctionUC  auction.UseCase
	repo       auction.Repo
	redis      redis.Service
	interval   time.Duration
	workerPool *goroutines.Pool
}

func NewSettler(cfg *SettlerCfg) *Settler {
	return &Settler{
		auctionUC:  cfg.AuctionUseCase,
		repo:       cfg.AuctionRepo,
		redis:      cfg.Redis,
		interval:   cfg.Interval,
		workerPool: goroutines.NewPool(8, goroutines.WithTaskQueueLength(settlerBatchSize)),
	}
}

// Start blocks until c is cancelled.
func (s *Settler) Start(c ctx.Ctx) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer s.workerPool.Release()

	for {
		select {
		case <-c.Done():
			return
		case <-ticker.C:
			s.sweep(c)
		}
	}
}

func (s *Settler) sweep(c ctx.Ctx) {
	lockKey := keys.RedisKey(keys.PfxLock, "settler")
	if acquired, err := s.redis.SetNX(c, lockKey, []byte("1"), settlerLockTtl); err != nil {
		c.WithField("err", err).Warn("settler lock failed")
		return
	} else if !acquired {
		return
	}
	defer func() {
		if _, err := s.redis.Del(c, lockKey); err != nil {
			c.WithField("err", err).Warn("settler unlock failed")
		}
	}()

	s.endOverdue(c)
	s.retryPending(c)
}

func (s *Settler) endOverdue(c ctx.Ctx) {
	overdue, err := s.repo.FindAll(c,
		auction.WithState(auction.StateActive),
		auction.WithEndTimeLT(time.Now()),
		auction.WithPagination(0, settlerBatchSize),
	)
	if err != nil {
		c.WithField("err", err).Error("repo.FindAll failed")
		return
	}

	for _, a := range overdue {
		id := a.Id
		s.workerPool.Schedule(func() {
			if _, err := s.auctionUC.EndAuction(c, id); err != nil && err != domain.ErrConflict {
				c.WithFields(log.Fields{
					"err":       err,
					"auctionId": id,
				}).Error("EndAuction failed")
			}
		})
	}
}

func (s *Settler) retryPending(c ctx.Ctx) {
	// withdrawn auctions can hold a pending asset-return leg too
	for _, state := range []auction.State{auction.StateEnded, auction.StateWithdrawn} {
		pending, err := s.repo.FindAll(c,
			auction.WithState(state),
			auction.WithPendingLegs(true),
			auction.WithPagination(0, settlerBatchSize),
		)
		if err != nil {
			c.WithField("err", err).Error("repo.FindAll failed")
			continue
		}

		for _, a := range pending {
			id := a.Id
			s.workerPool.Schedule(func() {
				if _, err := s.auctionUC.RetrySettlement(c, id); err != nil && err != domain.ErrConflict {
					c.WithFields(log.Fields{
						"err":       err,
						"auctionId": id,
					}).Error("RetrySettlement failed")
				}
			})
		}
	}
}
