package healthcheck

import (
	"github.com/bidhaus/goapi/base/ctx"
)

type HealthCheckRepo interface {
	PingDB(ctx ctx.Ctx) error
}

type HealthCheckUsecase interface {
	Check(ctx ctx.Ctx) error
}
