package redis

import (
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/base/metrics"
	"github.com/bidhaus/goapi/domain/keys"
)

const (
	// Forever disables expiration for Set family commands
	Forever = time.Duration(-1)

	// retTTLNoKey is the return value of TTL when the key does not exist
	retTTLNoKey = -2
)

type redImpl struct {
	name string
	met  metrics.Service
	pool *redis.Pool
}

// New creates a redis service backed by a single redigo pool.
func New(name string, met metrics.Service, pool *redis.Pool) Service {
	return &redImpl{
		name: name,
		met:  met,
		pool: pool,
	}
}

func (r *redImpl) connDo(context ctx.Ctx, commandName string, args ...interface{}) (interface{}, error) {
	conn := r.pool.Get()
	if err := conn.Err(); err != nil {
		r.met.BumpSum("getConn.err", 1, "cluster", r.name, "reason", err.Error())
		return nil, err
	}

	reply, err := conn.Do(commandName, args...)

	// Close asap so the pool holds fewer live connections.
	if cerr := conn.Close(); cerr != nil {
		r.met.BumpSum("conn.Close.err", 1, "cluster", r.name)
	}
	return reply, err
}

func (r *redImpl) Get(context ctx.Ctx, key string) ([]byte, error) {
	tags := []string{"func", "get", "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()

	val, err := redis.Bytes(r.connDo(context, "GET", key))
	if err == redis.ErrNil {
		return nil, ErrNotFound
	}
	if err != nil {
		context.WithField("err", err).Error("Get redis failed")
		return nil, err
	}
	r.met.BumpHistogram("bytes", float64(len(val)), tags...)
	return val, nil
}

func (r *redImpl) Set(context ctx.Ctx, key string, val []byte, expire time.Duration) error {
	tags := []string{"func", "set", "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()
	r.met.BumpHistogram("bytes", float64(len(val)), tags...)

	var err error
	if expire == Forever {
		_, err = r.connDo(context, "SET", key, val)
	} else {
		_, err = r.connDo(context, "SET", key, val, "PX", int(expire/time.Millisecond))
	}
	if err != nil {
		context.WithField("err", err).Error("Set redis failed")
	}
	return err
}

func (r *redImpl) SetNX(context ctx.Ctx, key string, val []byte, expire time.Duration) (bool, error) {
	tags := []string{"func", "setnx", "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()

	var reply interface{}
	var err error
	if expire == Forever {
		reply, err = r.connDo(context, "SET", key, val, "NX")
	} else {
		reply, err = r.connDo(context, "SET", key, val, "NX", "PX", int(expire/time.Millisecond))
	}
	if err != nil {
		context.WithField("err", err).Error("SetNX redis failed")
		return false, err
	}
	// SET with NX replies nil when the key already exists.
	return reply != nil, nil
}

func (r *redImpl) Del(context ctx.Ctx, ks ...string) (int, error) {
	tags := []string{"func", "del", "cluster", r.name, "prefix", metrics.TagValueNA}
	defer r.met.BumpTime("time", tags...).End()

	args := make([]interface{}, 0, len(ks))
	for _, k := range ks {
		args = append(args, k)
	}
	n, err := redis.Int(r.connDo(context, "DEL", args...))
	if err != nil {
		context.WithField("err", err).Error("Del redis failed")
		return 0, err
	}
	return n, nil
}

func (r *redImpl) Exists(context ctx.Ctx, key string) (bool, error) {
	tags := []string{"func", "exists", "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()

	n, err := redis.Int(r.connDo(context, "EXISTS", key))
	if err != nil {
		context.WithField("err", err).Error("Exists redis failed")
		return false, err
	}
	return n == 1, nil
}

func (r *redImpl) Expire(context ctx.Ctx, key string, ttl time.Duration) error {
	tags := []string{"func", "expire", "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()

	reply, err := redis.Int(r.connDo(context, "EXPIRE", key, int(ttl/time.Second)))
	if err != nil {
		context.WithField("err", err).Error("Expire redis failed")
		return err
	}
	// Reply is 0 if the key does not exist.
	if reply != 1 {
		return ErrNotFound
	}
	return nil
}

func (r *redImpl) TTL(context ctx.Ctx, key string) (int, error) {
	tags := []string{"func", "ttl", "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()

	ttl, err := redis.Int(r.connDo(context, "TTL", key))
	if err != nil {
		context.WithField("err", err).Error("TTL redis failed")
		return 0, err
	}
	if ttl == retTTLNoKey {
		return 0, ErrNotFound
	}
	return ttl, nil
}

func (r *redImpl) Incr(context ctx.Ctx, key string) (int64, error) {
	tags := []string{"func", "incr", "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()

	val, err := redis.Int64(r.connDo(context, "INCR", key))
	if err != nil {
		context.WithField("err", err).Error("Incr redis failed")
		return 0, err
	}
	return val, nil
}

func (r *redImpl) Incrby(context ctx.Ctx, key string, inc int) (int64, error) {
	tags := []string{"func", "incrby", "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()

	val, err := redis.Int64(r.connDo(context, "INCRBY", key, inc))
	if err != nil {
		context.WithField("err", err).Error("Incrby redis failed")
		return 0, err
	}
	return val, nil
}
