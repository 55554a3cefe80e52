package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/base/database/mongoclient"
	"github.com/bidhaus/goapi/base/database/redisclient"
	"github.com/bidhaus/goapi/base/log"
	"github.com/bidhaus/goapi/base/metrics"
	bValidator "github.com/bidhaus/goapi/base/validator"
	"github.com/bidhaus/goapi/domain"
	auctionDomain "github.com/bidhaus/goapi/domain/auction"
	mmiddleware "github.com/bidhaus/goapi/middleware"
	"github.com/bidhaus/goapi/service/chain"
	"github.com/bidhaus/goapi/service/chain/contract"
	pricefeed_service "github.com/bidhaus/goapi/service/pricefeed"
	"github.com/bidhaus/goapi/service/query"
	"github.com/bidhaus/goapi/service/redis"
	account_delivery "github.com/bidhaus/goapi/stores/account/delivery/http"
	account_repository "github.com/bidhaus/goapi/stores/account/repository"
	account_usecase "github.com/bidhaus/goapi/stores/account/usecase"
	auction_delivery "github.com/bidhaus/goapi/stores/auction/delivery/http"
	auction_repository "github.com/bidhaus/goapi/stores/auction/repository"
	auction_usecase "github.com/bidhaus/goapi/stores/auction/usecase"
	auth_delivery "github.com/bidhaus/goapi/stores/auth/delivery/http"
	auth_middleware "github.com/bidhaus/goapi/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/bidhaus/goapi/stores/auth/usecase"
	deposit_delivery "github.com/bidhaus/goapi/stores/deposit/delivery/http"
	deposit_repository "github.com/bidhaus/goapi/stores/deposit/repository"
	deposit_usecase "github.com/bidhaus/goapi/stores/deposit/usecase"
	hc_delivery "github.com/bidhaus/goapi/stores/healthcheck/delivery/http"
	hc_repo "github.com/bidhaus/goapi/stores/healthcheck/repository"
	hc_usecase "github.com/bidhaus/goapi/stores/healthcheck/usecase"
	paytoken_delivery "github.com/bidhaus/goapi/stores/paytoken/delivery/http"
	paytoken_repository "github.com/bidhaus/goapi/stores/paytoken/repository"
	pricefeed_usecase "github.com/bidhaus/goapi/stores/pricefeed/usecase"
)

func init() {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(`infra/configs/config.yaml`)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	// init mongo client
	context.Info("init mongo")
	uri := viper.GetString("mongo.uri")
	authDBName := viper.GetString("mongo.authDBName")
	dbName := viper.GetString("mongo.dbName")
	enableSSL := viper.GetBool("mongo.enableSSL")
	checkIndex := viper.GetBool("mongo.checkIndex")
	mongoClient := mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
	q := query.New(mongoClient, checkIndex)

	// init redis service
	context.Info("init redis cache")
	redisCacheName := viper.GetString("redis_cache.name")
	redisCacheURI := viper.GetString("redis_cache.uri")
	redisCachePwd := viper.GetString("redis_cache.password")
	redisCachePoolMultiplier := viper.GetFloat64("redis_cache.poolMultiplier")
	redisCachePool := redisclient.MustConnectRedis(redisCacheURI, redisCachePwd, redisclient.RedisParam{
		PoolMultiplier: redisCachePoolMultiplier,
		Retry:          true,
	})
	redisCache := redis.New(redisCacheName, metrics.New(redisCacheName), redisCachePool)

	mmiddleware.SetupCache(redisCache)

	// init chain service
	networks := viper.Sub("networks")
	networkKeys := networks.AllSettings()
	rpcs := make(map[int32]string)
	for k := range networkKeys {
		chainId := networks.GetInt32(fmt.Sprintf("%s.chainId", k))
		rpcUrl := networks.GetString(fmt.Sprintf("%s.rpcUrl", k))
		rpcs[chainId] = rpcUrl
	}
	chainService, err := chain.NewClient(context, &chain.ClientCfg{
		RpcUrls: rpcs,
	})
	if err != nil {
		context.WithField("err", err).Warn("chainService started with error")
	}
	sender, err := chain.NewSender(context, &chain.SenderCfg{
		RpcUrls:    rpcs,
		PrivateKey: viper.GetString("operator.privateKey"),
	})
	if err != nil {
		context.WithField("err", err).Panic("sender init failed")
	}
	operator := domain.Address(strings.ToLower(sender.Operator().Hex()))

	erc721Service := contract.NewErc721(chainService, sender)
	pricefeedService := pricefeed_service.New(chainService)

	// construct repository, usecase and delivery
	hcRepo := hc_repo.New(mongoClient, redisCache)
	accountRepo := account_repository.New(q, redisCache)
	paytokenRepo := paytoken_repository.NewPayTokenRepo(q)
	depositRepo := deposit_repository.New(q)
	auctionRepo := auction_repository.NewAuctionRepo(q)
	feeSettingsRepo := auction_repository.NewFeeSettingsRepo(q)
	eventRepo := auction_repository.NewEventRepo(q)

	hc := hc_usecase.New(hcRepo)
	account := account_usecase.New(&account_usecase.AccountUsecaseCfg{
		AccountRepo:  accountRepo,
		SignatureMsg: viper.GetString("auth.signatureMsg"),
	})
	auth := auth_usecase.New(viper.GetString("auth.jwtSecret"), account)
	normalizer := pricefeed_usecase.New(pricefeedService, paytokenRepo)
	deposit := deposit_usecase.New(&deposit_usecase.DepositUseCaseCfg{
		DepositRepo: depositRepo,
	})
	auction := auction_usecase.New(&auction_usecase.AuctionUseCaseCfg{
		AuctionRepo:     auctionRepo,
		FeeSettingsRepo: feeSettingsRepo,
		EventRepo:       eventRepo,
		Custody:         erc721Service,
		Normalizer:      normalizer,
		Payments:        deposit,
		Operator:        operator,
		DefaultFee: auctionDomain.FeeSettings{
			Percentage: viper.GetInt64("fee.defaultPercentage"),
			Recipient:  domain.Address(viper.GetString("fee.defaultRecipient")).ToLower(),
		},
	})

	adminAddresses := viper.GetStringSlice("admin.addresses")
	authMiddleware := auth_middleware.New(auth, adminAddresses)

	hc_delivery.New(e, hc)
	auth_delivery.New(e, auth, viper.GetString("auth.signatureMsg"))
	account_delivery.New(e, account, authMiddleware)
	paytoken_delivery.New(e, paytokenRepo, authMiddleware)
	deposit_delivery.New(e, deposit, authMiddleware)
	auction_delivery.New(e, auction, eventRepo, authMiddleware)

	// background settlement sweep
	settler := auction_usecase.NewSettler(&auction_usecase.SettlerCfg{
		AuctionUseCase: auction,
		AuctionRepo:    auctionRepo,
		Redis:          redisCache,
		Interval:       viper.GetDuration("settler.interval"),
	})
	settlerCtx, stopSettler := ctx.WithCancel(context)
	go settler.Start(settlerCtx)

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	stopSettler()
	shutdownCtx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
