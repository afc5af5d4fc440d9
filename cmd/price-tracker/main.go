package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/darkkaiser/price-tracker/internal/config"
	"github.com/darkkaiser/price-tracker/internal/pkg/version"
	"github.com/darkkaiser/price-tracker/internal/service"
	"github.com/darkkaiser/price-tracker/internal/service/alert"
	"github.com/darkkaiser/price-tracker/internal/service/api"
	"github.com/darkkaiser/price-tracker/internal/service/fetcher"
	"github.com/darkkaiser/price-tracker/internal/service/notification"
	"github.com/darkkaiser/price-tracker/internal/service/product"
	"github.com/darkkaiser/price-tracker/internal/service/store"
	"github.com/darkkaiser/price-tracker/internal/service/storefront"
	"github.com/darkkaiser/price-tracker/internal/service/tracker"
	applog "github.com/darkkaiser/price-tracker/pkg/log"
)

const component = "main"

const banner = `
  ____       _            _____                _
 |  _ \ _ __(_) ___ ___  |_   _| __ __ _  ___| | _____ _ __
 | |_) | '__| |/ __/ _ \   | || '__/ _' |/ __| |/ / _ \ '__|
 |  __/| |  | | (_|  __/   | || | | (_| | (__|   <  __/ |
 |_|   |_|  |_|\___\___|   |_||_|  \__,_|\___|_|\_\___|_|
                                                         %s
                                                        developed by DarkKaiser
--------------------------------------------------------------------------------
`

func main() {
	os.Exit(run())
}

func run() int {
	// 1. 환경설정 로드 (로그 설정에 필요하므로 가장 먼저 수행한다)
	appConfig, err := config.Load()
	if err != nil {
		// 로거 초기화 전이므로 표준 에러에 출력
		fmt.Fprintf(os.Stderr, "[FATAL] 환경설정 로드 실패: %v\n", err)
		return 1
	}

	// 2. 로그 시스템 초기화
	logCloser, err := applog.Setup(logOptions(appConfig))
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] 로그 시스템 초기화 실패. 서버 구동을 중단합니다. (Cause: %v)\n", err)
		return 1
	}
	defer logCloser.Close()

	buildInfo := version.Get()
	fmt.Printf(banner, buildInfo.Version)

	applog.WithComponentAndFields(component, applog.Fields{
		"version": buildInfo.String(),
		"env":     map[bool]string{true: "development", false: "production"}[appConfig.Debug],
	}).Info("서버 초기화 시작")

	for _, w := range appConfig.Warnings() {
		applog.WithComponent(component).Warn(w)
	}

	// 3. 저장소
	db, err := store.Open(appConfig.Database)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"driver": appConfig.Database.Driver,
			"error":  err,
		}).Error("데이터베이스 연결 실패")
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{"error": err}).Warn("데이터베이스 연결 종료 실패")
		}
	}()

	// 4. 서비스 구성
	pageFetcher, err := fetcher.New(appConfig.Render)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{"error": err}).Error("페이지 수집기 생성 실패")
		return 1
	}

	rule, err := alert.NewRule(appConfig.Alert)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{"error": err}).Error("알림 정책 생성 실패")
		return 1
	}

	notificationService, err := notification.NewService(appConfig.Telegram)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{"error": err}).Error("알림 서비스 생성 실패")
		return 1
	}

	dispatcher := alert.NewDispatcher(rule, db, notificationService)
	priceTracker := tracker.NewService(appConfig.Scheduler, db, pageFetcher, storefront.NewDefaultRegistry(), dispatcher)
	productService := product.NewService(db, priceTracker)
	apiService := api.NewService(appConfig, productService, priceTracker, db, buildInfo)

	serviceStopCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serviceStopWG := &sync.WaitGroup{}

	// 알림 서비스가 먼저 떠 있어야 첫 사이클의 알림이 유실되지 않는다.
	services := []service.Service{notificationService, priceTracker, apiService}
	for _, s := range services {
		serviceStopWG.Add(1)
		if err := s.Start(serviceStopCtx, serviceStopWG); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"error": err,
			}).Error("서비스 초기화 실패")

			cancel()
			serviceStopWG.Wait()
			return 1
		}
	}

	termC := make(chan os.Signal, 1)
	signal.Notify(termC, syscall.SIGINT, syscall.SIGTERM)

	applog.WithComponent(component).Info("서버 가동 완료")

	sig := <-termC

	applog.WithComponentAndFields(component, applog.Fields{
		"signal": sig.String(),
	}).Info("종료 신호 수신, 서비스를 종료합니다")

	cancel()
	serviceStopWG.Wait()

	applog.WithComponent(component).Info("서버 종료 완료")

	return 0
}

func logOptions(appConfig *config.AppConfig) applog.Options {
	var opts applog.Options
	if appConfig.Debug {
		opts = applog.NewDevelopmentOptions(config.AppName)
	} else {
		opts = applog.NewProductionOptions(config.AppName)
	}

	opts.Dir = appConfig.Log.Dir
	if appConfig.Log.MaxAge > 0 {
		opts.MaxAge = appConfig.Log.MaxAge
	}
	opts.CallerPathPrefix = "github.com/darkkaiser/price-tracker"

	return opts
}
