// Package api 추적 상품 관리와 수동 가격 확인을 위한 HTTP API 서버입니다.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/darkkaiser/price-tracker/internal/config"
	"github.com/darkkaiser/price-tracker/internal/pkg/version"
	"github.com/darkkaiser/price-tracker/internal/service/api/auth"
	"github.com/darkkaiser/price-tracker/internal/service/api/constants"
	"github.com/darkkaiser/price-tracker/internal/service/api/handler/system"
	v1 "github.com/darkkaiser/price-tracker/internal/service/api/v1"
	v1handler "github.com/darkkaiser/price-tracker/internal/service/api/v1/handler"
	applog "github.com/darkkaiser/price-tracker/pkg/log"
	"github.com/labstack/echo/v4"
)

// shutdownTimeout Graceful Shutdown 최대 대기 시간
const shutdownTimeout = 5 * time.Second

// Service API 서버의 생명주기를 관리합니다. Start로 시작하고 serviceStopCtx 취소로 종료합니다.
type Service struct {
	appConfig *config.AppConfig

	products v1handler.ProductService
	trigger  v1handler.CycleTrigger
	db       system.Pinger

	buildInfo version.Info

	running   bool
	runningMu sync.Mutex
}

func NewService(appConfig *config.AppConfig, products v1handler.ProductService, trigger v1handler.CycleTrigger, db system.Pinger, buildInfo version.Info) *Service {
	if appConfig == nil {
		panic("AppConfig는 필수입니다")
	}
	if products == nil {
		panic("ProductService는 필수입니다")
	}
	if trigger == nil {
		panic("CycleTrigger는 필수입니다")
	}
	if db == nil {
		panic("Pinger는 필수입니다")
	}

	return &Service{
		appConfig: appConfig,
		products:  products,
		trigger:   trigger,
		db:        db,
		buildInfo: buildInfo,
	}
}

// Start API 서버를 별도 고루틴에서 시작합니다. 즉시 반환합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStarting)

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(constants.ComponentService).Warn(constants.LogMsgServiceAlreadyStarted)
		return nil
	}

	s.running = true

	go s.runServiceLoop(serviceStopCtx, serviceStopWG)

	applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStarted)

	return nil
}

func (s *Service) runServiceLoop(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	e := s.setupServer()

	httpServerDone := make(chan struct{})
	go s.startHTTPServer(e, httpServerDone)

	s.waitForShutdown(serviceStopCtx, e, httpServerDone)
}

// setupServer 인증기, 핸들러, 미들웨어, 라우트를 구성한 Echo 인스턴스를 반환합니다.
func (s *Service) setupServer() *echo.Echo {
	authenticator := auth.NewAuthenticator(s.appConfig.API.AppKeys)

	systemHandler := system.NewHandler(s.db, s.buildInfo)
	v1Handler := v1handler.NewHandler(s.products, s.trigger)

	e := NewHTTPServer(HTTPServerConfig{
		Debug:        s.appConfig.Debug,
		AllowOrigins: s.appConfig.API.AllowOrigins,
	})

	RegisterRoutes(e, systemHandler)
	v1.RegisterRoutes(e, v1Handler, authenticator)

	return e
}

func (s *Service) startHTTPServer(e *echo.Echo, done chan struct{}) {
	defer close(done)

	port := s.appConfig.API.ListenPort
	applog.WithComponentAndFields(constants.ComponentService, applog.Fields{
		"port": port,
	}).Info(constants.LogMsgHTTPServerStarting)

	err := e.Start(fmt.Sprintf(":%d", port))

	switch {
	case err == nil:
	case errors.Is(err, http.ErrServerClosed):
		applog.WithComponent(constants.ComponentService).Info(constants.LogMsgHTTPServerStopped)
	default:
		applog.WithComponentAndFields(constants.ComponentService, applog.Fields{
			"port":  port,
			"error": err,
		}).Error(constants.LogMsgHTTPServerFatalError)
	}
}

// waitForShutdown 종료 신호나 서버의 조기 종료를 기다린 뒤 정리합니다.
func (s *Service) waitForShutdown(serviceStopCtx context.Context, e *echo.Echo, httpServerDone chan struct{}) {
	select {
	case <-serviceStopCtx.Done():
		applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStopping)

	case <-httpServerDone:
		// 포트 바인딩 실패 등으로 서버가 먼저 종료된 경우
		applog.WithComponent(constants.ComponentService).Error(constants.LogMsgServiceUnexpectedExit)
		s.cleanup()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		applog.WithComponentAndFields(constants.ComponentService, applog.Fields{
			"error": err,
		}).Error(constants.LogMsgHTTPServerShutdownError)
	}

	<-httpServerDone

	s.cleanup()
}

func (s *Service) cleanup() {
	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStopped)
}
