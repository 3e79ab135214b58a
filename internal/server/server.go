// Package server exposes the data services over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taikodata/internal/chains"
	"taikodata/internal/metrics"
	"taikodata/internal/model"
)

// TokenService answers token queries routed by chain.
type TokenService interface {
	TopTokens(ctx context.Context, id chains.ChainID, period model.TimePeriod, filter string) (model.TopTokens, error)
	TokenQuery(ctx context.Context, id chains.ChainID, address string) (*model.NormalizedToken, error)
	TokenPriceQuery(ctx context.Context, id chains.ChainID, address string, duration model.TimePeriod) (*model.TokenPrice, error)
}

// PoolService answers pool detail queries.
type PoolService interface {
	PoolDetail(ctx context.Context, id chains.ChainID, pool string) (*model.Pool, error)
	PoolChartData(ctx context.Context, id chains.ChainID, pool string, period model.TimePeriod) ([]model.ChartDataPoint, error)
}

// ActivityService answers account activity queries.
type ActivityService interface {
	All(ctx context.Context, id chains.ChainID, account string) ([]model.Activity, error)
	RecordPending(ctx context.Context, id chains.ChainID, account string, a model.Activity) (model.Activity, error)
}

// PortfolioService answers balance and valuation queries.
type PortfolioService interface {
	TokenBalances(ctx context.Context, id chains.ChainID, account string) ([]model.TokenBalance, error)
	Value(ctx context.Context, id chains.ChainID, account string) (model.PortfolioValue, error)
}

// ChainService reads token data straight from chain.
type ChainService interface {
	TokenMeta(ctx context.Context, id chains.ChainID, address string) (model.TokenMeta, error)
}

// SnapshotService reads persisted top-token snapshots.
type SnapshotService interface {
	LatestSnapshots(ctx context.Context, chainID uint64, period string) ([]model.TokenSnapshot, error)
}

// Services bundles the handlers' dependencies. Nil services answer 404.
type Services struct {
	Tokens    TokenService
	Pools     PoolService
	Activity  ActivityService
	Portfolio PortfolioService
	Chain     ChainService
	Snapshots SnapshotService
}

// Server is the HTTP API.
type Server struct {
	engine  *gin.Engine
	svc     Services
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New builds the router. m may be nil to disable /metrics.
func New(svc Services, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{engine: gin.New(), svc: svc, metrics: m, logger: logger}
	s.engine.Use(requestID(), accessLog(logger, m), gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	v1 := s.engine.Group("/v1/chains/:chain")
	v1.GET("/tokens", s.topTokens)
	v1.GET("/tokens/:address", s.token)
	v1.GET("/tokens/:address/price", s.tokenPrice)
	v1.GET("/tokens/:address/onchain", s.tokenOnChain)
	v1.GET("/snapshots/latest", s.latestSnapshots)
	v1.GET("/pools/:address", s.pool)
	v1.GET("/pools/:address/chart", s.poolChart)
	v1.GET("/accounts/:account/activity", s.activity)
	v1.POST("/accounts/:account/pending", s.recordPending)
	v1.GET("/accounts/:account/balances", s.balances)
	v1.GET("/accounts/:account/portfolio", s.portfolio)
}

// Handler returns the http.Handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http listen", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
