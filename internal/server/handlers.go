package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"taikodata/internal/chains"
	"taikodata/internal/model"
)

func chainParam(c *gin.Context) (chains.ChainID, bool) {
	id, err := chains.ParseChainID(c.Param("chain"))
	if err != nil {
		abortWithError(c, fmt.Errorf("%s: %w", err.Error(), model.ErrInvalidInput))
		return 0, false
	}
	return id, true
}

func periodQuery(c *gin.Context, key string) (model.TimePeriod, bool) {
	period, err := model.ParseTimePeriod(c.Query(key))
	if err != nil {
		abortWithError(c, fmt.Errorf("%s: %w", err.Error(), model.ErrInvalidInput))
		return 0, false
	}
	return period, true
}

func (s *Server) topTokens(c *gin.Context) {
	id, ok := chainParam(c)
	if !ok {
		return
	}
	period, ok := periodQuery(c, "period")
	if !ok {
		return
	}
	if s.svc.Tokens == nil {
		abortWithError(c, model.ErrUnsupportedChain)
		return
	}
	top, err := s.svc.Tokens.TopTokens(c.Request.Context(), id, period, c.Query("filter"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, top)
}

func (s *Server) latestSnapshots(c *gin.Context) {
	id, ok := chainParam(c)
	if !ok {
		return
	}
	period, ok := periodQuery(c, "period")
	if !ok {
		return
	}
	if s.svc.Snapshots == nil {
		abortWithError(c, model.ErrUnsupportedChain)
		return
	}
	rows, err := s.svc.Snapshots.LatestSnapshots(c.Request.Context(), uint64(id), period.String())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if rows == nil {
		rows = []model.TokenSnapshot{}
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": rows})
}

func (s *Server) token(c *gin.Context) {
	id, ok := chainParam(c)
	if !ok {
		return
	}
	if s.svc.Tokens == nil {
		abortWithError(c, model.ErrUnsupportedChain)
		return
	}
	token, err := s.svc.Tokens.TokenQuery(c.Request.Context(), id, c.Param("address"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) tokenPrice(c *gin.Context) {
	id, ok := chainParam(c)
	if !ok {
		return
	}
	duration := model.PeriodFromHistoryDuration(c.Query("duration"))
	if s.svc.Tokens == nil {
		abortWithError(c, model.ErrUnsupportedChain)
		return
	}
	price, err := s.svc.Tokens.TokenPriceQuery(c.Request.Context(), id, c.Param("address"), duration)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, price)
}

func (s *Server) tokenOnChain(c *gin.Context) {
	id, ok := chainParam(c)
	if !ok {
		return
	}
	if s.svc.Chain == nil {
		abortWithError(c, model.ErrUnsupportedChain)
		return
	}
	meta, err := s.svc.Chain.TokenMeta(c.Request.Context(), id, c.Param("address"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (s *Server) pool(c *gin.Context) {
	id, ok := chainParam(c)
	if !ok {
		return
	}
	if s.svc.Pools == nil {
		abortWithError(c, model.ErrUnsupportedChain)
		return
	}
	pool, err := s.svc.Pools.PoolDetail(c.Request.Context(), id, c.Param("address"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pool)
}

func (s *Server) poolChart(c *gin.Context) {
	id, ok := chainParam(c)
	if !ok {
		return
	}
	period, ok := periodQuery(c, "period")
	if !ok {
		return
	}
	if s.svc.Pools == nil {
		abortWithError(c, model.ErrUnsupportedChain)
		return
	}
	points, err := s.svc.Pools.PoolChartData(c.Request.Context(), id, c.Param("address"), period)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": points})
}

func (s *Server) activity(c *gin.Context) {
	id, ok := chainParam(c)
	if !ok {
		return
	}
	if s.svc.Activity == nil {
		abortWithError(c, model.ErrUnsupportedChain)
		return
	}
	activities, err := s.svc.Activity.All(c.Request.Context(), id, c.Param("account"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if activities == nil {
		activities = []model.Activity{}
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

func (s *Server) recordPending(c *gin.Context) {
	id, ok := chainParam(c)
	if !ok {
		return
	}
	var body model.Activity
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, fmt.Errorf("decode activity: %s: %w", err.Error(), model.ErrInvalidInput))
		return
	}
	if s.svc.Activity == nil {
		abortWithError(c, model.ErrUnsupportedChain)
		return
	}
	stored, err := s.svc.Activity.RecordPending(c.Request.Context(), id, c.Param("account"), body)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stored)
}

func (s *Server) balances(c *gin.Context) {
	id, ok := chainParam(c)
	if !ok {
		return
	}
	if s.svc.Portfolio == nil {
		abortWithError(c, model.ErrUnsupportedChain)
		return
	}
	balances, err := s.svc.Portfolio.TokenBalances(c.Request.Context(), id, c.Param("account"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if balances == nil {
		balances = []model.TokenBalance{}
	}
	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

func (s *Server) portfolio(c *gin.Context) {
	id, ok := chainParam(c)
	if !ok {
		return
	}
	if s.svc.Portfolio == nil {
		abortWithError(c, model.ErrUnsupportedChain)
		return
	}
	value, err := s.svc.Portfolio.Value(c.Request.Context(), id, c.Param("account"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, value)
}
