package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/eda"
	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/engine"
	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/infrastructure"
	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/model"
	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/storage"
	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/strategy"
)

type Handler struct {
	db      *pgxpool.Pool
	js      nats.JetStreamContext
	auth    *Auth
	loader  *engine.DataLoader
	workers int
	logger  *zap.Logger
}

func NewHandler(db *pgxpool.Pool, js nats.JetStreamContext, auth *Auth, workers int, logger *zap.Logger) *Handler {
	return &Handler{
		db:      db,
		js:      js,
		auth:    auth,
		loader:  engine.NewDataLoader(db),
		workers: workers,
		logger:  logger,
	}
}

// Auth handlers

func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	var userID int64
	err = h.db.QueryRow(c.Request.Context(),
		"INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id",
		req.Email, string(hash)).Scan(&userID)

	if err != nil {
		h.logger.Error("failed to register user", zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": "email already exists"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "user created", "id": userID})
}

func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var userID int64
	var hash string
	err := h.db.QueryRow(c.Request.Context(),
		"SELECT id, password_hash FROM users WHERE email = $1", req.Email).Scan(&userID, &hash)

	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	token, err := h.auth.GenerateToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Data handlers

func normalizeSymbol(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "/", "")
	return s
}

func (h *Handler) GetHistoryKLines(c *gin.Context) {
	symbol := normalizeSymbol(c.Param("symbol"))
	timeframe := c.DefaultQuery("timeframe", "15m")

	rows, err := h.db.Query(c.Request.Context(),
		"SELECT time, symbol, period, open, high, low, close, volume, spread FROM klines WHERE symbol = $1 AND period = $2 ORDER BY time DESC LIMIT 100",
		symbol, timeframe)
	if err != nil {
		h.logger.Error("failed to query klines", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	defer rows.Close()

	bars := make([]model.PriceBar, 0)
	for rows.Next() {
		var b model.PriceBar
		if err := rows.Scan(&b.Timestamp, &b.Symbol, &b.Timeframe, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &b.Spread); err != nil {
			h.logger.Error("failed to scan kline", zap.Error(err))
			continue
		}
		bars = append(bars, b)
	}

	c.JSON(http.StatusOK, bars)
}

func (h *Handler) GetEDA(c *gin.Context) {
	symbol := normalizeSymbol(c.Param("symbol"))
	timeframe := c.DefaultQuery("timeframe", "15m")

	start, end, err := parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bars, err := h.loader.LoadCandles(c.Request.Context(), symbol, timeframe, start, end)
	if err != nil {
		h.logger.Error("failed to load candles for eda", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load data"})
		return
	}

	c.JSON(http.StatusOK, eda.Describe(bars, 20))
}

func parseRange(c *gin.Context) (time.Time, time.Time, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, -3, 0)
	if raw := c.Query("start"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return start, end, fmt.Errorf("invalid start: %w", err)
		}
		start = ts
	}
	if raw := c.Query("end"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return start, end, fmt.Errorf("invalid end: %w", err)
		}
		end = ts
	}
	return start, end, nil
}

// Backtest handler

type backtestRequest struct {
	Pairs           []model.Pair           `json:"pairs" binding:"required,min=1"`
	StrategyType    string                 `json:"strategy_type" binding:"required"`
	Config          map[string]interface{} `json:"config"`
	InitialCash     decimal.Decimal        `json:"initial_cash"`
	PeriodsPerYear  float64                `json:"periods_per_year"`
	UseLaggedSignal bool                   `json:"use_lagged_signal"`
	StartTime       time.Time              `json:"start_time" binding:"required"`
	EndTime         time.Time              `json:"end_time" binding:"required"`
}

type pairResult struct {
	Pair        model.Pair                `json:"pair"`
	Error       string                    `json:"error,omitempty"`
	TotalTrades int                       `json:"total_trades"`
	Summary     *model.PerformanceSummary `json:"summary,omitempty"`
}

func (h *Handler) RunBacktest(c *gin.Context) {
	var req backtestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.InitialCash.IsZero() {
		req.InitialCash = decimal.NewFromInt(1000)
	}
	if req.PeriodsPerYear == 0 {
		req.PeriodsPerYear = 252 * 24 * 4 // 15-minute bars
	}

	gen, err := strategy.New(req.StrategyType, req.Config)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sim, err := engine.NewSimulator(engine.SimConfig{
		InitialCash:     req.InitialCash,
		UseLaggedSignal: req.UseLaggedSignal,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Pairs whose history cannot be loaded become failed outcomes; the rest
	// proceed through the pool.
	jobs := make([]engine.PairJob, 0, len(req.Pairs))
	failed := make([]engine.PairOutcome, 0)
	for _, p := range req.Pairs {
		pair := model.Pair{Symbol: normalizeSymbol(p.Symbol), Timeframe: p.Timeframe}
		bars, err := h.loader.LoadCandles(c.Request.Context(), pair.Symbol, pair.Timeframe, req.StartTime, req.EndTime)
		if err != nil {
			h.logger.Error("failed to load candles", zap.String("pair", pair.String()), zap.Error(err))
			failed = append(failed, engine.PairOutcome{Pair: pair, Err: err})
			continue
		}
		jobs = append(jobs, engine.PairJob{Pair: pair, Bars: bars})
	}

	pool := engine.NewPool(h.workers, gen, sim, req.PeriodsPerYear, h.logger)
	outcomes := append(pool.Run(c.Request.Context(), jobs), failed...)

	results := make([]pairResult, 0, len(outcomes))
	for _, o := range outcomes {
		r := pairResult{Pair: o.Pair}
		if o.Err != nil {
			r.Error = o.Err.Error()
		} else {
			summary := o.Report.Summary
			r.Summary = &summary
			r.TotalTrades = len(o.Report.Trades)
			h.publishReport(o.Report)
			h.persistReport(c, o.Report)
		}
		results = append(results, r)
	}

	c.JSON(http.StatusOK, gin.H{
		"results":   results,
		"aggregate": engine.Aggregate(outcomes),
	})
}

// publishReport pushes a completed report onto the stream for live
// subscribers. Best-effort: failures are counted and logged, never fatal.
func (h *Handler) publishReport(report *model.BacktestReport) {
	if h.js == nil {
		return
	}
	subject := fmt.Sprintf("backtest.report.%s.%s", report.Pair.Symbol, report.Pair.Timeframe)
	data, err := json.Marshal(report)
	if err != nil {
		h.logger.Error("failed to marshal report", zap.Error(err))
		return
	}
	if _, err := h.js.Publish(subject, data); err != nil {
		infrastructure.ReportPublishErrors.Inc()
		h.logger.Error("failed to publish report", zap.String("subject", subject), zap.Error(err))
	}
}

func (h *Handler) persistReport(c *gin.Context, report *model.BacktestReport) {
	if _, err := storage.SaveReport(c.Request.Context(), h.db, report); err != nil {
		h.logger.Error("failed to persist report", zap.String("pair", report.Pair.String()), zap.Error(err))
	}
}
