// Package indstream is the top-level orchestrator: it wires the CSV feed,
// ring buffer, indicator engine, fan-out bus, stores, and websocket gateway
// together and manages their lifecycle.
package indstream

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"tastreamv1/config"
	"tastreamv1/internal/bus"
	"tastreamv1/internal/engine"
	"tastreamv1/internal/feed"
	"tastreamv1/internal/gateway"
	"tastreamv1/internal/metrics"
	"tastreamv1/internal/model"
	"tastreamv1/internal/ringbuf"
	redisstore "tastreamv1/internal/store/redis"
	sqlitestore "tastreamv1/internal/store/sqlite"
)

// Subscriber names in fan-out order, used as metric labels.
var subscriberNames = []string{"redis", "sqlite", "websocket"}

// Service is the top-level orchestrator for the indicator stream engine.
// It wires all dependencies, manages lifecycle, and coordinates goroutines.
type Service struct {
	cfg *config.Config

	eng    *engine.Engine
	source *feed.CSVSource
	ring   *ringbuf.Ring
	fanOut *bus.FanOut
	hub    *gateway.Hub

	redisWriter *redisstore.Writer
	breaker     *redisstore.CircuitBreaker
	sqlWriter   *sqlitestore.Writer
	sqlReader   *sqlitestore.Reader

	prom   *metrics.Metrics
	health *metrics.HealthStatus

	started time.Time
}

// New creates a new Service from the given Config.
// It builds the engine, connects to Redis, and opens SQLite.
func New(cfg *config.Config) (*Service, error) {
	svc := &Service{
		cfg:     cfg,
		prom:    metrics.NewMetrics(),
		health:  metrics.NewHealthStatus(),
		started: time.Now(),
	}

	// ---- Build engine from configured specs ----
	var err error
	svc.eng, err = engine.New(cfg.ParseIndicators())
	if err != nil {
		return nil, err
	}

	// ---- Connect to Redis ----
	svc.redisWriter, err = redisstore.New(redisstore.WriterConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return nil, err
	}
	svc.health.SetRedisConnected(true)

	svc.breaker = redisstore.NewCircuitBreaker(5, 10*time.Second)
	svc.breaker.OnStateChange = func(from, to redisstore.State) {
		svc.prom.RedisCircuitBreakerState.Set(float64(to))
		if to == redisstore.StateOpen {
			svc.prom.RedisCircuitBreakerTrips.Inc()
		}
	}

	// ---- Open SQLite ----
	os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755)
	svc.sqlWriter, err = sqlitestore.New(sqlitestore.WriterConfig{DBPath: cfg.SQLitePath})
	if err != nil {
		log.Printf("[indstream] WARNING: sqlite writer init failed: %v (continuing without persistence)", err)
		svc.sqlWriter = nil
	} else {
		svc.health.SetSQLiteOK(true)
	}

	svc.sqlReader, err = sqlitestore.NewReader(cfg.SQLitePath)
	if err != nil {
		log.Printf("[indstream] WARNING: sqlite reader init failed: %v (continuing without warm-up)", err)
		svc.sqlReader = nil
	}

	// ---- Pipeline components ----
	svc.ring = ringbuf.New(cfg.RingSize)
	svc.fanOut = bus.New(cfg.BusBuffer)
	svc.fanOut.OnDrop = func(idx int) {
		if idx < len(subscriberNames) {
			svc.prom.FanoutDropsTotal.WithLabelValues(subscriberNames[idx]).Inc()
		}
	}

	svc.source = feed.New(cfg.CSVPath, cfg.Symbol)
	svc.source.OnSkip = svc.prom.BarsRejected.Inc

	svc.hub = gateway.NewHub()
	svc.hub.OnClientCountChange = func(n int) {
		svc.prom.WSClients.Set(float64(n))
	}

	return svc, nil
}

// Run starts all subsystems and blocks until ctx is cancelled.
func (svc *Service) Run(ctx context.Context) error {
	cfg := svc.cfg
	log.Println("[indstream] starting indicator stream engine...")

	// ---- Warm up indicators from persisted bars ----
	svc.warmup()

	// ---- Channels between stages ----
	engineOut := make(chan *model.IndicatorUpdate, cfg.BusBuffer)
	busIn := make(chan *model.IndicatorUpdate, cfg.BusBuffer)
	barCh := make(chan model.Bar, cfg.RingSize)

	svc.eng.OnCompute = func(d time.Duration) {
		svc.prom.ComputeDur.Observe(d.Seconds())
	}
	svc.eng.OnBar = func(bar model.Bar) {
		svc.prom.BarsTotal.Inc()
		svc.health.SetLastBarTime(bar.Timestamp())
		select {
		case barCh <- bar:
		default:
			log.Printf("[indstream] bar persistence channel full, dropping %s bar", bar.Symbol())
		}
	}

	// ---- Fan-out subscriptions (order matches subscriberNames) ----
	redisSub := svc.fanOut.Subscribe()
	sqliteSub := svc.fanOut.Subscribe()
	wsSub := svc.fanOut.Subscribe()

	// ---- Redis consumer: circuit breaker + local buffering ----
	buffered := redisstore.NewBufferedWriter(ctx, svc.redisWriter, svc.breaker, 10000)
	buffered.OnBuffer = svc.prom.RedisBufferedWrites.Inc
	go svc.redisLoop(ctx, buffered, redisSub)

	// ---- SQLite consumers ----
	if svc.sqlWriter != nil {
		svc.sqlWriter.OnCommit = func(d time.Duration) {
			svc.prom.SQLiteCommitDur.Observe(d.Seconds())
		}
		go svc.sqlWriter.RunUpdates(ctx, sqliteSub)
		go svc.sqlWriter.RunBars(ctx, barCh)
	}

	// ---- Websocket gateway ----
	go svc.hub.Run(ctx, wsSub)
	svc.hub.StartStatsBroadcast(ctx, svc.started, 10*time.Second)
	mux := http.NewServeMux()
	gateway.RegisterRoutes(mux, svc.hub, svc.redisWriter.Client(), svc.eng.Indicators(), svc.started)
	go gateway.Serve(ctx, cfg.GatewayAddr, mux)

	// ---- Engine + instrumentation tee ----
	go svc.fanOut.Run(ctx, busIn)
	go svc.teeLoop(ctx, engineOut, busIn)
	go svc.eng.Run(ctx, svc.ring, engineOut)
	svc.health.SetEngineOK(true)

	// ---- Feed ----
	go func() {
		svc.health.SetFeedActive(true)
		defer svc.health.SetFeedActive(false)
		if err := svc.source.Run(ctx, svc.ring, cfg.FeedSpeed); err != nil && ctx.Err() == nil {
			log.Printf("[indstream] feed stopped: %v", err)
		}
	}()

	// ---- Metrics + health server ----
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, svc.health)
	metricsSrv.Start()
	var healthDB *sql.DB
	if svc.sqlWriter != nil {
		healthDB = svc.sqlWriter.DB()
	}
	svc.health.StartLivenessChecker(ctx, svc.redisWriter.Client(), healthDB, 10*time.Second)
	go svc.monitorLoop(ctx, busIn, barCh)

	// ---- Startup banner ----
	log.Println("[indstream] ╔══════════════════════════════════════════════════════╗")
	log.Println("[indstream] ║  Indicator Stream Engine Active                      ║")
	log.Println("[indstream] ║                                                      ║")
	log.Println("[indstream] ║  [CSV Feed] → [Engine] → [Redis | SQLite | WS]       ║")
	log.Printf("[indstream] ║  Indicators: %-39v ║", cfg.Indicators)
	log.Printf("[indstream] ║  Gateway %-8s  Metrics %-8s            ║", cfg.GatewayAddr, cfg.MetricsAddr)
	log.Println("[indstream] ╚══════════════════════════════════════════════════════╝")
	log.Println("[indstream] ✅ all systems running. Press Ctrl+C to stop.")

	// Block until context cancelled
	<-ctx.Done()

	// ---- Graceful shutdown ----
	svc.shutdown(metricsSrv)
	return nil
}

// warmup replays recent persisted bars through the engine so windowed
// indicators start primed instead of emitting cold values.
func (svc *Service) warmup() {
	if svc.sqlReader == nil || svc.cfg.WarmupBars <= 0 {
		return
	}

	symbols, err := svc.sqlReader.Symbols()
	if err != nil {
		log.Printf("[indstream] warm-up: symbol scan failed: %v", err)
		return
	}
	if len(symbols) == 0 {
		log.Println("[indstream] warm-up: no persisted bars, starting cold")
		return
	}

	total := 0
	for _, symbol := range symbols {
		bars, err := svc.sqlReader.ReadRecentBars(symbol, svc.cfg.WarmupBars)
		if err != nil {
			log.Printf("[indstream] warm-up: read %s: %v", symbol, err)
			continue
		}
		total += svc.eng.Warmup(bars)
	}
	svc.prom.WarmupBarsTotal.Add(float64(total))
	svc.health.SetSymbols(svc.eng.Symbols())
	log.Printf("[indstream] warm-up: replayed %d bars across %d symbols", total, len(symbols))
}

// teeLoop forwards engine output to the bus, counting updates per indicator.
func (svc *Service) teeLoop(ctx context.Context, in <-chan *model.IndicatorUpdate, out chan<- *model.IndicatorUpdate) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-in:
			if !ok {
				close(out)
				return
			}
			svc.prom.UpdatesTotal.WithLabelValues(u.Name).Inc()
			select {
			case out <- u:
			case <-ctx.Done():
				return
			}
		}
	}
}

// redisLoop drains the bus subscription into the buffered Redis writer.
func (svc *Service) redisLoop(ctx context.Context, bw *redisstore.BufferedWriter, in <-chan *model.IndicatorUpdate) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-in:
			if !ok {
				return
			}
			start := time.Now()
			if err := bw.WriteUpdate(u); err != nil && err != redisstore.ErrCircuitOpen {
				log.Printf("[indstream] redis write %s: %v", u.Key(), err)
			}
			svc.prom.RedisWriteDur.Observe(time.Since(start).Seconds())
		}
	}
}

// monitorLoop periodically samples channel saturation, ring buffer
// overflow, and the set of symbols seen.
func (svc *Service) monitorLoop(ctx context.Context, busIn chan *model.IndicatorUpdate, barCh chan model.Bar) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	var lastOverflow uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.prom.ChannelSaturationPct.WithLabelValues("bus_input").
				Set(float64(len(busIn)) / float64(cap(busIn)) * 100)
			svc.prom.ChannelSaturationPct.WithLabelValues("bar_persist").
				Set(float64(len(barCh)) / float64(cap(barCh)) * 100)
			svc.prom.ChannelSaturationPct.WithLabelValues("ring").
				Set(float64(svc.ring.Len()) / float64(svc.ring.Cap()) * 100)

			for i, stat := range svc.fanOut.ChannelStats() {
				if i >= len(subscriberNames) || stat.Cap == 0 {
					continue
				}
				svc.prom.ChannelSaturationPct.WithLabelValues("fanout_"+subscriberNames[i]).
					Set(float64(stat.Len) / float64(stat.Cap) * 100)
			}

			if overflow := svc.ring.Overflow(); overflow > lastOverflow {
				svc.prom.RingBufOverflow.Add(float64(overflow - lastOverflow))
				lastOverflow = overflow
			}

			svc.health.SetSymbols(svc.eng.Symbols())
		}
	}
}

// shutdown closes stores and stops the metrics server.
func (svc *Service) shutdown(metricsSrv *metrics.Server) {
	log.Println("[indstream] shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	metricsSrv.Stop(shutdownCtx)

	if svc.sqlWriter != nil {
		svc.sqlWriter.Close()
	}
	if svc.sqlReader != nil {
		svc.sqlReader.Close()
	}
	svc.redisWriter.Close()

	log.Println("[indstream] shutdown complete")
}
