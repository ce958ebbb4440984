package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/signalsfoundry/gw-detectability/catalog"
	"github.com/signalsfoundry/gw-detectability/core"
	"github.com/signalsfoundry/gw-detectability/internal/logging"
	"github.com/signalsfoundry/gw-detectability/internal/observability"
	"github.com/signalsfoundry/gw-detectability/internal/tableio"
	"github.com/signalsfoundry/gw-detectability/noise"
)

type config struct {
	catalogPath string
	format      string
	massUnit    string
	periodUnit  string
	distUnit    string
	harmonics   int
	tobsYears   float64
	noise       string
	reject      string
	outDir      string
	outFormat   string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.catalogPath, "catalog", "", "Path to the binary catalog (csv, json or parquet)")
	flag.StringVar(&cfg.format, "format", "", "Catalog format; inferred from the file extension when empty")
	flag.StringVar(&cfg.massUnit, "mass-unit", "kg", "Catalog mass unit (kg|msun)")
	flag.StringVar(&cfg.periodUnit, "period-unit", "s", "Catalog orbital period unit (s|hr|day|yr)")
	flag.StringVar(&cfg.distUnit, "dist-unit", "m", "Catalog distance unit (m|rsun|pc|kpc|mpc)")
	flag.IntVar(&cfg.harmonics, "harmonics", core.DefaultHarmonics, "Harmonic count N; orders 1..N-1 are summed")
	flag.Float64Var(&cfg.tobsYears, "tobs", core.DefaultObservationTime/core.SecInYear, "Observation time in years")
	flag.StringVar(&cfg.noise, "noise", "lisa", "Noise curve: lisa, or a path to a freq,ASD CSV table")
	flag.StringVar(&cfg.reject, "reject", "fail", "Policy for non-physical sources (fail|skip)")
	flag.StringVar(&cfg.outDir, "out", ".", "Directory that receives snr, psd and foreground tables")
	flag.StringVar(&cfg.outFormat, "out-format", "csv", "Output table format (csv|parquet)")
	metricsAddr := flag.String("metrics-addr", "", "HTTP address for Prometheus /metrics; empty disables")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx, log := logging.WithRunLogger(context.Background(), log)

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	var recorder core.MetricsRecorder
	var metricsSrv *http.Server
	if *metricsAddr != "" {
		collector, err := observability.NewEngineCollector(nil)
		if err != nil {
			log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
			os.Exit(1)
		}
		recorder = collector
		metricsSrv = serveMetrics(*metricsAddr, collector, log)
	}

	if err := run(ctx, cfg, log, recorder); err != nil {
		log.Error(ctx, "gwcalc failed", logging.Err(err))
		os.Exit(1)
	}

	if metricsSrv == nil {
		return
	}
	// keep /metrics up for a final scrape
	log.Info(ctx, "run complete; serving metrics until interrupted")
	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
}

func run(ctx context.Context, cfg config, log logging.Logger, recorder core.MetricsRecorder) error {
	if cfg.catalogPath == "" {
		return fmt.Errorf("-catalog is required")
	}
	policy, err := core.ParseRejectPolicy(cfg.reject)
	if err != nil {
		return err
	}
	units, err := catalog.ParseUnits(cfg.massUnit, cfg.periodUnit, cfg.distUnit)
	if err != nil {
		return err
	}
	inFormat, err := catalog.ParseFormat(cfg.format, cfg.catalogPath)
	if err != nil {
		return err
	}
	outFormat, err := tableio.ParseFormat(cfg.outFormat)
	if err != nil {
		return err
	}

	binaries, err := catalog.Open(cfg.catalogPath, inFormat, catalog.Options{
		Units:  units,
		Strict: policy == core.RejectFail,
	})
	if err != nil {
		return err
	}
	log.Info(ctx, "loaded catalog",
		logging.String("path", cfg.catalogPath),
		logging.String("format", string(inFormat)),
		logging.Int("sources", len(binaries)),
	)

	curve, err := loadNoise(cfg.noise)
	if err != nil {
		return err
	}

	opts := []core.EngineOption{
		core.WithHarmonics(cfg.harmonics),
		core.WithObservationTime(cfg.tobsYears * core.SecInYear),
		core.WithRejectPolicy(policy),
		core.WithLogger(log),
	}
	if recorder != nil {
		opts = append(opts, core.WithMetricsRecorder(recorder))
	}
	engine, err := core.NewEngine(curve, opts...)
	if err != nil {
		return err
	}

	snr, err := engine.SNR(ctx, binaries)
	if err != nil {
		return err
	}
	psd, err := engine.PSD(ctx, binaries)
	if err != nil {
		return err
	}
	fg, err := engine.Foreground(ctx, psd.Samples)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	outputs := []struct {
		name  string
		write func(*os.File) error
	}{
		{"snr", func(f *os.File) error { return tableio.SNR(f, outFormat, snr.Rows) }},
		{"psd", func(f *os.File) error { return tableio.PSD(f, outFormat, psd.Samples) }},
		{"foreground", func(f *os.File) error { return tableio.Foreground(f, outFormat, fg) }},
	}
	for _, o := range outputs {
		path := filepath.Join(cfg.outDir, o.name+outFormat.Ext())
		if err := writeFile(path, o.write); err != nil {
			return err
		}
		log.Info(ctx, "wrote table", logging.String("path", path))
	}

	log.Info(ctx, "run summary",
		logging.Int("detectable", len(snr.Rows)),
		logging.Int("rejected", len(snr.Rejected)),
		logging.Float("foreground_power", fg.TotalPower()),
	)
	return nil
}

func loadNoise(source string) (core.NoiseCurve, error) {
	if strings.EqualFold(source, "lisa") || source == "" {
		return noise.NewLISA(), nil
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("noise curve: %w", err)
	}
	defer f.Close()
	curve, err := noise.LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("noise curve %s: %w", source, err)
	}
	return curve, nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func serveMetrics(addr string, collector *observability.EngineCollector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
