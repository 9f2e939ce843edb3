package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bietkhonhungvandi212/bufmgr/internal/config"
	"github.com/bietkhonhungvandi212/bufmgr/internal/logger"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/buffer"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	pages := flag.Int("pages", 32, "number of pages the workload allocates")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, *pages, log); err != nil {
		log.Error("run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, pages int, log *zap.Logger) (err error) {
	fm, err := file.NewFileManager(cfg.DataFile, cfg.InitialPages)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.DataFile, err)
	}
	defer func() { err = errors.Join(err, fm.Close()) }()

	bp := buffer.NewBufferPool(cfg.Pool, log)

	reg := prometheus.NewRegistry()
	bp.SetMetrics(buffer.NewMetrics(reg))
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, reg, log)
	}

	log.Info("buffer pool ready",
		zap.Int("frames", bp.Capacity()),
		zap.String("file", fm.Identifier()),
		zap.Uint64("pages", fm.PageCount()),
	)

	return errors.Join(workload(bp, fm, pages, os.Stdout), fm.Sync())
}

// workload writes n pages through bp, reads them back and dumps the pool.
// The pool is closed on every path so dirty pages reach f.
func workload(bp *buffer.BufferPool, f file.File, n int, out io.Writer) (err error) {
	defer func() { err = errors.Join(err, bp.Close()) }()

	ids, err := populate(bp, f, n)
	if err != nil {
		return err
	}
	if err := verify(bp, f, ids); err != nil {
		return err
	}
	return bp.Inspect(out)
}

// populate allocates pages through the pool and stamps each with its number.
func populate(bp *buffer.BufferPool, f file.File, n int) ([]util.PageID, error) {
	ids := make([]util.PageID, 0, n)
	for i := 0; i < n; i++ {
		pageNo, h, err := bp.Allocate(f)
		if err != nil {
			return nil, fmt.Errorf("allocate page %d: %w", i, err)
		}
		copy(h.Page().Data[:], fmt.Sprintf("page-%d", pageNo))
		if err := h.Release(true); err != nil {
			return nil, err
		}
		ids = append(ids, pageNo)
	}
	return ids, nil
}

// verify reads every page back, evicting as it goes once n exceeds the pool.
func verify(bp *buffer.BufferPool, f file.File, ids []util.PageID) error {
	for _, pageNo := range ids {
		h, err := bp.Fetch(f, pageNo)
		if err != nil {
			return fmt.Errorf("fetch page %d: %w", pageNo, err)
		}
		want := fmt.Sprintf("page-%d", pageNo)
		got := string(h.Page().Data[:len(want)])
		if err := h.Release(false); err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("page %d holds %q, want %q", pageNo, got, want)
		}
	}
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics server stopped", zap.String("addr", addr), zap.Error(err))
	}
}
