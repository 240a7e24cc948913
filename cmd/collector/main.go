package main

import (
	"context"

	"github.com/fvsutils/closings/internal/bootstrap"
	"github.com/fvsutils/closings/internal/config"
	"github.com/fvsutils/closings/internal/infrastructure/logx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	log := logx.L()
	ctx := context.Background()
	cfg := config.Load()

	ins, err := config.LoadInstruments(cfg.InstrumentsPath)
	if err != nil {
		log.Fatal("load instruments", zap.Error(err))
	}
	log.Info("collection starting",
		zap.Int("stocks", len(ins.Stocks)),
		zap.Int("fiis", len(ins.FIIs)),
	)

	db, cleanup, err := bootstrap.BuildDB(ctx, cfg)
	if err != nil {
		log.Fatal("bootstrap db", zap.Error(err))
	}
	defer cleanup()

	collector := bootstrap.BuildCollector(cfg, db)
	summary, err := collector.Run(ctx, ins.Stocks, ins.FIIs)
	if err != nil {
		cleanup()
		log.Fatal("collection run failed", zap.Error(err))
	}

	log.Info("collection finished",
		zap.Int("total", summary.Total),
		zap.Int("stocks", summary.Stocks),
		zap.Int("funds", summary.Funds),
		zap.String("date", summary.Date),
	)
}
