// Package main runs the routine analytics MCP server over stdio for local
// assistants. The service also mounts the same tools at /mcp over HTTP.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/2beens/routinestats/internal/analytics"
	analyticsmcp "github.com/2beens/routinestats/internal/analytics/mcp"
	"github.com/2beens/routinestats/internal/config"
	"github.com/2beens/routinestats/internal/db"
	"github.com/2beens/routinestats/internal/eventlog"
	"github.com/2beens/routinestats/internal/logging"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// stdout belongs to the MCP transport
	log.SetOutput(os.Stderr)
	log.SetLevel(logging.GetLevel(cfg.LogLevel))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBPassword:     os.Getenv("ROUTINE_DB_PASS"),
		TracingEnabled: false,
	})
	if err != nil {
		log.Fatalf("db pool: %v", err)
	}
	defer dbPool.Close()

	// every tool call reads the log fresh, the service owns the cache
	loader := analytics.NewSnapshotLoader(eventlog.NewRepo(dbPool), 0)
	service := analytics.NewService(
		loader,
		analytics.Defaults{
			Days:                    cfg.DefaultWindowDays,
			BaselineDays:            cfg.BaselineDays,
			OutlierThresholdMinutes: cfg.OutlierThresholdMinutes,
			FeedbackDays:            cfg.FeedbackWindowDays,
			AdjustmentDays:          cfg.AdjustmentWindowDays,
		},
		cfg.Location(),
	)

	server := analyticsmcp.NewServer(service)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Error(err)
	}
}
