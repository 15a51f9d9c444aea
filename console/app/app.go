package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/library-admin/console/config"
	"github.com/Astemirdum/library-admin/console/internal/console"
	"github.com/Astemirdum/library-admin/console/internal/event"
	"github.com/Astemirdum/library-admin/console/internal/handler"
	"github.com/Astemirdum/library-admin/console/internal/server"
	"github.com/Astemirdum/library-admin/console/internal/service/activity"
	"github.com/Astemirdum/library-admin/console/internal/service/api"
	"github.com/Astemirdum/library-admin/pkg/kafka"
	"github.com/Astemirdum/library-admin/pkg/logger"
	"go.uber.org/zap"
)

const sweepInterval = time.Minute

func Run(cfg config.Config) {
	log := logger.NewLogger(cfg.Log, "console")

	remote, err := api.NewRemote(log, cfg.API)
	if err != nil {
		log.Fatal("api.NewRemote", zap.Error(err))
	}

	deps := console.Deps{
		Remote:   remote,
		Activity: activity.NewService(log, cfg),
		Log:      log,
	}
	var publisher *event.Publisher
	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			log.Fatal("kafka.NewProducer", zap.Error(err))
		}
		publisher = event.NewPublisher(producer, kafka.ActivityTopic, log)
		deps.Recorder = publisher
	} else {
		log.Warn("kafka is not configured, activity events are dropped")
	}

	store := handler.NewStore(deps, cfg.Session.TTL, log)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go store.Run(ctx, sweepInterval)

	h := handler.New(log, cfg, store)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Second*5)
	defer closeCancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	cancel()
	store.Close()
	if err = publisher.Close(); err != nil {
		log.Error("publisher.Close", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
}
