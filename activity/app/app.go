package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/library-admin/activity/config"
	"github.com/Astemirdum/library-admin/activity/internal/handler"
	"github.com/Astemirdum/library-admin/activity/internal/repository"
	"github.com/Astemirdum/library-admin/activity/internal/server"
	"github.com/Astemirdum/library-admin/activity/internal/service"
	"github.com/Astemirdum/library-admin/activity/migrations"
	"github.com/Astemirdum/library-admin/pkg/kafka"
	"github.com/Astemirdum/library-admin/pkg/logger"
	"github.com/Astemirdum/library-admin/pkg/postgres"
	"go.uber.org/zap"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "activity")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}
	svc := service.NewService(repo, log)

	consumeCtx, stopConsume := context.WithCancel(context.Background())
	defer stopConsume()
	consumer, err := kafka.NewConsumer(cfg.Kafka, kafka.ActivityConsumerGroup)
	if err != nil {
		log.Fatal("kafka.NewConsumer", zap.Error(err))
	}
	go kafka.Consume(consumeCtx, consumer, handler.NewConsumer(svc.Record, log), log, kafka.ActivityTopic)

	h := handler.New(svc, log)
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

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	stopConsume()
	if err = consumer.Close(); err != nil {
		log.Error("consumer.Close", zap.Error(err))
	}
	db.Close()
	log.Info("Graceful shutdown finished")
}
