package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/esportehub/equipment-reservation/config"
	"github.com/esportehub/equipment-reservation/internal/clock"
	"github.com/esportehub/equipment-reservation/internal/events"
	"github.com/esportehub/equipment-reservation/internal/handler"
	"github.com/esportehub/equipment-reservation/internal/repository"
	"github.com/esportehub/equipment-reservation/internal/server"
	"github.com/esportehub/equipment-reservation/internal/service"
	"github.com/esportehub/equipment-reservation/migrations"
	"github.com/esportehub/equipment-reservation/pkg/kafka"
	"github.com/esportehub/equipment-reservation/pkg/logger"
	"github.com/esportehub/equipment-reservation/pkg/postgres"
)

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "reservation")

	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return fmt.Errorf("db init %v", err)
	}

	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return fmt.Errorf("repo init %v", err)
	}

	var (
		producer sarama.SyncProducer
		pub      *events.Publisher
	)
	if cfg.Kafka.Enabled {
		producer, err = kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return fmt.Errorf("kafka producer %v", err)
		}
		pub = events.NewPublisher(producer, cfg.Kafka.Topic, log)
	}

	svc := service.NewService(repo, clock.NewSystem(), pub, log)
	h := handler.New(svc, log)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Run(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Debug("Graceful shutdown")

		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := srv.Stop(closeCtx); err != nil {
			log.Error("srv.Stop", zap.Error(err))
		}
		if producer != nil {
			if err := producer.Close(); err != nil {
				log.Error("producer.Close", zap.Error(err))
			}
		}
		db.Close()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Graceful shutdown finished")
	return nil
}
