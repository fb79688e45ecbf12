package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"answerbridge/internal/ai"
	"answerbridge/internal/app"
	"answerbridge/internal/config"
	"answerbridge/internal/extract"
	"answerbridge/internal/pkg/logger"
	mysqlClient "answerbridge/internal/platform/mysql"
	rabbitmqClient "answerbridge/internal/platform/rabbitmq"
	redisClient "answerbridge/internal/platform/redis"
	"answerbridge/internal/repository"
	"answerbridge/internal/stats"
	"answerbridge/internal/worker"
)

type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	AskService *app.AskService
	Stats      *stats.Counter // nil unless redis is enabled

	MySQL       *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	EventWorker *worker.AskEventWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	a := &App{
		Config:    cfg,
		Logger:    logger.New(os.Stdout, cfg.App.LogLevel, cfg.App.LogFormat),
		StartedAt: time.Now(),
	}
	if err := a.init(ctx); err != nil {
		if closeErr := a.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	completer, err := ai.New(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("build completion client failed: %w", err)
	}

	var observers []app.AskObserver

	if cfg.Redis.Enabled {
		a.Redis, err = redisClient.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		a.Stats = stats.NewCounter(a.Redis)
		observers = append(observers, a.Stats)
	}

	if cfg.MySQL.Enabled {
		a.MySQL, err = mysqlClient.New(ctx, cfg.MySQLDSN(), a.Logger)
		if err != nil {
			return err
		}
	}

	if cfg.RabbitMQ.Enabled {
		a.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			return err
		}
		if err := rabbitmqClient.DeclareQueue(a.MQConn, cfg.RabbitMQ.EventQueue); err != nil {
			return err
		}
		observers = append(observers, rabbitmqClient.NewEventPublisher(a.MQConn, cfg.RabbitMQ.EventQueue))
	}

	if a.MySQL != nil {
		repo := repository.NewAskEventRepository(a.MySQL)
		if a.MQConn != nil {
			a.EventWorker = worker.NewAskEventWorker(a.MQConn, repo, cfg.RabbitMQ.EventQueue, a.Logger)
			if err := a.EventWorker.Start(ctx); err != nil {
				return fmt.Errorf("start ask event worker failed: %w", err)
			}
		} else {
			observers = append(observers, repo)
		}
	}

	extractor := extract.New(extract.Config{
		MaxArchiveBytes: cfg.Upload.MaxBytes,
		MaxEntryBytes:   cfg.Upload.MaxEntryBytes,
	})
	a.AskService = app.NewAskService(extractor, completer, a.Logger, observers...)

	a.Logger.Info("app initialized",
		slog.String("provider", cfg.LLM.Provider),
		slog.String("model", cfg.LLM.Model),
		slog.Bool("redis", cfg.Redis.Enabled),
		slog.Bool("rabbitmq", cfg.RabbitMQ.Enabled),
		slog.Bool("mysql", cfg.MySQL.Enabled),
	)
	return nil
}

func (a *App) Close() error {
	var closeErr error
	if a.EventWorker != nil {
		a.EventWorker.Close()
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		if err := a.MQConn.Close(); err != nil {
			closeErr = errors.Join(closeErr, err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = errors.Join(closeErr, err)
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = errors.Join(closeErr, err)
			}
		}
	}
	return closeErr
}
