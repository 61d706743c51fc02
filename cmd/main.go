package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KhmerCoders/khmercoders-web/internal/api"
	"github.com/KhmerCoders/khmercoders-web/internal/config"
	"github.com/KhmerCoders/khmercoders-web/internal/exchange/consumer"
	"github.com/KhmerCoders/khmercoders-web/internal/exchange/producer"
	"github.com/KhmerCoders/khmercoders-web/internal/repository/events"
	"github.com/KhmerCoders/khmercoders-web/internal/repository/experience"
	"github.com/KhmerCoders/khmercoders-web/internal/repository/profile"
	"github.com/KhmerCoders/khmercoders-web/library/pg"
	"github.com/KhmerCoders/khmercoders-web/library/yamlreader"
	"github.com/KhmerCoders/khmercoders-web/migrations"

	"github.com/IBM/sarama"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(rootCtx)
	defer cancel()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimeFieldFormat = time.RFC3339

	cfg := MustNewConfig(parseFlags())

	log.Info().Msgf("kafka=%+v", cfg.Kafka.Bootstrap.Value)

	pgClient, err := pg.NewPG(rootCtx, cfg.Postgres.Conn.Value, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres init failed")
	}
	defer pgClient.Close()

	if err := pgClient.Migrate(rootCtx, migrations.FS); err != nil {
		log.Fatal().Err(err).Msg("postgres migrations failed")
	}

	eventsRepo := events.NewRepository(pgClient.Pool())
	profileRepo := profile.NewRepository(pgClient.Pool())
	experienceRepo := experience.NewRepository(pgClient.Pool())

	deps := api.ServiceDeps{
		Port:           cfg.UserAPI.Port.Value,
		EventsRepo:     eventsRepo,
		ProfileRepo:    profileRepo,
		ExperienceRepo: experienceRepo,
	}

	kafkaProducer, err := initProducer(cfg.Kafka)
	if err != nil {
		// the API still serves CRUD and the grouped view without Kafka
		log.Error().Err(err).Msg("kafka producer init failed, /producer routes disabled")
	} else {
		defer func() { _ = kafkaProducer.Close() }()
		deps.Producer = kafkaProducer
	}

	apiService := api.NewService(deps)

	consumerProfiles := consumer.NewProfileRunner(
		cfg.Kafka.Bootstrap.Value,
		cfg.Kafka.Topics.Profiles.Value,
		"consumer_profiles",
		eventsRepo,
		profileRepo,
		log.Logger,
	)
	consumerExperiences := consumer.NewExperienceRunner(
		cfg.Kafka.Bootstrap.Value,
		cfg.Kafka.Topics.Experiences.Value,
		"consumer_experiences",
		eventsRepo,
		experienceRepo,
		log.Logger,
	)

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info().Msg("starting HTTP API")
		if err := apiService.Start(gctx); err != nil {
			log.Error().Err(err).Msg("HTTP API failed")

			return err
		}

		log.Info().Msg("HTTP API stopped")

		return nil
	})

	for name, runner := range map[string]*consumer.Runner{
		"consumer_profiles":    consumerProfiles,
		"consumer_experiences": consumerExperiences,
	} {
		group.Go(func() error {
			log.Info().Str("consumer", name).Msg("starting consumer")

			if err := runner.Start(gctx); err != nil {
				log.Error().Err(err).Str("consumer", name).Msg("consumer failed")

				return err
			}

			log.Info().Str("consumer", name).Msg("consumer stopped")

			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = group.Wait()
	}()

	select {
	case <-rootCtx.Done():
		log.Info().Msg("signal received, graceful shutdown...")
		waitWithTimeout(done, shutdownTimeout)
	case <-done:
		log.Info().Msg("all services stopped")
	}
}

func initProducer(kafkaConfig config.KafkaConfig) (*producer.Producer, error) {
	sCfg := sarama.NewConfig()
	sCfg.Version = sarama.V3_3_2_0
	sCfg.ClientID = kafkaConfig.ProducerClientID.Value
	sCfg.Producer.Return.Successes = true
	sCfg.Producer.RequiredAcks = sarama.WaitForAll
	sCfg.Producer.Idempotent = true
	sCfg.Net.MaxOpenRequests = 1
	sCfg.Producer.Retry.Max = 5
	sCfg.Producer.Retry.Backoff = 200 * time.Millisecond

	sp, err := sarama.NewSyncProducer([]string{kafkaConfig.Bootstrap.Value}, sCfg)
	if err != nil {
		return nil, err
	}

	p := producer.NewProducer(
		sp,
		producer.Config{
			TopicProfiles:    kafkaConfig.Topics.Profiles.Value,
			TopicExperiences: kafkaConfig.Topics.Experiences.Value,
			Source:           kafkaConfig.ProducerClientID.Value,
		},
		log.Logger,
	)

	return p, nil
}

func waitWithTimeout(done <-chan struct{}, timeout time.Duration) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		log.Info().Msg("all services stopped")
	case <-timer.C:
		log.Warn().Dur("timeout", timeout).Msg("graceful shutdown timed out")
	}
}

func MustNewConfig(path string) *config.Config {
	cfg, err := yamlreader.NewConfig[config.Config](path)

	if err != nil {
		log.Fatal().Str("path", path).Err(err).Msg("failed to read application config")
		return nil
	}

	return cfg
}

func parseFlags() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	// .env is optional; real environment variables take precedence
	_ = godotenv.Load(".env")

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	if configPath == "" {
		configPath = "config/application-local.yaml"
	}
	return configPath
}
