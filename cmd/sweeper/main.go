package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"foundlink/lost-found-portal/portal-backend/internal/config"
	"foundlink/lost-found-portal/portal-backend/internal/items"
	"foundlink/lost-found-portal/portal-backend/internal/sweeper"
	"foundlink/lost-found-portal/portal-backend/pkg/storage"
)

// The sweeper runs out of band: it deletes uploaded images whose item record
// was never committed, once they have outlived the grace period.
func main() {
	godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	awsCfg, err := loadAWSConfig(context.Background(), cfg.AWS)
	if err != nil {
		logger.Fatal("Failed to load AWS configuration", zap.Error(err))
	}
	db := dynamodb.NewFromConfig(awsCfg)
	s3c := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.AWS.EndpointURL != ""
	})

	repo := items.NewRepository(db, cfg.AWS.ItemsTable, cfg.AWS.CodesTable)
	store := storage.NewS3Store(s3c, cfg.AWS.UploadBucket)
	sw := sweeper.New(store, repo, cfg.Sweeper.ObjectScope, cfg.AWS.PublicBaseURL, cfg.Sweeper.GracePeriod(), logger)

	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		deleted, err := sw.Run(ctx)
		if err != nil {
			logger.Error("Sweep failed", zap.Error(err))
			return
		}
		logger.Info("Sweep completed", zap.Int("deleted", deleted))
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Sweeper.Schedule, sweep); err != nil {
		logger.Fatal("Invalid sweeper schedule", zap.String("schedule", cfg.Sweeper.Schedule), zap.Error(err))
	}
	scheduler.Start()
	logger.Info("Sweeper started", zap.String("schedule", cfg.Sweeper.Schedule))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down sweeper...")

	<-scheduler.Stop().Done()
	logger.Info("Sweeper exiting")
}

func loadAWSConfig(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}
	if cfg.EndpointURL != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.EndpointURL)
	}
	return awsCfg, nil
}
