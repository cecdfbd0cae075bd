package main

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/vitae-social/vitae-api/internal/config"
	"github.com/vitae-social/vitae-api/internal/logging"
	"github.com/vitae-social/vitae-api/internal/media"
	"github.com/vitae-social/vitae-api/internal/repository/minio"
	"github.com/vitae-social/vitae-api/internal/repository/postgres"
	"github.com/vitae-social/vitae-api/internal/service"
	"github.com/vitae-social/vitae-api/internal/token"
	"github.com/vitae-social/vitae-api/internal/transport/http"
	"github.com/vitae-social/vitae-api/internal/transport/mail"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.Printf("logstash mirror disabled: %v", err)
		} else {
			defer writer.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, writer))
		}
	}

	codec, err := token.NewCodec(cfg.AppSecretKey)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer db.Close()
	if err := postgres.RunMigrations(ctx, db); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	minioClient, err := minio.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		log.Fatalf("connect to minio: %v", err)
	}
	storage := minio.NewStorage(minioClient)
	if err := storage.EnsureBucket(ctx, cfg.MinIOBucketProfile); err != nil {
		log.Fatalf("ensure bucket %s: %v", cfg.MinIOBucketProfile, err)
	}

	userRepo := postgres.NewUserRepo(db)
	postRepo := postgres.NewPostRepo(db)
	commentRepo := postgres.NewCommentRepo(db)
	likeRepo := postgres.NewLikeRepo(db)
	followRepo := postgres.NewFollowRepo(db)

	mailer := buildMailer(ctx, cfg)

	lookup := service.NewAccountLookup(userRepo)
	validator := token.NewValidator(codec, lookup)
	authService := service.NewAuthService(userRepo, codec, validator, mailer, cfg.MaxSigninAttempts, cfg.FrontendBaseURL)

	var viewStats *service.PostViewStatsService
	if cfg.ElasticsearchURL != "" {
		esClient, err := elasticsearch.NewClient(elasticsearch.Config{
			Addresses: []string{cfg.ElasticsearchURL},
		})
		if err != nil {
			log.Printf("view stats disabled: %v", err)
		} else {
			cacheTTL, err := time.ParseDuration(cfg.ViewStatsCacheTTL)
			if err != nil {
				cacheTTL = 0
			}
			viewStats = service.NewPostViewStatsService(esClient, service.PostViewStatsConfig{
				LogIndex:       cfg.ViewStatsLogIndex,
				CacheTTL:       cacheTTL,
				RequestTimeout: 10 * time.Second,
			})
		}
	}

	var ranker service.PopularityRanker
	if viewStats != nil {
		ranker = viewStats
	}
	postService := service.NewPostService(postRepo, userRepo, commentRepo, likeRepo, followRepo, ranker)
	processor := media.NewImageProcessor(media.DefaultMaxDimension)
	userService := service.NewUserService(
		userRepo, postRepo, commentRepo, likeRepo, followRepo,
		storage, processor, authService,
		cfg.MinIOBucketProfile, cfg.ProfileImageMaxBytes,
	)
	commentService := service.NewCommentService(commentRepo, postRepo, userRepo)
	connectionService := service.NewConnectionService(followRepo, userRepo)
	searchService := service.NewSearchService(postRepo, userRepo, postService, connectionService)

	e := http.NewRouter(cfg.AllowOrigins)
	http.RegisterPages(e)
	http.RegisterSwagger(e)
	http.RegisterAuth(e, authService)
	http.RegisterUsers(e, authService, userService)
	http.RegisterConnections(e, authService, connectionService)
	http.RegisterPosts(e, authService, postService, viewStats)
	http.RegisterComments(e, authService, commentService)
	http.RegisterSearch(e, authService, searchService)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

// buildMailer prefers the Gmail API when credentials are configured, falls
// back to SMTP and finally to a no-op sink so auth flows never block on
// missing mail settings.
func buildMailer(ctx context.Context, cfg config.Config) mail.Mailer {
	if cfg.GmailCredentialsFile != "" && cfg.GmailSender != "" {
		mailer, err := mail.NewGmailMailer(ctx, cfg.GmailCredentialsFile, cfg.GmailSender)
		if err == nil {
			return mailer
		}
		log.Printf("gmail mailer unavailable, falling back: %v", err)
	}
	if cfg.SMTPHost != "" && cfg.SMTPPort != "" && cfg.SMTPFrom != "" {
		return mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	}
	log.Println("no mail backend configured, outgoing mail disabled")
	return mail.NopMailer{}
}
