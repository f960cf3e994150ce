package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mwynn/toolgrid/internal/commentservice"
	"github.com/mwynn/toolgrid/internal/common"
	"github.com/mwynn/toolgrid/internal/identity"
	"github.com/mwynn/toolgrid/internal/mediaservice"
	"github.com/mwynn/toolgrid/internal/notifyservice"
	"github.com/mwynn/toolgrid/internal/postservice"
)

type application struct {
	config         *Config
	logger         *slog.Logger
	identity       *identity.Client
	postService    *postservice.PostService
	commentService *commentservice.CommentService
	mediaService   *mediaservice.MediaService
	notifyService  *notifyservice.NotifyService
	broker         *common.MessageBroker
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := common.NewDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, 10, 5, 15*time.Minute)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.MQUser, cfg.MQPassword, cfg.MQHost, cfg.MQPort)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = common.SetupContentExchange(broker)
	if err != nil {
		logger.Error("failed to setup the content exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	blobStore, err := mediaservice.NewDiskStore(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		logger.Error("failed to setup the upload directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	app := &application{
		config:         cfg,
		logger:         logger,
		identity:       identity.NewClient(cfg.IdentityURL, cfg.IdentityAPIKey, cache),
		postService:    postservice.NewPostService(db, cache, broker),
		commentService: commentservice.NewCommentService(db, cache, broker),
		mediaService:   mediaservice.NewMediaService(db, blobStore),
		notifyService:  notifyservice.NewNotifyService(broker, cfg.MailHost, cfg.MailUser, cfg.MailPassword, cfg.MailSender, cfg.AdminEmail, cfg.MailPort, logger),
		broker:         broker,
	}
	defer app.notifyService.Close()

	go app.notifyService.SendCommentNotification()
	go app.notifyService.SendPostPublishedNotification()

	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
