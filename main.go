package main

import (
	"log"

	"github.com/greenloophq/greenloop/config"
	"github.com/greenloophq/greenloop/db"
	"github.com/greenloophq/greenloop/mailingservices"
	"github.com/greenloophq/greenloop/server"
	"github.com/greenloophq/greenloop/services"
	"github.com/robfig/cron/v3"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	mailgun := &mailingservices.Mailgun{}
	mailgun.Init(conf.MgDomain, conf.MailgunApiKey, conf.MgEmailFrom)

	gormDB := db.GetDB(conf)
	if err := db.SeedRoles(gormDB.DB); err != nil {
		log.Fatalf("unable to seed roles: %v", err)
	}

	redisClient := db.GetRedis(conf)

	userRepo := db.NewUserRepo(gormDB)
	reportRepo := db.NewReportRepo(gormDB)
	rewardRepo := db.NewRewardRepo(gormDB)
	notificationRepo := db.NewNotificationRepo(gormDB)

	authService := services.NewAuthService(userRepo, conf)
	visionService := services.NewVisionService(conf)
	reportService := services.NewReportService(reportRepo, rewardRepo, visionService, conf)
	rewardService := services.NewRewardService(rewardRepo, redisClient, conf)
	notificationService := services.NewNotificationService(notificationRepo)
	mediaService := services.NewMediaService(conf)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@daily", func() {
		if _, err := rewardService.ProcessDailyRewards(); err != nil {
			log.Printf("daily rewards run failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("unable to schedule daily rewards: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	s := &server.Server{
		Config:                 conf,
		Mail:                   mailgun,
		DB:                     gormDB,
		UserRepository:         userRepo,
		ReportRepository:       reportRepo,
		RewardRepository:       rewardRepo,
		NotificationRepository: notificationRepo,
		AuthService:            authService,
		ReportService:          reportService,
		RewardService:          rewardService,
		NotificationService:    notificationService,
		MediaService:           mediaService,
	}
	s.Start()
}
