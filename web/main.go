package main

import (
	"context"
	"encoding/base64"
	"log"
	"net/http"
	"os"

	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/core"
	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/infrastructure/communication"
	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/infrastructure/devops"
	tscore "github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/core"
	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/web/handlers/timesheet"
	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/utils"
	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/web/middlewares"
	"github.com/gin-gonic/gin"
)

func main() {
	utils.InitLogger("shift-scan")

	ctx := context.Background()
	cfg, err := devops.LoadAppConfig(ctx)
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}

	dm, err := core.New(cfg.DSN, cfg.MaxConnections)
	if err != nil {
		log.Fatal(err)
	}
	defer dm.Close()

	db, err := dm.GetDB(ctx)
	if err != nil {
		log.Fatal(err)
	}

	repo := tscore.NewGormRepository(db)
	differ := tscore.NewDiffer(repo)

	sink := communication.NewSlack(cfg.Slack.Token, communication.SlackOption{
		DefaultChannelID: cfg.Slack.DefaultChannel,
		TopicChannels: map[string]string{
			tscore.TopicTimecardChanges: cfg.Slack.TimecardChangesChannel,
			tscore.TopicTimecardStatus:  cfg.Slack.TimecardStatusChannel,
			tscore.TopicEquipmentBreak:  cfg.Slack.EquipmentBreakChannel,
		},
	})
	dispatcher := tscore.NewDispatcher(sink, utils.Logger)

	svc := tscore.NewService(repo, repo, differ, dispatcher, tscore.SystemClock(), repo, utils.Logger)

	jwtSecret, err := base64.StdEncoding.DecodeString(cfg.SigningSecret)
	if err != nil {
		log.Fatal("Failed to decode JWT secret: ", err)
	}

	r := gin.Default()

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	protected := r.Group("/api/v1.0")
	protected.Use(middlewares.Authentication(jwtSecret))
	{
		timesheet.Register(protected, dm, svc)
	}

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8090"
	}
	r.Run(addr)
}
