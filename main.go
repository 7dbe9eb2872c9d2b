package main

import (
	"time"

	"github.com/bricksandmortarstudio/sms-dispatch/controller"
	"github.com/bricksandmortarstudio/sms-dispatch/dao"
	_ "github.com/bricksandmortarstudio/sms-dispatch/docs"
	"github.com/bricksandmortarstudio/sms-dispatch/log"
	"github.com/bricksandmortarstudio/sms-dispatch/service"
	"github.com/bricksandmortarstudio/sms-dispatch/sms"
	"github.com/bricksandmortarstudio/sms-dispatch/util"
	"github.com/cskr/pubsub"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

// @title Sms dispatch HTTP API
// @description Bulk sms dispatch service

// @contact.name Bricks and Mortar Studio

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Error.Println(err)
	}
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	//create db client
	dbClient, err := dao.GetClient(util.GetEnv("DB_PATH", "dispatch.db"))
	if err != nil {
		log.Fatal(err)
	}

	//delivery receipt bus
	receipts := pubsub.New(100)

	gateway, err := buildGateway(receipts)
	if err != nil {
		log.Fatal(err)
	}

	commDao := dao.NewCommunicationDao(dbClient)
	recipientDao := dao.NewRecipientDao(dbClient)
	historyDao := dao.NewHistoryDao(dbClient)

	dispatcher := service.NewDispatcher(
		gateway,
		commDao,
		recipientDao,
		historyDao,
		service.Config{
			OrganizationName:         util.GetEnv("ORG_NAME", ""),
			OrganizationAbbreviation: util.GetEnv("ORG_ABBREVIATION", ""),
			PublicCallbackRoot:       util.GetEnv("PUBLIC_CALLBACK_ROOT", ""),
		},
		buildPolicy(),
	)

	dispatchService := service.NewService(
		dispatcher,
		commDao,
		recipientDao,
		historyDao,
		receipts,
		util.GetEnvAsInt("STATUS_STORE_DAYS", 7),
		util.GetEnvAsInt("SMS_MAX_LEN", 300),
		util.GetEnv("WEB_HOOK", ""),
		time.Duration(util.GetEnvAsInt("DISPATCH_INTERVAL_SEC", 60))*time.Second,
	)

	//attach http handlers
	e := echo.New()
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.HideBanner = true
	e.Use(middleware.BodyLimit("64K"))

	bindRoutes(e, dispatchService)

	//start http server
	log.Fatal(e.Start(":" + util.GetEnv("HTTP_PORT", "8080")))
}

func buildGateway(receipts *pubsub.PubSub) (sms.Gateway, error) {
	switch util.GetEnv("GATEWAY", "twilio") {
	case "smpp":
		gateway := sms.NewSmppGateway(util.GetEnv("SMSC_IP", ""),
			util.GetEnvAsInt("SMSC_PORT", 8018),
			util.GetEnv("SMSC_ACCOUNT", ""),
			util.GetEnv("SMSC_PWD", ""),
			util.GetEnvAsInt("ENQ_LNK_SEC", 30),
			util.GetEnvAsInt("TRX_PER_SEC", 100),
			receipts)
		return gateway, gateway.Start()
	default:
		return sms.NewTwilioGateway(util.GetEnv("TWILIO_ACCOUNT_SID", ""),
			util.GetEnv("TWILIO_AUTH_TOKEN", ""),
			util.GetEnvAsInt("TRX_PER_SEC", 100)), nil
	}
}

func buildPolicy() service.Policy {
	mode := service.SenderAlphanumeric
	if util.GetEnv("SENDER_MODE", "alphanumeric") == "numeric" {
		mode = service.SenderNumeric
	}
	//a failed alphanumeric send usually means the sender id is not accepted,
	//in which case the rest of the batch would fail the same way
	stopDefault := mode == service.SenderAlphanumeric
	return service.Policy{
		SenderMode:           mode,
		Footer:               util.GetEnv("DEFAULT_FOOTER", ""),
		StopOnGatewayFailure: util.AsBool(util.GetEnv("STOP_ON_GATEWAY_FAILURE", ""), stopDefault),
	}
}

func bindRoutes(e *echo.Echo, srv service.Service) {

	e.POST("/communications", controller.GetCreateCommunicationFunc(srv))

	e.POST("/communications/:id/approve", controller.GetApproveCommunicationFunc(srv))

	e.POST("/communications/:id/send", controller.GetSendCommunicationFunc(srv))

	e.GET("/communications/:id", controller.GetCheckCommunicationFunc(srv))

	e.POST("/messages", controller.GetSendAdHocFunc(srv))

	e.POST("/webhooks/sms/:token", controller.GetGatewayCallbackFunc(srv))
}
