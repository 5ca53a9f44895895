package main

import (
	"context"
	"garmentflow/account"
	"garmentflow/bizerror"
	"garmentflow/client/es"
	"garmentflow/common"
	"garmentflow/config"
	"garmentflow/document"
	"garmentflow/domain"
	"garmentflow/domain/reposition/repositionrest"
	"garmentflow/domain/timer"
	"garmentflow/domain/tracking"
	"garmentflow/event"
	"garmentflow/indices"
	"garmentflow/indices/search"
	"garmentflow/infra/tracing"
	"garmentflow/live"
	"garmentflow/notification"
	"garmentflow/persistence"
	"garmentflow/report"
	"garmentflow/servehttp"
	"garmentflow/session"
	"garmentflow/sessions"

	"github.com/sirupsen/logrus"
)

func main() {
	config.LoadDotEnv()
	serviceConfig := config.ParseFromEnv()
	logrus.Info("service start")

	closer, err := tracing.InitGlobalTracer(common.GetServiceName())
	if err != nil {
		logrus.Fatalf("tracer init failed %v", err)
	}
	defer closer.Close()

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		logrus.Fatalf("parse database config failed %v", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == persistence.DriverMysql {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database %v", err)
		}
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database connection failed %v", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	db := ds.GormDB(context.Background())
	if err := db.AutoMigrate(&account.User{}).Error; err != nil {
		logrus.Fatalf("database migration failed %v", err)
	}
	if err := domain.AutoMigrate(db); err != nil {
		logrus.Fatalf("database migration failed %v", err)
	}
	if serviceConfig.AdminSecret != "" {
		if _, err := account.SeedUser(db, &account.UserCreation{Name: serviceConfig.AdminName,
			Secret: serviceConfig.AdminSecret, Area: domain.AreaAdmin}); err != nil {
			logrus.Fatalf("failed to seed admin user %v", err)
		}
	}

	store, err := document.BuildFileStore(serviceConfig)
	if err != nil {
		logrus.Fatalf("failed to build file store %v", err)
	}
	document.ActiveFileStore = store

	if _, err := es.CreateClient(serviceConfig.ElasticsearchURL); err != nil {
		logrus.Fatalf("failed to create elasticsearch client %v", err)
	}

	event.RegisterHandler(live.NotificationBroadcasterName, live.NotificationBroadcaster)
	event.RegisterHandler(indices.RepositionIndexEventHandlerName, indices.IndexRepositionEventHandle)

	crontab, err := indices.StartCron(serviceConfig.IndexSyncCron)
	if err != nil {
		logrus.Fatalf("failed to schedule index sync %v", err)
	}
	if crontab != nil {
		defer crontab.Stop()
	}

	engine := servehttp.BuildEngine(common.GetServiceName(), tracing.TracingIngress(), bizerror.ErrorHandling())

	sessions.RegisterSessionsHandler(engine)
	authFilter := session.SimpleAuthFilter()
	account.RegisterUsersHandler(engine, authFilter)
	report.RegisterReportRestAPI(engine, authFilter)
	search.RegisterSearchRestAPI(engine, authFilter)
	repositionrest.RegisterRepositionsRestAPI(engine, authFilter)
	timer.RegisterTimersRestAPI(engine, authFilter)
	tracking.RegisterTrackingRestAPI(engine, authFilter)
	document.RegisterDocumentsRestAPI(engine, authFilter)
	notification.RegisterNotificationsRestAPI(engine, authFilter)
	live.RegisterLiveRestAPI(engine, authFilter)
	indices.RegisterIndicesRestAPI(engine, authFilter)

	servehttp.StartHTTPServer(serviceConfig.HTTPAddr, engine)
}
