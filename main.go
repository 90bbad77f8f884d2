package main

import (
	"github.com/openagora/forum/config"
	"github.com/openagora/forum/forum"
	"github.com/openagora/forum/models"
	"github.com/openagora/forum/routes"
	"github.com/openagora/forum/store"
	"github.com/openagora/forum/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Thread{},
		&models.Comment{},
		&models.Upvote{},
		&models.Flag{},
		&models.Subscription{},
		&models.Notification{},
	)

	svc := forum.NewService(store.NewGormStore(db))
	r := routes.SetupRouter(svc)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
