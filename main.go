package main

import (
	"github.com/presensi/presensi-server/config"
	"github.com/presensi/presensi-server/models"
	"github.com/presensi/presensi-server/routes"
	"github.com/presensi/presensi-server/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer utils.Logger.Sync()

	db := config.InitDatabase(&models.User{}, &models.Presensi{})

	r := routes.SetupRouter(db, cfg)

	utils.Sugar.Infof("Starting server on port %s (graceful), time zone %s", cfg.AppPort, cfg.Location())
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
	if err := utils.CloseRedis(); err != nil {
		utils.Sugar.Warnf("redis close: %v", err)
	}
}
