package main

import (
	"os"

	"mindboost/config"
	"mindboost/routes"
	"mindboost/services"
	"mindboost/utils"
)

func main() {
	config.InitDB()
	utils.InitS3()

	cache := services.NewCacheStore(config.DB)
	gw := services.NewRestGateway(config.GatewayURL(), config.GatewayKey())

	hub := services.NewSyncHub()
	services.InitSyncDeps(hub)

	progress := services.NewProgressService(cache, gw)
	seedBuiltInTracks(progress)
	progress.Start()
	defer progress.Stop()

	analytics := services.NewAnalyticsService(progress)

	reminders := services.NewReminderService(progress, analytics)
	reminders.Start()
	defer reminders.Stop()

	r := routes.SetupRouter(progress, analytics, hub, gw)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}

// seedBuiltInTracks registers the bundled meditation tracks once; the cache
// keeps them across restarts.
func seedBuiltInTracks(progress *services.ProgressService) {
	if len(progress.GetAllTracks("")) > 0 {
		return
	}
	progress.AddBuiltInTrack("Ocean Waves", "MindBoost", "file:///assets/audio/ocean-waves.mp3")
	progress.AddBuiltInTrack("Forest Rain", "MindBoost", "file:///assets/audio/forest-rain.mp3")
	progress.AddBuiltInTrack("Deep Focus", "MindBoost", "file:///assets/audio/deep-focus.mp3")
}
