package routes

import (
	"mindboost/controllers"
	"mindboost/middlewares"
	"mindboost/services"

	"github.com/gin-gonic/gin"
)

func SetupRouter(
	progress *services.ProgressService,
	analytics *services.AnalyticsService,
	hub *services.SyncHub,
	gw *services.RestGateway,
) *gin.Engine {
	r := gin.Default()
	r.Use(middlewares.IdentityMiddleware())

	pc := controllers.NewProgressController(progress)
	ac := controllers.NewAnalyticsController(analytics)
	tc := controllers.NewTrackController(progress, gw)
	sc := controllers.NewSettingsController(progress)
	wc := controllers.NewSyncController(hub)
	sec := controllers.NewSessionController(gw)

	session := r.Group("/session")
	{
		session.POST("", sec.BeginSession)
		session.DELETE("", sec.EndSession)
	}

	prog := r.Group("/progress")
	{
		prog.POST("/scores/matching", pc.AddMatchingScore)
		prog.POST("/scores/number-recall", pc.AddNumberRecallScore)
		prog.POST("/scores/object-sequencing", pc.AddObjectSequencingScore)
		prog.POST("/scores/stroop", pc.AddStroopScore)
		prog.GET("/scores/:gameType", pc.GetScoresByType)
		prog.GET("/scores", pc.GetRecentScores)

		prog.POST("/water", pc.AddWaterLog)
		prog.POST("/meditation", pc.AddMeditationSession)
		prog.POST("/refresh", pc.Refresh)
	}

	analyticsGroup := r.Group("/analytics")
	{
		analyticsGroup.GET("/water/today", ac.GetTotalWaterToday)
		analyticsGroup.GET("/water/percentage", ac.GetWaterPercentage)
		analyticsGroup.GET("/meditation/today", ac.GetMeditationMinutesToday)
		analyticsGroup.GET("/summary/daily", ac.GetDailySummary)
		analyticsGroup.GET("/summary/weekly", ac.GetWeeklyHistory)
	}

	tracks := r.Group("/tracks")
	{
		tracks.GET("", tc.GetAllTracks)
		tracks.GET("/mine", tc.GetUserTracks)
		tracks.POST("", tc.UploadTrack)
		tracks.DELETE("/:id", tc.DeleteTrack)
	}

	settings := r.Group("/settings")
	{
		settings.GET("/water", sc.GetWaterSettings)
		settings.PUT("/water/goal", sc.SetDailyWaterGoal)
		settings.PUT("/water", sc.UpdateWaterSettings)
	}

	r.GET("/sync/ws", wc.SyncWS)

	return r
}
