package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Liban-Ahmed/taqwa-server/internal/db"
	"github.com/Liban-Ahmed/taqwa-server/internal/http/api"
	authapi "github.com/Liban-Ahmed/taqwa-server/internal/http/api/auth/endpoints"
	learnapi "github.com/Liban-Ahmed/taqwa-server/internal/http/api/learn/endpoints"
	prayerapi "github.com/Liban-Ahmed/taqwa-server/internal/http/api/prayer/endpoints"
	"github.com/Liban-Ahmed/taqwa-server/internal/progress"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(
	r *gin.Engine,
	env Environment,
	dbStore db.Store,
	prayerCtl *prayerapi.PrayerController,
	ledger *progress.Ledger,
) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api",
		Auth:   false,
	},
		authapi.AuthPublicModule(env.SecretKey, dbStore),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api",
		Auth:      true,
		SecretKey: env.SecretKey,
		Store:     dbStore,
	},
		prayerCtl.Module(),
		learnapi.LearnModule(ledger),
		// session endpoints that require auth
		authapi.AuthSessionModule(env.SecretKey, dbStore),
	)
}
