package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Liban-Ahmed/taqwa-server/internal/db"
	prayerapi "github.com/Liban-Ahmed/taqwa-server/internal/http/api/prayer/endpoints"
	"github.com/Liban-Ahmed/taqwa-server/internal/notify"
	"github.com/Liban-Ahmed/taqwa-server/internal/prayer/provider"
	"github.com/Liban-Ahmed/taqwa-server/internal/progress"
	"github.com/Liban-Ahmed/taqwa-server/internal/redis"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	env := LoadEnvironment()

	// initialize PostgreSQL
	conn, err := db.Init(env.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db init failed")
	}

	// run pending migrations
	if err := db.RunMigrations(conn, env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	dbStore := db.NewStore(conn)

	rdb, err := redis.New(env.RedisAddress, env.RedisUsername, env.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis init failed")
	}

	// alert delivery is optional: without a broker the server still
	// serves times, statuses and progress, it just cannot arm alerts
	var scheduler notify.Scheduler = notify.Nop{}
	if env.MQTTBrokerURL != "" {
		client, err := notify.Connect(env.MQTTBrokerURL, "taqwa-server")
		if err != nil {
			log.Fatal().Err(err).Msg("mqtt connect failed")
		}
		scheduler = notify.NewMQTTScheduler(client)
	} else {
		log.Warn().Msg("MQTT_BROKER_URL not set, alert scheduling disabled")
	}

	prayerProvider := provider.NewCached(provider.NewAlAdhan(), rdb)
	ledger := progress.NewLedger(dbStore)

	prayerCtl := prayerapi.NewPrayerController(prayerProvider, rdb, scheduler)
	defer prayerCtl.Close()

	if env.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	RegisterRoutes(r, env, dbStore, prayerCtl, ledger)

	log.Info().Str("address", env.ServerAddress).Msg("server listening")
	if err := r.Run(env.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
