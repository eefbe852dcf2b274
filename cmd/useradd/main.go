package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/fittrack/backend/internal/auth"
	"github.com/fittrack/backend/internal/config"
	"github.com/fittrack/backend/internal/db"
	"github.com/fittrack/backend/internal/fitstats"
	"github.com/fittrack/backend/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

// ops tool: provisions a user record with its goals, and optionally
// issues a session token for it right away.
func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	userID := flag.String("user", "", "id of the user to create")
	password := flag.String("password", "", "password of the user to create")
	calorieGoal := flag.Float64("calorie-goal", 2000, "daily calorie goal")
	sleepGoal := flag.Float64("sleep-goal", 8, "daily sleep goal in hours")
	issueToken := flag.Bool("issue-token", false, "also issue a session token for the new user")
	flag.Parse()

	if *userID == "" || *password == "" {
		log.Fatalln("both -user and -password must be set")
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost: cfg.PostgresHost,
		DBPort: cfg.PostgresPort,
		DBName: cfg.PostgresDBName,
	})
	if err != nil {
		log.Fatalf("new db pool: %s", err)
	}
	defer dbPool.Close()

	passwordHash, err := pkg.HashPassword(*password)
	if err != nil {
		log.Fatalf("hash password: %s", err)
	}

	now := time.Now()
	repo := fitstats.NewRepo(dbPool)
	if err := repo.Create(ctx, &fitstats.UserRecord{
		UserID:        *userID,
		CalorieGoal:   *calorieGoal,
		SleepGoal:     *sleepGoal,
		PasswordHash:  passwordHash,
		LastResetDate: now,
		CreatedAt:     now,
	}); err != nil {
		log.Fatalf("create user record: %s", err)
	}

	fmt.Printf("user [%s] created, calorie goal %.0f, sleep goal %.1f\n", *userID, *calorieGoal, *sleepGoal)

	if !*issueToken {
		return
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: os.Getenv("FITTRACK_REDIS_PASS"),
	})
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Errorf("close redis client: %s", err)
		}
	}()

	authService := auth.NewService(auth.DefaultTTL, rdb)
	token, err := authService.Login(ctx, *userID, now)
	if err != nil {
		log.Fatalf("issue session token: %s", err)
	}
	fmt.Printf("session token: %s\n", token)
}
