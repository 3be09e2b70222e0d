package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/joho/godotenv"

	"github.com/Guyuepp/like-engine/internal/backoff"
	kafkaBus "github.com/Guyuepp/like-engine/internal/bus/kafka"
	mysqlRepo "github.com/Guyuepp/like-engine/internal/repository/mysql"
	redisCache "github.com/Guyuepp/like-engine/internal/repository/redis"
	"github.com/Guyuepp/like-engine/internal/rest"
	"github.com/Guyuepp/like-engine/internal/rest/middleware"
	"github.com/Guyuepp/like-engine/internal/usecase/counter"
	"github.com/Guyuepp/like-engine/internal/usecase/like"
)

const (
	defaultTimeout        = 30
	defaultAddress        = ":9090"
	defaultCacheDB        = 0
	dbMaxRetry            = 10
	dbRetryIntervalSec    = 2
	defaultTopic          = "post-count-events"
	defaultGroupID        = "post-count-consumer"
	defaultWorkers        = 4
	defaultMessageTimeout = 120
	defaultMaxRetries     = 5
	defaultBaseDelayMs    = 1000
	defaultMaxDelayMs     = 30000
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}
}

func main() {
	//prepare database
	dbHost := os.Getenv("DATABASE_HOST")
	dbPort := os.Getenv("DATABASE_PORT")
	dbUser := os.Getenv("DATABASE_USER")
	dbPass := os.Getenv("DATABASE_PASS")
	dbName := os.Getenv("DATABASE_NAME")
	connection := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", dbUser, dbPass, dbHost, dbPort, dbName)
	val := url.Values{}
	val.Add("parseTime", "1")
	dsn := fmt.Sprintf("%s?%s", connection, val.Encode())

	var (
		db  *gorm.DB
		err error
	)

	for i := 0; i < dbMaxRetry; i++ {
		db, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
		if err != nil {
			log.Printf("failed to open connection to database (attempt %d/%d): %v", i+1, dbMaxRetry, err)
		} else {
			sqlDB, err := db.DB()
			if err != nil {
				log.Printf("failed to get sql.DB from gorm.DB (attempt %d/%d): %v", i+1, dbMaxRetry, err)
				continue
			}
			err = sqlDB.Ping()
			if err == nil {
				break
			}
			log.Printf("failed to ping database (attempt %d/%d): %v", i+1, dbMaxRetry, err)
			_ = sqlDB.Close()
		}

		time.Sleep(dbRetryIntervalSec * time.Second)
	}

	if err != nil {
		log.Fatal("could not connect to database after retries:", err)
	}

	defer func() {
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal("got error when getting sql.DB from gorm.DB", err)
		}
		if err := sqlDB.Close(); err != nil {
			log.Fatal("got error when closing the DB connection", err)
		}
	}()

	// prepare cache
	cacheHost := os.Getenv("CACHE_HOST")
	cachePort := os.Getenv("CACHE_PORT")
	cachePass := os.Getenv("CACHE_PASS")
	cacheDBStr := os.Getenv("CACHE_DB")
	cacheDB, err := strconv.Atoi(cacheDBStr)
	if err != nil {
		log.Println("failed to parse cacheDB, using default cacheDB")
		cacheDB = defaultCacheDB
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cacheHost + ":" + cachePort,
		Password: cachePass,
		DB:       cacheDB,
	})
	defer func() {
		err = client.Close()
		if err != nil {
			log.Fatal("got error when closing the cache connection", err)
		}
	}()

	_, err = client.Ping(context.Background()).Result()
	if err != nil {
		log.Fatal("failed to open connection to cache", err)
		return
	}

	// prepare bus
	brokers := strings.Split(envOrDefault("KAFKA_BROKERS", "localhost:9092"), ",")
	topic := envOrDefault("KAFKA_TOPIC", defaultTopic)
	groupID := envOrDefault("KAFKA_GROUP_ID", defaultGroupID)

	producer := kafkaBus.NewIntentProducer(brokers, topic)
	defer func() {
		if err := producer.Close(); err != nil {
			log.Printf("failed to close producer: %v", err)
		}
	}()

	deadLetter := kafkaBus.NewDeadLetterWriter(brokers, topic+".dlq")
	defer func() {
		if err := deadLetter.Close(); err != nil {
			log.Printf("failed to close dead letter writer: %v", err)
		}
	}()

	// prepare gin
	route := gin.Default()
	route.Use(middleware.CORS())
	timeoutStr := os.Getenv("CONTEXT_TIMEOUT")
	timeout, err := strconv.Atoi(timeoutStr)
	if err != nil {
		log.Println("failed to parse timeout, using default timeout")
		timeout = defaultTimeout
	}
	timeoutContext := time.Duration(timeout) * time.Second
	route.Use(middleware.SetRequestContextWithTimeout(timeoutContext))

	// Prepare Repository
	likeRepo := mysqlRepo.NewLikeRepository(db)
	postRepo := mysqlRepo.NewPostRepository(db)
	eventRepo := mysqlRepo.NewCountEventRepository(db)
	countCache := redisCache.NewCountCache(client)

	// Start consumer workers
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	retryOpts := backoff.Options{
		MaxRetries: envIntOrDefault("CONSUMER_MAX_RETRIES", defaultMaxRetries),
		BaseDelay:  time.Duration(envIntOrDefault("CONSUMER_BASE_DELAY_MS", defaultBaseDelayMs)) * time.Millisecond,
		MaxDelay:   time.Duration(envIntOrDefault("CONSUMER_MAX_DELAY_MS", defaultMaxDelayMs)) * time.Millisecond,
	}
	processor := counter.NewProcessor(eventRepo, postRepo, countCache, deadLetter, retryOpts)

	workers := envIntOrDefault("CONSUMER_WORKERS", defaultWorkers)
	messageTimeout := time.Duration(envIntOrDefault("CONSUMER_MESSAGE_TIMEOUT_SEC", defaultMessageTimeout)) * time.Second
	consumerGroup := kafkaBus.NewConsumerGroup(brokers, topic, groupID, workers, messageTimeout, processor)
	go func() {
		if err := consumerGroup.Start(ctx); err != nil {
			log.Printf("consumer group stopped with error: %v", err)
		}
	}()

	// Build service Layer
	likeSvc := like.NewService(likeRepo, postRepo, countCache, producer)
	likeHandler := rest.NewLikeHandler(likeSvc)

	// Register routes
	route.POST("/likes", likeHandler.Toggle)
	route.GET("/likes/count/:postId", likeHandler.GetCount)
	route.GET("/likes/status/:postId/:userId", likeHandler.GetUserStatus)

	// Start Server
	address := os.Getenv("SERVER_ADDRESS")
	if address == "" {
		address = defaultAddress
	}
	srv := &http.Server{
		Addr:    address,
		Handler: route,
	}
	go func() {
		log.Printf("Server is running on %s\n", address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err) // nolint
		}
	}()

	// shutdown
	<-ctx.Done()
	log.Println("Shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Waiting for consumer workers to cleanup...")
	time.Sleep(2 * time.Second)

	log.Println("Server exiting")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
