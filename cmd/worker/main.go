package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecograph/backend/internal/queue"
	"github.com/ecograph/backend/internal/storage"
	"github.com/ecograph/backend/internal/util"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ecograph/backend/pkg/logger"
	"github.com/ecograph/backend/pkg/logger/console"
	"github.com/ecograph/backend/pkg/store"
	"github.com/ecograph/backend/pkg/store/memory"
	storeneo4j "github.com/ecograph/backend/pkg/store/neo4j"
	storepgx "github.com/ecograph/backend/pkg/store/pgx"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	// Init s3 client
	client := storage.NewS3Client(ctx)

	// Graph store adapter
	adapter := util.GetEnvString("GRAPH_ADAPTER", "neo4j")
	var graphStore store.GraphStore
	var err error

	switch adapter {
	case "postgres":
		graphStore, err = storepgx.NewStore(ctx, storepgx.NewStoreParams{
			DatabaseURL: util.GetEnvString("GRAPH_DATABASE_URL", util.GetEnv("DATABASE_URL")),
		})
		if err != nil {
			logger.Fatal("Could not connect to Postgres graph store", "err", err)
		}
	case "memory":
		graphStore = memory.New()
	default:
		graphStore, err = storeneo4j.NewStore(ctx, storeneo4j.NewStoreParams{
			URI:      util.GetEnv("NEO4J_URI"),
			Username: util.GetEnv("NEO4J_USERNAME"),
			Password: util.GetEnv("NEO4J_PASSWORD"),
		})
		if err != nil {
			logger.Fatal("Could not connect to Neo4j", "err", err)
		}
	}
	defer graphStore.Close(context.Background())

	// Init pgx client
	pgConn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()

	// Init rabbitmq
	conn := queue.Init()
	defer conn.Close()

	// Init rabbitmq queues if not exist
	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	queues := []string{queue.ImportQueue}
	if err := queue.SetupQueues(ch, queues); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	// Requeue jobs orphaned by a previous worker crash
	if err := queue.RecoverStaleImports(ctx, ch, pgConn); err != nil {
		logger.Error("Failed to recover stale import jobs", "err", err)
	}

	logger.Info("Listening for messages")

	// Consume with prefetch=1 so only one import job runs at a time
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	err = consumerCh.Qos(1, 0, true)
	if err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.ImportQueue,
		"import_queue_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.ImportQueue, "err", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping message processor")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Info("Message channel closed", "queue", queue.ImportQueue)
					return
				}

				startTime := time.Now()
				logger.Info("Received message", "queue", queue.ImportQueue)

				processingErr := queue.ProcessImportMessage(ctx, client, pgConn, graphStore, string(msg.Body))

				// If there was an error send to retry or dead-letter, otherwise ack the message
				if processingErr != nil {
					logger.Error("Error processing message", "queue", queue.ImportQueue, "err", processingErr)
					handleProcessingError(ctx, consumerCh, pgConn, msg, queue.ImportQueue)
				} else {
					err = msg.Ack(false)
					if err != nil {
						logger.Error("Failed to ack message", "err", err)
					}
					logger.Info("Message processed successfully", "queue", queue.ImportQueue)
				}

				processingDuration := time.Since(startTime)
				hours := int(processingDuration.Hours())
				minutes := int(processingDuration.Minutes()) % 60
				seconds := int(processingDuration.Seconds()) % 60
				logger.Info(
					"Processing time",
					"duration", fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds),
				)
				logger.Info("Waiting for next message")
			}
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, exiting...")
}

func handleProcessingError(ctx context.Context, ch *amqp.Channel, conn *pgxpool.Pool, msg amqp.Delivery, queueName string) {
	retries := 0
	if val, ok := msg.Headers["x-retries"]; ok {
		if v, ok := val.(int32); ok {
			retries = int(v)
		}
	}

	// If message has been retried 10 times, send to dead-letter
	if retries >= 10 {
		dlqName := queueName + "_dlq"
		logger.Info("Sending message to DLQ", "dlq", dlqName)
		pubErr := ch.Publish(
			"",
			dlqName,
			false,
			false,
			amqp.Publishing{
				ContentType: "text/plain",
				Body:        msg.Body,
				Headers:     msg.Headers,
			},
		)
		if pubErr != nil {
			logger.Error("Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			msg.Nack(false, true)
			return
		}
		queue.FailImportJobFromMessage(ctx, conn, msg.Body, "import retries exhausted")
		msg.Ack(false)
		return
	}

	retryName := queueName + "_retry"
	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retries"] = retries + 1

	pubErr := ch.Publish(
		"",
		retryName,
		false,
		false,
		amqp.Publishing{
			ContentType: "text/plain",
			Body:        msg.Body,
			Headers:     headers,
		},
	)
	if pubErr != nil {
		logger.Error("Failed to publish to retry queue", "retry_queue", retryName, "err", pubErr)
		msg.Nack(false, true)
		return
	}
	msg.Ack(false)
}
