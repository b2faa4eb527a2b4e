//go:build integration

package main_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lagoon-stays/service-reservation/internal/application"
	"github.com/lagoon-stays/service-reservation/internal/domain"
	"github.com/lagoon-stays/service-reservation/internal/events"
	"github.com/lagoon-stays/service-reservation/internal/notifier"
	"github.com/lagoon-stays/service-reservation/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// reservationStack holds the wired-up service components under test.
type reservationStack struct {
	Bookings        *application.BookingService
	Feedbacks       *application.FeedbackService
	Reschedules     *application.RescheduleService
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_reservation",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_reservation sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.BookingModel{},
		&repository.RescheduleRequestModel{},
		&repository.FeedbackModel{},
		&repository.UnitModel{},
		&repository.NotificationModel{},
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, events.TopicReservationEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupReservationStack wires up the full reservation service stack.
func setupReservationStack(t *testing.T, db *gorm.DB, brokers []string) *reservationStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bookingRepo := repository.NewGormBookingRepository(db)
	rescheduleRepo := repository.NewGormRescheduleRepository(db)
	feedbackRepo := repository.NewGormFeedbackRepository(db)
	unitRepo := repository.NewGormUnitRepository(db)
	notificationRepo := repository.NewGormNotificationRepository(db)

	clock := domain.RealClock{}
	producer := events.NewProducer(brokers, logger)
	storeNotifier := notifier.NewStoreNotifier(notificationRepo, clock, logger)

	bookingSvc := application.NewBookingService(bookingRepo, unitRepo, storeNotifier, producer, clock, logger)
	rescheduleSvc := application.NewRescheduleService(rescheduleRepo, bookingRepo, storeNotifier, producer, clock, logger)
	feedbackSvc := application.NewFeedbackService(feedbackRepo, bookingRepo, bookingSvc, storeNotifier, producer, clock, logger)

	return &reservationStack{
		Bookings:        bookingSvc,
		Reschedules:     rescheduleSvc,
		Feedbacks:       feedbackSvc,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedUnit inserts a catalog unit.
func seedUnit(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	amenities, _ := json.Marshal([]string{"wifi", "pool"})
	model := repository.UnitModel{
		ID:         uuid.New(),
		Name:       "Lagoon Villa",
		UnitType:   "villa",
		PriceCents: 250000,
		Capacity:   4,
		Amenities:  amenities,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed unit")
	return model.ID
}

// seedApprovedBookingPastCheckout inserts an approved booking whose stay
// already ended, the precondition for lazy completion.
func seedApprovedBookingPastCheckout(t *testing.T, db *gorm.DB, bookingID, userID, unitID uuid.UUID) {
	t.Helper()
	now := time.Now().UTC()
	approvedAt := now.Add(-96 * time.Hour)

	model := repository.BookingModel{
		ID:         bookingID,
		UserID:     userID,
		UnitID:     unitID,
		GuestName:  "Integration Guest",
		Contact:    "guest@example.com",
		CheckIn:    now.Add(-72 * time.Hour),
		CheckOut:   now.Add(-24 * time.Hour),
		Pax:        2,
		Status:     "approved",
		ApprovedAt: &approvedAt,
		Version:    2,
		CreatedAt:  now.Add(-120 * time.Hour),
		UpdatedAt:  approvedAt,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed booking")
}

// consumeOneEvent reads messages off a topic until one matches the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) events.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		var ce events.CloudEvent
		if err := json.Unmarshal(msg.Value, &ce); err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
