package testhelpers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/config"
	"github.com/DanielPopoola/ficmart-escrow/internal/infrastructure/persistence/postgres"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage = "postgres:16-alpine"
	testDBName    = "escrow_test"
	testDBUser    = "escrow"
	testDBPass    = "escrow"
)

// ledgerTables lists every table the schema creates, children first.
var ledgerTables = []string{"outbox_events", "refunds", "withdrawals", "escrows", "payments"}

// TestDatabase is a migrated Postgres running in a container, shared by one suite.
type TestDatabase struct {
	Container testcontainers.Container
	DB        *postgres.DB
	Store     *postgres.Store
	Config    *config.DatabaseConfig
}

func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     testDBUser,
				"POSTGRES_PASSWORD": testDBPass,
				"POSTGRES_DB":       testDBName,
			},
			// Postgres logs "ready" once for the init server and once for the real one.
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort("5432/tcp"),
			).WithDeadline(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	dbConfig := containerConfig(ctx, t, container)

	db, err := postgres.Connect(ctx, dbConfig, DiscardLogger())
	require.NoError(t, err, "connect to test database")
	require.NoError(t, db.Migrate(ctx), "apply migrations")

	return &TestDatabase{
		Container: container,
		DB:        db,
		Store:     postgres.NewStore(db),
		Config:    dbConfig,
	}
}

func containerConfig(ctx context.Context, t *testing.T, container testcontainers.Container) *config.DatabaseConfig {
	t.Helper()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return &config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            testDBUser,
		Password:        testDBPass,
		Name:            testDBName,
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

func (td *TestDatabase) Cleanup(t *testing.T) {
	td.DB.Close()
	require.NoError(t, td.Container.Terminate(context.Background()))
}

// CleanTables empties the ledger between tests.
func (td *TestDatabase) CleanTables(t *testing.T) {
	_, err := td.DB.Pool.Exec(context.Background(),
		"TRUNCATE TABLE "+strings.Join(ledgerTables, ", ")+" RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}
