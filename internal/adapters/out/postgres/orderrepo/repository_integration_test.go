package orderrepo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"orderlifecycle/internal/adapters/out/postgres/orderrepo"
	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/core/domain/model/order"
	"orderlifecycle/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OrderRepositoryIntegrationTestSuite verifies order persistence and the
// compare-and-set status write against a real PostgreSQL.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders").Error)
	suite.repository = orderrepo.NewGormOrderRepository(suite.db)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_ThenGet_RoundTripsAllFields() {
	ctx := context.Background()
	changedAt := time.Date(2026, 5, 1, 9, 30, 0, 123456000, time.UTC)
	stored := suite.createOrder(order.Delivered, order.Paid, "1250.75", 4, changedAt)

	got, err := suite.repository.Get(ctx, stored.ID())
	suite.Require().NoError(err)

	suite.True(got.ID().IsEqual(stored.ID()))
	suite.Equal(order.Delivered, got.Status())
	suite.Equal(order.Paid, got.PaymentStatus())
	suite.True(got.Amount().Equal(decimal.RequireFromString("1250.75")), "amount %s", got.Amount())
	suite.Equal(int64(4), got.Version())
	suite.True(got.StatusChangedAt().Equal(changedAt), "changed at %s", got.StatusChangedAt())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NonExistentOrder_ReturnsNotFoundError() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())

	suite.Require().Error(err)
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestDuplicateID_IsRejected() {
	stored := suite.createOrder(order.Pending, order.Unpaid, "10", 1, time.Now())

	suite.Error(suite.insert(stored))
	suite.assertOrderCount(1)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestCompareAndSetStatus() {
	changedAt := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	testCases := []struct {
		name            string
		expectedVersion int64
		wantErr         error
		wantStatus      order.Status
		wantVersion     int64
	}{
		{
			name:            "matching version writes and bumps",
			expectedVersion: 2,
			wantStatus:      order.Delivered,
			wantVersion:     3,
		},
		{
			name:            "stale version is a conflict",
			expectedVersion: 1,
			wantErr:         errs.ErrVersionConflict,
			wantStatus:      order.Confirmed,
			wantVersion:     2,
		},
		{
			name:            "future version is a conflict",
			expectedVersion: 3,
			wantErr:         errs.ErrVersionConflict,
			wantStatus:      order.Confirmed,
			wantVersion:     2,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.SetupTest()
			ctx := context.Background()
			stored := suite.createOrder(order.Confirmed, order.Unpaid, "50", 2, changedAt)
			next := changedAt.Add(time.Minute)

			newVersion, err := suite.repository.CompareAndSetStatus(ctx, stored.ID(), tc.expectedVersion, order.Delivered, next)

			if tc.wantErr != nil {
				suite.Require().ErrorIs(err, tc.wantErr)
				suite.Zero(newVersion)
			} else {
				suite.Require().NoError(err)
				suite.Equal(tc.wantVersion, newVersion)
			}

			got, err := suite.repository.Get(ctx, stored.ID())
			suite.Require().NoError(err)
			suite.Equal(tc.wantStatus, got.Status())
			suite.Equal(tc.wantVersion, got.Version())
			if tc.wantErr == nil {
				suite.True(got.StatusChangedAt().Equal(next))
			} else {
				suite.True(got.StatusChangedAt().Equal(changedAt))
			}
		})
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestCompareAndSetStatus_MissingOrder_IsConflict() {
	_, err := suite.repository.CompareAndSetStatus(
		context.Background(), kernel.NewUUID(), 1, order.Confirmed, time.Now(),
	)

	suite.ErrorIs(err, errs.ErrVersionConflict)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestCompareAndSetStatus_InvalidStatus_Rejected() {
	stored := suite.createOrder(order.Pending, order.Unpaid, "5", 1, time.Now())

	_, err := suite.repository.CompareAndSetStatus(context.Background(), stored.ID(), 1, order.Status(42), time.Now())

	suite.ErrorIs(err, errs.ErrValueIsInvalid)
}

// TestCompareAndSetStatus_ConcurrentWriters verifies that of several writers
// holding the same version exactly one succeeds.
func (suite *OrderRepositoryIntegrationTestSuite) TestCompareAndSetStatus_ConcurrentWriters() {
	ctx := context.Background()
	changedAt := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	stored := suite.createOrder(order.Confirmed, order.Unpaid, "50", 7, changedAt)

	targets := []order.Status{order.Delivered, order.Cancelled, order.Delivered, order.Cancelled, order.Delivered}
	errCh := make(chan error, len(targets))

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.repository.CompareAndSetStatus(
				ctx, stored.ID(), 7, target, changedAt.Add(time.Duration(i+1)*time.Second),
			)
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	var succeeded, conflicted int
	for err := range errCh {
		switch {
		case err == nil:
			succeeded++
		case suite.ErrorIs(err, errs.ErrVersionConflict):
			conflicted++
		}
	}
	suite.Equal(1, succeeded)
	suite.Equal(len(targets)-1, conflicted)

	got, err := suite.repository.Get(ctx, stored.ID())
	suite.Require().NoError(err)
	suite.Equal(int64(8), got.Version())
}

func (suite *OrderRepositoryIntegrationTestSuite) createOrder(
	status order.Status,
	payment order.PaymentStatus,
	amount string,
	version int64,
	changedAt time.Time,
) *order.Order {
	o, err := order.RestoreOrder(kernel.NewUUID(), status, payment, decimal.RequireFromString(amount), version, changedAt)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.insert(o))
	return o
}

// insert writes the row directly; orders are created outside of the status
// lifecycle.
func (suite *OrderRepositoryIntegrationTestSuite) insert(o *order.Order) error {
	dto := orderrepo.OrderDTO{
		ID:              o.ID().Bytes(),
		Status:          int(o.Status()),
		PaymentStatus:   int(o.PaymentStatus()),
		Amount:          o.Amount(),
		Version:         o.Version(),
		StatusChangedAt: o.StatusChangedAt(),
	}
	return suite.db.Create(&dto).Error
}

func (suite *OrderRepositoryIntegrationTestSuite) assertOrderCount(expected int) {
	var count int64
	err := suite.db.Model(&orderrepo.OrderDTO{}).Count(&count).Error
	suite.Require().NoError(err)
	suite.Equal(int64(expected), count)
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
