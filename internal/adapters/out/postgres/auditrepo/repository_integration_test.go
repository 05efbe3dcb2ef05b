package auditrepo_test

import (
	"context"
	"testing"
	"time"

	"orderlifecycle/internal/adapters/out/postgres/auditrepo"
	"orderlifecycle/internal/core/domain/model/audit"
	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/core/domain/model/order"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type AuditTrailIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	trail     *auditrepo.GormAuditTrail
}

func (suite *AuditTrailIntegrationTestSuite) SetupSuite() {
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

	suite.Require().NoError(db.AutoMigrate(&auditrepo.StatusChangeRecordDTO{}))
}

func (suite *AuditTrailIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE order_status_history").Error)
	suite.trail = auditrepo.NewGormAuditTrail(suite.db)
}

func (suite *AuditTrailIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *AuditTrailIntegrationTestSuite) TestHistory_ReturnsRecordsInVersionOrder() {
	ctx := context.Background()
	orderID := kernel.NewUUID()
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	third := suite.record(orderID, order.Delivered, order.Completed, 4, base.Add(2*time.Hour), "")
	first := suite.record(orderID, order.Pending, order.Confirmed, 2, base, "confirmed by phone")
	second := suite.record(orderID, order.Confirmed, order.Delivered, 3, base.Add(time.Hour), "")
	other := suite.record(kernel.NewUUID(), order.Pending, order.Cancelled, 2, base, "")

	for _, r := range []*audit.StatusChangeRecord{third, first, other, second} {
		suite.Require().NoError(suite.trail.Append(ctx, r))
	}

	var history []*audit.StatusChangeRecord
	for r, err := range suite.trail.History(ctx, orderID) {
		suite.Require().NoError(err)
		history = append(history, r)
	}

	suite.Require().Len(history, 3)
	suite.Equal([]int64{2, 3, 4}, []int64{history[0].Version(), history[1].Version(), history[2].Version()})

	got := history[0]
	suite.True(got.ID().IsEqual(first.ID()))
	suite.True(got.OrderID().IsEqual(orderID))
	suite.Equal(order.Pending, got.FromStatus())
	suite.Equal(order.Confirmed, got.ToStatus())
	suite.Equal("op-1", got.OperatorID())
	suite.Equal("confirmed by phone", got.Notes())
	suite.Equal(audit.OutcomeSuccess, got.Outcome())
	suite.True(got.Timestamp().Equal(base))

	for i := 1; i < len(history); i++ {
		suite.True(history[i].Timestamp().After(history[i-1].Timestamp()))
	}
}

func (suite *AuditTrailIntegrationTestSuite) TestHistory_UnknownOrder_IsEmpty() {
	count := 0
	for _, err := range suite.trail.History(context.Background(), kernel.NewUUID()) {
		suite.Require().NoError(err)
		count++
	}

	suite.Zero(count)
}

func (suite *AuditTrailIntegrationTestSuite) TestHistory_StopsWhenCallerBreaks() {
	ctx := context.Background()
	orderID := kernel.NewUUID()
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	suite.Require().NoError(suite.trail.Append(ctx, suite.record(orderID, order.Pending, order.Confirmed, 2, base, "")))
	suite.Require().NoError(suite.trail.Append(ctx, suite.record(orderID, order.Confirmed, order.Delivered, 3, base.Add(time.Minute), "")))

	seen := 0
	for _, err := range suite.trail.History(ctx, orderID) {
		suite.Require().NoError(err)
		seen++
		break
	}

	suite.Equal(1, seen)

	// the connection is released after an early break
	suite.Require().NoError(suite.trail.Append(ctx, suite.record(orderID, order.Delivered, order.Completed, 4, base.Add(2*time.Minute), "")))
}

func (suite *AuditTrailIntegrationTestSuite) TestAppend_SameOrderVersionTwice_Fails() {
	ctx := context.Background()
	orderID := kernel.NewUUID()
	at := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	suite.Require().NoError(suite.trail.Append(ctx, suite.record(orderID, order.Pending, order.Confirmed, 2, at, "")))
	err := suite.trail.Append(ctx, suite.record(orderID, order.Pending, order.Cancelled, 2, at.Add(time.Second), ""))

	suite.Error(err)
}

func (suite *AuditTrailIntegrationTestSuite) TestAppend_InTransaction_VisibleOnlyAfterCommit() {
	ctx := context.Background()
	orderID := kernel.NewUUID()
	at := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	tx := suite.db.Begin()
	suite.Require().NoError(tx.Error)
	suite.Require().NoError(auditrepo.NewGormAuditTrail(tx).Append(ctx, suite.record(orderID, order.Pending, order.Confirmed, 2, at, "")))

	suite.Zero(suite.count(orderID))
	suite.Require().NoError(tx.Commit().Error)
	suite.Equal(1, suite.count(orderID))
}

func (suite *AuditTrailIntegrationTestSuite) TestAppend_UnconstructedRecord_Rejected() {
	err := suite.trail.Append(context.Background(), &audit.StatusChangeRecord{})

	suite.ErrorIs(err, audit.ErrStatusChangeRecordIsNotConstructed)
}

func (suite *AuditTrailIntegrationTestSuite) record(
	orderID kernel.UUID,
	from, to order.Status,
	version int64,
	at time.Time,
	notes string,
) *audit.StatusChangeRecord {
	r, err := audit.RestoreStatusChangeRecord(
		kernel.NewUUID(), orderID, from, to, "op-1", notes, at, audit.OutcomeSuccess, version,
	)
	suite.Require().NoError(err)
	return r
}

func (suite *AuditTrailIntegrationTestSuite) count(orderID kernel.UUID) int {
	n := 0
	for _, err := range suite.trail.History(context.Background(), orderID) {
		suite.Require().NoError(err)
		n++
	}
	return n
}

func TestAuditTrailIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AuditTrailIntegrationTestSuite))
}
