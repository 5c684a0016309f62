package repositories

import (
	"context"
	"testing"
	"time"

	"dentalops/internal/common"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type InventoryRepoTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	repo     InventoryRepository
	ctx      context.Context
	tenantID uuid.UUID
	itemID   uuid.UUID
}

func (suite *InventoryRepoTestSuite) SetupTest() {
	mockPool, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mockPool
	suite.repo = NewInventoryRepo(mockPool)
	suite.ctx = context.Background()
	suite.tenantID = uuid.New()
	suite.itemID = uuid.New()
}

func (suite *InventoryRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestInventoryRepoTestSuite(t *testing.T) {
	suite.Run(t, new(InventoryRepoTestSuite))
}

func (suite *InventoryRepoTestSuite) TestDecrementIfSufficient_Success() {
	suite.mock.ExpectQuery(`UPDATE inventory_items SET quantity = quantity - \$3, last_updated = NOW\(\) WHERE tenant_id = \$1 AND id = \$2 AND quantity >= \$3 RETURNING quantity`).
		WithArgs(suite.tenantID, suite.itemID, 5).
		WillReturnRows(pgxmock.NewRows([]string{"quantity"}).AddRow(7))

	remaining, err := suite.repo.DecrementIfSufficient(suite.ctx, suite.tenantID, suite.itemID, 5)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 7, remaining)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *InventoryRepoTestSuite) TestDecrementIfSufficient_Insufficient() {
	suite.mock.ExpectQuery(`UPDATE inventory_items SET quantity = quantity - \$3`).
		WithArgs(suite.tenantID, suite.itemID, 10).
		WillReturnRows(pgxmock.NewRows([]string{"quantity"}))
	suite.mock.ExpectQuery(`SELECT quantity FROM inventory_items WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(suite.tenantID, suite.itemID).
		WillReturnRows(pgxmock.NewRows([]string{"quantity"}).AddRow(3))

	_, err := suite.repo.DecrementIfSufficient(suite.ctx, suite.tenantID, suite.itemID, 10)
	var stockErr *common.StockInsufficientError
	assert.ErrorAs(suite.T(), err, &stockErr)
	assert.Equal(suite.T(), 3, stockErr.Available)
	assert.Equal(suite.T(), 10, stockErr.Requested)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *InventoryRepoTestSuite) TestDecrementIfSufficient_UnknownItem() {
	suite.mock.ExpectQuery(`UPDATE inventory_items SET quantity = quantity - \$3`).
		WithArgs(suite.tenantID, suite.itemID, 2).
		WillReturnRows(pgxmock.NewRows([]string{"quantity"}))
	suite.mock.ExpectQuery(`SELECT quantity FROM inventory_items WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(suite.tenantID, suite.itemID).
		WillReturnRows(pgxmock.NewRows([]string{"quantity"}))

	_, err := suite.repo.DecrementIfSufficient(suite.ctx, suite.tenantID, suite.itemID, 2)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *InventoryRepoTestSuite) TestListLowStock() {
	now := time.Now()
	otherID := uuid.New()
	suite.mock.ExpectQuery(`SELECT (.+) FROM inventory_items WHERE tenant_id = \$1 AND quantity <= reorder_threshold`).
		WithArgs(suite.tenantID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "tenant_id", "name", "sku", "quantity", "reorder_threshold", "unit", "last_updated"}).
			AddRow(suite.itemID, suite.tenantID, "Anesthetic cartridge", "AN-01", 4, 10, "box", now).
			AddRow(otherID, suite.tenantID, "Fluoride varnish", "FV-02", 0, 5, "tube", now))

	items, err := suite.repo.ListLowStock(suite.ctx, suite.tenantID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), items, 2)
	assert.True(suite.T(), items[0].LowStock())
	assert.True(suite.T(), items[1].LowStock())
}
