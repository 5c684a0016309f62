package repositories

import (
	"context"
	"errors"

	"dentalops/internal/common"
	"dentalops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InventoryRepository interface {
	Create(ctx context.Context, item *models.InventoryItem) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.InventoryItem, error)
	GetByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.InventoryItem, error)
	SetQuantity(ctx context.Context, tenantID, id uuid.UUID, quantity int) error
	DecrementIfSufficient(ctx context.Context, tenantID, id uuid.UUID, amount int) (int, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.InventoryItem, error)
	ListLowStock(ctx context.Context, tenantID uuid.UUID) ([]*models.InventoryItem, error)
}

type inventoryRepo struct {
	db Database
}

func NewInventoryRepo(db Database) InventoryRepository {
	return &inventoryRepo{db: db}
}

func (r *inventoryRepo) Create(ctx context.Context, item *models.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (id, tenant_id, name, sku, quantity, reorder_threshold, unit, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.TenantID, item.Name, item.SKU, item.Quantity, item.ReorderThreshold, item.Unit)
	return err
}

func (r *inventoryRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.InventoryItem, error) {
	item := &models.InventoryItem{}
	query := `
		SELECT id, tenant_id, name, sku, quantity, reorder_threshold, unit, last_updated
		FROM inventory_items
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&item.ID, &item.TenantID, &item.Name, &item.SKU, &item.Quantity, &item.ReorderThreshold, &item.Unit, &item.LastUpdated)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *inventoryRepo) GetByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.InventoryItem, error) {
	item := &models.InventoryItem{}
	query := `
		SELECT id, tenant_id, name, sku, quantity, reorder_threshold, unit, last_updated
		FROM inventory_items
		WHERE tenant_id = $1 AND id = $2
		FOR UPDATE
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&item.ID, &item.TenantID, &item.Name, &item.SKU, &item.Quantity, &item.ReorderThreshold, &item.Unit, &item.LastUpdated)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *inventoryRepo) SetQuantity(ctx context.Context, tenantID, id uuid.UUID, quantity int) error {
	query := `
		UPDATE inventory_items
		SET quantity = $1, last_updated = NOW()
		WHERE tenant_id = $2 AND id = $3
	`
	_, err := r.db.Exec(ctx, query, quantity, tenantID, id)
	return err
}

// DecrementIfSufficient verifies and decrements in a single conditional
// UPDATE; the row lock serializes concurrent callers on the same item, so two
// fulfillments can never jointly oversell. On refusal the current quantity is
// re-read to fill the error payload.
func (r *inventoryRepo) DecrementIfSufficient(ctx context.Context, tenantID, id uuid.UUID, amount int) (int, error) {
	var newQuantity int
	query := `
		UPDATE inventory_items
		SET quantity = quantity - $3, last_updated = NOW()
		WHERE tenant_id = $1 AND id = $2 AND quantity >= $3
		RETURNING quantity
	`
	err := r.db.QueryRow(ctx, query, tenantID, id, amount).Scan(&newQuantity)
	if err == nil {
		return newQuantity, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	var available int
	err = r.db.QueryRow(ctx, `SELECT quantity FROM inventory_items WHERE tenant_id = $1 AND id = $2`, tenantID, id).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, common.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return 0, &common.StockInsufficientError{Available: available, Requested: amount}
}

func (r *inventoryRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.InventoryItem, error) {
	query := `
		SELECT id, tenant_id, name, sku, quantity, reorder_threshold, unit, last_updated
		FROM inventory_items
		WHERE tenant_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInventoryItems(rows)
}

// ListLowStock is a derived read; low stock is never stored as a flag.
func (r *inventoryRepo) ListLowStock(ctx context.Context, tenantID uuid.UUID) ([]*models.InventoryItem, error) {
	query := `
		SELECT id, tenant_id, name, sku, quantity, reorder_threshold, unit, last_updated
		FROM inventory_items
		WHERE tenant_id = $1 AND quantity <= reorder_threshold
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInventoryItems(rows)
}

func scanInventoryItems(rows pgx.Rows) ([]*models.InventoryItem, error) {
	var items []*models.InventoryItem
	for rows.Next() {
		item := &models.InventoryItem{}
		if err := rows.Scan(&item.ID, &item.TenantID, &item.Name, &item.SKU, &item.Quantity, &item.ReorderThreshold, &item.Unit, &item.LastUpdated); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
