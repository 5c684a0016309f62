package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"dentalops/internal/common"
	"dentalops/internal/models"
	"dentalops/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

type InventoryService interface {
	Create(ctx context.Context, item *models.InventoryItem) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.InventoryItem, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.InventoryItem, error)
	ListLowStock(ctx context.Context, tenantID uuid.UUID) ([]*models.InventoryItem, error)
	Adjust(ctx context.Context, tenantID, itemID uuid.UUID, delta int, reason string, actorID uuid.UUID) (*models.InventoryItem, error)
}

type inventoryService struct {
	db                  repositories.TxDatabase
	inventoryRepo       repositories.InventoryRepository
	auditRepo           repositories.AuditRepository
	notificationService NotificationService
}

func NewInventoryService(db repositories.TxDatabase, inventoryRepo repositories.InventoryRepository, auditRepo repositories.AuditRepository, notificationService NotificationService) InventoryService {
	return &inventoryService{
		db:                  db,
		inventoryRepo:       inventoryRepo,
		auditRepo:           auditRepo,
		notificationService: notificationService,
	}
}

func (s *inventoryService) Create(ctx context.Context, item *models.InventoryItem) error {
	if item.Name == "" {
		return fmt.Errorf("%w: name is required", common.ErrValidation)
	}
	if item.Quantity < 0 || item.ReorderThreshold < 0 {
		return fmt.Errorf("%w: quantity and reorder threshold must be non-negative", common.ErrInvalidQuantity)
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if err := s.inventoryRepo.Create(ctx, item); err != nil {
		return fmt.Errorf("%w: create inventory item: %v", common.ErrTransient, err)
	}
	return nil
}

func (s *inventoryService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.InventoryItem, error) {
	item, err := s.inventoryRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: load inventory item: %v", common.ErrTransient, err)
	}
	return item, nil
}

func (s *inventoryService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.InventoryItem, error) {
	items, err := s.inventoryRepo.List(ctx, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list inventory: %v", common.ErrTransient, err)
	}
	return items, nil
}

func (s *inventoryService) ListLowStock(ctx context.Context, tenantID uuid.UUID) ([]*models.InventoryItem, error) {
	items, err := s.inventoryRepo.ListLowStock(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: list low stock: %v", common.ErrTransient, err)
	}
	return items, nil
}

// Adjust applies a manual correction to an item's quantity. The read, the
// write, and the audit entry commit together; the quantity is never allowed
// below zero.
func (s *inventoryService) Adjust(ctx context.Context, tenantID, itemID uuid.UUID, delta int, reason string, actorID uuid.UUID) (*models.InventoryItem, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: adjustment delta must be non-zero", common.ErrInvalidQuantity)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %v", common.ErrTransient, err)
	}
	defer tx.Rollback(ctx)

	txInventoryRepo := repositories.NewInventoryRepo(tx)
	txAuditRepo := repositories.NewAuditRepo(tx)

	item, err := txInventoryRepo.GetByIDForUpdate(ctx, tenantID, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: load inventory item: %v", common.ErrTransient, err)
	}

	newQuantity := item.Quantity + delta
	if newQuantity < 0 {
		return nil, fmt.Errorf("%w: adjustment would drive quantity below zero", common.ErrInvalidQuantity)
	}
	if err := txInventoryRepo.SetQuantity(ctx, tenantID, itemID, newQuantity); err != nil {
		return nil, fmt.Errorf("%w: update quantity: %v", common.ErrTransient, err)
	}

	fromState := strconv.Itoa(item.Quantity)
	toState := strconv.Itoa(newQuantity)
	entry := &models.AuditEntry{
		ID:          uuid.New(),
		TenantID:    tenantID,
		SubjectType: "inventory_item",
		SubjectID:   itemID.String(),
		Action:      models.AuditInventoryAdjust,
		FromState:   &fromState,
		ToState:     &toState,
		ActorID:     &actorID,
		Details:     models.JSONB{"delta": delta},
	}
	if reason != "" {
		entry.Reason = &reason
	}
	if err := txAuditRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: record audit entry: %v", common.ErrTransient, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit transaction: %v", common.ErrTransient, err)
	}

	item.Quantity = newQuantity
	s.notificationService.Publish(ctx, tenantID, EventInventoryAdjusted, models.JSONB{
		"item_id":  itemID.String(),
		"delta":    delta,
		"quantity": newQuantity,
	})
	if item.LowStock() {
		log.Info().Str("tenant_id", tenantID.String()).Str("item_id", itemID.String()).Int("quantity", newQuantity).Msg("inventory item at or below reorder threshold")
		s.notificationService.Publish(ctx, tenantID, EventInventoryLowStock, models.JSONB{
			"item_id":           itemID.String(),
			"quantity":          newQuantity,
			"reorder_threshold": item.ReorderThreshold,
		})
	}
	return item, nil
}
