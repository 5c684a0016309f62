package jobs

import (
	"context"

	"dentalops/internal/models"
	"dentalops/internal/services"

	"github.com/rs/zerolog/log"
)

const tenantSweepPageSize = 500

// sweepLowStock walks active tenants and publishes an event for every item
// at or below its reorder threshold. Suspended and frozen tenants are
// skipped; nobody is there to reorder.
func (js *JobScheduler) sweepLowStock(ctx context.Context) {
	offset := 0
	for {
		tenants, err := js.tenantRepo.List(ctx, tenantSweepPageSize, offset)
		if err != nil {
			log.Error().Err(err).Msg("low stock sweep: failed to list tenants")
			return
		}
		if len(tenants) == 0 {
			return
		}

		for _, tenant := range tenants {
			if tenant.Status != models.TenantActive && tenant.Status != models.TenantMaintenance {
				continue
			}
			items, err := js.inventoryRepo.ListLowStock(ctx, tenant.ID)
			if err != nil {
				log.Error().Err(err).Str("tenant_id", tenant.ID.String()).Msg("low stock sweep: listing failed")
				continue
			}
			for _, item := range items {
				js.notificationService.Publish(ctx, tenant.ID, services.EventInventoryLowStock, models.JSONB{
					"item_id":           item.ID.String(),
					"name":              item.Name,
					"quantity":          item.Quantity,
					"reorder_threshold": item.ReorderThreshold,
				})
			}
			if len(items) > 0 {
				log.Info().Str("tenant_id", tenant.ID.String()).Int("items", len(items)).Msg("low stock sweep published alerts")
			}
		}
		offset += tenantSweepPageSize
	}
}
