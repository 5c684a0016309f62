package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// archiveAudit exports yesterday's audit entries per tenant to object
// storage. Entries stay in the database; the export is a cold copy.
func (js *JobScheduler) archiveAudit(ctx context.Context) {
	day := time.Now().UTC().AddDate(0, 0, -1)
	from := day.Format("2006-01-02")
	to := day.AddDate(0, 0, 1).Format("2006-01-02")

	offset := 0
	for {
		tenants, err := js.tenantRepo.List(ctx, tenantSweepPageSize, offset)
		if err != nil {
			log.Error().Err(err).Msg("audit archive: failed to list tenants")
			return
		}
		if len(tenants) == 0 {
			return
		}

		for _, tenant := range tenants {
			entries, err := js.auditService.ExportRange(ctx, tenant.ID, from, to)
			if err != nil {
				log.Error().Err(err).Str("tenant_id", tenant.ID.String()).Msg("audit archive: export failed")
				continue
			}
			if err := js.archiveService.ArchiveAuditEntries(ctx, tenant.ID, day, entries); err != nil {
				log.Error().Err(err).Str("tenant_id", tenant.ID.String()).Msg("audit archive: upload failed")
			}
		}
		offset += tenantSweepPageSize
	}
}
