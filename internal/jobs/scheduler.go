package jobs

import (
	"context"
	"time"

	"dentalops/internal/repositories"
	"dentalops/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// JobScheduler runs the periodic maintenance work: the low stock sweep and
// the nightly audit archive.
type JobScheduler struct {
	scheduler           gocron.Scheduler
	tenantRepo          repositories.TenantRepository
	inventoryRepo       repositories.InventoryRepository
	auditService        services.AuditService
	archiveService      services.ArchiveService
	notificationService services.NotificationService
}

func NewJobScheduler(tenantRepo repositories.TenantRepository, inventoryRepo repositories.InventoryRepository,
	auditService services.AuditService, archiveService services.ArchiveService,
	notificationService services.NotificationService) (*JobScheduler, error) {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:           scheduler,
		tenantRepo:          tenantRepo,
		inventoryRepo:       inventoryRepo,
		auditService:        auditService,
		archiveService:      archiveService,
		notificationService: notificationService,
	}
	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) registerJobs() error {
	_, err := js.scheduler.NewJob(
		gocron.DurationJob(30*time.Minute),
		gocron.NewTask(js.sweepLowStock, context.Background()),
		gocron.WithName("low-stock-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	_, err = js.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(2, 0, 0))),
		gocron.NewTask(js.archiveAudit, context.Background()),
		gocron.WithName("audit-archive"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	return err
}

func (js *JobScheduler) Start() {
	log.Info().Msg("starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Info().Msg("stopping background job scheduler")
	return js.scheduler.Shutdown()
}
