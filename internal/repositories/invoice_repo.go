package repositories

import (
	"context"

	"dentalops/internal/models"

	"github.com/google/uuid"
)

// InvoiceRepository is read-only: invoices feed the timeline, billing is out
// of scope.
type InvoiceRepository interface {
	ListByPatient(ctx context.Context, tenantID, patientID uuid.UUID) ([]*models.Invoice, error)
}

type invoiceRepo struct {
	db Database
}

func NewInvoiceRepo(db Database) InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) ListByPatient(ctx context.Context, tenantID, patientID uuid.UUID) ([]*models.Invoice, error) {
	query := `
		SELECT id, tenant_id, patient_id, invoice_number, total_amount, status, issued_at
		FROM invoices
		WHERE tenant_id = $1 AND patient_id = $2
		ORDER BY issued_at DESC
	`
	rows, err := r.db.Query(ctx, query, tenantID, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		invoice := &models.Invoice{}
		if err := rows.Scan(&invoice.ID, &invoice.TenantID, &invoice.PatientID, &invoice.InvoiceNumber,
			&invoice.TotalAmount, &invoice.Status, &invoice.IssuedAt); err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}
