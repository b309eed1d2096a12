package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/growgram/growgram-api/internal/domain/repository"
)

// AuditExportService renders a user's compliance audit trail as an XLSX
// workbook for legal record-keeping requests. Operator-facing only.
type AuditExportService struct {
	auditRepo   repository.AuditRepository
	sessionRepo repository.VerificationSessionRepository
}

// NewAuditExportService creates a new export service.
func NewAuditExportService(auditRepo repository.AuditRepository, sessionRepo repository.VerificationSessionRepository) (*AuditExportService, error) {
	if auditRepo == nil {
		return nil, fmt.Errorf("audit repository is required")
	}
	if sessionRepo == nil {
		return nil, fmt.Errorf("verification session repository is required")
	}
	return &AuditExportService{auditRepo: auditRepo, sessionRepo: sessionRepo}, nil
}

// ExportUserAudit builds the workbook: one sheet of tier transitions, one of
// verification sessions.
func (s *AuditExportService) ExportUserAudit(ctx context.Context, userID uint) (*bytes.Buffer, error) {
	entries, err := s.auditRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const auditSheet = "Tier Transitions"
	f.SetSheetName("Sheet1", auditSheet)

	auditHeaders := []string{"ID", "Kind", "From Tier", "To Tier", "Provider", "Method", "Reference", "Version", "Device", "IP", "Created At"}
	for i, h := range auditHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(auditSheet, cell, h)
	}
	for row, e := range entries {
		values := []interface{}{e.ID, e.Kind, string(e.FromTier), string(e.ToTier), e.Provider, e.Method, e.Reference, e.Version, e.Device, e.IP, e.CreatedAt.Format("2006-01-02 15:04:05")}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(auditSheet, cell, v)
		}
	}

	const sessionSheet = "Verification Sessions"
	if _, err := f.NewSheet(sessionSheet); err != nil {
		return nil, fmt.Errorf("failed to create sessions sheet: %w", err)
	}
	sessionHeaders := []string{"Session ID", "Provider", "Status", "Method", "Reference", "Created At", "Completed At"}
	for i, h := range sessionHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sessionSheet, cell, h)
	}
	for row, sess := range sessions {
		completed := ""
		if sess.CompletedAt != nil {
			completed = sess.CompletedAt.Format("2006-01-02 15:04:05")
		}
		values := []interface{}{sess.ID, sess.Provider, string(sess.Status), sess.Method, sess.Reference, sess.CreatedAt.Format("2006-01-02 15:04:05"), completed}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sessionSheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize audit export: %w", err)
	}
	return buf, nil
}
