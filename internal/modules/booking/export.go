package booking

import (
	"context"
	"fmt"
	"io"

	"resirent/internal/domain"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Bookings"

var exportHeaders = []string{
	"Booking", "Residence", "Check-in", "Check-out", "Nights", "Status",
	"Price per night", "Guest", "Guest email", "Guest phone", "Created",
}

// ExportOwnerBookings writes the owner's booking list as an XLSX workbook.
func (s *Service) ExportOwnerBookings(ctx context.Context, ownerID int64, w io.Writer) error {
	list, err := s.ListOwnerBookings(ctx, ownerID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("booking: export: %w", err)
	}
	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return fmt.Errorf("booking: export: %w", err)
		}
	}
	for i := range list {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, exportRow(&list[i])); err != nil {
			return fmt.Errorf("booking: export: %w", err)
		}
	}

	if bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(exportSheet, 1, 1, bold)
	}
	_ = f.SetColWidth(exportSheet, "A", "K", 16)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("booking: export: %w", err)
	}
	return nil
}

func exportRow(d *domain.BookingDetails) *[]any {
	return &[]any{
		d.ID,
		d.ResidenceTitle,
		domain.FormatDate(d.CheckInDate),
		domain.FormatDate(d.CheckOutDate),
		d.Nights(),
		string(d.Status),
		d.PricePerNight.StringFixed(2),
		d.Guest.FirstName + " " + d.Guest.LastName,
		d.Guest.Email,
		d.Guest.PhoneNumber,
		d.CreatedAt.UTC().Format("2006-01-02 15:04"),
	}
}
