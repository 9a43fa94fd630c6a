// Package xlsx renders the bookings register as an Excel workbook.
package xlsx

import (
	"fmt"
	"io"

	"booking-finance/internal/core"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	BookingsSheet = "Bookings"
	PaymentsSheet = "Payments"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var bookingHeaders = []string{
	"Booking No", "Date", "Customer", "Project", "Unit",
	"BSP", "GST %", "GST", "Other Charges", "Other GST %", "Other GST",
	"PLC", "PLC GST %", "PLC GST", "TSP", "Total Received",
	"Gross Revenue", "CP Revenue", "Discount", "Net Revenue",
}

var paymentHeaders = []string{
	"Booking No", "Customer", "#", "Amount", "Date", "Status", "Mode", "Cheque No", "Transaction No",
}

// WriteBookingRegister writes one row per booking to the Bookings sheet and one
// row per scheduled payment to the Payments sheet. Amounts are numeric cells.
func WriteBookingRegister(w io.Writer, bookings []core.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", BookingsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(PaymentsSheet); err != nil {
		return fmt.Errorf("failed to add payments sheet: %w", err)
	}

	if err := writeRow(f, BookingsSheet, 1, toAny(bookingHeaders)); err != nil {
		return err
	}
	if err := writeRow(f, PaymentsSheet, 1, toAny(paymentHeaders)); err != nil {
		return err
	}

	paymentRow := 2
	for i, b := range bookings {
		p := b.Finance
		row := []any{
			b.BookingNumber, b.BookingDate, b.CustomerName, b.ProjectName, b.UnitNumber,
			num(p.BSP), num(p.GSTPercentage), num(p.GST),
			num(p.OtherCharges), num(p.OtherGSTPercentage), num(p.OtherGST),
			num(p.PLC), num(p.PLCGSTPercentage), num(p.PLCGST),
			num(p.TSP), num(p.TotalReceived),
			num(p.GrossRevenue), num(p.CPRevenue), num(p.Discount), num(p.NetRevenue),
		}
		if err := writeRow(f, BookingsSheet, i+2, row); err != nil {
			return err
		}

		for j, pay := range p.PaymentDetails {
			e := pay.ToEntry()
			row := []any{
				b.BookingNumber, b.CustomerName, j + 1, num(e.Amount), e.Date,
				string(e.Status), string(e.Mode), e.ChequeNumber, e.TransactionNo,
			}
			if err := writeRow(f, PaymentsSheet, paymentRow, row); err != nil {
				return err
			}
			paymentRow++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func num(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
