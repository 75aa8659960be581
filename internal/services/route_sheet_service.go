package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pickupcore/internal/domain"
	"pickupcore/internal/domain/models"
	"pickupcore/internal/repositories"

	"github.com/phpdave11/gofpdf"
)

// RouteSheetService renders the printable driver manifest for a session.
type RouteSheetService struct {
	DB *sql.DB
}

type routeSheet struct {
	Date       string
	Session    models.Session
	DriverName string
	Stops      []models.Booking
	ZoneNames  map[string]string
}

// Generate returns the PDF and a download filename. driverID limits the
// sheet to one driver's stops.
func (s RouteSheetService) Generate(ctx context.Context, date, sessionID string, driverID *int64) ([]byte, string, error) {
	db := pickDB(s.DB)
	d, sess, err := DispatchService{DB: db}.Slot(ctx, date, sessionID)
	if err != nil {
		return nil, "", err
	}

	sheet := routeSheet{Date: d, Session: sess, ZoneNames: map[string]string{}}
	if driverID != nil {
		drv, err := repositories.DriverRepository{DB: db}.GetByID(ctx, *driverID)
		if err != nil {
			return nil, "", wrapStore(err, "load driver")
		}
		sheet.DriverName = drv.Name
	}

	sheet.Stops, err = repositories.BookingRepository{DB: db}.ListStops(ctx, d, sess.ID, driverID)
	if err != nil {
		return nil, "", wrapStore(err, "list stops")
	}
	zones, err := repositories.ZoneRepository{DB: db}.List(ctx)
	if err != nil {
		return nil, "", wrapStore(err, "load zones")
	}
	for _, z := range zones {
		sheet.ZoneNames[z.ID] = z.Name
	}

	out, name, err := buildRouteSheetPDF(sheet)
	if err != nil {
		return nil, "", domain.InternalError{Msg: "gagal membuat PDF", Err: err}
	}
	return out, name, nil
}

func buildRouteSheetPDF(rs routeSheet) ([]byte, string, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Route Sheet", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PICKUP ROUTE SHEET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pax := 0
	for _, b := range rs.Stops {
		pax += b.Pax
	}
	lines := []string{
		fmt.Sprintf("Date    : %s", rs.Date),
		fmt.Sprintf("Session : %s", safe(rs.Session.Name, rs.Session.ID)),
		fmt.Sprintf("Driver  : %s", safe(rs.DriverName, "all drivers")),
		fmt.Sprintf("Stops   : %d (%d pax)", len(rs.Stops), pax),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	widths := []float64{10, 14, 50, 40, 60, 12, 40, 40}
	header := []string{"#", "Time", "Guest", "Phone", "Hotel", "Pax", "Zone", "Status"}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range header {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	for i, b := range rs.Stops {
		zone := "-"
		if b.ZoneID != nil {
			zone = safe(rs.ZoneNames[*b.ZoneID], *b.ZoneID)
		}
		row := []string{
			fmt.Sprintf("%d", i+1),
			safe(b.PickupTime, "-"),
			clip(b.GuestName, 28),
			clip(b.GuestPhone, 22),
			clip(b.HotelName, 34),
			fmt.Sprintf("%d", b.Pax),
			clip(zone, 22),
			strings.ReplaceAll(string(b.TransportStatus), "_", " "),
		}
		for j, v := range row {
			pdf.CellFormat(widths[j], 7, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(7)
	}
	if len(rs.Stops) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 7, "No active bookings for this session.")
		pdf.Ln(7)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ROUTE_%s_%s_%s.pdf", rs.Date, safeFilenamePart(rs.Session.ID), safeFilenamePart(rs.DriverName))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func clip(v string, n int) string {
	v = safe(v, "-")
	r := []rune(v)
	if len(r) > n {
		return string(r[:n-1]) + "."
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "ALL"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
