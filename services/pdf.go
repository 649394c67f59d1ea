package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"globetrail/database"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

// ─── Layout helpers ──────────────────────────────────────────────────────────

type pdfDoc struct {
	*gofpdf.Fpdf
	tr func(string) string
}

func newDoc(subtitle string) *pdfDoc {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 25)
	pdf.AddPage()
	d := &pdfDoc{Fpdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	// ── Brand bar ───────────────────────────────────────────
	d.SetFillColor(13, 24, 37)
	d.Rect(0, 0, 210, 28, "F")
	d.SetTextColor(255, 255, 255)
	d.SetFont("Helvetica", "B", 18)
	d.SetXY(20, 8)
	d.CellFormat(100, 10, "GlobeTrail", "", 0, "L", false, 0, "")
	d.SetFont("Helvetica", "", 10)
	d.SetTextColor(212, 168, 67)
	d.SetXY(20, 18)
	d.CellFormat(170, 6, subtitle, "", 1, "L", false, 0, "")

	d.SetY(35)
	d.SetTextColor(0, 0, 0)
	return d
}

func (d *pdfDoc) sectionHeader(title string) {
	d.SetFillColor(13, 24, 37)
	d.SetTextColor(255, 255, 255)
	d.SetFont("Helvetica", "B", 11)
	d.CellFormat(170, 8, "  "+d.tr(title), "", 1, "L", true, 0, "")
	d.SetTextColor(0, 0, 0)
	d.Ln(2)
}

func (d *pdfDoc) row(label, value string) {
	d.SetFont("Helvetica", "", 10)
	d.SetTextColor(100, 100, 100)
	d.CellFormat(55, 7, label, "", 0, "L", false, 0, "")
	d.SetTextColor(20, 20, 20)
	d.SetFont("Helvetica", "B", 10)
	d.CellFormat(115, 7, d.tr(value), "", 1, "L", false, 0, "")
}

func (d *pdfDoc) footer(text string) {
	d.SetY(-22)
	d.SetDrawColor(200, 200, 200)
	d.SetLineWidth(0.3)
	d.Line(20, d.GetY(), 190, d.GetY())
	d.SetFont("Helvetica", "I", 8)
	d.SetTextColor(150, 150, 150)
	d.CellFormat(0, 8, text, "", 0, "C", false, 0, "")
}

func (d *pdfDoc) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// ─── Itinerary ───────────────────────────────────────────────────────────────

// ItineraryPDF renders a saved itinerary grouped by day.
func ItineraryPDF(it *database.Itinerary) ([]byte, error) {
	d := newDoc("AI-Assisted Travel Itinerary")

	d.sectionHeader("Trip Overview")
	d.row("Destination", it.Destination)
	d.row("Dates", fmtDateReadable(it.StartDate)+" - "+fmtDateReadable(it.EndDate))
	d.row("Duration", fmt.Sprintf("%d day(s)", max(it.NumberOfDays, 1)))
	d.row("Travelers", it.Travelers)
	d.row("Budget", it.Budget)
	d.Ln(4)

	currentDay := ""
	for _, p := range it.OrderedPlaces() {
		if p.Day != currentDay {
			currentDay = p.Day
			d.sectionHeader(currentDay)
		}

		d.SetFont("Helvetica", "B", 11)
		d.SetTextColor(13, 24, 37)
		d.CellFormat(170, 7, d.tr(fmt.Sprintf("%d. %s", p.VisitOrder, p.Name)), "", 1, "L", false, 0, "")

		fee := "Free entry"
		if p.EntryFee > 0 {
			fee = fmt.Sprintf("Entry fee: %d", p.EntryFee)
		}
		meta := fee
		if p.VisitTime != "" {
			meta = p.VisitTime + "  |  " + fee
		}
		d.SetFont("Helvetica", "I", 9)
		d.SetTextColor(100, 100, 100)
		d.CellFormat(170, 5, d.tr(meta), "", 1, "L", false, 0, "")

		if p.Description != "" {
			d.SetFont("Helvetica", "", 10)
			d.SetTextColor(40, 40, 40)
			d.MultiCell(170, 5, d.tr(p.Description), "", "L", false)
		}
		if p.Facts != "" {
			d.SetFont("Helvetica", "I", 9)
			d.SetTextColor(130, 90, 20)
			d.MultiCell(170, 5, d.tr(p.Facts), "", "L", false)
		}
		d.Ln(3)
	}

	d.footer("Generated by GlobeTrail - Not a booking confirmation - Opening hours and fees may change")
	return d.bytes()
}

// ─── Ticket ──────────────────────────────────────────────────────────────────

// TicketPDF renders an e-ticket with a QR code of the booking reference.
func TicketPDF(b *database.Booking) ([]byte, error) {
	qrPNG, err := qrcode.Encode(b.BookingReference, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}

	d := newDoc("E-Ticket")
	f := b.FlightDetails

	d.sectionHeader("Booking")
	d.row("Reference", b.BookingReference)
	d.row("Status", strings.ToUpper(b.Status))
	d.row("Issued", time.Now().UTC().Format("02 Jan 2006, 15:04 UTC"))

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	d.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	d.ImageOptions("qr", 150, 36, 40, 40, false, imageOpts, 0, "")
	d.Ln(6)

	d.sectionHeader("Flight")
	d.row("Airline", f.Airline.Name)
	d.row("Flight", f.FlightNumber())
	d.row("Route", f.Origin+" - "+f.Destination)
	d.row("Departure", fmtDateTime(f.DepartureTime))
	d.row("Arrival", fmtDateTime(f.ArrivalTime))
	stops := "Direct"
	if f.Stops > 0 {
		stops = fmt.Sprintf("%d stop(s)", f.Stops)
	}
	d.row("Stops", stops)
	d.row("Cabin", b.SeatClass)
	d.Ln(4)

	d.sectionHeader("Passengers")
	for i, p := range b.Passengers {
		seat := p.SeatNumber
		if seat == "" {
			seat = "not assigned"
		}
		d.row(fmt.Sprintf("%d. %s %s", i+1, p.FirstName, p.LastName), "Seat "+seat)
	}
	d.Ln(4)

	d.sectionHeader("Payment")
	d.row("Amount", fmt.Sprintf("%.2f %s", b.Payment.Amount, b.Payment.Currency))
	d.row("Payment status", b.Payment.Status)

	d.footer("GlobeTrail e-ticket - Present this QR code at check-in")
	return d.bytes()
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func fmtDateReadable(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02 Jan 2006 (Mon)")
}

func fmtDateTime(s string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02 Jan 2006 15:04")
		}
	}
	if s == "" {
		return "N/A"
	}
	return s
}
