// Package pdf renders invoices as fixed-layout A4 documents in the French
// style: issuer and client header blocks, a bordered item table with
// alternating row shading, a boxed total with the TVA exemption notice and a
// boxed payment-instructions footer.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/satheeshds/facturation/invoice"
	"github.com/satheeshds/facturation/models"
)

// Fixed regulatory texts printed on every invoice.
const (
	escompteNotice = "Conditions d'escompte : Pas d'escompte pour règlement anticipé"
	tvaNotice      = "TVA non applicable, art. 293 B du CGI"
	penaltyNotice  = "Pour tout professionnel, en cas de retard de paiement, application de l'indemnité forfaitaire légale pour frais de recouvrement : 40,00 €"
)

// Placeholders for missing client data. An incomplete client record renders
// a readable document instead of failing.
const (
	unknownClient  = "Client inconnu"
	unknownAddress = "Adresse inconnue"
)

const (
	pageLeft   = 20.0
	tableWidth = 185.0
	tableTop   = 100.0
	rowHeight  = 8.0

	// Character budgets for wrapped text blocks.
	addressWrap = 40
	labelMax    = 35
)

// Column x-positions: description, quantity, unit price, discount, line total.
var colX = [5]float64{20, 100, 120, 150, 175}

// Rendering is deterministic: the same invoice data always produces the
// same bytes, so regenerating a document is idempotent.
var creationDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// RenderInvoice lays out inv as a complete, self-contained PDF and returns
// the document bytes. The renderer never persists or transmits anything.
// A nil client renders placeholder text; a nil profile is a precondition
// failure raised before any layout work.
func RenderInvoice(inv models.Invoice, client *models.Client, profile *models.Profile) ([]byte, error) {
	if profile == nil {
		return nil, fmt.Errorf("%w: issuer profile is not configured", invoice.ErrDocumentGeneration)
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCreationDate(creationDate)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")

	// Issuer block.
	doc.SetFont("Helvetica", "B", 16)
	doc.Text(pageLeft, 30, tr(profile.Name))

	doc.SetFont("Helvetica", "", 10)
	doc.Text(pageLeft, 40, tr(profile.Email))

	y := 45.0
	for _, line := range WrapText(profile.Address, addressWrap) {
		doc.Text(pageLeft, y, tr(line))
		y += 5
	}
	doc.Text(pageLeft, y+5, tr("N° SIRET: "+profile.Siret))

	// Client block.
	doc.SetFont("Helvetica", "B", 12)
	doc.Text(120, 30, tr("Facturer à:"))

	clientName := unknownClient
	clientAddress := unknownAddress
	if client != nil && client.Name != "" {
		clientName = client.Name
	}
	if client != nil && client.Address != "" {
		clientAddress = client.Address
	}

	doc.SetFont("Helvetica", "B", 10)
	doc.Text(120, 40, tr(clientName))

	doc.SetFont("Helvetica", "", 10)
	y = 45
	for _, line := range WrapText(clientAddress, labelMax) {
		doc.Text(120, y, tr(line))
		y += 5
	}
	if client != nil && client.LegalForm != nil && *client.LegalForm != "" {
		doc.Text(120, y+5, tr("Forme juridique: "+*client.LegalForm))
	}

	// Title.
	doc.SetFont("Helvetica", "B", 18)
	doc.Text(pageLeft, 90, tr("Facture N°"+inv.InvoiceNumber))

	// Item table header.
	doc.SetFillColor(245, 245, 245)
	doc.Rect(pageLeft, tableTop, tableWidth, rowHeight, "F")
	doc.SetDrawColor(221, 221, 221)
	doc.Rect(pageLeft, tableTop, tableWidth, rowHeight, "D")

	doc.SetFont("Helvetica", "B", 9)
	doc.Text(colX[0]+2, tableTop+5, tr("Description"))
	doc.Text(colX[1]+2, tableTop+5, tr("Qté"))
	doc.Text(colX[2]+2, tableTop+5, tr("Prix HT"))
	doc.Text(colX[3]+2, tableTop+5, tr("Remise"))
	doc.Text(colX[4]+2, tableTop+5, tr("Total HT"))

	// Item rows, shaded on odd indices.
	doc.SetFont("Helvetica", "", 9)
	cursor := tableTop + rowHeight
	for i, item := range inv.Items {
		if i%2 == 1 {
			doc.SetFillColor(250, 250, 250)
			doc.Rect(pageLeft, cursor, tableWidth, rowHeight, "F")
		}

		doc.Text(colX[0]+2, cursor+5, tr(itemLabel(item)))
		doc.Text(colX[1]+2, cursor+5, fmt.Sprintf("%d", item.Quantity))
		doc.Text(colX[2]+2, cursor+5, tr(models.FormatEUR(item.Price)))
		doc.Text(colX[3]+2, cursor+5, tr(discountLabel(item)))
		doc.Text(colX[4]+2, cursor+5, tr(models.FormatEUR(item.Total)))

		doc.Rect(pageLeft, cursor, tableWidth, rowHeight, "D")
		cursor += rowHeight
	}

	// Dates and the escompte boilerplate below the table.
	doc.SetFont("Helvetica", "", 9)
	doc.Text(pageLeft, cursor+15, tr("Date de facturation: "+models.FormatDate(inv.InvoiceDate)))
	doc.Text(pageLeft, cursor+20, tr("Date de règlement: "+models.FormatDate(inv.DueDate)))
	doc.Text(pageLeft, cursor+25, tr(escompteNotice))

	// Total callout, positioned relative to where the table ended.
	doc.SetDrawColor(0, 0, 0)
	doc.Rect(155, cursor+11, 45, 9, "D")
	doc.SetFont("Helvetica", "B", 12)
	doc.Text(160, cursor+17, tr("Total HT: "+models.FormatEUR(inv.TotalAmount)))
	doc.SetFont("Helvetica", "", 8)
	doc.Text(153, cursor+23, tr(tvaNotice))

	// Payment block. The offset is a fixed 140mm below the table end so the
	// box sits near the bottom of a standard page, not computed from the
	// content height.
	doc.SetDrawColor(0, 0, 0)
	doc.Rect(pageLeft, cursor+140, 180, 25, "D")
	doc.SetFont("Helvetica", "B", 10)
	doc.Text(22, cursor+145, tr("Paiement par virement bancaire"))
	doc.SetFont("Helvetica", "", 10)
	doc.Text(22, cursor+150, tr("IBAN: "+profile.IBAN))
	doc.Text(22, cursor+155, tr("BIC: "+profile.BIC))
	doc.Text(22, cursor+160, tr("Banque: "+profile.Bank))
	doc.SetFont("Helvetica", "", 8)
	doc.Text(pageLeft, cursor+170, tr(penaltyNotice))

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", invoice.ErrDocumentGeneration, err)
	}
	return buf.Bytes(), nil
}

// itemLabel appends the discount description in parentheses, then truncates
// to the column's character budget.
func itemLabel(item models.LineItem) string {
	label := item.Label
	if item.Discount.IsPositive() && item.DiscountText != "" {
		label += " (" + item.DiscountText + ")"
	}
	runes := []rune(label)
	if len(runes) > labelMax {
		runes = runes[:labelMax]
	}
	return string(runes)
}

// discountLabel shows "10%" or "5€", or a dash for undiscounted lines.
func discountLabel(item models.LineItem) string {
	if !item.Discount.IsPositive() {
		return "-"
	}
	unit := item.DiscountUnit
	if unit == "" {
		unit = models.DiscountPercent
	}
	return item.Discount.String() + unit
}
