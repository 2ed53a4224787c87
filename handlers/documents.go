package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/satheeshds/facturation/invoice"
	"github.com/satheeshds/facturation/mailer"
	"github.com/satheeshds/facturation/models"
	"github.com/satheeshds/facturation/pdf"
)

func loadClient(id int, ownerName string) *models.Client {
	c, err := scanClient(DB.QueryRow(clientSelectQuery+" WHERE id = ? AND owner = ?", id, ownerName))
	if err != nil {
		return nil
	}
	return &c
}

// renderInvoicePDF renders inv, stores the document and records its handle
// on the invoice, discarding any previously generated copy.
func renderInvoicePDF(inv models.Invoice) (string, []byte, error) {
	client := loadClient(inv.ClientID, inv.Owner)
	profile := loadProfile(inv.Owner)

	data, err := pdf.RenderInvoice(inv, client, profile)
	if err != nil {
		return "", nil, err
	}

	handle, err := Files.Save(data)
	if err != nil {
		return "", nil, fmt.Errorf("%w: storing document: %v", invoice.ErrDocumentGeneration, err)
	}

	if _, err := DB.Exec("UPDATE invoices SET pdf_file_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", handle, inv.ID); err != nil {
		Files.Delete(handle)
		return "", nil, err
	}
	if inv.PDFFileID != nil {
		Files.Delete(*inv.PDFFileID)
	}
	return handle, data, nil
}

// GenerateInvoicePDF renders an invoice to PDF
// @Summary      Generate PDF
// @Description  Render the invoice as a PDF document and store it. Regenerating replaces the previous copy.
// @Tags         documents
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Failure      500  {object}  Response{error=string}
// @Router       /invoices/{id}/pdf [post]
// @Security     BasicAuth
func GenerateInvoicePDF(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	inv, err := getInvoice(id, owner(r))
	if err != nil {
		writeCoreError(w, err)
		return
	}

	handle, _, err := renderInvoicePDF(inv)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"pdf_file_id": handle,
		"url":         Files.URL(handle),
	})
}

// GetInvoicePDF streams the invoice PDF
// @Summary      Download PDF
// @Description  Stream the invoice PDF inline, generating it first if needed.
// @Tags         documents
// @Produce      application/pdf
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {file}    binary
// @Failure      404  {object}  Response{error=string}
// @Router       /invoices/{id}/pdf [get]
// @Security     BasicAuth
func GetInvoicePDF(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	inv, err := getInvoice(id, owner(r))
	if err != nil {
		writeCoreError(w, err)
		return
	}

	var data []byte
	if inv.PDFFileID != nil {
		data, err = Files.Read(*inv.PDFFileID)
	}
	if inv.PDFFileID == nil || err != nil {
		_, data, err = renderInvoicePDF(inv)
		if err != nil {
			writeCoreError(w, err)
			return
		}
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", attachmentName(inv, loadClient(inv.ClientID, owner(r)))))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// attachmentName builds the document filename, with every non-alphanumeric
// rune of the client name collapsed to a dash.
func attachmentName(inv models.Invoice, client *models.Client) string {
	name := "client"
	if client != nil {
		name = client.Name
	}
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('-')
		}
	}
	return fmt.Sprintf("Facture-%s-%s.pdf", inv.InvoiceNumber, b.String())
}

type emailInput struct {
	CustomMessage string `json:"custom_message"`
}

// emailBody assembles the French plain-text body of an invoice email.
func emailBody(inv models.Invoice, client *models.Client, profile *models.Profile, customMessage string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bonjour %s,\n", client.ContactName)
	if customMessage != "" {
		fmt.Fprintf(&b, "\n%s\n", customMessage)
	}
	fmt.Fprintf(&b, "\nVoici la facture n°%s du mois de %s d'un montant de %s.\n",
		inv.InvoiceNumber, models.FrenchMonth(inv.InvoiceDate.Month()), models.FormatEUR(inv.TotalAmount))
	b.WriteString("\nEn te souhaitant une excellente journée,\n\n")
	b.WriteString(firstName(profile.Name))
	return b.String()
}

func firstName(full string) string {
	if fields := strings.Fields(full); len(fields) > 0 {
		return fields[0]
	}
	return full
}

// EmailInvoice emails an invoice to its client
// @Summary      Email invoice
// @Description  Render the invoice, attach the PDF and send it to the client, bcc to the issuer. A draft invoice becomes sent on success.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id     path      int         true   "Invoice ID"
// @Param        email  body      emailInput  false  "Optional message inserted into the body"
// @Success      200    {object}  Response{data=map[string]string}
// @Failure      400    {object}  Response{error=string}
// @Failure      404    {object}  Response{error=string}
// @Failure      502    {object}  Response{error=string}
// @Router       /invoices/{id}/email [post]
// @Security     BasicAuth
func EmailInvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input emailInput
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	inv, err := getInvoice(id, owner(r))
	if err != nil {
		writeCoreError(w, err)
		return
	}
	client := loadClient(inv.ClientID, owner(r))
	profile := loadProfile(owner(r))
	if client == nil || profile == nil {
		writeError(w, http.StatusBadRequest, "invoice client or issuer profile not found")
		return
	}
	if client.Email == "" {
		writeError(w, http.StatusBadRequest, "client has no email address")
		return
	}

	_, data, err := renderInvoicePDF(inv)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	err = Mail.Send(mailer.Message{
		FromName: profile.Name,
		To:       client.Email,
		Bcc:      profile.Email,
		Subject:  "Facture n°" + inv.InvoiceNumber,
		Body:     emailBody(inv, client, profile, input.CustomMessage),
		Attachments: []mailer.Attachment{{
			Filename: attachmentName(inv, client),
			Bytes:    data,
			MIMEType: "application/pdf",
		}},
	})
	if err != nil {
		writeCoreError(w, err)
		return
	}

	if inv.Status == models.StatusDraft {
		if _, err := DB.Exec("UPDATE invoices SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND owner = ?",
			models.StatusSent, id, owner(r)); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "email sent"})
}

// maxUploadSize caps uploaded documents at 10 MiB.
const maxUploadSize = 10 << 20

// UploadFile stores an uploaded document
// @Summary      Upload file
// @Description  Store a document (multipart field "file") and return its handle, for linking to an imported invoice.
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Document to store"
// @Success      201   {object}  Response{data=map[string]string}
// @Failure      400   {object}  Response{error=string}
// @Router       /files [post]
// @Security     BasicAuth
func UploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading upload: "+err.Error())
		return
	}

	handle, err := Files.Save(data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"file_id": handle,
		"url":     Files.URL(handle),
	})
}

// GetFile streams a stored document
// @Summary      Download file
// @Description  Stream a stored document by handle.
// @Tags         documents
// @Produce      application/octet-stream
// @Param        id   path      string  true  "File handle"
// @Success      200  {file}    binary
// @Failure      404  {object}  Response{error=string}
// @Router       /files/{id} [get]
// @Security     BasicAuth
func GetFile(w http.ResponseWriter, r *http.Request) {
	data, err := Files.Read(chi.URLParam(r, "id"))
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
