package reports

import (
	"bytes"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/phpdave11/gofpdf"

	"github.com/awakeapp/AWAKE-sub000/internal/money"
)

// StatementPDF renders the same range as Statement as a downloadable PDF.
func (h *Handler) StatementPDF(c *fiber.Ctx) error {
	userID := requestUserID(c)
	if userID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	from, to, err := rangeParams(c)
	if err != nil {
		return err
	}
	accountID := strings.TrimSpace(c.Query("account_id"))

	ctx := c.UserContext()

	q := `
SELECT id::text, kind, description, amount::bigint, balance_after::bigint,
       occurred_on::date::text
FROM ledger_entries
WHERE owner_id = $1::uuid AND state = 'active'
  AND occurred_on::date BETWEEN $2::date AND $3::date`
	args := []any{userID, from, to}
	if accountID != "" {
		q += ` AND account_id = $4::uuid`
		args = append(args, accountID)
	}
	q += `
ORDER BY occurred_on DESC, created_at DESC
LIMIT 2000`

	rows, err := h.Pool.Query(ctx, q, args...)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed statement: "+err.Error())
	}
	defer rows.Close()

	type row struct {
		ID           string
		Kind         string
		Description  string
		Amount       int64
		BalanceAfter int64
		Date         string
	}

	var items []row
	var totalCredits, totalDebits int64
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.ID, &r.Kind, &r.Description, &r.Amount, &r.BalanceAfter, &r.Date); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "scan statement: "+err.Error())
		}
		if r.Kind == "credit" {
			totalCredits += r.Amount
		} else {
			totalDebits += r.Amount
		}
		items = append(items, r)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 48)
	pdf.SetTextColor(235, 235, 235)
	pdf.Text(25, 140, "AWAKE")

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Account Statement")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "Period: "+from+" to "+to)
	pdf.Ln(5)
	pdf.Cell(0, 6, "User: "+maskID(userID))
	pdf.Ln(10)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 11)

	sumW := []float64{62, 62, 62}
	pdf.CellFormat(sumW[0], 10, "Credits", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[1], 10, "Debits", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[2], 10, "Net", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(sumW[0], 10, money.CentsString(totalCredits), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[1], 10, money.CentsString(totalDebits), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[2], 10, money.CentsString(totalCredits-totalDebits), "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	colW := []float64{22, 26, 78, 28, 26}
	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(245, 245, 245)
		pdf.SetTextColor(20, 20, 20)
		pdf.CellFormat(colW[0], 8, "KIND", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW[1], 8, "DATE", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW[2], 8, "DESCRIPTION", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW[3], 8, "AMOUNT", "1", 0, "R", true, 0, "")
		pdf.CellFormat(colW[4], 8, "BALANCE", "1", 1, "R", true, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(30, 30, 30)
	}
	header()

	maxRows := 200
	for i, it := range items {
		if i >= maxRows {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.CellFormat(0, 8, "…truncated (too many rows)", "1", 1, "C", false, 0, "")
			break
		}

		if pdf.GetY() > 270 {
			pdf.AddPage()
			header()
		}

		amt := money.CentsString(it.Amount)
		if it.Kind == "debit" {
			amt = "-" + amt
		}

		pdf.CellFormat(colW[0], 8, strings.ToUpper(it.Kind), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[1], 8, it.Date, "1", 0, "C", false, 0, "")

		x := pdf.GetX()
		y := pdf.GetY()

		pdf.MultiCell(colW[2], 8, trimTo(it.Description, 80), "1", "L", false)
		usedH := pdf.GetY() - y
		pdf.SetXY(x+colW[2], y)

		pdf.CellFormat(colW[3], usedH, amt, "1", 0, "R", false, 0, "")
		pdf.CellFormat(colW[4], usedH, money.CentsString(it.BalanceAfter), "1", 1, "R", false, 0, "")
	}

	pdf.SetY(-18)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 10, "Generated "+time.Now().Format(time.RFC3339), "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "pdf build failed: "+err.Error())
	}

	filename := "statement-" + from + "-to-" + to + ".pdf"
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}

func maskID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) <= 8 {
		return id
	}
	return id[:4] + "…" + id[len(id)-4:]
}

func trimTo(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
