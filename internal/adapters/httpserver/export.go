package httpserver

import (
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/phenrril/shopfeed/internal/domain"
	"github.com/phenrril/shopfeed/internal/schema"
)

const exportPageSize = 500

var exportHeader = []any{
	"ID", "Title", "Vendor", "Type", "Status", "Min Price", "Max Price",
	"Created At", "Updated At", "Published At", "Tags", "URL",
}

// handleExport streams the filtered catalog as an xlsx workbook. It accepts
// the same filter[...] parameters as /products; pagination parameters are
// ignored because the export walks every page itself.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"message": "Method not allowed."})
		return
	}

	q, err := schema.ParseQuery(r.URL.Query())
	if err != nil {
		s.writeQueryError(w, err)
		return
	}
	q.Page = 1
	q.Limit = exportPageSize

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Products"
	f.SetSheetName("Sheet1", sheet)
	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		s.writeError(w, err)
		return
	}

	row := 2
	for {
		page, err := s.products.FindAll(r.Context(), q)
		if err != nil {
			s.writeError(w, err)
			return
		}
		for i := range page.Items {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(sheet, cell, exportRow(&page.Items[i])); err != nil {
				s.writeError(w, err)
				return
			}
			row++
		}
		if !page.HasMore {
			break
		}
		q.Page++
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="products-`+time.Now().Format("2006-01-02")+`.xlsx"`)
	// Headers are already out; a failed write here usually means the client
	// disconnected.
	_ = f.Write(w)
}

func exportRow(p *domain.Product) *[]any {
	return &[]any{
		p.ID, p.Title, p.Vendor, p.ProductType, string(p.Status),
		p.PriceRange.Min, p.PriceRange.Max,
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
		p.PublishedAt.Format(time.RFC3339),
		p.Tags, p.URL,
	}
}
