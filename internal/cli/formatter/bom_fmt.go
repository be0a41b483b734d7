package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/shopfloor/internal/domain"
)

func FormatBOMList(boms []*domain.BillOfMaterials) string {
	if len(boms) == 0 {
		return Dim("No bills of materials.") + "\n"
	}
	headers := []string{"ID", "NAME", "VERSION", "LINES", "COST", "CREATED"}
	rows := make([][]string, 0, len(boms))
	for _, b := range boms {
		name := b.Name
		if b.IsArchived() {
			name = Dim(name + " (archived)")
		}
		rows = append(rows, []string{
			TruncID(b.ID), name, "v" + strconv.Itoa(b.Version), strconv.Itoa(len(b.Lines)),
			Money(b.TotalCost()), b.CreatedAt.Local().Format("2006-01-02"),
		})
	}
	return RenderTable(headers, rows, 2, 3, 4)
}

// FormatBOM renders one version with its lines and costs at current prices.
func FormatBOM(b *domain.BillOfMaterials) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %s\n", Bold(b.Name), StylePurple.Render("v"+strconv.Itoa(b.Version)), TruncID(b.ID))
	if b.Description != "" {
		sb.WriteString(Dim(b.Description) + "\n")
	}
	sb.WriteString("\n")

	headers := []string{"COMPONENT", "QTY", "UNIT COST", "LINE COST", "NOTES"}
	rows := make([][]string, 0, len(b.Lines))
	for _, l := range b.Lines {
		rows = append(rows, []string{
			l.ComponentName, strconv.Itoa(l.QuantityRequired),
			Money(l.UnitCost), Money(l.LineCost()), l.Notes,
		})
	}
	sb.WriteString(RenderTable(headers, rows, 1, 2, 3))
	fmt.Fprintf(&sb, "\nTotal cost: %s\n", Bold(Money(b.TotalCost())))
	return sb.String()
}
