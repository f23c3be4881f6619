package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Rushen88/PDM-sub000/pkg/application/dto"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

// Formats understood by Printer
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Printer renders engine results as text tables or JSON
type Printer struct {
	w      io.Writer
	format string
}

// NewPrinter creates a printer writing to w
func NewPrinter(w io.Writer, format string) (*Printer, error) {
	switch format {
	case FormatText, FormatJSON:
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	return &Printer{w: w, format: format}, nil
}

func (p *Printer) json(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(p.w, string(data))
	return err
}

func (p *Printer) table(header string, rows func(w io.Writer)) error {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	return tw.Flush()
}

// Import prints the result of a catalog import
func (p *Printer) Import(r *dto.ImportResult) error {
	if p.format == FormatJSON {
		return p.json(r)
	}
	_, err := fmt.Fprintf(p.w, "Imported %d items, %d templates, %d opening counts\n", r.Items, r.Templates, len(r.CountIDs))
	return err
}

// Tree prints a project tree depth first
func (p *Printer) Tree(t *dto.ProjectTree) error {
	if p.format == FormatJSON {
		return p.json(t.Walk())
	}
	fmt.Fprintf(p.w, "Project %s (%s) %s, due %s\n\n", t.Project.Name, t.Project.ID, t.Project.Status, day(t.Project.DueDate))
	return p.table("#\tItem\tQty\tStatus\tRequired\tOrder by\tProblems", func(w io.Writer) {
		for _, line := range t.Walk() {
			n := line.Node
			fmt.Fprintf(w, "%d\t%s%s\t%s %s\t%s\t%s\t%s\t%s\n",
				n.DisplayNumber,
				strings.Repeat("  ", line.Depth), n.Name,
				n.Quantity, n.Unit,
				nodeStatus(n),
				day(n.RequiredDate),
				day(n.OrderByDate),
				problems(n.ProblemReasons))
		}
	})
}

// Requirements prints requirement rows
func (p *Printer) Requirements(reqs []*entities.Requirement) error {
	if p.format == FormatJSON {
		return p.json(reqs)
	}
	return p.table("Item\tRequired\tOn hand\tReserved\tIn order\tTo order\tStatus\tOrder by", func(w io.Writer) {
		for _, r := range reqs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.NomenclatureID,
				r.TotalRequired,
				r.TotalAvailable,
				r.ReservedForNode,
				r.TotalInOrder,
				r.ToOrder,
				r.Status,
				day(r.OrderByDate))
		}
	})
}

// Sync prints the rows touched by a requirement sync
func (p *Printer) Sync(r *dto.SyncResult) error {
	r.Sort()
	if p.format == FormatJSON {
		return p.json(r)
	}
	_, err := fmt.Fprintf(p.w, "Project %s: %d created, %d updated, %d deleted\n",
		r.ProjectID, len(r.Created), len(r.Updated), len(r.Deleted))
	return err
}

// Reservations prints stock reservations
func (p *Printer) Reservations(res []*entities.StockReservation) error {
	if p.format == FormatJSON {
		return p.json(res)
	}
	return p.table("Reservation\tPosition\tItem\tQty\tConsumed\tStatus", func(w io.Writer) {
		for _, r := range res {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.PositionID, r.NomenclatureID, r.Quantity, r.ConsumedQuantity, r.Status)
		}
	})
}

// Positions prints stock positions with their free quantity
func (p *Printer) Positions(positions []*entities.StockPosition) error {
	if p.format == FormatJSON {
		return p.json(positions)
	}
	return p.table("Position\tWarehouse\tItem\tOn hand\tReserved\tAvailable", func(w io.Writer) {
		for _, sp := range positions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", sp.ID, sp.WarehouseID, sp.NomenclatureID, sp.Quantity, sp.ReservedQuantity, sp.Available())
		}
	})
}

// Message prints a plain line in text mode and {"message": ...} in JSON mode
func (p *Printer) Message(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if p.format == FormatJSON {
		return p.json(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(p.w, msg)
	return err
}

func nodeStatus(n *entities.TreeNode) string {
	if n.Purchased {
		return string(n.PurchaseStatus)
	}
	return string(n.ManufacturingStatus)
}

func problems(reasons []entities.ProblemReason) string {
	if len(reasons) == 0 {
		return "-"
	}
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = string(r)
	}
	return strings.Join(out, ",")
}

func day(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}
