package point

import (
	"encoding/csv"
	"io"
	"strconv"

	dompoint "github.com/kailas-cloud/pagemark/internal/domain/point"
)

// CSVHeader is the header row of a point export.
var CSVHeader = []string{"id", "name", "x", "y", "page", "created_at", "source"}

// CreatedAtLayout formats created_at in exports (UTC, millisecond precision).
const CreatedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// WriteCSV writes the header and one row per point, in the given order.
func WriteCSV(w io.Writer, points []dompoint.Point) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for i := range points {
		p := &points[i]
		if err := cw.Write([]string{
			strconv.FormatInt(p.ID(), 10),
			p.Name(),
			formatFloat(p.X()),
			formatFloat(p.Y()),
			strconv.Itoa(p.Page()),
			p.CreatedAt().UTC().Format(CreatedAtLayout),
			p.SourceOrUnknown(),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
