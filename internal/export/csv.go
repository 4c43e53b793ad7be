package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/nlink/internal/dynamo"
)

// CSVRecorder writes one row per snapshot:
// step,time,theta0..thetaN-1,dtheta0..dthetaN-1,energy.
// Values are written at full precision so a run can be reloaded exactly.
type CSVRecorder struct {
	w       *csv.Writer
	links   int
	started bool
	rows    int
}

func NewCSVRecorder(w io.Writer) *CSVRecorder {
	return &CSVRecorder{w: csv.NewWriter(w)}
}

func CSVHeader(links int) []string {
	header := []string{"step", "time"}
	for i := 0; i < links; i++ {
		header = append(header, fmt.Sprintf("theta%d", i))
	}
	for i := 0; i < links; i++ {
		header = append(header, fmt.Sprintf("dtheta%d", i))
	}
	return append(header, "energy")
}

func (r *CSVRecorder) OnSnapshot(snap dynamo.Snapshot) error {
	if !r.started {
		r.links = snap.State.Len()
		if err := r.w.Write(CSVHeader(r.links)); err != nil {
			return err
		}
		r.started = true
	}
	if snap.State.Len() != r.links {
		return fmt.Errorf("%w: snapshot has %d links, log has %d", dynamo.ErrDimensionMismatch, snap.State.Len(), r.links)
	}

	row := make([]string, 0, 3+2*r.links)
	row = append(row, strconv.Itoa(snap.Step), formatFloat(snap.Time))
	for _, v := range snap.State.Theta {
		row = append(row, formatFloat(v))
	}
	for _, v := range snap.State.DTheta {
		row = append(row, formatFloat(v))
	}
	row = append(row, formatFloat(snap.Energy))

	if err := r.w.Write(row); err != nil {
		return err
	}
	r.rows++
	return nil
}

func (r *CSVRecorder) Rows() int { return r.rows }

func (r *CSVRecorder) Flush() error {
	r.w.Flush()
	return r.w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ReadCSV parses a log written by CSVRecorder. Positions are not stored and
// are left empty.
func ReadCSV(rd io.Reader) ([]dynamo.Snapshot, error) {
	r := csv.NewReader(rd)

	header, err := r.Read()
	if err == io.EOF {
		return []dynamo.Snapshot{}, nil
	}
	if err != nil {
		return nil, err
	}
	links, err := linksFromHeader(header)
	if err != nil {
		return nil, err
	}

	snaps := make([]dynamo.Snapshot, 0)
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		snap, err := parseRow(record, links)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

func linksFromHeader(header []string) (int, error) {
	if len(header) < 5 || (len(header)-3)%2 != 0 || header[0] != "step" || header[1] != "time" {
		return 0, fmt.Errorf("unrecognised header: %s", strings.Join(header, ","))
	}
	links := (len(header) - 3) / 2
	want := CSVHeader(links)
	for i := range want {
		if header[i] != want[i] {
			return 0, fmt.Errorf("unexpected column %q, want %q", header[i], want[i])
		}
	}
	return links, nil
}

func parseRow(record []string, links int) (dynamo.Snapshot, error) {
	step, err := strconv.Atoi(record[0])
	if err != nil {
		return dynamo.Snapshot{}, err
	}

	vals := make([]float64, len(record)-1)
	for i, field := range record[1:] {
		vals[i], err = strconv.ParseFloat(field, 64)
		if err != nil {
			return dynamo.Snapshot{}, err
		}
	}

	x := dynamo.NewState(links)
	copy(x.Theta, vals[1:1+links])
	copy(x.DTheta, vals[1+links:1+2*links])
	return dynamo.Snapshot{
		Step:   step,
		Time:   vals[0],
		State:  x,
		Energy: vals[len(vals)-1],
	}, nil
}
