package event

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/jetscope/pkg/errors"
	"github.com/YuminosukeSato/jetscope/pkg/log"
)

// Columns maps particle fields to column positions of a record line.
// A negative position means the column is absent; absent columns take the
// zero value except Vertex (HardScatterVertex) and PUPPI (1).
type Columns struct {
	Pt         int `json:"pt"`
	Eta        int `json:"eta"`
	Phi        int `json:"phi"`
	ID         int `json:"id"`
	Charged    int `json:"charged"`
	Vertex     int `json:"vertex"`
	PUPPI      int `json:"puppi"`
	SoftKiller int `json:"softkiller"`
}

// ChargeColumns is the layout of the jet-charge event files: eta, phi, pT, id.
var ChargeColumns = Columns{Eta: 0, Phi: 1, Pt: 2, ID: 3, Charged: -1, Vertex: -1, PUPPI: -1, SoftKiller: -1}

// PileupColumns is the layout of the pileup particle records:
// pT, eta, phi, charged, vertex, PUPPI weight, SoftKiller flag.
var PileupColumns = Columns{Pt: 0, Eta: 1, Phi: 2, Charged: 3, Vertex: 4, PUPPI: 5, SoftKiller: 6, ID: -1}

func (c Columns) width() int {
	w := 0
	for _, i := range []int{c.Pt, c.Eta, c.Phi, c.ID, c.Charged, c.Vertex, c.PUPPI, c.SoftKiller} {
		if i+1 > w {
			w = i + 1
		}
	}
	return w
}

// Particle builds a particle from one parsed row.
func (c Columns) Particle(row []float64) (Particle, error) {
	if len(row) < c.width() {
		return Particle{}, errors.NewDimensionError("Columns.Particle", c.width(), len(row), 1)
	}
	at := func(i int, def float64) float64 {
		if i < 0 {
			return def
		}
		return row[i]
	}
	p := Particle{
		Pt:         at(c.Pt, 0),
		Eta:        at(c.Eta, 0),
		Phi:        at(c.Phi, 0),
		ID:         int(math.Round(at(c.ID, 0))),
		Charged:    at(c.Charged, 0) != 0,
		Vertex:     int(math.Round(at(c.Vertex, HardScatterVertex))),
		PUPPI:      at(c.PUPPI, 1),
		SoftKiller: at(c.SoftKiller, 0) == 1,
	}
	if p.Pt < 0 {
		return Particle{}, errors.NewValidationError("pt", "must be non-negative", p.Pt)
	}
	return p, nil
}

// Reader parses the line-oriented event record format:
//
//   - lines starting with the comment character are ignored
//   - a line whose first field contains "Event" starts a new event; the
//     remaining fields are its summary numbers
//   - a blank line closes the current particle group into a jet
//   - every other line is one particle, whitespace- or comma-separated
type Reader struct {
	Columns Columns
	Comment byte

	logger log.Logger
}

// NewReader returns a Reader for the given column layout with '#' comments.
func NewReader(cols Columns) *Reader {
	return &Reader{
		Columns: cols,
		Comment: '#',
		logger:  log.GetLoggerWithName("event.reader"),
	}
}

func splitFields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

func parseFloats(fields []string, lineNo int) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d field %d", lineNo, i)
		}
		out[i] = v
	}
	return out, nil
}

// ReadEvents parses every event in r. A trailing particle group without a
// closing blank line is kept. Particles before the first Event line belong
// to an implicit event with no summary.
func (rd *Reader) ReadEvents(r io.Reader) ([]Event, error) {
	var (
		events  []Event
		current *Event
		jet     []Particle
	)

	flush := func() {
		if len(jet) == 0 {
			return
		}
		if current == nil {
			events = append(events, Event{})
			current = &events[len(events)-1]
		}
		current.Jets = append(current.Jets, Jet{Particles: jet, Info: JetInfo{Index: len(current.Jets)}})
		jet = nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())

		switch {
		case line == "":
			flush()
		case line[0] == rd.Comment:
			continue
		default:
			fields := splitFields(line)
			if len(fields) == 0 {
				flush()
				continue
			}
			if strings.Contains(fields[0], "Event") {
				flush()
				summary, err := parseFloats(fields[1:], lineNo)
				if err != nil {
					return nil, err
				}
				events = append(events, Event{Summary: summary})
				current = &events[len(events)-1]
				continue
			}
			row, err := parseFloats(fields, lineNo)
			if err != nil {
				return nil, err
			}
			p, err := rd.Columns.Particle(row)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNo)
			}
			jet = append(jet, p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read event records")
	}
	flush()

	rd.logger.Debug("event records read",
		log.OperationKey, log.OperationReadRecords,
		log.SamplesKey, len(events),
	)
	return events, nil
}

// ReadJets parses r and returns the jets of all events in order.
func (rd *Reader) ReadJets(r io.Reader) ([]Jet, error) {
	events, err := rd.ReadEvents(r)
	if err != nil {
		return nil, err
	}
	var jets []Jet
	for _, ev := range events {
		jets = append(jets, ev.Jets...)
	}
	return jets, nil
}

// ReadJetsFile opens path and calls ReadJets.
func (rd *Reader) ReadJetsFile(path string) ([]Jet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return rd.ReadJets(f)
}

// packedInfoFields is the number of jet summary numbers leading each packed record.
const packedInfoFields = 8

// ReadPackedJets parses the one-jet-per-line pileup format: eight summary
// numbers (index, NPU, rho, area, pT, eta, phi, mass) followed by a flat list
// of particles laid out per PileupColumns. At most limit jets are read when
// limit > 0.
func ReadPackedJets(r io.Reader, limit int) ([]Jet, error) {
	width := PileupColumns.width()

	var jets []Jet
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		if limit > 0 && len(jets) == limit {
			break
		}

		parts, err := parseFloats(splitFields(line), lineNo)
		if err != nil {
			return nil, err
		}
		if len(parts) < packedInfoFields || (len(parts)-packedInfoFields)%width != 0 {
			return nil, errors.Wrapf(
				errors.NewDimensionError("ReadPackedJets", width, (len(parts)-packedInfoFields)%width, 1),
				"line %d", lineNo)
		}

		jet := Jet{Info: JetInfo{
			Index: int(parts[0]),
			NPU:   int(parts[1]),
			Rho:   parts[2],
			Area:  parts[3],
			Pt:    parts[4],
			Eta:   parts[5],
			Phi:   parts[6],
			Mass:  parts[7],
		}}
		for off := packedInfoFields; off < len(parts); off += width {
			p, err := PileupColumns.Particle(parts[off : off+width])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNo)
			}
			jet.Particles = append(jet.Particles, p)
		}
		jets = append(jets, jet)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read packed jets")
	}
	return jets, nil
}
