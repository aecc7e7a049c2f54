package event

import (
	"fmt"
	"strconv"
)

// DatasetName identifies a jet-image dataset. The identity lives only in the
// file name; the arrays themselves carry no metadata.
type DatasetName struct {
	Energy   string // e.g. "1000GEV"
	Species  string // e.g. "quark", "gluon", "upquark"
	Kappa    float64
	Seed     int
	Pixels   int
	Channels int
}

// String renders the name, e.g. "100GEV-upquark-K=0.2-jetimage-seed3_33x33images_2chan".
// A zero Kappa renders as "nocharge".
func (d DatasetName) String() string {
	k := "nocharge"
	if d.Kappa != 0 {
		k = strconv.FormatFloat(d.Kappa, 'g', -1, 64)
	}
	return fmt.Sprintf("%s-%s-K=%s-jetimage-seed%d_%dx%dimages_%dchan",
		d.Energy, d.Species, k, d.Seed, d.Pixels, d.Pixels, d.Channels)
}

// EventFileName returns the matching event record file name, e.g. "100GEV-quark-event-seed1.txt".
func (d DatasetName) EventFileName() string {
	return fmt.Sprintf("%s-%s-event-seed%d.txt", d.Energy, d.Species, d.Seed)
}
