// Package jetscope is a toolkit for jet-physics analysis: it computes the
// jet-charge observable, builds classifier efficiency curves and their
// derived figures of merit, and reconstructs jet masses from particle lists
// or jet images under several pileup-mitigation policies.
//
// # Packages
//
//   - event: particles, jets, events and jet images, plus the text record reader
//   - charge: the pT-weighted jet charge Q_κ, its image channel and the
//     particle charge map
//   - metrics: efficiency curves, AUC, inverse rejection, significance
//     improvement, fixed-point lookup and κ scans
//   - kinematics: massless four-momenta, invariant masses, and building jet
//     images from particles and reconstructing them back
//   - pileup: per-policy jet and dijet mass comparison
//   - preprocessing: image downsampling and normalization
//   - config: analysis parameters
//   - pkg/errors, pkg/log: error taxonomy and structured logging
//
// # Quick Start
//
//	reader := event.NewReader(event.ChargeColumns)
//	up, _ := reader.ReadJetsFile("up.txt")
//	down, _ := reader.ReadJetsFile("down.txt")
//
//	obs := charge.NewObservable(charge.DefaultMap())
//	qUp, _ := obs.JetCharges(up, 0.2)
//	qDown, _ := obs.JetCharges(down, 0.2)
//
//	scores := append(qUp, qDown...)
//	labels := make([]float64, len(scores))
//	for i := range qUp {
//	    labels[i] = 1
//	}
//	curve, _ := metrics.EfficiencyCurve(scores, labels, 1000)
//	rej, _ := curve.RejectionAt(0.5)
//
// # Concurrency
//
// Every call is synchronous. Per-sample work (jets, images, κ values) fans
// out over a worker pool and writes into index-addressed slots, so results
// do not depend on scheduling. There is no randomness in the core.
//
// # Errors
//
// Structural input problems are returned as typed errors from pkg/errors
// (UnmappedParticleError, DegenerateLabelSetError, ZeroNormalizationError,
// DimensionError, ValidationError). Regularized divisions never fail.
// Dropped samples are reported as warnings through the logger.
package jetscope
