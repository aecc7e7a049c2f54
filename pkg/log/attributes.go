// Package log defines standard attribute keys for analysis operations.
//
// Keys follow a hierarchical naming convention ("data.samples",
// "curve.auc") so that log output from a kappa scan or a pileup comparison
// can be filtered without parsing messages.

package log

// Operation context.
const (
	// ComponentKey identifies which package performs the operation.
	// Examples: "charge", "metrics", "kinematics", "pileup"
	ComponentKey = "component"

	// OperationKey names the operation being performed.
	OperationKey = "op"

	// PolicyKey names a pileup-mitigation selection policy.
	// Examples: "truth", "none", "softkiller", "puppi", "image_dl"
	PolicyKey = "pileup.policy"
)

// Data shape.
const (
	// SamplesKey is the number of samples (jets, events or images) processed.
	SamplesKey = "data.samples"

	// SampleIndexKey is the index of the sample a message refers to.
	SampleIndexKey = "data.index"

	// ParticlesKey is the number of particles in a jet.
	ParticlesKey = "data.particles"

	// PixelsKey is the side length of a square jet image.
	PixelsKey = "image.pixels"

	// ChannelsKey is the number of channels in a jet image.
	ChannelsKey = "image.channels"

	// Class0Key and Class1Key are the label counts of an efficiency curve.
	Class0Key = "labels.class0"
	Class1Key = "labels.class1"
)

// Parameters and results.
const (
	// KappaKey records the jet-charge weighting exponent.
	KappaKey = "charge.kappa"

	// ThresholdsKey is the number of thresholds swept.
	ThresholdsKey = "curve.thresholds"

	// StrideKey is the coarsening stride of the threshold sweep.
	StrideKey = "curve.stride"

	// AUCKey records the area under an efficiency curve.
	AUCKey = "curve.auc"

	// RejectionKey records background rejection at a fixed signal efficiency.
	RejectionKey = "curve.rejection"

	// TargetKey is the signal efficiency used by a fixed-point lookup.
	TargetKey = "curve.target"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// WorkersKey is the number of parallel workers used.
	WorkersKey = "perf.workers"
)

// Standard values for OperationKey.
const (
	OperationJetCharge   = "jet_charge"
	OperationCurve       = "efficiency_curve"
	OperationAUC         = "auc"
	OperationScan        = "rejection_scan"
	OperationJetMass     = "jet_mass"
	OperationDijetMass   = "dijet_mass"
	OperationImageMass   = "image_mass"
	OperationDijetImage  = "dijet_image_mass"
	OperationReadRecords = "read_records"
	OperationPixelate    = "pixelate"
)
