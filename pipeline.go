package ringdataset

import (
	"errors"

	"go.viam.com/rdk/logging"

	ringpose "github.com/alonzanbar/ring-dataset-gen/ring_pose"
)

// Pipeline wires the sampling core to its external collaborators: a geometry
// provider for the subject, a renderer for accepted poses, and an annotator
// for the accepted sample stream.
type Pipeline struct {
	cfg       DatasetConfig
	geometry  GeometryProvider
	renderer  Renderer
	annotator Annotator
	logger    logging.Logger

	// Projector maps world points to image space. Defaults to a pinhole
	// model built from the image configuration; replaceable before Generate
	// is called.
	Projector ringpose.Projector
}

// NewPipeline validates the collaborator wiring and returns a ready
// pipeline. The renderer may be nil only in validate-only mode; the
// annotator may always be nil (no durable output).
func NewPipeline(
	cfg DatasetConfig,
	geometry GeometryProvider,
	renderer Renderer,
	annotator Annotator,
	logger logging.Logger,
) (*Pipeline, error) {
	if geometry == nil {
		return nil, errors.New("geometry provider is required")
	}
	if renderer == nil && !cfg.ValidateOnly {
		return nil, errors.New("renderer is required unless running validate-only")
	}
	return &Pipeline{
		cfg:       cfg,
		geometry:  geometry,
		renderer:  renderer,
		annotator: annotator,
		logger:    logger,
		Projector: ringpose.NewPinholeProjector(cfg.Image),
	}, nil
}
