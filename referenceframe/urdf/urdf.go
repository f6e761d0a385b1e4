// Package urdf builds kinematic models from Universal Robot Description Format (URDF) files.
package urdf

import (
	"encoding/xml"
	"os"

	"github.com/pkg/errors"

	"go.viam.com/rigidbody/logging"
	"go.viam.com/rigidbody/referenceframe"
)

type buildConfig struct {
	rootJoint *referenceframe.JointModel
	verbose   bool
	modelName string
}

// Option configures how a model is built.
type Option func(*buildConfig)

// WithRootJoint attaches the root link to the universe through the given joint, named "root_joint",
// instead of fixing it to the universe.
func WithRootJoint(joint referenceframe.JointModel) Option {
	return func(cfg *buildConfig) {
		cfg.rootJoint = &joint
	}
}

// WithVerbose logs a record for every link as it is added, and the resulting model.
func WithVerbose() Option {
	return func(cfg *buildConfig) {
		cfg.verbose = true
	}
}

// WithModelName names the model. By default the model takes the name of the robot element.
func WithModelName(name string) Option {
	return func(cfg *buildConfig) {
		cfg.modelName = name
	}
}

// BuildModel reads the URDF file at filename and returns the model it describes.
func BuildModel(filename string, logger logging.Logger, opts ...Option) (*referenceframe.Model, error) {
	source := "the file " + filename
	//nolint:gosec
	xmlData, err := os.ReadFile(filename)
	if err != nil {
		return nil, referenceframe.NewMalformedInputError(source, err)
	}
	return buildModel(xmlData, source, logger, opts...)
}

// UnmarshalModelXML returns the model described by URDF data held in memory.
func UnmarshalModelXML(xmlData []byte, logger logging.Logger, opts ...Option) (*referenceframe.Model, error) {
	return buildModel(xmlData, "the URDF data", logger, opts...)
}

func buildModel(xmlData []byte, source string, logger logging.Logger, opts ...Option) (*referenceframe.Model, error) {
	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if logger == nil {
		logger = logging.Global()
	}
	logger = logger.Sublogger("urdf")

	// empty data means that the source has no actionable information
	if len(xmlData) == 0 {
		return nil, referenceframe.NewMalformedInputError(source, errors.New("no data"))
	}
	mc := &ModelConfig{}
	if err := xml.Unmarshal(xmlData, mc); err != nil {
		return nil, referenceframe.NewMalformedInputError(source, err)
	}
	root, err := buildLinkTree(mc)
	if err != nil {
		if errors.Is(err, referenceframe.ErrMissingJoint) {
			return nil, err
		}
		return nil, referenceframe.NewMalformedInputError(source, err)
	}

	name := mc.Name
	if cfg.modelName != "" {
		name = cfg.modelName
	}
	model := referenceframe.NewModel(name)
	c := &compiler{model: model, logger: logger, verbose: cfg.verbose}
	if err := c.compile(root, cfg.rootJoint); err != nil {
		return nil, err
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}

	logger.Debugw("built model", "name", name, "joints", model.NumJoints(), "nq", model.NQ(), "nv", model.NV(),
		"fixed_bodies", len(model.FixedBodies()))
	if cfg.verbose {
		logger.Debug("\n" + model.String())
	}
	return model, nil
}
