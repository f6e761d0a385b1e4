package referenceframe

import (
	"github.com/pkg/errors"
)

// The kinds of failure reported while building or querying a model. Returned errors wrap one of
// these so callers can tell them apart with errors.Is.
var (
	// ErrMalformedInput is returned when a robot description cannot be read or is not a valid tree.
	ErrMalformedInput = errors.New("malformed robot description")
	// ErrMissingInertia is returned when the child of a movable joint has no inertial block.
	ErrMissingInertia = errors.New("spatial inertia information missing")
	// ErrMissingJoint is returned when a link other than the root has no parent joint.
	ErrMissingJoint = errors.New("joint information missing")
	// ErrUnsupportedJointType is returned for joint types the model cannot represent.
	ErrUnsupportedJointType = errors.New("unsupported joint type")
	// ErrPreconditionViolation is returned when a model or data cache is queried with arguments
	// it cannot serve.
	ErrPreconditionViolation = errors.New("precondition violation")
)

// malformedInputError is an ErrMalformedInput that keeps its cause reachable through errors.As.
type malformedInputError struct {
	context string
	cause   error
}

func (e *malformedInputError) Error() string {
	if e.cause == nil {
		return e.context + ": " + ErrMalformedInput.Error()
	}
	return e.context + ": " + e.cause.Error() + ": " + ErrMalformedInput.Error()
}

func (e *malformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

func (e *malformedInputError) Unwrap() error {
	return e.cause
}

// NewMalformedInputError returns an error indicating the description read from source could not be used.
// source names where the description came from, e.g. "the file robot.urdf".
func NewMalformedInputError(source string, cause error) error {
	return &malformedInputError{context: source + " does not contain a valid URDF model", cause: cause}
}

// NewMalformedElementError returns an error indicating that one element of a description, e.g. `joint "j1"`,
// is invalid because of cause.
func NewMalformedElementError(element string, cause error) error {
	return &malformedInputError{context: element, cause: cause}
}

// NewMissingInertiaError returns an error indicating that link has no inertial block.
func NewMissingInertiaError(link string) error {
	return errors.Wrapf(ErrMissingInertia, "%s", link)
}

// NewMissingJointError returns an error indicating that link has no parent joint.
func NewMissingJointError(link string) error {
	return errors.Wrapf(ErrMissingJoint, "%s", link)
}

// NewUnsupportedJointTypeError returns an error indicating that the joint cannot be modeled.
func NewUnsupportedJointTypeError(joint, jointType string) error {
	return errors.Wrapf(ErrUnsupportedJointType, "joint %q of type %q", joint, jointType)
}

// NewPreconditionViolationError returns an error describing a misuse of a model or data cache.
func NewPreconditionViolationError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrPreconditionViolation, format, args...)
}

// NewDuplicateNameError returns an error indicating that a joint or body name is already taken.
func NewDuplicateNameError(kind, name string) error {
	return NewPreconditionViolationError("%s name %q is already in use", kind, name)
}

// NewIndexOutOfRangeError returns an error indicating that a joint index does not exist.
func NewIndexOutOfRangeError(index, numJoints int) error {
	return NewPreconditionViolationError("joint index %d out of range [0, %d]", index, numJoints)
}
