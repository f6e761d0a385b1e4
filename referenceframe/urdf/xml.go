package urdf

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// ModelConfig represents all supported fields in a Universal Robot Description Format (URDF) file.
type ModelConfig struct {
	XMLName xml.Name `xml:"robot"`
	Name    string   `xml:"name,attr"`
	Links   []link   `xml:"link"`
	Joints  []joint  `xml:"joint"`
}

// link is a struct which details the XML used in a URDF link element.
type link struct {
	XMLName  xml.Name  `xml:"link"`
	Name     string    `xml:"name,attr"`
	Inertial *inertial `xml:"inertial,omitempty"`
	Visual   []visual  `xml:"visual"`
}

// inertial holds the mass properties of a link. The inertia tensor is taken about the center of mass,
// along the axes of the origin frame.
type inertial struct {
	XMLName xml.Name `xml:"inertial"`
	Origin  *pose    `xml:"origin,omitempty"`
	Mass    *mass    `xml:"mass,omitempty"`
	Inertia *inertia `xml:"inertia,omitempty"`
}

type mass struct {
	Value *string `xml:"value,attr"` // in kilograms
}

type inertia struct {
	IXX *string `xml:"ixx,attr"`
	IXY *string `xml:"ixy,attr"`
	IXZ *string `xml:"ixz,attr"`
	IYY *string `xml:"iyy,attr"`
	IYZ *string `xml:"iyz,attr"`
	IZZ *string `xml:"izz,attr"`
}

// visual is only checked for presence; its geometry and material are not used.
type visual struct {
	XMLName xml.Name `xml:"visual"`
	Name    string   `xml:"name,attr"`
}

// joint is a struct which details the XML used in a URDF joint element.
type joint struct {
	XMLName xml.Name `xml:"joint"`
	Name    string   `xml:"name,attr"`
	Type    string   `xml:"type,attr"`
	Parent  *frame   `xml:"parent,omitempty"`
	Child   *frame   `xml:"child,omitempty"`
	Origin  *pose    `xml:"origin,omitempty"`
	Axis    *axis    `xml:"axis,omitempty"`
	Limit   *limit   `xml:"limit,omitempty"`
}

type frame struct {
	Link string `xml:"link,attr"`
}

type limit struct {
	XMLName  xml.Name `xml:"limit"`
	Lower    string   `xml:"lower,attr"` // translation limits are in meters, revolute limits are in radians
	Upper    string   `xml:"upper,attr"` // translation limits are in meters, revolute limits are in radians
	Effort   *string  `xml:"effort,attr"`
	Velocity *string  `xml:"velocity,attr"`
}

type axis struct {
	XMLName xml.Name `xml:"axis"`
	XYZ     string   `xml:"xyz,attr"` // "x y z" format
}

type pose struct {
	XMLName xml.Name `xml:"origin"`
	RPY     string   `xml:"rpy,attr"` // Fixed frame angle "r p y" format, in radians
	XYZ     string   `xml:"xyz,attr"` // "x y z" format, in meters
}

// parseFloat parses a single numeric attribute. An empty string gives def.
func parseFloat(s string, def float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid number %q", s)
	}
	return v, nil
}

// parseRequiredFloat parses a numeric attribute that must be present. An empty value counts as missing.
func parseRequiredFloat(s *string, name string) (float64, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return 0, errors.Errorf("missing attribute %q", name)
	}
	v, err := parseFloat(*s, 0)
	if err != nil {
		return 0, errors.Wrapf(err, "attribute %q", name)
	}
	return v, nil
}

// parseVector splits a space-delimited "x y z" attribute into a vector. An empty string gives def.
func parseVector(s string, def r3.Vector) (r3.Vector, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return def, nil
	}
	if len(fields) != 3 {
		return r3.Vector{}, errors.Errorf("expected 3 values, got %q", s)
	}
	var xyz [3]float64
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return r3.Vector{}, errors.Wrapf(err, "invalid number %q", field)
		}
		xyz[i] = v
	}
	return r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}
