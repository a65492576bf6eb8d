// Package strategy describes the strategies known to the hyperopt tools.
//
// A strategy is declared by a descriptor file (<name>.yaml) in the strategy
// directory. The descriptor names a built-in implementation class; parameter
// files exported by hyperopt are written next to the descriptor as <name>.json.
package strategy

import (
	"time"
)

// SchemaVersion is the current descriptor schema version
const SchemaVersion = "1.0"

// Descriptor is a strategy descriptor file
type Descriptor struct {
	Metadata Metadata `yaml:"metadata" json:"metadata"`

	// Class is the built-in implementation, e.g. "RSIStrategy"
	Class string `yaml:"class" json:"class"`

	// Timeframe of the candles the strategy runs on
	Timeframe string `yaml:"timeframe" json:"timeframe"`

	// Stoploss as a negative ratio, e.g. -0.1
	Stoploss float64 `yaml:"stoploss" json:"stoploss"`

	// MinimalROI maps minutes since entry to the required profit ratio
	MinimalROI map[string]float64 `yaml:"minimal_roi,omitempty" json:"minimal_roi,omitempty"`
}

// Metadata contains strategy identification and description
type Metadata struct {
	// Schema version for compatibility
	SchemaVersion string `yaml:"schema_version" json:"schema_version"`

	// Strategy name used to look up the strategy
	Name string `yaml:"name" json:"name"`

	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Author      string   `yaml:"author,omitempty" json:"author,omitempty"`
	Tags        []string `yaml:"tags,omitempty" json:"tags,omitempty"`

	CreatedAt time.Time `yaml:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// NewDescriptor returns a descriptor with sensible defaults for a built-in class
func NewDescriptor(name, class string) *Descriptor {
	now := time.Now().UTC()
	return &Descriptor{
		Metadata: Metadata{
			SchemaVersion: SchemaVersion,
			Name:          name,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		Class:     class,
		Timeframe: "5m",
		Stoploss:  -0.1,
		MinimalROI: map[string]float64{
			"0":  0.04,
			"30": 0.02,
			"60": 0.0,
		},
	}
}

// Object is one entry of the strategy catalog
type Object struct {
	// Name of the strategy, from the descriptor or the file name
	Name string
	// Class of the built-in implementation; empty when loading failed
	Class string
	// Location is the path of the descriptor file
	Location string
	// LocationRel is Location relative to the strategy directory
	LocationRel string

	Descriptor *Descriptor
	// Err is the load error of a failed entry
	Err error
}

// Failed reports whether the descriptor could not be loaded
func (o Object) Failed() bool {
	return o.Err != nil
}
