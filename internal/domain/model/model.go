// Package model contains domain models passed between layers.
package model

// SeasonTag is an optional secondary grouping carried by an observation.
// The analytics backend encodes it arithmetically into game ids when
// comparing team seasons; here it is an explicit field.
type SeasonTag int

// SeasonNone marks observations without a season grouping (single-player
// analysis mode).
const SeasonNone SeasonTag = -1

// seasonStride is the arithmetic season prefix used on the wire:
// combined = season*1_000_000 + base.
const seasonStride = 1_000_000

// ObservationID identifies one analyzed game. BaseID is the backend's game
// id; Season is the decoded secondary grouping, SeasonNone when absent.
type ObservationID struct {
	BaseID int
	Season SeasonTag
}

// DecodeObservationID decodes the wire's arithmetic encoding. When tagged
// is false the raw value is a plain game id and Season is SeasonNone; this
// keeps decoding total instead of guessing from magnitude, since a season-0
// prefix is indistinguishable from no prefix.
func DecodeObservationID(raw int, tagged bool) ObservationID {
	if !tagged {
		return ObservationID{BaseID: raw, Season: SeasonNone}
	}
	return ObservationID{
		BaseID: raw % seasonStride,
		Season: SeasonTag(raw / seasonStride),
	}
}

// Encode returns the wire form of the id.
func (o ObservationID) Encode() int {
	if o.Season == SeasonNone {
		return o.BaseID
	}
	return int(o.Season)*seasonStride + o.BaseID
}

// Tagged reports whether the observation carries a season grouping.
func (o ObservationID) Tagged() bool { return o.Season != SeasonNone }

// Point is one analyzed game as placed in the 2D embedding. Points are
// produced once per backend initialization cycle and treated as immutable
// until the next one.
type Point struct {
	X, Y       float64 // embedding coordinates
	GroupLabel int     // index into the session's group names
	Obs        ObservationID
}
