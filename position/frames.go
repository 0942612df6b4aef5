package position

import (
	"errors"
	"math"

	"github.com/signalsfoundry/geodesy/registry"
)

// vec3 carries the elementwise 3-vector arithmetic the frame and orbital
// conversions are written in.
type vec3 struct {
	x, y, z float64
}

func (v vec3) add(o vec3) vec3      { return vec3{v.x + o.x, v.y + o.y, v.z + o.z} }
func (v vec3) sub(o vec3) vec3      { return vec3{v.x - o.x, v.y - o.y, v.z - o.z} }
func (v vec3) scale(s float64) vec3 { return vec3{v.x * s, v.y * s, v.z * s} }
func (v vec3) dot(o vec3) float64   { return v.x*o.x + v.y*o.y + v.z*o.z }
func (v vec3) norm() float64        { return math.Sqrt(v.dot(v)) }

func (v vec3) cross(o vec3) vec3 {
	return vec3{
		v.y*o.z - v.z*o.y,
		v.z*o.x - v.x*o.z,
		v.x*o.y - v.y*o.x,
	}
}

// mat3 is a row-major 3x3 rotation.
type mat3 [3]vec3

func (m mat3) apply(v vec3) vec3 {
	return vec3{m[0].dot(v), m[1].dot(v), m[2].dot(v)}
}

// transposed applies the inverse of a rotation.
func (m mat3) transposed() mat3 {
	return mat3{
		vec3{m[0].x, m[1].x, m[2].x},
		vec3{m[0].y, m[1].y, m[2].y},
		vec3{m[0].z, m[1].z, m[2].z},
	}
}

// enuRotation builds the rotation taking a Cartesian terrestrial difference
// to topocentric east, north, up at geodetic latitude and longitude.
func enuRotation(lat, lon float64) mat3 {
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)
	return mat3{
		vec3{-sinLon, cosLon, 0},
		vec3{-sinLat * cosLon, -sinLat * sinLon, cosLat},
		vec3{cosLat * cosLon, cosLat * sinLon, sinLat},
	}
}

// geodeticOfRef converts one reference Cartesian point to latitude and
// longitude, reusing the llh edge on a single-row payload.
func geodeticOfRef(p payload, i int) (lat, lon float64, err error) {
	one := payload{ell: p.ell, rows: [][]float64{p.ref[i][:3]}}
	llh, err := trsToLLH(one)
	if err != nil {
		var deg *registry.DegenerateInputError
		if errors.As(err, &deg) {
			return 0, 0, &registry.DegenerateInputError{
				Conversion: deg.Conversion, Reason: "reference " + deg.Reason, Indices: []int{i},
			}
		}
		return 0, 0, err
	}
	return llh.rows[0][0], llh.rows[0][1], nil
}

// trsToENU rotates each Cartesian difference into the topocentric frame of
// the corresponding reference point.
func trsToENU(p payload) (payload, error) {
	out := payload{ell: p.ell, rows: make([][]float64, len(p.rows)), ref: p.ref}
	for i, row := range p.rows {
		lat, lon, err := geodeticOfRef(p, i)
		if err != nil {
			return payload{}, err
		}
		e := enuRotation(lat, lon).apply(vec3{row[0], row[1], row[2]})
		out.rows[i] = []float64{e.x, e.y, e.z}
	}
	return out, nil
}

func enuToTRS(p payload) (payload, error) {
	out := payload{ell: p.ell, rows: make([][]float64, len(p.rows)), ref: p.ref}
	for i, row := range p.rows {
		lat, lon, err := geodeticOfRef(p, i)
		if err != nil {
			return payload{}, err
		}
		d := enuRotation(lat, lon).transposed().apply(vec3{row[0], row[1], row[2]})
		out.rows[i] = []float64{d.x, d.y, d.z}
	}
	return out, nil
}

// acrRotation builds the rotation taking a Cartesian difference to the
// along-track, cross-track, radial frame of the reference orbit state. It is
// undefined when the reference position and velocity are parallel.
func acrRotation(refRow []float64) (mat3, bool) {
	r := vec3{refRow[0], refRow[1], refRow[2]}
	v := vec3{refRow[3], refRow[4], refRow[5]}
	rn := r.norm()
	h := r.cross(v)
	hn := h.norm()
	if rn < geocenterTol || hn < equatorialTol*rn {
		return mat3{}, false
	}
	radial := r.scale(1 / rn)
	cross := h.scale(1 / hn)
	along := cross.cross(radial)
	return mat3{along, cross, radial}, true
}

// trsToACR rotates each position/velocity difference into the orbital frame
// of the corresponding reference state. Both the position and the velocity
// triplet rotate by the same matrix.
func trsToACR(p payload) (payload, error) {
	return applyACR(p, "trs->acr", false)
}

func acrToTRS(p payload) (payload, error) {
	return applyACR(p, "acr->trs", true)
}

func applyACR(p payload, conversion string, inverse bool) (payload, error) {
	out := payload{ell: p.ell, rows: make([][]float64, len(p.rows)), ref: p.ref}
	var bad []int
	for i, row := range p.rows {
		rot, ok := acrRotation(p.ref[i])
		if !ok {
			bad = append(bad, i)
			out.rows[i] = make([]float64, 6)
			continue
		}
		if inverse {
			rot = rot.transposed()
		}
		dp := rot.apply(vec3{row[0], row[1], row[2]})
		dv := rot.apply(vec3{row[3], row[4], row[5]})
		out.rows[i] = []float64{dp.x, dp.y, dp.z, dv.x, dv.y, dv.z}
	}
	if bad != nil {
		return payload{}, &registry.DegenerateInputError{
			Conversion: conversion, Reason: "reference position and velocity are parallel", Indices: bad,
		}
	}
	return out, nil
}
