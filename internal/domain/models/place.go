package models

// Place is immutable reference data for an origin city, destination hub or
// excursion point.
type Place struct {
	ID        string  `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	Lat       float64 `json:"lat" yaml:"lat"`
	Lon       float64 `json:"lon" yaml:"lon"`
	Region    string  `json:"region" yaml:"region"`
	AltitudeM int     `json:"altitude_m" yaml:"altitude_m"`
}
