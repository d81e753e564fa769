package models

// Location represents a geographic location with latitude and longitude in degrees
type Location struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// BoundingBox represents a rectangular area defined by two corners
type BoundingBox struct {
	BottomLeft Location `json:"bottom_left" yaml:"bottom_left"`
	TopRight   Location `json:"top_right" yaml:"top_right"`
}

// IsZero reports whether the box was left unset
func (b BoundingBox) IsZero() bool {
	return b == BoundingBox{}
}

// Contains reports whether loc lies inside the box, edges included
func (b BoundingBox) Contains(loc Location) bool {
	return loc.Lat >= b.BottomLeft.Lat && loc.Lat <= b.TopRight.Lat &&
		loc.Lon >= b.BottomLeft.Lon && loc.Lon <= b.TopRight.Lon
}

// Polygon is an obstacle footprint. It blocks flight at or below Ceiling meters.
type Polygon struct {
	ID       string     `json:"id" yaml:"id"`
	Vertices []Location `json:"vertices" yaml:"vertices"`
	Ceiling  float64    `json:"ceiling" yaml:"ceiling"`
}

// Bounds returns the polygon's bounding box
func (p Polygon) Bounds() BoundingBox {
	if len(p.Vertices) == 0 {
		return BoundingBox{}
	}
	box := BoundingBox{BottomLeft: p.Vertices[0], TopRight: p.Vertices[0]}
	for _, v := range p.Vertices[1:] {
		box.BottomLeft.Lat = min(box.BottomLeft.Lat, v.Lat)
		box.BottomLeft.Lon = min(box.BottomLeft.Lon, v.Lon)
		box.TopRight.Lat = max(box.TopRight.Lat, v.Lat)
		box.TopRight.Lon = max(box.TopRight.Lon, v.Lon)
	}
	return box
}
