package odim

import (
	"fmt"
	"slices"
)

// Product is one dataset of an image, composite or cross section. Its
// what/product tag selects the meaning of what/prodpar.
type Product struct {
	*Dataset
}

// ProductTag returns what/product as stored.
func (p *Product) ProductTag() string {
	tag, _ := p.What().GetString("product")
	return tag
}

// ProductKind returns the kind named by what/product, or ProductUnknown.
func (p *Product) ProductKind() ProductKind {
	return ParseProductKind(p.ProductTag())
}

// SetProductKind sets what/product.
func (p *Product) SetProductKind(k ProductKind) error {
	if k == ProductUnknown {
		return fmt.Errorf("%w: unknown product kind", ErrInvalidArgument)
	}
	return p.SetProductTag(k.String())
}

// SetProductTag sets what/product verbatim, for tags without a ProductKind.
func (p *Product) SetProductTag(tag string) error {
	return p.What().SetString("product", tag)
}

func (p *Product) require(param string, kinds ...ProductKind) error {
	if k := p.ProductKind(); !slices.Contains(kinds, k) {
		return fmt.Errorf("%w: %s is not defined for %q products", ErrUnsupported, param, p.ProductTag())
	}
	return nil
}

func (p *Product) prodpar(param string, kinds ...ProductKind) (float64, error) {
	if err := p.require(param, kinds...); err != nil {
		return 0, err
	}
	return p.What().GetDouble("prodpar")
}

func (p *Product) setProdpar(param string, v float64, kinds ...ProductKind) error {
	if err := p.require(param, kinds...); err != nil {
		return err
	}
	return p.What().SetDouble("prodpar", v)
}

// Elevation returns the elevation angle of a PPI, in degrees.
func (p *Product) Elevation() (float64, error) {
	return p.prodpar("elevation", ProductPPI)
}

// SetElevation sets the elevation angle of a PPI.
func (p *Product) SetElevation(v float64) error {
	return p.setProdpar("elevation", v, ProductPPI)
}

// Height returns the layer height of a CAPPI or PCAPPI, in m.
func (p *Product) Height() (float64, error) {
	return p.prodpar("height", ProductCAPPI, ProductPCAPPI)
}

// SetHeight sets the layer height of a CAPPI or PCAPPI.
func (p *Product) SetHeight(v float64) error {
	return p.setProdpar("height", v, ProductCAPPI, ProductPCAPPI)
}

// Threshold returns the reflectivity threshold of an echo top, in dBZ.
func (p *Product) Threshold() (float64, error) {
	return p.prodpar("threshold", ProductETOP)
}

// SetThreshold sets the reflectivity threshold of an echo top.
func (p *Product) SetThreshold(v float64) error {
	return p.setProdpar("threshold", v, ProductETOP)
}

// Azimuth returns the azimuth of an RHI, in degrees.
func (p *Product) Azimuth() (float64, error) {
	return p.prodpar("azimuth", ProductRHI)
}

// SetAzimuth sets the azimuth of an RHI.
func (p *Product) SetAzimuth(v float64) error {
	return p.setProdpar("azimuth", v, ProductRHI)
}

// Layer returns the bottom and top heights, in m, of a VIL or LBM product,
// stored in what/prodpar as "bottom,top".
func (p *Product) Layer() (bottom, top float64, err error) {
	if err := p.require("layer", ProductVIL, ProductLBM); err != nil {
		return 0, 0, err
	}
	v, err := p.What().GetDoubles("prodpar", false)
	if err != nil {
		return 0, 0, err
	}
	if len(v) != 2 {
		return 0, 0, formatErr(ErrInvalidAttributeValue, p.What().Path(), "prodpar",
			fmt.Errorf("layer needs 2 heights, have %d", len(v)))
	}
	return v[0], v[1], nil
}

// SetLayer sets the bottom and top heights of a VIL or LBM product.
func (p *Product) SetLayer(bottom, top float64) error {
	if err := p.require("layer", ProductVIL, ProductLBM); err != nil {
		return err
	}
	return p.What().SetDoubles("prodpar", []float64{bottom, top})
}

// RHIGeometry is the where group of an RHI product.
type RHIGeometry struct {
	Lon     float64 // radar longitude, degrees
	Lat     float64 // radar latitude, degrees
	Azimuth float64 // az_angle, degrees
	Range   float64 // km
}

// RHIGeometry returns the RHI location from where.
func (p *Product) RHIGeometry() (RHIGeometry, error) {
	var g RHIGeometry
	if err := p.require("RHI geometry", ProductRHI); err != nil {
		return g, err
	}
	r := attrReader{g: p.Where()}
	g.Lon = r.double("lon")
	g.Lat = r.double("lat")
	g.Azimuth = r.double("az_angle")
	g.Range = r.double("range")
	return g, r.err
}

// SetRHIGeometry writes the RHI location to where.
func (p *Product) SetRHIGeometry(g RHIGeometry) error {
	if err := p.require("RHI geometry", ProductRHI); err != nil {
		return err
	}
	w := attrWriter{g: p.Where()}
	w.double("lon", g.Lon)
	w.double("lat", g.Lat)
	w.double("az_angle", g.Azimuth)
	w.double("range", g.Range)
	return w.err
}

// SidePanelGeometry is the start and end point of a cross section or side
// panel.
type SidePanelGeometry struct {
	StartLon float64
	StartLat float64
	StopLon  float64
	StopLat  float64
}

var sidePanelKinds = []ProductKind{ProductXSEC, ProductVSP, ProductHSP}

// SidePanelGeometry returns where/start_lon, start_lat, stop_lon and stop_lat.
func (p *Product) SidePanelGeometry() (SidePanelGeometry, error) {
	var g SidePanelGeometry
	if err := p.require("side panel geometry", sidePanelKinds...); err != nil {
		return g, err
	}
	r := attrReader{g: p.Where()}
	g.StartLon = r.double("start_lon")
	g.StartLat = r.double("start_lat")
	g.StopLon = r.double("stop_lon")
	g.StopLat = r.double("stop_lat")
	return g, r.err
}

// SetSidePanelGeometry writes the start and end point to where.
func (p *Product) SetSidePanelGeometry(g SidePanelGeometry) error {
	if err := p.require("side panel geometry", sidePanelKinds...); err != nil {
		return err
	}
	w := attrWriter{g: p.Where()}
	w.double("start_lon", g.StartLon)
	w.double("start_lat", g.StartLat)
	w.double("stop_lon", g.StopLon)
	w.double("stop_lat", g.StopLat)
	return w.err
}

// attrReader reads several attributes of a group and keeps the first error.
type attrReader struct {
	g   *Group
	err error
}

func (r *attrReader) double(name string) float64 {
	if r.err != nil {
		return 0
	}
	v, err := r.g.GetDouble(name)
	r.err = err
	return v
}

func (r *attrReader) integer(name string) int {
	if r.err != nil {
		return 0
	}
	v, err := r.g.GetInt(name)
	r.err = err
	return v
}

func (r *attrReader) text(name string) string {
	if r.err != nil {
		return ""
	}
	v, err := r.g.GetString(name)
	r.err = err
	return v
}

// attrWriter writes several attributes of a group and keeps the first error.
type attrWriter struct {
	g   *Group
	err error
}

func (w *attrWriter) double(name string, v float64) {
	if w.err == nil {
		w.err = w.g.SetDouble(name, v)
	}
}

func (w *attrWriter) integer(name string, v int) {
	if w.err == nil {
		w.err = w.g.SetInt(name, v)
	}
}

func (w *attrWriter) text(name string, v string) {
	if w.err == nil {
		w.err = w.g.SetString(name, v)
	}
}
