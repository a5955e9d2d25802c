package odim

import (
	"fmt"
)

// products holds the product datasets shared by images, composites and
// cross sections.
type products struct {
	object
}

// CreateProduct appends a product dataset of kind k after the highest index.
func (p *products) CreateProduct(k ProductKind) (*Product, error) {
	if k == ProductUnknown {
		return nil, fmt.Errorf("%w: unknown product kind", ErrInvalidArgument)
	}
	d, err := p.createDataset(k.String())
	if err != nil {
		return nil, err
	}
	return &Product{Dataset: d}, nil
}

// Product returns the product with the given storage index.
func (p *products) Product(index int) (*Product, error) {
	d, err := p.dataset(index)
	if err != nil {
		return nil, err
	}
	return &Product{Dataset: d}, nil
}

// ProductCount returns the number of products.
func (p *products) ProductCount() int {
	return p.DatasetCount()
}

// ProductIndices returns the storage indices of the products in increasing
// order.
func (p *products) ProductIndices() []int {
	return p.DatasetIndices()
}

// ProductAt returns the product at position pos of ProductIndices.
func (p *products) ProductAt(pos int) (*Product, error) {
	d, err := p.DatasetAt(pos)
	if err != nil {
		return nil, err
	}
	return &Product{Dataset: d}, nil
}

// RemoveProduct removes a product without renumbering the others.
func (p *products) RemoveProduct(index int) error {
	return p.removeDataset(index)
}

// Point is a geographical location in degrees.
type Point struct {
	Lon float64
	Lat float64
}

// ImageGeometry is the cartesian grid of an image or composite, stored in
// the root where group.
type ImageGeometry struct {
	Projection string  // projdef, a PROJ definition
	XSize      int     // columns
	YSize      int     // rows
	XScale     float64 // column spacing, m
	YScale     float64 // row spacing, m
	LL         Point   // lower left corner
	UL         Point   // upper left corner
	UR         Point   // upper right corner
	LR         Point   // lower right corner
}

func readImageGeometry(g *Group) (ImageGeometry, error) {
	r := attrReader{g: g}
	geo := ImageGeometry{
		Projection: r.text("projdef"),
		XSize:      r.integer("xsize"),
		YSize:      r.integer("ysize"),
		XScale:     r.double("xscale"),
		YScale:     r.double("yscale"),
	}
	for _, c := range geo.corners() {
		c.pt.Lon = r.double(c.name + "_lon")
		c.pt.Lat = r.double(c.name + "_lat")
	}
	return geo, r.err
}

func writeImageGeometry(g *Group, geo ImageGeometry) error {
	w := attrWriter{g: g}
	w.text("projdef", geo.Projection)
	w.integer("xsize", geo.XSize)
	w.integer("ysize", geo.YSize)
	w.double("xscale", geo.XScale)
	w.double("yscale", geo.YScale)
	for _, c := range geo.corners() {
		w.double(c.name+"_lon", c.pt.Lon)
		w.double(c.name+"_lat", c.pt.Lat)
	}
	return w.err
}

type corner struct {
	name string
	pt   *Point
}

func (geo *ImageGeometry) corners() []corner {
	return []corner{{"LL", &geo.LL}, {"UL", &geo.UL}, {"UR", &geo.UR}, {"LR", &geo.LR}}
}

// Image is an IMAGE object: one or more cartesian products from a single
// radar.
type Image struct {
	products
}

// Geometry returns the cartesian grid of the image.
func (im *Image) Geometry() (ImageGeometry, error) {
	return readImageGeometry(im.Where())
}

// SetGeometry writes the cartesian grid of the image.
func (im *Image) SetGeometry(geo ImageGeometry) error {
	return writeImageGeometry(im.Where(), geo)
}

// Composite is a COMP object: cartesian products merged from several
// radars.
type Composite struct {
	products
}

// Geometry returns the cartesian grid of the composite.
func (c *Composite) Geometry() (ImageGeometry, error) {
	return readImageGeometry(c.Where())
}

// SetGeometry writes the cartesian grid of the composite.
func (c *Composite) SetGeometry(geo ImageGeometry) error {
	return writeImageGeometry(c.Where(), geo)
}

// Nodes returns how/nodes, the radars contributing to the composite.
func (c *Composite) Nodes() ([]string, error) {
	return c.How().GetStrings("nodes", true)
}

// SetNodes sets how/nodes.
func (c *Composite) SetNodes(nodes []string) error {
	return c.How().SetStrings("nodes", nodes)
}
