package odim

// CrossSection is an XSEC object: vertical cross sections, RHIs and side
// panels.
type CrossSection struct {
	products
}

// XsecGeometry is the vertical grid of a cross section, stored in the root
// where group.
type XsecGeometry struct {
	XSize     int     // columns
	YSize     int     // rows
	XScale    float64 // horizontal spacing, m
	YScale    float64 // vertical spacing, m
	MinHeight float64 // bottom of the section, m
	MaxHeight float64 // top of the section, m
}

// Geometry returns the vertical grid of the cross section.
func (x *CrossSection) Geometry() (XsecGeometry, error) {
	r := attrReader{g: x.Where()}
	geo := XsecGeometry{
		XSize:     r.integer("xsize"),
		YSize:     r.integer("ysize"),
		XScale:    r.double("xscale"),
		YScale:    r.double("yscale"),
		MinHeight: r.double("minheight"),
		MaxHeight: r.double("maxheight"),
	}
	return geo, r.err
}

// SetGeometry writes the vertical grid of the cross section.
func (x *CrossSection) SetGeometry(geo XsecGeometry) error {
	w := attrWriter{g: x.Where()}
	w.integer("xsize", geo.XSize)
	w.integer("ysize", geo.YSize)
	w.double("xscale", geo.XScale)
	w.double("yscale", geo.YScale)
	w.double("minheight", geo.MinHeight)
	w.double("maxheight", geo.MaxHeight)
	return w.err
}
