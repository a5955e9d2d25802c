package odim

import (
	"fmt"
	"strings"
)

// ObjectKind is the what/object discriminator of a file.
type ObjectKind int

const (
	KindUnknown ObjectKind = iota
	KindPVOL               // polar volume
	KindCVOL               // cartesian volume
	KindSCAN               // polar scan
	KindRAY                // single polar ray
	KindAZIM               // azimuthal object
	KindIMAGE              // 2-D cartesian image
	KindCOMP               // cartesian composite image(s)
	KindXSEC               // 2-D vertical cross section(s)
	KindVP                 // 1-D vertical profile
	KindPIC                // embedded graphical image
)

var objectKindNames = [...]string{
	KindUnknown: "",
	KindPVOL:    "PVOL",
	KindCVOL:    "CVOL",
	KindSCAN:    "SCAN",
	KindRAY:     "RAY",
	KindAZIM:    "AZIM",
	KindIMAGE:   "IMAGE",
	KindCOMP:    "COMP",
	KindXSEC:    "XSEC",
	KindVP:      "VP",
	KindPIC:     "PIC",
}

func (k ObjectKind) String() string {
	if k <= KindUnknown || int(k) >= len(objectKindNames) {
		return "UNKNOWN"
	}
	return objectKindNames[k]
}

// ParseObjectKind maps a what/object value to its kind, or KindUnknown.
func ParseObjectKind(s string) ObjectKind {
	s = strings.TrimSpace(s)
	for k := KindPVOL; int(k) < len(objectKindNames); k++ {
		if objectKindNames[k] == s {
			return k
		}
	}
	return KindUnknown
}

// ProductKind is the what/product tag of an image, composite or cross
// section dataset.
type ProductKind int

const (
	ProductUnknown ProductKind = iota
	ProductPPI                 // plan position indicator
	ProductCAPPI               // constant altitude PPI
	ProductPCAPPI              // pseudo-CAPPI
	ProductETOP                // echo top
	ProductMAX                 // maximum
	ProductRR                  // accumulation
	ProductVIL                 // vertically integrated liquid water
	ProductLBM                 // layer bounded maximum
	ProductPOH                 // probability of hail
	ProductCOMP                // composite
	ProductXSEC                // arbitrary vertical slice
	ProductRHI                 // range height indicator
	ProductVSP                 // vertical side panel
	ProductHSP                 // horizontal side panel
	ProductSCAN                // polar scan
)

var productKindNames = [...]string{
	ProductUnknown: "",
	ProductPPI:     "PPI",
	ProductCAPPI:   "CAPPI",
	ProductPCAPPI:  "PCAPPI",
	ProductETOP:    "ETOP",
	ProductMAX:     "MAX",
	ProductRR:      "RR",
	ProductVIL:     "VIL",
	ProductLBM:     "LBM",
	ProductPOH:     "POH",
	ProductCOMP:    "COMP",
	ProductXSEC:    "XSEC",
	ProductRHI:     "RHI",
	ProductVSP:     "VSP",
	ProductHSP:     "HSP",
	ProductSCAN:    "SCAN",
}

func (k ProductKind) String() string {
	if k <= ProductUnknown || int(k) >= len(productKindNames) {
		return "UNKNOWN"
	}
	return productKindNames[k]
}

// ParseProductKind maps a what/product value to its kind, or ProductUnknown.
func ParseProductKind(s string) ProductKind {
	s = strings.TrimSpace(s)
	for k := ProductPPI; int(k) < len(productKindNames); k++ {
		if productKindNames[k] == s {
			return k
		}
	}
	return ProductUnknown
}

// Version is an ODIM_H5 information model version.
type Version int

const (
	V2_0 Version = iota + 1
	V2_1
)

// conventions maps each recognized root Conventions value to its version.
var conventions = map[string]Version{
	"ODIM_H5/V2_0": V2_0,
	"ODIM_H5/V2_1": V2_1,
}

// Conventions returns the root Conventions value for v.
func (v Version) Conventions() string {
	switch v {
	case V2_0:
		return "ODIM_H5/V2_0"
	case V2_1:
		return "ODIM_H5/V2_1"
	}
	return ""
}

// Tag returns the what/version value for v.
func (v Version) Tag() string {
	switch v {
	case V2_0:
		return "H5rad 2.0"
	case V2_1:
		return "H5rad 2.1"
	}
	return ""
}

func (v Version) String() string {
	switch v {
	case V2_0:
		return "2.0"
	case V2_1:
		return "2.1"
	}
	return fmt.Sprintf("Version(%d)", int(v))
}

// ParseConventions returns the version named by a Conventions value.
func ParseConventions(s string) (Version, error) {
	v, ok := conventions[strings.TrimSpace(s)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownConvention, s)
	}
	return v, nil
}
