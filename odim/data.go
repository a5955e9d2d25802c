package odim

import (
	"github.com/sirupsen/logrus"

	"github.com/robert-malhotra/go-odim/container"
)

// matrixName is the name of the sample matrix inside a data or quality group.
const matrixName = "data"

// Data is one /data<M> or /quality<K> group: a sample matrix with its
// scaling metadata and, for data groups, nested quality groups.
type Data struct {
	node    *container.Node
	index   int
	quality bool
	log     logrus.FieldLogger
}

// Index returns the 0-based storage index.
func (d *Data) Index() int {
	return d.index
}

// IsQuality reports whether d is a quality group.
func (d *Data) IsQuality() bool {
	return d.quality
}

// Path returns the absolute path of the group.
func (d *Data) Path() string {
	return d.node.Path()
}

func (d *Data) What() *Group { return newGroup(d.node, "what") }
func (d *Data) Where() *Group { return newGroup(d.node, "where") }
func (d *Data) How() *Group { return newGroup(d.node, "how") }

// Quantity returns what/quantity, such as DBZH.
func (d *Data) Quantity() (string, error) {
	return d.What().GetString("quantity")
}

// SetQuantity sets what/quantity.
func (d *Data) SetQuantity(q string) error {
	return d.What().SetString("quantity", q)
}

// Gain returns what/gain, 1 when absent.
func (d *Data) Gain() (float64, error) {
	return GetOr(d.What(), "gain", 1.0)
}

// Offset returns what/offset, 0 when absent.
func (d *Data) Offset() (float64, error) {
	return GetOr(d.What(), "offset", 0.0)
}

// NoData returns the raw code of what/nodata.
func (d *Data) NoData() (float64, error) {
	return d.What().GetDouble("nodata")
}

// Undetect returns the raw code of what/undetect.
func (d *Data) Undetect() (float64, error) {
	return d.What().GetDouble("undetect")
}

func (d *Data) SetGain(v float64) error { return d.What().SetDouble("gain", v) }
func (d *Data) SetOffset(v float64) error { return d.What().SetDouble("offset", v) }
func (d *Data) SetNoData(v float64) error { return d.What().SetDouble("nodata", v) }
func (d *Data) SetUndetect(v float64) error { return d.What().SetDouble("undetect", v) }

// CopyAttributesFrom imports the what, where and how groups of src.
func (d *Data) CopyAttributesFrom(src *Data) error {
	if err := d.What().Import(src.What()); err != nil {
		return err
	}
	if err := d.Where().Import(src.Where()); err != nil {
		return err
	}
	return d.How().Import(src.How())
}

func (d *Data) qualities() members {
	return members{node: d.node, prefix: qualityPrefix}
}

// QualityCount returns the number of quality groups.
func (d *Data) QualityCount() int {
	return len(d.qualities().indices())
}

// QualityIndices returns the storage indices of the quality groups.
func (d *Data) QualityIndices() []int {
	return d.qualities().indices()
}

// QualityAt returns the quality group at position pos of QualityIndices.
func (d *Data) QualityAt(pos int) (*Data, error) {
	index, n, err := d.qualities().at(pos)
	if err != nil {
		return nil, err
	}
	return &Data{node: n, index: index, quality: true, log: d.log}, nil
}

// Quality returns the quality group with the given storage index.
func (d *Data) Quality(index int) (*Data, error) {
	n, err := d.qualities().get(index)
	if err != nil {
		return nil, err
	}
	return &Data{node: n, index: index, quality: true, log: d.log}, nil
}

// CreateQuality appends a quality group after the highest index.
func (d *Data) CreateQuality() (*Data, error) {
	index, n, err := d.qualities().create()
	if err != nil {
		return nil, err
	}
	return &Data{node: n, index: index, quality: true, log: d.log}, nil
}

// RemoveQuality removes a quality group without renumbering the others.
func (d *Data) RemoveQuality(index int) error {
	return d.qualities().remove(index)
}
