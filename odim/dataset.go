package odim

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/robert-malhotra/go-odim/container"
)

// Dataset is one /dataset<N> group: a polar scan, a product or a dataset of
// some other object kind. It holds numbered data and quality groups.
type Dataset struct {
	node    *container.Node
	index   int
	version Version
	log     logrus.FieldLogger
}

// Index returns the 0-based storage index.
func (d *Dataset) Index() int {
	return d.index
}

// Path returns the absolute path of the dataset group.
func (d *Dataset) Path() string {
	return d.node.Path()
}

func (d *Dataset) What() *Group { return newGroup(d.node, "what") }
func (d *Dataset) Where() *Group { return newGroup(d.node, "where") }
func (d *Dataset) How() *Group { return newGroup(d.node, "how") }

// StartTime returns what/startdate and what/starttime.
func (d *Dataset) StartTime() (time.Time, error) {
	return d.What().GetDateTime("startdate", "starttime")
}

// SetStartTime sets what/startdate and what/starttime.
func (d *Dataset) SetStartTime(t time.Time) error {
	return d.What().SetDateTime("startdate", "starttime", t)
}

// EndTime returns what/enddate and what/endtime.
func (d *Dataset) EndTime() (time.Time, error) {
	return d.What().GetDateTime("enddate", "endtime")
}

// SetEndTime sets what/enddate and what/endtime.
func (d *Dataset) SetEndTime(t time.Time) error {
	return d.What().SetDateTime("enddate", "endtime", t)
}

func (d *Dataset) data() members {
	return members{node: d.node, prefix: dataPrefix}
}

// DataCount returns the number of data groups.
func (d *Dataset) DataCount() int {
	return len(d.data().indices())
}

// DataIndices returns the storage indices of the data groups in increasing order.
func (d *Dataset) DataIndices() []int {
	return d.data().indices()
}

// DataAt returns the data group at position pos of DataIndices.
func (d *Dataset) DataAt(pos int) (*Data, error) {
	index, n, err := d.data().at(pos)
	if err != nil {
		return nil, err
	}
	return d.wrapData(index, n, false), nil
}

// Data returns the data group with the given storage index.
func (d *Dataset) Data(index int) (*Data, error) {
	n, err := d.data().get(index)
	if err != nil {
		return nil, err
	}
	return d.wrapData(index, n, false), nil
}

// CreateData appends a data group for quantity after the highest index.
func (d *Dataset) CreateData(quantity string) (*Data, error) {
	index, n, err := d.data().create()
	if err != nil {
		return nil, err
	}
	data := d.wrapData(index, n, false)
	if quantity != "" {
		if err := data.SetQuantity(quantity); err != nil {
			return nil, err
		}
	}
	d.log.WithFields(logrus.Fields{"dataset": d.index, "index": index}).Debug("created data")
	return data, nil
}

// RemoveData removes a data group without renumbering the others.
func (d *Dataset) RemoveData(index int) error {
	return d.data().remove(index)
}

// DataByQuantity returns the first data group holding quantity.
func (d *Dataset) DataByQuantity(quantity string) (*Data, error) {
	for _, index := range d.DataIndices() {
		data, err := d.Data(index)
		if err != nil {
			return nil, err
		}
		if q, err := data.Quantity(); err == nil && q == quantity {
			return data, nil
		}
	}
	return nil, formatErr(ErrMissingDataset, d.Path(), "", fmt.Errorf("no data for quantity %q", quantity))
}

// Quantities returns the quantity of every data group in index order.
func (d *Dataset) Quantities() ([]string, error) {
	var out []string
	for _, index := range d.DataIndices() {
		data, err := d.Data(index)
		if err != nil {
			return nil, err
		}
		q, err := data.Quantity()
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func (d *Dataset) qualities() members {
	return members{node: d.node, prefix: qualityPrefix}
}

// QualityCount returns the number of quality groups of the whole dataset.
func (d *Dataset) QualityCount() int {
	return len(d.qualities().indices())
}

// QualityAt returns the dataset level quality group at position pos.
func (d *Dataset) QualityAt(pos int) (*Data, error) {
	index, n, err := d.qualities().at(pos)
	if err != nil {
		return nil, err
	}
	return d.wrapData(index, n, true), nil
}

// Quality returns the dataset level quality group with the given index.
func (d *Dataset) Quality(index int) (*Data, error) {
	n, err := d.qualities().get(index)
	if err != nil {
		return nil, err
	}
	return d.wrapData(index, n, true), nil
}

// CreateQuality appends a dataset level quality group.
func (d *Dataset) CreateQuality() (*Data, error) {
	index, n, err := d.qualities().create()
	if err != nil {
		return nil, err
	}
	return d.wrapData(index, n, true), nil
}

// RemoveQuality removes a dataset level quality group.
func (d *Dataset) RemoveQuality(index int) error {
	return d.qualities().remove(index)
}

func (d *Dataset) wrapData(index int, n *container.Node, quality bool) *Data {
	return &Data{node: n, index: index, quality: quality, log: d.log}
}
