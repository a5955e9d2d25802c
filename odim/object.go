// Package odim reads and writes weather radar files that follow the
// ODIM_H5 information model, versions 2.0 and 2.1.
//
// A file holds one Object: a PolarVolume, an Image, a Composite, a
// CrossSection or, for any other what/object value, a Generic. Objects are
// built from numbered datasets (/dataset<N>), which hold numbered data groups
// (/dataset<N>/data<M>) with their sample matrices and optional quality
// groups (/data<M>/quality<K>). Every level carries what, where and how
// metadata groups, accessed through Group.
//
// Numbered members are addressed by 0-based storage index: dataset<N> has
// index N-1. Removing a member leaves a gap and never renumbers the others.
package odim

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/robert-malhotra/go-odim/container"
)

// Object is the content of one ODIM_H5 file.
type Object interface {
	// Kind returns the kind named by what/object.
	Kind() ObjectKind
	// ObjectTag returns what/object as stored.
	ObjectTag() string
	// Conventions returns the root Conventions attribute.
	Conventions() string
	// Version returns the version named by Conventions, or 0.
	Version() Version

	What() *Group
	Where() *Group
	How() *Group

	// DatasetCount, DatasetIndices and DatasetAt enumerate the datasets in
	// increasing index order.
	DatasetCount() int
	DatasetIndices() []int
	DatasetAt(pos int) (*Dataset, error)

	// Path returns the file path, or "" for an object created with New.
	Path() string
	// File returns the underlying container file.
	File() *container.File
	Flush() error
	SaveAs(path string) error
	Close() error
}

// object is embedded by all kinds.
type object struct {
	file *container.File
	cfg  *config
	log  logrus.FieldLogger
}

func newObject(f *container.File, cfg *config) object {
	log := cfg.log
	if f.Path() != "" {
		log = log.WithField("path", f.Path())
	}
	return object{file: f, cfg: cfg, log: log}
}

func (o *object) root() *container.Node {
	return o.file.Root()
}

func (o *object) Kind() ObjectKind {
	return ParseObjectKind(o.ObjectTag())
}

func (o *object) ObjectTag() string {
	tag, _ := o.What().GetString("object")
	return tag
}

func (o *object) Conventions() string {
	v, _ := o.root().Attr("Conventions")
	s, _ := v.(string)
	return s
}

func (o *object) Version() Version {
	v, _ := ParseConventions(o.Conventions())
	return v
}

func (o *object) What() *Group { return newGroup(o.root(), "what") }
func (o *object) Where() *Group { return newGroup(o.root(), "where") }
func (o *object) How() *Group { return newGroup(o.root(), "how") }

func (o *object) Path() string {
	return o.file.Path()
}

func (o *object) File() *container.File {
	return o.file
}

func (o *object) Flush() error {
	return o.file.Flush()
}

func (o *object) SaveAs(path string) error {
	return o.file.SaveAs(path)
}

func (o *object) Close() error {
	o.log.Debug("closing object")
	return o.file.Close()
}

// DateTime returns the nominal time of the object, what/date and what/time.
func (o *object) DateTime() (time.Time, error) {
	return o.What().GetDateTime("date", "time")
}

// SetDateTime sets what/date and what/time.
func (o *object) SetDateTime(t time.Time) error {
	return o.What().SetDateTime("date", "time", t)
}

// Source returns what/source.
func (o *object) Source() (SourceInfo, error) {
	return o.What().Source()
}

// SetSource sets what/source.
func (o *object) SetSource(s SourceInfo) error {
	return o.What().SetSource(s)
}

func (o *object) datasets() members {
	return members{node: o.root(), prefix: datasetPrefix}
}

func (o *object) DatasetCount() int {
	return len(o.datasets().indices())
}

func (o *object) DatasetIndices() []int {
	return o.datasets().indices()
}

func (o *object) DatasetAt(pos int) (*Dataset, error) {
	index, n, err := o.datasets().at(pos)
	if err != nil {
		return nil, err
	}
	return o.wrapDataset(index, n), nil
}

func (o *object) dataset(index int) (*Dataset, error) {
	n, err := o.datasets().get(index)
	if err != nil {
		return nil, err
	}
	return o.wrapDataset(index, n), nil
}

func (o *object) createDataset(product string) (*Dataset, error) {
	index, n, err := o.datasets().create()
	if err != nil {
		return nil, err
	}
	d := o.wrapDataset(index, n)
	if product != "" {
		if err := d.What().SetString("product", product); err != nil {
			return nil, err
		}
	}
	o.log.WithField("index", index).Debug("created dataset")
	return d, nil
}

func (o *object) removeDataset(index int) error {
	if err := o.datasets().remove(index); err != nil {
		return err
	}
	o.log.WithField("index", index).Debug("removed dataset")
	return nil
}

func (o *object) wrapDataset(index int, n *container.Node) *Dataset {
	return &Dataset{node: n, index: index, version: o.Version(), log: o.log}
}

// Generic is an object of a kind without a dedicated type, such as a
// vertical profile.
type Generic struct {
	object
}

// Dataset returns the dataset with the given storage index.
func (g *Generic) Dataset(index int) (*Dataset, error) {
	return g.dataset(index)
}

// CreateDataset appends a dataset after the highest index.
func (g *Generic) CreateDataset() (*Dataset, error) {
	return g.createDataset("")
}

// RemoveDataset removes a dataset without renumbering the others.
func (g *Generic) RemoveDataset(index int) error {
	return g.removeDataset(index)
}
