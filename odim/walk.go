package odim

import (
	"errors"
)

// Level is the depth of an Entry in the object tree.
type Level int

const (
	LevelRoot Level = iota
	LevelDataset
	LevelData
	LevelQuality
)

func (l Level) String() string {
	switch l {
	case LevelRoot:
		return "root"
	case LevelDataset:
		return "dataset"
	case LevelData:
		return "data"
	case LevelQuality:
		return "quality"
	}
	return "unknown"
}

// Entry is one node visited by Walk.
type Entry struct {
	Level Level
	Path  string
	Index int // storage index; 0 for the root
	What  *Group
	Where *Group
	How   *Group
	Data  *Data // set for data and quality entries
}

// SkipChildren can be returned by a WalkFunc to skip the members of the
// current entry.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for every entry. Returning SkipChildren skips the
// members of the entry; any other error stops the walk and is returned by
// Walk.
type WalkFunc func(e Entry) error

// Walk visits the root and then each dataset in index order. A dataset is
// followed by its data groups, each with its quality groups, and then by
// its dataset level quality groups.
func Walk(obj Object, fn WalkFunc) error {
	root := Entry{Level: LevelRoot, Path: "/", What: obj.What(), Where: obj.Where(), How: obj.How()}
	if skip, err := visit(root, fn); skip || err != nil {
		return err
	}

	for pos, n := 0, obj.DatasetCount(); pos < n; pos++ {
		ds, err := obj.DatasetAt(pos)
		if err != nil {
			return err
		}
		if err := walkDataset(ds, fn); err != nil {
			return err
		}
	}
	return nil
}

func walkDataset(ds *Dataset, fn WalkFunc) error {
	e := Entry{Level: LevelDataset, Path: ds.Path(), Index: ds.Index(), What: ds.What(), Where: ds.Where(), How: ds.How()}
	if skip, err := visit(e, fn); skip || err != nil {
		return err
	}

	for pos, n := 0, ds.DataCount(); pos < n; pos++ {
		d, err := ds.DataAt(pos)
		if err != nil {
			return err
		}
		if err := walkData(d, LevelData, fn); err != nil {
			return err
		}
	}
	for pos, n := 0, ds.QualityCount(); pos < n; pos++ {
		q, err := ds.QualityAt(pos)
		if err != nil {
			return err
		}
		if err := walkData(q, LevelQuality, fn); err != nil {
			return err
		}
	}
	return nil
}

func walkData(d *Data, level Level, fn WalkFunc) error {
	e := Entry{Level: level, Path: d.Path(), Index: d.Index(), What: d.What(), Where: d.Where(), How: d.How(), Data: d}
	if skip, err := visit(e, fn); skip || err != nil {
		return err
	}
	for pos, n := 0, d.QualityCount(); pos < n; pos++ {
		q, err := d.QualityAt(pos)
		if err != nil {
			return err
		}
		if err := walkData(q, LevelQuality, fn); err != nil {
			return err
		}
	}
	return nil
}

func visit(e Entry, fn WalkFunc) (skip bool, err error) {
	err = fn(e)
	if errors.Is(err, SkipChildren) {
		return true, nil
	}
	return false, err
}
