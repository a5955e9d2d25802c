package hdf5

import (
	"path"
)

// WalkFunc is called for each object reached by Walk. obj is either a
// *Group or a *Dataset. A non-nil err reports a member that could not be
// opened, in which case obj is nil. Returning an error stops the walk.
type WalkFunc func(path string, obj interface{}, err error) error

// Walk visits g and every object below it depth first. A group is reported
// before its members, and members are visited in storage order.
//
//	hdf5.Walk(f.Root(), func(p string, obj interface{}, err error) error {
//	    if ds, ok := obj.(*hdf5.Dataset); ok {
//	        fmt.Println(p, ds.Shape())
//	    }
//	    return err
//	})
func Walk(g *Group, fn WalkFunc) error {
	if err := fn(g.Path(), g, nil); err != nil {
		return err
	}

	members, err := g.Members()
	if err != nil {
		return err
	}

	for _, name := range members {
		obj, err := g.open(name)
		if err != nil {
			if err := fn(path.Join(g.Path(), name), nil, err); err != nil {
				return err
			}
			continue
		}

		switch o := obj.(type) {
		case *Group:
			err = Walk(o, fn)
		case *Dataset:
			err = fn(o.Path(), o, nil)
		}
		if err != nil {
			return err
		}
	}

	return nil
}
