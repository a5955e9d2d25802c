package odim

import (
	"fmt"
)

// Visitor holds one callback per object kind. A nil callback skips objects
// of that kind.
type Visitor struct {
	PolarVolume  func(*PolarVolume) error
	Image        func(*Image) error
	Composite    func(*Composite) error
	CrossSection func(*CrossSection) error
	Generic      func(*Generic) error
}

// Visit calls the callback of v matching the concrete kind of obj.
func Visit(obj Object, v Visitor) error {
	switch o := obj.(type) {
	case *PolarVolume:
		return call(v.PolarVolume, o)
	case *Image:
		return call(v.Image, o)
	case *Composite:
		return call(v.Composite, o)
	case *CrossSection:
		return call(v.CrossSection, o)
	case *Generic:
		return call(v.Generic, o)
	}
	return fmt.Errorf("%w: object of type %T", ErrUnsupported, obj)
}

func call[T any](fn func(T) error, o T) error {
	if fn == nil {
		return nil
	}
	return fn(o)
}
