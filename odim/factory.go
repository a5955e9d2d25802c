package odim

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-odim/container"
)

// Open opens the file at path, dispatches on what/object and validates the
// mandatory content of the kind. Validation failures are *FormatError
// values matching ErrFormat. Files are read-only unless WithReadWrite is
// given.
func Open(path string, opts ...Option) (Object, error) {
	cfg := newConfig(opts)
	f, err := container.Open(path, cfg.mode, container.WithLogger(cfg.log))
	if err != nil {
		return nil, err
	}

	obj := wrap(f, cfg)
	if err := validate(obj); err != nil {
		return nil, discard(f, err)
	}
	cfg.log.WithField("path", path).WithField("object", obj.ObjectTag()).Debug("opened object")
	return obj, nil
}

// OpenPolarVolume opens a file that must hold a PVOL.
func OpenPolarVolume(path string, opts ...Option) (*PolarVolume, error) {
	return openAs[*PolarVolume](path, KindPVOL, opts)
}

// OpenImage opens a file that must hold an IMAGE.
func OpenImage(path string, opts ...Option) (*Image, error) {
	return openAs[*Image](path, KindIMAGE, opts)
}

// OpenComposite opens a file that must hold a COMP.
func OpenComposite(path string, opts ...Option) (*Composite, error) {
	return openAs[*Composite](path, KindCOMP, opts)
}

// OpenCrossSection opens a file that must hold an XSEC.
func OpenCrossSection(path string, opts ...Option) (*CrossSection, error) {
	return openAs[*CrossSection](path, KindXSEC, opts)
}

func openAs[T Object](path string, kind ObjectKind, opts []Option) (T, error) {
	var zero T
	obj, err := Open(path, opts...)
	if err != nil {
		return zero, err
	}
	t, ok := obj.(T)
	if !ok {
		err := formatErr(ErrInvalidAttributeValue, "/what", "object",
			fmt.Errorf("want %v, have %q", kind, obj.ObjectTag()))
		return zero, discard(obj.File(), err)
	}
	return t, nil
}

// Create starts a new object of the given kind at path. The file is
// written by Flush or Close.
func Create(path string, kind ObjectKind, opts ...Option) (Object, error) {
	cfg := newConfig(opts)
	f, err := container.Create(path, container.WithLogger(cfg.log))
	if err != nil {
		return nil, err
	}
	obj, err := initialize(f, kind, cfg)
	if err != nil {
		return nil, discard(f, err)
	}
	cfg.log.WithField("path", path).WithField("object", kind).Debug("created object")
	return obj, nil
}

// New returns an in-memory object of the given kind. Write it with SaveAs.
func New(kind ObjectKind, opts ...Option) (Object, error) {
	cfg := newConfig(opts)
	f := container.New(container.WithLogger(cfg.log))
	obj, err := initialize(f, kind, cfg)
	if err != nil {
		return nil, discard(f, err)
	}
	return obj, nil
}

// CreatePolarVolume starts a new PVOL at path.
func CreatePolarVolume(path string, opts ...Option) (*PolarVolume, error) {
	return createAs[*PolarVolume](path, KindPVOL, opts)
}

// CreateImage starts a new IMAGE at path.
func CreateImage(path string, opts ...Option) (*Image, error) {
	return createAs[*Image](path, KindIMAGE, opts)
}

// CreateComposite starts a new COMP at path.
func CreateComposite(path string, opts ...Option) (*Composite, error) {
	return createAs[*Composite](path, KindCOMP, opts)
}

// CreateCrossSection starts a new XSEC at path.
func CreateCrossSection(path string, opts ...Option) (*CrossSection, error) {
	return createAs[*CrossSection](path, KindXSEC, opts)
}

func createAs[T Object](path string, kind ObjectKind, opts []Option) (T, error) {
	var zero T
	obj, err := Create(path, kind, opts...)
	if err != nil {
		return zero, err
	}
	return obj.(T), nil
}

// wrap returns the concrete object for what/object.
func wrap(f *container.File, cfg *config) Object {
	base := newObject(f, cfg)
	switch base.Kind() {
	case KindPVOL:
		return &PolarVolume{object: base}
	case KindIMAGE:
		return &Image{products{object: base}}
	case KindCOMP:
		return &Composite{products{object: base}}
	case KindXSEC:
		return &CrossSection{products{object: base}}
	}
	return &Generic{object: base}
}

func initialize(f *container.File, kind ObjectKind, cfg *config) (Object, error) {
	if kind == KindUnknown {
		return nil, fmt.Errorf("%w: unknown object kind", ErrInvalidArgument)
	}
	if cfg.version.Conventions() == "" {
		return nil, fmt.Errorf("%w: version %v", ErrUnsupported, cfg.version)
	}

	root := f.Root()
	if err := root.SetAttr("Conventions", cfg.version.Conventions()); err != nil {
		return nil, err
	}
	for _, name := range []string{"what", "where", "how"} {
		if _, err := root.EnsureChild(name); err != nil {
			return nil, err
		}
	}

	base := newObject(f, cfg)
	what := base.What()
	w := attrWriter{g: what}
	w.text("object", kind.String())
	w.text("version", cfg.version.Tag())
	if w.err != nil {
		return nil, w.err
	}
	if err := base.SetDateTime(cfg.now()); err != nil {
		return nil, err
	}
	if err := base.SetSource(SourceInfo{}); err != nil {
		return nil, err
	}

	// Placeholders for the attributes validate requires, so that a new
	// object reopens before the caller fills them in.
	where := attrWriter{g: base.Where()}
	switch kind {
	case KindPVOL:
		where.double("lon", 0)
		where.double("lat", 0)
		where.double("height", 0)
	case KindIMAGE, KindCOMP:
		where.integer("xsize", 0)
		where.integer("ysize", 0)
	}
	if where.err != nil {
		return nil, where.err
	}
	return wrap(f, cfg), nil
}

// validate checks that the mandatory content of obj is present and decodes
// as its ODIM type.
func validate(obj Object) error {
	root := obj.File().Root()
	raw, ok := root.Attr("Conventions")
	if !ok {
		return missingAttr("/", "Conventions")
	}
	conv, _ := raw.(string)
	if _, err := ParseConventions(conv); err != nil {
		return formatErr(ErrUnknownConvention, "/", "Conventions", err)
	}

	what := obj.What()
	if !what.Exists() {
		return formatErr(ErrMissingGroup, what.Path(), "", nil)
	}
	if err := checkAttrs(what, (*Group).GetString, "object", "version", "date", "time"); err != nil {
		return err
	}
	if _, err := what.Source(); err != nil {
		return err
	}
	if _, err := what.GetDateTime("date", "time"); err != nil {
		return err
	}

	switch o := obj.(type) {
	case *PolarVolume:
		return validatePolarVolume(o)
	case *Image:
		return checkAttrs(o.Where(), (*Group).GetInt, "xsize", "ysize")
	case *Composite:
		return checkAttrs(o.Where(), (*Group).GetInt, "xsize", "ysize")
	}
	return nil
}

func validatePolarVolume(v *PolarVolume) error {
	if err := checkAttrs(v.Where(), (*Group).GetDouble, "lon", "lat", "height"); err != nil {
		return err
	}
	scans, err := v.Scans()
	if err != nil {
		return err
	}
	for _, s := range scans {
		where := s.Where()
		if err := checkAttrs(where, (*Group).GetDouble, "elangle"); err != nil {
			return err
		}
		if err := checkAttrs(where, (*Group).GetInt, "nbins", "nrays", "a1gate"); err != nil {
			return err
		}
		for _, index := range s.DataIndices() {
			d, err := s.Data(index)
			if err != nil {
				return err
			}
			if !d.HasMatrix() {
				return formatErr(ErrMissingDataset, d.Path(), matrixName, nil)
			}
			if err := checkAttrs(d.What(), (*Group).GetString, "quantity"); err != nil {
				return err
			}
		}
	}
	return nil
}

// discard releases f after a failed open or create and returns err.
func discard(f *container.File, err error) error {
	if cerr := f.Discard(); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}

// checkAttrs decodes each named attribute of g with get. Absent attributes
// fail with ErrMissingAttribute, undecodable ones with
// ErrInvalidAttributeValue.
func checkAttrs[T any](g *Group, get func(*Group, string) (T, error), names ...string) error {
	for _, name := range names {
		if _, err := get(g, name); err != nil {
			return err
		}
	}
	return nil
}
