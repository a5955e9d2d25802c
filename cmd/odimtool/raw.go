package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/robert-malhotra/go-odim/hdf5"
)

func rawCommand() *cli.Command {
	return &cli.Command{
		Name:      "raw",
		Usage:     "print the HDF5 groups, datasets and attributes of any file",
		ArgsUsage: "<file.h5>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: odimtool raw <file.h5>", 2)
			}
			f, err := hdf5.Open(c.Args().First())
			if err != nil {
				return err
			}
			defer f.Close()
			return printRaw(c.App.Writer, f)
		},
	}
}

func printRaw(w io.Writer, f *hdf5.File) error {
	fmt.Fprintf(w, "superblock version %d\n", f.Version())
	return hdf5.Walk(f.Root(), func(path string, obj interface{}, err error) error {
		depth := strings.Count(strings.TrimPrefix(path, "/"), "/")
		if path != "/" {
			depth++
		}
		indent := strings.Repeat("  ", depth)
		if err != nil {
			fmt.Fprintf(w, "%s%s: error: %v\n", indent, path, err)
			return nil
		}

		switch o := obj.(type) {
		case *hdf5.Group:
			fmt.Fprintf(w, "%sgroup %s\n", indent, path)
			printAttrs(w, indent, o.Attrs(), o.Attr)
		case *hdf5.Dataset:
			typ, _ := o.GoType()
			fmt.Fprintf(w, "%sdataset %s %v %v\n", indent, path, o.Shape(), typ)
			printAttrs(w, indent, o.Attrs(), o.Attr)
		}
		return nil
	})
}

func printAttrs(w io.Writer, indent string, names []string, attr func(string) *hdf5.Attribute) {
	for _, name := range names {
		a := attr(name)
		if a == nil {
			continue
		}
		v, err := a.Native()
		if err != nil {
			fmt.Fprintf(w, "%s  @%s: %v\n", indent, name, err)
			continue
		}
		fmt.Fprintf(w, "%s  @%s = %v\n", indent, name, v)
	}
}
