package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/robert-malhotra/go-odim/odim"
)

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "summarize an ODIM_H5 file",
		ArgsUsage: "<file.h5>",
		Action: func(c *cli.Context) error {
			obj, err := openArg(c)
			if err != nil {
				return err
			}
			defer obj.Close()
			return printInfo(c.App.Writer, obj)
		},
	}
}

func printInfo(w io.Writer, obj odim.Object) error {
	fmt.Fprintf(w, "object:      %s\n", obj.ObjectTag())
	fmt.Fprintf(w, "conventions: %s\n", obj.Conventions())
	if t, err := obj.What().GetDateTime("date", "time"); err == nil {
		fmt.Fprintf(w, "nominal:     %s\n", t.Format("2006-01-02 15:04:05Z"))
	}
	if src, err := obj.What().Source(); err == nil && !src.IsZero() {
		fmt.Fprintf(w, "source:      %s\n", src)
	}
	fmt.Fprintf(w, "datasets:    %d\n", obj.DatasetCount())

	return odim.Visit(obj, odim.Visitor{
		PolarVolume: func(v *odim.PolarVolume) error { return printVolume(w, v) },
		Image: func(im *odim.Image) error {
			return printProducts(w, im.ProductCount(), im.ProductAt)
		},
		Composite: func(cp *odim.Composite) error {
			if nodes, err := cp.Nodes(); err == nil && len(nodes) > 0 {
				fmt.Fprintf(w, "nodes:       %s\n", strings.Join(nodes, ", "))
			}
			return printProducts(w, cp.ProductCount(), cp.ProductAt)
		},
		CrossSection: func(x *odim.CrossSection) error {
			return printProducts(w, x.ProductCount(), x.ProductAt)
		},
	})
}

func printVolume(w io.Writer, v *odim.PolarVolume) error {
	lon, _ := v.Longitude()
	lat, _ := v.Latitude()
	height, _ := v.Height()
	fmt.Fprintf(w, "location:    lon %g lat %g height %g m\n", lon, lat, height)

	if start, end, err := v.TimeRange(); err == nil {
		fmt.Fprintf(w, "window:      %s - %s\n", start.Format("15:04:05"), end.Format("15:04:05"))
	}

	for pos, n := 0, v.ScanCount(); pos < n; pos++ {
		s, err := v.ScanAt(pos)
		if err != nil {
			return err
		}
		elev, err := s.Elevation()
		if err != nil {
			return err
		}
		quantities, err := s.Quantities()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "scan %-3d     elangle %5.2f  %s\n", s.Index(), elev, strings.Join(quantities, " "))
	}
	return nil
}

func printProducts(w io.Writer, n int, at func(int) (*odim.Product, error)) error {
	for pos := 0; pos < n; pos++ {
		p, err := at(pos)
		if err != nil {
			return err
		}
		quantities, err := p.Quantities()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "product %-3d  %-6s %s\n", p.Index(), p.ProductTag(), strings.Join(quantities, " "))
	}
	return nil
}
