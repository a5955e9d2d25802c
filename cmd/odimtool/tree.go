package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/robert-malhotra/go-odim/odim"
)

func treeCommand() *cli.Command {
	return &cli.Command{
		Name:      "tree",
		Usage:     "print the datasets, data groups and metadata of a file",
		ArgsUsage: "<file.h5>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "attrs", Aliases: []string{"a"}, Usage: "print what, where and how attributes"},
		},
		Action: func(c *cli.Context) error {
			obj, err := openArg(c)
			if err != nil {
				return err
			}
			defer obj.Close()
			return printTree(c.App.Writer, obj, c.Bool("attrs"))
		},
	}
}

func printTree(w io.Writer, obj odim.Object, attrs bool) error {
	return odim.Walk(obj, func(e odim.Entry) error {
		indent := strings.Repeat("  ", int(e.Level))
		fmt.Fprintf(w, "%s%s", indent, e.Path)
		if e.Data != nil {
			q, _ := e.Data.Quantity()
			if rows, cols, err := e.Data.Dims(); err == nil {
				elem, _ := e.Data.ElemType()
				fmt.Fprintf(w, " %s %dx%d %s", q, rows, cols, elem)
			} else if q != "" {
				fmt.Fprintf(w, " %s", q)
			}
		}
		fmt.Fprintln(w)

		if !attrs {
			return nil
		}
		for _, g := range []*odim.Group{e.What, e.Where, e.How} {
			for _, name := range g.Names() {
				v, _ := g.Raw(name)
				fmt.Fprintf(w, "%s  %s/%s = %v\n", indent, g.Name(), name, v)
			}
		}
		return nil
	})
}
