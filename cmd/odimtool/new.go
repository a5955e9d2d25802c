package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/robert-malhotra/go-odim/odim"
)

// site describes a radar and its scan strategy.
type site struct {
	Version  string       `toml:"version"`
	Source   siteSource   `toml:"source"`
	Location siteLocation `toml:"location"`
	Scans    []siteScan   `toml:"scan"`
}

type siteSource struct {
	WMO string `toml:"wmo"`
	RAD string `toml:"rad"`
	ORG string `toml:"org"`
	PLC string `toml:"plc"`
	CTY string `toml:"cty"`
	NOD string `toml:"nod"`
	CMT string `toml:"cmt"`
}

type siteLocation struct {
	Lon    float64 `toml:"lon"`
	Lat    float64 `toml:"lat"`
	Height float64 `toml:"height"`
}

type siteScan struct {
	Elangle    float64  `toml:"elangle"`
	NBins      int      `toml:"nbins"`
	NRays      int      `toml:"nrays"`
	RStart     float64  `toml:"rstart"`
	RScale     float64  `toml:"rscale"`
	RPM        float64  `toml:"rpm"`
	Quantities []string `toml:"quantities"`
}

func loadSite(path string) (*site, error) {
	var s site
	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		return nil, fmt.Errorf("reading site %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("site %s: unknown keys %v", path, undecoded)
	}
	if len(s.Scans) == 0 {
		return nil, fmt.Errorf("site %s: no [[scan]] tables", path)
	}
	for i, sc := range s.Scans {
		if sc.NBins <= 0 || sc.NRays <= 0 {
			return nil, fmt.Errorf("site %s: scan %d needs positive nbins and nrays", path, i)
		}
	}
	return &s, nil
}

func (s *site) version() (odim.Version, error) {
	switch s.Version {
	case "", "2.1":
		return odim.V2_1, nil
	case "2.0":
		return odim.V2_0, nil
	}
	return 0, fmt.Errorf("unsupported version %q", s.Version)
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "create an empty polar volume from a TOML site description",
		ArgsUsage: "<out.h5>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "site", Aliases: []string{"s"}, Usage: "site description `FILE`", Required: true},
			&cli.TimestampFlag{Name: "time", Usage: "nominal time, UTC", Layout: "2006-01-02T15:04:05"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: odimtool new --site site.toml <out.h5>", 2)
			}
			s, err := loadSite(c.String("site"))
			if err != nil {
				return err
			}
			nominal := time.Now().UTC().Truncate(time.Second)
			if ts := c.Timestamp("time"); ts != nil {
				nominal = ts.UTC()
			}
			if err := createVolume(c.Args().First(), s, nominal, logger(c)); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "wrote %s with %d scans\n", c.Args().First(), len(s.Scans))
			return nil
		},
	}
}

// createVolume writes a volume with zero filled 8-bit reflectivity style
// matrices for every quantity of every scan.
func createVolume(path string, s *site, nominal time.Time, log logrus.FieldLogger) error {
	version, err := s.version()
	if err != nil {
		return err
	}
	v, err := odim.CreatePolarVolume(path,
		odim.WithLogger(log),
		odim.WithVersion(version),
		odim.WithClock(func() time.Time { return nominal }))
	if err != nil {
		return err
	}
	if err := fillVolume(v, s, nominal); err != nil {
		return errors.Join(err, v.File().Discard())
	}
	return v.Close()
}

func fillVolume(v *odim.PolarVolume, s *site, nominal time.Time) error {
	src := odim.SourceInfo{
		WMO: s.Source.WMO, RAD: s.Source.RAD, ORG: s.Source.ORG, PLC: s.Source.PLC,
		CTY: s.Source.CTY, NOD: s.Source.NOD, CMT: s.Source.CMT,
	}
	if err := v.SetSource(src); err != nil {
		return err
	}
	if err := v.SetLongitude(s.Location.Lon); err != nil {
		return err
	}
	if err := v.SetLatitude(s.Location.Lat); err != nil {
		return err
	}
	if err := v.SetHeight(s.Location.Height); err != nil {
		return err
	}

	for _, sc := range s.Scans {
		scan, err := v.CreateScan()
		if err != nil {
			return err
		}
		if err := fillScan(scan, sc, nominal); err != nil {
			return fmt.Errorf("scan %d: %w", scan.Index(), err)
		}
	}
	return nil
}

func fillScan(scan *odim.Scan, sc siteScan, nominal time.Time) error {
	for _, set := range []func() error{
		func() error { return scan.SetElevation(sc.Elangle) },
		func() error { return scan.SetNumBins(sc.NBins) },
		func() error { return scan.SetNumRays(sc.NRays) },
		func() error { return scan.SetA1Gate(0) },
		func() error { return scan.SetRangeStart(sc.RStart) },
		func() error { return scan.SetRangeScale(sc.RScale) },
		func() error { return scan.SetStartTime(nominal) },
		func() error { return scan.SetEndTime(nominal) },
	} {
		if err := set(); err != nil {
			return err
		}
	}
	if sc.RPM != 0 {
		if err := scan.SetRPM(sc.RPM); err != nil {
			return err
		}
	}

	width := 360 / float64(sc.NRays)
	angles := make([]odim.AZAngles, sc.NRays)
	for i := range angles {
		angles[i] = odim.AZAngles{Start: float64(i) * width, Stop: float64(i+1) * width}
	}
	if sc.RPM < 0 {
		for i := range angles {
			angles[i].Start, angles[i].Stop = angles[i].Stop, angles[i].Start
		}
	}
	if err := scan.SetAzimuthAngles(angles); err != nil {
		return err
	}

	for _, q := range sc.Quantities {
		d, err := scan.CreateData(q)
		if err != nil {
			return err
		}
		if err := d.SetGain(0.5); err != nil {
			return err
		}
		if err := d.SetOffset(-32); err != nil {
			return err
		}
		if err := d.SetNoData(255); err != nil {
			return err
		}
		if err := d.SetUndetect(0); err != nil {
			return err
		}
		if err := odim.WriteData(d, odim.NewMatrix[uint8](sc.NRays, sc.NBins)); err != nil {
			return err
		}
	}
	return nil
}
