package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/robert-malhotra/go-odim/odim"
)

const testSite = `
version = "2.1"

[source]
wmo = "02954"
nod = "fianj"
plc = "Anjalankoski"

[location]
lon = 27.1081
lat = 60.9039
height = 139

[[scan]]
elangle = 0.5
nbins = 10
nrays = 8
rscale = 500
quantities = ["DBZH", "VRADH"]

[[scan]]
elangle = 1.5
nbins = 10
nrays = 8
rscale = 500
rpm = -2
quantities = ["DBZH"]
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"odimtool"}, args...))
	return out.String(), err
}

func writeSite(t *testing.T, dir, text string) string {
	t.Helper()
	path := filepath.Join(dir, "site.toml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestNewInfoTree(t *testing.T) {
	dir := t.TempDir()
	site := writeSite(t, dir, testSite)
	out := filepath.Join(dir, "pvol.h5")

	stdout, err := run(t, "new", "--site", site, "--time", "2024-05-01T12:00:00", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "with 2 scans")

	v, err := odim.OpenPolarVolume(out)
	require.NoError(t, err)
	s, err := v.Scan(1)
	require.NoError(t, err)
	dir2, err := s.Direction()
	require.NoError(t, err)
	assert.Equal(t, -1, dir2)
	angles, err := s.AzimuthAngles()
	require.NoError(t, err)
	assert.Len(t, angles, 8)
	require.NoError(t, v.Close())

	stdout, err = run(t, "info", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "object:      PVOL")
	assert.Contains(t, stdout, "conventions: ODIM_H5/V2_1")
	assert.Contains(t, stdout, "nominal:     2024-05-01 12:00:00Z")
	assert.Contains(t, stdout, "WMO:02954,NOD:fianj,PLC:Anjalankoski")
	assert.Contains(t, stdout, "DBZH VRADH")

	stdout, err = run(t, "tree", "--attrs", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "/dataset2/data1 DBZH 8x10 uint8")
	assert.Contains(t, stdout, "where/elangle = 1.5")

	stdout, err = run(t, "raw", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "dataset /dataset1/data2/data [8 10] uint8")
	assert.Contains(t, stdout, "@CLASS = IMAGE")
}

func TestNewRejectsBadSite(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "pvol.h5")

	site := writeSite(t, dir, "[location]\nlon = 1\nunknown = 2\n")
	_, err := run(t, "new", "--site", site, out)
	assert.ErrorContains(t, err, "unknown keys")

	site = writeSite(t, dir, "[[scan]]\nelangle = 0.5\n")
	_, err = run(t, "new", "--site", site, out)
	assert.ErrorContains(t, err, "positive nbins")

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestInfoUsage(t *testing.T) {
	_, err := run(t, "info")
	assert.Error(t, err)

	_, err = run(t, "info", filepath.Join(t.TempDir(), "absent.h5"))
	assert.ErrorIs(t, err, odim.ErrStorageIO)
}
