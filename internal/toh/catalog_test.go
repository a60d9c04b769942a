package toh

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCatalog() *Catalog {
	columns := []string{"brand", "model", "cpu", "target", "subtarget"}
	return NewCatalog(columns, []Record{
		{"brand": "TP-Link", "model": "Archer A7", "cpu": "QCA9563", "target": "ath79", "subtarget": "generic"},
		{"brand": "X", "target": "ath79", "subtarget": ""},
		{"brand": "GL.iNet", "model": "GL-AR300M", "target": "ath79", "subtarget": "nand"},
		{"brand": "Linksys", "model": "WRT3200ACM", "target": "mvebu", "subtarget": "cortexa9"},
		{"brand": "Netgear", "model": "R7800", "target": "ipq806x", "subtarget": "generic"},
		{"brand": "Ubiquiti", "model": "EdgeRouter X", "target": "ramips", "subtarget": "mt7621"},
		{"brand": "Xiaomi", "model": "Mi Router 4A", "target": "ramips", "subtarget": "mt7621"},
		{"brand": "Junk", "target": "nan", "subtarget": "generic"},
		{"brand": "Junk", "target": "ramips", "subtarget": "NULL"},
		{"brand": "Junk", "target": "¿", "subtarget": "¿"},
		{"brand": "Junk", "target": "Â¿", "subtarget": "x"},
		{"brand": "Junk", "target": "-", "subtarget": "?"},
		{"brand": "Upper", "model": "U1", "target": "Zynq", "subtarget": "generic"},
	})
}

func TestIsJunk(t *testing.T) {
	for _, value := range []string{"", "  ", "nan", "NaN", "NULL", "null", "-", "?", "¿", "Â¿", " ¿ "} {
		assert.True(t, IsJunk(value), "expected %q to be junk", value)
	}
	for _, value := range []string{"ath79", "generic", "nand", "x86", "64"} {
		assert.False(t, IsJunk(value), "expected %q to be kept", value)
	}
}

func TestNewCatalogDropsJunkRows(t *testing.T) {
	c := sampleCatalog()
	require.Equal(t, 7, c.Len())

	for _, record := range c.Records() {
		assert.False(t, IsJunk(record[FieldTarget]), "target %q", record[FieldTarget])
		assert.False(t, IsJunk(record[FieldSubtarget]), "subtarget %q", record[FieldSubtarget])
	}
}

func TestTargetsSortedAndUnique(t *testing.T) {
	targets := sampleCatalog().Targets()

	assert.Equal(t, []string{"Zynq", "ath79", "ipq806x", "mvebu", "ramips"}, targets)
	assert.True(t, sort.StringsAreSorted(targets))
	for i := 1; i < len(targets); i++ {
		assert.Less(t, targets[i-1], targets[i])
	}
}

func TestSubtargetsFiltersEmpty(t *testing.T) {
	c := NewCatalog(nil, []Record{
		{"target": "ath79", "subtarget": "generic", "brand": "TP-Link", "model": "Archer A7", "cpu": "QCA9563"},
		{"target": "ath79", "subtarget": "", "brand": "X"},
	})

	subtargets, err := c.Subtargets("ath79")
	require.NoError(t, err)
	assert.Equal(t, []string{"generic"}, subtargets)
}

func TestSubtargetsUnknownTarget(t *testing.T) {
	_, err := sampleCatalog().Subtargets("octeon")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyResult))
}

func TestEveryTargetHasSubtargetsAndInfo(t *testing.T) {
	c := sampleCatalog()
	for _, target := range c.Targets() {
		subtargets, err := c.Subtargets(target)
		require.NoError(t, err, target)
		require.NotEmpty(t, subtargets, target)

		for _, subtarget := range subtargets {
			_, err := c.Info(target, subtarget)
			assert.NoError(t, err, "%s/%s", target, subtarget)
		}
	}
}

func TestInfoProjectsFirstMatch(t *testing.T) {
	info, err := sampleCatalog().Info("ramips", "mt7621")
	require.NoError(t, err)

	assert.Equal(t, "Ubiquiti", info["brand"])
	assert.Equal(t, "EdgeRouter X", info["model"])
	assert.Len(t, info, len(DisplayFields))
	assert.Equal(t, "", info["wikideviurl"])
	_, hasTarget := info[FieldTarget]
	assert.False(t, hasTarget)
}

func TestInfoNotFound(t *testing.T) {
	_, err := sampleCatalog().Info("ath79", "tiny")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var nilCatalog *Catalog
	_, err = nilCatalog.Info("ath79", "generic")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDevices(t *testing.T) {
	devices := sampleCatalog().Devices("ramips", "mt7621")
	require.Len(t, devices, 2)
	assert.Equal(t, "EdgeRouter X", devices[0]["model"])
	assert.Equal(t, "Mi Router 4A", devices[1]["model"])

	assert.Empty(t, sampleCatalog().Devices("ramips", "mt7620"))
}

func TestRecordsAreCopies(t *testing.T) {
	c := sampleCatalog()
	records := c.Records()
	records[0]["brand"] = "changed"

	info, err := c.Info("ath79", "generic")
	require.NoError(t, err)
	assert.Equal(t, "TP-Link", info["brand"])
}

func TestNewCatalogTrimsKeyFields(t *testing.T) {
	c := NewCatalog(nil, []Record{
		{"target": " ath79 ", "subtarget": "generic\t", "brand": " TP-Link "},
	})

	records := c.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "ath79", records[0][FieldTarget])
	assert.Equal(t, "generic", records[0][FieldSubtarget])
	assert.Equal(t, " TP-Link ", records[0]["brand"])

	devices := c.Devices("ath79", "generic")
	require.Len(t, devices, 1)
	assert.Equal(t, "ath79", devices[0][FieldTarget])
}
