package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	require.NoError(t, c.Validate(450))

	assert.Len(t, c.Stations, 5)
	assert.Len(t, c.Auditions, 3)
	assert.Equal(t, []string{"essential-reach", "market-impact", "maximum-exposure"}, c.PlanIDs())

	p, ok := c.Plan("market-impact")
	require.True(t, ok)
	assert.Equal(t, int64(49900), p.PriceCents)
	assert.Equal(t, []string{"Streaming Audio Ads", "Social Media Boost"}, p.Addons)

	a := c.Auditions[0]
	assert.Equal(t, "1", a.ID)
	assert.Equal(t, 3*time.Second, a.Duration)

	_, ok = c.Station("shark")
	assert.True(t, ok)
	_, ok = c.Station("nope")
	assert.False(t, ok)
}

func TestPlanID(t *testing.T) {
	assert.Equal(t, "essential-reach", PlanID("Essential Reach"))
	assert.Equal(t, "maximum-exposure", PlanID("Maximum Exposure"))
	assert.Equal(t, "traffic-and-weather", PlanID("Traffic & Weather"))
}

func TestValidate(t *testing.T) {
	base := func() *Catalog {
		c, err := Default()
		require.NoError(t, err)
		return c
	}

	tests := []struct {
		name   string
		mutate func(*Catalog)
		budget int
		errMsg string
	}{
		{"default fits", func(*Catalog) {}, 450, ""},
		{"script over budget", func(*Catalog) {}, 100, "budget is 100"},
		{"duplicate station", func(c *Catalog) { c.Stations[1].ID = c.Stations[0].ID }, 450, "duplicate station"},
		{"empty audition id", func(c *Catalog) { c.Auditions[0].ID = " " }, 450, "empty id"},
		{"zero price", func(c *Catalog) { c.Plans[0].PriceCents = 0 }, 450, "price must be positive"},
		{"zero duration", func(c *Catalog) { c.Auditions[2].Duration = 0 }, 450, "duration must be positive"},
		{"no plans", func(c *Catalog) { c.Plans = nil }, 450, "no plans"},
		{"no auditions", func(c *Catalog) { c.Auditions = nil }, 450, "no auditions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate(tt.budget)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_OverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yml")
	data := []byte(`
script: Short and sweet.
stations:
  - id: kxyz
    name: KXYZ 88.1
auditions:
  - id: a
    name: Test
    source: file://a.wav
    duration: 2s
plans:
  - name: Weekend Only
    price_cents: 9900
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate(450))
	assert.Equal(t, []string{"weekend-only"}, c.PlanIDs())
	assert.Equal(t, 2*time.Second, c.Auditions[0].Duration)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	_, err = Parse([]byte("plans: [unterminated"))
	assert.Error(t, err)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "$531.43", FormatCents(53143))
	assert.Equal(t, "$0.05", FormatCents(5))
	assert.Equal(t, "-$1.00", FormatCents(-100))
}
