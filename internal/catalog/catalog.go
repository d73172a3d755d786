// Package catalog holds the static sales data the wizard offers: stations,
// auditions, schedule plans and the generated draft script.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"
)

//go:embed default.yml
var defaultYAML []byte

// Event is the promoted event the ad is written for.
type Event struct {
	Name string `yaml:"name"`
	When string `yaml:"when"`
}

// Station is a distribution channel the ad can run on.
type Station struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Audition is a voiced rendition of the script that can be previewed.
type Audition struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name"`
	Voice    string        `yaml:"voice"`
	Music    string        `yaml:"music"`
	Source   string        `yaml:"source"`
	Duration time.Duration `yaml:"duration"`
}

// Plan is a purchasable scheduling package.
type Plan struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	PriceCents      int64    `yaml:"price_cents"`
	Days            int      `yaml:"days"`
	DateRange       string   `yaml:"date_range"`
	Impressions     int      `yaml:"impressions"`
	Rotation        string   `yaml:"rotation"`
	RotationDetails string   `yaml:"rotation_details"`
	Addons          []string `yaml:"addons"`
}

// Catalog is the full set of static data.
type Catalog struct {
	Event     Event      `yaml:"event"`
	Script    string     `yaml:"script"`
	Stations  []Station  `yaml:"stations"`
	Auditions []Audition `yaml:"auditions"`
	Plans     []Plan     `yaml:"plans"`
}

// Default returns the catalog shipped with the binary.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// Load reads a catalog from path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes YAML catalog data and fills in derived plan ids.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	for i := range c.Plans {
		if c.Plans[i].ID == "" {
			c.Plans[i].ID = PlanID(c.Plans[i].Name)
		}
	}
	return &c, nil
}

// PlanID derives the stable plan identifier from its display name,
// e.g. "Market Impact" becomes "market-impact".
func PlanID(name string) string {
	return slug.Make(name)
}

// Validate checks catalog consistency against the script budget.
func (c *Catalog) Validate(scriptBudget int) error {
	if len(c.Plans) == 0 {
		return fmt.Errorf("catalog has no plans")
	}
	if len(c.Auditions) == 0 {
		return fmt.Errorf("catalog has no auditions")
	}
	if err := uniqueIDs("station", len(c.Stations), func(i int) string { return c.Stations[i].ID }); err != nil {
		return err
	}
	if err := uniqueIDs("audition", len(c.Auditions), func(i int) string { return c.Auditions[i].ID }); err != nil {
		return err
	}
	if err := uniqueIDs("plan", len(c.Plans), func(i int) string { return c.Plans[i].ID }); err != nil {
		return err
	}
	for _, p := range c.Plans {
		if p.PriceCents <= 0 {
			return fmt.Errorf("plan %s: price must be positive", p.ID)
		}
	}
	for _, a := range c.Auditions {
		if a.Duration <= 0 {
			return fmt.Errorf("audition %s: duration must be positive", a.ID)
		}
	}
	if n := utf8.RuneCountInString(c.Script); n > scriptBudget {
		return fmt.Errorf("draft script is %d characters, budget is %d", n, scriptBudget)
	}
	return nil
}

func uniqueIDs(kind string, n int, id func(int) string) error {
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		v := strings.TrimSpace(id(i))
		if v == "" {
			return fmt.Errorf("%s %d has an empty id", kind, i)
		}
		if _, dup := seen[v]; dup {
			return fmt.Errorf("duplicate %s id %q", kind, v)
		}
		seen[v] = struct{}{}
	}
	return nil
}

// Plan returns the plan with the given id.
func (c *Catalog) Plan(id string) (Plan, bool) {
	for _, p := range c.Plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// Station returns the station with the given id.
func (c *Catalog) Station(id string) (Station, bool) {
	for _, s := range c.Stations {
		if s.ID == id {
			return s, true
		}
	}
	return Station{}, false
}

// PlanIDs lists plan ids in catalog order.
func (c *Catalog) PlanIDs() []string {
	ids := make([]string, len(c.Plans))
	for i, p := range c.Plans {
		ids[i] = p.ID
	}
	return ids
}

// FormatCents renders an amount of cents as dollars, e.g. 53143 -> "$531.43".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
