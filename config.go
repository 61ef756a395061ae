package schedule

import (
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownUnit is returned for a time unit that cannot be parsed.
	ErrUnknownUnit = errors.New("unknown time unit")

	// ErrUnknownWeekday is returned for a weekday that cannot be parsed.
	ErrUnknownWeekday = errors.New("unknown weekday")

	// ErrDurationRange is returned for an amount that does not fit a
	// time.Duration in its unit.
	ErrDurationRange = errors.New("duration out of range")
)

// Config is the file representation of a set of schedules.
type Config struct {
	// IANA time zone used for calendar anchors, empty means local time.
	Location      string       `yaml:"location"`
	FailurePolicy string       `yaml:"failure_policy"`
	Schedules     []SpecConfig `yaml:"schedules"`
}

// SpecConfig is the file representation of a Spec. Durations are integer
// amounts of Unit, which defaults to milliseconds.
type SpecConfig struct {
	Name         string `yaml:"name"`
	Count        int    `yaml:"count"`
	InitialDelay int64  `yaml:"initial_delay"`
	Delay        int64  `yaml:"delay"`
	Rate         int64  `yaml:"rate"`
	Unit         string `yaml:"unit"`
	DayOfWeek    string `yaml:"day_of_week"` // "none" or empty means unset
	HourOfDay    *int   `yaml:"hour_of_day"`
	MinuteOfHour *int   `yaml:"minute_of_hour"`

	// Message is logged by the schedrun runner on every firing.
	Message string `yaml:"message"`
}

// LoadConfigFile reads a Config from a YAML file.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()

	return LoadConfig(f)
}

// LoadConfig decodes and validates a YAML Config.
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode config")
	}

	if _, err := cfg.Policy(); err != nil {
		return nil, err
	}
	if _, err := cfg.TimeLocation(); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(cfg.Schedules))
	for i, sc := range cfg.Schedules {
		if sc.Name == "" {
			return nil, errors.Errorf("schedule %d: name is required", i)
		}
		if _, dup := seen[sc.Name]; dup {
			return nil, errors.Errorf("schedule %q: duplicate name", sc.Name)
		}
		seen[sc.Name] = struct{}{}
		if _, err := sc.Spec(); err != nil {
			return nil, errors.Wrapf(err, "schedule %q", sc.Name)
		}
	}
	return &cfg, nil
}

// Policy returns the configured failure policy.
func (c *Config) Policy() (FailurePolicy, error) {
	return ParseFailurePolicy(c.FailurePolicy)
}

// TimeLocation returns the configured location, time.Local when unset.
func (c *Config) TimeLocation() (*time.Location, error) {
	if strings.TrimSpace(c.Location) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(strings.TrimSpace(c.Location))
	if err != nil {
		return nil, errors.Wrapf(err, "location %q", c.Location)
	}
	return loc, nil
}

// Overrides returns the configured specs keyed by name, for WithOverrides.
func (c *Config) Overrides() (map[string]Spec, error) {
	res := make(map[string]Spec, len(c.Schedules))
	for _, sc := range c.Schedules {
		s, err := sc.Spec()
		if err != nil {
			return nil, errors.Wrapf(err, "schedule %q", sc.Name)
		}
		res[sc.Name] = s
	}
	return res, nil
}

// Options returns the controller options described by the config.
func (c *Config) Options() ([]Option, error) {
	policy, err := c.Policy()
	if err != nil {
		return nil, err
	}
	loc, err := c.TimeLocation()
	if err != nil {
		return nil, err
	}
	overrides, err := c.Overrides()
	if err != nil {
		return nil, err
	}
	return []Option{
		WithFailurePolicy(policy),
		WithLocation(loc),
		WithOverrides(overrides),
	}, nil
}

// Spec converts the file representation to a Spec.
func (sc SpecConfig) Spec() (Spec, error) {
	unit, err := ParseUnit(sc.Unit)
	if err != nil {
		return Spec{}, err
	}

	s := Spec{Name: sc.Name, Count: sc.Count}
	for _, f := range []struct {
		name   string
		amount int64
		dst    *time.Duration
	}{
		{"initial_delay", sc.InitialDelay, &s.InitialDelay},
		{"delay", sc.Delay, &s.Delay},
		{"rate", sc.Rate, &s.Rate},
	} {
		d, err := scale(f.amount, unit)
		if err != nil {
			return Spec{}, errors.Wrap(err, f.name)
		}
		*f.dst = d
	}

	if !isNone(sc.DayOfWeek) {
		d, err := ParseWeekday(sc.DayOfWeek)
		if err != nil {
			return Spec{}, err
		}
		s.DayOfWeek = Some(d)
	}
	// out of range values are kept, they read as unset
	if sc.HourOfDay != nil {
		s.HourOfDay = Some(*sc.HourOfDay)
	}
	if sc.MinuteOfHour != nil {
		s.MinuteOfHour = Some(*sc.MinuteOfHour)
	}
	return s, nil
}

var units = map[string]time.Duration{
	"":             time.Millisecond,
	"ns":           time.Nanosecond,
	"nanoseconds":  time.Nanosecond,
	"us":           time.Microsecond,
	"microseconds": time.Microsecond,
	"ms":           time.Millisecond,
	"milliseconds": time.Millisecond,
	"s":            time.Second,
	"seconds":      time.Second,
	"m":            time.Minute,
	"minutes":      time.Minute,
	"h":            time.Hour,
	"hours":        time.Hour,
	"d":            oneDay,
	"days":         oneDay,
}

// ParseUnit parses a time unit name such as "ms", "seconds" or "days". An
// empty name is milliseconds.
func ParseUnit(s string) (time.Duration, error) {
	u, ok := units[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownUnit, "%q", s)
	}
	return u, nil
}

// scale returns amount units, rejecting amounts that overflow a Duration.
func scale(amount int64, unit time.Duration) (time.Duration, error) {
	if amount > math.MaxInt64/int64(unit) || amount < math.MinInt64/int64(unit) {
		return 0, errors.Wrapf(ErrDurationRange, "%d x %s", amount, unit)
	}
	return time.Duration(amount) * unit, nil
}

// isNone reports whether a weekday field means unset: empty or "none".
func isNone(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "" || s == "none"
}

// ParseWeekday parses an English weekday name or its three letter abbreviation.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, errors.Wrapf(ErrUnknownWeekday, "%q", s)
}
