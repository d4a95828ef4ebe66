package finetract

import (
	"os"
	"time"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

const (
	defaultDailyLimit      = 5000 // currency units per day
	defaultDebounceSeconds = 10
)

// Config carries the tunables of the pipeline. The zero value of any field
// falls back to a documented default; a large-payment threshold of 0 means
// the exclusion rule is disabled.
type Config struct {
	DailyLimit            float64 `yaml:"daily_limit"`
	LargePaymentThreshold float64 `yaml:"large_payment_threshold"`
	DebounceSeconds       int     `yaml:"debounce_seconds"`

	// WeekendDays are weekday names counted as "weekend" by the behavioral
	// engine. The business default includes Friday.
	WeekendDays []string `yaml:"weekend_days"`

	// Channels are payment-app identifiers accepted verbatim; SMSSenders
	// are glob patterns for bank SMS sender ids (e.g. "*-HDFCBK").
	Channels   []string `yaml:"channels"`
	SMSSenders []string `yaml:"sms_senders"`

	// Rules maps a category name to regular expressions; a transaction
	// whose text matches is categorized before the keyword table runs.
	Rules map[string][]string `yaml:"rules"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		DailyLimit:      defaultDailyLimit,
		DebounceSeconds: defaultDebounceSeconds,
		WeekendDays:     []string{"Friday", "Saturday", "Sunday"},
		Channels: []string{
			"com.google.android.apps.nbu.paisa.user", // GPay
			"com.phonepe.app",                        // PhonePe
			"net.one97.paytm",                        // Paytm
			"in.org.npci.upiapp",                     // BHIM
		},
		SMSSenders: []string{
			"*-SBIINB", "*-HDFCBK", "*-ICICIB", "*-AXISBK", "*-KOTAKB",
		},
	}
}

// LoadConfig reads a yaml config file. A missing file is not an error: the
// defaults apply. Fields left unset in the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "unable to read config at %v", path)
	}
	var in Config
	if err := yaml.Unmarshal(data, &in); err != nil {
		return cfg, errors.Wrapf(err, "unable to parse yaml config at %v", path)
	}
	if in.DailyLimit > 0 {
		cfg.DailyLimit = in.DailyLimit
	}
	if in.LargePaymentThreshold > 0 {
		cfg.LargePaymentThreshold = in.LargePaymentThreshold
	}
	if in.DebounceSeconds > 0 {
		cfg.DebounceSeconds = in.DebounceSeconds
	}
	if len(in.WeekendDays) > 0 {
		cfg.WeekendDays = in.WeekendDays
	}
	if len(in.Channels) > 0 {
		cfg.Channels = in.Channels
	}
	if len(in.SMSSenders) > 0 {
		cfg.SMSSenders = in.SMSSenders
	}
	if len(in.Rules) > 0 {
		cfg.Rules = in.Rules
	}
	if _, err := cfg.weekendSet(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var weekdayNames = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

func (c Config) weekendSet() (map[time.Weekday]bool, error) {
	set := make(map[time.Weekday]bool, len(c.WeekendDays))
	for _, name := range c.WeekendDays {
		d, ok := weekdayNames[name]
		if !ok {
			return nil, errors.Errorf("unknown weekday name in weekend_days: %q", name)
		}
		set[d] = true
	}
	return set, nil
}

func (c Config) debounceWindow() time.Duration {
	secs := c.DebounceSeconds
	if secs <= 0 {
		secs = defaultDebounceSeconds
	}
	return time.Duration(secs) * time.Second
}
