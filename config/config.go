package config

import (
	"bytes"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"daytally/balance"
	"daytally/internal/timeutil"
)

const (
	KeyScheduleWorkStart         = "schedule.work_start"
	KeyScheduleWorkEnd           = "schedule.work_end"
	KeyScheduleLunchBreakMinutes = "schedule.lunch_break_minutes"
	KeyScheduleOtherBreakMinutes = "schedule.other_break_minutes"
)

type Config struct {
	Schedule ScheduleConfig `mapstructure:"schedule" validate:"required"`
}

type ScheduleConfig struct {
	WorkStart         string `mapstructure:"work_start" validate:"required,datetime=15:04"`
	WorkEnd           string `mapstructure:"work_end" validate:"required,datetime=15:04"`
	LunchBreakMinutes int    `mapstructure:"lunch_break_minutes" validate:"gte=0"`
	OtherBreakMinutes int    `mapstructure:"other_break_minutes" validate:"gte=0"`
}

// Balance returns the schedule as the balancing input type.
func (s ScheduleConfig) Balance() balance.Schedule {
	return balance.Schedule{
		WorkStart:         s.WorkStart,
		WorkEnd:           s.WorkEnd,
		LunchBreakMinutes: s.LunchBreakMinutes,
		OtherBreakMinutes: s.OtherBreakMinutes,
	}
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# daytally configuration
schedule:
  work_start: "08:00"
  work_end: "17:00"
  lunch_break_minutes: 60
  other_break_minutes: 0
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateSchedule(cfg.Schedule); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyScheduleWorkStart, "08:00")
	v.SetDefault(KeyScheduleWorkEnd, "17:00")
	v.SetDefault(KeyScheduleLunchBreakMinutes, 60)
	v.SetDefault(KeyScheduleOtherBreakMinutes, 0)
}

func validateSchedule(schedule ScheduleConfig) error {
	start, err := timeutil.ParseClock(schedule.WorkStart)
	if err != nil {
		return fmt.Errorf("validation failed: schedule.work_start: %w", err)
	}
	end, err := timeutil.ParseClock(schedule.WorkEnd)
	if err != nil {
		return fmt.Errorf("validation failed: schedule.work_end: %w", err)
	}
	if end <= start {
		return fmt.Errorf("validation failed: schedule.work_end %q must be after work_start %q", schedule.WorkEnd, schedule.WorkStart)
	}
	if schedule.LunchBreakMinutes+schedule.OtherBreakMinutes >= end-start {
		return fmt.Errorf(
			"validation failed: breaks (%d min) swallow the whole work window (%d min)",
			schedule.LunchBreakMinutes+schedule.OtherBreakMinutes,
			end-start,
		)
	}
	return nil
}
