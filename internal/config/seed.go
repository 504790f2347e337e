package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/PabloGalante/brainbuddy/internal/domain"
)

// SeedFile is the YAML document listing tasks to load at startup.
//
//	tasks:
//	  - name: Finalize Q4 report
//	    in_days: 10
//	    at: "23:59"
//	    date_type: deadline
//	    priority: 1
//	    required_stamina: 3
//	    estimated_time: 180
type SeedFile struct {
	Tasks []SeedTask `yaml:"tasks"`
}

// SeedTask dates are relative to the load time so seeds never go stale.
type SeedTask struct {
	Name            string `yaml:"name"`
	InDays          *int   `yaml:"in_days"`
	At              string `yaml:"at"` // "HH:MM", local time
	DateType        string `yaml:"date_type"`
	Priority        int    `yaml:"priority"`
	RequiredStamina int    `yaml:"required_stamina"`
	EstimatedTime   int    `yaml:"estimated_time"`
	Status          string `yaml:"status"`
}

// LoadSeedTasks reads a seed file. An empty path yields no tasks.
func LoadSeedTasks(path string, now time.Time) ([]domain.TaskFields, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return ParseSeedTasks(data, now)
}

func ParseSeedTasks(data []byte, now time.Time) ([]domain.TaskFields, error) {
	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding seed file: %w", err)
	}

	out := make([]domain.TaskFields, 0, len(file.Tasks))
	for i, st := range file.Tasks {
		fields, err := st.toFields(now)
		if err != nil {
			return nil, fmt.Errorf("seed task %d: %w", i, err)
		}
		out = append(out, fields)
	}
	return out, nil
}

func (st SeedTask) toFields(now time.Time) (domain.TaskFields, error) {
	if strings.TrimSpace(st.Name) == "" {
		return domain.TaskFields{}, fmt.Errorf("name is required")
	}

	fields := domain.TaskFields{
		Name:            st.Name,
		DateType:        domain.DateType(st.DateType),
		Priority:        st.Priority,
		RequiredStamina: st.RequiredStamina,
		EstimatedTime:   st.EstimatedTime,
		Status:          domain.TaskStatus(st.Status),
	}
	if st.DateType != "" {
		dt, ok := domain.ParseDateType(st.DateType)
		if !ok {
			return domain.TaskFields{}, fmt.Errorf("invalid date_type %q", st.DateType)
		}
		fields.DateType = dt
	}

	if st.InDays != nil {
		day := now.AddDate(0, 0, *st.InDays)
		hour, minute := 0, 0
		if st.At != "" {
			at, err := time.Parse("15:04", st.At)
			if err != nil {
				return domain.TaskFields{}, fmt.Errorf("invalid at %q", st.At)
			}
			hour, minute = at.Hour(), at.Minute()
		}
		date := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())
		fields.Date = &date
	}

	return fields.WithDefaults(), nil
}
