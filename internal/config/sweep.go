package config

import (
	"os"
	"strconv"
	"time"
)

const (
	cadenceMinutesEnv       = "NOTIFY_CADENCE_MINUTES"
	timezoneEnv             = "SCHEDULE_TIMEZONE"
	horizonMonthsEnv        = "SWEEP_HORIZON_MONTHS"
	regulationHorizonEnv    = "REGULATION_HORIZON_DAYS"
	runLockTTLMinutesEnv    = "RUN_LOCK_TTL_MINUTES"
	defaultCadenceMinutes   = 60
	defaultTimezone         = "America/Los_Angeles"
	defaultRunLockTTLMinute = 10
)

type SweepConfig struct {
	// Cadence is the interval the worker is expected to run at; it also
	// sets the polling window length.
	Cadence time.Duration

	Timezone              string
	HorizonMonths         int
	RegulationHorizonDays int

	RunLockTTL time.Duration
}

func LoadSweepConfig() (*SweepConfig, error) {
	cadenceMinutes := defaultCadenceMinutes
	if raw := os.Getenv(cadenceMinutesEnv); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return nil, ErrInvalidCadence
		}
		cadenceMinutes = parsed
	}

	horizonMonths := 0
	if raw := os.Getenv(horizonMonthsEnv); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return nil, ErrInvalidHorizon
		}
		horizonMonths = parsed
	}

	regulationHorizonDays := 0
	if raw := os.Getenv(regulationHorizonEnv); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return nil, ErrInvalidHorizon
		}
		regulationHorizonDays = parsed
	}

	lockTTLMinutes := defaultRunLockTTLMinute
	if raw := os.Getenv(runLockTTLMinutesEnv); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed > 0 {
			lockTTLMinutes = parsed
		}
	}

	return &SweepConfig{
		Cadence:               time.Duration(cadenceMinutes) * time.Minute,
		Timezone:              getEnvOrDefault(timezoneEnv, defaultTimezone),
		HorizonMonths:         horizonMonths,
		RegulationHorizonDays: regulationHorizonDays,
		RunLockTTL:            time.Duration(lockTTLMinutes) * time.Minute,
	}, nil
}
