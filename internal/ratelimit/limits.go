package ratelimit

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Limit is a token bucket refilled at Rate tokens per second up to Burst.
type Limit struct {
	Rate  float64 `mapstructure:"rate"`
	Burst int     `mapstructure:"burst"`
}

func (l Limit) validate() error {
	if l.Rate <= 0 {
		return errors.New("rate limiter rate must be positive")
	}
	if l.Burst <= 0 {
		return errors.New("rate limiter burst must be positive")
	}
	return nil
}

// Limits is the content of ratelimit.yml.
type Limits struct {
	Writes         Limit `mapstructure:"writes"`
	Reads          Limit `mapstructure:"reads"`
	LockTTLSeconds int   `mapstructure:"lockTTLSeconds"`
}

func (l Limits) LockTTL() time.Duration {
	return time.Duration(l.LockTTLSeconds) * time.Second
}

func DefaultLimits() Limits {
	return Limits{
		Writes:         Limit{Rate: 5, Burst: 10},
		Reads:          Limit{Rate: 50, Burst: 100},
		LockTTLSeconds: 5,
	}
}

func validateLimits(l Limits) error {
	if err := l.Writes.validate(); err != nil {
		return fmt.Errorf("ratelimit.writes: %w", err)
	}
	if err := l.Reads.validate(); err != nil {
		return fmt.Errorf("ratelimit.reads: %w", err)
	}
	if l.LockTTLSeconds <= 0 {
		return errors.New("ratelimit.lockTTLSeconds must be positive")
	}
	return nil
}

// LimitsHolder serves the current limits and swaps them when ratelimit.yml
// changes on disk. An invalid edit keeps the previous limits.
type LimitsHolder struct {
	current atomic.Value // holds Limits
}

func NewLimitsHolder(configPath string, log *zap.Logger) (*LimitsHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("ratelimit.config")

	v := viper.New()
	v.SetConfigName("ratelimit")
	v.SetConfigType("yml")
	if path := strings.TrimSpace(configPath); path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath("/etc/hookup")
	v.AddConfigPath(".")

	defaults := DefaultLimits()
	v.SetDefault("ratelimit.writes.rate", defaults.Writes.Rate)
	v.SetDefault("ratelimit.writes.burst", defaults.Writes.Burst)
	v.SetDefault("ratelimit.reads.rate", defaults.Reads.Rate)
	v.SetDefault("ratelimit.reads.burst", defaults.Reads.Burst)
	v.SetDefault("ratelimit.lockTTLSeconds", defaults.LockTTLSeconds)

	watch := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		log.Info("ratelimit.yml not found, using defaults")
		watch = false
	}

	limits, err := decodeLimits(v)
	if err != nil {
		return nil, err
	}
	if err := validateLimits(limits); err != nil {
		return nil, err
	}

	holder := &LimitsHolder{}
	holder.current.Store(limits)

	if watch {
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := decodeLimits(v)
			if err != nil {
				log.Warn("reload failed", zap.Error(err))
				return
			}
			if err := validateLimits(updated); err != nil {
				log.Warn("invalid config ignored", zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("reloaded", zap.String("file", e.Name))
		})
		v.WatchConfig()
	}

	return holder, nil
}

// decodeLimits goes through Unmarshal so defaults fill keys the file omits.
func decodeLimits(v *viper.Viper) (Limits, error) {
	var file struct {
		RateLimit Limits `mapstructure:"ratelimit"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return Limits{}, err
	}
	return file.RateLimit, nil
}

// NewStaticLimits returns a holder that never reloads.
func NewStaticLimits(l Limits) *LimitsHolder {
	holder := &LimitsHolder{}
	holder.current.Store(l)
	return holder
}

func (h *LimitsHolder) Get() Limits {
	return h.current.Load().(Limits)
}
