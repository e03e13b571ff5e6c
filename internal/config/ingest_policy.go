package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// IngestPolicy holds the receipt limits operators can change without a restart.
type IngestPolicy struct {
	MaxImageBytes int64 `mapstructure:"maxImageBytes"`
	StrictBase64  bool  `mapstructure:"strictBase64"`
}

func DefaultIngestPolicy() IngestPolicy {
	return IngestPolicy{
		MaxImageBytes: 10 << 20,
		StrictBase64:  false,
	}
}

type IngestPolicyHolder struct {
	current atomic.Value // holds IngestPolicy
}

// NewStaticIngestPolicyHolder wraps a fixed policy, mainly for tests and CLI use.
func NewStaticIngestPolicyHolder(policy IngestPolicy) *IngestPolicyHolder {
	holder := &IngestPolicyHolder{}
	holder.current.Store(policy)
	return holder
}

// NewIngestPolicyHolder reads ingest.yml and keeps it current while the file changes.
func NewIngestPolicyHolder(log *zap.Logger) (*IngestPolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("ingest")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/receipts")
	v.AddConfigPath(".")

	v.SetEnvPrefix("RECEIPTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultIngestPolicy()
	v.SetDefault("ingest.maxImageBytes", defaults.MaxImageBytes)
	v.SetDefault("ingest.strictBase64", defaults.StrictBase64)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	var policy IngestPolicy
	if err := v.UnmarshalKey("ingest", &policy); err != nil {
		return nil, err
	}
	if err := validateIngestPolicy(policy); err != nil {
		return nil, err
	}

	holder := NewStaticIngestPolicyHolder(policy)
	if !fileFound {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated IngestPolicy
		if err := v.UnmarshalKey("ingest", &updated); err != nil {
			log.Warn("ingest policy reload failed", zap.Error(err))
			return
		}
		if err := validateIngestPolicy(updated); err != nil {
			log.Warn("invalid ingest policy ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("ingest policy reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *IngestPolicyHolder) Get() IngestPolicy {
	if h == nil {
		return DefaultIngestPolicy()
	}
	policy, ok := h.current.Load().(IngestPolicy)
	if !ok {
		return DefaultIngestPolicy()
	}
	return policy
}

func validateIngestPolicy(policy IngestPolicy) error {
	if policy.MaxImageBytes <= 0 {
		return errors.New("ingest.maxImageBytes must be positive")
	}
	return nil
}
