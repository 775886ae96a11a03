package telemetry

import (
	"fmt"
	"runtime"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// ProfilerConfig holds continuous profiling settings. Receipt allocation and
// period P&L roll-ups are the CPU-heavy paths profiling exists for.
type ProfilerConfig struct {
	Enabled         bool
	ServerAddress   string // Pyroscope server URL
	ApplicationName string
	AuthUser        string
	AuthPassword    string

	// ProfileTypes selects which profiles to collect. Empty means
	// DefaultProfileTypes.
	ProfileTypes []pyroscope.ProfileType

	// MutexProfileFraction and BlockProfileRate feed the runtime's
	// contention profiles. Zero falls back to 5 when the matching profile
	// type is requested.
	MutexProfileFraction int
	BlockProfileRate     int
}

// DefaultProfileTypes covers CPU, heap and goroutine profiles. Contention
// profiles add runtime overhead and are opt-in.
func DefaultProfileTypes() []pyroscope.ProfileType {
	return []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileAllocObjects,
		pyroscope.ProfileAllocSpace,
		pyroscope.ProfileInuseObjects,
		pyroscope.ProfileInuseSpace,
		pyroscope.ProfileGoroutines,
	}
}

// Profiler wraps the pyroscope session. A disabled profiler is valid and
// every method on it is a no-op.
type Profiler struct {
	session *pyroscope.Profiler
	config  ProfilerConfig
	logger  *zap.Logger
}

// NewProfiler starts continuous profiling against the configured server.
func NewProfiler(cfg ProfilerConfig, logger *zap.Logger) (*Profiler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Profiler{config: cfg, logger: logger}
	if !cfg.Enabled {
		return p, nil
	}
	if cfg.ServerAddress == "" {
		return nil, fmt.Errorf("profiling enabled but server address is empty")
	}
	if cfg.ApplicationName == "" {
		return nil, fmt.Errorf("profiling enabled but application name is empty")
	}

	types := cfg.ProfileTypes
	if len(types) == 0 {
		types = DefaultProfileTypes()
	}
	for _, t := range types {
		switch t {
		case pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration:
			runtime.SetMutexProfileFraction(orDefault(cfg.MutexProfileFraction, 5))
		case pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration:
			runtime.SetBlockProfileRate(orDefault(cfg.BlockProfileRate, 5))
		}
	}

	session, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.ApplicationName,
		ServerAddress:     cfg.ServerAddress,
		BasicAuthUser:     cfg.AuthUser,
		BasicAuthPassword: cfg.AuthPassword,
		ProfileTypes:      types,
		Logger:            &pyroscopeZapLogger{logger: logger},
	})
	if err != nil {
		return nil, fmt.Errorf("starting profiler: %w", err)
	}
	p.session = session

	logger.Info("Continuous profiling started",
		zap.String("server_address", cfg.ServerAddress),
		zap.String("application_name", cfg.ApplicationName),
		zap.Int("profile_types", len(types)),
	)
	return p, nil
}

// IsEnabled reports whether a profiling session is running.
func (p *Profiler) IsEnabled() bool {
	return p.session != nil
}

// Stop flushes pending profiles and ends the session. Safe on a disabled
// or already stopped profiler.
func (p *Profiler) Stop() error {
	if p.session == nil {
		return nil
	}
	if err := p.session.Stop(); err != nil {
		return fmt.Errorf("stopping profiler: %w", err)
	}
	p.session = nil
	return nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// pyroscopeZapLogger routes the pyroscope client's own output through zap.
type pyroscopeZapLogger struct {
	logger *zap.Logger
}

func (l *pyroscopeZapLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *pyroscopeZapLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *pyroscopeZapLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}
