package phoneagent

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/spance/iphone-use-mcp/phoneagent/definitions"
	"github.com/spance/iphone-use-mcp/phoneagent/monitoring"
)

// SessionManager owns the single device session of the process. The session
// is created on first use, cached, and never replaced or closed.
type SessionManager struct {
	config    *definitions.Config
	connector Connector
	metrics   *monitoring.Metrics

	mu      sync.RWMutex
	session DeviceSession
	group   singleflight.Group
}

func NewSessionManager(cfg *definitions.Config, connector Connector, metrics *monitoring.Metrics) *SessionManager {
	return &SessionManager{
		config:    cfg,
		connector: connector,
		metrics:   metrics,
	}
}

// GetSession returns the cached session or establishes it. Concurrent callers
// share one establishment attempt; a failed attempt is not cached.
func (m *SessionManager) GetSession(ctx context.Context) (DeviceSession, error) {
	if session := m.cached(); session != nil {
		return session, nil
	}

	ch := m.group.DoChan("session", func() (any, error) {
		if session := m.cached(); session != nil {
			return session, nil
		}
		session, err := m.establish(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.session = session
		m.mu.Unlock()
		return session, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(DeviceSession), nil
	}
}

func (m *SessionManager) cached() DeviceSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

func (m *SessionManager) establish(ctx context.Context) (DeviceSession, error) {
	caps, err := m.config.Capabilities()
	if err != nil {
		log.Error().Err(err).Msg("device is not configured")
		return nil, err
	}

	if timeout := m.config.SessionTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	session, err := m.connector.Connect(ctx, caps)
	if err != nil {
		m.metrics.RecordSessionEstablishment(true)
		log.Error().Err(err).Str("udid", caps.UDID).Msg("failed to establish device session")
		return nil, &definitions.SessionEstablishmentError{Err: err}
	}

	m.metrics.RecordSessionEstablishment(false)
	log.Info().Str("udid", caps.UDID).Dur("elapsed", time.Since(start)).Msg("device session established")
	return session, nil
}
