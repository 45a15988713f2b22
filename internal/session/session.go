package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/neacloud/internal/auth"
	"github.com/nerrad567/neacloud/internal/infrastructure/config"
	"github.com/nerrad567/neacloud/internal/infrastructure/mqtt"
	"github.com/nerrad567/neacloud/internal/referential"
	"github.com/nerrad567/neacloud/internal/state"
)

// Logger defines the logging interface used by the Session.
// This allows dependency injection without coupling to a specific logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// The broker authenticates through an AWS-style custom authorizer: the
// authorizer name rides in the username, the access token is the
// password.
const (
	transportUsername       = "app?x-amz-customauthorizer-name=app-front"
	transportClientIDPrefix = "app-"
)

// Status is the session lifecycle state.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusSubscribed
	StatusReceiving
	StatusReconnecting
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusSubscribed:
		return "subscribed"
	case StatusReceiving:
		return "receiving"
	case StatusReconnecting:
		return "reconnecting"
	}
	return "unknown"
}

// Transport is the narrow pub/sub surface the session drives.
// *mqtt.Client satisfies it.
type Transport interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	SetOnConnect(callback func())
	SetOnDisconnect(callback func(err error))
	IsConnected() bool
	Close() error
}

// AuthClient is the slice of the auth client the session needs.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (auth.Token, auth.UserProfile, error)
	Refresh(ctx context.Context, refreshToken string) (auth.Token, error)
	ReadUserState(ctx context.Context, req auth.ReadUserRequest) (auth.UserProfile, error)
}

// transportFactory opens a transport connection; swapped in tests.
type transportFactory func(cfg config.MQTTConfig, creds mqtt.Credentials) (Transport, error)

func dialTransport(cfg config.MQTTConfig, creds mqtt.Credentials) (Transport, error) {
	return mqtt.Connect(cfg, creds)
}

// Session owns one authenticated connection to the cloud broker: the
// token, the transport, the inbound dispatch path, the state store and
// the referential translator, plus the scheduled maintenance jobs.
type Session struct {
	cfg      *config.Config
	email    string
	password string

	auth       AuthClient
	store      *state.Store
	translator *referential.Translator
	dial       transportFactory
	logger     Logger

	mu            sync.Mutex
	status        Status
	transport     Transport
	token         auth.Token
	profile       auth.UserProfile
	installID     string
	installUnique string
	installHash   string
	disconnects   int
	terminal      error

	jobs *jobGroup

	readyOnce sync.Once
	ready     chan struct{}
}

// New creates a session for the given account. Nothing connects until
// Connect is called.
func New(cfg *config.Config, email, password string) *Session {
	return &Session{
		cfg:        cfg,
		email:      email,
		password:   password,
		auth:       auth.NewClient(cfg.Cloud),
		store:      state.NewStore(),
		translator: referential.NewTranslator(),
		dial:       dialTransport,
		logger:     noopLogger{},
		ready:      make(chan struct{}),
	}
}

// SetLogger sets the logger for the session.
func (s *Session) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Store returns the session's state store.
func (s *Session) Store() *state.Store { return s.store }

// Translator returns the session's referential translator.
func (s *Session) Translator() *referential.Translator { return s.translator }

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the terminal error after the session stopped on its own,
// such as reconnect-retry exhaustion. Nil while the session is healthy
// or after a caller-requested disconnect.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminal
}

// Ready is closed once authentication completed and the first topic
// subscription round succeeded.
func (s *Session) Ready() <-chan struct{} { return s.ready }

// IsAuthenticated reports whether the session holds a token that still
// has its refresh margin left.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token.Valid(time.Now())
}

// IsConnected reports whether the transport is currently up.
func (s *Session) IsConnected() bool {
	s.mu.Lock()
	t := s.transport
	s.mu.Unlock()
	return t != nil && t.IsConnected()
}

// Email returns the account email the session was created for.
func (s *Session) Email() string { return s.email }

// =============================================================================
// Lifecycle
// =============================================================================

// Connect authenticates, seeds the state model from the login profile,
// opens the transport and subscribes. It returns once the session is
// ready for commands.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.status != StatusDisconnected {
		s.mu.Unlock()
		return ErrAlreadyConnected
	}
	s.status = StatusConnecting
	s.terminal = nil
	s.disconnects = 0
	s.mu.Unlock()

	token, profile, err := s.auth.Login(ctx, s.email, s.password)
	if err != nil {
		s.setStatus(StatusDisconnected)
		return fmt.Errorf("session: login: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.profile = profile
	s.resolveDefaultInstallLocked()
	s.mu.Unlock()

	s.store.ApplyFullSnapshot(profile.Installs)

	creds := mqtt.Credentials{
		ClientID: transportClientIDPrefix + uuid.NewString(),
		Username: transportUsername,
		Password: token.AccessToken,
	}
	transport, err := s.dial(s.cfg.MQTT, creds)
	if err != nil {
		s.setStatus(StatusDisconnected)
		return fmt.Errorf("session: transport: %w", err)
	}
	transport.SetOnConnect(s.onTransportConnect)
	transport.SetOnDisconnect(s.onTransportDisconnect)

	s.mu.Lock()
	s.transport = transport
	s.mu.Unlock()

	// The transport is already up at this point, so the connect
	// callback for this first connection has come and gone; run the
	// subscription round directly.
	s.onTransportConnect()

	s.mu.Lock()
	s.jobs = startJobs(
		func(ctx context.Context) { every(ctx, resyncInterval, s.resync) },
		func(ctx context.Context) { every(ctx, referentialInterval, s.refreshReferential) },
		s.tokenRefreshLoop,
	)
	s.mu.Unlock()

	s.logger.Info("session connected", "email", s.email, "install", s.installUnique)
	return nil
}

// Disconnect unsubscribes, closes the transport and stops all scheduled
// jobs. Idempotent.
func (s *Session) Disconnect() {
	s.shutdown(nil)
}

func (s *Session) shutdown(terminal error) {
	s.mu.Lock()
	if s.status == StatusDisconnected {
		s.mu.Unlock()
		return
	}
	s.status = StatusDisconnected
	s.terminal = terminal
	transport := s.transport
	s.transport = nil
	jobs := s.jobs
	s.jobs = nil
	unique := s.installUnique
	s.mu.Unlock()

	jobs.stop()

	if transport != nil {
		for _, tpl := range []string{topicListen, topicRealtime} {
			if err := transport.Unsubscribe(resolveTopic(tpl, unique, s.email)); err != nil {
				s.logger.Debug("unsubscribe on shutdown failed", "error", err)
			}
		}
		if err := transport.Close(); err != nil {
			s.logger.Warn("transport close failed", "error", err)
		}
	}

	if terminal != nil {
		s.logger.Error("session stopped", "error", terminal)
	} else {
		s.logger.Info("session disconnected")
	}
}

// resolveDefaultInstallLocked picks the current installation from the
// profile's default. Callers hold s.mu.
func (s *Session) resolveDefaultInstallLocked() {
	install, ok := s.profile.Install(s.profile.DefaultInstall)
	if !ok && len(s.profile.Installs) > 0 {
		install = s.profile.Installs[0]
	}
	if install == nil {
		return
	}
	if id, ok := install["_id"].(string); ok {
		s.installID = id
	}
	if unique, ok := install["unique"].(string); ok {
		s.installUnique = unique
	}
	s.installHash = ""
	if hash, ok := install["hash"].(string); ok {
		s.installHash = hash
	}
}

func (s *Session) setStatus(status Status) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// =============================================================================
// Transport callbacks
// =============================================================================

// onTransportConnect runs on every (re)connect: refresh subscriptions,
// re-request the referential table, mark the session subscribed.
func (s *Session) onTransportConnect() {
	s.mu.Lock()
	if s.status == StatusDisconnected {
		s.mu.Unlock()
		return
	}
	transport := s.transport
	unique := s.installUnique
	s.mu.Unlock()

	if transport == nil {
		return
	}

	qos := byte(s.cfg.MQTT.QoS)
	for _, tpl := range []string{topicListen, topicRealtime} {
		topic := resolveTopic(tpl, unique, s.email)
		if err := transport.Subscribe(topic, qos, s.handleMessage); err != nil {
			s.logger.Warn("subscribe failed", "topic", topic, "error", err)
		}
	}

	s.setStatus(StatusSubscribed)
	s.refreshReferential(context.Background())

	s.readyOnce.Do(func() { close(s.ready) })
}

// onTransportDisconnect counts consecutive drops. Below the limit the
// transport's own backoff keeps retrying; past it the session stops for
// good and reports ErrRetriesExhausted.
func (s *Session) onTransportDisconnect(err error) {
	s.mu.Lock()
	if s.status == StatusDisconnected {
		s.mu.Unlock()
		return
	}
	s.disconnects++
	count := s.disconnects
	limit := s.cfg.MQTT.Reconnect.MaxAttempts
	exhausted := limit > 0 && count > limit
	if !exhausted {
		s.status = StatusReconnecting
	}
	s.mu.Unlock()

	if exhausted {
		s.logger.Error("transport lost, retries exhausted", "disconnects", count, "error", err)
		go s.shutdown(ErrRetriesExhausted)
		return
	}
	s.logger.Warn("transport lost, reconnecting", "disconnects", count, "error", err)
}

// =============================================================================
// Scheduled jobs
// =============================================================================

// resync pulls a fresh full snapshot. A successful round trip proves
// the connection healthy, so the disconnect counter resets here.
func (s *Session) resync(ctx context.Context) {
	s.mu.Lock()
	req := auth.ReadUserRequest{
		Username:    s.email,
		Demand:      s.installID,
		InstallIDs:  s.profile.InstallIDs(),
		InstallHash: s.installHash,
		AccessToken: s.token.AccessToken,
	}
	s.mu.Unlock()

	profile, err := s.auth.ReadUserState(ctx, req)
	if err != nil {
		s.logger.Warn("resync failed", "error", err)
		return
	}

	s.mu.Lock()
	s.profile = profile
	s.resolveDefaultInstallLocked()
	s.disconnects = 0
	s.mu.Unlock()

	s.store.ApplyFullSnapshot(profile.Installs)
	s.logger.Debug("resync applied", "installs", len(profile.Installs))
}

// refreshReferential asks the server to push the current referential
// table. The reply arrives as a regular inbound message.
func (s *Session) refreshReferential(context.Context) {
	s.mu.Lock()
	accessToken := s.token.AccessToken
	s.mu.Unlock()

	payload := map[string]any{
		"ID":    s.email,
		"data":  map[string]any{},
		"sso":   true,
		"token": accessToken,
	}
	if err := s.publishJSON(topicReferentialRequest, payload); err != nil {
		s.logger.Warn("referential request failed", "error", err)
	}
}

// tokenRefreshLoop sleeps until the token's refresh instant, refreshes,
// and reconnects the transport with the new credential. The broker
// binds the token at connect time, so a fresh connect is required.
func (s *Session) tokenRefreshLoop(ctx context.Context) {
	for {
		s.mu.Lock()
		refreshAt := s.token.RefreshAt()
		refreshToken := s.token.RefreshToken
		s.mu.Unlock()

		wait := time.Until(refreshAt)
		if wait < time.Second {
			wait = time.Second
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		token, err := s.auth.Refresh(ctx, refreshToken)
		if err != nil {
			s.logger.Error("token refresh failed", "error", err)
			go s.shutdown(fmt.Errorf("session: token refresh: %w", err))
			return
		}

		s.mu.Lock()
		s.token = token
		s.mu.Unlock()
		s.logger.Info("token refreshed")

		if err := s.reconnectTransport(token.AccessToken); err != nil {
			s.logger.Error("transport reauth failed", "error", err)
			go s.shutdown(fmt.Errorf("session: transport reauth: %w", err))
			return
		}
	}
}

// reconnectTransport replaces the live transport with a fresh
// connection carrying the new access token.
func (s *Session) reconnectTransport(accessToken string) error {
	creds := mqtt.Credentials{
		ClientID: transportClientIDPrefix + uuid.NewString(),
		Username: transportUsername,
		Password: accessToken,
	}
	transport, err := s.dial(s.cfg.MQTT, creds)
	if err != nil {
		return err
	}
	transport.SetOnConnect(s.onTransportConnect)
	transport.SetOnDisconnect(s.onTransportDisconnect)

	s.mu.Lock()
	old := s.transport
	s.transport = transport
	s.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			s.logger.Debug("closing old transport", "error", err)
		}
	}

	s.onTransportConnect()
	return nil
}
