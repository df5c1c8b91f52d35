package chat

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"linkup/api"
	"linkup/logger"
	"linkup/metrics"
	"linkup/models"
	"linkup/securestore"
)

var (
	ErrEmptyMessage     = errors.New("message is empty")
	ErrNotAuthenticated = errors.New("not signed in")
	ErrPeerUnavailable  = errors.New("peer profile unavailable")
	ErrSessionClosed    = errors.New("chat session closed")
	ErrNotOpen          = errors.New("chat session not open")
	ErrAlreadyOpen      = errors.New("chat session already open")
	ErrInvalidPeer      = errors.New("peer id is empty")
)

// API is the slice of the backend a session needs
type API interface {
	ResolvePeer(ctx context.Context, id string) (models.User, error)
	ChatHistory(ctx context.Context, username string) ([]models.HistoryEntry, error)
	SendMessage(ctx context.Context, req api.SendRequest) (*models.SentMessage, error)
	ChatSocketURL(username, accessToken string) string
}

// Options tunes a Session. Zero values fall back to the defaults below.
type Options struct {
	PingInterval   time.Duration
	ReconnectDelay time.Duration
	AssistantDelay time.Duration
	DialTimeout    time.Duration
	EventBuffer    int
	Logger         *zap.Logger
	Now            func() time.Time
	// Pick returns an index in [0, n) for the assistant's reply template
	Pick func(n int) int
}

const (
	DefaultPingInterval   = 30 * time.Second
	DefaultReconnectDelay = 3 * time.Second
	DefaultAssistantDelay = 1500 * time.Millisecond
)

// Session is one open conversation: the message log, the socket, and the
// reconciliation of optimistic sends. Every state mutation runs on the
// session's loop goroutine; network calls never do.
type Session struct {
	api    API
	dialer Dialer
	store  securestore.Store
	opts   Options
	log    *zap.Logger
	ids    idGenerator

	ops       chan func()
	done      chan struct{}
	stopped   chan struct{}
	events    chan Event
	closeOnce sync.Once

	// owned by the loop goroutine
	opened    bool
	closed    bool
	assistant bool
	local     string
	peer      models.User
	messages  *Log
	state     ConnState
	gen       uint64
	conn      Conn
	stopPing  chan struct{}
	retry     *time.Timer
	replies   map[*time.Timer]struct{}
}

// NewSession returns an unopened session
func NewSession(client API, dialer Dialer, store securestore.Store, opts Options) *Session {
	if opts.PingInterval <= 0 {
		opts.PingInterval = DefaultPingInterval
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.AssistantDelay <= 0 {
		opts.AssistantDelay = DefaultAssistantDelay
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 10 * time.Second
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 64
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Pick == nil {
		opts.Pick = rand.Intn
	}

	s := &Session{
		api:      client,
		dialer:   dialer,
		store:    store,
		opts:     opts,
		log:      opts.Logger,
		ops:      make(chan func()),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		events:   make(chan Event, opts.EventBuffer),
		messages: NewLog(),
		replies:  make(map[*time.Timer]struct{}),
	}
	go s.run()
	return s
}

func (s *Session) run() {
	defer close(s.stopped)
	for {
		select {
		case fn := <-s.ops:
			fn()
		case <-s.done:
			return
		}
	}
}

// exec runs fn on the loop goroutine and waits for it. It must not be
// called from the loop goroutine itself.
func (s *Session) exec(fn func()) error {
	finished := make(chan struct{})
	select {
	case s.ops <- func() { fn(); close(finished) }:
	case <-s.done:
		return ErrSessionClosed
	}
	<-finished
	return nil
}

// Events delivers front end notifications. The channel is closed by Close.
func (s *Session) Events() <-chan Event {
	return s.events
}

func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.log.Warn("chat_event_dropped", zap.Int("kind", int(ev.Kind)))
	}
}

func (s *Session) alert(title, text string) {
	s.emit(Event{Kind: EventAlert, Title: title, Text: text})
}

// Open loads the conversation with peerID. For the assistant no network is
// used. A peer whose profile cannot be resolved is fatal; a failed history
// fetch only leaves the log empty.
func (s *Session) Open(ctx context.Context, peerID string) error {
	peerID = strings.TrimSpace(peerID)
	if peerID == "" {
		return ErrInvalidPeer
	}

	me, err := securestore.LoadUser(s.store)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}

	var openErr error
	if err := s.exec(func() {
		if s.opened {
			openErr = ErrAlreadyOpen
			return
		}
		s.opened = true
		s.local = me.Username
	}); err != nil {
		return err
	}
	if openErr != nil {
		return openErr
	}

	if peerID == models.AssistantID {
		return s.exec(func() {
			s.assistant = true
			s.peer = assistantProfile()
			s.messages.Merge([]models.Message{assistantWelcome(s.opts.Now())})
			s.emit(Event{Kind: EventMessages})
			s.emit(Event{Kind: EventConnectivity, Online: true})
		})
	}

	peer, err := s.api.ResolvePeer(ctx, peerID)
	if err != nil {
		s.log.Error("chat_peer_lookup_failed", zap.String("peer_id", peerID), zap.Error(err))
		_ = s.exec(func() { s.alert("Error", "Failed to load user data") })
		return fmt.Errorf("%w: %v", ErrPeerUnavailable, err)
	}

	if err := s.exec(func() {
		s.peer = peer
		s.transition(OpenRequested)
	}); err != nil {
		return err
	}

	history, err := s.api.ChatHistory(ctx, peer.Username)
	if err != nil {
		s.log.Warn("chat_history_unavailable", zap.String("peer", peer.Username), zap.Error(err))
		history = nil
	}

	return s.exec(func() {
		if s.closed {
			return
		}
		now := s.opts.Now()
		base := make([]models.Message, 0, len(history))
		for i, h := range history {
			base = append(base, s.historyMessage(i, h, now))
		}
		s.messages.Merge(base)
		s.emit(Event{Kind: EventMessages})
		s.emit(Event{Kind: EventScrollToLatest})
	})
}

func (s *Session) historyMessage(i int, h models.HistoryEntry, now time.Time) models.Message {
	m := models.Message{
		ID:       h.ID.String(),
		Content:  firstNonEmpty(h.Content, h.Message),
		Sender:   firstNonEmpty(h.Sender, h.FromUser),
		MediaURL: deref(h.MediaURL),
		SentAt:   now,
	}
	if m.ID == "" {
		m.ID = fmt.Sprintf("history-%d-%d", i, now.UnixMilli())
	}
	if t, ok := ParseTimestamp(firstNonEmpty(h.SentAt, h.Timestamp)); ok {
		m.SentAt = t
	}
	m.DisplaySender = s.displayName(m.Sender)
	return m
}

func (s *Session) displayName(sender string) string {
	if (s.local != "" && sender == s.local) || sender == "You" {
		return "You"
	}
	if sender == models.AssistantName {
		return models.AssistantName
	}
	if s.peer.Name != "" {
		return s.peer.Name
	}
	return sender
}

func (s *Session) localSender() string {
	if s.local == "" {
		return "You"
	}
	return s.local
}

// Send appends text to the conversation. With a peer the message shows up
// as optimistic immediately and Send blocks until the backend confirms or
// rejects it; a rejected message is removed again and an alert raised.
func (s *Session) Send(ctx context.Context, text string) error {
	content := strings.TrimSpace(text)
	if content == "" {
		return ErrEmptyMessage
	}

	var (
		sendErr   error
		assistant bool
		receiver  string
		pending   models.Message
	)
	if err := s.exec(func() {
		if !s.opened || s.peer.Username == "" {
			sendErr = ErrNotOpen
			return
		}
		now := s.opts.Now()
		pending = models.Message{
			ID:            s.ids.next(now),
			Content:       content,
			Sender:        s.localSender(),
			DisplaySender: "You",
			SentAt:        now,
		}
		assistant = s.assistant
		receiver = s.peer.Username

		if assistant {
			s.messages.Append(pending)
			s.scheduleReply(content)
		} else {
			pending.IsOptimistic = true
			s.messages.Append(pending)
		}
		s.emit(Event{Kind: EventMessages})
		s.emit(Event{Kind: EventScrollToLatest})
	}); err != nil {
		return err
	}
	if sendErr != nil || assistant {
		return sendErr
	}

	sent, err := s.api.SendMessage(ctx, api.SendRequest{Receiver: receiver, Content: content})
	if err != nil {
		metrics.Sends.WithLabelValues("failed").Inc()
		s.log.Warn("chat_send_failed", zap.String("receiver", receiver), zap.String("message_id", pending.ID), zap.Error(err))
		_ = s.exec(func() {
			if s.closed {
				return
			}
			if s.messages.Remove(pending.ID) {
				s.emit(Event{Kind: EventMessages})
			}
			s.alert("Error", "Failed to send message. Please try again.")
		})
		return fmt.Errorf("send message: %w", err)
	}

	metrics.Sends.WithLabelValues("ok").Inc()
	return s.exec(func() {
		if s.closed {
			return
		}
		if s.messages.Replace(pending.ID, s.confirmed(pending, sent)) {
			s.emit(Event{Kind: EventMessages})
		}
	})
}

// confirmed is the server's copy of an optimistic message, with the local
// identity kept as sender so the entry does not flicker
func (s *Session) confirmed(pending models.Message, sent *models.SentMessage) models.Message {
	m := pending
	m.IsOptimistic = false
	if id := sent.ID.String(); id != "" {
		m.ID = id
	}
	if sent.Content != "" {
		m.Content = sent.Content
	}
	if t, ok := ParseTimestamp(sent.SentAt); ok {
		m.SentAt = t
	}
	if media := deref(sent.MediaURL); media != "" {
		m.MediaURL = media
	}
	m.Sender = s.localSender()
	m.DisplaySender = "You"
	return m
}

func (s *Session) scheduleReply(text string) {
	var t *time.Timer
	t = time.AfterFunc(s.opts.AssistantDelay, func() {
		_ = s.exec(func() {
			delete(s.replies, t)
			if s.closed {
				return
			}
			now := s.opts.Now()
			s.messages.Append(models.Message{
				ID:            s.ids.next(now),
				Content:       assistantReply(text, s.opts.Pick),
				Sender:        models.AssistantName,
				DisplaySender: models.AssistantName,
				SentAt:        now,
			})
			s.emit(Event{Kind: EventMessages})
			s.emit(Event{Kind: EventScrollToLatest})
		})
	})
	s.replies[t] = struct{}{}
}

// AttachFile is the attachment entry point. Uploads are not available yet,
// so it only raises a notice.
func (s *Session) AttachFile() error {
	return s.exec(func() {
		s.emit(Event{Kind: EventNotice, Title: "Coming Soon", Text: "File attachment feature will be available soon!"})
	})
}

// Messages returns a snapshot of the log
func (s *Session) Messages() []models.Message {
	var out []models.Message
	_ = s.exec(func() { out = s.messages.Messages() })
	return out
}

// Peer returns the conversation peer with its online indicator
func (s *Session) Peer() models.User {
	var p models.User
	_ = s.exec(func() {
		p = s.peer
		p.Online = s.assistant || s.state == Connected
	})
	return p
}

// State returns the connection state
func (s *Session) State() ConnState {
	state := Closed
	_ = s.exec(func() { state = s.state })
	return state
}

// Close stops timers and the socket. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		_ = s.exec(func() {
			s.closed = true
			s.transition(SessionClosed)
			for t := range s.replies {
				t.Stop()
			}
			s.replies = nil
		})
		close(s.done)
		<-s.stopped
		close(s.events)
	})
	return nil
}

// transition applies the reconnection policy to the connection state and
// performs the resulting action
func (s *Session) transition(e ConnEvent) {
	prev := s.state
	next, action := NextConnState(prev, e)
	s.state = next
	if prev != next {
		s.log.Debug("chat_conn_transition",
			zap.Stringer("from", prev),
			zap.Stringer("to", next),
			zap.Stringer("event", e),
		)
	}

	switch action {
	case ActionDial:
		s.gen++
		go s.dial(s.gen, s.local)
	case ActionStartKeepAlive:
		s.stopPing = make(chan struct{})
		go keepAlive(s.conn, s.opts.PingInterval, s.stopPing)
		s.emit(Event{Kind: EventConnectivity, Online: true})
	case ActionScheduleRetry:
		s.dropConn()
		metrics.Reconnects.Inc()
		gen := s.gen
		s.retry = time.AfterFunc(s.opts.ReconnectDelay, func() {
			_ = s.exec(func() {
				if gen != s.gen {
					return
				}
				s.log.Info("chat_socket_reconnecting", zap.String("user", s.local))
				s.transition(RetryTimerFired)
			})
		})
		if prev == Connected {
			s.emit(Event{Kind: EventConnectivity, Online: false})
		}
	case ActionTeardown:
		if s.retry != nil {
			s.retry.Stop()
			s.retry = nil
		}
		s.dropConn()
	}
}

func (s *Session) dropConn() {
	if s.stopPing != nil {
		close(s.stopPing)
		s.stopPing = nil
	}
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

// dial runs off the loop. The token is read fresh for every attempt.
func (s *Session) dial(gen uint64, username string) {
	token, err := securestore.Token(s.store)
	if err != nil || token == "" {
		s.log.Error("chat_socket_no_token", zap.String("user", username), zap.Error(err))
		_ = s.exec(func() {
			if gen == s.gen {
				s.transition(DialAborted)
			}
		})
		return
	}

	url := s.api.ChatSocketURL(username, token)
	s.log.Info("chat_socket_connecting", zap.String("url", logger.RedactURL(url)))

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.DialTimeout)
	conn, err := s.dialer.Dial(ctx, url)
	cancel()
	if err != nil {
		s.socketClosed(gen, err)
		return
	}

	accepted := false
	_ = s.exec(func() {
		if s.closed || gen != s.gen {
			return
		}
		accepted = true
		s.conn = conn
		s.log.Info("chat_socket_connected", zap.String("user", username))
		s.transition(SocketOpened)
	})
	if !accepted {
		conn.Close()
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.socketClosed(gen, err)
			return
		}
		receivedAt := s.opts.Now()
		if s.exec(func() {
			if !s.closed && gen == s.gen {
				s.handleFrame(data, receivedAt)
			}
		}) != nil {
			return
		}
	}
}

func (s *Session) socketClosed(gen uint64, cause error) {
	_ = s.exec(func() {
		if s.closed || gen != s.gen {
			return
		}
		s.log.Warn("chat_socket_closed", zap.String("user", s.local), zap.Error(cause))
		s.transition(SocketClosed)
	})
}

func keepAlive(conn Conn, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := conn.WriteJSON(models.ControlFrame{Type: "ping"}); err != nil {
				// the read side sees the broken connection and drives reconnection
				return
			}
		}
	}
}

// handleFrame applies one inbound frame to the log
func (s *Session) handleFrame(raw []byte, receivedAt time.Time) {
	f, err := ParseFrame(raw, receivedAt)
	if err != nil {
		metrics.FramesDropped.WithLabelValues(metrics.DropMalformed).Inc()
		s.log.Warn("chat_frame_malformed", zap.Error(err), zap.ByteString("raw", raw))
		return
	}
	metrics.FramesReceived.WithLabelValues(string(f.Kind)).Inc()

	switch f.Kind {
	case FramePong, FramePing:
		return
	case FrameError:
		s.log.Warn("chat_server_error", zap.String("message", f.Error))
		return
	case FrameOther:
		s.log.Debug("chat_frame_ignored", zap.ByteString("raw", raw))
		return
	}

	if f.Sender == s.local {
		metrics.FramesDropped.WithLabelValues(metrics.DropSelfEcho).Inc()
		return
	}

	peer := s.peer.Username
	inScope := (f.Receiver == s.local && f.Sender == peer) || (f.Sender == s.local && f.Receiver == peer)
	if !inScope {
		metrics.FramesDropped.WithLabelValues(metrics.DropOutOfScope).Inc()
		s.log.Debug("chat_frame_out_of_scope", zap.String("sender", f.Sender), zap.String("receiver", f.Receiver))
		return
	}

	m := models.Message{
		ID:            f.ID,
		Content:       f.Content,
		Sender:        f.Sender,
		DisplaySender: s.displayName(f.Sender),
		MediaURL:      f.MediaURL,
		SentAt:        f.SentAt,
	}
	if m.ID == "" {
		m.ID = s.ids.next(receivedAt)
	}

	if !s.messages.Accept(m) {
		metrics.FramesDropped.WithLabelValues(metrics.DropDuplicate).Inc()
		s.log.Debug("chat_frame_duplicate", zap.String("id", m.ID))
		return
	}
	s.emit(Event{Kind: EventMessages})
	s.emit(Event{Kind: EventScrollToLatest})
}
