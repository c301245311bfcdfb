package signaling

import (
	"cmp"
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"time"

	"github.com/Dosada05/esports-arena/models"
	"github.com/pion/webrtc/v4"
)

// MessageSink сохраняет сообщение чата до рассылки участникам комнаты.
type MessageSink interface {
	SaveChat(ctx context.Context, room string, from Identity, text string) (*models.ChatMessage, error)
}

// Stats: моментальный снимок состояния хаба.
type Stats struct {
	Connections       int `json:"connections"`
	Rooms             int `json:"rooms"`
	LiveStreams       int `json:"live_streams"`
	StreamViewers     int `json:"stream_viewers"`
	VoiceParticipants int `json:"voice_participants"`
}

type inbound struct {
	client *Client
	env    Envelope
	fail   *ErrorPayload
}

type room struct {
	name    string
	members map[*Client]struct{}
	voice   map[*Client]struct{}
	stream  *liveStream
}

type liveStream struct {
	host      *Client
	viewers   map[*Client]struct{}
	startedAt time.Time
}

// Hub владеет всеми комнатами, голосовыми каналами и трансляциями.
// Всё состояние меняется только в горутине Run.
type Hub struct {
	logger *slog.Logger
	sink   MessageSink
	now    func() time.Time

	register   chan *Client
	unregister chan *Client
	inbound    chan inbound
	calls      chan func()
	done       chan struct{}

	clients map[*Client]struct{}
	byID    map[string]*Client
	rooms   map[string]*room
	evict   []*Client
}

// NewHub: sink может быть nil, тогда чат не сохраняется.
func NewHub(logger *slog.Logger, sink MessageSink) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:     logger,
		sink:       sink,
		now:        time.Now,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inbound),
		calls:      make(chan func()),
		done:       make(chan struct{}),
		clients:    make(map[*Client]struct{}),
		byID:       make(map[string]*Client),
		rooms:      make(map[string]*room),
	}
}

// Run обрабатывает события до отмены ctx, после чего закрывает все соединения.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.byID[c.ID] = c
			h.send(c, TypeWelcome, "", "", welcomePayload{SocketID: c.ID, UserID: c.Identity.UserID, Name: c.Identity.Name})
			c.logger().Info("client connected", "connections", len(h.clients))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.disconnect(c)
				c.logger().Info("client disconnected", "connections", len(h.clients))
			}
		case in := <-h.inbound:
			h.handle(in)
		case fn := <-h.calls:
			fn()
		}
		h.flushEvictions()
	}
}

func (h *Hub) shutdown() {
	close(h.done)
	for c := range h.clients {
		close(c.send)
	}
	h.clients = map[*Client]struct{}{}
	h.byID = map[string]*Client{}
	h.rooms = map[string]*room{}
	h.logger.Info("signaling hub stopped")
}

// Register добавляет клиента в хаб. После успешной регистрации нужно запустить помпы.
func (h *Hub) Register(ctx context.Context, c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) submit(in inbound) {
	select {
	case h.inbound <- in:
	case <-h.done:
	}
}

func (h *Hub) reject(c *Client, refType, code, message string) {
	h.submit(inbound{client: c, fail: &ErrorPayload{Code: code, Message: message, RefType: refType}})
}

// call выполняет fn в горутине хаба и возвращает результат.
func call[T any](ctx context.Context, h *Hub, fn func() T) (T, error) {
	var zero T
	reply := make(chan T, 1)
	select {
	case h.calls <- func() { reply <- fn() }:
	case <-h.done:
		return zero, ErrHubClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	select {
	case v := <-reply:
		return v, nil
	case <-h.done:
		return zero, ErrHubClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (h *Hub) isMember(c *Client, name string) (bool, error) {
	return call(context.Background(), h, func() bool {
		_, ok := c.rooms[name]
		return ok
	})
}

func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	return call(ctx, h, func() Stats {
		s := Stats{Connections: len(h.clients), Rooms: len(h.rooms)}
		for _, r := range h.rooms {
			s.VoiceParticipants += len(r.voice)
			if r.stream != nil {
				s.LiveStreams++
				s.StreamViewers += len(r.stream.viewers)
			}
		}
		return s
	})
}

// LiveStreams возвращает активные трансляции, отсортированные по имени комнаты.
func (h *Hub) LiveStreams(ctx context.Context) ([]models.LiveStream, error) {
	return call(ctx, h, func() []models.LiveStream {
		streams := make([]models.LiveStream, 0)
		for _, r := range h.rooms {
			if r.stream != nil {
				streams = append(streams, r.streamInfo())
			}
		}
		slices.SortFunc(streams, func(a, b models.LiveStream) int {
			return cmp.Compare(a.Room, b.Room)
		})
		return streams
	})
}

// RoomMembers возвращает сокеты в комнате; для несуществующей комнаты пустой срез.
func (h *Hub) RoomMembers(ctx context.Context, name string) ([]models.RoomMember, error) {
	return call(ctx, h, func() []models.RoomMember {
		members := make([]models.RoomMember, 0)
		r, ok := h.rooms[name]
		if !ok {
			return members
		}
		for _, c := range r.sortedMembers() {
			_, inVoice := r.voice[c]
			members = append(members, models.RoomMember{
				SocketID: c.ID,
				UserID:   c.Identity.UserID,
				Name:     c.Identity.Name,
				InVoice:  inVoice,
			})
		}
		return members
	})
}

// Broadcast рассылает серверное событие всем участникам комнаты.
func (h *Hub) Broadcast(ctx context.Context, name, typ string, payload any) error {
	env, err := newEnvelope(typ, name, "", payload)
	if err != nil {
		return err
	}
	_, err = call(ctx, h, func() struct{} {
		if r, ok := h.rooms[name]; ok {
			h.broadcast(r, env, nil)
		}
		return struct{}{}
	})
	return err
}

func (h *Hub) handle(in inbound) {
	c := in.client
	if _, ok := h.clients[c]; !ok {
		return
	}
	if in.fail != nil {
		h.send(c, TypeError, "", "", in.fail)
		return
	}

	env := in.env
	switch env.Type {
	case TypeJoin:
		h.handleJoin(c, env)
	case TypeLeave:
		if r := h.memberRoom(c, env); r != nil {
			h.leaveRoom(c, r)
		}
	case TypeChat:
		if r := h.memberRoom(c, env); r != nil {
			h.broadcast(r, env, nil)
		}
	case TypeVoiceJoin:
		h.handleVoiceJoin(c, env)
	case TypeVoiceLeave:
		h.handleVoiceLeave(c, env)
	case TypeOffer, TypeAnswer, TypeICECandidate:
		h.handleDirected(c, env)
	case TypeStreamStart:
		h.handleStreamStart(c, env)
	case TypeStreamJoin:
		h.handleStreamJoin(c, env)
	case TypeStreamLeave:
		h.handleStreamLeave(c, env)
	case TypeStreamStop:
		h.handleStreamStop(c, env)
	default:
		h.sendError(c, env.Type, CodeUnknownType, "unknown event type")
	}
}

// memberRoom проверяет имя комнаты и членство отправителя; при ошибке отвечает клиенту.
func (h *Hub) memberRoom(c *Client, env Envelope) *room {
	if !ValidRoomName(env.Room) {
		h.sendError(c, env.Type, CodeInvalidRequest, "invalid room name")
		return nil
	}
	r, ok := h.rooms[env.Room]
	if !ok {
		h.sendError(c, env.Type, CodeNotMember, "not a member of this room")
		return nil
	}
	if _, ok := r.members[c]; !ok {
		h.sendError(c, env.Type, CodeNotMember, "not a member of this room")
		return nil
	}
	return r
}

func (h *Hub) handleJoin(c *Client, env Envelope) {
	if !ValidRoomName(env.Room) {
		h.sendError(c, env.Type, CodeInvalidRequest, "invalid room name")
		return
	}
	r, ok := h.rooms[env.Room]
	if !ok {
		r = &room{name: env.Room, members: make(map[*Client]struct{}), voice: make(map[*Client]struct{})}
		h.rooms[env.Room] = r
	}

	_, already := r.members[c]
	peers := make([]Peer, 0, len(r.members))
	for _, m := range r.sortedMembers() {
		if m != c {
			peers = append(peers, m.peer())
		}
	}

	reply := joinedPayload{Room: r.name, SocketID: c.ID, Peers: peers}
	if r.stream != nil {
		info := r.streamInfo()
		reply.Stream = &info
	}

	if !already {
		r.members[c] = struct{}{}
		c.rooms[r.name] = struct{}{}
		h.broadcastPayload(r, TypePeerJoined, c.ID, c.peer(), c)
	}
	h.send(c, TypeJoined, r.name, "", reply)
}

type joinedPayload struct {
	Room     string             `json:"room"`
	SocketID string             `json:"socket_id"`
	Peers    []Peer             `json:"peers"`
	Stream   *models.LiveStream `json:"stream,omitempty"`
}

type peersPayload struct {
	Peers []Peer `json:"peers"`
}

type streamPayload struct {
	Stream models.LiveStream `json:"stream"`
}

// leaveRoom снимает клиента с голосового канала и трансляции в комнате,
// затем удаляет его из комнаты. Пустая комната удаляется.
func (h *Hub) leaveRoom(c *Client, r *room) {
	if _, ok := r.voice[c]; ok {
		delete(r.voice, c)
		h.sendToSet(r.voice, TypeVoiceLeft, r.name, c.ID, c.peer())
	}
	if s := r.stream; s != nil {
		if s.host == c {
			h.endStream(r)
		} else if _, ok := s.viewers[c]; ok {
			delete(s.viewers, c)
			h.send(s.host, TypeViewerLeft, r.name, c.ID, c.peer())
		}
	}

	delete(r.members, c)
	delete(c.rooms, r.name)
	h.broadcastPayload(r, TypePeerLeft, c.ID, c.peer(), nil)

	if len(r.members) == 0 {
		delete(h.rooms, r.name)
		h.logger.Debug("room closed", "room", r.name)
	}
}

func (h *Hub) endStream(r *room) {
	info := r.streamInfo()
	r.stream = nil
	h.broadcastPayload(r, TypeStreamEnded, info.HostSocketID, streamPayload{Stream: info}, nil)
}

func (h *Hub) handleVoiceJoin(c *Client, env Envelope) {
	r := h.memberRoom(c, env)
	if r == nil {
		return
	}
	peers := make([]Peer, 0, len(r.voice))
	for _, m := range sortClients(r.voice) {
		if m != c {
			peers = append(peers, m.peer())
		}
	}
	if _, ok := r.voice[c]; !ok {
		h.sendToSet(r.voice, TypeVoiceJoined, r.name, c.ID, c.peer())
		r.voice[c] = struct{}{}
	}
	h.send(c, TypeVoicePeers, r.name, "", peersPayload{Peers: peers})
}

func (h *Hub) handleVoiceLeave(c *Client, env Envelope) {
	r := h.memberRoom(c, env)
	if r == nil {
		return
	}
	if _, ok := r.voice[c]; !ok {
		h.sendError(c, env.Type, CodeInvalidRequest, "not in the voice channel")
		return
	}
	delete(r.voice, c)
	h.sendToSet(r.voice, TypeVoiceLeft, r.name, c.ID, c.peer())
}

// handleDirected пересылает offer/answer/ice-candidate одному сокету,
// с которым у отправителя есть общая комната.
func (h *Hub) handleDirected(c *Client, env Envelope) {
	var err error
	switch env.Type {
	case TypeOffer:
		err = validateSessionDescription(webrtc.SDPTypeOffer, env.Payload)
	case TypeAnswer:
		err = validateSessionDescription(webrtc.SDPTypeAnswer, env.Payload)
	default:
		err = validateICECandidate(env.Payload)
	}
	if err != nil {
		h.sendError(c, env.Type, CodeInvalidRequest, err.Error())
		return
	}

	target, ok := h.byID[env.To]
	if !ok || target == c || !sharesRoom(c, target) {
		h.sendError(c, env.Type, CodePeerUnreachable, "target socket is not in any of your rooms")
		return
	}
	env.From = c.ID
	h.sendEnvelope(target, env)
}

func sharesRoom(a, b *Client) bool {
	for name := range a.rooms {
		if _, ok := b.rooms[name]; ok {
			return true
		}
	}
	return false
}

func (h *Hub) handleStreamStart(c *Client, env Envelope) {
	r := h.memberRoom(c, env)
	if r == nil {
		return
	}
	if r.stream != nil {
		h.sendError(c, env.Type, CodeStreamLive, "a stream is already live in this room")
		return
	}
	r.stream = &liveStream{host: c, viewers: make(map[*Client]struct{}), startedAt: h.now().UTC()}
	h.broadcastPayload(r, TypeStreamStarted, c.ID, streamPayload{Stream: r.streamInfo()}, nil)
}

func (h *Hub) handleStreamJoin(c *Client, env Envelope) {
	r := h.memberRoom(c, env)
	if r == nil {
		return
	}
	s := r.stream
	if s == nil {
		h.sendError(c, env.Type, CodeNoStream, "no live stream in this room")
		return
	}
	if s.host == c {
		h.sendError(c, env.Type, CodeInvalidRequest, "the host cannot watch its own stream")
		return
	}
	if _, ok := s.viewers[c]; !ok {
		s.viewers[c] = struct{}{}
		h.send(s.host, TypeViewerJoined, r.name, c.ID, c.peer())
	}
	h.send(c, TypeStreamJoined, r.name, s.host.ID, streamPayload{Stream: r.streamInfo()})
}

func (h *Hub) handleStreamLeave(c *Client, env Envelope) {
	r := h.memberRoom(c, env)
	if r == nil {
		return
	}
	s := r.stream
	if s == nil {
		h.sendError(c, env.Type, CodeNoStream, "no live stream in this room")
		return
	}
	if _, ok := s.viewers[c]; !ok {
		h.sendError(c, env.Type, CodeInvalidRequest, "not watching this stream")
		return
	}
	delete(s.viewers, c)
	h.send(s.host, TypeViewerLeft, r.name, c.ID, c.peer())
}

func (h *Hub) handleStreamStop(c *Client, env Envelope) {
	r := h.memberRoom(c, env)
	if r == nil {
		return
	}
	if r.stream == nil {
		h.sendError(c, env.Type, CodeNoStream, "no live stream in this room")
		return
	}
	if r.stream.host != c {
		h.sendError(c, env.Type, CodeForbidden, "only the host can stop the stream")
		return
	}
	h.endStream(r)
}

// disconnect освобождает все комнаты клиента с теми же уведомлениями, что и leave,
// и закрывает его очередь.
func (h *Hub) disconnect(c *Client) {
	names := make([]string, 0, len(c.rooms))
	for name := range c.rooms {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if r, ok := h.rooms[name]; ok {
			h.leaveRoom(c, r)
		}
	}
	delete(h.clients, c)
	delete(h.byID, c.ID)
	close(c.send)
}

func (h *Hub) flushEvictions() {
	for len(h.evict) > 0 {
		c := h.evict[0]
		h.evict = h.evict[1:]
		if _, ok := h.clients[c]; !ok {
			continue
		}
		c.logger().Warn("disconnecting slow client: outbound queue is full", "queue", cap(c.send))
		h.disconnect(c)
	}
}

// deliver кладёт кадр в очередь клиента. Переполненная очередь ведёт к отключению.
func (h *Hub) deliver(c *Client, data []byte) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		if !slices.Contains(h.evict, c) {
			h.evict = append(h.evict, c)
		}
	}
}

func (h *Hub) sendEnvelope(c *Client, env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("failed to marshal envelope", "type", env.Type, "error", err)
		return
	}
	h.deliver(c, data)
}

func (h *Hub) send(c *Client, typ, roomName, from string, payload any) {
	env, err := newEnvelope(typ, roomName, from, payload)
	if err != nil {
		h.logger.Error("failed to build envelope", "type", typ, "error", err)
		return
	}
	h.sendEnvelope(c, env)
}

func (h *Hub) sendError(c *Client, refType, code, message string) {
	h.logger.Debug("rejected client frame", "socket_id", c.ID, "type", refType, "code", code)
	h.send(c, TypeError, "", "", ErrorPayload{Code: code, Message: message, RefType: refType})
}

// broadcast рассылает кадр всем участникам комнаты, кроме except.
func (h *Hub) broadcast(r *room, env Envelope, except *Client) {
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("failed to marshal envelope", "type", env.Type, "error", err)
		return
	}
	for _, m := range r.sortedMembers() {
		if m != except {
			h.deliver(m, data)
		}
	}
}

func (h *Hub) broadcastPayload(r *room, typ, from string, payload any, except *Client) {
	env, err := newEnvelope(typ, r.name, from, payload)
	if err != nil {
		h.logger.Error("failed to build envelope", "type", typ, "error", err)
		return
	}
	h.broadcast(r, env, except)
}

func (h *Hub) sendToSet(set map[*Client]struct{}, typ, roomName, from string, payload any) {
	env, err := newEnvelope(typ, roomName, from, payload)
	if err != nil {
		h.logger.Error("failed to build envelope", "type", typ, "error", err)
		return
	}
	for _, m := range sortClients(set) {
		h.sendEnvelope(m, env)
	}
}

func (r *room) sortedMembers() []*Client {
	return sortClients(r.members)
}

func (r *room) streamInfo() models.LiveStream {
	s := r.stream
	return models.LiveStream{
		Room:         r.name,
		HostSocketID: s.host.ID,
		HostUserID:   s.host.Identity.UserID,
		HostName:     s.host.Identity.Name,
		Viewers:      len(s.viewers),
		StartedAt:    s.startedAt,
	}
}

// sortClients даёт детерминированный порядок обхода множества сокетов.
func sortClients(set map[*Client]struct{}) []*Client {
	out := make([]*Client, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Client) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
