package signaling

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/pion/webrtc/v4"
)

// Envelope: формат кадра в сокете (JSON, текстовый фрейм).
type Envelope struct {
	Type    string          `json:"type"`
	Room    string          `json:"room,omitempty"`
	To      string          `json:"to,omitempty"`
	From    string          `json:"from,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Клиент → сервер.
const (
	TypeJoin         = "join"
	TypeLeave        = "leave"
	TypeChat         = "chat"
	TypeVoiceJoin    = "voice-join"
	TypeVoiceLeave   = "voice-leave"
	TypeOffer        = "offer"
	TypeAnswer       = "answer"
	TypeICECandidate = "ice-candidate"
	TypeStreamStart  = "stream-start"
	TypeStreamJoin   = "stream-join"
	TypeStreamLeave  = "stream-leave"
	TypeStreamStop   = "stream-stop"
)

// Сервер → клиент.
const (
	TypeWelcome       = "welcome"
	TypeJoined        = "joined"
	TypePeerJoined    = "peer-joined"
	TypePeerLeft      = "peer-left"
	TypeVoicePeers    = "voice-peers"
	TypeVoiceJoined   = "voice-joined"
	TypeVoiceLeft     = "voice-left"
	TypeStreamStarted = "stream-started"
	TypeStreamJoined  = "stream-joined"
	TypeViewerJoined  = "viewer-joined"
	TypeViewerLeft    = "viewer-left"
	TypeStreamEnded   = "stream-ended"
	TypeChatDeleted   = "chat-deleted"
	TypeError         = "error"
)

// Коды ошибок в событии "error".
const (
	CodeInvalidRequest  = "invalid_request"
	CodeUnknownType     = "unknown_type"
	CodeNotMember       = "not_member"
	CodePeerUnreachable = "peer_unreachable"
	CodeStreamLive      = "stream_live"
	CodeNoStream        = "no_stream"
	CodeForbidden       = "forbidden"
	CodeInternal        = "internal"
)

var (
	ErrHubClosed = errors.New("signaling hub is closed")
	// ErrInvalidPayload оборачивает ошибки валидации от MessageSink:
	// такие ошибки уходят клиенту как invalid_request, остальные как internal.
	ErrInvalidPayload = errors.New("invalid payload")
)

const MaxRoomNameLength = 64

var roomNamePattern = regexp.MustCompile(`^[A-Za-z0-9:_.\-]{1,64}$`)

// ValidRoomName проверяет имя комнаты: 1..64 символа из [A-Za-z0-9:_.-].
func ValidRoomName(name string) bool {
	return roomNamePattern.MatchString(name)
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	RefType string `json:"ref_type,omitempty"`
}

type Peer struct {
	SocketID string `json:"socket_id"`
	UserID   int    `json:"user_id"`
	Name     string `json:"name"`
}

type welcomePayload struct {
	SocketID string `json:"socket_id"`
	UserID   int    `json:"user_id"`
	Name     string `json:"name"`
}

type chatPayload struct {
	Text string `json:"text"`
}

func newEnvelope(typ, room, from string, payload any) (Envelope, error) {
	env := Envelope{Type: typ, Room: room, From: from}
	if payload == nil {
		return env, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return env, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	env.Payload = raw
	return env, nil
}

// validateSessionDescription проверяет offer/answer: тип совпадает с событием, SDP разбирается.
func validateSessionDescription(want webrtc.SDPType, raw json.RawMessage) error {
	if len(raw) == 0 {
		return errors.New("payload is required")
	}
	var desc webrtc.SessionDescription
	if err := json.Unmarshal(raw, &desc); err != nil {
		return fmt.Errorf("payload is not a session description: %w", err)
	}
	if desc.Type != want {
		return fmt.Errorf("session description type %q does not match %q", desc.Type.String(), want.String())
	}
	if _, err := desc.Unmarshal(); err != nil {
		return fmt.Errorf("invalid sdp: %w", err)
	}
	return nil
}

func validateICECandidate(raw json.RawMessage) error {
	if len(raw) == 0 {
		return errors.New("payload is required")
	}
	var cand webrtc.ICECandidateInit
	if err := json.Unmarshal(raw, &cand); err != nil {
		return fmt.Errorf("payload is not an ice candidate: %w", err)
	}
	return nil
}
