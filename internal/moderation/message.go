// Package moderation implements the content moderation pipeline: message
// snapshots, content extraction, advertisement scoring, and the ordered
// policy chain that turns one inbound message into one enforcement decision.
package moderation

// Entity kinds as delivered by the chat platform. Only the kinds the
// scoring engine cares about are named; everything else passes through
// as an opaque string.
const (
	EntityURL      = "url"
	EntityTextLink = "text_link"
	EntityMention  = "mention"
)

// Media kinds recognized by the media policy.
const (
	MediaPhoto         = "photo"
	MediaVideo         = "video"
	MediaDocument      = "document"
	MediaImageDocument = "image_document"
)

// Sender-chat types. A channel-authored post carries type "channel";
// an anonymous-admin post surfaces as the group's own identity with
// type "supergroup" and must never be treated as a channel post.
const (
	SenderChatChannel    = "channel"
	SenderChatSupergroup = "supergroup"
)

// Entity is one link/mention span inside the message text or caption.
type Entity struct {
	Kind   string
	Offset int
	Length int
}

// Media describes an attachment on the message. MIME is only populated
// for documents.
type Media struct {
	Kind string
	MIME string
}

// SenderChat identifies a chat acting as the message author instead of
// a user account.
type SenderChat struct {
	ID   int64
	Type string
}

// Message is an immutable snapshot of one inbound chat message. It is
// built once per update by the handler and shared read-only by every
// stage of the pipeline.
type Message struct {
	ChatID    int64
	MessageID int

	Text            string
	Caption         string
	Entities        []Entity
	CaptionEntities []Entity

	Media        *Media
	MediaGroupID string

	UserID     int64
	UserName   string
	SenderChat *SenderChat
}

// MediaKind returns the audit kind of the attached media, distinguishing
// image documents from other documents by MIME type. Empty when the
// message carries no media.
func (m *Message) MediaKind() string {
	if m.Media == nil {
		return ""
	}
	if m.Media.Kind == MediaDocument && isImageMIME(m.Media.MIME) {
		return MediaImageDocument
	}
	return m.Media.Kind
}

func isImageMIME(mime string) bool {
	return len(mime) >= 6 && mime[:6] == "image/"
}
