package moderation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Action is the terminal outcome of the policy chain for one message.
type Action string

const (
	ActionAllow  Action = "allow"
	ActionDelete Action = "delete"
)

// Decision is the single enforcement decision produced per in-scope
// message. Scoring is attached whenever the ad-score stage ran; it is nil
// for decisions made by earlier stages.
type Decision struct {
	Action  Action
	Reason  string
	Scoring *Result
}

// AdminChecker resolves whether a user is an administrator of a chat.
// Implementations must surface transport failures as an error distinct
// from a definitive "not admin" answer so each caller can pick its own
// fail-open or fail-closed behavior.
type AdminChecker interface {
	IsAdmin(ctx context.Context, chatID, userID int64) (bool, error)
}

// Capability is the result of the one-time startup check of the bot's own
// rights in the target chat. It is computed before the pipeline is built
// and immutable for the process lifetime; a pipeline built without delete
// capability is pure pass-through.
type Capability struct {
	CanDelete bool
	Detail    string
}

// PipelineConfig holds the policy knobs for one pipeline instance.
type PipelineConfig struct {
	// TargetChatID restricts moderation to a single chat. Zero means all
	// chats are in scope.
	TargetChatID int64
	// DeleteChannelMessages enables the sender-identity stage.
	DeleteChannelMessages bool
	// AdScoreThreshold is the minimum score at which the ad-score stage
	// deletes.
	AdScoreThreshold int
}

// stage is one rule of the ordered chain. A nil decision means "no
// opinion, fall through"; a non-nil decision is terminal.
type stage struct {
	name string
	eval func(ctx context.Context, msg *Message) *Decision
}

// Pipeline evaluates the ordered policy chain over message snapshots. It
// holds no per-message state, so one instance is safe for concurrent use.
type Pipeline struct {
	cfg        PipelineConfig
	admins     AdminChecker
	capability Capability
	logger     *slog.Logger
	stages     []stage
}

// NewPipeline builds the policy chain in its fixed order: media policy,
// sender-identity policy, ad-score policy. The scope filter runs before
// the chain inside Evaluate.
func NewPipeline(logger *slog.Logger, cfg PipelineConfig, admins AdminChecker, capability Capability) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p := &Pipeline{
		cfg:        cfg,
		admins:     admins,
		capability: capability,
		logger:     logger.With("component", "policy_chain"),
	}
	p.stages = []stage{
		{name: "media_policy", eval: p.mediaStage},
		{name: "channel_sender", eval: p.channelSenderStage},
		{name: "ad_score", eval: p.adScoreStage},
	}
	return p
}

// Evaluate runs the chain for one message and returns its terminal
// decision. A nil return means the message is outside this pipeline's
// jurisdiction (scope filter miss, or moderation disabled by the startup
// capability check) and must produce no side effects at all.
func (p *Pipeline) Evaluate(ctx context.Context, msg *Message) *Decision {
	if msg == nil {
		return nil
	}
	if !p.capability.CanDelete {
		return nil
	}
	if p.cfg.TargetChatID != 0 && msg.ChatID != p.cfg.TargetChatID {
		return nil
	}

	for _, st := range p.stages {
		if d := st.eval(ctx, msg); d != nil {
			p.logger.DebugContext(ctx, "Policy stage decided",
				"stage", st.name,
				"chat_id", msg.ChatID,
				"message_id", msg.MessageID,
				"action", d.Action,
				"reason", d.Reason)
			return d
		}
	}

	// Unreachable while the ad-score stage is terminal either way, but the
	// chain contract is explicit: no match means allow.
	return &Decision{Action: ActionAllow}
}

// mediaStage deletes media sent by identifiable non-admin users. Admin
// status uncertainty fails closed: a transient lookup failure must not
// open a bypass for spam media.
func (p *Pipeline) mediaStage(ctx context.Context, msg *Message) *Decision {
	kind := msg.MediaKind()
	if kind == "" {
		return nil
	}
	if msg.UserID == 0 {
		// Fully anonymous; the media rule only applies when an
		// identifiable user sent it.
		return nil
	}

	isAdmin, err := p.admins.IsAdmin(ctx, msg.ChatID, msg.UserID)
	if err != nil {
		p.logger.WarnContext(ctx, "Admin status lookup failed, failing closed",
			"chat_id", msg.ChatID,
			"user_id", msg.UserID,
			"error", err)
		return &Decision{Action: ActionDelete, Reason: "media_non_admin:" + kind}
	}
	if isAdmin {
		return nil
	}
	return &Decision{Action: ActionDelete, Reason: "media_non_admin:" + kind}
}

// channelSenderStage deletes messages authored under a linked channel's
// identity. Anonymous-admin posts surface as sender-chat type supergroup
// and always fall through.
func (p *Pipeline) channelSenderStage(_ context.Context, msg *Message) *Decision {
	if !p.cfg.DeleteChannelMessages {
		return nil
	}
	if msg.SenderChat == nil || msg.SenderChat.Type != SenderChatChannel {
		return nil
	}
	return &Decision{Action: ActionDelete, Reason: "channel_sender"}
}

// adScoreStage scores the extracted content and decides either way, so
// allow decisions carry the scoring trail for the audit log.
func (p *Pipeline) adScoreStage(_ context.Context, msg *Message) *Decision {
	text, entities := ExtractContent(msg)
	res := Score(text, entities)
	if res.Score >= p.cfg.AdScoreThreshold {
		return &Decision{
			Action:  ActionDelete,
			Reason:  fmt.Sprintf("ad_score:%d", res.Score),
			Scoring: &res,
		}
	}
	return &Decision{Action: ActionAllow, Scoring: &res}
}
