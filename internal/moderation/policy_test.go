package moderation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ashmor/antiadbot/internal/moderation"
)

type fakeAdminChecker struct {
	isAdmin bool
	err     error
	calls   int
}

func (f *fakeAdminChecker) IsAdmin(_ context.Context, _, _ int64) (bool, error) {
	f.calls++
	return f.isAdmin, f.err
}

func defaultConfig() moderation.PipelineConfig {
	return moderation.PipelineConfig{
		DeleteChannelMessages: true,
		AdScoreThreshold:      2,
	}
}

func enabled() moderation.Capability {
	return moderation.Capability{CanDelete: true}
}

func TestPipelineMediaPolicy(t *testing.T) {
	t.Parallel()

	photoMsg := func() *moderation.Message {
		return &moderation.Message{
			ChatID:    100,
			MessageID: 1,
			UserID:    42,
			Text:      "Join our channel! Crypto investing tips, 50% discount",
			Media:     &moderation.Media{Kind: moderation.MediaPhoto},
		}
	}

	testCases := []struct {
		name       string
		msg        *moderation.Message
		checker    *fakeAdminChecker
		wantAction moderation.Action
		wantReason string
		wantCalls  int
	}{
		{
			name:       "photo from non-admin deleted before scoring",
			msg:        photoMsg(),
			checker:    &fakeAdminChecker{isAdmin: false},
			wantAction: moderation.ActionDelete,
			wantReason: "media_non_admin:photo",
			wantCalls:  1,
		},
		{
			name: "lookup failure fails closed",
			msg: &moderation.Message{
				ChatID:    100,
				MessageID: 2,
				UserID:    42,
				Media:     &moderation.Media{Kind: moderation.MediaVideo},
			},
			checker:    &fakeAdminChecker{err: errors.New("getChatMember: timeout")},
			wantAction: moderation.ActionDelete,
			wantReason: "media_non_admin:video",
			wantCalls:  1,
		},
		{
			name: "image document tagged distinctly",
			msg: &moderation.Message{
				ChatID:    100,
				MessageID: 3,
				UserID:    42,
				Media:     &moderation.Media{Kind: moderation.MediaDocument, MIME: "image/jpeg"},
			},
			checker:    &fakeAdminChecker{isAdmin: false},
			wantAction: moderation.ActionDelete,
			wantReason: "media_non_admin:image_document",
			wantCalls:  1,
		},
		{
			name: "admin media falls through to allow",
			msg: &moderation.Message{
				ChatID:    100,
				MessageID: 4,
				UserID:    42,
				Text:      "vacation photos",
				Media:     &moderation.Media{Kind: moderation.MediaPhoto},
			},
			checker:    &fakeAdminChecker{isAdmin: true},
			wantAction: moderation.ActionAllow,
			wantCalls:  1,
		},
		{
			name: "anonymous media skips the rule",
			msg: &moderation.Message{
				ChatID:    100,
				MessageID: 5,
				Text:      "no sender attached",
				Media:     &moderation.Media{Kind: moderation.MediaPhoto},
			},
			checker:    &fakeAdminChecker{isAdmin: false},
			wantAction: moderation.ActionAllow,
			wantCalls:  0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := moderation.NewPipeline(nil, defaultConfig(), tc.checker, enabled())
			d := p.Evaluate(context.Background(), tc.msg)
			if d == nil {
				t.Fatal("expected a decision, got nil")
			}
			if d.Action != tc.wantAction {
				t.Errorf("action = %q, want %q", d.Action, tc.wantAction)
			}
			if tc.wantReason != "" && d.Reason != tc.wantReason {
				t.Errorf("reason = %q, want %q", d.Reason, tc.wantReason)
			}
			if tc.checker.calls != tc.wantCalls {
				t.Errorf("admin lookups = %d, want %d", tc.checker.calls, tc.wantCalls)
			}
			if tc.wantAction == moderation.ActionDelete && d.Scoring != nil {
				t.Error("media decision must not carry a scoring result (scoring short-circuited)")
			}
		})
	}
}

func TestPipelineChannelSender(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		deleteChannel bool
		senderChat    *moderation.SenderChat
		wantAction    moderation.Action
		wantReason    string
	}{
		{
			name:          "channel sender deleted when enabled",
			deleteChannel: true,
			senderChat:    &moderation.SenderChat{ID: -100200, Type: moderation.SenderChatChannel},
			wantAction:    moderation.ActionDelete,
			wantReason:    "channel_sender",
		},
		{
			name:          "channel sender allowed when disabled",
			deleteChannel: false,
			senderChat:    &moderation.SenderChat{ID: -100200, Type: moderation.SenderChatChannel},
			wantAction:    moderation.ActionAllow,
		},
		{
			name:          "anonymous admin post never deleted",
			deleteChannel: true,
			senderChat:    &moderation.SenderChat{ID: -100300, Type: moderation.SenderChatSupergroup},
			wantAction:    moderation.ActionAllow,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := defaultConfig()
			cfg.DeleteChannelMessages = tc.deleteChannel
			p := moderation.NewPipeline(nil, cfg, &fakeAdminChecker{}, enabled())

			d := p.Evaluate(context.Background(), &moderation.Message{
				ChatID:     100,
				MessageID:  7,
				Text:       "posted under another identity",
				SenderChat: tc.senderChat,
			})
			if d == nil {
				t.Fatal("expected a decision, got nil")
			}
			if d.Action != tc.wantAction {
				t.Errorf("action = %q, want %q", d.Action, tc.wantAction)
			}
			if tc.wantReason != "" && d.Reason != tc.wantReason {
				t.Errorf("reason = %q, want %q", d.Reason, tc.wantReason)
			}
		})
	}
}

func TestPipelineAdScore(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		text       string
		wantAction moderation.Action
		wantReason string
	}{
		{
			name:       "promotional text above threshold",
			text:       "Join our channel! Crypto investing tips, 50% discount",
			wantAction: moderation.ActionDelete,
			wantReason: "ad_score:3",
		},
		{
			name:       "score exactly at threshold deletes",
			text:       "everyone should come join us at the meetup next week sometime",
			wantAction: moderation.ActionDelete,
			wantReason: "ad_score:2",
		},
		{
			name:       "score one below threshold allows",
			text:       "my crypto portfolio had quite the week, not complaining at all",
			wantAction: moderation.ActionAllow,
		},
		{
			name:       "plain conversation allows",
			text:       "Hello, how is everyone doing today?",
			wantAction: moderation.ActionAllow,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := moderation.NewPipeline(nil, defaultConfig(), &fakeAdminChecker{}, enabled())
			d := p.Evaluate(context.Background(), &moderation.Message{ChatID: 100, MessageID: 9, UserID: 42, Text: tc.text})
			if d == nil {
				t.Fatal("expected a decision, got nil")
			}
			if d.Action != tc.wantAction {
				t.Errorf("action = %q, want %q (reason %q)", d.Action, tc.wantAction, d.Reason)
			}
			if tc.wantReason != "" && d.Reason != tc.wantReason {
				t.Errorf("reason = %q, want %q", d.Reason, tc.wantReason)
			}
			if d.Scoring == nil {
				t.Error("ad-score decision should carry its scoring result")
			}
		})
	}
}

func TestPipelineScopeFilter(t *testing.T) {
	t.Parallel()

	checker := &fakeAdminChecker{}
	cfg := defaultConfig()
	cfg.TargetChatID = 100
	p := moderation.NewPipeline(nil, cfg, checker, enabled())

	d := p.Evaluate(context.Background(), &moderation.Message{
		ChatID:    200,
		MessageID: 1,
		UserID:    42,
		Media:     &moderation.Media{Kind: moderation.MediaPhoto},
		Text:      "Join our channel! Crypto investing tips, 50% discount",
	})
	if d != nil {
		t.Fatalf("out-of-scope message produced a decision: %+v", d)
	}
	if checker.calls != 0 {
		t.Errorf("out-of-scope message triggered %d admin lookups, want 0", checker.calls)
	}
}

func TestPipelineDisabledCapability(t *testing.T) {
	t.Parallel()

	p := moderation.NewPipeline(nil, defaultConfig(), &fakeAdminChecker{}, moderation.Capability{CanDelete: false, Detail: "bot lacks delete rights"})

	spam := &moderation.Message{
		ChatID:    100,
		MessageID: 1,
		UserID:    42,
		Text:      "Join our channel! Crypto investing tips, 50% discount",
		Media:     &moderation.Media{Kind: moderation.MediaPhoto},
	}
	if d := p.Evaluate(context.Background(), spam); d != nil {
		t.Fatalf("disabled pipeline produced a decision: %+v", d)
	}
}
