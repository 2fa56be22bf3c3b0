package moderation_test

import (
	"testing"

	"github.com/ashmor/antiadbot/internal/moderation"
)

func TestExtractContent(t *testing.T) {
	t.Parallel()

	bodyEntities := []moderation.Entity{{Kind: moderation.EntityURL, Offset: 0, Length: 10}}
	captionEntities := []moderation.Entity{{Kind: moderation.EntityMention, Offset: 5, Length: 8}}

	testCases := []struct {
		name         string
		msg          *moderation.Message
		wantText     string
		wantEntities []moderation.Entity
	}{
		{
			name:         "nil message",
			msg:          nil,
			wantText:     "",
			wantEntities: nil,
		},
		{
			name:         "empty message",
			msg:          &moderation.Message{},
			wantText:     "",
			wantEntities: nil,
		},
		{
			name: "body text preferred over caption",
			msg: &moderation.Message{
				Text:            "body",
				Caption:         "caption",
				Entities:        bodyEntities,
				CaptionEntities: captionEntities,
			},
			wantText:     "body",
			wantEntities: bodyEntities,
		},
		{
			name: "caption used when body empty",
			msg: &moderation.Message{
				Caption:         "caption",
				CaptionEntities: captionEntities,
			},
			wantText:     "caption",
			wantEntities: captionEntities,
		},
		{
			name: "caption entities not leaked with body text",
			msg: &moderation.Message{
				Text:            "body",
				CaptionEntities: captionEntities,
			},
			wantText:     "body",
			wantEntities: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			text, entities := moderation.ExtractContent(tc.msg)
			if text != tc.wantText {
				t.Errorf("text = %q, want %q", text, tc.wantText)
			}
			if len(entities) != len(tc.wantEntities) {
				t.Fatalf("entities = %v, want %v", entities, tc.wantEntities)
			}
			for i := range entities {
				if entities[i] != tc.wantEntities[i] {
					t.Errorf("entity[%d] = %v, want %v", i, entities[i], tc.wantEntities[i])
				}
			}
		})
	}
}

func TestMediaKind(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		msg  moderation.Message
		want string
	}{
		{name: "no media", msg: moderation.Message{}, want: ""},
		{
			name: "photo",
			msg:  moderation.Message{Media: &moderation.Media{Kind: moderation.MediaPhoto}},
			want: moderation.MediaPhoto,
		},
		{
			name: "video",
			msg:  moderation.Message{Media: &moderation.Media{Kind: moderation.MediaVideo}},
			want: moderation.MediaVideo,
		},
		{
			name: "plain document",
			msg:  moderation.Message{Media: &moderation.Media{Kind: moderation.MediaDocument, MIME: "application/pdf"}},
			want: moderation.MediaDocument,
		},
		{
			name: "image document tagged distinctly",
			msg:  moderation.Message{Media: &moderation.Media{Kind: moderation.MediaDocument, MIME: "image/png"}},
			want: moderation.MediaImageDocument,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := tc.msg.MediaKind(); got != tc.want {
				t.Errorf("MediaKind() = %q, want %q", got, tc.want)
			}
		})
	}
}
