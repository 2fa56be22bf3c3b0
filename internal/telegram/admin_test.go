package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type fakeMemberAPI struct {
	member *models.ChatMember
	err    error
}

func (f *fakeMemberAPI) GetChatMember(_ context.Context, _ *bot.GetChatMemberParams) (*models.ChatMember, error) {
	return f.member, f.err
}

func TestAdminResolverIsAdmin(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		member    *models.ChatMember
		err       error
		wantAdmin bool
		wantErr   bool
	}{
		{
			name:      "owner is admin",
			member:    &models.ChatMember{Type: models.ChatMemberTypeOwner},
			wantAdmin: true,
		},
		{
			name:      "administrator is admin",
			member:    &models.ChatMember{Type: models.ChatMemberTypeAdministrator},
			wantAdmin: true,
		},
		{
			name:   "plain member is not admin",
			member: &models.ChatMember{Type: models.ChatMemberTypeMember},
		},
		{
			name:   "left member is not admin",
			member: &models.ChatMember{Type: models.ChatMemberTypeLeft},
		},
		{
			name:    "transport failure surfaces as error",
			err:     errors.New("getChatMember: timeout"),
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := NewAdminResolver(&fakeMemberAPI{member: tc.member, err: tc.err}, nil)
			isAdmin, err := r.IsAdmin(context.Background(), -100, 42)

			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("IsAdmin: %v", err)
			}
			if isAdmin != tc.wantAdmin {
				t.Errorf("IsAdmin = %v, want %v", isAdmin, tc.wantAdmin)
			}
		})
	}
}

func TestCheckDeleteCapability(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		targetChatID int64
		member       *models.ChatMember
		err          error
		wantDelete   bool
		wantErr      bool
	}{
		{
			name:         "no target chat assumes capability",
			targetChatID: 0,
			wantDelete:   true,
		},
		{
			name:         "owner can delete",
			targetChatID: -100,
			member:       &models.ChatMember{Type: models.ChatMemberTypeOwner},
			wantDelete:   true,
		},
		{
			name:         "administrator with delete rights",
			targetChatID: -100,
			member: &models.ChatMember{
				Type:          models.ChatMemberTypeAdministrator,
				Administrator: &models.ChatMemberAdministrator{CanDeleteMessages: true},
			},
			wantDelete: true,
		},
		{
			name:         "administrator without delete rights",
			targetChatID: -100,
			member: &models.ChatMember{
				Type:          models.ChatMemberTypeAdministrator,
				Administrator: &models.ChatMemberAdministrator{},
			},
			wantDelete: false,
		},
		{
			name:         "plain member cannot delete",
			targetChatID: -100,
			member:       &models.ChatMember{Type: models.ChatMemberTypeMember},
			wantDelete:   false,
		},
		{
			name:         "lookup failure is a startup error",
			targetChatID: -100,
			err:          errors.New("getChatMember: timeout"),
			wantErr:      true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			capability, err := CheckDeleteCapability(context.Background(),
				&fakeMemberAPI{member: tc.member, err: tc.err}, tc.targetChatID, 999, nil)

			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("CheckDeleteCapability: %v", err)
			}
			if capability.CanDelete != tc.wantDelete {
				t.Errorf("CanDelete = %v, want %v (%s)", capability.CanDelete, tc.wantDelete, capability.Detail)
			}
		})
	}
}
