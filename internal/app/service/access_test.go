package service

import (
	"context"
	"testing"

	"guildchat/internal/app/model"
	"guildchat/internal/pkg/errs"
)

func TestRoomAccessCanJoin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	server, err := f.svc.CreateServer(ctx, alice.ID, CreateServerInput{Name: "Gophers"})
	if err != nil {
		t.Fatalf("CreateServer() failed: %v", err)
	}
	channelID := server.Channels[0].ID

	tests := []struct {
		name     string
		user     string
		room     string
		wantCode int
	}{
		{"own personal room", bob.ID, bob.ID, 0},
		{"other personal room", bob.ID, alice.ID, errs.ErrRoomForbidden},
		{"member channel", alice.ID, channelID, 0},
		{"member server", alice.ID, server.ID, 0},
		{"non-member channel", bob.ID, channelID, errs.ErrRoomForbidden},
		{"non-member server", bob.ID, server.ID, errs.ErrRoomForbidden},
		{"own DM", bob.ID, model.DMChannelID(alice.ID, bob.ID), 0},
		{"foreign DM", bob.ID, model.DMChannelID(alice.ID, "usercarol"), errs.ErrRoomForbidden},
		{"unknown room", bob.ID, "nothing-here", errs.ErrRoomNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := f.access.CanJoin(ctx, tc.user, tc.room)
			if tc.wantCode == 0 {
				if err != nil {
					t.Errorf("CanJoin() error = %v, want nil", err)
				}
				return
			}
			if !errs.IsCode(err, tc.wantCode) {
				t.Errorf("CanJoin() error = %v, want code %d", err, tc.wantCode)
			}
		})
	}
}
