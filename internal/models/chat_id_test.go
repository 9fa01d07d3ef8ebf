package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseChatID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ChatID
		wantErr bool
	}{
		{name: "general", input: "general", want: ChatID{Kind: ChatGeneral}},
		{name: "private canonical", input: "private_3_7", want: ChatID{Kind: ChatPrivate, User1: 3, User2: 7}},
		{name: "private reversed normalizes", input: "private_7_3", want: ChatID{Kind: ChatPrivate, User1: 3, User2: 7}},
		{name: "group", input: "group_5", want: ChatID{Kind: ChatGroup, GroupID: 5}},
		{name: "private equal ids", input: "private_4_4", wantErr: true},
		{name: "private negative id", input: "private_-1_3", wantErr: true},
		{name: "private missing part", input: "private_3", wantErr: true},
		{name: "private junk", input: "private_a_b", wantErr: true},
		{name: "group junk", input: "group_x", wantErr: true},
		{name: "unknown prefix", input: "room_1", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseChatID(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidChatID)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestChatIDStringRoundTrip(t *testing.T) {
	for _, s := range []string{"general", "private_3_7", "group_5"} {
		id, err := ParseChatID(s)
		require.NoError(t, err)
		require.Equal(t, s, id.String())
	}
}

func TestReversedPrivateIDNamesSameRoom(t *testing.T) {
	a, err := ParseChatID("private_3_7")
	require.NoError(t, err)
	b, err := ParseChatID("private_7_3")
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Equal(t, "private_3_7", b.String())
}

func TestPrivateChatIDIncludes(t *testing.T) {
	id, err := PrivateChatID(7, 3)
	require.NoError(t, err)
	require.True(t, id.Includes(3))
	require.True(t, id.Includes(7))
	require.False(t, id.Includes(5))

	require.False(t, GeneralChatID().Includes(3))
}
