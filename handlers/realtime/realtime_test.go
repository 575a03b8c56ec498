package realtime

import (
	"testing"

	"document-manager/core"

	"github.com/stretchr/testify/assert"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

func TestRoomFromPayload(t *testing.T) {
	tests := []struct {
		name  string
		datas []any
		want  socketio.Room
		ok    bool
	}{
		{name: "document room", datas: []any{"document:01HX"}, want: "document:01HX", ok: true},
		{name: "author room", datas: []any{"author:a1", "extra"}, want: "author:a1", ok: true},
		{name: "no payload", datas: nil},
		{name: "not a string", datas: []any{42}},
		{name: "bare prefix", datas: []any{"author:"}},
		{name: "other room", datas: []any{"documents"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := roomFromPayload(tt.datas)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRooms(t *testing.T) {
	assert.Equal(t,
		[]socketio.Room{"documents", "document:d1", "author:a1"},
		rooms(&core.Document{ID: "d1", Author: &core.Author{ID: "a1"}}),
	)
	assert.Equal(t,
		[]socketio.Room{"documents", "document:d2"},
		rooms(&core.Document{ID: "d2"}),
	)
}
