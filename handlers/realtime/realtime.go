// Package realtime pushes document changes to Socket.IO clients.
//
// Every client joins the "documents" room on connect. Clients emit "subscribe"
// with a room name built by DocumentRoom or AuthorRoom to narrow what they
// receive, and "unsubscribe" to leave it again.
package realtime

import (
	"strings"

	"document-manager/core"

	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io/v2/types"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

const (
	EventSubscribe     = "subscribe"
	EventUnsubscribe   = "unsubscribe"
	EventDocumentSaved = "document-saved"

	RoomAll socketio.Room = "documents"

	documentRoomPrefix = "document:"
	authorRoomPrefix   = "author:"
)

func DocumentRoom(id string) socketio.Room {
	return socketio.Room(documentRoomPrefix + id)
}

func AuthorRoom(id string) socketio.Room {
	return socketio.Room(authorRoomPrefix + id)
}

// roomFromPayload extracts the room a client asked for. Only document and
// author rooms can be joined explicitly.
func roomFromPayload(datas []any) (socketio.Room, bool) {
	if len(datas) == 0 {
		return "", false
	}
	name, ok := datas[0].(string)
	if !ok {
		return "", false
	}
	for _, prefix := range []string{documentRoomPrefix, authorRoomPrefix} {
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			return socketio.Room(name), true
		}
	}
	return "", false
}

// NewServer creates the Socket.IO server. Mount ServeHandler(nil) at /socket.io/.
func NewServer() *socketio.Server {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(1000000)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	ioo := socketio.NewServer(nil, opts)
	ioo.On("connection", func(clients ...any) {
		socket := clients[0].(*socketio.Socket)
		log := logrus.WithField("socket_id", socket.Id())
		socket.Join(RoomAll)
		log.Debug("Socket connected")

		socket.On(EventSubscribe, func(datas ...any) {
			room, ok := roomFromPayload(datas)
			if !ok {
				log.WithField("payload", datas).Warn("Ignoring invalid subscribe request")
				return
			}
			socket.Join(room)
			log.WithField("room", room).Debug("Socket subscribed")
		})
		socket.On(EventUnsubscribe, func(datas ...any) {
			room, ok := roomFromPayload(datas)
			if !ok {
				return
			}
			socket.Leave(room)
			log.WithField("room", room).Debug("Socket unsubscribed")
		})
		socket.On("disconnect", func(datas ...any) {
			socket.RemoveAllListeners("")
			log.Debug("Socket disconnected")
		})
	})
	return ioo
}

// Broadcaster announces saved documents to the rooms interested in them.
type Broadcaster struct {
	server *socketio.Server
}

func NewBroadcaster(server *socketio.Server) *Broadcaster {
	return &Broadcaster{server: server}
}

func rooms(document *core.Document) []socketio.Room {
	r := []socketio.Room{RoomAll, DocumentRoom(document.ID)}
	if document.Author != nil && document.Author.ID != "" {
		r = append(r, AuthorRoom(document.Author.ID))
	}
	return r
}

func (b *Broadcaster) DocumentSaved(document *core.Document) {
	if err := b.server.To(rooms(document)...).Emit(EventDocumentSaved, document); err != nil {
		logrus.WithFields(logrus.Fields{
			"document_id": document.ID,
			"error":       err,
		}).Warn("Failed to broadcast saved document")
	}
}
