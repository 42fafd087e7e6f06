package inkpress

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// liveReloadScript is injected into served HTML pages when livereload is
// enabled. It reconnects after the rebuild-triggered reload.
const liveReloadScript = `(function () {
  function connect() {
    var ws = new WebSocket("ws://" + location.host + "/livereload");
    ws.onmessage = function () { location.reload(); };
    ws.onclose = function () { setTimeout(connect, 1000); };
  }
  connect();
})();
`

// reloadHub tracks connected preview browsers and tells them to reload after
// a rebuild. Preview-only: nothing here ends up in the built output.
type reloadHub struct {
	mu       sync.Mutex
	conns    map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
}

func newReloadHub() *reloadHub {
	return &reloadHub{
		conns: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			// The preview server binds locally; cross-origin pages cannot
			// do anything useful with a reload-only socket.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *reloadHub) handle(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil
	}
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	// Reader loop: we never expect client messages, but reading is how we
	// learn the browser went away.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}

func (h *reloadHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}

// broadcast tells every connected browser to reload.
func (h *reloadHub) broadcast() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, []byte("reload")); err != nil {
			h.drop(conn)
		}
	}
}
