package server

import (
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/scenechat/internal/chat"
	"github.com/danielpatrickdp/scenechat/internal/surface"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// #region serve-ws
// serveWS runs one page: commands come in on the read loop, surface events
// go out on the write loop. The page is closed when either side ends.
func (s *Server) serveWS(conn *websocket.Conn) {
	conv := s.factory.Open()
	s.pages.Add(conv)
	log := s.log.With(zap.String("page", conv.ID))
	log.Info("page opened")

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writePump(conn, conv, log)
	}()

	s.readPump(conn, conv, log)
	s.pages.Remove(conv.ID)
	<-writerDone
	log.Info("page closed")
}

func (s *Server) readPump(conn *websocket.Conn, conv *chat.Conversation, log *zap.Logger) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("read failed", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		s.pages.Touch(conv.ID)

		var cmd surface.Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			log.Debug("bad command", zap.Error(err))
			continue
		}
		if err := conv.Dispatch(cmd); err != nil {
			log.Debug("command rejected", zap.Error(err))
		}
	}
}

// writePump drains the conversation's events. When the conversation
// closes (page removed or evicted) it says goodbye and closes the socket,
// which ends the read loop.
func (s *Server) writePump(conn *websocket.Conn, conv *chat.Conversation, log *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	events := conv.Events()
	for {
		select {
		case ev, ok := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				log.Debug("write failed", zap.Error(err))
				conv.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conv.Close()
				return
			}
		}
	}
}

// #endregion serve-ws
