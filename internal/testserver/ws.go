package testserver

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/protocol"
)

// ReplyFunc produces the assistant answer to a chat message.
type ReplyFunc func(msg protocol.ChatMessage) (string, error)

// EchoReply answers with the personality and the user's text.
func EchoReply(msg protocol.ChatMessage) (string, error) {
	return fmt.Sprintf("(%s) You said: %s", msg.Personality, msg.Message), nil
}

func (s *Server) handleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Warn("failed to upgrade websocket", zap.Error(err))
		return err
	}

	conn := s.hub.NewConnection(ws)
	s.hub.Register(conn)
	ws.SetReadLimit(64 * 1024)

	s.wg.Add(2)
	go s.writePump(conn)
	go s.readPump(conn)

	ack := protocol.ConnectedMessage{
		BaseMessage: protocol.NewBase(protocol.TypeConnected, s.now()),
		Data:        json.RawMessage(`{"status":"connected"}`),
	}
	s.hub.SendJSON(conn, ack)
	return nil
}

func (s *Server) readPump(conn *Connection) {
	defer s.wg.Done()
	defer func() {
		s.hub.Unregister(conn)
		conn.Conn.Close()
	}()

	for {
		_, data, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket closed", zap.Error(err))
			}
			return
		}
		s.handleFrame(conn, data)
	}
}

func (s *Server) writePump(conn *Connection) {
	defer s.wg.Done()
	defer conn.Conn.Close()

	for message := range conn.Send {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			s.logger.Debug("failed to write message", zap.Error(err))
			return
		}
	}
	conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (s *Server) handleFrame(conn *Connection, data []byte) {
	frame, err := protocol.Decode(data)
	if err != nil {
		s.sendError(conn, "invalid message")
		return
	}
	msg, ok := frame.(*protocol.ChatMessage)
	if !ok {
		s.sendError(conn, "unsupported frame type")
		return
	}

	s.mu.Lock()
	s.received = append(s.received, *msg)
	reply := s.reply
	target := s.findSession(s.touched)
	if target != nil {
		target.history = append(target.history, domain.HistoryRecord{
			User: true, Content: msg.Message, Timestamp: s.now().Format(timestampLayout),
		})
	}
	s.mu.Unlock()

	text, err := reply(*msg)
	if err != nil {
		s.sendError(conn, err.Error())
		return
	}

	s.mu.Lock()
	if target != nil {
		target.history = append(target.history, domain.HistoryRecord{
			User: false, Content: text, Timestamp: s.now().Format(timestampLayout),
		})
	}
	s.mu.Unlock()

	partial := protocol.ResponseMessage{BaseMessage: protocol.NewBase(protocol.TypeResponse, s.now()), Done: false, Data: text}
	final := protocol.ResponseMessage{BaseMessage: protocol.NewBase(protocol.TypeResponse, s.now()), Done: true, Data: text}
	s.hub.SendJSON(conn, partial)
	s.hub.SendJSON(conn, final)
}

func (s *Server) sendError(conn *Connection, text string) {
	s.hub.SendJSON(conn, protocol.ErrorMessage{
		BaseMessage: protocol.NewBase(protocol.TypeError, s.now()),
		Data:        text,
	})
}
