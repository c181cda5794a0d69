package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/riversolver/poker"
	"github.com/lox/riversolver/solver"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection wraps a single WebSocket client running at most one solve at a
// time: each solve_request message runs synchronously on its own goroutine,
// streaming progress frames back until the final result frame.
type Connection struct {
	conn        *websocket.Conn
	send        chan *Message
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.Mutex
	closeOnce   sync.Once
	solving     bool
	clock       quartz.Clock
	connectedAt time.Time
}

// NewConnection wraps an upgraded WebSocket connection, stamping its
// lifetime off the real clock.
func NewConnection(conn *websocket.Conn, logger *log.Logger) *Connection {
	return NewConnectionWithClock(conn, logger, quartz.NewReal())
}

// NewConnectionWithClock is NewConnection with an injectable clock, so
// tests can control the timestamp a connection reports its own lifetime
// against with a quartz.Mock instead of depending on real wall-clock time.
func NewConnectionWithClock(conn *websocket.Conn, logger *log.Logger, clock quartz.Clock) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:        conn,
		send:        make(chan *Message, 256),
		logger:      logger.WithPrefix("conn"),
		ctx:         ctx,
		cancel:      cancel,
		clock:       clock,
		connectedAt: clock.Now(),
	}
}

// Start begins the read and write pumps.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close tears the connection down, safe to call more than once.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.logger.Debug("connection closing", "duration", c.clock.Now().Sub(c.connectedAt))
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage enqueues a message for delivery, closing the connection if the
// send buffer is full rather than blocking the caller indefinitely.
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug("send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket read error", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("websocket write error", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) handleMessage(msg *Message) {
	switch msg.Type {
	case MessageTypeSolveRequest:
		var data SolveRequestData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse solve_request data")
			return
		}
		go c.handleSolveRequest(msg.RequestID, data)
	default:
		c.sendError("unknown_message_type", "unknown message type: "+msg.Type.String())
	}
}

// handleSolveRequest runs one solve to completion on the calling goroutine,
// refusing a second concurrent request on the same connection rather than
// queueing it: each connection drives at most one in-flight solve.
func (c *Connection) handleSolveRequest(requestID string, data SolveRequestData) {
	c.mu.Lock()
	if c.solving {
		c.mu.Unlock()
		c.sendError("solve_in_progress", "a solve is already running on this connection")
		return
	}
	c.solving = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.solving = false
		c.mu.Unlock()
	}()

	cfg, err := toSolverConfig(data)
	if err != nil {
		c.sendError("invalid_scenario", err.Error())
		return
	}

	cfg.OnProgress = func(iteration int, objective float64) {
		progress, err := NewMessage(MessageTypeProgress, ProgressData{Iteration: iteration, Objective: objective})
		if err != nil {
			return
		}
		progress.RequestID = requestID
		_ = c.SendMessage(progress)
	}

	res, err := solver.Solve(cfg)
	if err != nil {
		c.sendError("solve_failed", err.Error())
		return
	}

	result, err := NewMessage(MessageTypeResult, ResultData{
		Objective: res.Objective,
		Status:    res.Status.String(),
		Success:   res.Success,
		Variables: res.Variables,
	})
	if err != nil {
		c.logger.Error("failed to build result message", "error", err)
		return
	}
	result.RequestID = requestID
	_ = c.SendMessage(result)
}

func toSolverConfig(data SolveRequestData) (solver.Config, error) {
	cfg := solver.DefaultConfig()

	board, err := poker.ParseBoard(data.Board)
	if err != nil {
		return cfg, err
	}
	heroRange, err := poker.ParseRange(data.HeroRange)
	if err != nil {
		return cfg, err
	}
	villainRange, err := poker.ParseRange(data.VillainRange)
	if err != nil {
		return cfg, err
	}

	cfg.Board = board
	cfg.HeroRange = heroRange
	cfg.VillainRange = villainRange
	if data.HeroSide == "ip" {
		cfg.HeroSide = solver.IP
	} else {
		cfg.HeroSide = solver.OOP
	}
	if data.BetSize > 0 {
		cfg.BetSize = data.BetSize
	}
	if data.StackSize > 0 {
		cfg.StackSize = data.StackSize
	}
	if data.StartingPot > 0 {
		cfg.StartingPot = data.StartingPot
	}
	if data.MaxIterations > 0 {
		cfg.MaxIterations = data.MaxIterations
	}
	return cfg, cfg.Validate()
}

func (c *Connection) sendError(code, message string) {
	errMsg, err := NewMessage(MessageTypeError, ErrorData{Code: code, Message: message})
	if err != nil {
		c.logger.Error("failed to build error message", "error", err)
		return
	}
	_ = c.SendMessage(errMsg)
}
