package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"

	"pacjudge/wire"
)

const (
	replayWriteWait    = 1 * time.Second
	replayPubInterval  = 150 * time.Millisecond
	replayPingInterval = 200 * time.Millisecond
	replayPongWait     = replayPingInterval * 4
)

var replayUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ErrPongDeadlineExceeded is returned by a replay client when the peer
// stops answering pings.
var ErrPongDeadlineExceeded = errors.New("httpapi: replay client disconnected, pong deadline exceeded")

// replayClient streams a finite sequence of wire.Step values to one
// websocket peer at a fixed pace, then closes. It is parameterized the
// way a generic paced websocket publisher drains a live update channel,
// but here the sequence is fixed in advance: a submission's steps are
// already known once evaluation has run, so replay just paces their
// delivery instead of reacting to new arrivals.
type replayClient struct {
	steps []wire.Step
	ws    *websocket.Conn
	mu    sync.Mutex // serializes writes; gorilla/websocket forbids concurrent writers
}

func newReplayClient(w http.ResponseWriter, r *http.Request, steps []wire.Step) (*replayClient, error) {
	ws, err := replayUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("httpapi: websocket upgrade: %w", err)
	}
	return &replayClient{steps: steps, ws: ws}, nil
}

// Run drives the replay to completion: every step is written in order,
// paced by replayPubInterval, while a ping/pong loop detects a dead
// peer and a read pump drains client-initiated close frames. Run
// returns when the replay finishes or the connection is lost.
func (c *replayClient) Run(ctx context.Context) error {
	defer c.ws.Close()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return c.readPump(groupCtx) })
	group.Go(func() error { return c.pingPong(groupCtx) })
	group.Go(func() error { return c.publish(groupCtx) })
	return group.Wait()
}

func (c *replayClient) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(replayWriteWait)); err != nil {
		return err
	}
	return c.ws.WriteJSON(v)
}

func (c *replayClient) writeControl(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(messageType, data, time.Now().Add(replayWriteWait))
}

// publish streams every step in order, then sends a normal closure.
func (c *replayClient) publish(ctx context.Context) error {
	ticker := channerics.NewTicker(ctx.Done(), replayPubInterval)
	i := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker:
			if i >= len(c.steps) {
				_ = c.writeControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			}
			if err := c.writeJSON(c.steps[i]); err != nil {
				if isUnexpectedClose(err) {
					return fmt.Errorf("httpapi: replay publish: %w", err)
				}
				return nil
			}
			i++
		}
	}
}

// pingPong sends periodic pings and bails out once the peer has missed
// too many pongs in a row.
func (c *replayClient) pingPong(ctx context.Context) error {
	pong := make(chan struct{}, 1)
	c.ws.SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	ticker := channerics.NewTicker(ctx.Done(), replayPingInterval)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker:
			if time.Since(lastPong) > replayPongWait {
				return ErrPongDeadlineExceeded
			}
			if err := c.writeControl(websocket.PingMessage, nil); err != nil && isUnexpectedClose(err) {
				return err
			}
		case <-pong:
			lastPong = time.Now()
		}
	}
}

// readPump exists only to drive gorilla/websocket's control-frame
// handling (pong callbacks fire from inside ReadMessage); replay
// clients never send anything meaningful. An unexpected close error is
// returned and tears the whole group down; any other read error just
// ends the pump without cancelling the other goroutines.
func (c *replayClient) readPump(ctx context.Context) error {
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if isUnexpectedClose(err) {
				return err
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}

func isUnexpectedClose(err error) bool {
	return err != nil && websocket.IsUnexpectedCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
	)
}
