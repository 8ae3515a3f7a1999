package gateway

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"math"
	"net"

	"github.com/avdeyev/storeserv/internal/catalog"
	"github.com/avdeyev/storeserv/internal/protocol"
	"github.com/avdeyev/storeserv/internal/repos/accounts"
)

// Rejection texts shown to players. Short and human-readable; internal error
// detail stays in the logs, never on the wire.
const (
	msgItemNotFound  = "Store Item Not Found"
	msgNotEnough     = "You do not have enough points."
	msgUnknownAcct   = "Unknown account."
	msgTryLater      = "The store is unavailable right now. Please try again later."
	msgBadRequest    = "Malformed store request."
	msgUnsupportedOp = "Unsupported store request."
)

type session struct {
	conn      net.Conn
	accountID uint32
}

// handleConn runs one connection end to end: handshake, initial points push,
// then the serial frame loop.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	ctx := context.Background()

	sess, ok := s.handshake(ctx, conn)
	if !ok {
		return
	}

	slog.Info("session started", "account_id", sess.accountID, logAddr(conn))

	for {
		frame, err := protocol.ReadFrame(conn)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				slog.Info("session closed", "account_id", sess.accountID, logAddr(conn))
			case errors.Is(err, net.ErrClosed):
				// Server shutdown closed the socket under us.
			case errors.Is(err, protocol.ErrMalformed):
				// A connection that cannot frame correctly gets no
				// further service.
				slog.Warn("malformed framing, disconnecting",
					"account_id", sess.accountID, logAddr(conn), "error", err)
				_ = protocol.WriteFrame(conn, errorFrame(msgBadRequest))
			default:
				slog.Warn("read failed", "account_id", sess.accountID, logAddr(conn), "error", err)
			}

			return
		}

		// One frame at a time: the response is fully written before the
		// next request is read, preserving per-connection order.
		resp := s.handleFrame(ctx, sess, frame)

		err = protocol.WriteFrame(conn, resp)
		if err != nil {
			slog.Warn("write failed", "account_id", sess.accountID, logAddr(conn), "error", err)

			return
		}
	}
}

// handshake binds the connection to an account. The client opens with its
// account id as a raw little-endian uint32, deliberately outside the opcode
// space reserved for store messages. On success the account's
// balance is force-loaded and pushed, mirroring the login flow.
func (s *Server) handshake(ctx context.Context, conn net.Conn) (*session, bool) {
	var raw [4]byte

	_, err := io.ReadFull(conn, raw[:])
	if err != nil {
		slog.Debug("handshake read failed", logAddr(conn), "error", err)

		return nil, false
	}

	accountID := binary.LittleEndian.Uint32(raw[:])

	err = s.accounts.Exists(ctx, accountID)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			slog.Warn("handshake for unknown account", "account_id", accountID, logAddr(conn))
			_ = protocol.WriteFrame(conn, errorFrame(msgUnknownAcct))

			return nil, false
		}

		slog.Error("handshake account lookup failed", "account_id", accountID, logAddr(conn), "error", err)
		_ = protocol.WriteFrame(conn, errorFrame(msgTryLater))

		return nil, false
	}

	points, err := s.ledger.Load(ctx, accountID, true)
	if err != nil {
		slog.Error("handshake balance load failed", "account_id", accountID, logAddr(conn), "error", err)
		_ = protocol.WriteFrame(conn, errorFrame(msgTryLater))

		return nil, false
	}

	err = protocol.WriteFrame(conn, pointsFrame(points))
	if err != nil {
		return nil, false
	}

	return &session{conn: conn, accountID: accountID}, true
}

// handleFrame routes one inbound frame and always produces exactly one
// response frame.
func (s *Server) handleFrame(ctx context.Context, sess *session, f protocol.Frame) protocol.Frame {
	switch f.Op {
	case protocol.OpRequestItems:
		return protocol.Frame{
			Op:      protocol.OpReceiveItems,
			Payload: protocol.EncodeCatalog(s.catalog.Snapshot()),
		}

	case protocol.OpRequestPoints:
		points, err := s.ledger.Load(ctx, sess.accountID, false)
		if err != nil {
			slog.Error("points load failed", "account_id", sess.accountID, "error", err)

			return errorFrame(msgTryLater)
		}

		return pointsFrame(points)

	case protocol.OpBuyItem:
		return s.handleBuy(ctx, sess, f.Payload)

	default:
		slog.Warn("unsupported opcode", "account_id", sess.accountID, "opcode", f.Op.String())

		return errorFrame(msgUnsupportedOp)
	}
}

func (s *Server) handleBuy(ctx context.Context, sess *session, payload []byte) protocol.Frame {
	req, err := protocol.DecodePurchase(payload)
	if err != nil {
		slog.Warn("malformed purchase request", "account_id", sess.accountID, "error", err)

		return errorFrame(msgBadRequest)
	}

	receipt, err := s.purchases.Submit(ctx, sess.accountID, req.TabIndex, req.ItemIndex)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrItemNotFound):
			slog.Info("purchase for unresolvable item",
				"account_id", sess.accountID,
				"tab_index", req.TabIndex,
				"item_index", req.ItemIndex,
			)

			return errorFrame(msgItemNotFound)

		case errors.Is(err, accounts.ErrInsufficientPoints):
			return errorFrame(msgNotEnough)

		default:
			slog.Error("purchase failed", "account_id", sess.accountID, "error", err)

			return errorFrame(msgTryLater)
		}
	}

	slog.Info("purchase fulfilled",
		"account_id", sess.accountID,
		"item_id", receipt.Item.ID,
		"cost", receipt.Item.Cost,
		"points_left", receipt.Points,
	)

	return pointsFrame(receipt.Points)
}

func errorFrame(text string) protocol.Frame {
	return protocol.Frame{Op: protocol.OpError, Payload: protocol.EncodeText(text)}
}

func pointsFrame(points int64) protocol.Frame {
	if points > math.MaxInt32 {
		points = math.MaxInt32
	}

	return protocol.Frame{Op: protocol.OpGetPoints, Payload: protocol.EncodePoints(int32(points))}
}
