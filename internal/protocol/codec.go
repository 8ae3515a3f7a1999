package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/avdeyev/storeserv/internal/catalog"
)

// ErrMalformed means a payload's declared structure does not fit the bytes
// actually present. Embedded counts and lengths are never trusted: every read
// is bounds-checked first.
var ErrMalformed = errors.New("malformed message")

// PurchaseRequest references an item by position in the catalog the client
// last received. The server re-resolves it against the current catalog; the
// indices carry no meaning of their own.
type PurchaseRequest struct {
	TabIndex  uint32
	ItemIndex uint32
}

// byteReader walks a payload with explicit bounds checks.
type byteReader struct {
	buf []byte
	off int
}

func (r *byteReader) uint32() (uint32, error) {
	if len(r.buf)-r.off < 4 {
		return 0, fmt.Errorf("%w: want 4 bytes at offset %d, have %d", ErrMalformed, r.off, len(r.buf)-r.off)
	}

	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4

	return v, nil
}

func (r *byteReader) int32() (int32, error) {
	v, err := r.uint32()

	return int32(v), err
}

func (r *byteReader) string() (string, error) {
	n, err := r.uint32()
	if err != nil {
		return "", err
	}

	if uint64(n) > uint64(len(r.buf)-r.off) {
		return "", fmt.Errorf("%w: string of %d bytes at offset %d exceeds payload", ErrMalformed, n, r.off)
	}

	s := string(r.buf[r.off : r.off+int(n)])
	r.off += int(n)

	return s, nil
}

// remaining reports unread bytes. Decoders reject trailing garbage so a
// concatenated or shifted payload never decodes silently.
func (r *byteReader) remaining() int {
	return len(r.buf) - r.off
}

type byteWriter struct {
	buf []byte
}

func (w *byteWriter) uint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *byteWriter) int32(v int32) {
	w.uint32(uint32(v))
}

func (w *byteWriter) string(s string) {
	w.uint32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// EncodeCatalog serializes a catalog: tab count, then per tab an item count
// followed by that tab's items in order.
func EncodeCatalog(c *catalog.Catalog) []byte {
	w := &byteWriter{}
	w.uint32(uint32(len(c.Tabs)))

	for _, tab := range c.Tabs {
		w.uint32(uint32(len(tab.Items)))

		for _, it := range tab.Items {
			w.uint32(it.ID)
			w.uint32(it.Flags)
			w.uint32(it.Cost)
			w.string(it.Name)
			w.string(it.Description)
			w.uint32(it.Category)
			w.uint32(it.PurchaseID)
			w.uint32(it.ExtraID)
		}
	}

	return w.buf
}

// DecodeCatalog is the inverse of EncodeCatalog. It fails with ErrMalformed
// if any declared count would read past the end of the payload.
func DecodeCatalog(payload []byte) (*catalog.Catalog, error) {
	r := &byteReader{buf: payload}

	tabCount, err := r.uint32()
	if err != nil {
		return nil, fmt.Errorf("tab count: %w", err)
	}

	c := &catalog.Catalog{Tabs: make([]catalog.Tab, 0, min(int(tabCount), 64))}

	for i := uint32(0); i < tabCount; i++ {
		itemCount, err := r.uint32()
		if err != nil {
			return nil, fmt.Errorf("tab %d item count: %w", i, err)
		}

		tab := catalog.Tab{Items: make([]catalog.Item, 0, min(int(itemCount), 256))}

		for j := uint32(0); j < itemCount; j++ {
			it, err := decodeItem(r)
			if err != nil {
				return nil, fmt.Errorf("tab %d item %d: %w", i, j, err)
			}

			tab.Items = append(tab.Items, it)
		}

		c.Tabs = append(c.Tabs, tab)
	}

	if r.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, r.remaining())
	}

	return c, nil
}

func decodeItem(r *byteReader) (catalog.Item, error) {
	var (
		it  catalog.Item
		err error
	)

	if it.ID, err = r.uint32(); err != nil {
		return it, fmt.Errorf("id: %w", err)
	}
	if it.Flags, err = r.uint32(); err != nil {
		return it, fmt.Errorf("flags: %w", err)
	}
	if it.Cost, err = r.uint32(); err != nil {
		return it, fmt.Errorf("cost: %w", err)
	}
	if it.Name, err = r.string(); err != nil {
		return it, fmt.Errorf("name: %w", err)
	}
	if it.Description, err = r.string(); err != nil {
		return it, fmt.Errorf("description: %w", err)
	}
	if it.Category, err = r.uint32(); err != nil {
		return it, fmt.Errorf("category: %w", err)
	}
	if it.PurchaseID, err = r.uint32(); err != nil {
		return it, fmt.Errorf("purchase id: %w", err)
	}
	if it.ExtraID, err = r.uint32(); err != nil {
		return it, fmt.Errorf("extra id: %w", err)
	}

	return it, nil
}

// EncodePurchase serializes a purchase request.
func EncodePurchase(req PurchaseRequest) []byte {
	w := &byteWriter{}
	w.uint32(req.TabIndex)
	w.uint32(req.ItemIndex)

	return w.buf
}

// DecodePurchase is the inverse of EncodePurchase.
func DecodePurchase(payload []byte) (PurchaseRequest, error) {
	r := &byteReader{buf: payload}

	var req PurchaseRequest

	var err error
	if req.TabIndex, err = r.uint32(); err != nil {
		return req, fmt.Errorf("tab index: %w", err)
	}
	if req.ItemIndex, err = r.uint32(); err != nil {
		return req, fmt.Errorf("item index: %w", err)
	}

	if r.remaining() != 0 {
		return req, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, r.remaining())
	}

	return req, nil
}

// EncodePoints serializes a point balance. The wire type is signed for
// historical reasons; the ledger floors loads at zero, so negative values
// never actually cross the wire.
func EncodePoints(points int32) []byte {
	w := &byteWriter{}
	w.int32(points)

	return w.buf
}

// DecodePoints is the inverse of EncodePoints.
func DecodePoints(payload []byte) (int32, error) {
	r := &byteReader{buf: payload}

	points, err := r.int32()
	if err != nil {
		return 0, fmt.Errorf("points: %w", err)
	}

	if r.remaining() != 0 {
		return 0, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, r.remaining())
	}

	return points, nil
}

// EncodeText serializes a generic text message. The opcode is carried by the
// frame, not the payload; text may be empty for bare "request X" signals.
func EncodeText(text string) []byte {
	w := &byteWriter{}
	w.string(text)

	return w.buf
}

// DecodeText is the inverse of EncodeText.
func DecodeText(payload []byte) (string, error) {
	r := &byteReader{buf: payload}

	text, err := r.string()
	if err != nil {
		return "", fmt.Errorf("text: %w", err)
	}

	if r.remaining() != 0 {
		return "", fmt.Errorf("%w: %d trailing bytes", ErrMalformed, r.remaining())
	}

	return text, nil
}
