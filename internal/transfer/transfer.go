package transfer

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/joshhsoj1902/retro-stats-exporter/internal/logger"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/settings"
	"github.com/sirupsen/logrus"
)

// DefaultChunkSize is used whenever a caller passes no chunk size
const DefaultChunkSize = 1000

var (
	// ErrProtocolMisuse is returned in strict mode for chunk calls that do
	// not follow the announced transfer
	ErrProtocolMisuse = errors.New("chunk transfer protocol misuse")

	// ErrMalformedDocument is returned when a completed inbound buffer is not
	// a JSON object
	ErrMalformedDocument = errors.New("transferred document is not a JSON object")
)

type State int

const (
	Idle State = iota
	Receiving
	Sending
)

func (s State) String() string {
	switch s {
	case Receiving:
		return "receiving"
	case Sending:
		return "sending"
	}
	return "idle"
}

// Store is the document the protocol reads from and writes to
type Store interface {
	Document() (map[string]any, error)
	ReplaceDocument(doc map[string]any) error
}

type Option func(*Transfer)

// WithStrict rejects chunks that arrive out of order, past the announced
// count, or while no transfer is in progress
func WithStrict(strict bool) Option {
	return func(t *Transfer) {
		t.strict = strict
	}
}

func WithMetrics(m *Metrics) Option {
	return func(t *Transfer) {
		t.metrics = m
	}
}

// Transfer moves one JSON document at a time across a channel with a
// message size limit. It is single-flight: starting a transfer discards any
// unfinished one. Transfer does no locking; callers must serialize calls.
type Transfer struct {
	store   Store
	strict  bool
	metrics *Metrics

	state     State
	chunkSize int
	total     int
	next      int
	inbound   bytes.Buffer
	outbound  []rune
}

func New(store Store, opts ...Option) *Transfer {
	t := &Transfer{
		store:     store,
		chunkSize: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Transfer) State() State {
	return t.state
}

// StartReceive announces an inbound document of total chunks
func (t *Transfer) StartReceive(total, chunkSize int) error {
	t.abandon()
	if t.strict && total <= 0 {
		return fmt.Errorf("%w: inbound transfer of %d chunks", ErrProtocolMisuse, total)
	}

	t.state = Receiving
	t.total = total
	t.chunkSize = chunkSizeOrDefault(chunkSize)
	t.metrics.started(directionReceive)

	logger.Log.WithFields(logrus.Fields{
		"chunks":     total,
		"chunk_size": t.chunkSize,
	}).Debug("Started receiving document")
	return nil
}

// ReceiveChunk appends data to the inbound buffer. The chunk at the last
// announced index completes the transfer: the buffer is parsed and handed to
// the store, and true is returned.
func (t *Transfer) ReceiveChunk(index int, data string) (bool, error) {
	if t.strict {
		if err := t.checkIndex(Receiving, index); err != nil {
			return false, err
		}
	}

	// An inbound chunk ends any outbound transfer; it is then handled as if
	// nothing had been announced
	if t.state == Sending {
		t.abandon()
	}

	t.inbound.WriteString(data)
	t.next = index + 1
	if index < t.total-1 {
		return false, nil
	}

	size := t.inbound.Len()
	doc, err := settings.Decode(t.inbound.Bytes())
	t.clear()
	if err != nil {
		t.metrics.aborted(directionReceive)
		logger.Log.WithError(err).WithField("bytes", size).Error("Received document is not valid JSON")
		return false, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	if err := t.store.ReplaceDocument(doc); err != nil {
		t.metrics.aborted(directionReceive)
		return false, fmt.Errorf("failed to store received document: %w", err)
	}

	t.metrics.completed(directionReceive)
	logger.Log.WithField("bytes", size).Info("Received document stored")
	return true, nil
}

// StartSend serializes the current document and returns how many chunks of
// chunkSize characters the caller has to fetch
func (t *Transfer) StartSend(chunkSize int) (int, error) {
	t.abandon()

	doc, err := t.store.Document()
	if err != nil {
		return 0, fmt.Errorf("failed to read document: %w", err)
	}
	encoded, err := settings.Encode(doc)
	if err != nil {
		return 0, err
	}

	t.state = Sending
	t.chunkSize = chunkSizeOrDefault(chunkSize)
	t.outbound = []rune(string(encoded))
	t.total = (len(t.outbound) + t.chunkSize - 1) / t.chunkSize
	t.metrics.started(directionSend)

	logger.Log.WithFields(logrus.Fields{
		"chunks":     t.total,
		"chunk_size": t.chunkSize,
		"characters": len(t.outbound),
	}).Debug("Started sending document")
	return t.total, nil
}

// SendChunk returns the chunk at index. The last index returns the rest of
// the document and ends the transfer.
func (t *Transfer) SendChunk(index int) (string, error) {
	if t.strict {
		if err := t.checkIndex(Sending, index); err != nil {
			return "", err
		}
	}

	t.next = index + 1
	if index < t.total-1 {
		return t.slice(index*t.chunkSize, (index+1)*t.chunkSize), nil
	}

	chunk := t.slice(index*t.chunkSize, len(t.outbound))
	if t.state == Sending {
		t.metrics.completed(directionSend)
	}
	t.clear()
	return chunk, nil
}

// Reset drops any transfer in progress and restores the default chunk size
func (t *Transfer) Reset() {
	t.abandon()
	t.chunkSize = DefaultChunkSize
}

func (t *Transfer) checkIndex(want State, index int) error {
	var err error
	switch {
	case t.state != want:
		err = fmt.Errorf("%w: chunk %d while %s", ErrProtocolMisuse, index, t.state)
	case index != t.next:
		err = fmt.Errorf("%w: chunk %d, expected %d", ErrProtocolMisuse, index, t.next)
	case index >= t.total:
		err = fmt.Errorf("%w: chunk %d of %d", ErrProtocolMisuse, index, t.total)
	}
	if err != nil {
		logger.Log.WithError(err).Warn("Aborting chunk transfer")
		t.abandon()
	}
	return err
}

func (t *Transfer) slice(from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(t.outbound) {
		to = len(t.outbound)
	}
	if from >= to {
		return ""
	}
	return string(t.outbound[from:to])
}

// abandon clears an unfinished transfer, counting it as aborted
func (t *Transfer) abandon() {
	switch t.state {
	case Receiving:
		t.metrics.aborted(directionReceive)
	case Sending:
		t.metrics.aborted(directionSend)
	}
	t.clear()
}

func (t *Transfer) clear() {
	t.state = Idle
	t.total = 0
	t.next = 0
	t.inbound.Reset()
	t.outbound = nil
}

func chunkSizeOrDefault(size int) int {
	if size <= 0 {
		return DefaultChunkSize
	}
	return size
}
