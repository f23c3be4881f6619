package events

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingHandler struct {
	types []string
	seen  []Event
	err   error
}

func (h *recordingHandler) CanHandle(eventType string) bool {
	for _, t := range h.types {
		if t == eventType {
			return true
		}
	}
	return false
}

func (h *recordingHandler) Handle(e Event) error {
	h.seen = append(h.seen, e)
	return h.err
}

var at = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestInMemoryEventStore_VersionsPerStream(t *testing.T) {
	store := NewInMemoryEventStore(nil)

	require.NoError(t, store.AppendEvent("node-1", NewEvent(StockReservedEvent, "node-1", nil, at)))
	require.NoError(t, store.AppendEvent("node-2", NewEvent(StockReservedEvent, "node-2", nil, at)))
	require.NoError(t, store.AppendEvent("node-1", NewEvent(StockReleasedEvent, "node-1", nil, at)))

	stream, err := store.ReadEvents("node-1", 0)
	require.NoError(t, err)
	require.Len(t, stream, 2)
	assert.Equal(t, 1, stream[0].Version())
	assert.Equal(t, 2, stream[1].Version())
	assert.Equal(t, StockReleasedEvent, stream[1].Type())

	tail, err := store.ReadEvents("node-1", 2)
	require.NoError(t, err)
	require.Len(t, tail, 1)

	all, err := store.ReadAllEvents(1)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "node-2", all[0].StreamID())

	none, err := store.ReadEvents("unknown", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInMemoryEventStore_NotifiesSubscribers(t *testing.T) {
	store := NewInMemoryEventStore(nil)
	h := &recordingHandler{types: []string{DocumentConfirmedEvent}}
	require.NoError(t, store.Subscribe([]string{DocumentConfirmedEvent}, h))

	require.NoError(t, store.AppendEvent("po-1", NewEvent(DocumentConfirmedEvent, "po-1", nil, at)))
	require.NoError(t, store.AppendEvent("po-1", NewEvent(DocumentCancelledEvent, "po-1", nil, at)))
	require.Len(t, h.seen, 1)

	require.NoError(t, store.Unsubscribe(h))
	require.NoError(t, store.AppendEvent("po-2", NewEvent(DocumentConfirmedEvent, "po-2", nil, at)))
	assert.Len(t, h.seen, 1)
}

func TestInMemoryEventStore_HandlerFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	store := NewInMemoryEventStore(zap.New(core))
	failing := &recordingHandler{types: []string{NodeDeletedEvent}, err: errors.New("audit down")}
	healthy := &recordingHandler{types: []string{NodeDeletedEvent}}
	require.NoError(t, store.Subscribe([]string{NodeDeletedEvent}, failing))
	require.NoError(t, store.Subscribe([]string{NodeDeletedEvent}, healthy))

	require.NoError(t, store.AppendEvent("node-1", NewEvent(NodeDeletedEvent, "node-1", NodeDeleted{NodeIDs: []string{"node-1"}}, at)))

	assert.Len(t, healthy.seen, 1)
	require.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
}

func TestPublish_DrainsRecorder(t *testing.T) {
	store := NewInMemoryEventStore(nil)
	rec := &Recorder{}
	rec.Record(StockReceivedEvent, "pos-1", StockMoved{}, at)
	rec.Record(StockAdjustedEvent, "pos-1", StockMoved{}, at)

	require.NoError(t, Publish(store, rec))
	assert.Empty(t, rec.Events())

	all, err := store.ReadAllEvents(0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, at, all[0].Timestamp())
}

func TestLogHandler_LogsEveryEvent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	store := NewInMemoryEventStore(nil)
	require.NoError(t, store.Subscribe(AllEventTypes, NewLogHandler(zap.New(core))))

	require.NoError(t, store.AppendEvent("p-1", NewEvent(ProjectCompletedEvent, "p-1", ProjectCompleted{ProjectID: "p-1"}, at)))

	entries := logs.FilterMessage("domain event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, ProjectCompletedEvent, entries[0].ContextMap()["event_type"])
}
