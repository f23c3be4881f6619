package events

import (
	"go.uber.org/zap"

	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

const (
	StockReservedEvent     = "stock.reserved"
	StockReleasedEvent     = "stock.released"
	StockConsumedEvent     = "stock.consumed"
	StockReceivedEvent     = "stock.received"
	StockAdjustedEvent     = "stock.adjusted"
	DocumentConfirmedEvent = "document.confirmed"
	DocumentCancelledEvent = "document.cancelled"
	NodeStatusChangedEvent = "node.status_changed"
	NodeDeletedEvent       = "node.deleted"
	RequirementSplitEvent  = "requirement.split"
	ProjectCompletedEvent  = "project.completed"
)

// AllEventTypes lists every event the engine raises
var AllEventTypes = []string{
	StockReservedEvent, StockReleasedEvent, StockConsumedEvent, StockReceivedEvent, StockAdjustedEvent,
	DocumentConfirmedEvent, DocumentCancelledEvent, NodeStatusChangedEvent, NodeDeletedEvent,
	RequirementSplitEvent, ProjectCompletedEvent,
}

type StockReserved struct {
	NodeID       string                       `json:"node_id"`
	Reservations []entities.StockReservation `json:"reservations"`
}

type StockReleased struct {
	Reservation entities.StockReservation `json:"reservation"`
}

type StockMoved struct {
	Movements []entities.StockMovement `json:"movements"`
}

type DocumentChanged struct {
	Document entities.DocumentRef   `json:"document"`
	From     entities.DocumentStatus `json:"from"`
	To       entities.DocumentStatus `json:"to"`
}

type NodeStatusChanged struct {
	NodeID string         `json:"node_id"`
	Track  entities.Track `json:"track"`
	From   string         `json:"from"`
	To     string         `json:"to"`
	System bool           `json:"system"`
}

type NodeDeleted struct {
	NodeIDs []string `json:"node_ids"`
}

type RequirementSplit struct {
	OriginalRequirementID string            `json:"original_requirement_id"`
	NewRequirementID      string            `json:"new_requirement_id"`
	OriginalNodeID        string            `json:"original_node_id"`
	NewNodeID             string            `json:"new_node_id"`
	Remaining             entities.Quantity `json:"remaining"`
	Fulfilled             entities.Quantity `json:"fulfilled"`
}

type ProjectCompleted struct {
	ProjectID string `json:"project_id"`
}

// LogHandler forwards events to a zap logger, standing in for the external
// audit collaborator
type LogHandler struct {
	logger *zap.Logger
}

func NewLogHandler(logger *zap.Logger) *LogHandler {
	return &LogHandler{logger: logger}
}

func (h *LogHandler) CanHandle(string) bool { return true }

func (h *LogHandler) Handle(e Event) error {
	h.logger.Info("domain event",
		zap.String("event_type", e.Type()),
		zap.String("stream_id", e.StreamID()),
		zap.Int("version", e.Version()),
		zap.Any("data", e.Data()))
	return nil
}
