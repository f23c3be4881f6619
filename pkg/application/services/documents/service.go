// Package documents implements the confirming and reversing transactions of
// stock documents. Each method changes stock, requirements, tree nodes and
// the document itself inside the caller's scope; any error leaves the scope
// to be rolled back as a whole.
package documents

import (
	"time"

	"go.uber.org/zap"

	"github.com/Rushen88/PDM-sub000/pkg/application/services/requirements"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/shared"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/stock"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/domain/services"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/events"
)

// Service runs document transactions
type Service struct {
	stock        *stock.Engine
	requirements *requirements.Service
	machine      *services.StatusMachine
	detector     *services.ProblemDetector
	logger       *zap.Logger
}

// NewService creates a document service
func NewService(stockEngine *stock.Engine, reqs *requirements.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		stock:        stockEngine,
		requirements: reqs,
		machine:      services.NewStatusMachine(),
		detector:     services.NewProblemDetector(),
		logger:       logger,
	}
}

func (s *Service) recordTransition(sc *shared.Scope, eventType string, doc entities.DocumentRef, from, to entities.DocumentStatus) {
	sc.Record(eventType, doc.ID, events.DocumentChanged{Document: doc, From: from, To: to})
	s.logger.Info("document status changed",
		zap.String("document_type", string(doc.Type)),
		zap.String("document_id", doc.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
}

// setManufacturing moves a node along its manufacturing track as a side
// effect of a document
func (s *Service) setManufacturing(sc *shared.Scope, node *entities.TreeNode, to entities.ManufacturingStatus) error {
	if err := s.machine.ValidateSystemManufacturing(node, to); err != nil {
		return err
	}
	from := node.ManufacturingStatus
	node.ManufacturingStatus = to
	if node.ActualStart == nil {
		node.ActualStart = entities.DatePtr(sc.Now)
	}
	node.UpdatedAt = sc.Now
	s.detector.Apply(node, sc.Now)
	if err := sc.Tx.Tree().Save(node); err != nil {
		return err
	}
	sc.Record(events.NodeStatusChangedEvent, node.ID, events.NodeStatusChanged{
		NodeID: node.ID, Track: entities.TrackManufacturing, From: string(from), To: string(to), System: true,
	})
	return nil
}

func dateOr(t *time.Time, fallback time.Time) time.Time {
	if t == nil || t.IsZero() {
		return fallback
	}
	return *t
}
