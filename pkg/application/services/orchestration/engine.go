// Package orchestration exposes the planning engine: every operation runs in
// exactly one store transaction and publishes its events after commit.
package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Rushen88/PDM-sub000/pkg/application/dto"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/documents"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/requirements"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/shared"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/stock"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/tree"
	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/domain/repositories"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/config"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/events"
)

// Options holds the planning defaults of all services
type Options struct {
	Tree         tree.Options
	Requirements requirements.Options
}

// OptionsFromConfig converts the planning section of the configuration
func OptionsFromConfig(cfg config.PlanningConfig) (Options, error) {
	safety := decimal.Zero
	if cfg.DefaultSafetyStock != "" {
		var err error
		safety, err = decimal.NewFromString(cfg.DefaultSafetyStock)
		if err != nil {
			return Options{}, fmt.Errorf("invalid default safety stock %q: %w", cfg.DefaultSafetyStock, err)
		}
	}
	if safety.IsNegative() {
		return Options{}, fmt.Errorf("default safety stock must not be negative, got %s", safety)
	}
	return Options{
		Tree: tree.Options{
			DefaultLeadTimeDays:      cfg.DefaultLeadTimeDays,
			DefaultManufacturingDays: cfg.DefaultManufacturingDays,
		},
		Requirements: requirements.Options{DefaultSafetyStock: safety},
	}, nil
}

// Engine is the in-process service boundary of the planning core
type Engine struct {
	runner       *shared.Runner
	stock        *stock.Engine
	requirements *requirements.Service
	tree         *tree.Service
	documents    *documents.Service
	logger       *zap.Logger
}

// NewEngine wires the services on top of a store. A nil clock uses the
// system clock; a nil event store drops events.
func NewEngine(store repositories.Store, eventStore events.EventStore, opts Options, clock shared.Clock, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	stockEngine := stock.NewEngine(logger.Named("stock"))
	reqs := requirements.NewService(opts.Requirements, logger.Named("requirements"))
	return &Engine{
		runner:       shared.NewRunner(store, eventStore, clock, logger),
		stock:        stockEngine,
		requirements: reqs,
		tree:         tree.NewService(opts.Tree, reqs, stockEngine, logger.Named("tree")),
		documents:    documents.NewService(stockEngine, reqs, logger.Named("documents")),
		logger:       logger,
	}
}

func write[T any](ctx context.Context, e *Engine, op string, fn func(sc *shared.Scope) (T, error)) (T, error) {
	var out T
	err := e.runner.Write(ctx, func(_ context.Context, sc *shared.Scope) error {
		var err error
		out, err = fn(sc)
		return err
	})
	if err != nil {
		e.logFailure(op, err)
		var zero T
		return zero, err
	}
	return out, nil
}

func read[T any](ctx context.Context, e *Engine, op string, fn func(sc *shared.Scope) (T, error)) (T, error) {
	var out T
	err := e.runner.Read(ctx, func(_ context.Context, sc *shared.Scope) error {
		var err error
		out, err = fn(sc)
		return err
	})
	if err != nil {
		e.logFailure(op, err)
		var zero T
		return zero, err
	}
	return out, nil
}

func (e *Engine) logFailure(op string, err error) {
	code := apperrors.CodeOf(err)
	if code == apperrors.CodeInternal {
		e.logger.Error("operation failed", zap.String("op", op), zap.Error(err))
		return
	}
	e.logger.Debug("operation rejected", zap.String("op", op), zap.String("code", string(code)), zap.Error(err))
}

// CreateProject creates a project and expands its tree from rootNomenclatureID
func (e *Engine) CreateProject(ctx context.Context, name, rootNomenclatureID string, quantity entities.Quantity, dueDate *time.Time) (*dto.ProjectTree, error) {
	return write(ctx, e, "create_project", func(sc *shared.Scope) (*dto.ProjectTree, error) {
		project, _, err := e.tree.CreateProject(sc, name, rootNomenclatureID, quantity, dueDate)
		if err != nil {
			return nil, err
		}
		return e.tree.Load(sc, project.ID)
	})
}

// ExpandTree instantiates the tree of an existing, still empty project
func (e *Engine) ExpandTree(ctx context.Context, projectID, rootNomenclatureID string, quantity entities.Quantity) (*entities.TreeNode, error) {
	return write(ctx, e, "expand_tree", func(sc *shared.Scope) (*entities.TreeNode, error) {
		nodes, err := e.tree.ExpandProject(sc, projectID, rootNomenclatureID, quantity)
		if err != nil {
			return nil, err
		}
		return nodes[0], nil
	})
}

// AddChild places a nomenclature item under a manufactured node, expanding
// its BOM when it is manufactured itself
func (e *Engine) AddChild(ctx context.Context, parentID, nomenclatureID string, quantity entities.Quantity) (*entities.TreeNode, error) {
	return write(ctx, e, "add_child", func(sc *shared.Scope) (*entities.TreeNode, error) {
		node, _, err := e.tree.AddChild(sc, parentID, nomenclatureID, quantity)
		return node, err
	})
}

// SetStatus changes one status track of a node
func (e *Engine) SetStatus(ctx context.Context, nodeID string, track entities.Track, status string) (*dto.StatusChange, error) {
	return write(ctx, e, "set_status", func(sc *shared.Scope) (*dto.StatusChange, error) {
		return e.tree.SetStatus(sc, nodeID, track, status)
	})
}

// UpdateNodePlan moves the planned window of a manufactured node
func (e *Engine) UpdateNodePlan(ctx context.Context, nodeID string, plannedStart, plannedEnd *time.Time) (*entities.TreeNode, error) {
	return write(ctx, e, "update_node_plan", func(sc *shared.Scope) (*entities.TreeNode, error) {
		return e.tree.UpdatePlan(sc, nodeID, plannedStart, plannedEnd)
	})
}

// DeleteNode removes a node with its subtree and returns the removed IDs
func (e *Engine) DeleteNode(ctx context.Context, nodeID string) ([]string, error) {
	return write(ctx, e, "delete_node", func(sc *shared.Scope) ([]string, error) {
		return e.tree.DeleteNode(sc, nodeID)
	})
}

// GetProjectTree loads a project tree
func (e *Engine) GetProjectTree(ctx context.Context, projectID string) (*dto.ProjectTree, error) {
	return read(ctx, e, "get_project_tree", func(sc *shared.Scope) (*dto.ProjectTree, error) {
		return e.tree.Load(sc, projectID)
	})
}

// ListProjects returns every project
func (e *Engine) ListProjects(ctx context.Context) ([]*entities.Project, error) {
	return read(ctx, e, "list_projects", func(sc *shared.Scope) ([]*entities.Project, error) {
		return sc.Tx.Projects().List()
	})
}

// RecomputeRequirement evaluates the requirement of a purchased node against
// current stock without saving anything
func (e *Engine) RecomputeRequirement(ctx context.Context, nodeID string) (*entities.Requirement, error) {
	return read(ctx, e, "recompute_requirement", func(sc *shared.Scope) (*entities.Requirement, error) {
		return e.requirements.Recompute(sc, nodeID)
	})
}

// SyncRequirementsFromProject creates, updates and tombstones the
// requirement rows of a project
func (e *Engine) SyncRequirementsFromProject(ctx context.Context, projectID string) (*dto.SyncResult, error) {
	return write(ctx, e, "sync_requirements", func(sc *shared.Scope) (*dto.SyncResult, error) {
		return e.requirements.Sync(sc, projectID)
	})
}

// ListProjectRequirements returns the live requirements of a project, most
// urgent first
func (e *Engine) ListProjectRequirements(ctx context.Context, projectID string) ([]*entities.Requirement, error) {
	return read(ctx, e, "list_requirements", func(sc *shared.Scope) ([]*entities.Requirement, error) {
		return e.requirements.List(sc, projectID)
	})
}

// DeleteRequirement tombstones a requirement row
func (e *Engine) DeleteRequirement(ctx context.Context, requirementID string) (*entities.Requirement, error) {
	return write(ctx, e, "delete_requirement", func(sc *shared.Scope) (*entities.Requirement, error) {
		return e.requirements.Delete(sc, requirementID)
	})
}

// RestoreRequirement brings a tombstoned requirement back
func (e *Engine) RestoreRequirement(ctx context.Context, requirementID string) (*entities.Requirement, error) {
	return write(ctx, e, "restore_requirement", func(sc *shared.Scope) (*entities.Requirement, error) {
		return e.requirements.Restore(sc, requirementID)
	})
}

// ReserveStock reserves quantity for a node over all warehouses
func (e *Engine) ReserveStock(ctx context.Context, nodeID string, quantity entities.Quantity) ([]*entities.StockReservation, error) {
	return write(ctx, e, "reserve_stock", func(sc *shared.Scope) ([]*entities.StockReservation, error) {
		return e.tree.Reserve(sc, nodeID, quantity)
	})
}

// ReleaseReservation gives the outstanding part of a reservation back to free stock
func (e *Engine) ReleaseReservation(ctx context.Context, reservationID string) (*entities.StockReservation, error) {
	return write(ctx, e, "release_reservation", func(sc *shared.Scope) (*entities.StockReservation, error) {
		r, err := e.stock.Release(sc, reservationID)
		if err != nil {
			return nil, err
		}
		node, err := sc.Tx.Tree().Get(r.NodeID)
		if apperrors.IsNotFound(err) {
			return r, nil
		}
		if err != nil {
			return nil, err
		}
		if node.Purchased {
			if _, err := e.requirements.Refresh(sc, node); err != nil {
				return nil, err
			}
		}
		return r, nil
	})
}

// ConsumeStock writes stock off against a node, from its reservations or
// from free stock
func (e *Engine) ConsumeStock(ctx context.Context, nodeID string, quantity entities.Quantity, fromReserved bool) (*dto.ConsumptionResult, error) {
	return write(ctx, e, "consume_stock", func(sc *shared.Scope) (*dto.ConsumptionResult, error) {
		return e.tree.Consume(sc, nodeID, quantity, fromReserved)
	})
}

// StockPositions lists the positions of a nomenclature item
func (e *Engine) StockPositions(ctx context.Context, nomenclatureID string) ([]*entities.StockPosition, error) {
	return read(ctx, e, "stock_positions", func(sc *shared.Scope) ([]*entities.StockPosition, error) {
		return sc.Tx.Stock().ListPositions(nomenclatureID)
	})
}

// WarehouseStock lists the positions held in one warehouse
func (e *Engine) WarehouseStock(ctx context.Context, warehouseID string) ([]*entities.StockPosition, error) {
	return read(ctx, e, "warehouse_stock", func(sc *shared.Scope) ([]*entities.StockPosition, error) {
		return sc.Tx.Stock().ListWarehousePositions(warehouseID)
	})
}

// NodeReservations lists every reservation ever made for a node
func (e *Engine) NodeReservations(ctx context.Context, nodeID string) ([]*entities.StockReservation, error) {
	return read(ctx, e, "node_reservations", func(sc *shared.Scope) ([]*entities.StockReservation, error) {
		return sc.Tx.Stock().ListNodeReservations(nodeID)
	})
}

// PositionMovements returns the movement ledger of a position
func (e *Engine) PositionMovements(ctx context.Context, positionID string) ([]*entities.StockMovement, error) {
	return read(ctx, e, "position_movements", func(sc *shared.Scope) ([]*entities.StockMovement, error) {
		return sc.Tx.Stock().ListPositionMovements(positionID)
	})
}
