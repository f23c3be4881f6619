// Package tree instantiates project trees from BOM templates and drives the
// status tracks of their nodes.
package tree

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Rushen88/PDM-sub000/pkg/application/services/requirements"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/shared"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/stock"
	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/domain/services"
)

// Options holds planning defaults used when the catalog is silent
type Options struct {
	DefaultLeadTimeDays      int
	DefaultManufacturingDays int
}

// Service expands and maintains project trees
type Service struct {
	opts         Options
	machine      *services.StatusMachine
	detector     *services.ProblemDetector
	requirements *requirements.Service
	stock        *stock.Engine
	logger       *zap.Logger
}

// NewService creates a tree service
func NewService(opts Options, reqs *requirements.Service, stockEngine *stock.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		opts:         opts,
		machine:      services.NewStatusMachine(),
		detector:     services.NewProblemDetector(),
		requirements: reqs,
		stock:        stockEngine,
		logger:       logger,
	}
}

// frame is one pending node of an expansion
type frame struct {
	nomenclatureID string
	quantity       entities.Quantity
	parent         *entities.TreeNode
	requiredDate   *time.Time
	// ancestry holds the items on the path above, guarding against BOM cycles
	ancestry []string
}

// Expand instantiates nomenclatureID and, for manufactured items, the whole
// reachable BOM below it. parent is nil for a project root. Expansion works
// on an explicit stack; any unresolvable item aborts the caller's transaction.
func (s *Service) Expand(sc *shared.Scope, projectID string, parent *entities.TreeNode, nomenclatureID string, quantity entities.Quantity, requiredDate *time.Time) (*entities.TreeNode, []*entities.TreeNode, error) {
	if !quantity.IsPositive() {
		return nil, nil, apperrors.Validation("quantity must be positive, got %s", quantity)
	}
	var ancestry []string
	if parent != nil {
		chain, err := s.ancestry(sc, parent)
		if err != nil {
			return nil, nil, err
		}
		ancestry = chain
	}
	stack := []frame{{nomenclatureID: nomenclatureID, quantity: quantity, parent: parent, requiredDate: requiredDate, ancestry: ancestry}}
	var created []*entities.TreeNode

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, id := range f.ancestry {
			if id == f.nomenclatureID {
				return nil, nil, apperrors.Validation("BOM cycle: %s", strings.Join(append(f.ancestry, f.nomenclatureID), " -> "))
			}
		}
		node, err := s.newNode(sc, projectID, f)
		if err != nil {
			return nil, nil, err
		}
		if err := sc.Tx.Tree().Save(node); err != nil {
			return nil, nil, err
		}
		created = append(created, node)
		if node.Purchased {
			continue
		}

		tpl, err := sc.Tx.Catalog().GetActiveTemplate(node.NomenclatureID)
		if apperrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		lines := append([]entities.BOMLine(nil), tpl.Lines...)
		sort.SliceStable(lines, func(i, j int) bool { return lines[i].Position < lines[j].Position })
		path := append(append([]string(nil), f.ancestry...), node.NomenclatureID)
		// pushed in reverse so that children are numbered in template order
		for i := len(lines) - 1; i >= 0; i-- {
			stack = append(stack, frame{
				nomenclatureID: lines[i].ChildNomenclatureID,
				quantity:       f.quantity.Mul(lines[i].Quantity),
				parent:         node,
				requiredDate:   node.PlannedStart,
				ancestry:       path,
			})
		}
	}

	s.logger.Debug("tree expanded",
		zap.String("project_id", projectID),
		zap.String("nomenclature_id", nomenclatureID),
		zap.Int("nodes", len(created)))
	return created[0], created, nil
}

func (s *Service) newNode(sc *shared.Scope, projectID string, f frame) (*entities.TreeNode, error) {
	nom, err := sc.Tx.Catalog().GetNomenclature(f.nomenclatureID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve nomenclature %s: %w", f.nomenclatureID, err)
	}
	cat, err := sc.Tx.Catalog().GetCategory(nom.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category of %s: %w", nom.ID, err)
	}
	number, err := shared.NextDisplayNumber(sc)
	if err != nil {
		return nil, err
	}
	node := &entities.TreeNode{
		ID:             shared.NewID(),
		ProjectID:      projectID,
		NomenclatureID: nom.ID,
		CategoryID:     cat.ID,
		Name:           nom.Name,
		DisplayNumber:  number,
		Quantity:       f.quantity,
		Unit:           nom.Unit,
		Purchased:      cat.IsPurchased,
		RequiredDate:   f.requiredDate,
		CreatedAt:      sc.Now,
		UpdatedAt:      sc.Now,
	}
	if f.parent != nil {
		node.ParentID = f.parent.ID
	}
	if node.Purchased {
		node.Source = entities.SupplierRef(nom.DefaultSupplierID)
		node.PurchaseStatus = entities.PurchaseWaitingOrder
	} else {
		node.Source = entities.ContractorRef(nom.DefaultContractorID)
		node.ManufacturingStatus = entities.ManufacturingNotStarted
	}
	if err := s.planDates(sc, node, nom); err != nil {
		return nil, err
	}
	s.detector.Apply(node, sc.Now)
	return node, nil
}

// planDates derives the planned window of a manufactured node, or the
// order-by date of a purchased one, from its required date
func (s *Service) planDates(sc *shared.Scope, node *entities.TreeNode, nom *entities.Nomenclature) error {
	if node.RequiredDate == nil {
		return nil
	}
	required := *node.RequiredDate
	if node.Purchased {
		lead := s.opts.DefaultLeadTimeDays
		if id, ok := node.Source.SupplierID(); ok {
			sup, err := sc.Tx.Catalog().GetSupplier(id)
			if err != nil {
				return err
			}
			if sup.LeadTimeDays > 0 {
				lead = sup.LeadTimeDays
			}
		}
		node.OrderByDate = entities.DatePtr(required.AddDate(0, 0, -lead))
		return nil
	}
	days := nom.ManufacturingDays
	if days <= 0 {
		days = s.opts.DefaultManufacturingDays
	}
	node.PlannedEnd = entities.DatePtr(required)
	node.PlannedStart = entities.DatePtr(required.AddDate(0, 0, -days))
	return nil
}

// CreateProject creates a project and expands its tree from a root item
func (s *Service) CreateProject(sc *shared.Scope, name, rootNomenclatureID string, quantity entities.Quantity, dueDate *time.Time) (*entities.Project, []*entities.TreeNode, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil, apperrors.Validation("project name cannot be empty")
	}
	project := &entities.Project{
		ID:        shared.NewID(),
		Name:      name,
		Status:    entities.ProjectPlanning,
		DueDate:   dueDate,
		CreatedAt: sc.Now,
	}
	if err := sc.Tx.Projects().Save(project); err != nil {
		return nil, nil, err
	}
	nodes, err := s.ExpandProject(sc, project.ID, rootNomenclatureID, quantity)
	if err != nil {
		return nil, nil, err
	}
	project, err = sc.Tx.Projects().Get(project.ID)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("project created",
		zap.String("project_id", project.ID),
		zap.String("name", name),
		zap.Int("nodes", len(nodes)))
	return project, nodes, nil
}

// ExpandProject builds the tree of a project that has none yet. The root must
// be a manufactured item; a project is expanded only once.
func (s *Service) ExpandProject(sc *shared.Scope, projectID, rootNomenclatureID string, quantity entities.Quantity) ([]*entities.TreeNode, error) {
	project, err := sc.Tx.Projects().Get(projectID)
	if err != nil {
		return nil, err
	}
	if project.RootNodeID != "" {
		return nil, apperrors.Conflict(fmt.Sprintf("project %s is already expanded", project.ID), "root node "+project.RootNodeID)
	}
	nom, err := sc.Tx.Catalog().GetNomenclature(rootNomenclatureID)
	if err != nil {
		return nil, err
	}
	cat, err := sc.Tx.Catalog().GetCategory(nom.CategoryID)
	if err != nil {
		return nil, err
	}
	if cat.IsPurchased {
		return nil, apperrors.Validation("project root %s must be a manufactured item", nom.ID)
	}
	root, nodes, err := s.Expand(sc, project.ID, nil, rootNomenclatureID, quantity, project.DueDate)
	if err != nil {
		return nil, err
	}
	project.RootNodeID = root.ID
	if err := sc.Tx.Projects().Save(project); err != nil {
		return nil, err
	}
	return nodes, nil
}

// AddChild attaches a new subtree under a manufactured node. The child's
// category must be one the parent's category allows.
func (s *Service) AddChild(sc *shared.Scope, parentID, nomenclatureID string, quantity entities.Quantity) (*entities.TreeNode, []*entities.TreeNode, error) {
	parent, err := sc.Tx.Tree().Get(parentID)
	if err != nil {
		return nil, nil, err
	}
	if parent.Purchased {
		return nil, nil, apperrors.Validation("node %s is purchased and cannot have children", parent.ID)
	}
	if parent.ManufacturingStatus == entities.ManufacturingCompleted {
		return nil, nil, apperrors.Validation("node %s is completed", parent.ID)
	}
	parentCat, err := sc.Tx.Catalog().GetCategory(parent.CategoryID)
	if err != nil {
		return nil, nil, err
	}
	nom, err := sc.Tx.Catalog().GetNomenclature(nomenclatureID)
	if err != nil {
		return nil, nil, err
	}
	if !parentCat.AllowsChild(nom.CategoryID) {
		return nil, nil, apperrors.Validation("category %s does not allow %s (%s) as a child", parentCat.Name, nom.Name, nom.CategoryID)
	}
	return s.Expand(sc, parent.ProjectID, parent, nomenclatureID, quantity, parent.PlannedStart)
}

// ancestry lists the items from the root down to node
func (s *Service) ancestry(sc *shared.Scope, node *entities.TreeNode) ([]string, error) {
	var chain []string
	seen := map[string]bool{}
	for n := node; n != nil; {
		if seen[n.ID] {
			return nil, apperrors.Internal(nil, "tree of project %s loops at node %s", n.ProjectID, n.ID)
		}
		seen[n.ID] = true
		chain = append([]string{n.NomenclatureID}, chain...)
		if n.IsRoot() {
			break
		}
		parent, err := sc.Tx.Tree().Get(n.ParentID)
		if err != nil {
			return nil, err
		}
		n = parent
	}
	return chain, nil
}
