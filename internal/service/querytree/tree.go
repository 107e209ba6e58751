package querytree

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"steptree/internal/config"
	"steptree/internal/domain"
	models "steptree/internal/domain/models/querytree"
	repo "steptree/internal/domain/repositories/querytree"
	svc "steptree/internal/domain/services/querytree"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/sync/singleflight"
)

// treeService implements the TreeService interface
type treeService struct {
	source    repo.StepSource
	store     *SnapshotStore
	navigator *Navigator
	taskReads singleflight.Group
	treeLoads singleflight.Group
	logger    *slog.Logger
}

// maxTreeLoadAttempts bounds how often a cold Tree call restarts after an
// explicit refresh superseded its fetch and then failed
const maxTreeLoadAttempts = 3

// treeLoad is the shared result of one coalesced cold load
type treeLoad struct {
	snap  *models.Snapshot
	token FetchToken
}

// NewTreeService creates a new tree service
func NewTreeService(source repo.StepSource, logger *slog.Logger) svc.TreeService {
	return &treeService{
		source:    source,
		store:     NewSnapshotStore(),
		navigator: NewNavigator(),
		logger:    logger,
	}
}

// Refresh reads the source and publishes a freshly normalized tree
func (s *treeService) Refresh(ctx context.Context) (*models.Snapshot, error) {
	snap, _, err := s.refresh(ctx)
	return snap, err
}

func (s *treeService) refresh(ctx context.Context) (*models.Snapshot, FetchToken, error) {
	token := s.store.Begin()
	defer s.store.Done(token)

	steps, err := s.source.ListStepsExpanded(ctx)
	if err != nil {
		s.logger.Error("read steps failed",
			"source", s.source.Name(),
			"fetch_token", uint64(token),
			"error", err,
		)
		return nil, token, asFetchError(s.source.Name(), "read steps", err)
	}

	nodes := Normalize(steps)

	snap, ok := s.store.Publish(token, nodes)
	if !ok {
		s.logger.Warn("stale tree discarded",
			"source", s.source.Name(),
			"fetch_token", uint64(token),
		)
		return nil, token, fmt.Errorf("%w: refresh superseded by a newer fetch", domain.ErrConflict)
	}

	s.navigator.Reset(snap.Generation)

	if dups := DuplicateIDs(snap.Nodes); len(dups) > 0 {
		s.logger.Warn("duplicate ids in step source, first match wins",
			"generation", snap.Generation,
			"duplicates", strings.Join(dups, ","),
		)
	}

	s.applyDefaultSelection(snap)

	s.logger.Info("tree published",
		"source", s.source.Name(),
		"version", snap.Version,
		"generation", snap.Generation,
		"step_count", len(snap.Nodes),
	)

	return snap, token, nil
}

// applyDefaultSelection selects the first available substep so the detail
// view is never blank after a rebuild
func (s *treeService) applyDefaultSelection(snap *models.Snapshot) {
	stepID, substepID, ok := FirstSelectable(snap.Nodes)
	if !ok {
		s.logger.Debug("no selectable substep", "generation", snap.Generation)
		return
	}

	target := models.SelectionTarget{StepID: stepID, SubstepID: substepID}
	if _, err := s.navigator.Select(snap, target); err != nil {
		s.logger.Debug("default selection skipped", "error", err)
	}
}

// Tree returns the current snapshot, building the first one on demand.
// Concurrent cold readers share one fetch. When an explicit Refresh
// supersedes that fetch, readers wait for it instead of failing.
func (s *treeService) Tree(ctx context.Context) (*models.Snapshot, error) {
	for attempt := 1; ; attempt++ {
		if snap := s.store.Load(); snap != nil {
			return snap, nil
		}

		v, err, _ := s.treeLoads.Do("tree", func() (interface{}, error) {
			if snap := s.store.Load(); snap != nil {
				return treeLoad{snap: snap}, nil
			}
			snap, token, err := s.refresh(ctx)
			return treeLoad{snap: snap, token: token}, err
		})
		load, _ := v.(treeLoad)
		if err == nil {
			return load.snap, nil
		}
		if !errors.Is(err, domain.ErrConflict) || attempt == maxTreeLoadAttempts {
			return nil, err
		}

		s.logger.Debug("cold load superseded, waiting for newer fetch",
			"fetch_token", uint64(load.token),
			"attempt", attempt,
		)
		if err := s.store.WaitNewer(ctx, load.token); err != nil {
			return nil, err
		}
	}
}

// Resolve maps a (stepId, substepId) pair to its path and attached tasks
func (s *treeService) Resolve(ctx context.Context, stepID, substepID string) (*models.ResolvedSubstep, error) {
	target := &models.SelectionTarget{StepID: stepID, SubstepID: substepID}
	if err := s.validateTarget(target, true); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	snap, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}

	path, ok := Resolve(snap.Nodes, stepID, substepID)
	if !ok {
		return nil, &domain.NotFoundError{
			Message: fmt.Sprintf("substep %q of step %q not found", substepID, stepID),
		}
	}

	return &models.ResolvedSubstep{
		StepID:       stepID,
		SubstepID:    substepID,
		Path:         path.String(),
		StepIndex:    path.StepIndex,
		SubstepIndex: path.SubstepIndex,
		Generation:   snap.Generation,
		Tasks:        TasksAt(snap.Nodes, path.StepIndex, path.SubstepIndex),
	}, nil
}

// Select moves the navigation selection to target
func (s *treeService) Select(ctx context.Context, target *models.SelectionTarget) (*models.Selection, error) {
	if err := s.validateTarget(target, false); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	snap, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}

	sel, err := s.navigator.Select(snap, *target)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("selection changed",
		"state", sel.State,
		"step_id", sel.StepID,
		"substep_id", sel.SubstepID,
		"path", sel.Path,
	)

	return &sel, nil
}

// Selection returns the current navigation selection
func (s *treeService) Selection(ctx context.Context) (*models.Selection, error) {
	if _, err := s.Tree(ctx); err != nil {
		return nil, err
	}
	sel := s.navigator.Current()
	return &sel, nil
}

// DefaultSelection returns the first selectable pair of the current tree
func (s *treeService) DefaultSelection(ctx context.Context) (*models.SelectionTarget, error) {
	snap, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}

	stepID, substepID, ok := FirstSelectable(snap.Nodes)
	if !ok {
		return nil, &domain.NotFoundError{Message: "tree has no selectable substep"}
	}

	return &models.SelectionTarget{StepID: stepID, SubstepID: substepID}, nil
}

// SearchTasks reads tasks straight from the source. Identical queries in
// flight at the same time share one source call.
func (s *treeService) SearchTasks(ctx context.Context, query *models.TaskQuery) ([]models.Task, error) {
	if err := s.validateTaskQuery(query); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	key, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("encode task query: %w", err)
	}

	v, err, shared := s.taskReads.Do(string(key), func() (interface{}, error) {
		return s.source.ListTasks(ctx, query)
	})
	if err != nil {
		s.logger.Error("read tasks failed",
			"source", s.source.Name(),
			"step_id", query.StepID,
			"substep_id", query.SubstepID,
			"error", err,
		)
		return nil, asFetchError(s.source.Name(), "read tasks", err)
	}

	tasks, _ := v.([]models.Task)
	if tasks == nil {
		tasks = []models.Task{}
	}

	s.logger.Debug("tasks read",
		"step_id", query.StepID,
		"substep_id", query.SubstepID,
		"predicates", len(query.Predicates),
		"count", len(tasks),
		"shared", shared,
	)

	return tasks, nil
}

// validateTarget validates a selection target. requireSubstep rejects
// step-only targets.
func (s *treeService) validateTarget(target *models.SelectionTarget, requireSubstep bool) error {
	substepRules := []validation.Rule{validation.Length(0, config.MaxSubstepIDLength)}
	if requireSubstep {
		substepRules = append(substepRules, validation.Required)
	}

	return validation.ValidateStruct(target,
		validation.Field(&target.StepID,
			validation.Required,
			validation.Length(1, config.MaxStepIDLength),
		),
		validation.Field(&target.SubstepID, substepRules...),
	)
}

// validateTaskQuery validates a direct task read
func (s *treeService) validateTaskQuery(query *models.TaskQuery) error {
	return validation.ValidateStruct(query,
		validation.Field(&query.StepID,
			validation.Required,
			validation.Length(1, config.MaxStepIDLength),
		),
		validation.Field(&query.SubstepID,
			validation.Required,
			validation.Length(1, config.MaxSubstepIDLength),
		),
		validation.Field(&query.Predicates,
			validation.Length(0, config.MaxFilterPayloads),
			validation.Each(validation.By(validatePredicate)),
		),
	)
}

// validatePredicate validates one task predicate
func validatePredicate(value interface{}) error {
	p, ok := value.(models.Predicate)
	if !ok {
		return errors.New("predicate has unexpected type")
	}

	return validation.ValidateStruct(&p,
		validation.Field(&p.Field,
			validation.Required,
			validation.By(func(v interface{}) error {
				if !models.IsTaskField(v.(string)) {
					return fmt.Errorf("unknown task field %q", v)
				}
				return nil
			}),
		),
		validation.Field(&p.Operator,
			validation.Required,
			validation.In(models.OpEQ, models.OpContains, models.OpIn),
		),
		validation.Field(&p.Values,
			validation.Required,
			validation.Length(1, config.MaxPredicateValues),
			validation.Each(validation.Length(0, config.MaxFilterValueLength)),
		),
	)
}

// asFetchError wraps source failures so callers can tell them apart from
// validation or lookup errors
func asFetchError(source, operation string, err error) error {
	var fetchErr *domain.FetchError
	if errors.As(err, &fetchErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &domain.FetchError{Source: source, Operation: operation, Err: err}
}
