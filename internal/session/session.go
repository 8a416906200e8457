package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/manno/archflow/internal/design"
)

// MissingDependencyError reports that a step's required input was never
// produced by an upstream step.
type MissingDependencyError struct {
	Key string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("missing required session value %q", e.Key)
}

// IsMissingDependency reports whether err wraps a MissingDependencyError.
func IsMissingDependency(err error) bool {
	var missing *MissingDependencyError
	return errors.As(err, &missing)
}

// Session binds a Store to one scope and exposes typed accessors for the
// fixed key vocabulary. Loads of required keys fail loudly with a
// MissingDependencyError instead of returning zero values.
type Session struct {
	store Store
	scope Scope
}

// New binds a store to a scope.
func New(store Store, scope Scope) *Session {
	return &Session{store: store, scope: scope}
}

// Scope returns the bound scope.
func (s *Session) Scope() Scope {
	return s.scope
}

func (s *Session) load(ctx context.Context, key string, out any) error {
	err := s.store.Load(ctx, s.scope, key, out)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%s: %w", s.scope.String(), &MissingDependencyError{Key: key})
	}
	return err
}

// Exists reports whether key has been written in this scope.
func (s *Session) Exists(ctx context.Context, key string) (bool, error) {
	var raw any
	err := s.store.Load(ctx, s.scope, key, &raw)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Session) SaveRequirements(ctx context.Context, r design.SystemRequirements) error {
	return s.store.Save(ctx, s.scope, KeyRequirements, r)
}

func (s *Session) LoadRequirements(ctx context.Context) (design.SystemRequirements, error) {
	var r design.SystemRequirements
	err := s.load(ctx, KeyRequirements, &r)
	return r, err
}

func (s *Session) SaveRequirementsMarkdown(ctx context.Context, md string) error {
	return s.store.Save(ctx, s.scope, KeyRequirementsMarkdown, md)
}

func (s *Session) LoadRequirementsMarkdown(ctx context.Context) (string, error) {
	var md string
	err := s.load(ctx, KeyRequirementsMarkdown, &md)
	return md, err
}

func (s *Session) SaveDesignOptions(ctx context.Context, opts []design.ArchitectureOption) error {
	return s.store.Save(ctx, s.scope, KeyDesignOptions, opts)
}

func (s *Session) LoadDesignOptions(ctx context.Context) ([]design.ArchitectureOption, error) {
	var opts []design.ArchitectureOption
	err := s.load(ctx, KeyDesignOptions, &opts)
	return opts, err
}

func (s *Session) SaveDesignOptionsJSON(ctx context.Context, raw string) error {
	return s.store.Save(ctx, s.scope, KeyDesignOptionsJSON, raw)
}

func (s *Session) LoadDesignOptionsJSON(ctx context.Context) (string, error) {
	var raw string
	err := s.load(ctx, KeyDesignOptionsJSON, &raw)
	return raw, err
}

func (s *Session) SaveComparison(ctx context.Context, c design.Comparison) error {
	return s.store.Save(ctx, s.scope, KeyComparisonResults, c)
}

func (s *Session) LoadComparison(ctx context.Context) (design.Comparison, error) {
	var c design.Comparison
	err := s.load(ctx, KeyComparisonResults, &c)
	return c, err
}

func (s *Session) SaveRecommendedOption(ctx context.Context, name string) error {
	return s.store.Save(ctx, s.scope, KeyRecommendedOption, name)
}

func (s *Session) LoadRecommendedOption(ctx context.Context) (string, error) {
	var name string
	err := s.load(ctx, KeyRecommendedOption, &name)
	return name, err
}

func (s *Session) SaveSelectedOption(ctx context.Context, name string) error {
	return s.store.Save(ctx, s.scope, KeySelectedOption, name)
}

// LoadSelectedOption returns ("", nil) when no selection was stored yet;
// wait_for_selection uses that to fall back to the recommended option.
func (s *Session) LoadSelectedOption(ctx context.Context) (string, error) {
	var name string
	err := s.store.Load(ctx, s.scope, KeySelectedOption, &name)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return name, err
}

func (s *Session) SaveSelectedOptionData(ctx context.Context, opt design.ArchitectureOption) error {
	return s.store.Save(ctx, s.scope, KeySelectedOptionData, opt)
}

func (s *Session) LoadSelectedOptionData(ctx context.Context) (design.ArchitectureOption, error) {
	var opt design.ArchitectureOption
	err := s.load(ctx, KeySelectedOptionData, &opt)
	return opt, err
}

func (s *Session) SaveRefinementRequest(ctx context.Context, req design.RefinementRequest) error {
	return s.store.Save(ctx, s.scope, KeyRefinementRequest, req)
}

// LoadRefinementRequest returns (req, false, nil) when no request exists.
func (s *Session) LoadRefinementRequest(ctx context.Context) (design.RefinementRequest, bool, error) {
	var req design.RefinementRequest
	err := s.store.Load(ctx, s.scope, KeyRefinementRequest, &req)
	if errors.Is(err, ErrNotFound) {
		return design.RefinementRequest{}, false, nil
	}
	if err != nil {
		return design.RefinementRequest{}, false, err
	}
	return req, true, nil
}

func (s *Session) SaveRefinementResult(ctx context.Context, res design.RefinementResult) error {
	return s.store.Save(ctx, s.scope, KeyRefinementResult, res)
}

func (s *Session) SaveDiagramCode(ctx context.Context, code string) error {
	return s.store.Save(ctx, s.scope, KeyDiagramCode, code)
}

func (s *Session) LoadDiagramCode(ctx context.Context) (string, error) {
	var code string
	err := s.load(ctx, KeyDiagramCode, &code)
	return code, err
}

func (s *Session) SaveDiagramPath(ctx context.Context, path string) error {
	return s.store.Save(ctx, s.scope, KeyDiagramPath, path)
}

func (s *Session) SaveStaffingPlan(ctx context.Context, plan design.StaffingPlan) error {
	return s.store.Save(ctx, s.scope, KeyStaffingPlan, plan)
}

func (s *Session) LoadStaffingPlan(ctx context.Context) (design.StaffingPlan, error) {
	var plan design.StaffingPlan
	err := s.load(ctx, KeyStaffingPlan, &plan)
	return plan, err
}
