package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/bryanwahyu/nutriguard/internal/application"
	"github.com/bryanwahyu/nutriguard/internal/domain/analysis"
	"github.com/bryanwahyu/nutriguard/internal/domain/kv"
	domain "github.com/bryanwahyu/nutriguard/internal/domain/profiles"
)

func profileKey(userID string) string { return "profile:" + userID }
func mealPlansKey(userID string) string { return "mealplans:" + userID }

// Service keeps user profiles, child profiles and meal plans as JSON documents in a KV store.
type Service struct {
	Store kv.Store
	Clock application.Clock
	NewID func() string

	// serialises read-modify-write cycles within this process
	mu sync.Mutex
}

func NewService(store kv.Store, clock application.Clock) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Service{Store: store, Clock: clock, NewID: uuid.NewString}
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var p domain.UserProfile
	if err := s.load(ctx, profileKey(userID), &p); err != nil {
		return nil, err
	}
	if p.Children == nil {
		p.Children = []domain.ChildProfile{}
	}
	return &p, nil
}

// SaveProfile replaces the whole profile, normalising every child.
func (s *Service) SaveProfile(ctx context.Context, userID string, p domain.UserProfile) (*domain.UserProfile, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalid)
	}
	p.Email = strings.TrimSpace(p.Email)
	children := make([]domain.ChildProfile, 0, len(p.Children))
	for _, c := range p.Children {
		nc, err := s.normaliseChild(c)
		if err != nil {
			return nil, err
		}
		children = append(children, nc)
	}
	p.Children = children

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(ctx, profileKey(userID), p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) AddChild(ctx context.Context, userID string, c domain.ChildProfile) (*domain.ChildProfile, error) {
	c.ID = ""
	nc, err := s.normaliseChild(c)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.GetProfile(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		p, err = &domain.UserProfile{Children: []domain.ChildProfile{}}, nil
	}
	if err != nil {
		return nil, err
	}
	p.Children = append(p.Children, nc)
	if err := s.save(ctx, profileKey(userID), p); err != nil {
		return nil, err
	}
	return &nc, nil
}

func (s *Service) UpdateChild(ctx context.Context, userID, childID string, c domain.ChildProfile) (*domain.ChildProfile, error) {
	c.ID = childID
	nc, err := s.normaliseChild(c)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range p.Children {
		if p.Children[i].ID == childID {
			p.Children[i] = nc
			if err := s.save(ctx, profileKey(userID), p); err != nil {
				return nil, err
			}
			return &nc, nil
		}
	}
	return nil, fmt.Errorf("child %s: %w", childID, domain.ErrNotFound)
}

func (s *Service) RemoveChild(ctx context.Context, userID, childID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	kept := p.Children[:0]
	for _, c := range p.Children {
		if c.ID != childID {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(p.Children) {
		return fmt.Errorf("child %s: %w", childID, domain.ErrNotFound)
	}
	p.Children = kept
	return s.save(ctx, profileKey(userID), p)
}

// ListMealPlans returns the user's plans, newest first as stored. Missing means none.
func (s *Service) ListMealPlans(ctx context.Context, userID string) ([]domain.MealPlan, error) {
	var plans []domain.MealPlan
	err := s.load(ctx, mealPlansKey(userID), &plans)
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.MealPlan{}, nil
	}
	if err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []domain.MealPlan{}
	}
	return plans, nil
}

func (s *Service) GetMealPlan(ctx context.Context, userID, planID string) (*domain.MealPlan, error) {
	plans, err := s.ListMealPlans(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if plans[i].ID == planID {
			return &plans[i], nil
		}
	}
	return nil, fmt.Errorf("meal plan %s: %w", planID, domain.ErrNotFound)
}

func (s *Service) CreateMealPlan(ctx context.Context, userID string, mp domain.MealPlan) (*domain.MealPlan, error) {
	mp.Name = strings.TrimSpace(mp.Name)
	if mp.Name == "" {
		return nil, fmt.Errorf("%w: meal plan name is required", domain.ErrInvalid)
	}
	if !mp.TargetAgeGroup.Valid() {
		return nil, fmt.Errorf("%w: targetAgeGroup must be one of 0-2, 3-6, 7-10", domain.ErrInvalid)
	}
	for i, m := range mp.Meals {
		if strings.TrimSpace(m.Name) == "" {
			return nil, fmt.Errorf("%w: meals[%d].name is required", domain.ErrInvalid, i)
		}
	}
	if mp.Meals == nil {
		mp.Meals = []domain.Meal{}
	}
	mp.HealthConditions = analysis.UniqueConditions(mp.HealthConditions)
	mp.ID = s.NewID()
	mp.CreatedAt = s.Clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	plans, err := s.ListMealPlans(ctx, userID)
	if err != nil {
		return nil, err
	}
	plans = append([]domain.MealPlan{mp}, plans...)
	if err := s.save(ctx, mealPlansKey(userID), plans); err != nil {
		return nil, err
	}
	return &mp, nil
}

func (s *Service) DeleteMealPlan(ctx context.Context, userID, planID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	plans, err := s.ListMealPlans(ctx, userID)
	if err != nil {
		return err
	}
	kept := plans[:0]
	for _, p := range plans {
		if p.ID != planID {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(plans) {
		return fmt.Errorf("meal plan %s: %w", planID, domain.ErrNotFound)
	}
	return s.save(ctx, mealPlansKey(userID), kept)
}

func (s *Service) normaliseChild(c domain.ChildProfile) (domain.ChildProfile, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return c, fmt.Errorf("%w: child name is required", domain.ErrInvalid)
	}
	if !c.AgeGroup.Valid() {
		return c, fmt.Errorf("%w: ageGroup must be one of 0-2, 3-6, 7-10", domain.ErrInvalid)
	}
	if c.ID == "" {
		c.ID = s.NewID()
	}

	conds := make([]domain.HealthCondition, 0, len(c.HealthConditions))
	seen := make(map[string]bool, len(c.HealthConditions))
	for _, hc := range c.HealthConditions {
		hc.Name = strings.TrimSpace(hc.Name)
		k := strings.ToLower(hc.Name)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		if hc.ID == "" {
			hc.ID = s.NewID()
		}
		conds = append(conds, hc)
	}
	c.HealthConditions = conds
	return c, nil
}

func (s *Service) load(ctx context.Context, key string, v any) error {
	data, err := s.Store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return fmt.Errorf("%s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *Service) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Store.Set(ctx, key, data)
}
