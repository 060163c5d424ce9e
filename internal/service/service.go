package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/Dan9191/finplan-service/internal/capacity"
	"github.com/Dan9191/finplan-service/internal/config"
	"github.com/Dan9191/finplan-service/internal/metrics"
	"github.com/Dan9191/finplan-service/internal/models"
	"github.com/Dan9191/finplan-service/internal/repository"
	"github.com/Dan9191/finplan-service/internal/strategy"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidAccessCode = errors.New("invalid access code")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrRateUnavailable   = errors.New("reference rate unavailable")
)

// RateSource provides the reference lending rate
type RateSource interface {
	GetReferenceRate(ctx context.Context) (models.ReferenceRate, error)
}

// ReportMailer delivers capacity reports
type ReportMailer interface {
	SendCapacityReport(to string, terms models.LoanTerms, result models.CapacityResult) error
}

// Service handles business logic
type Service struct {
	repo   *repository.Repository
	log    *logrus.Logger
	config *config.Config
	rates  RateSource
	mailer ReportMailer

	rateMu sync.RWMutex
	rate   *models.ReferenceRate
}

// NewService initializes a new service
func NewService(repo *repository.Repository, log *logrus.Logger, cfg *config.Config, rates RateSource, mailer ReportMailer) *Service {
	return &Service{repo: repo, log: log, config: cfg, rates: rates, mailer: mailer}
}

// StartSession opens a planning session and returns a token bound to it
func (s *Service) StartSession(accessCode string) (*models.SessionResponse, error) {
	if s.config.AccessCodeHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.config.AccessCodeHash), []byte(accessCode)); err != nil {
			return nil, ErrInvalidAccessCode
		}
	}

	session := s.repo.CreateSession()
	expiresAt := session.CreatedAt.Add(s.config.SessionTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   session.ID,
		IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	metrics.ActiveSessions.Set(float64(s.repo.Count()))
	s.log.Infof("Session started: %s", session.ID)
	return &models.SessionResponse{SessionID: session.ID, Token: tokenString, ExpiresAt: expiresAt}, nil
}

// CalculateCapacity runs the capacity model. The returned terms are the ones
// actually used, which differ from the request when the reference rate is applied.
func (s *Service) CalculateCapacity(ctx context.Context, req models.CapacityRequest) (models.CapacityResult, models.LoanTerms) {
	profile := req.Profile.Profile()
	terms := req.Terms.LoanTerms()

	if req.UseReferenceRate {
		rate, err := s.ReferenceRate(ctx)
		if err != nil {
			s.log.Warnf("Reference rate unavailable, keeping requested rate: %v", err)
		} else {
			terms.AnnualInterestRatePct = rate.LendingRate
		}
	}

	result := capacity.Compute(profile, terms)
	metrics.CapacityCalculations.WithLabelValues(string(result.RiskBand)).Inc()
	s.log.WithFields(logrus.Fields{
		"risk_band":       result.RiskBand,
		"behaviour_score": result.BehaviourScore,
		"operating":       result.Operating.Installment,
	}).Info("Capacity calculated")
	return result, terms
}

// SendCapacityReport calculates capacity and mails the result
func (s *Service) SendCapacityReport(ctx context.Context, req models.CapacityReportRequest) (models.CapacityResult, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return models.CapacityResult{}, fmt.Errorf("%w: email: %v", ErrInvalidRequest, err)
	}

	result, terms := s.CalculateCapacity(ctx, req.CapacityRequest)
	if err := s.mailer.SendCapacityReport(addr.Address, terms, result); err != nil {
		return models.CapacityResult{}, err
	}
	return result, nil
}

// Position returns the session's current debt position
func (s *Service) Position(sessionID string) (models.DebtPosition, error) {
	return s.repo.Position(sessionID)
}

// ApplyStrategy applies a strategy once to the session's stored position
func (s *Service) ApplyStrategy(sessionID string, req models.ApplyStrategyRequest) (models.DebtPosition, error) {
	kind, err := strategy.ParseKind(req.Strategy)
	if err != nil {
		return models.DebtPosition{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	target := models.Facility(strings.ToLower(strings.TrimSpace(req.Target)))

	pos, err := s.repo.ApplyStrategy(sessionID, kind, target)
	if err != nil {
		return models.DebtPosition{}, err
	}

	metrics.StrategyApplications.WithLabelValues(kind.String()).Inc()
	s.log.Infof("Strategy %s applied to session %s (target %q), total now %.0f", kind, sessionID, target, pos.Total())
	return pos, nil
}

// Projection simulates the session's position under one strategy
func (s *Service) Projection(sessionID, strategyName string, months int) ([]models.ProjectionPoint, error) {
	kind, err := strategy.ParseKind(strategyName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := s.checkHorizon(months); err != nil {
		return nil, err
	}

	pos, err := s.repo.Position(sessionID)
	if err != nil {
		return nil, err
	}

	metrics.Projections.WithLabelValues(kind.String()).Inc()
	return strategy.Project(pos, kind, months), nil
}

// Projections simulates every strategy side by side
func (s *Service) Projections(sessionID string, months int) (map[string][]models.ProjectionPoint, error) {
	if err := s.checkHorizon(months); err != nil {
		return nil, err
	}
	pos, err := s.repo.Position(sessionID)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]models.ProjectionPoint, len(strategy.Kinds))
	for kind, points := range strategy.Compare(pos, months) {
		metrics.Projections.WithLabelValues(kind.String()).Inc()
		out[kind.String()] = points
	}
	return out, nil
}

// Facility returns a facility's balance and ledger
func (s *Service) Facility(sessionID string, f models.Facility) (models.FacilityView, error) {
	return s.repo.Facility(sessionID, f)
}

// FacilityFlow projects a facility balance from its ledger
func (s *Service) FacilityFlow(sessionID string, f models.Facility, months int) ([]models.ProjectionPoint, error) {
	if err := s.checkHorizon(months); err != nil {
		return nil, err
	}
	view, err := s.repo.Facility(sessionID, f)
	if err != nil {
		return nil, err
	}
	return strategy.FlowProjection(view.Balance.Balance, view.Ledger, months), nil
}

// AddItem records a new inflow or outflow on a facility
func (s *Service) AddItem(sessionID string, f models.Facility, dir models.Direction, req models.FlowItemRequest) (models.FlowItem, error) {
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return models.FlowItem{}, fmt.Errorf("%w: label is required", ErrInvalidRequest)
	}
	item, err := s.repo.AddItem(sessionID, f, dir, label, req.Amount.Float())
	if err != nil {
		return models.FlowItem{}, err
	}
	s.log.Infof("Added %s item %d to %s for session %s", dir, item.ID, f, sessionID)
	return item, nil
}

// UpdateItem edits an existing inflow or outflow
func (s *Service) UpdateItem(sessionID string, f models.Facility, dir models.Direction, id int64, req models.FlowItemRequest) (models.FlowItem, error) {
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return models.FlowItem{}, fmt.Errorf("%w: label is required", ErrInvalidRequest)
	}
	return s.repo.UpdateItem(sessionID, f, dir, models.FlowItem{ID: id, Label: label, Amount: req.Amount.Float()})
}

// RemoveItem deletes an inflow or outflow
func (s *Service) RemoveItem(sessionID string, f models.Facility, dir models.Direction, id int64) error {
	if err := s.repo.RemoveItem(sessionID, f, dir, id); err != nil {
		return err
	}
	s.log.Infof("Removed %s item %d from %s for session %s", dir, id, f, sessionID)
	return nil
}

// ReferenceRate returns the cached reference rate, fetching it on first use
func (s *Service) ReferenceRate(ctx context.Context) (models.ReferenceRate, error) {
	s.rateMu.RLock()
	cached := s.rate
	s.rateMu.RUnlock()
	if cached != nil {
		return *cached, nil
	}
	return s.RefreshReferenceRate(ctx)
}

// RefreshReferenceRate fetches the reference rate and updates the cache
func (s *Service) RefreshReferenceRate(ctx context.Context) (models.ReferenceRate, error) {
	if s.rates == nil {
		return models.ReferenceRate{}, ErrRateUnavailable
	}
	rate, err := s.rates.GetReferenceRate(ctx)
	if err != nil {
		return models.ReferenceRate{}, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}

	s.rateMu.Lock()
	s.rate = &rate
	s.rateMu.Unlock()
	return rate, nil
}

// SweepSessions drops idle sessions
func (s *Service) SweepSessions() int {
	removed := s.repo.SweepIdle(s.config.SessionTTL)
	metrics.ActiveSessions.Set(float64(s.repo.Count()))
	if removed > 0 {
		s.log.Infof("Swept %d idle sessions", removed)
	}
	return removed
}

func (s *Service) checkHorizon(months int) error {
	if months > s.config.MaxHorizonMonths {
		return fmt.Errorf("%w: months must not exceed %d", ErrInvalidRequest, s.config.MaxHorizonMonths)
	}
	return nil
}
