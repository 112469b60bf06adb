package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wricardo/puzzle-search/game/engine"
	"github.com/wricardo/puzzle-search/game/search"
	"github.com/wricardo/puzzle-search/logging"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions      SessionManager
	configs       ConfigManager
	maxExpansions int
	mu            sync.RWMutex
}

// Option configures the service.
type Option func(*gameServiceImpl)

// WithMaxExpansions caps every Solve call, overriding larger requests.
func WithMaxExpansions(n int) Option {
	return func(s *gameServiceImpl) {
		s.maxExpansions = n
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *gameServiceImpl) info(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigID:       sess.ConfigID,
		Kind:           sess.Config.Kind,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState().Clone(),
		PuzzleConfig:   sess.Config,
	}
}

func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrSessionNotFound, sessionID, err)
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *gameServiceImpl) persist(sessionID, operation string) {
	if err := s.sessions.Save(sessionID); err != nil {
		logging.Warn().Add(
			logging.Component("service"),
			logging.SessionID(sessionID),
			logging.Str("operation", operation),
			logging.ErrorField(err),
		).Msg("failed to persist session")
	}
}

// CreateSession creates a session from a stored config. An empty id selects
// the default config.
func (s *gameServiceImpl) CreateSession(ctx context.Context, configID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.PuzzleConfig
	if configID == "" {
		configID, config = s.configs.GetDefault()
	} else {
		var err error
		config, err = s.configs.LoadConfig(configID)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				if available, listErr := s.configs.ListConfigs(); listErr == nil && len(available) > 0 {
					ids := make([]string, 0, len(available))
					for _, c := range available {
						ids = append(ids, c.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configID, ids)
				}
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configID, err)
		}
	}

	sess, err := s.sessions.Create("", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	logging.Info().Add(
		logging.Component("service"),
		logging.SessionID(sess.ID),
		logging.ConfigName(configID),
		logging.Kind(string(config.Kind)),
	).Msg("session created")

	return s.info(sess), nil
}

// CreateSessionFromConfig creates a session for an ad-hoc puzzle that is not
// stored in the config directory.
func (s *gameServiceImpl) CreateSessionFromConfig(ctx context.Context, config *engine.PuzzleConfig) (*SessionInfo, error) {
	if err := engine.ValidatePuzzleConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Create("", "", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s.info(sess), nil
}

func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(sess), nil
}

func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess))
	}
	return result, nil
}

func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Move applies one human action. Malformed tokens fail with
// search.ErrIllegalMove; well-formed moves that are not legal right now return
// Success=false.
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, action string, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Engine.ValidateAction(action); err != nil {
		return nil, err
	}

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, GameEvent{
			Type:      "reset",
			Message:   "Puzzle reset to initial state",
			Timestamp: time.Now(),
		})
	}

	from := sess.Engine.GetState().Key
	success := sess.Engine.Move(action)
	state := sess.Engine.GetState()

	result := &MoveResult{
		Success:   success,
		Action:    action,
		FromKey:   from,
		ToKey:     state.Key,
		Solved:    state.Solved,
		GameState: state.Clone(),
		Message:   state.Message,
		Events:    append(events, moveEvents(action, success, state)...),
	}

	s.persist(sessionID, "move")
	return result, nil
}

func moveEvents(action string, success bool, state *engine.GameState) []GameEvent {
	now := time.Now()
	if !success {
		return []GameEvent{{Type: "illegal_move", Message: state.Message, Timestamp: now}}
	}
	events := []GameEvent{{Type: "move", Message: fmt.Sprintf("Applied %s", action), Timestamp: now}}
	if state.Solved {
		events = append(events, GameEvent{Type: "solved", Message: state.Message, Timestamp: now})
	}
	return events
}

// BulkMove applies up to engine.MaxBulkMoves actions, stopping at the first
// failure or once the puzzle is solved.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, GameEvent{
			Type:      "reset",
			Message:   "Puzzle reset to initial state",
			Timestamp: time.Now(),
		})
	}
	result.StartKey = sess.Engine.GetState().Key

	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, action := range moves {
		if sess.Engine.IsSolved() {
			result.StopReasonCode = "already_solved"
			result.StoppedReason = "puzzle already solved"
			result.StoppedOnMove = i + 1
			break
		}

		from := sess.Engine.GetState().Key
		ok := sess.Engine.Move(action)
		state := sess.Engine.GetState()
		result.Events = append(result.Events, moveEvents(action, ok, state)...)
		result.Steps = append(result.Steps, StepInfo{
			Idx:     i + 1,
			Action:  action,
			FromKey: from,
			ToKey:   state.Key,
			Success: ok,
			Solved:  state.Solved,
		})

		if !ok {
			result.Success = false
			result.StopReasonCode = "illegal_move"
			result.StoppedReason = fmt.Sprintf("move %d rejected: %s", i+1, action)
			result.StoppedOnMove = i + 1
			break
		}
		result.MovesExecuted++
	}

	state := sess.Engine.GetState()
	if state.Solved && result.StopReasonCode == "" {
		result.StopReasonCode = "solved"
	}
	result.GameState = state.Clone()
	result.EndKey = state.Key
	result.Solved = state.Solved
	result.Message = state.Message
	result.PossibleMoves = sess.Engine.GetPossibleMoves()

	s.persist(sessionID, "bulk_move")
	return result, nil
}

// Solve searches from the session's current position. Unsolvable positions
// return Solvable=false rather than an error. The search runs on a snapshot
// without holding the service lock; applying the plan re-locks and fails if
// the session moved in the meantime.
func (s *gameServiceImpl) Solve(ctx context.Context, sessionID string, opts SolveOptions) (*SolveResult, error) {
	s.mu.Lock()
	sess, err := s.session(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	snapshot := sess.Engine.Snapshot()
	noSolution := sess.Config.Messages.WithDefaults().NoSolution
	s.mu.Unlock()

	limit := opts.MaxExpansions
	if s.maxExpansions > 0 && (limit <= 0 || limit > s.maxExpansions) {
		limit = s.maxExpansions
	}

	started := time.Now()
	plan, err := snapshot.Solve(engine.SolveOptions{
		Strategy:      opts.Strategy,
		MaxExpansions: limit,
		Observer:      opts.Progress,
		Context:       ctx,
	})
	elapsed := time.Since(started)

	if err != nil {
		logging.Info().Add(
			logging.Component("service"),
			logging.SessionID(sessionID),
			logging.Strategy(opts.Strategy),
			logging.Duration(elapsed),
			logging.ErrorField(err),
		).Msg("solve failed")

		if errors.Is(err, search.ErrNoSolution) {
			return &SolveResult{
				Solvable:   false,
				GameState:  snapshot.GetState().Clone(),
				Message:    noSolution,
				DurationMs: elapsed.Milliseconds(),
			}, nil
		}
		return nil, err
	}

	logging.Info().Add(
		logging.Component("service"),
		logging.SessionID(sessionID),
		logging.Strategy(plan.Strategy),
		logging.SearchStats(plan.Expanded, plan.Generated, len(plan.Actions)),
		logging.Duration(elapsed),
	).Msg("solve finished")

	result := &SolveResult{
		Solvable:   true,
		Plan:       plan,
		Message:    fmt.Sprintf("Found a %d-move plan with %s", len(plan.Actions), plan.Strategy),
		DurationMs: elapsed.Milliseconds(),
	}

	if !opts.Apply {
		result.GameState = snapshot.GetState().Clone()
		return result, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err = s.session(sessionID)
	if err != nil {
		return nil, err
	}
	err = sess.Engine.ApplyPlan(plan, func(i int, state *engine.GameState) {
		step := ReplayStep{Index: i, Action: plan.Actions[i], GameState: state}
		if i < len(plan.Labels) {
			step.Label = plan.Labels[i]
		}
		result.Steps = append(result.Steps, step)
	})
	if err != nil {
		return nil, fmt.Errorf("apply plan: %w", err)
	}
	result.Applied = true
	result.Message = sess.Engine.GetState().Message
	result.GameState = sess.Engine.GetState().Clone()
	s.persist(sessionID, "solve")
	return result, nil
}

func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.Reset().Clone()
	s.persist(sessionID, "reset")
	return state, nil
}

func (s *gameServiceImpl) GetPuzzleState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState().Clone(), nil
}

// GetMoveHistory pages through the cumulative history, newest first unless
// opts.Order is "asc".
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	moves := []engine.MoveHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

func (s *gameServiceImpl) LoadConfig(ctx context.Context, configID string) (*engine.PuzzleConfig, error) {
	return s.configs.LoadConfig(configID)
}

func (s *gameServiceImpl) SaveConfig(ctx context.Context, configID string, config *engine.PuzzleConfig) error {
	return s.configs.SaveConfig(configID, config)
}
