package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"anoa.com/careerhub/internal/entity"
	answerRepo "anoa.com/careerhub/internal/modules/answer/repository"
	pointsService "anoa.com/careerhub/internal/modules/points/service"
	skillService "anoa.com/careerhub/internal/modules/skill/service"
	userRepo "anoa.com/careerhub/internal/modules/user/repository"
	voteDto "anoa.com/careerhub/internal/modules/vote/dto"
	voteRepo "anoa.com/careerhub/internal/modules/vote/repository"
	"anoa.com/careerhub/internal/scoring"
	"anoa.com/careerhub/pkg/apperror"
	"anoa.com/careerhub/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	fieldUpvotes   = "upvotes"
	fieldDownvotes = "downvotes"
)

var outcomeMessages = map[string]string{
	voteRepo.OutcomeRecorded: "Vote recorded",
	voteRepo.OutcomeRemoved:  "Vote removed",
	voteRepo.OutcomeUpdated:  "Vote updated",
}

type VoteService interface {
	CastVote(ctx context.Context, req voteDto.CastVoteRequest) (*voteDto.CastVoteResponse, error)
	GetVoteCount(ctx context.Context, itemID uuid.UUID, itemType string) (*voteDto.VoteCountResponse, error)
	GetVoterVote(ctx context.Context, voterID, itemID uuid.UUID, itemType string) (*string, error)
	ReconcileItem(ctx context.Context, req voteDto.ReconcileRequest) (*voteDto.ReconcileResponse, error)
	FindDrift(ctx context.Context) ([]voteDto.ItemDrift, error)
}

type voteService struct {
	repo          voteRepo.VoteRepository
	answerRepo    answerRepo.AnswerRepository
	userRepo      userRepo.UserRepository
	pointsService pointsService.PointsService
	skillService  skillService.SkillService
	redisClient   *redis.Client
	cacheTTL      time.Duration
}

// NewVoteService builds the vote ledger. redisClient may be nil, in which
// case counts are always read from the database.
func NewVoteService(
	repo voteRepo.VoteRepository,
	answerRepo answerRepo.AnswerRepository,
	userRepo userRepo.UserRepository,
	pointsService pointsService.PointsService,
	skillService skillService.SkillService,
	redisClient *redis.Client,
	cacheTTL time.Duration,
) VoteService {
	return &voteService{
		repo:          repo,
		answerRepo:    answerRepo,
		userRepo:      userRepo,
		pointsService: pointsService,
		skillService:  skillService,
		redisClient:   redisClient,
		cacheTTL:      cacheTTL,
	}
}

func countsKey(itemType string, itemID uuid.UUID) string {
	return fmt.Sprintf("votes:counts:%s:%s", itemType, itemID)
}

// genKey is bumped on every committed cast. Rebuilds WATCH it, so a snapshot
// read before a cast can never be written after that cast's invalidation.
func genKey(itemType string, itemID uuid.UUID) string {
	return fmt.Sprintf("votes:gen:%s:%s", itemType, itemID)
}

func countField(voteType string) string {
	if voteType == entity.VoteTypeDown {
		return fieldDownvotes
	}
	return fieldUpvotes
}

func validate(voterID, itemID uuid.UUID, itemType, voteType string, checkVoteType bool) error {
	var errs []error
	if voterID == uuid.Nil {
		errs = append(errs, errors.New("voterId is required"))
	}
	if itemID == uuid.Nil {
		errs = append(errs, errors.New("itemId is required"))
	}
	if _, ok := entity.ItemTable(itemType); !ok {
		errs = append(errs, fmt.Errorf("invalid item type %q", itemType))
	}
	if checkVoteType && voteType != entity.VoteTypeUp && voteType != entity.VoteTypeDown {
		errs = append(errs, fmt.Errorf("invalid vote type %q", voteType))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

func (s *voteService) CastVote(ctx context.Context, req voteDto.CastVoteRequest) (*voteDto.CastVoteResponse, error) {
	if err := validate(req.VoterID, req.ItemID, req.ItemType, req.VoteType, true); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.Exists(ctx, req.VoterID)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	if !exists {
		return nil, fmt.Errorf("voter %s: %w", req.VoterID, apperror.ErrNotFound)
	}

	// 1. Ledger and counter, one transaction
	result, err := s.repo.Cast(ctx, &entity.Vote{
		VoterID:  req.VoterID,
		ItemID:   req.ItemID,
		ItemType: req.ItemType,
		VoteType: req.VoteType,
	})
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.ItemType, req.ItemID, apperror.FromDB(err))
	}

	resp := &voteDto.CastVoteResponse{
		Message:      outcomeMessages[result.Outcome],
		Outcome:      result.Outcome,
		NewVoteCount: result.NewCount,
	}
	if result.Current != "" {
		current := result.Current
		resp.VoterVote = &current
	}

	// 2. Count cache
	s.invalidateCount(ctx, req.ItemType, req.ItemID)

	// 3. Side effects. Only a fresh upvote on an answer earns anything and
	// nothing here is undone when that vote is later removed or switched.
	if result.Outcome == voteRepo.OutcomeRecorded &&
		req.VoteType == entity.VoteTypeUp &&
		req.ItemType == entity.ItemTypeAnswer {
		if err := s.rewardAnswerAuthor(ctx, req.ItemID); err != nil {
			logger.Error().Err(err).
				Str("answer_id", req.ItemID.String()).
				Str("voter_id", req.VoterID.String()).
				Msg("vote recorded but upvote side effects failed")
			return resp, fmt.Errorf("%w: vote recorded, side effects incomplete: %w", apperror.ErrInternal, err)
		}
	}

	return resp, nil
}

func (s *voteService) rewardAnswerAuthor(ctx context.Context, answerID uuid.UUID) error {
	answer, err := s.answerRepo.FindByID(ctx, answerID)
	if err != nil {
		return err
	}

	if _, err := s.pointsService.ApplyEvent(ctx, pointsService.Event{
		UserID:         answer.AuthorID,
		Type:           scoring.EventUpvoteReceived,
		ReferenceID:    answer.ID,
		ReferenceTable: "answers",
	}); err != nil {
		return err
	}

	var tags []string
	if answer.Question != nil {
		tags = answer.Question.TagNames()
	}
	return s.skillService.RecordVoteReceived(ctx, answer.AuthorID, answer.SkillScope(), tags)
}

// invalidateCount drops the cached counts after a ledger commit. The next
// read rebuilds them from the ledger.
func (s *voteService) invalidateCount(ctx context.Context, itemType string, itemID uuid.UUID) {
	if s.redisClient == nil {
		return
	}

	key := countsKey(itemType, itemID)
	gen := genKey(itemType, itemID)
	_, err := s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, gen)
		pipe.Expire(ctx, gen, s.cacheTTL)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("vote count cache invalidation failed")
	}
}

func (s *voteService) GetVoteCount(ctx context.Context, itemID uuid.UUID, itemType string) (*voteDto.VoteCountResponse, error) {
	if itemID == uuid.Nil {
		return nil, fmt.Errorf("itemId is required: %w", apperror.ErrInvalidInput)
	}
	if _, ok := entity.ItemTable(itemType); !ok {
		return nil, fmt.Errorf("invalid item type %q: %w", itemType, apperror.ErrInvalidInput)
	}

	if s.redisClient != nil {
		val, err := s.redisClient.HGetAll(ctx, countsKey(itemType, itemID)).Result()
		if err == nil && len(val) > 0 {
			up, _ := strconv.ParseInt(val[fieldUpvotes], 10, 64)
			down, _ := strconv.ParseInt(val[fieldDownvotes], 10, 64)
			return &voteDto.VoteCountResponse{Upvotes: up, Downvotes: down, Total: up - down}, nil
		}
	}

	counts, err := s.rebuildCount(ctx, itemID, itemType)
	if err != nil {
		return nil, apperror.FromDB(err)
	}

	return &voteDto.VoteCountResponse{
		Upvotes:   counts.Upvotes,
		Downvotes: counts.Downvotes,
		Total:     counts.Upvotes - counts.Downvotes,
	}, nil
}

// rebuildCount reads the ledger and caches the result unless a cast bumped
// the generation key meanwhile. Only ledger errors are returned.
func (s *voteService) rebuildCount(ctx context.Context, itemID uuid.UUID, itemType string) (voteRepo.Counts, error) {
	if s.redisClient == nil {
		return s.repo.Counts(ctx, itemID, itemType)
	}

	var (
		counts voteRepo.Counts
		dbErr  error
		loaded bool
	)
	key := countsKey(itemType, itemID)
	err := s.redisClient.Watch(ctx, func(tx *redis.Tx) error {
		counts, dbErr = s.repo.Counts(ctx, itemID, itemType)
		loaded = true
		if dbErr != nil {
			return dbErr
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fieldUpvotes, counts.Upvotes, fieldDownvotes, counts.Downvotes)
			pipe.Expire(ctx, key, s.cacheTTL)
			return nil
		})
		return err
	}, genKey(itemType, itemID))

	switch {
	case dbErr != nil:
		return voteRepo.Counts{}, dbErr
	case err == nil:
		return counts, nil
	case errors.Is(err, redis.TxFailedErr):
		logger.Debug().Str("key", key).Msg("vote cast during count rebuild, result not cached")
	default:
		logger.Warn().Err(err).Str("key", key).Msg("vote count cache rebuild failed")
	}

	if !loaded {
		return s.repo.Counts(ctx, itemID, itemType)
	}
	return counts, nil
}

func (s *voteService) GetVoterVote(ctx context.Context, voterID, itemID uuid.UUID, itemType string) (*string, error) {
	if err := validate(voterID, itemID, itemType, "", false); err != nil {
		return nil, err
	}

	vote, err := s.repo.FindVote(ctx, voterID, itemID, itemType)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	if vote == nil {
		return nil, nil
	}
	return &vote.VoteType, nil
}

func (s *voteService) ReconcileItem(ctx context.Context, req voteDto.ReconcileRequest) (*voteDto.ReconcileResponse, error) {
	if req.ItemID == uuid.Nil {
		return nil, fmt.Errorf("itemId is required: %w", apperror.ErrInvalidInput)
	}
	if _, ok := entity.ItemTable(req.ItemType); !ok {
		return nil, fmt.Errorf("invalid item type %q: %w", req.ItemType, apperror.ErrInvalidInput)
	}

	stored, derived, err := s.repo.Reconcile(ctx, req.ItemID, req.ItemType, req.Fix)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.ItemType, req.ItemID, apperror.FromDB(err))
	}

	resp := &voteDto.ReconcileResponse{
		ItemID:   req.ItemID,
		ItemType: req.ItemType,
		Stored:   stored,
		Derived:  derived,
		Drift:    stored - derived,
	}

	if req.Fix && stored != derived {
		resp.Fixed = true
		s.invalidateCount(ctx, req.ItemType, req.ItemID)
		logger.Warn().
			Str("item_id", req.ItemID.String()).
			Str("item_type", req.ItemType).
			Int("stored", stored).
			Int("derived", derived).
			Msg("vote counter repaired")
	}

	return resp, nil
}

func (s *voteService) FindDrift(ctx context.Context) ([]voteDto.ItemDrift, error) {
	rows, err := s.repo.FindDrift(ctx)
	if err != nil {
		return nil, apperror.FromDB(err)
	}

	drift := make([]voteDto.ItemDrift, 0, len(rows))
	for _, row := range rows {
		drift = append(drift, voteDto.ItemDrift{
			ItemID:   row.ItemID,
			ItemType: row.ItemType,
			Stored:   row.Stored,
			Derived:  row.Derived,
		})
	}
	return drift, nil
}
