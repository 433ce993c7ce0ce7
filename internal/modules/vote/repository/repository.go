package repository

import (
	"context"

	"anoa.com/careerhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	OutcomeRecorded = "recorded"
	OutcomeRemoved  = "removed"
	OutcomeUpdated  = "updated"
)

// CastResult describes what a cast did to the ledger.
type CastResult struct {
	Outcome  string
	Previous string // vote type held before the cast, empty if none
	Current  string // vote type held after the cast, empty if none
	NewCount int
}

type Counts struct {
	Upvotes   int64
	Downvotes int64
}

// ItemDrift is an item whose stored counter disagrees with its vote rows.
type ItemDrift struct {
	ItemID   uuid.UUID
	ItemType string
	Stored   int
	Derived  int
}

type VoteRepository interface {
	// Cast runs the toggle/switch state machine for one (voter, item) pair
	// under a lock on the item row.
	Cast(ctx context.Context, vote *entity.Vote) (*CastResult, error)
	FindVote(ctx context.Context, voterID, itemID uuid.UUID, itemType string) (*entity.Vote, error)
	Counts(ctx context.Context, itemID uuid.UUID, itemType string) (Counts, error)
	// Reconcile compares the stored counter with the ledger sum and, when
	// fix is set, overwrites the counter.
	Reconcile(ctx context.Context, itemID uuid.UUID, itemType string, fix bool) (stored, derived int, err error)
	FindDrift(ctx context.Context) ([]ItemDrift, error)
}

type voteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

type itemRow struct {
	ID    uuid.UUID
	Votes int
}

const signedSum = "COALESCE(SUM(CASE WHEN v.vote_type = ? THEN 1 WHEN v.vote_type = ? THEN -1 ELSE 0 END), 0)"

func lockItem(tx *gorm.DB, table string, id uuid.UUID) (int, error) {
	var row itemRow
	err := tx.Table(table).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "votes").
		Where("id = ?", id).
		Take(&row).Error
	return row.Votes, err
}

func readCount(tx *gorm.DB, table string, id uuid.UUID) (int, error) {
	var row itemRow
	err := tx.Table(table).Select("id", "votes").Where("id = ?", id).Take(&row).Error
	return row.Votes, err
}

func (r *voteRepository) Cast(ctx context.Context, vote *entity.Vote) (*CastResult, error) {
	table, ok := entity.ItemTable(vote.ItemType)
	if !ok {
		return nil, gorm.ErrInvalidValue
	}

	result := &CastResult{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockItem(tx, table, vote.ItemID); err != nil {
			return err
		}

		// Find with a slice keeps "record not found" out of the logs.
		var existing []entity.Vote
		if err := tx.Where("voter_id = ? AND item_id = ? AND item_type = ?", vote.VoterID, vote.ItemID, vote.ItemType).
			Limit(1).
			Find(&existing).Error; err != nil {
			return err
		}

		var delta int
		switch {
		case len(existing) == 0:
			if err := tx.Create(vote).Error; err != nil {
				return err
			}
			delta = entity.Weight(vote.VoteType)
			result.Outcome = OutcomeRecorded
			result.Current = vote.VoteType
		case existing[0].VoteType == vote.VoteType:
			if err := tx.Delete(&existing[0]).Error; err != nil {
				return err
			}
			delta = -entity.Weight(vote.VoteType)
			result.Outcome = OutcomeRemoved
			result.Previous = vote.VoteType
		default:
			previous := existing[0].VoteType
			if err := tx.Model(&existing[0]).Update("vote_type", vote.VoteType).Error; err != nil {
				return err
			}
			vote.ID = existing[0].ID
			delta = 2 * entity.Weight(vote.VoteType)
			result.Outcome = OutcomeUpdated
			result.Previous = previous
			result.Current = vote.VoteType
		}

		if err := tx.Table(table).
			Where("id = ?", vote.ItemID).
			Update("votes", gorm.Expr("votes + ?", delta)).Error; err != nil {
			return err
		}

		count, err := readCount(tx, table, vote.ItemID)
		if err != nil {
			return err
		}
		result.NewCount = count
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *voteRepository) FindVote(ctx context.Context, voterID, itemID uuid.UUID, itemType string) (*entity.Vote, error) {
	var votes []entity.Vote
	err := r.db.WithContext(ctx).
		Where("voter_id = ? AND item_id = ? AND item_type = ?", voterID, itemID, itemType).
		Limit(1).
		Find(&votes).Error
	if err != nil || len(votes) == 0 {
		return nil, err
	}
	return &votes[0], nil
}

func (r *voteRepository) Counts(ctx context.Context, itemID uuid.UUID, itemType string) (Counts, error) {
	var rows []struct {
		VoteType string
		Count    int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.Vote{}).
		Select("vote_type, count(*) as count").
		Where("item_id = ? AND item_type = ?", itemID, itemType).
		Group("vote_type").
		Scan(&rows).Error
	if err != nil {
		return Counts{}, err
	}

	var counts Counts
	for _, row := range rows {
		switch row.VoteType {
		case entity.VoteTypeUp:
			counts.Upvotes = row.Count
		case entity.VoteTypeDown:
			counts.Downvotes = row.Count
		}
	}
	return counts, nil
}

func (r *voteRepository) Reconcile(ctx context.Context, itemID uuid.UUID, itemType string, fix bool) (int, int, error) {
	table, ok := entity.ItemTable(itemType)
	if !ok {
		return 0, 0, gorm.ErrInvalidValue
	}

	var stored, derived int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if stored, err = lockItem(tx, table, itemID); err != nil {
			return err
		}

		if err := tx.Table("votes AS v").
			Select(signedSum, entity.VoteTypeUp, entity.VoteTypeDown).
			Where("v.item_id = ? AND v.item_type = ?", itemID, itemType).
			Scan(&derived).Error; err != nil {
			return err
		}

		if fix && stored != derived {
			return tx.Table(table).Where("id = ?", itemID).Update("votes", derived).Error
		}
		return nil
	})
	return stored, derived, err
}

func (r *voteRepository) FindDrift(ctx context.Context) ([]ItemDrift, error) {
	var drift []ItemDrift
	for _, itemType := range []string{entity.ItemTypeQuestion, entity.ItemTypeAnswer} {
		table, _ := entity.ItemTable(itemType)

		var rows []ItemDrift
		err := r.db.WithContext(ctx).
			Table(table+" AS i").
			Select("i.id AS item_id, i.votes AS stored, "+signedSum+" AS derived", entity.VoteTypeUp, entity.VoteTypeDown).
			Joins("LEFT JOIN votes v ON v.item_id = i.id AND v.item_type = ?", itemType).
			Group("i.id, i.votes").
			Having("i.votes <> "+signedSum, entity.VoteTypeUp, entity.VoteTypeDown).
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}

		for i := range rows {
			rows[i].ItemType = itemType
		}
		drift = append(drift, rows...)
	}
	return drift, nil
}
