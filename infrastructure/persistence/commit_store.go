package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/defectlens/defectlens/domain/analysis"
	"github.com/defectlens/defectlens/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Chunk size for bulk commit inserts. Large repositories produce tens of
// thousands of commits and SQLite limits bound variables per statement.
const commitInsertBatchSize = 500

// CommitStore implements analysis.CommitStore using GORM.
type CommitStore struct {
	database.Repository[analysis.Commit, CommitModel]
	db database.Database
}

// NewCommitStore creates a new CommitStore.
func NewCommitStore(db database.Database) CommitStore {
	return CommitStore{
		Repository: database.NewRepository[analysis.Commit, CommitModel](db, CommitMapper{}, "commit"),
		db:         db,
	}
}

// InsertAll bulk-inserts commits, silently skipping rows whose
// (repo_id, hash) already exists. Returns the number inserted.
func (s CommitStore) InsertAll(ctx context.Context, commits []analysis.Commit) (int64, error) {
	if len(commits) == 0 {
		return 0, nil
	}

	models := make([]CommitModel, len(commits))
	for i, c := range commits {
		m := s.Mapper().ToModel(c)
		m.ID = 0
		models[i] = m
	}

	result := s.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "repo_id"}, {Name: "hash"}},
		DoNothing: true,
	}).CreateInBatches(&models, commitInsertBatchSize)
	if result.Error != nil {
		return 0, fmt.Errorf("insert commits: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ApplyBugLinks flags bug-inducing commits and records the fix
// relationships on their fixing commits, atomically per call.
// Links naming hashes that are not stored for the repository are skipped.
func (s CommitStore) ApplyBugLinks(ctx context.Context, repoID int64, links []analysis.BugLink) error {
	if len(links) == 0 {
		return nil
	}

	return database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		for _, link := range links {
			var model CommitModel
			err := tx.Where("repo_id = ? AND hash = ?", repoID, link.BuggyCommit).First(&model).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return fmt.Errorf("load corrective commit %s: %w", link.BuggyCommit, err)
			}

			fixes := decodeStrings(model.Fixes)
			for _, h := range link.LinkedTo {
				if !containsString(fixes, h) {
					fixes = append(fixes, h)
				}
			}

			result := tx.Model(&CommitModel{}).
				Where("id = ?", model.ID).
				Updates(map[string]any{
					"is_linked": true,
					"fixes":     encodeStrings(fixes),
				})
			if result.Error != nil {
				return fmt.Errorf("link corrective commit %s: %w", link.BuggyCommit, result.Error)
			}

			for _, inducingHash := range link.LinkedTo {
				result := tx.Model(&CommitModel{}).
					Where("repo_id = ? AND hash = ?", repoID, inducingHash).
					Update("contains_bug", true)
				if result.Error != nil {
					return fmt.Errorf("flag bug-inducing commit %s: %w", inducingHash, result.Error)
				}
			}
		}
		return nil
	})
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
