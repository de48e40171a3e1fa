package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"signit-esign/internal/config"
	"signit-esign/internal/domain/entity"
	"signit-esign/internal/domain/repository"
	"signit-esign/internal/infrastructure/redis"
)

const submissionPrefix = "signit:submission:"

type submissionRepository struct {
	redisClient *redis.RedisClient
	ttl         time.Duration
	logger      *zap.Logger
}

// NewSubmissionRepository records submissions in Redis. With Redis disabled
// saves are dropped and lookups report ErrSubmissionNotFound.
func NewSubmissionRepository(cfg *config.Config, redisClient *redis.RedisClient, logger *zap.Logger) repository.SubmissionRepository {
	return &submissionRepository{
		redisClient: redisClient,
		ttl:         cfg.Redis.SubmissionTTL(),
		logger:      logger,
	}
}

func (r *submissionRepository) Save(ctx context.Context, submission *entity.Submission) error {
	if r.redisClient == nil {
		return nil
	}

	data, err := json.Marshal(submission)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}

	key := submissionPrefix + submission.SignatureRequestID
	if err := r.redisClient.Set(ctx, key, data, r.ttl); err != nil {
		return fmt.Errorf("failed to save submission: %w", err)
	}

	r.logger.Debug("Submission recorded",
		zap.String("key", key),
		zap.Duration("ttl", r.ttl),
	)

	return nil
}

func (r *submissionRepository) FindByID(ctx context.Context, signatureRequestID string) (*entity.Submission, error) {
	if r.redisClient == nil {
		return nil, repository.ErrSubmissionNotFound
	}

	cached, err := r.redisClient.Get(ctx, submissionPrefix+signatureRequestID)
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return nil, repository.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	var submission entity.Submission
	if err := json.Unmarshal([]byte(cached), &submission); err != nil {
		return nil, fmt.Errorf("failed to unmarshal submission: %w", err)
	}

	return &submission, nil
}
