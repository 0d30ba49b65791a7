package settlement

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dumeirei/affiliate-settlement-backend/internal/common/cache"
	"github.com/dumeirei/affiliate-settlement-backend/internal/common/config"
	"github.com/dumeirei/affiliate-settlement-backend/internal/common/logger"
	"github.com/dumeirei/affiliate-settlement-backend/internal/common/metrics"
	"github.com/dumeirei/affiliate-settlement-backend/internal/models"
	"github.com/dumeirei/affiliate-settlement-backend/internal/repository"
)

// 状态修正结果
const (
	ActivationResultActivated = "activated"
	ActivationResultNoop      = "noop"
	ActivationResultDeduped   = "deduped"
	ActivationResultFailed    = "failed"
)

const (
	defaultActivationLockTTL = 5 * time.Minute
	defaultActivationTimeout = 10 * time.Second
)

// Activator 在后台把有活动记录却仍处于锁定/休眠的账号恢复为正常
// 同一账号在锁有效期内只写一次，写入本身幂等
type Activator struct {
	userRepo    *repository.UserRepository
	redisClient *redis.Client
	metrics     *metrics.Metrics
	lockTTL     time.Duration
	timeout     time.Duration
	now         func() time.Time

	wg sync.WaitGroup
}

// NewActivator 创建状态修正器，redisClient 为 nil 时不做去重
func NewActivator(userRepo *repository.UserRepository, redisClient *redis.Client, m *metrics.Metrics, cfg *config.AffiliateConfig) *Activator {
	a := &Activator{
		userRepo:    userRepo,
		redisClient: redisClient,
		metrics:     m,
		lockTTL:     defaultActivationLockTTL,
		timeout:     defaultActivationTimeout,
		now:         time.Now,
	}
	if cfg != nil {
		if ttl := cfg.LockTTL(); ttl > 0 {
			a.lockTTL = ttl
		}
		if timeout := cfg.ActivationDeadline(); timeout > 0 {
			a.timeout = timeout
		}
	}
	return a
}

// Schedule 异步修正档案关联账号的状态，立即返回
func (a *Activator) Schedule(profile *models.AffiliateProfile) {
	if profile == nil || profile.UserID == nil {
		return
	}
	userID := *profile.UserID
	profileID := profile.ID

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("account activation panic",
					logger.ProfileID(profileID),
					logger.AccountID(userID),
					zap.Any("panic", r),
				)
				a.metrics.RecordActivation(ActivationResultFailed)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		result := a.activate(ctx, userID, profileID)
		a.metrics.RecordActivation(result)
	}()
}

// activate 执行一次状态修正并返回结果
func (a *Activator) activate(ctx context.Context, userID, profileID int64) string {
	key := cache.BuildKey(cache.KeyPrefixActivation, strconv.FormatInt(userID, 10))

	if a.redisClient != nil {
		acquired, err := cache.AcquireLock(ctx, a.redisClient, key, a.lockTTL)
		if err != nil {
			// 锁不可用时照常写入
			logger.Warn("activation lock unavailable",
				logger.AccountID(userID),
				zap.Error(err),
			)
		} else if !acquired {
			return ActivationResultDeduped
		}
	}

	affected, err := a.userRepo.Activate(ctx, userID, a.now())
	if err != nil {
		logger.Error("account activation failed",
			logger.Module("settlement"),
			logger.Action("activate"),
			logger.ProfileID(profileID),
			logger.AccountID(userID),
			zap.Error(err),
		)
		if a.redisClient != nil {
			_ = cache.ReleaseLock(context.Background(), a.redisClient, key)
		}
		return ActivationResultFailed
	}

	if affected == 0 {
		return ActivationResultNoop
	}

	logger.Info("account activated",
		logger.Module("settlement"),
		logger.Action("activate"),
		logger.ProfileID(profileID),
		logger.AccountID(userID),
	)
	return ActivationResultActivated
}

// Wait 等待已调度的修正完成，ctx 结束时返回其错误
func (a *Activator) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
