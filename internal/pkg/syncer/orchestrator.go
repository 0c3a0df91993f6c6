package syncer

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/pairsell/pairsell/app/models"
	"github.com/pairsell/pairsell/app/repository"
	"github.com/pairsell/pairsell/internal/pkg/plans"
	"github.com/pairsell/pairsell/internal/pkg/quota"
	"github.com/pairsell/pairsell/internal/pkg/reccache"
	"github.com/pairsell/pairsell/internal/pkg/recommend"
)

// quotaLedger is the counter surface the orchestrator needs; *quota.Ledger
// implements it.
type quotaLedger interface {
	GlobalState(now time.Time) (*quota.GlobalState, error)
	DebitGlobal(tx *gorm.DB, now time.Time, tokens int64) error
	DebitShopTokens(tx *gorm.DB, shopID uint, now time.Time, tokens int64) (int64, error)
	RecordRefresh(tx *gorm.DB, shopID uint, now time.Time) (int, string, error)
}

// Orchestrator runs the sync pipeline: mode resolution, admission, product
// persistence, diffing, generation, ledger debit and audit bookkeeping. All
// writes of an admitted run happen in one transaction; the read-side cache is
// only invalidated after that transaction commits.
type Orchestrator struct {
	db     *gorm.DB
	repos  *repository.Repositories
	ledger quotaLedger
	gen    recommend.Generator
	cache  reccache.Cache
	now    func() time.Time
}

func NewOrchestrator(db *gorm.DB, repos *repository.Repositories, ledger *quota.Ledger, gen recommend.Generator, cache reccache.Cache) *Orchestrator {
	return &Orchestrator{
		db:     db,
		repos:  repos,
		ledger: ledger,
		gen:    gen,
		cache:  cache,
		now:    time.Now,
	}
}

// Run executes one sync request for a shop. It returns a *Rejection for
// admission refusals, ErrInternal when the unit of work failed, and a Result
// after a successful commit. The shop model is updated in place to reflect
// the committed state.
func (o *Orchestrator) Run(ctx context.Context, shop *models.Shop, req *Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, rejectValidation(err.Error())
	}

	now := o.now()
	mode := ResolveMode(shop.InitialSyncDone, req.Mode, req.Regenerate)

	run := models.NewSyncRun(shop.ID, string(mode), len(req.Products), now)
	if err := o.repos.SyncRun.Create(run); err != nil {
		log.Errorf("[Syncer] Failed to open audit record for shop %d: %v", shop.ID, err)
		return nil, ErrInternal
	}

	rejection, err := o.admit(shop, mode, now)
	if err != nil {
		o.finalize(run, models.SYNC_RUN_FAILED, err.Error())
		return nil, ErrInternal
	}
	if rejection != nil {
		o.finalize(run, models.SYNC_RUN_FAILED, rejection.Error())
		return nil, rejection
	}

	var (
		usage     recommend.Usage
		synced    int
		skipped   int
		created   int
		shopState shopStateUpdate
	)

	txErr := o.db.Transaction(func(tx *gorm.DB) error {
		products := o.repos.Product.WithTx(tx)
		recs := o.repos.Recommendation.WithTx(tx)

		persisted, err := o.upsertProducts(products, shop.ID, req.Products)
		if err != nil {
			return err
		}
		synced = len(persisted)

		targets, err := o.diffTargets(recs, shop.ID, mode, persisted)
		if err != nil {
			return err
		}

		for _, source := range targets {
			candidates := recommend.Candidates(source, persisted)
			if len(candidates) == 0 {
				// Nothing admissible to pair with; not an error, not retried.
				skipped++
				continue
			}
			picks, callUsage, genErr := o.gen.Generate(ctx, source, candidates)
			usage.Add(callUsage)
			if genErr != nil {
				return genErr
			}
			for _, pick := range picks {
				isNew, upsertErr := recs.Upsert(&models.Recommendation{
					ShopID:               shop.ID,
					ProductID:            source.ID,
					RecommendedProductID: pick.Product.ID,
					Reason:               pick.Reason,
				})
				if upsertErr != nil {
					return upsertErr
				}
				if isNew {
					created++
				}
			}
		}

		state, err := o.commitShopState(tx, shop, mode, now, usage)
		if err != nil {
			return err
		}
		shopState = state
		return nil
	})
	if txErr != nil {
		log.Errorf("[Syncer] Run %s for shop %d failed: %v", run.UUID, shop.ID, txErr)
		o.finalize(run, models.SYNC_RUN_FAILED, txErr.Error())
		return nil, ErrInternal
	}

	shopState.apply(shop, mode, now)

	// The transaction is committed; from here on the database is the source
	// of truth and the cache must not serve pre-sync reads.
	o.cache.InvalidateShop(shop.ID)

	totalRecs, err := o.repos.Recommendation.CountByShop(shop.ID)
	if err != nil {
		log.Warnf("[Syncer] Failed to count edges for shop %d: %v", shop.ID, err)
	}

	run.ProductsSynced = synced
	run.ProductsSkipped = skipped
	run.RecommendationsCreated = created
	run.PromptTokens = usage.PromptTokens
	run.CompletionTokens = usage.CompletionTokens
	run.TotalTokens = usage.Total()
	o.finalize(run, models.SYNC_RUN_SUCCESS, "")

	return o.buildResult(run, shop, mode, now, totalRecs, skipped), nil
}

// admit evaluates every admission gate against read-only state. The returned
// rejection leaves no persisted effects beyond the finalized audit record.
func (o *Orchestrator) admit(shop *models.Shop, mode Mode, now time.Time) (*Rejection, error) {
	if !shop.SyncEnabled {
		return rejectForbidden(CodeSyncDisabled, "sync is disabled for this shop"), nil
	}

	// Whitelist status can change between runs, so this gate is evaluated on
	// every run, mid-subscription or not.
	if shop.DevelopmentStore && !shop.Whitelisted {
		return rejectForbidden(CodeShopNotEligible, "development stores require whitelisting"), nil
	}

	budget := plans.DailyTokenBudget(shop)
	if used := quota.EffectiveShopTokens(shop, now); used >= budget {
		r := rejectRateLimited(CodeShopTokensExhausted, "daily token budget of this shop is exhausted", quota.NextDailyReset(now))
		return r.WithUsage(int(used), int(budget)), nil
	}

	if plans.UsesGlobalTokenBudget(shop.Plan) {
		state, err := o.ledger.GlobalState(now)
		if err != nil {
			return nil, err
		}
		if state.Used >= state.Budget {
			r := rejectRateLimited(CodeGlobalTokensExhausted, "shared daily token budget is exhausted", state.ResetAt)
			return r.WithUsage(int(state.Used), int(state.Budget)), nil
		}
	}

	if mode == ModeRefresh {
		limit := plans.RefreshLimit(shop.Plan)
		if limit == 0 {
			return rejectForbidden(CodeRefreshNotAvailable, "catalog refresh is not available on the free plan"), nil
		}
		if used := quota.EffectiveRefreshCount(shop, now); used >= limit {
			r := rejectRateLimited(CodeRefreshLimitReached, "refresh limit for this billing cycle is reached", quota.NextCycleStart(shop.SubscriptionAnchor, now))
			return r.WithUsage(used, limit), nil
		}
	}

	return nil, nil
}

// upsertProducts persists the submitted payloads by natural key, deduplicated
// within the request so a repeated payload cannot create duplicates or skew
// counts.
func (o *Orchestrator) upsertProducts(products repository.ProductRepository, shopID uint, inputs []ProductInput) ([]models.Product, error) {
	persisted := make([]models.Product, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, input := range inputs {
		externalID := strings.TrimSpace(input.ExternalID)
		if externalID == "" || seen[externalID] {
			continue
		}
		seen[externalID] = true

		product := models.Product{
			ShopID:      shopID,
			ExternalID:  externalID,
			Handle:      input.Handle,
			Title:       input.Title,
			Description: input.Description,
			ProductType: input.ProductType,
			Vendor:      input.Vendor,
			Price:       input.Price,
			ImageURL:    input.ImageURL,
			Tags:        models.JoinTags(input.Tags),
		}
		if err := products.Upsert(&product); err != nil {
			return nil, err
		}
		persisted = append(persisted, product)
	}
	return persisted, nil
}

// diffTargets selects which persisted products need generation for the
// resolved mode. Refresh wipes the shop's edges before targeting everything.
func (o *Orchestrator) diffTargets(recs repository.RecommendationRepository, shopID uint, mode Mode, persisted []models.Product) ([]models.Product, error) {
	switch mode {
	case ModeRefresh:
		if err := recs.DeleteByShop(shopID); err != nil {
			return nil, err
		}
		return persisted, nil
	case ModeIncremental:
		withEdges, err := recs.SourceIDsWithEdges(shopID)
		if err != nil {
			return nil, err
		}
		targets := make([]models.Product, 0, len(persisted))
		for _, product := range persisted {
			if !withEdges[product.ID] {
				targets = append(targets, product)
			}
		}
		return targets, nil
	default:
		return persisted, nil
	}
}

// shopStateUpdate carries counter values computed under row locks inside the
// transaction back onto the in-memory shop model after the commit.
type shopStateUpdate struct {
	productCount    int64
	refreshCount    int
	refreshCycleKey string
	tokensUsedToday int64
	tokensDebited   bool
	refreshRecorded bool
}

func (s shopStateUpdate) apply(shop *models.Shop, mode Mode, now time.Time) {
	shop.ProductCount = int(s.productCount)
	if mode == ModeInitial {
		shop.InitialSyncDone = true
		shop.LastRefreshAt = &now
	}
	if s.refreshRecorded {
		shop.RefreshCount = s.refreshCount
		shop.RefreshCycleKey = s.refreshCycleKey
		shop.LastRefreshAt = &now
	}
	if s.tokensDebited {
		shop.TokensUsedToday = s.tokensUsedToday
		shop.TokensDate = quota.DayKey(now)
	}
}

// commitShopState updates the shop row and debits the quota ledger inside the
// run's transaction.
func (o *Orchestrator) commitShopState(tx *gorm.DB, shop *models.Shop, mode Mode, now time.Time, usage recommend.Usage) (shopStateUpdate, error) {
	var state shopStateUpdate

	count, err := o.repos.Product.WithTx(tx).CountByShop(shop.ID)
	if err != nil {
		return state, err
	}
	state.productCount = count

	updates := map[string]any{"product_count": count}
	if mode == ModeInitial {
		updates["initial_sync_done"] = true
		updates["last_refresh_at"] = now
	}
	if err := tx.Model(&models.Shop{}).Where("id = ?", shop.ID).Updates(updates).Error; err != nil {
		return state, err
	}

	if mode == ModeRefresh {
		refreshCount, cycleKey, err := o.ledger.RecordRefresh(tx, shop.ID, now)
		if err != nil {
			return state, err
		}
		state.refreshRecorded = true
		state.refreshCount = refreshCount
		state.refreshCycleKey = cycleKey
	}

	if total := usage.Total(); total > 0 {
		used, err := o.ledger.DebitShopTokens(tx, shop.ID, now, int64(total))
		if err != nil {
			return state, err
		}
		state.tokensDebited = true
		state.tokensUsedToday = used

		if plans.UsesGlobalTokenBudget(shop.Plan) {
			if err := o.ledger.DebitGlobal(tx, now, int64(total)); err != nil {
				return state, err
			}
		}
	}

	return state, nil
}

func (o *Orchestrator) buildResult(run *models.SyncRun, shop *models.Shop, mode Mode, now time.Time, totalRecs int64, skipped int) *Result {
	limit := plans.RefreshLimit(shop.Plan)
	used := quota.EffectiveRefreshCount(shop, now)
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}

	result := &Result{
		RunUUID:                run.UUID,
		Mode:                   mode,
		ProductsSynced:         run.ProductsSynced,
		ProductsSkipped:        skipped,
		RecommendationsCreated: run.RecommendationsCreated,
		TotalRecommendations:   totalRecs,
		TokensUsed:             run.TotalTokens,
		Refresh: RefreshState{
			Used:        used,
			Limit:       limit,
			Remaining:   remaining,
			NextCycleAt: quota.NextCycleStart(shop.SubscriptionAnchor, now),
		},
	}

	if plans.UsesGlobalTokenBudget(shop.Plan) {
		if state, err := o.ledger.GlobalState(now); err == nil {
			remainingTokens := state.Remaining()
			result.TokensRemainingToday = &remainingTokens
		}
	}

	return result
}

// finalize stamps the audit record exactly once; finalization failures are
// logged and never override the run's outcome for the caller.
func (o *Orchestrator) finalize(run *models.SyncRun, status string, errMsg string) {
	if !run.Finalize(status, errMsg, o.now()) {
		return
	}
	if err := o.repos.SyncRun.Update(run); err != nil {
		log.Errorf("[Syncer] Failed to finalize run %s: %v", run.UUID, err)
	}
}
