package syncer

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pairsell/pairsell/app/models"
	"github.com/pairsell/pairsell/app/repository"
	"github.com/pairsell/pairsell/internal/pkg/quota"
)

var testNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

// fakeLedger serves a canned global snapshot; the debit side is not exercised
// by admission tests.
type fakeLedger struct {
	state *quota.GlobalState
	err   error
}

func (f *fakeLedger) GlobalState(_ time.Time) (*quota.GlobalState, error) {
	return f.state, f.err
}

func (f *fakeLedger) DebitGlobal(_ *gorm.DB, _ time.Time, _ int64) error { return nil }

func (f *fakeLedger) DebitShopTokens(_ *gorm.DB, _ uint, _ time.Time, tokens int64) (int64, error) {
	return tokens, nil
}

func (f *fakeLedger) RecordRefresh(_ *gorm.DB, _ uint, now time.Time) (int, string, error) {
	return 1, quota.CycleKey(nil, now), nil
}

func openGlobalState() *quota.GlobalState {
	return &quota.GlobalState{Budget: 1000000, Used: 0, ResetAt: quota.NextDailyReset(testNow)}
}

func eligibleShop(plan string) *models.Shop {
	return &models.Shop{
		ID:              7,
		Plan:            plan,
		SyncEnabled:     true,
		InitialSyncDone: true,
	}
}

func admitOrchestrator(state *quota.GlobalState) *Orchestrator {
	return &Orchestrator{ledger: &fakeLedger{state: state}}
}

func TestAdmitSyncDisabled(t *testing.T) {
	shop := eligibleShop(models.PLAN_FREE)
	shop.SyncEnabled = false

	rej, err := admitOrchestrator(openGlobalState()).admit(shop, ModeIncremental, testNow)
	require.NoError(t, err)
	require.NotNil(t, rej)
	assert.Equal(t, CodeSyncDisabled, rej.Code)
	assert.Equal(t, fiber.StatusForbidden, rej.Status)
	assert.False(t, rej.Retryable())
	assert.Nil(t, rej.Remaining)
}

func TestAdmitDevelopmentStore(t *testing.T) {
	shop := eligibleShop(models.PLAN_FREE)
	shop.DevelopmentStore = true

	rej, err := admitOrchestrator(openGlobalState()).admit(shop, ModeIncremental, testNow)
	require.NoError(t, err)
	require.NotNil(t, rej)
	assert.Equal(t, CodeShopNotEligible, rej.Code)

	shop.Whitelisted = true
	rej, err = admitOrchestrator(openGlobalState()).admit(shop, ModeIncremental, testNow)
	require.NoError(t, err)
	assert.Nil(t, rej)
}

func TestAdmitShopTokensExhausted(t *testing.T) {
	shop := eligibleShop(models.PLAN_PRO)
	shop.TokensUsedToday = models.DefaultDailyTokenBudget
	shop.TokensDate = quota.DayKey(testNow)

	rej, err := admitOrchestrator(openGlobalState()).admit(shop, ModeIncremental, testNow)
	require.NoError(t, err)
	require.NotNil(t, rej)
	assert.Equal(t, CodeShopTokensExhausted, rej.Code)
	assert.Equal(t, fiber.StatusTooManyRequests, rej.Status)
	require.True(t, rej.Retryable())
	assert.Equal(t, quota.NextDailyReset(testNow), *rej.RetryAt)
	assert.Equal(t, int(models.DefaultDailyTokenBudget), rej.Used)
	require.NotNil(t, rej.Remaining)
	assert.Equal(t, 0, *rej.Remaining)
}

func TestAdmitRejectionCarriesClampedRemaining(t *testing.T) {
	// The last debit can overshoot the budget; remaining never goes negative.
	shop := eligibleShop(models.PLAN_PRO)
	shop.TokensUsedToday = models.DefaultDailyTokenBudget + 500
	shop.TokensDate = quota.DayKey(testNow)

	rej, err := admitOrchestrator(openGlobalState()).admit(shop, ModeIncremental, testNow)
	require.NoError(t, err)
	require.NotNil(t, rej)
	require.NotNil(t, rej.Remaining)
	assert.Equal(t, 0, *rej.Remaining)
}

func TestAdmitShopTokensStaleDateCountsAsZero(t *testing.T) {
	shop := eligibleShop(models.PLAN_PRO)
	shop.TokensUsedToday = models.DefaultDailyTokenBudget
	shop.TokensDate = "2026-03-14"

	rej, err := admitOrchestrator(openGlobalState()).admit(shop, ModeIncremental, testNow)
	require.NoError(t, err)
	assert.Nil(t, rej)
}

func TestAdmitGlobalTokensExhausted(t *testing.T) {
	exhausted := &quota.GlobalState{
		Budget:  1000,
		Used:    1000,
		ResetAt: quota.NextDailyReset(testNow),
	}

	rej, err := admitOrchestrator(exhausted).admit(eligibleShop(models.PLAN_FREE), ModeIncremental, testNow)
	require.NoError(t, err)
	require.NotNil(t, rej)
	assert.Equal(t, CodeGlobalTokensExhausted, rej.Code)
	require.True(t, rej.Retryable())
	require.NotNil(t, rej.Remaining)
	assert.Equal(t, 0, *rej.Remaining)

	// Paid plans never touch the shared budget.
	rej, err = admitOrchestrator(exhausted).admit(eligibleShop(models.PLAN_PRO), ModeIncremental, testNow)
	require.NoError(t, err)
	assert.Nil(t, rej)
}

func TestAdmitRefreshGates(t *testing.T) {
	rej, err := admitOrchestrator(openGlobalState()).admit(eligibleShop(models.PLAN_FREE), ModeRefresh, testNow)
	require.NoError(t, err)
	require.NotNil(t, rej)
	assert.Equal(t, CodeRefreshNotAvailable, rej.Code)
	assert.Equal(t, fiber.StatusForbidden, rej.Status)
	assert.False(t, rej.Retryable())

	pro := eligibleShop(models.PLAN_PRO)
	pro.RefreshCount = 3
	pro.RefreshCycleKey = quota.CycleKey(nil, testNow)
	rej, err = admitOrchestrator(openGlobalState()).admit(pro, ModeRefresh, testNow)
	require.NoError(t, err)
	require.NotNil(t, rej)
	assert.Equal(t, CodeRefreshLimitReached, rej.Code)
	require.True(t, rej.Retryable())
	assert.Equal(t, quota.NextCycleStart(nil, testNow), *rej.RetryAt)
	assert.Equal(t, 3, rej.Used)
	assert.Equal(t, 3, rej.Limit)
	require.NotNil(t, rej.Remaining)
	assert.Equal(t, 0, *rej.Remaining)

	// A counter stamped with a previous cycle's key counts as zero.
	pro.RefreshCycleKey = "2026-02-01"
	rej, err = admitOrchestrator(openGlobalState()).admit(pro, ModeRefresh, testNow)
	require.NoError(t, err)
	assert.Nil(t, rej)
}

type fakeProductRepo struct {
	nextID   uint
	upserted []models.Product
}

func (f *fakeProductRepo) Upsert(product *models.Product) error {
	f.nextID++
	product.ID = f.nextID
	f.upserted = append(f.upserted, *product)
	return nil
}

func (f *fakeProductRepo) GetByID(uint) (*models.Product, error) { return nil, gorm.ErrRecordNotFound }
func (f *fakeProductRepo) GetByExternalID(uint, string) (*models.Product, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeProductRepo) ListByShop(uint) ([]models.Product, error) { return nil, nil }
func (f *fakeProductRepo) CountByShop(uint) (int64, error)           { return int64(len(f.upserted)), nil }
func (f *fakeProductRepo) Delete(uint) error                         { return nil }
func (f *fakeProductRepo) WithTx(*gorm.DB) repository.ProductRepository {
	return f
}

func TestUpsertProductsDeduplicatesPayload(t *testing.T) {
	repo := &fakeProductRepo{}
	o := &Orchestrator{}

	persisted, err := o.upsertProducts(repo, 7, []ProductInput{
		{ExternalID: "p-1", Title: "First"},
		{ExternalID: "  p-1  ", Title: "Duplicate of first"},
		{ExternalID: "", Title: "No natural key"},
		{ExternalID: "p-2", Title: "Second", Tags: []string{"summer", "sale"}},
	})
	require.NoError(t, err)
	require.Len(t, persisted, 2)
	assert.Equal(t, "p-1", persisted[0].ExternalID)
	assert.Equal(t, "p-2", persisted[1].ExternalID)
	assert.Equal(t, "summer,sale", persisted[1].Tags)
	assert.Equal(t, uint(7), persisted[0].ShopID)
	assert.NotZero(t, persisted[0].ID)
}

type fakeRecRepo struct {
	withEdges map[uint]bool
	deleted   []uint
}

func (f *fakeRecRepo) Upsert(*models.Recommendation) (bool, error) { return true, nil }
func (f *fakeRecRepo) ListBySource(uint, uint, int) ([]models.Recommendation, error) {
	return nil, nil
}
func (f *fakeRecRepo) SourceIDsWithEdges(uint) (map[uint]bool, error) { return f.withEdges, nil }
func (f *fakeRecRepo) CountByShop(uint) (int64, error)                { return 0, nil }
func (f *fakeRecRepo) DeleteByShop(shopID uint) error {
	f.deleted = append(f.deleted, shopID)
	return nil
}
func (f *fakeRecRepo) WithTx(*gorm.DB) repository.RecommendationRepository { return f }

func TestDiffTargets(t *testing.T) {
	persisted := []models.Product{{ID: 1}, {ID: 2}, {ID: 3}}
	o := &Orchestrator{}

	t.Run("initial targets everything", func(t *testing.T) {
		repo := &fakeRecRepo{}
		targets, err := o.diffTargets(repo, 7, ModeInitial, persisted)
		require.NoError(t, err)
		assert.Len(t, targets, 3)
		assert.Empty(t, repo.deleted)
	})

	t.Run("incremental skips products with edges", func(t *testing.T) {
		repo := &fakeRecRepo{withEdges: map[uint]bool{1: true, 3: true}}
		targets, err := o.diffTargets(repo, 7, ModeIncremental, persisted)
		require.NoError(t, err)
		require.Len(t, targets, 1)
		assert.Equal(t, uint(2), targets[0].ID)
		assert.Empty(t, repo.deleted)
	})

	t.Run("refresh wipes edges and targets everything", func(t *testing.T) {
		repo := &fakeRecRepo{withEdges: map[uint]bool{1: true}}
		targets, err := o.diffTargets(repo, 7, ModeRefresh, persisted)
		require.NoError(t, err)
		assert.Len(t, targets, 3)
		assert.Equal(t, []uint{7}, repo.deleted)
	})
}

func TestShopStateApply(t *testing.T) {
	shop := eligibleShop(models.PLAN_PRO)
	shop.InitialSyncDone = false

	state := shopStateUpdate{
		productCount:    42,
		tokensDebited:   true,
		tokensUsedToday: 1234,
	}
	state.apply(shop, ModeInitial, testNow)

	assert.Equal(t, 42, shop.ProductCount)
	assert.True(t, shop.InitialSyncDone)
	require.NotNil(t, shop.LastRefreshAt)
	assert.Equal(t, testNow, *shop.LastRefreshAt)
	assert.Equal(t, int64(1234), shop.TokensUsedToday)
	assert.Equal(t, quota.DayKey(testNow), shop.TokensDate)

	refreshed := eligibleShop(models.PLAN_PRO)
	refreshState := shopStateUpdate{
		productCount:    42,
		refreshRecorded: true,
		refreshCount:    2,
		refreshCycleKey: quota.CycleKey(nil, testNow),
	}
	refreshState.apply(refreshed, ModeRefresh, testNow)

	assert.Equal(t, 2, refreshed.RefreshCount)
	assert.Equal(t, quota.CycleKey(nil, testNow), refreshed.RefreshCycleKey)
	require.NotNil(t, refreshed.LastRefreshAt)
}

func TestBuildResultRefreshAndGlobalBudget(t *testing.T) {
	run := models.NewSyncRun(7, string(ModeRefresh), 10, testNow)
	run.ProductsSynced = 10
	run.RecommendationsCreated = 8
	run.TotalTokens = 500

	shop := eligibleShop(models.PLAN_PRO)
	shop.RefreshCount = 2
	shop.RefreshCycleKey = quota.CycleKey(nil, testNow)

	o := admitOrchestrator(&quota.GlobalState{Budget: 1000, Used: 400, ResetAt: quota.NextDailyReset(testNow)})
	result := o.buildResult(run, shop, ModeRefresh, testNow, 25, 2)

	assert.Equal(t, run.UUID, result.RunUUID)
	assert.Equal(t, 2, result.Refresh.Used)
	assert.Equal(t, 3, result.Refresh.Limit)
	assert.Equal(t, 1, result.Refresh.Remaining)
	assert.Equal(t, quota.NextCycleStart(nil, testNow), result.Refresh.NextCycleAt)
	assert.Equal(t, int64(25), result.TotalRecommendations)
	assert.Equal(t, 2, result.ProductsSkipped)
	// Paid plans do not report the shared budget.
	assert.Nil(t, result.TokensRemainingToday)

	free := eligibleShop(models.PLAN_FREE)
	result = o.buildResult(run, free, ModeIncremental, testNow, 25, 0)
	require.NotNil(t, result.TokensRemainingToday)
	assert.Equal(t, int64(600), *result.TokensRemainingToday)
}

func TestRequestValidation(t *testing.T) {
	valid := &Request{Products: []ProductInput{{ExternalID: "p-1", Title: "Shirt"}}}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name string
		req  *Request
	}{
		{"no products", &Request{}},
		{"unknown mode", &Request{Mode: "nightly", Products: []ProductInput{{ExternalID: "p-1", Title: "Shirt"}}}},
		{"product without external id", &Request{Products: []ProductInput{{Title: "Shirt"}}}},
		{"product without title", &Request{Products: []ProductInput{{ExternalID: "p-1"}}}},
		{"negative price", &Request{Products: []ProductInput{{ExternalID: "p-1", Title: "Shirt", Price: -1}}}},
	}
	for _, tt := range tests {
		assert.Error(t, tt.req.Validate(), tt.name)
	}
}
