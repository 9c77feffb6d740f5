package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitcoin-challenge/internal/models"
	"fitcoin-challenge/internal/testutil"
)

func placeWager(
	t *testing.T,
	env *testEnv,
	creator, target *models.User,
	ct models.ChallengeType,
	p models.WagerPrediction,
	amount int64,
) []*models.Wager {
	t.Helper()
	wagers, err := env.wagers.CreateWager(context.Background(), creator.ID, &models.CreateWagerRequest{
		TargetUserID:  target.ID,
		ChallengeType: ct,
		Prediction:    p,
		Amount:        amount,
	})
	require.NoError(t, err)
	return wagers
}

func TestWagerLifecycleScenario(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	a := testutil.CreateUser(t, env.db, "A", 200)
	b := testutil.CreateUser(t, env.db, "B", 200)
	c := testutil.CreateUser(t, env.db, "C", 200)
	testutil.CreateChallenge(t, env.db, b.ID)
	issued := env.issued(t)

	wagers := placeWager(t, env, a, b, models.ChallengeTypeDexa, models.WagerPredictionPass, 50)
	require.Len(t, wagers, 1)
	w := wagers[0]
	assert.Equal(t, int64(150), env.balance(t, a))
	assert.Equal(t, models.WagerStatusOpen, env.wager(t, w.ID).Status)

	countered, err := env.wagers.CounterWager(ctx, w.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WagerStatusMatched, countered.Status)
	assert.Equal(t, int64(150), env.balance(t, c))

	summary, err := env.wagers.ResolveChallenge(ctx, env.admins.ID, b.ID, models.ChallengeTypeDexa, models.ChallengeStatusPassed)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Settled)
	assert.Equal(t, int64(100), summary.PaidOut)

	assert.Equal(t, int64(250), env.balance(t, a))
	assert.Equal(t, int64(150), env.balance(t, c))
	settled := env.wager(t, w.ID)
	assert.Equal(t, models.WagerStatusSettled, settled.Status)
	require.NotNil(t, settled.WinnerID)
	assert.Equal(t, a.ID, *settled.WinnerID)

	assert.Equal(t, issued, env.issued(t))
}

func TestCounterPartyWinsWhenPredictionIsWrong(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	a := testutil.CreateUser(t, env.db, "A", 200)
	b := testutil.CreateUser(t, env.db, "B", 200)
	c := testutil.CreateUser(t, env.db, "C", 200)
	testutil.CreateChallenge(t, env.db, b.ID)

	w := placeWager(t, env, a, b, models.ChallengeTypeFunctional, models.WagerPredictionFail, 30)[0]
	_, err := env.wagers.CounterWager(ctx, w.ID, c.ID)
	require.NoError(t, err)

	_, err = env.wagers.ResolveChallenge(ctx, env.admins.ID, b.ID, models.ChallengeTypeFunctional, models.ChallengeStatusPassed)
	require.NoError(t, err)

	assert.Equal(t, int64(170), env.balance(t, a))
	assert.Equal(t, int64(230), env.balance(t, c))
	assert.Equal(t, c.ID, *env.wager(t, w.ID).WinnerID)
}

func TestCreateThenCancelRestoresBalance(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	a := testutil.CreateUser(t, env.db, "A", 120)
	b := testutil.CreateUser(t, env.db, "B", 0)
	testutil.CreateChallenge(t, env.db, b.ID)

	w := placeWager(t, env, a, b, models.ChallengeTypeDexa, models.WagerPredictionPass, 70)[0]
	assert.Equal(t, int64(50), env.balance(t, a))

	cancelled, err := env.wagers.CancelWager(ctx, w.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WagerStatusCancelled, cancelled.Status)
	assert.Equal(t, int64(120), env.balance(t, a))

	_, err = env.wagers.CancelWager(ctx, w.ID, a.ID)
	assert.ErrorIs(t, err, ErrWagerNotOpen)
	assert.Equal(t, int64(120), env.balance(t, a))

	history, err := env.users.Transactions(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	var sum int64
	for _, tx := range history {
		sum += tx.Amount
	}
	assert.Equal(t, int64(0), sum)
}

func TestCreateWagerBothChargesTwice(t *testing.T) {
	env := setupTestEnv(t)

	a := testutil.CreateUser(t, env.db, "A", 100)
	b := testutil.CreateUser(t, env.db, "B", 0)
	testutil.CreateChallenge(t, env.db, b.ID)

	wagers := placeWager(t, env, a, b, models.ChallengeTypeBoth, models.WagerPredictionPass, 40)
	require.Len(t, wagers, 2)
	assert.Equal(t, models.ChallengeTypeDexa, wagers[0].ChallengeType)
	assert.Equal(t, models.ChallengeTypeFunctional, wagers[1].ChallengeType)
	assert.Equal(t, int64(20), env.balance(t, a))

	// 2 × 20 > 20 remaining, so nothing is placed
	_, err := env.wagers.CreateWager(context.Background(), a.ID, &models.CreateWagerRequest{
		TargetUserID:  b.ID,
		ChallengeType: models.ChallengeTypeBoth,
		Prediction:    models.WagerPredictionFail,
		Amount:        20,
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(20), env.balance(t, a))

	var count int64
	env.db.Model(&models.Wager{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestCreateWagerValidation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	a := testutil.CreateUser(t, env.db, "A", 100)
	b := testutil.CreateUser(t, env.db, "B", 0)
	noGoals := testutil.CreateUser(t, env.db, "NoGoals", 0)
	testutil.CreateChallenge(t, env.db, b.ID)

	tests := []struct {
		name string
		req  models.CreateWagerRequest
		want error
	}{
		{"zero amount", models.CreateWagerRequest{TargetUserID: b.ID, ChallengeType: models.ChallengeTypeDexa, Prediction: models.WagerPredictionPass, Amount: 0}, ErrInvalidAmount},
		{"negative amount", models.CreateWagerRequest{TargetUserID: b.ID, ChallengeType: models.ChallengeTypeDexa, Prediction: models.WagerPredictionPass, Amount: -5}, ErrInvalidAmount},
		{"bad type", models.CreateWagerRequest{TargetUserID: b.ID, ChallengeType: "CARDIO", Prediction: models.WagerPredictionPass, Amount: 5}, ErrInvalidChallengeType},
		{"bad prediction", models.CreateWagerRequest{TargetUserID: b.ID, ChallengeType: models.ChallengeTypeDexa, Prediction: "MAYBE", Amount: 5}, ErrInvalidPrediction},
		{"over balance", models.CreateWagerRequest{TargetUserID: b.ID, ChallengeType: models.ChallengeTypeDexa, Prediction: models.WagerPredictionPass, Amount: 101}, ErrInsufficientBalance},
		{"unknown target", models.CreateWagerRequest{TargetUserID: uuid.New(), ChallengeType: models.ChallengeTypeDexa, Prediction: models.WagerPredictionPass, Amount: 5}, ErrNotFound},
		{"target without goals", models.CreateWagerRequest{TargetUserID: noGoals.ID, ChallengeType: models.ChallengeTypeDexa, Prediction: models.WagerPredictionPass, Amount: 5}, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := env.wagers.CreateWager(ctx, a.ID, &req)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, int64(100), env.balance(t, a))
		})
	}
}

func TestCreateWagerOnResolvedGoal(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	a := testutil.CreateUser(t, env.db, "A", 100)
	b := testutil.CreateUser(t, env.db, "B", 0)
	testutil.CreateChallenge(t, env.db, b.ID)

	_, err := env.wagers.ResolveChallenge(ctx, env.admins.ID, b.ID, models.ChallengeTypeDexa, models.ChallengeStatusFailed)
	require.NoError(t, err)

	_, err = env.wagers.CreateWager(ctx, a.ID, &models.CreateWagerRequest{
		TargetUserID: b.ID, ChallengeType: models.ChallengeTypeDexa, Prediction: models.WagerPredictionPass, Amount: 10,
	})
	assert.ErrorIs(t, err, ErrChallengeResolved)

	// BOTH covers the resolved DEXA goal too
	_, err = env.wagers.CreateWager(ctx, a.ID, &models.CreateWagerRequest{
		TargetUserID: b.ID, ChallengeType: models.ChallengeTypeBoth, Prediction: models.WagerPredictionPass, Amount: 10,
	})
	assert.ErrorIs(t, err, ErrChallengeResolved)
	assert.Equal(t, int64(100), env.balance(t, a))

	placeWager(t, env, a, b, models.ChallengeTypeFunctional, models.WagerPredictionPass, 10)
	assert.Equal(t, int64(90), env.balance(t, a))
}

func TestCounterWagerRules(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	a := testutil.CreateUser(t, env.db, "A", 100)
	b := testutil.CreateUser(t, env.db, "B", 0)
	poor := testutil.CreateUser(t, env.db, "Poor", 10)
	testutil.CreateChallenge(t, env.db, b.ID)

	w := placeWager(t, env, a, b, models.ChallengeTypeDexa, models.WagerPredictionPass, 50)[0]

	_, err := env.wagers.CounterWager(ctx, w.ID, a.ID)
	assert.ErrorIs(t, err, ErrSelfCounter)

	_, err = env.wagers.CounterWager(ctx, w.ID, poor.ID)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(10), env.balance(t, poor))
	assert.Equal(t, models.WagerStatusOpen, env.wager(t, w.ID).Status)

	_, err = env.wagers.CounterWager(ctx, uuid.New(), b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// the target may bet on themselves
	_, err = env.wagers.CounterWager(ctx, w.ID, b.ID)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	require.NoError(t, env.repo.UpdateUser(ctx, b.ID, map[string]interface{}{"balance": 60}))
	_, err = env.wagers.CounterWager(ctx, w.ID, b.ID)
	require.NoError(t, err)

	_, err = env.wagers.CounterWager(ctx, w.ID, poor.ID)
	assert.ErrorIs(t, err, ErrWagerNotOpen)
}

func TestCancelWagerRules(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	a := testutil.CreateUser(t, env.db, "A", 100)
	b := testutil.CreateUser(t, env.db, "B", 100)
	c := testutil.CreateUser(t, env.db, "C", 100)
	testutil.CreateChallenge(t, env.db, b.ID)

	w := placeWager(t, env, a, b, models.ChallengeTypeDexa, models.WagerPredictionPass, 50)[0]

	_, err := env.wagers.CancelWager(ctx, w.ID, c.ID)
	assert.ErrorIs(t, err, ErrNotCreator)

	_, err = env.wagers.CounterWager(ctx, w.ID, c.ID)
	require.NoError(t, err)

	_, err = env.wagers.CancelWager(ctx, w.ID, a.ID)
	assert.ErrorIs(t, err, ErrWagerNotOpen)
	assert.Equal(t, int64(50), env.balance(t, a))
}

func TestResolveChallengeGuards(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	a := testutil.CreateUser(t, env.db, "A", 100)
	b := testutil.CreateUser(t, env.db, "B", 100)
	c := testutil.CreateUser(t, env.db, "C", 100)
	testutil.CreateChallenge(t, env.db, b.ID)

	w := placeWager(t, env, a, b, models.ChallengeTypeDexa, models.WagerPredictionPass, 50)[0]
	_, err := env.wagers.CounterWager(ctx, w.ID, c.ID)
	require.NoError(t, err)

	_, err = env.wagers.ResolveChallenge(ctx, a.ID, b.ID, models.ChallengeTypeDexa, models.ChallengeStatusPassed)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = env.wagers.ResolveChallenge(ctx, env.admins.ID, b.ID, models.ChallengeTypeDexa, models.ChallengeStatusPending)
	assert.ErrorIs(t, err, ErrInvalidOutcome)

	_, err = env.wagers.ResolveChallenge(ctx, env.admins.ID, b.ID, models.ChallengeTypeBoth, models.ChallengeStatusPassed)
	assert.ErrorIs(t, err, ErrInvalidChallengeType)

	_, err = env.wagers.ResolveChallenge(ctx, env.admins.ID, c.ID, models.ChallengeTypeDexa, models.ChallengeStatusPassed)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.wagers.ResolveChallenge(ctx, env.admins.ID, b.ID, models.ChallengeTypeDexa, models.ChallengeStatusPassed)
	require.NoError(t, err)
	assert.Equal(t, int64(150), env.balance(t, a))

	// a second resolution must not pay anyone again
	_, err = env.wagers.ResolveChallenge(ctx, env.admins.ID, b.ID, models.ChallengeTypeDexa, models.ChallengeStatusFailed)
	assert.ErrorIs(t, err, ErrChallengeAlreadyResolved)
	assert.Equal(t, int64(150), env.balance(t, a))
	assert.Equal(t, int64(50), env.balance(t, c))
}

func TestResolveOnlyTouchesItsOwnWagers(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	a := testutil.CreateUser(t, env.db, "A", 500)
	b := testutil.CreateUser(t, env.db, "B", 500)
	c := testutil.CreateUser(t, env.db, "C", 500)
	testutil.CreateChallenge(t, env.db, b.ID)
	testutil.CreateChallenge(t, env.db, c.ID)
	issued := env.issued(t)

	onTarget := placeWager(t, env, a, b, models.ChallengeTypeDexa, models.WagerPredictionPass, 10)[0]
	_, err := env.wagers.CounterWager(ctx, onTarget.ID, c.ID)
	require.NoError(t, err)
	openOnTarget := placeWager(t, env, c, b, models.ChallengeTypeDexa, models.WagerPredictionFail, 25)[0]
	otherType := placeWager(t, env, a, b, models.ChallengeTypeFunctional, models.WagerPredictionPass, 10)[0]
	_, err = env.wagers.CounterWager(ctx, otherType.ID, c.ID)
	require.NoError(t, err)
	otherUser := placeWager(t, env, a, c, models.ChallengeTypeDexa, models.WagerPredictionPass, 10)[0]

	summary, err := env.wagers.ResolveChallenge(ctx, env.admins.ID, b.ID, models.ChallengeTypeDexa, models.ChallengeStatusPassed)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Settled)
	assert.Equal(t, 1, summary.Refunded)
	assert.Equal(t, int64(45), summary.PaidOut)

	assert.Equal(t, models.WagerStatusSettled, env.wager(t, onTarget.ID).Status)
	assert.Equal(t, models.WagerStatusCancelled, env.wager(t, openOnTarget.ID).Status)
	assert.Equal(t, models.WagerStatusMatched, env.wager(t, otherType.ID).Status)
	assert.Equal(t, models.WagerStatusOpen, env.wager(t, otherUser.ID).Status)

	// a: -10 -10 -10 +20; c: -10 -25 +25 -10
	assert.Equal(t, int64(490), env.balance(t, a))
	assert.Equal(t, int64(480), env.balance(t, c))
	assert.Equal(t, issued, env.issued(t))
}

func TestConcurrentCountersMatchOnce(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	a := testutil.CreateUser(t, env.db, "A", 100)
	b := testutil.CreateUser(t, env.db, "B", 0)
	testutil.CreateChallenge(t, env.db, b.ID)
	w := placeWager(t, env, a, b, models.ChallengeTypeDexa, models.WagerPredictionPass, 40)[0]

	const n = 8
	counters := make([]*models.User, n)
	for i := range counters {
		counters[i] = testutil.CreateUser(t, env.db, "counter-"+uuid.NewString()[:8], 100)
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.wagers.CounterWager(ctx, w.ID, counters[i].ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i, err := range errs {
		if err == nil {
			succeeded++
			assert.Equal(t, int64(60), env.balance(t, counters[i]))
			continue
		}
		assert.ErrorIs(t, err, ErrWagerNotOpen)
		assert.Equal(t, int64(100), env.balance(t, counters[i]))
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, models.WagerStatusMatched, env.wager(t, w.ID).Status)
}

func TestBettingClosesAfterEndDate(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	a := testutil.CreateUser(t, env.db, "A", 100)
	b := testutil.CreateUser(t, env.db, "B", 100)
	c := testutil.CreateUser(t, env.db, "C", 100)
	testutil.CreateChallenge(t, env.db, b.ID)

	open := placeWager(t, env, a, b, models.ChallengeTypeDexa, models.WagerPredictionPass, 10)[0]
	matched := placeWager(t, env, a, b, models.ChallengeTypeFunctional, models.WagerPredictionPass, 10)[0]
	_, err := env.wagers.CounterWager(ctx, matched.ID, c.ID)
	require.NoError(t, err)

	end := time.Now().Add(time.Hour)
	require.NoError(t, env.settings.SetChallengeEndDate(ctx, env.admins.ID, end))

	n, err := env.wagers.CloseOpenWagers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	env.wagers.now = func() time.Time { return end.Add(time.Minute) }

	_, err = env.wagers.CreateWager(ctx, a.ID, &models.CreateWagerRequest{
		TargetUserID: b.ID, ChallengeType: models.ChallengeTypeDexa, Prediction: models.WagerPredictionPass, Amount: 5,
	})
	assert.ErrorIs(t, err, ErrBettingClosed)
	_, err = env.wagers.CounterWager(ctx, open.ID, c.ID)
	assert.ErrorIs(t, err, ErrBettingClosed)

	n, err = env.wagers.CloseOpenWagers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, models.WagerStatusCancelled, env.wager(t, open.ID).Status)
	assert.Equal(t, models.WagerStatusMatched, env.wager(t, matched.ID).Status)
	assert.Equal(t, int64(90), env.balance(t, a))
}

func TestShareCodeRoundTrip(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	a := testutil.CreateUser(t, env.db, "A", 100)
	b := testutil.CreateUser(t, env.db, "B", 0)
	testutil.CreateChallenge(t, env.db, b.ID)
	w := placeWager(t, env, a, b, models.ChallengeTypeDexa, models.WagerPredictionPass, 10)[0]

	code := ShareCode(w.ID)
	found, err := env.wagers.GetWagerByShareCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, w.ID, found.ID)
	require.NotNil(t, found.TargetUser)
	assert.Equal(t, "B", found.TargetUser.Name)

	_, err = env.wagers.GetWagerByShareCode(ctx, "0OIl")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.wagers.GetWagerByShareCode(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWagerFeeds(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.wagers.feedLimit = 2

	a := testutil.CreateUser(t, env.db, "A", 100)
	b := testutil.CreateUser(t, env.db, "B", 100)
	testutil.CreateChallenge(t, env.db, b.ID)
	testutil.CreateChallenge(t, env.db, a.ID)

	placeWager(t, env, a, b, models.ChallengeTypeDexa, models.WagerPredictionPass, 1)
	placeWager(t, env, a, b, models.ChallengeTypeDexa, models.WagerPredictionPass, 2)
	placeWager(t, env, b, a, models.ChallengeTypeDexa, models.WagerPredictionPass, 3)

	feed, err := env.wagers.ListRecentWagers(ctx)
	require.NoError(t, err)
	assert.Len(t, feed, 2)

	mine, err := env.wagers.ListUserWagers(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestPoolTotalUnaffectedByWagers(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	a := testutil.CreateUser(t, env.db, "A", 100)
	b := testutil.CreateUser(t, env.db, "B", 100)
	testutil.CreateChallenge(t, env.db, b.ID)
	before := env.poolTotal(t)

	w := placeWager(t, env, a, b, models.ChallengeTypeDexa, models.WagerPredictionPass, 10)[0]
	_, err := env.wagers.CancelWager(ctx, w.ID, a.ID)
	require.NoError(t, err)

	assert.True(t, before.Equal(env.poolTotal(t)))
	assert.True(t, before.Equal(decimal.Zero))
}
