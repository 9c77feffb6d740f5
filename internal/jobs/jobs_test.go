package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitcoin-challenge/internal/models"
	"fitcoin-challenge/internal/repository"
	"fitcoin-challenge/internal/services"
	"fitcoin-challenge/internal/testutil"
)

type fakeCloser struct {
	calls atomic.Int32
	err   error
}

func (f *fakeCloser) CloseOpenWagers(ctx context.Context) (int, error) {
	f.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("missing deadline")
	}
	return 3, f.err
}

func TestCloseBettingJobRun(t *testing.T) {
	closer := &fakeCloser{}
	job := NewCloseBettingJob(closer)

	job.Run()
	assert.Equal(t, int32(1), closer.calls.Load())
	assert.Equal(t, "close_betting", job.Name())
}

func TestCloseBettingJobSurvivesErrors(t *testing.T) {
	closer := &fakeCloser{err: errors.New("database down")}
	job := NewCloseBettingJob(closer)

	assert.NotPanics(t, job.Run)
	assert.Equal(t, int32(1), closer.calls.Load())
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler()
	err := s.Register("every now and then", NewCloseBettingJob(&fakeCloser{}))
	assert.Error(t, err)
}

func TestSchedulerRunsJobs(t *testing.T) {
	closer := &fakeCloser{}
	s := NewScheduler()
	require.NoError(t, s.Register("@every 1s", NewCloseBettingJob(closer)))

	s.Start()
	assert.Eventually(t, func() bool { return closer.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	<-s.Stop().Done()
}

func TestCloseBettingJobRefundsAfterEndDate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewRepository(db)
	wagers := services.NewWagerService(repo, services.DefaultOptions())
	ctx := context.Background()

	creator := testutil.CreateUser(t, db, "creator", 60)
	target := testutil.CreateUser(t, db, "target", 0)
	testutil.CreateChallenge(t, db, target.ID)
	open := &models.Wager{
		CreatorID:     creator.ID,
		TargetUserID:  target.ID,
		ChallengeType: models.ChallengeTypeDexa,
		Prediction:    models.WagerPredictionFail,
		Amount:        40,
		Status:        models.WagerStatusOpen,
	}
	require.NoError(t, repo.CreateWager(ctx, open))

	job := NewCloseBettingJob(wagers)

	// no end date configured yet
	job.Run()
	assert.Equal(t, int64(60), testutil.Balance(t, db, creator.ID))

	past := decimal.NewFromInt(time.Now().Add(-time.Hour).Unix())
	require.NoError(t, repo.SetSetting(ctx, models.SettingChallengeEndDate, past))

	job.Run()
	assert.Equal(t, int64(100), testutil.Balance(t, db, creator.ID))

	stored, err := repo.GetWagerByID(ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WagerStatusCancelled, stored.Status)

	// a second pass finds nothing left to refund
	job.Run()
	assert.Equal(t, int64(100), testutil.Balance(t, db, creator.ID))
}
