package workflow_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fundflow/internal/record"
	"github.com/MrJamesThe3rd/fundflow/internal/rowstore/memory"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
	"github.com/MrJamesThe3rd/fundflow/internal/workflow"
)

// race runs op on two engines sharing store, starting both at once, and returns both errors.
func race(store *memory.Store, op func(e *workflow.Engine) error) []error {
	engines := []*workflow.Engine{
		newEngine(store, workflow.WithClaimSettle(50*time.Millisecond)),
		newEngine(store, workflow.WithClaimSettle(50*time.Millisecond)),
	}

	errs := make([]error, len(engines))
	start := make(chan struct{})

	var wg sync.WaitGroup

	for i, e := range engines {
		wg.Add(1)

		go func() {
			defer wg.Done()
			<-start

			errs[i] = op(e)
		}()
	}

	close(start)
	wg.Wait()

	return errs
}

func assertOneWinner(t *testing.T, errs []error) {
	t.Helper()

	successes, conflicts := 0, 0

	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, workflow.ErrConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)
}

func TestEngine_ConcurrentApprove(t *testing.T) {
	pending := approvedRecord("TRX-0002")
	pending.Approval.Status = record.ApprovalPending
	store := seed(approvedRecord("TRX-0001"), pending)

	errs := race(store, func(e *workflow.Engine) error {
		_, err := e.Approve(context.Background(), "TRX-0002")
		return err
	})

	assertOneWinner(t, errs)
	assert.Equal(t, "Approved", cellOf(t, store, 2, schema.ColApprovalStatus))
	assert.Empty(t, cellOf(t, store, 2, schema.ColClaim))
}

func TestEngine_ConcurrentApproveAndDecline(t *testing.T) {
	pending := approvedRecord("TRX-0001")
	pending.Approval.Status = record.ApprovalPending
	store := seed(pending)

	var calls sync.Mutex

	n := 0

	errs := race(store, func(e *workflow.Engine) error {
		calls.Lock()
		n++
		first := n == 1
		calls.Unlock()

		var err error
		if first {
			_, err = e.Approve(context.Background(), "TRX-0001")
		} else {
			_, err = e.Decline(context.Background(), "TRX-0001")
		}

		return err
	})

	assertOneWinner(t, errs)
	assert.Contains(t, []string{"Approved", "Declined"}, cellOf(t, store, 1, schema.ColApprovalStatus))
}

func TestEngine_NoDoublePayment(t *testing.T) {
	store := seed(approvedRecord("TRX-0001"))

	errs := race(store, func(e *workflow.Engine) error {
		_, err := e.IssuePayment(context.Background(), "TRX-0001", "Bank")
		return err
	})

	assertOneWinner(t, errs)

	r, err := newEngine(store).Get(context.Background(), "TRX-0001")
	require.NoError(t, err)
	assert.Equal(t, record.LiquidationToBeLiquidated, r.Liquidation.Status)
}

func TestEngine_ConcurrentSubmitsGetDistinctIDs(t *testing.T) {
	const writers = 8

	store := memory.New()

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[string]bool{}
	)

	for i := range writers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			eng := newEngine(store, workflow.WithSequencerAttempts(writers))

			r, err := eng.Submit(context.Background(), expenseDraft(-int64(i+1)))
			if !assert.NoError(t, err) {
				return
			}

			mu.Lock()
			defer mu.Unlock()

			assert.False(t, ids[r.ID], "duplicate id %s", r.ID)
			ids[r.ID] = true
		}()
	}

	wg.Wait()

	all, err := newEngine(store).List(context.Background(), workflow.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, writers)
	assert.Len(t, ids, writers)
}

// history tracks what each record has been, to check that terminal values never change.
type history struct {
	approval    record.ApprovalStatus
	issued      bool
	liquidated  bool
	liquidation record.Liquidation
}

func TestEngine_RandomTransitionsKeepInvariants(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(20240501))
	eng := newEngine(memory.New())

	var ids []string

	requested := map[string]int64{}

	for range 6 {
		amount := -(rng.Int63n(1000000) + 1)

		r, err := eng.Submit(ctx, expenseDraft(amount))
		require.NoError(t, err)

		ids = append(ids, r.ID)
		requested[r.ID] = amount
	}

	seen := map[string]history{}

	for step := range 300 {
		id := ids[rng.Intn(len(ids))]

		var (
			got    record.Record
			err    error
			amount int64
		)

		switch rng.Intn(4) {
		case 0:
			got, err = eng.Approve(ctx, id)
		case 1:
			got, err = eng.Decline(ctx, id)
		case 2:
			got, err = eng.IssuePayment(ctx, id, "Bank")
		default:
			amount = -rng.Int63n(1000000)
			got, err = eng.Liquidate(ctx, id, amount, "inv")
		}

		if err != nil {
			require.ErrorIs(t, err, workflow.ErrInvalidTransition, "step %d", step)
		} else if got.Liquidation.Status == record.LiquidationLiquidated && seen[id].liquidation.Status != record.LiquidationLiquidated {
			require.NotNil(t, got.Liquidation.ReturnedAmount)
			assert.Equal(t, amount-requested[id], *got.Liquidation.ReturnedAmount, "step %d", step)
		}

		all, err := eng.List(ctx, workflow.ListFilter{})
		require.NoError(t, err)

		for _, r := range all {
			require.NoError(t, schema.CheckInvariants(r), "step %d record %s", step, r.ID)

			if r.Liquidation.Status != record.LiquidationNotApplicable {
				require.Equal(t, record.PaymentIssued, r.Payment.Status)
			}

			prev := seen[r.ID]

			if prev.approval != "" && prev.approval != record.ApprovalPending {
				require.Equal(t, prev.approval, r.Approval.Status, "step %d record %s", step, r.ID)
			}

			if prev.issued {
				require.Equal(t, record.PaymentIssued, r.Payment.Status)
			}

			if prev.liquidated {
				require.Equal(t, prev.liquidation, r.Liquidation)
			}

			seen[r.ID] = history{
				approval:    r.Approval.Status,
				issued:      r.Payment.Status == record.PaymentIssued,
				liquidated:  r.Liquidation.Status == record.LiquidationLiquidated,
				liquidation: r.Liquidation,
			}
		}
	}
}
