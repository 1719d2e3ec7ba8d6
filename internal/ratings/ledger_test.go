package ratings

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_AverageOfThreeAndFive(t *testing.T) {
	ledger := NewLedger()

	avg, err := ledger.Rate(1, "buyer-a", 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, avg)

	avg, err = ledger.Rate(1, "buyer-b", 5)
	require.NoError(t, err)
	assert.Equal(t, 4.0, avg)

	_, err = ledger.Rate(1, "buyer-a", 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	avg, err = ledger.Rate(1, "buyer-c", 4)
	require.NoError(t, err)
	assert.Equal(t, 4.0, avg, "rejected vote must not count")
}

func TestLedger_RejectsOutOfRangeScores(t *testing.T) {
	ledger := NewLedger()
	for _, score := range []int{0, -1, 6, 100} {
		_, err := ledger.Rate(1, "buyer", score)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "score %d: %v", score, err)
	}

	avg, err := ledger.Rate(1, "buyer", 2)
	require.NoError(t, err, "rejected scores must not consume the rater's vote")
	assert.Equal(t, 2.0, avg)
}

func TestLedger_RequiresRater(t *testing.T) {
	ledger := NewLedger()
	_, err := ledger.Rate(1, " ", 3)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestLedger_SameRaterDifferentItems(t *testing.T) {
	ledger := NewLedger()
	avg, err := ledger.Rate(1, "buyer", 2)
	require.NoError(t, err)
	assert.Equal(t, 2.0, avg)

	avg, err = ledger.Rate(2, "buyer", 5)
	require.NoError(t, err)
	assert.Equal(t, 5.0, avg)
}

func TestLedger_TrimsRaterIdentity(t *testing.T) {
	ledger := NewLedger()
	_, err := ledger.Rate(1, "buyer", 2)
	require.NoError(t, err)
	_, err = ledger.Rate(1, "  buyer ", 5)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestLedger_ConcurrentDuplicateVotes(t *testing.T) {
	ledger := NewLedger()
	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := ledger.Rate(1, fmt.Sprintf("buyer-%d", i%10), i%5+1); err == nil {
				accepted.Add(1)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int32(10), accepted.Load())
}
