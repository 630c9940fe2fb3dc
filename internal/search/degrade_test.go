package search

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jonathan/talent-scout/internal/apierror"
	"github.com/jonathan/talent-scout/internal/bountylab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithFallback_SuccessFirstTry(t *testing.T) {
	calls := 0
	got, dropped, err := WithFallback(context.Background(), developerSearchAttributes(),
		func(_ context.Context, attrs bountylab.Attributes) (string, error) {
			calls++
			assert.Len(t, attrs, 4)
			return "ok", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Nil(t, dropped)
	assert.Equal(t, 1, calls)
}

func TestWithFallback_ForbiddenRetriesBare(t *testing.T) {
	var seen []bountylab.Attributes
	got, dropped, err := WithFallback(context.Background(), developerSearchAttributes(),
		func(_ context.Context, attrs bountylab.Attributes) (string, error) {
			seen = append(seen, attrs)
			if len(attrs) > 0 {
				return "", &apierror.RemoteError{Status: http.StatusForbidden}
			}
			return "bare", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "bare", got)
	require.Len(t, seen, 2)
	assert.Empty(t, seen[1])
	assert.Equal(t, FeaturesUnavailable{
		EnrichDevRank:     true,
		EnrichAggregates:  true,
		EnrichContributes: true,
		EnrichFollowers:   true,
	}, dropped)
}

func TestWithFallback_NonForbiddenNeverRetries(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusTooManyRequests, http.StatusInternalServerError, 0} {
		calls := 0
		_, dropped, err := WithFallback(context.Background(), repoSearchAttributes(),
			func(context.Context, bountylab.Attributes) (int, error) {
				calls++
				if status == 0 {
					return 0, errors.New("dial failed")
				}
				return 0, &apierror.RemoteError{Status: status}
			})

		require.Error(t, err)
		assert.Equal(t, status, apierror.StatusOf(err))
		assert.Nil(t, dropped)
		assert.Equal(t, 1, calls, "status %d", status)
	}
}

func TestWithFallback_DegradedFailurePropagates(t *testing.T) {
	second := &apierror.RemoteError{Status: http.StatusForbidden, Message: "still forbidden"}
	calls := 0
	_, dropped, err := WithFallback(context.Background(), repoSearchAttributes(),
		func(_ context.Context, attrs bountylab.Attributes) (int, error) {
			calls++
			if calls == 1 {
				return 0, &apierror.RemoteError{Status: http.StatusForbidden}
			}
			return 0, second
		})

	assert.Same(t, second, err)
	assert.Nil(t, dropped)
	assert.Equal(t, 2, calls)
}

func TestFeaturesUnavailable_Messages(t *testing.T) {
	f := FeaturesUnavailable{
		EnrichFollowers:  true,
		EnrichDevRank:    true,
		EnrichAggregates: false,
		"mystery":        true,
	}

	assert.Equal(t, []string{"DevRank", "Follower count", "mystery"}, f.Messages())
	assert.True(t, f.Any())
	assert.False(t, FeaturesUnavailable{EnrichOwner: false}.Any())
	assert.Empty(t, FeaturesUnavailable(nil).Messages())
}
