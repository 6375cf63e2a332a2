package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRecommend(t *testing.T) {
	before := testutil.ToFloat64(RecommendRequests.WithLabelValues(OutcomeInvalid))
	ObserveRecommend(OutcomeInvalid, 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(RecommendRequests.WithLabelValues(OutcomeInvalid)))
}

func TestObserveNode(t *testing.T) {
	ObserveNode("rank.cosine", time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(NodeDuration, "newsrec_pipeline_node_duration_seconds"))
}
