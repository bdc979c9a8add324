package aws

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metrics publishes counters to CloudWatch under one namespace. An empty
// namespace disables publishing.
type Metrics struct {
	CloudWatch CloudWatchAPI
	Namespace  string
	nowFunc    func() time.Time
}

// NewMetrics returns a Metrics publisher.
func NewMetrics(client CloudWatchAPI, namespace string) *Metrics {
	return &Metrics{
		CloudWatch: client,
		Namespace:  namespace,
		nowFunc:    time.Now,
	}
}

// Count publishes the given counters in a single PutMetricData call.
// Zero-valued counters are still sent so dashboards see explicit zeros.
func (m *Metrics) Count(ctx context.Context, counters map[string]int) error {
	if m == nil || m.CloudWatch == nil || m.Namespace == "" || len(counters) == 0 {
		return nil
	}

	now := m.nowFunc()
	data := make([]cwtypes.MetricDatum, 0, len(counters))
	for name, n := range counters {
		data = append(data, cwtypes.MetricDatum{
			MetricName: sdkaws.String(name),
			Unit:       cwtypes.StandardUnitCount,
			Value:      sdkaws.Float64(float64(n)),
			Timestamp:  sdkaws.Time(now),
		})
	}

	_, err := m.CloudWatch.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  sdkaws.String(m.Namespace),
		MetricData: data,
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}
