package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/config"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/pkg/logger"
)

// fakeProvider returns canned signal per area, with selectable failures
type fakeProvider struct {
	failAreas map[models.ServiceArea]error
}

func (f *fakeProvider) fail(area models.ServiceArea) error {
	if f.failAreas == nil {
		return nil
	}
	return f.failAreas[area]
}

func (f *fakeProvider) Identity(_ context.Context, _ []string) (models.IdentitySignal, error) {
	if err := f.fail(models.AreaIdentity); err != nil {
		return models.IdentitySignal{}, err
	}
	return models.IdentitySignal{Root: models.RootAccountInfo{DataAvailable: true, MFAEnabled: true}}, nil
}

func (f *fakeProvider) Compute(_ context.Context, _ []string) (models.ComputeSignal, error) {
	if err := f.fail(models.AreaCompute); err != nil {
		return models.ComputeSignal{}, err
	}
	return models.ComputeSignal{Instances: []models.Instance{{ID: "i-1"}}}, nil
}

func (f *fakeProvider) Network(_ context.Context, _ []string) (models.NetworkSignal, error) {
	if err := f.fail(models.AreaNetwork); err != nil {
		return models.NetworkSignal{}, err
	}
	return models.NetworkSignal{SecurityRules: []models.SecurityRule{{GroupID: "sg-1"}}}, nil
}

func (f *fakeProvider) Storage(_ context.Context, _ []string) (models.StorageSignal, error) {
	if err := f.fail(models.AreaStorage); err != nil {
		return models.StorageSignal{}, err
	}
	return models.StorageSignal{Buckets: []models.Bucket{{Name: "b-1"}}}, nil
}

func (f *fakeProvider) AuditTrail(_ context.Context, _ []string) (models.AuditTrailSignal, error) {
	if err := f.fail(models.AreaAuditTrail); err != nil {
		return models.AuditTrailSignal{}, err
	}
	return models.AuditTrailSignal{Collected: true, Trails: []models.Trail{{Name: "main"}}}, nil
}

func (f *fakeProvider) SecurityFeed(_ context.Context, _ []string) (models.SecurityFeedSignal, error) {
	if err := f.fail(models.AreaSecurityFeed); err != nil {
		return models.SecurityFeedSignal{}, err
	}
	return models.SecurityFeedSignal{Enabled: true}, nil
}

func testCollector(feed bool) *Collector {
	return New(config.ScannerConfig{
		MaxConcurrentAreas: 3,
		SecurityFeed:       feed,
	}, logger.NewDevelopment())
}

func TestCollectAllAreas(t *testing.T) {
	sig, statuses := testCollector(true).Collect(context.Background(), &fakeProvider{}, []string{"us-east-1"})

	assert.Len(t, statuses, 6)
	for _, st := range statuses {
		assert.True(t, st.OK, "area %s should succeed", st.Area)
		assert.Empty(t, st.Error)
	}

	assert.True(t, sig.Identity.Root.DataAvailable)
	assert.Len(t, sig.Compute.Instances, 1)
	assert.Len(t, sig.Network.SecurityRules, 1)
	assert.Len(t, sig.Storage.Buckets, 1)
	assert.True(t, sig.AuditTrail.Collected)
	assert.True(t, sig.SecurityFeed.Enabled)
}

func TestCollectPartialFailure(t *testing.T) {
	provider := &fakeProvider{failAreas: map[models.ServiceArea]error{
		models.AreaStorage: errors.New("access denied"),
	}}

	sig, statuses := testCollector(true).Collect(context.Background(), provider, []string{"us-east-1"})

	// The failed area reports its error and contributes empty signal; the
	// other areas are unaffected.
	byArea := make(map[models.ServiceArea]models.AreaStatus)
	for _, st := range statuses {
		byArea[st.Area] = st
	}
	assert.False(t, byArea[models.AreaStorage].OK)
	assert.Contains(t, byArea[models.AreaStorage].Error, "access denied")
	assert.True(t, byArea[models.AreaIdentity].OK)
	assert.True(t, byArea[models.AreaAuditTrail].OK)

	assert.Empty(t, sig.Storage.Buckets)
	assert.Len(t, sig.Compute.Instances, 1)
}

func TestCollectStatusOrderIsStable(t *testing.T) {
	_, statuses := testCollector(false).Collect(context.Background(), &fakeProvider{}, nil)

	expected := []models.ServiceArea{
		models.AreaIdentity, models.AreaCompute, models.AreaNetwork,
		models.AreaStorage, models.AreaAuditTrail,
	}
	assert.Len(t, statuses, len(expected))
	for i, area := range expected {
		assert.Equal(t, area, statuses[i].Area)
	}
}

func TestCollectWithZeroConcurrencyCompletes(t *testing.T) {
	c := New(config.ScannerConfig{SecurityFeed: true}, logger.NewDevelopment())

	sig, statuses := c.Collect(context.Background(), &fakeProvider{}, []string{"us-east-1"})

	assert.Len(t, statuses, 6)
	assert.True(t, sig.Identity.Root.DataAvailable)
}

func TestCollectFeedDisabled(t *testing.T) {
	sig, statuses := testCollector(false).Collect(context.Background(), &fakeProvider{}, nil)

	assert.Len(t, statuses, 5)
	assert.False(t, sig.SecurityFeed.Enabled)
}
