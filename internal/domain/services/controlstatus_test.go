package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/pkg/logger"
)

type fakeControlStatusStore struct {
	statuses map[string]*models.ControlStatus
	advanced []string
}

func newFakeControlStatusStore(statuses map[string]*models.ControlStatus) *fakeControlStatusStore {
	if statuses == nil {
		statuses = make(map[string]*models.ControlStatus)
	}
	return &fakeControlStatusStore{statuses: statuses}
}

func (s *fakeControlStatusStore) StatusesForOrg(_ context.Context, _ uuid.UUID) (map[string]*models.ControlStatus, error) {
	return s.statuses, nil
}

func (s *fakeControlStatusStore) AdvanceToInProgress(_ context.Context, _ uuid.UUID, controlID string) error {
	// Mirror the conditional update in the real store
	if cs, ok := s.statuses[controlID]; ok && cs.Status.Terminal() {
		return nil
	}
	s.advanced = append(s.advanced, controlID)
	s.statuses[controlID] = &models.ControlStatus{ControlID: controlID, Status: models.ControlInProgress}
	return nil
}

func activeFinding(ruleID, resourceID string) *models.Finding {
	return &models.Finding{
		RuleID:   ruleID,
		Status:   models.FindingStatusActive,
		Resource: models.ResourceRef{ID: resourceID},
	}
}

func TestControlStatusDriverAdvancesMappedControls(t *testing.T) {
	store := newFakeControlStatusStore(nil)
	driver := NewControlStatusDriver(store, logger.NewDevelopment())

	// iam_root_mfa_disabled maps to CC6.6
	advanced := driver.Apply(context.Background(), uuid.New(), []*models.Finding{
		activeFinding("iam_root_mfa_disabled", "root"),
	})

	assert.Equal(t, 1, advanced)
	assert.Equal(t, []string{"CC6.6"}, store.advanced)
	assert.Equal(t, models.ControlInProgress, store.statuses["CC6.6"].Status)
}

func TestControlStatusDriverNeverRegressesVerified(t *testing.T) {
	store := newFakeControlStatusStore(map[string]*models.ControlStatus{
		"CC6.6": {ControlID: "CC6.6", Status: models.ControlVerified},
	})
	driver := NewControlStatusDriver(store, logger.NewDevelopment())

	advanced := driver.Apply(context.Background(), uuid.New(), []*models.Finding{
		activeFinding("iam_root_mfa_disabled", "root"),
	})

	assert.Equal(t, 0, advanced)
	assert.Empty(t, store.advanced)
	assert.Equal(t, models.ControlVerified, store.statuses["CC6.6"].Status)
}

func TestControlStatusDriverSkipsNotApplicable(t *testing.T) {
	store := newFakeControlStatusStore(map[string]*models.ControlStatus{
		"CC6.1": {ControlID: "CC6.1", Status: models.ControlNotApplicable},
	})
	driver := NewControlStatusDriver(store, logger.NewDevelopment())

	// net_ssh_open_world maps to CC6.1 and CC6.6
	advanced := driver.Apply(context.Background(), uuid.New(), []*models.Finding{
		activeFinding("net_ssh_open_world", "sg-1"),
	})

	assert.Equal(t, 1, advanced)
	assert.Equal(t, []string{"CC6.6"}, store.advanced)
}

func TestControlStatusDriverDedupsControlsAcrossFindings(t *testing.T) {
	store := newFakeControlStatusStore(nil)
	driver := NewControlStatusDriver(store, logger.NewDevelopment())

	// Both rules map to CC6.6; ssh also maps to CC6.1
	advanced := driver.Apply(context.Background(), uuid.New(), []*models.Finding{
		activeFinding("iam_root_mfa_disabled", "root"),
		activeFinding("net_ssh_open_world", "sg-1"),
		activeFinding("net_ssh_open_world", "sg-2"),
	})

	assert.Equal(t, 2, advanced)
	assert.ElementsMatch(t, []string{"CC6.6", "CC6.1"}, store.advanced)
}

func TestControlStatusDriverIgnoresResolvedFindings(t *testing.T) {
	store := newFakeControlStatusStore(nil)
	driver := NewControlStatusDriver(store, logger.NewDevelopment())

	advanced := driver.Apply(context.Background(), uuid.New(), []*models.Finding{
		{RuleID: "iam_root_mfa_disabled", Status: models.FindingStatusResolved, Resource: models.ResourceRef{ID: "root"}},
	})

	assert.Equal(t, 0, advanced)
	assert.Empty(t, store.advanced)
}
