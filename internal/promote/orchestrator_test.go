package promote

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/champlabs/champ/internal/audit"
	"github.com/champlabs/champ/internal/dataset"
	"github.com/champlabs/champ/internal/models"
	"github.com/champlabs/champ/internal/registry"
)

// fixedPredictor answers the same labels for any input.
type fixedPredictor struct {
	labels []int
}

func (p *fixedPredictor) Predict(features [][]float64) ([]int, error) {
	return p.labels[:len(features)], nil
}

// fakeNotifier records reload pings and optionally fails them.
type fakeNotifier struct {
	calls []int
	err   error
}

func (n *fakeNotifier) NotifyReload(_ context.Context, _ string, version int) error {
	n.calls = append(n.calls, version)
	return n.err
}

func testHoldout() *dataset.Holdout {
	return &dataset.Holdout{
		Features: [][]float64{{1}, {2}, {3}, {4}},
		Labels:   []int{0, 0, 1, 1},
	}
}

func version(n int, stage string) models.ModelVersion {
	return models.ModelVersion{Name: "iris", Version: n, Stage: stage}
}

var testGates = models.GateThresholds{MinAccuracy: 0.5, MinF1: 0.5}

func TestRunPromotesBetterCandidate(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := registry.NewMockClient(ctrl)
	recorder := &audit.MemoryRecorder{}
	notifier := &fakeNotifier{}

	champ := version(1, models.StageProduction)
	cand := version(2, models.StageNone)
	promoted := version(2, models.StageProduction)

	reg.EXPECT().ListVersions(gomock.Any(), "iris").Return([]models.ModelVersion{champ, cand}, nil)
	reg.EXPECT().ResolveChampion(gomock.Any(), "iris").Return(&champ, nil)
	// Candidate is perfect, champion gets half the rows wrong.
	reg.EXPECT().LoadPredictor(gomock.Any(), "iris", 2).Return(&fixedPredictor{labels: []int{0, 0, 1, 1}}, nil)
	reg.EXPECT().LoadPredictor(gomock.Any(), "iris", 1).Return(&fixedPredictor{labels: []int{0, 1, 0, 1}}, nil)
	reg.EXPECT().Promote(gomock.Any(), "iris", 2).Return(nil)
	reg.EXPECT().ResolveChampion(gomock.Any(), "iris").Return(&promoted, nil)
	reg.EXPECT().Tag(gomock.Any(), "iris", 2, "decision", "promoted").Return(nil)

	o := New(Config{Registry: reg, Recorder: recorder, Notifier: notifier, Gates: testGates})
	res, err := o.Run(context.Background(), "iris", testHoldout())
	require.NoError(t, err)

	assert.Equal(t, models.OutcomePromote, res.Decision.Outcome)
	assert.Equal(t, 2, res.Candidate.Version)
	assert.InDelta(t, 1.0, res.CandidateMetrics.Accuracy, 1e-9)
	require.NotNil(t, res.ChampionMetrics)
	assert.InDelta(t, 0.5, res.ChampionMetrics.Accuracy, 1e-9)

	require.Len(t, recorder.Records, 1)
	assert.Equal(t, models.OutcomePromote, recorder.Records[0].Decision.Outcome)
	assert.Equal(t, []int{2}, notifier.calls)
}

func TestRunRejectsWorseCandidate(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := registry.NewMockClient(ctrl)
	recorder := &audit.MemoryRecorder{}

	champ := version(1, models.StageProduction)
	cand := version(2, models.StageNone)

	reg.EXPECT().ListVersions(gomock.Any(), "iris").Return([]models.ModelVersion{champ, cand}, nil)
	reg.EXPECT().ResolveChampion(gomock.Any(), "iris").Return(&champ, nil)
	reg.EXPECT().LoadPredictor(gomock.Any(), "iris", 2).Return(&fixedPredictor{labels: []int{0, 1, 0, 1}}, nil)
	reg.EXPECT().LoadPredictor(gomock.Any(), "iris", 1).Return(&fixedPredictor{labels: []int{0, 0, 1, 1}}, nil)
	reg.EXPECT().Tag(gomock.Any(), "iris", 2, "decision", "rejected").Return(nil)
	reg.EXPECT().Tag(gomock.Any(), "iris", 2, "rejected_reason", "not_better_than_champion").Return(nil)

	o := New(Config{Registry: reg, Recorder: recorder, Gates: testGates})
	res, err := o.Run(context.Background(), "iris", testHoldout())
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeReject, res.Decision.Outcome)
	assert.True(t, res.Decision.HasReason(models.ReasonNotBetter))
	require.Len(t, recorder.Records, 1)
}

func TestRunSkipsWhenCandidateIsChampion(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := registry.NewMockClient(ctrl)
	recorder := &audit.MemoryRecorder{}
	notifier := &fakeNotifier{}

	champ := version(2, models.StageProduction)

	reg.EXPECT().ListVersions(gomock.Any(), "iris").Return([]models.ModelVersion{version(1, models.StageArchived), champ}, nil)
	reg.EXPECT().ResolveChampion(gomock.Any(), "iris").Return(&champ, nil)
	// No LoadPredictor, Promote, or Tag calls: the skip is decided before
	// any artifact is touched.

	o := New(Config{Registry: reg, Recorder: recorder, Notifier: notifier, Gates: testGates})
	res, err := o.Run(context.Background(), "iris", testHoldout())
	require.NoError(t, err)

	assert.True(t, res.Skipped)
	assert.Equal(t, models.OutcomeSkip, res.Decision.Outcome)
	require.Len(t, recorder.Records, 1)
	assert.Equal(t, models.OutcomeSkip, recorder.Records[0].Decision.Outcome)
	assert.Empty(t, notifier.calls)
}

func TestRunNoVersions(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := registry.NewMockClient(ctrl)

	reg.EXPECT().ListVersions(gomock.Any(), "iris").Return(nil, nil)

	o := New(Config{Registry: reg, Recorder: &audit.MemoryRecorder{}, Gates: testGates})
	_, err := o.Run(context.Background(), "iris", testHoldout())
	require.ErrorIs(t, err, registry.ErrNoVersions)
}

func TestRunNoChampionPromotesOnGates(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := registry.NewMockClient(ctrl)
	recorder := &audit.MemoryRecorder{}

	cand := version(1, models.StageNone)
	promoted := version(1, models.StageProduction)

	reg.EXPECT().ListVersions(gomock.Any(), "iris").Return([]models.ModelVersion{cand}, nil)
	reg.EXPECT().ResolveChampion(gomock.Any(), "iris").Return(nil, nil)
	reg.EXPECT().LoadPredictor(gomock.Any(), "iris", 1).Return(&fixedPredictor{labels: []int{0, 0, 1, 1}}, nil)
	reg.EXPECT().Promote(gomock.Any(), "iris", 1).Return(nil)
	reg.EXPECT().ResolveChampion(gomock.Any(), "iris").Return(&promoted, nil)
	reg.EXPECT().Tag(gomock.Any(), "iris", 1, "decision", "promoted").Return(nil)

	o := New(Config{Registry: reg, Recorder: recorder, Gates: testGates})
	res, err := o.Run(context.Background(), "iris", testHoldout())
	require.NoError(t, err)

	assert.Equal(t, models.OutcomePromote, res.Decision.Outcome)
	assert.Nil(t, res.ChampionMetrics)
	require.Len(t, recorder.Records, 1)
	assert.Nil(t, recorder.Records[0].ChampionVersion)
}

// failingRecorder fails every write.
type failingRecorder struct{}

func (failingRecorder) Record(models.AuditRecord) error {
	return errors.New("disk full")
}

func TestRunAuditFailureBlocksMutation(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := registry.NewMockClient(ctrl)

	cand := version(1, models.StageNone)

	reg.EXPECT().ListVersions(gomock.Any(), "iris").Return([]models.ModelVersion{cand}, nil)
	reg.EXPECT().ResolveChampion(gomock.Any(), "iris").Return(nil, nil)
	reg.EXPECT().LoadPredictor(gomock.Any(), "iris", 1).Return(&fixedPredictor{labels: []int{0, 0, 1, 1}}, nil)
	// No Promote: the registry must not change when the audit write fails.

	o := New(Config{Registry: reg, Recorder: failingRecorder{}, Gates: testGates})
	_, err := o.Run(context.Background(), "iris", testHoldout())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recording decision")
}

func TestRunPromotionVerificationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := registry.NewMockClient(ctrl)

	cand := version(1, models.StageNone)

	reg.EXPECT().ListVersions(gomock.Any(), "iris").Return([]models.ModelVersion{cand}, nil)
	reg.EXPECT().ResolveChampion(gomock.Any(), "iris").Return(nil, nil)
	reg.EXPECT().LoadPredictor(gomock.Any(), "iris", 1).Return(&fixedPredictor{labels: []int{0, 0, 1, 1}}, nil)
	reg.EXPECT().Promote(gomock.Any(), "iris", 1).Return(nil)
	// The pointer never moved.
	reg.EXPECT().ResolveChampion(gomock.Any(), "iris").Return(nil, nil)

	o := New(Config{Registry: reg, Recorder: &audit.MemoryRecorder{}, Gates: testGates})
	_, err := o.Run(context.Background(), "iris", testHoldout())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not take")
}

func TestRunNotifierFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := registry.NewMockClient(ctrl)
	notifier := &fakeNotifier{err: errors.New("endpoint down")}

	cand := version(1, models.StageNone)
	promoted := version(1, models.StageProduction)

	reg.EXPECT().ListVersions(gomock.Any(), "iris").Return([]models.ModelVersion{cand}, nil)
	reg.EXPECT().ResolveChampion(gomock.Any(), "iris").Return(nil, nil)
	reg.EXPECT().LoadPredictor(gomock.Any(), "iris", 1).Return(&fixedPredictor{labels: []int{0, 0, 1, 1}}, nil)
	reg.EXPECT().Promote(gomock.Any(), "iris", 1).Return(nil)
	reg.EXPECT().ResolveChampion(gomock.Any(), "iris").Return(&promoted, nil)
	reg.EXPECT().Tag(gomock.Any(), "iris", 1, "decision", "promoted").Return(nil)

	o := New(Config{Registry: reg, Recorder: &audit.MemoryRecorder{}, Notifier: notifier, Gates: testGates})
	res, err := o.Run(context.Background(), "iris", testHoldout())
	require.NoError(t, err)
	assert.Equal(t, models.OutcomePromote, res.Decision.Outcome)
	assert.Equal(t, []int{1}, notifier.calls)
}

func TestRunLoadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := registry.NewMockClient(ctrl)

	cand := version(1, models.StageNone)
	loadErr := &registry.ModelLoadError{Name: "iris", Version: 1, Err: errors.New("corrupt weights")}

	reg.EXPECT().ListVersions(gomock.Any(), "iris").Return([]models.ModelVersion{cand}, nil)
	reg.EXPECT().ResolveChampion(gomock.Any(), "iris").Return(nil, nil)
	reg.EXPECT().LoadPredictor(gomock.Any(), "iris", 1).Return(nil, loadErr)

	o := New(Config{Registry: reg, Recorder: &audit.MemoryRecorder{}, Gates: testGates})
	_, err := o.Run(context.Background(), "iris", testHoldout())
	require.Error(t, err)

	var gotLoadErr *registry.ModelLoadError
	assert.ErrorAs(t, err, &gotLoadErr)
}
