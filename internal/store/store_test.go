package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/engine"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "vigil.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate())
	return s
}

func TestSaveAndListAlerts(t *testing.T) {
	s := newTestStore(t)

	alerts := []engine.Alert{
		{RegionIndex: 0, RuleName: "Car and Person", FrameNum: 12, Timestamp: 400, CamName: "gate-south"},
		{RegionIndex: 1, RuleName: "Car and Person", FrameNum: 5, Timestamp: 150, CamName: "gate-south"},
		{RegionIndex: 0, RuleName: "Truck and Person", FrameNum: 8, Timestamp: 250, CamName: "gate-south"},
	}
	for i := range alerts {
		id, err := s.SaveAlert(&alerts[i])
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	}

	// Unfiltered, ordered by frame number.
	got, err := s.ListAlerts("", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 5, got[0].FrameNum)
	assert.Equal(t, 8, got[1].FrameNum)
	assert.Equal(t, 12, got[2].FrameNum)

	// Filtered by rule.
	got, err = s.ListAlerts("Car and Person", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, a := range got {
		assert.Equal(t, "Car and Person", a.RuleName)
		assert.Equal(t, "gate-south", a.CamName)
	}

	// Limited.
	got, err = s.ListAlerts("", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].FrameNum)
}

func TestRuleTotals(t *testing.T) {
	s := newTestStore(t)

	n, err := s.GetRuleTotal("Car and Person")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	require.NoError(t, s.SaveRuleTotal("Car and Person", 7))
	n, err = s.GetRuleTotal("Car and Person")
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)

	// Upsert overwrites.
	require.NoError(t, s.SaveRuleTotal("Car and Person", 11))
	n, err = s.GetRuleTotal("Car and Person")
	require.NoError(t, err)
	assert.EqualValues(t, 11, n)
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
}

func TestRecorderPersistsResultAlerts(t *testing.T) {
	s := newTestStore(t)
	rec := NewRecorder(s, nil)

	rec.OnFrameResult(&engine.FrameResult{
		CamName:  "gate-south",
		FrameNum: 5,
		Alerts: []engine.Alert{
			{RegionIndex: 0, RuleName: "Car and Person", FrameNum: 5, Timestamp: 100, CamName: "gate-south"},
			{RegionIndex: 1, RuleName: "Car and Person", FrameNum: 5, Timestamp: 100, CamName: "gate-south"},
		},
	})
	// Frames without alerts write nothing.
	rec.OnFrameResult(&engine.FrameResult{CamName: "gate-south", FrameNum: 6})

	got, err := s.ListAlerts("", 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
