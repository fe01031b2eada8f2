package feed

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/quantviz/internal/telemetry"
)

func TestSlot_LastWriteWins(t *testing.T) {
	s := NewSlot()
	assert.Nil(t, s.Load())

	a, b, c := &telemetry.Snapshot{RunID: "a"}, &telemetry.Snapshot{RunID: "b"}, &telemetry.Snapshot{RunID: "c"}
	s.Store(a)
	s.Store(b)
	assert.Same(t, b, s.Load())
	assert.Equal(t, uint64(1), s.Drops(), "a was overwritten unread")

	s.Store(c)
	assert.Same(t, c, s.Load())
	assert.Equal(t, uint64(1), s.Drops(), "b had been read")
	assert.Equal(t, uint64(3), s.Version())

	s.Store(nil)
	assert.Same(t, c, s.Load(), "nil stores are ignored")
}

func TestSlot_ConcurrentStoreLoad(t *testing.T) {
	s := NewSlot()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			s.Store(&telemetry.Snapshot{})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = s.Load()
		}
	}()
	wg.Wait()
	assert.Equal(t, uint64(1000), s.Version())
	assert.Less(t, s.Drops(), uint64(1000))
}

func TestSlot_EveryStoreIsReadOrDropped(t *testing.T) {
	const n = 5000
	s := NewSlot()
	seen := make(map[*telemetry.Snapshot]bool)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < n; i++ {
			s.Store(&telemetry.Snapshot{})
		}
	}()
	for {
		select {
		case <-done:
			if snap := s.Load(); snap != nil {
				seen[snap] = true
			}
			assert.Equal(t, uint64(n), s.Version())
			assert.Equal(t, uint64(n), s.Drops()+uint64(len(seen)))
			return
		default:
			if snap := s.Load(); snap != nil {
				seen[snap] = true
			}
		}
	}
}

func TestReplay(t *testing.T) {
	_, err := NewReplay(nil, true)
	require.ErrorIs(t, err, ErrNoFrames)

	frames := []*telemetry.Snapshot{{RunID: "1"}, {RunID: "2"}}
	r, err := NewReplay(frames, false)
	require.NoError(t, err)
	for _, want := range []string{"1", "2"} {
		s, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, want, s.RunID)
	}
	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)

	loop, err := NewReplay(frames, true)
	require.NoError(t, err)
	var ids []string
	for i := 0; i < 5; i++ {
		s, err := loop.Next()
		require.NoError(t, err)
		ids = append(ids, s.RunID)
	}
	assert.Equal(t, []string{"1", "2", "1", "2", "1"}, ids)
}

func TestLoadReplay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frames.jsonl")
	data := `{"ts_utc":"2026-01-09T14:00:00Z","regime_state":"rain"}

{"ts_utc":"2026-01-09T14:00:01Z","regime_state":"storm"}
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	r, err := LoadReplay(path, false)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())

	empty := filepath.Join(dir, "empty.jsonl")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = LoadReplay(empty, false)
	assert.ErrorIs(t, err, ErrNoFrames)

	_, err = LoadReplay(filepath.Join(dir, "missing.jsonl"), false)
	assert.Error(t, err)
}

func TestSynthetic_ProducesCompleteSnapshots(t *testing.T) {
	for _, name := range ListScenarios() {
		t.Run(name, func(t *testing.T) {
			sc, err := GetScenario(name)
			require.NoError(t, err)
			g := NewSynthetic(sc, 42, 500*time.Millisecond)

			sawHazard := false
			for i := 0; i < 200; i++ {
				s, err := g.Next()
				require.NoError(t, err)
				require.NotNil(t, s.PnL)
				require.NotNil(t, s.PortfolioFlow)

				assert.LessOrEqual(t, s.PnL.Drawdown, 0.0)
				assert.Len(t, s.PortfolioFlow.Nodes, sc.Positions+1)
				assert.Len(t, s.PortfolioFlow.Edges, sc.Positions)
				for _, gg := range []*telemetry.Gauge{s.SpeedAlpha, s.RPMTurnover, s.TractionRisk, s.BrakeVarPressure} {
					assert.GreaterOrEqual(t, gg.Value, 0.0)
					assert.LessOrEqual(t, gg.Value, 1.0)
				}
				sum := 0.0
				for _, n := range s.PortfolioFlow.Nodes {
					sum += n.Weight
				}
				assert.InDelta(t, 1.0, sum, 1e-9)
				assert.Contains(t, []telemetry.Regime{telemetry.RegimeClear, telemetry.RegimeRain, telemetry.RegimeStorm}, s.RegimeState)
				if len(s.Hazards) > 0 {
					sawHazard = true
				}
			}
			assert.True(t, sawHazard, "expected at least one hazard in 200 snapshots")
		})
	}
}

func TestSynthetic_SnapshotsAreIndependent(t *testing.T) {
	g := NewSynthetic(Scenarios["stressed"], 7, time.Second)
	var first *telemetry.Snapshot
	for first == nil || len(first.Hazards) == 0 {
		first, _ = g.Next()
	}
	eta := first.Hazards[0].EtaSeconds
	for i := 0; i < 5; i++ {
		_, _ = g.Next()
	}
	assert.Equal(t, eta, first.Hazards[0].EtaSeconds, "published snapshot changed later")
}

func TestSynthetic_Deterministic(t *testing.T) {
	a := NewSynthetic(Scenarios["volatile"], 3, time.Second)
	b := NewSynthetic(Scenarios["volatile"], 3, time.Second)
	for i := 0; i < 20; i++ {
		sa, _ := a.Next()
		sb, _ := b.Next()
		assert.Equal(t, sa.PnL.Equity, sb.PnL.Equity)
		assert.Equal(t, sa.RegimeState, sb.RegimeState)
		assert.Equal(t, len(sa.Hazards), len(sb.Hazards))
	}
}

func TestGetScenario_Unknown(t *testing.T) {
	_, err := GetScenario("meltdown")
	assert.Error(t, err)
}

func TestPump_StoresUntilCancelled(t *testing.T) {
	slot := NewSlot()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Pump(ctx, NewSynthetic(Scenarios["calm"], 1, time.Second), slot, 5*time.Millisecond, zerolog.Nop())
	}()

	assert.Eventually(t, func() bool { return slot.Version() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("pump did not stop")
	}
}

func TestPump_StopsWhenReplayEnds(t *testing.T) {
	r, err := NewReplay([]*telemetry.Snapshot{{RunID: "x"}, {RunID: "y"}}, false)
	require.NoError(t, err)
	slot := NewSlot()
	require.NoError(t, Pump(context.Background(), r, slot, time.Millisecond, zerolog.Nop()))
	assert.Equal(t, "y", slot.Load().RunID)
	assert.Equal(t, uint64(2), slot.Version())
}

func TestPump_RejectsBadInterval(t *testing.T) {
	assert.Error(t, Pump(context.Background(), nil, NewSlot(), 0, zerolog.Nop()))
}
