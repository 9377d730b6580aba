package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)

func testConfig() Config {
	return Config{FlowDivisor: 5, DefaultTarget: time.Minute}
}

// --- Start Tests ---

func TestStartFromIdle(t *testing.T) {
	s, effects := Start(NewState(ModeFlow), t0, testConfig())

	assert.Empty(t, effects)
	assert.Equal(t, StatusRunning, s.Status)
	assert.Equal(t, t0, s.StartedAt)
	assert.Equal(t, t0, s.SessionStartedAt)
	assert.Zero(t, s.Accumulated)
	require.NoError(t, s.Validate())
}

func TestStartKeepsChainOrigin(t *testing.T) {
	s := NewState(ModeCountdown)
	s.SessionStartedAt = t0.Add(-time.Hour)
	s.Accumulated = 10 * time.Second

	s, _ = Start(s, t0, testConfig())

	assert.Equal(t, t0.Add(-time.Hour), s.SessionStartedAt, "re-entrant start must not reset the chain origin")
	assert.Equal(t, 10*time.Second, s.Accumulated, "countdown keeps banked work across a pause cycle")
}

func TestStartCountdownDefaultsTarget(t *testing.T) {
	s, _ := Start(NewState(ModeCountdown), t0, testConfig())
	assert.Equal(t, time.Minute, s.Target)

	s.Target = 30 * time.Minute
	s, _ = Start(s, t0, testConfig())
	assert.Equal(t, 30*time.Minute, s.Target, "an explicit target is preserved")
}

func TestStartZeroConfigFallsBack(t *testing.T) {
	s, _ := Start(NewState(ModeCountdown), t0, Config{})
	assert.Equal(t, DefaultTarget, s.Target)
}

// --- Toggle Tests ---

func TestFlowToggleRoundTrip(t *testing.T) {
	s, _ := Start(NewState(ModeFlow), t0, testConfig())
	s, effects := Toggle(s, t0.Add(5*time.Second), testConfig())

	assert.Empty(t, effects)
	assert.Equal(t, StatusBreak, s.Status)
	assert.Equal(t, []time.Duration{5 * time.Second}, s.Intervals)
	assert.Equal(t, time.Second, s.BreakRemaining, "break = work / divisor")
	assert.Equal(t, t0.Add(5*time.Second), s.StartedAt)
	assert.Zero(t, s.Accumulated)
	require.NoError(t, s.Validate())
}

func TestFlowResumeFromBreak(t *testing.T) {
	s, _ := Start(NewState(ModeFlow), t0, testConfig())
	s, _ = Toggle(s, t0.Add(5*time.Second), testConfig())
	s, _ = Toggle(s, t0.Add(6*time.Second), testConfig())

	assert.Equal(t, StatusRunning, s.Status)
	assert.Zero(t, s.BreakRemaining)
	assert.Equal(t, t0.Add(6*time.Second), s.StartedAt)
	assert.Equal(t, t0, s.SessionStartedAt)
	assert.Len(t, s.Intervals, 1, "the finished interval stays banked")
	require.NoError(t, s.Validate())
}

func TestCountdownTogglePausesAndResumes(t *testing.T) {
	s, _ := Start(NewState(ModeCountdown), t0, testConfig())

	s, _ = Toggle(s, t0.Add(20*time.Second), testConfig())
	assert.Equal(t, StatusPaused, s.Status)
	assert.Equal(t, 20*time.Second, s.Accumulated)
	assert.True(t, s.StartedAt.IsZero())
	assert.Empty(t, s.Intervals, "countdown never banks flow intervals")

	s, _ = Toggle(s, t0.Add(time.Minute), testConfig())
	assert.Equal(t, StatusRunning, s.Status)
	assert.Equal(t, 20*time.Second, s.Accumulated)
	assert.Equal(t, t0, s.SessionStartedAt)
	require.NoError(t, s.Validate())
}

func TestToggleUnknownStatusStarts(t *testing.T) {
	s := State{Mode: ModeFlow, Status: Status("corrupt")}
	s, _ = Toggle(s, t0, testConfig())
	assert.Equal(t, StatusRunning, s.Status)
}

// --- Tick Tests ---

func TestTickIdleIsNoop(t *testing.T) {
	idle := NewState(ModeFlow)
	for i := 0; i < 3; i++ {
		next, effects := Tick(idle, t0.Add(time.Duration(i)*time.Hour), testConfig())
		assert.Equal(t, idle, next)
		assert.Empty(t, effects)
	}
}

func TestTickCountdownAutoCompletes(t *testing.T) {
	s, _ := Start(NewState(ModeCountdown), t0, testConfig())

	next, effects := Tick(s, t0.Add(59*time.Second), testConfig())
	assert.Equal(t, s, next, "before the target the tick changes nothing")
	assert.Empty(t, effects)

	next, effects = Tick(s, t0.Add(time.Minute), testConfig())
	assert.Equal(t, StatusIdle, next.Status)
	require.Len(t, effects, 2)
	assert.Equal(t, EffectNotifyComplete, effects[0].Kind)
	assert.Equal(t, EffectSessionEnd, effects[1].Kind)
	assert.Equal(t, time.Minute, Elapsed(effects[1].Snapshot, t0.Add(time.Minute)))
}

func TestTickCountdownLateTickCreditsTargetOnly(t *testing.T) {
	s, _ := Start(NewState(ModeCountdown), t0, testConfig())

	// Hours late: the session ends at the instant the target was reached,
	// not at the tick, so the credit stays at the target.
	next, effects := Tick(s, t0.Add(3*time.Hour), testConfig())
	assert.Equal(t, StatusIdle, next.Status)
	require.Len(t, effects, 2)
	done := effects[1].At
	assert.Equal(t, t0.Add(time.Minute), done)
	assert.Equal(t, done, effects[0].At)
	assert.Equal(t, time.Minute, Elapsed(effects[1].Snapshot, done))
}

func TestTickCountdownLateTickAfterResume(t *testing.T) {
	s, _ := Start(NewState(ModeCountdown), t0, testConfig())
	s, _ = Toggle(s, t0.Add(40*time.Second), testConfig()) // pause with 40s banked
	s, _ = Start(s, t0.Add(5*time.Minute), testConfig())   // resume, 20s to go

	next, effects := Tick(s, t0.Add(time.Hour), testConfig())
	assert.Equal(t, StatusIdle, next.Status)
	require.Len(t, effects, 2)
	done := effects[1].At
	assert.Equal(t, t0.Add(5*time.Minute+20*time.Second), done)
	assert.Equal(t, time.Minute, Elapsed(effects[1].Snapshot, done))
}

func TestTickBreakExpiryPreservesChain(t *testing.T) {
	s, _ := Start(NewState(ModeFlow), t0, testConfig())
	s, _ = Toggle(s, t0.Add(50*time.Second), testConfig()) // 10s break

	next, effects := Tick(s, t0.Add(55*time.Second), testConfig())
	assert.Equal(t, StatusBreak, next.Status)
	assert.Empty(t, effects)

	next, effects = Tick(s, t0.Add(61*time.Second), testConfig())
	assert.Equal(t, StatusIdle, next.Status)
	assert.True(t, next.StartedAt.IsZero())
	assert.Zero(t, next.BreakRemaining)
	assert.Equal(t, []time.Duration{50 * time.Second}, next.Intervals, "expiry must not forfeit banked intervals")
	assert.Equal(t, t0, next.SessionStartedAt)
	require.Len(t, effects, 1)
	assert.Equal(t, EffectNotifyBreakOver, effects[0].Kind)

	// A second tick on the expired state is a no-op.
	again, effects := Tick(next, t0.Add(2*time.Minute), testConfig())
	assert.Equal(t, next, again)
	assert.Empty(t, effects)
}

// --- End / Reset Tests ---

func TestEndSessionSnapshotsBeforeReset(t *testing.T) {
	s, _ := Start(NewState(ModeFlow), t0, testConfig())
	s, _ = Toggle(s, t0.Add(10*time.Second), testConfig())

	next, effects := EndSession(s, t0.Add(11*time.Second))
	require.Len(t, effects, 1)
	assert.Equal(t, EffectSessionEnd, effects[0].Kind)
	assert.Equal(t, []time.Duration{10 * time.Second}, effects[0].Snapshot.Intervals)

	assert.Equal(t, NewState(ModeFlow), next)
	require.NoError(t, next.Validate())

	// Mutating the reset state must not leak into the snapshot.
	next.Intervals = append(next.Intervals, time.Second)
	assert.Len(t, effects[0].Snapshot.Intervals, 1)
}

func TestResetDiscardsWithoutEffects(t *testing.T) {
	s, _ := Start(NewState(ModeCountdown), t0, testConfig())
	s, _ = Toggle(s, t0.Add(30*time.Second), testConfig())

	assert.Equal(t, NewState(ModeCountdown), Reset(s))
}

// --- Break Control Tests ---

func TestSkipBreakResumesWork(t *testing.T) {
	s, _ := Start(NewState(ModeFlow), t0, testConfig())
	s, _ = Toggle(s, t0.Add(50*time.Second), testConfig())

	s, _, err := SkipBreak(s, t0.Add(52*time.Second), testConfig())
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, s.Status)
	assert.Zero(t, s.BreakRemaining)
}

func TestSkipBreakIllegalWhileRunning(t *testing.T) {
	s, _ := Start(NewState(ModeFlow), t0, testConfig())

	_, _, err := SkipBreak(s, t0, testConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestExtendBreak(t *testing.T) {
	s, _ := Start(NewState(ModeFlow), t0, testConfig())
	s, _ = Toggle(s, t0.Add(50*time.Second), testConfig()) // 10s break

	s, err := ExtendBreak(s, 5*time.Minute, t0.Add(54*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute+6*time.Second, s.BreakRemaining)
	assert.Equal(t, t0.Add(54*time.Second), s.StartedAt)

	_, err = ExtendBreak(NewState(ModeFlow), time.Minute, t0)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

// --- Query Tests ---

func TestElapsedByStatus(t *testing.T) {
	cfg := testConfig()

	s, _ := Start(NewState(ModeFlow), t0, cfg)
	assert.Equal(t, 7*time.Second, Elapsed(s, t0.Add(7*time.Second)))

	s, _ = Toggle(s, t0.Add(50*time.Second), cfg) // break, 10s allowance
	assert.Equal(t, 8*time.Second, Elapsed(s, t0.Add(52*time.Second)))
	assert.Zero(t, Elapsed(s, t0.Add(2*time.Minute)), "break display floors at zero")

	paused, _ := Start(NewState(ModeCountdown), t0, cfg)
	paused, _ = Toggle(paused, t0.Add(15*time.Second), cfg)
	assert.Equal(t, 15*time.Second, Elapsed(paused, t0.Add(time.Hour)))
}

func TestRemainingDisplay(t *testing.T) {
	cfg := testConfig()

	s, _ := Start(NewState(ModeCountdown), t0, cfg)
	assert.Equal(t, 40*time.Second, Remaining(s, t0.Add(20*time.Second)))
	assert.Zero(t, Remaining(s, t0.Add(2*time.Minute)))

	b, _ := Start(NewState(ModeFlow), t0, cfg)
	b, _ = Toggle(b, t0.Add(50*time.Second), cfg)
	assert.Equal(t, 9*time.Second, Remaining(b, t0.Add(51*time.Second)), "on break the remaining break is shown directly")
}

func TestMissingStartContributesZero(t *testing.T) {
	s := State{Mode: ModeFlow, Status: StatusRunning, Accumulated: 3 * time.Second}
	assert.Equal(t, 3*time.Second, Elapsed(s, t0))
}
