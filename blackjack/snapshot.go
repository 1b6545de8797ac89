package blackjack

// SnapshotVersion is bumped whenever the Snapshot layout changes.
const SnapshotVersion = 1

// Snapshot is a self-describing copy of a model for handing to external solvers.
type Snapshot struct {
	Version     int           `json:"version"`
	Rules       Rules         `json:"rules"`
	Actions     []string      `json:"actions"`
	States      []State       `json:"states"`
	Transitions [][][]float64 `json:"transitions"`
	Rewards     []float64     `json:"rewards"`
}

// Snapshot copies the model into its exported form.
func (m *Model) Snapshot() Snapshot {
	t, r := m.Matrices()
	actions := make([]string, NumActions)
	for i, a := range Actions {
		actions[i] = a.String()
	}
	return Snapshot{
		Version:     SnapshotVersion,
		Rules:       m.Rules(),
		Actions:     actions,
		States:      m.index.States(),
		Transitions: t,
		Rewards:     r,
	}
}
