package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

const (
	AlgorithmMC   = "mc"
	AlgorithmREMC = "remc"
)

// RunRecord summarizes one folding run and the parameters that produced it.
type RunRecord struct {
	VersionedRecord
	ID            string  `json:"id"`
	Algorithm     string  `json:"algorithm"`
	Sequence      string  `json:"sequence"`
	Input         string  `json:"input,omitempty"`
	Placement     string  `json:"placement"`
	GridSize      int     `json:"grid_size"`
	Seed          int64   `json:"seed"`
	Steps         int     `json:"steps"`
	Temperature   float64 `json:"temperature,omitempty"`
	Replicas      int     `json:"replicas,omitempty"`
	LocalSteps    int     `json:"local_steps,omitempty"`
	TMin          float64 `json:"tmin,omitempty"`
	TMax          float64 `json:"tmax,omitempty"`
	EnergyCutoff  *int    `json:"energy_cutoff,omitempty"`
	InitialEnergy int     `json:"initial_energy"`
	FinalEnergy   int     `json:"final_energy"`
	BestEnergy    int     `json:"best_energy"`
	CreatedAtUTC  string  `json:"created_at_utc"`
}

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Conformation is the stored lattice state of a run's result.
type Conformation struct {
	VersionedRecord
	RunID     string     `json:"run_id"`
	Sequence  string     `json:"sequence"`
	GridSize  int        `json:"grid_size"`
	Energy    int        `json:"energy"`
	Positions []Position `json:"positions"`
}

type EnergyPoint struct {
	Step   int `json:"step"`
	Energy int `json:"energy"`
}

type ExchangeStat struct {
	Pair     int     `json:"pair"`
	TLow     float64 `json:"t_low"`
	THigh    float64 `json:"t_high"`
	Attempts int     `json:"attempts"`
	Accepted int     `json:"accepted"`
}
