package converter

import "strings"

// StrategyStatus describes whether one strategy of a chain can run on this host
type StrategyStatus struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Available bool   `json:"available"`
	Detail    string `json:"detail,omitempty"`
}

// Inspect reports the availability of every strategy in the chain for a pair without
// converting anything. Library checks may start lazy runtimes such as the browser.
func (d *Dispatcher) Inspect(pair Pair) []StrategyStatus {
	chain := d.Chain(pair.From, pair.To)
	statuses := make([]StrategyStatus, 0, len(chain))
	for _, strategy := range chain {
		statuses = append(statuses, d.inspect(strategy))
	}
	return statuses
}

func (d *Dispatcher) inspect(strategy Strategy) StrategyStatus {
	switch s := strategy.(type) {
	case LibraryStrategy:
		status := StrategyStatus{Name: s.Name(), Kind: "library", Available: true}
		if err := s.Library.Available(); err != nil {
			status.Available = false
			status.Detail = err.Error()
		}
		return status
	case ToolStrategy:
		status := StrategyStatus{Name: s.Name(), Kind: "external"}
		var missing []string
		for _, candidate := range s.Tool.Candidates {
			path, err := d.probe.exec.LookPath(candidate)
			if err != nil {
				missing = append(missing, candidate)
				continue
			}
			status.Available = true
			status.Detail = path
			return status
		}
		status.Detail = "not found: " + strings.Join(missing, ", ")
		return status
	case PipelineStrategy:
		status := StrategyStatus{Name: s.Name(), Kind: "pipeline", Available: true}
		var parts []string
		for _, stage := range [][]Strategy{s.First, s.Second} {
			stageOK := false
			for _, inner := range stage {
				sub := d.inspect(inner)
				if sub.Available {
					stageOK = true
					parts = append(parts, sub.Name)
					break
				}
			}
			if !stageOK {
				status.Available = false
			}
		}
		status.Detail = strings.Join(parts, " then ")
		return status
	default:
		return StrategyStatus{Name: strategy.Name(), Kind: "unknown"}
	}
}
