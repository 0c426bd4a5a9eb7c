package venus

import "sync"

// DeviceState is the aggregate of everything observed from the device
// since startup. Fields start unset and maps start empty; a missing map
// key means no frame for that device id has ever arrived. Ids are never
// evicted.
type DeviceState struct {
	ACInput     ACMetrics          `json:"ac_input"`
	ACOutput    ACMetrics          `json:"ac_output"`
	ESS         ESS                `json:"ess"`
	Batteries   map[int]Battery    `json:"batteries"`
	PvInverters map[int]PvInverter `json:"pv_inverters"`
}

// clone returns an independent copy. Entity records are plain value
// structs, so copying the maps copies everything.
func (d DeviceState) clone() DeviceState {
	out := d
	out.Batteries = make(map[int]Battery, len(d.Batteries))
	for id, b := range d.Batteries {
		out.Batteries[id] = b
	}
	out.PvInverters = make(map[int]PvInverter, len(d.PvInverters))
	for id, p := range d.PvInverters {
		out.PvInverters[id] = p
	}
	return out
}

// Store guards the device aggregate with a reader-writer lock. All
// mutation flows through Apply, called from the single ingestion
// goroutine; readers receive copies and never a live reference, so no
// caller can hold the lock across an asynchronous boundary.
type Store struct {
	mu    sync.RWMutex
	state DeviceState
}

// NewStore returns a Store with every field unset and no known devices.
func NewStore() *Store {
	return &Store{state: DeviceState{
		Batteries:   make(map[int]Battery),
		PvInverters: make(map[int]PvInverter),
	}}
}

// Apply routes one decoded frame into the aggregate. The path is the
// topic remainder below N/<serial>/. Map-backed entities are created on
// first sight, before the field path is considered, so an id becomes
// known even when the field is not tracked. Reports whether a tracked
// field was updated.
func (s *Store) Apply(path string, value float64) bool {
	r, ok := matchRoute(path)
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.kind {
	case routeACInput:
		return s.state.ACInput.applyFrame(r.path, value)
	case routeACOutput:
		return s.state.ACOutput.applyFrame(r.path, value)
	case routeESS:
		return s.state.ESS.applyFrame(r.path, value)
	case routeBattery:
		b := s.state.Batteries[r.id]
		applied := b.applyFrame(r.path, value)
		s.state.Batteries[r.id] = b
		return applied
	case routePvInverter:
		p := s.state.PvInverters[r.id]
		applied := p.applyFrame(r.path, value)
		s.state.PvInverters[r.id] = p
		return applied
	default:
		return false
	}
}

// Snapshot returns a copy of the full aggregate.
func (s *Store) Snapshot() DeviceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// ACInput returns the grid-side AC readings.
func (s *Store) ACInput() ACMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ACInput
}

// ACOutput returns the inverter output AC readings.
func (s *Store) ACOutput() ACMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ACOutput
}

// ESS returns the energy storage control state.
func (s *Store) ESS() ESS {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ESS
}

// Batteries returns a copy of every battery record keyed by device id.
func (s *Store) Batteries() map[int]Battery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int]Battery, len(s.state.Batteries))
	for id, b := range s.state.Batteries {
		out[id] = b
	}
	return out
}

// PvInverters returns a copy of every inverter record keyed by device id.
func (s *Store) PvInverters() map[int]PvInverter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int]PvInverter, len(s.state.PvInverters))
	for id, p := range s.state.PvInverters {
		out[id] = p
	}
	return out
}

// BatterySummary recomputes the battery aggregate from current state.
func (s *Store) BatterySummary() BatterySummary {
	return summarizeBatteries(s.Batteries())
}

// PvInverterSummary recomputes the inverter aggregate from current state.
func (s *Store) PvInverterSummary() PvInverterSummary {
	return summarizePvInverters(s.PvInverters())
}
