package models

import "encoding/json"

// Route is the payload of an edge between two stops.
// Each of the three arrays has one slot per transport; a nil slot means the
// transport is not offered on this route.
type Route struct {
	StartStopCode string
	EndStopCode   string
	Distances     [NumTransports]*float64
	Durations     [NumTransports]*int
	Costs         [NumTransports]*float64
	Active        bool
}

// NewRoute creates an active route offering no transport
func NewRoute(startCode, endCode string) *Route {
	return &Route{StartStopCode: startCode, EndStopCode: endCode, Active: true}
}

// Float returns a pointer to a copy of v
func Float(v float64) *float64 { return &v }

// Int returns a pointer to a copy of v
func Int(v int) *int { return &v }

// SetTransport sets the figures of one transport, copying the values
func (r *Route) SetTransport(t Transport, distance *float64, duration *int, cost *float64) {
	r.Distances[t] = copyFloat(distance)
	r.Durations[t] = copyInt(duration)
	r.Costs[t] = copyFloat(cost)
}

// Offers reports whether any figure is present for t
func (r *Route) Offers(t Transport) bool {
	return r.Distances[t] != nil || r.Durations[t] != nil || r.Costs[t] != nil
}

// Transports returns the transports offered, in catalog order
func (r *Route) Transports() []Transport {
	var result []Transport
	for _, t := range AllTransports() {
		if r.Offers(t) {
			result = append(result, t)
		}
	}
	return result
}

// Clone returns a deep copy of the route
func (r *Route) Clone() *Route {
	c := &Route{StartStopCode: r.StartStopCode, EndStopCode: r.EndStopCode, Active: r.Active}
	for _, t := range AllTransports() {
		c.SetTransport(t, r.Distances[t], r.Durations[t], r.Costs[t])
	}
	return c
}

// ToggleActive flips the active flag without touching per-transport data
func (r *Route) ToggleActive() {
	r.Active = !r.Active
}

// DisableTransport clears distance, duration and cost of t
func (r *Route) DisableTransport(t Transport) {
	r.Distances[t] = nil
	r.Durations[t] = nil
	r.Costs[t] = nil
}

// EnableTransport writes the given figures for t. Nil values leave t absent.
func (r *Route) EnableTransport(t Transport, distance *float64, duration *int, cost *float64) {
	r.SetTransport(t, distance, duration, cost)
}

// TransportSnapshot captures the figures of one transport on one route
type TransportSnapshot struct {
	transport Transport
	distance  *float64
	duration  *int
	cost      *float64
}

// Transport returns the transport the snapshot was taken for
func (s TransportSnapshot) Transport() Transport {
	return s.transport
}

// Duration returns the duration held by the snapshot, nil when not offered
func (s TransportSnapshot) Duration() *int {
	return copyInt(s.duration)
}

// WithDuration returns a copy of the snapshot holding minutes as duration
func (s TransportSnapshot) WithDuration(minutes *int) TransportSnapshot {
	s.duration = copyInt(minutes)
	return s
}

// Save captures the current figures of t
func (r *Route) Save(t Transport) TransportSnapshot {
	return TransportSnapshot{
		transport: t,
		distance:  copyFloat(r.Distances[t]),
		duration:  copyInt(r.Durations[t]),
		cost:      copyFloat(r.Costs[t]),
	}
}

// Restore writes a snapshot back, re-enabling the transport if it was offered
func (r *Route) Restore(s TransportSnapshot) {
	r.EnableTransport(s.transport, s.distance, s.duration, s.cost)
}

// SaveBicycleDuration captures the bicycle figures before a duration override
func (r *Route) SaveBicycleDuration() TransportSnapshot {
	return r.Save(TransportBicycle)
}

// RestoreBicycleDuration restores a bicycle snapshot; snapshots of other
// transports are ignored
func (r *Route) RestoreBicycleDuration(s TransportSnapshot) {
	if s.transport != TransportBicycle {
		return
	}
	r.Restore(s)
}

// UpdateBicycleDuration overrides the bicycle duration. It never creates an
// entry: it returns false and changes nothing when bicycle is not offered.
func (r *Route) UpdateBicycleDuration(minutes int) bool {
	if r.Durations[TransportBicycle] == nil {
		return false
	}
	r.Durations[TransportBicycle] = Int(minutes)
	return true
}

func (r *Route) String() string {
	return r.StartStopCode + " - " + r.EndStopCode
}

type transportFigures struct {
	Distance *float64 `json:"distance"`
	Duration *int     `json:"duration"`
	Cost     *float64 `json:"cost"`
}

// MarshalJSON renders only the offered transports
func (r *Route) MarshalJSON() ([]byte, error) {
	transports := make(map[string]transportFigures)
	for _, t := range r.Transports() {
		transports[t.Key()] = transportFigures{
			Distance: r.Distances[t],
			Duration: r.Durations[t],
			Cost:     r.Costs[t],
		}
	}
	return json.Marshal(struct {
		Start      string                      `json:"start"`
		End        string                      `json:"end"`
		Active     bool                        `json:"active"`
		Transports map[string]transportFigures `json:"transports"`
	}{r.StartStopCode, r.EndStopCode, r.Active, transports})
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
