package models

// Stop represents a physical stop of the network.
// Code is the identity; LayoutX/LayoutY are set once by the layout step.
type Stop struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	LayoutX   int     `json:"layout_x"`
	LayoutY   int     `json:"layout_y"`
}

// NewStop creates a stop with no layout coordinates
func NewStop(code, name string, lat, lon float64) *Stop {
	return &Stop{Code: code, Name: name, Latitude: lat, Longitude: lon}
}

// SetLayout sets the display coordinates of the stop
func (s *Stop) SetLayout(x, y int) {
	s.LayoutX = x
	s.LayoutY = y
}

func (s *Stop) String() string {
	return s.Name
}

// RouteInfo is one vertex's best known predecessor record after a solver run.
// TransportTaken is meaningful only when RouteTaken is not nil.
type RouteInfo struct {
	CameFrom       *Stop
	ArrivedAt      *Stop
	RouteTaken     *Route
	TransportTaken Transport
	CostToArrive   float64
	Criterion      string
}

// Reached reports whether the record was produced by a relaxation
func (ri RouteInfo) Reached() bool {
	return ri.CameFrom != nil
}

// Step represents one hop of a computed trip
type Step struct {
	FromStop     string    `json:"from_stop"`
	FromStopName string    `json:"from_stop_name"`
	ToStop       string    `json:"to_stop"`
	ToStopName   string    `json:"to_stop_name"`
	Transport    Transport `json:"transport"`
	Cost         float64   `json:"cost"`
	Criterion    string    `json:"criterion"`
	Leg          int       `json:"leg"`
}

// Itinerary is a complete trip made of one or more independently computed legs
type Itinerary struct {
	Criterion string  `json:"criterion"`
	Legs      int     `json:"legs"`
	TotalCost float64 `json:"total_cost"`
	Steps     []Step  `json:"steps"`
}

// CentralityEntry is the degree of one stop
type CentralityEntry struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Degree int    `json:"degree"`
}
