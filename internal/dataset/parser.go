package dataset

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/passbi/transitmap/internal/graph"
	"github.com/passbi/transitmap/internal/models"
)

const (
	StopsFile  = "stops.csv"
	RoutesFile = "routes.csv"
	LayoutFile = "xy.csv"
)

// routes.csv: start, end, then distance, duration and cost blocks with one
// column per transport in catalog order
const routeColumns = 2 + 3*models.NumTransports

// Dataset is a parsed network ready to be loaded into a TransitMap
type Dataset struct {
	Stops  []*models.Stop
	Routes []*models.Route
	Layout graph.Layout
}

// Build loads the dataset into a new network
func (d *Dataset) Build() (*graph.TransitMap, error) {
	return graph.Load(d.Stops, d.Routes, d.Layout)
}

// Load parses a dataset directory, or a ZIP archive when path ends in .zip
func Load(path string) (*Dataset, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return LoadZip(path)
	}
	return LoadDir(path)
}

// LoadDir parses stops.csv and routes.csv from dir, plus xy.csv if present
func LoadDir(dir string) (*Dataset, error) {
	open := func(name string) (io.ReadCloser, error) {
		return os.Open(filepath.Join(dir, name))
	}
	return load(open)
}

// LoadZip parses the dataset files from a ZIP archive. Entries are matched
// by base name so the files may sit in a sub folder.
func LoadZip(zipPath string) (*Dataset, error) {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	defer reader.Close()

	entries := make(map[string]*zip.File)
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		entries[filepath.Base(file.Name)] = file
	}

	open := func(name string) (io.ReadCloser, error) {
		file, ok := entries[name]
		if !ok {
			return nil, fmt.Errorf("%s: %w", name, os.ErrNotExist)
		}
		return file.Open()
	}
	return load(open)
}

func load(open func(name string) (io.ReadCloser, error)) (*Dataset, error) {
	ds := &Dataset{}

	// Parse stops (required)
	stops, err := parseFile(open, StopsFile, ParseStops)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stops (required): %w", err)
	}
	ds.Stops = stops
	log.Printf("Parsed %d stops", len(stops))

	// Parse routes (required)
	routes, err := parseFile(open, RoutesFile, ParseRoutes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse routes (required): %w", err)
	}
	ds.Routes = routes
	log.Printf("Parsed %d routes", len(routes))

	// Parse layout (optional)
	layout, err := parseFile(open, LayoutFile, ParseLayout)
	if err == nil {
		ds.Layout = layout
		log.Printf("Parsed %d layout coordinates", len(layout))
	} else {
		log.Printf("Warning: failed to parse layout: %v", err)
	}

	return ds, nil
}

func parseFile[T any](open func(string) (io.ReadCloser, error), name string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	rc, err := open(name)
	if err != nil {
		return zero, err
	}
	defer rc.Close()
	return parse(rc)
}

// ParseStops reads code, name, latitude and longitude rows
func ParseStops(reader io.Reader) ([]*models.Stop, error) {
	csvReader := newReader(reader)
	if _, err := csvReader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var stops []*models.Stop
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("Warning: skipping malformed stop row: %v", err)
			continue
		}
		if len(record) < 4 {
			log.Printf("Warning: skipping stop row with %d columns", len(record))
			continue
		}

		code := field(record, 0)
		name := field(record, 1)
		if code == "" || name == "" {
			log.Printf("Warning: skipping stop with missing required fields: %q", code)
			continue
		}

		lat, err := strconv.ParseFloat(field(record, 2), 64)
		if err != nil {
			log.Printf("Warning: invalid latitude for stop %s: %v", code, err)
			continue
		}
		lon, err := strconv.ParseFloat(field(record, 3), 64)
		if err != nil {
			log.Printf("Warning: invalid longitude for stop %s: %v", code, err)
			continue
		}

		stops = append(stops, models.NewStop(code, name, lat, lon))
	}

	return stops, nil
}

// ParseRoutes reads one route per row. An empty cell means the transport is
// not offered for that figure.
func ParseRoutes(reader io.Reader) ([]*models.Route, error) {
	csvReader := newReader(reader)
	if _, err := csvReader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var routes []*models.Route
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("Warning: skipping malformed route row: %v", err)
			continue
		}
		if len(record) < routeColumns {
			log.Printf("Warning: skipping route row with %d columns, want %d", len(record), routeColumns)
			continue
		}

		route, err := parseRoute(record)
		if err != nil {
			log.Printf("Warning: skipping route %s-%s: %v", field(record, 0), field(record, 1), err)
			continue
		}
		routes = append(routes, route)
	}

	return routes, nil
}

func parseRoute(record []string) (*models.Route, error) {
	start, end := field(record, 0), field(record, 1)
	if start == "" || end == "" {
		return nil, fmt.Errorf("missing stop code")
	}

	route := models.NewRoute(start, end)
	n := models.NumTransports
	for _, t := range models.AllTransports() {
		i := int(t)

		distance, err := optionalFloat(field(record, 2+i))
		if err != nil {
			return nil, fmt.Errorf("%s distance: %w", t.Key(), err)
		}
		duration, err := optionalInt(field(record, 2+n+i))
		if err != nil {
			return nil, fmt.Errorf("%s duration: %w", t.Key(), err)
		}
		cost, err := optionalFloat(field(record, 2+2*n+i))
		if err != nil {
			return nil, fmt.Errorf("%s cost: %w", t.Key(), err)
		}

		route.SetTransport(t, distance, duration, cost)
	}
	return route, nil
}

// ParseLayout reads code, x, y rows. Unparseable coordinates default to 0.
func ParseLayout(reader io.Reader) (graph.Layout, error) {
	csvReader := newReader(reader)
	if _, err := csvReader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	layout := make(graph.Layout)
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("Warning: skipping malformed layout row: %v", err)
			continue
		}
		if len(record) < 3 || field(record, 0) == "" {
			continue
		}

		x, _ := strconv.Atoi(field(record, 1))
		y, _ := strconv.Atoi(field(record, 2))
		layout[field(record, 0)] = [2]int{x, y}
	}

	return layout, nil
}

// Helper functions

func newReader(reader io.Reader) *csv.Reader {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1
	return csvReader
}

func field(record []string, idx int) string {
	if idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

func optionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func optionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
