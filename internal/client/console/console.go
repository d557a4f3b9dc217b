// Package console is the terminal front-end of the tracker: toasts, the
// tracking view and the dashboard rendered as text tables.
package console

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/olekukonko/tablewriter"

	"github.com/99minutos/shipment-tracker/internal/client/dashboard"
	"github.com/99minutos/shipment-tracker/internal/client/tracking"
	"github.com/99minutos/shipment-tracker/pkg/wire"
)

// Toaster prints one line per toast.
type Toaster struct {
	mu  sync.Mutex
	out io.Writer
}

func NewToaster(out io.Writer) *Toaster {
	return &Toaster{out: out}
}

func (t *Toaster) Success(msg string) { t.print("✔", msg) }
func (t *Toaster) Info(msg string)    { t.print("ℹ", msg) }
func (t *Toaster) Error(msg string)   { t.print("✖", msg) }

func (t *Toaster) print(icon, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "%s %s\n", icon, msg)
}

// Renderer draws the tracking view as text.
type Renderer struct {
	mu  sync.Mutex
	out io.Writer
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

func (r *Renderer) RenderState(s tracking.State, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		fmt.Fprintf(r.out, "[%s] %v\n", s, err)
		return
	}
	fmt.Fprintf(r.out, "[%s]\n", s)
}

func (r *Renderer) RenderHistory(s wire.Shipment, history []wire.History) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "Shipment %s (%s) status %s\n", s.TrackingNumber, s.ID, s.Status)
	table := tablewriter.NewWriter(r.out)
	table.SetHeader([]string{"Date", "Status", "Location", "Notes"})
	table.SetAutoWrapText(false)
	for _, h := range history {
		table.Append([]string{
			h.CreatedAt.Local().Format("2006-01-02 15:04"),
			h.Status,
			h.LocationFormattedAddress,
			h.Notes,
		})
	}
	table.Render()
}

func (r *Renderer) RenderMarkers(points []wire.LatLng) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch len(points) {
	case 0:
		fmt.Fprintln(r.out, "No locations yet")
	case 1:
		fmt.Fprintf(r.out, "Marker: %s\n", formatPoint(points[0]))
	default:
		fmt.Fprintf(r.out, "Origin: %s  Destination: %s\n", formatPoint(points[0]), formatPoint(points[len(points)-1]))
	}
}

func (r *Renderer) RenderPath(path []wire.LatLng) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "Route: %d points\n", len(path))
}

func (r *Renderer) FitBounds(points []wire.LatLng) {
	sw, ne, ok := Bounds(points)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "Viewport: %s to %s\n", formatPoint(sw), formatPoint(ne))
}

func (r *Renderer) RenderMapError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "Map unavailable: %v\n", err)
}

// Bounds returns the south-west and north-east corners enclosing points.
func Bounds(points []wire.LatLng) (sw, ne wire.LatLng, ok bool) {
	if len(points) == 0 {
		return wire.LatLng{}, wire.LatLng{}, false
	}
	sw, ne = points[0], points[0]
	for _, p := range points[1:] {
		sw.Lat = min(sw.Lat, p.Lat)
		sw.Lng = min(sw.Lng, p.Lng)
		ne.Lat = max(ne.Lat, p.Lat)
		ne.Lng = max(ne.Lng, p.Lng)
	}
	return sw, ne, true
}

// PrintDashboard writes the three dashboard tables.
func PrintDashboard(out io.Writer, m wire.DashboardMetrics, src dashboard.Source) {
	if src == dashboard.SourceFallback {
		fmt.Fprintln(out, "Showing sample data: metrics are unavailable")
	}

	fmt.Fprintln(out, "Carrier performance")
	perf := tablewriter.NewWriter(out)
	perf.SetHeader([]string{"Carrier", "Avg delivery (h)", "Completed", "On time"})
	for _, c := range m.CarrierPerformance {
		perf.Append([]string{
			c.CarrierName,
			strconv.FormatFloat(c.AvgDeliveryTime, 'f', 1, 64),
			strconv.Itoa(c.CompletedShipments),
			strconv.Itoa(c.OnTimeDeliveries),
		})
	}
	perf.Render()

	fmt.Fprintln(out, "Last 7 days")
	timeline := tablewriter.NewWriter(out)
	timeline.SetHeader([]string{"Date", "Pending", "In transit", "Completed"})
	for _, p := range m.TimelineMetrics {
		timeline.Append([]string{p.Date, strconv.Itoa(p.Pending), strconv.Itoa(p.InTransit), strconv.Itoa(p.Completed)})
	}
	timeline.Render()

	fmt.Fprintln(out, "Top carriers")
	top := tablewriter.NewWriter(out)
	top.SetHeader([]string{"Carrier", "Shipments", "Success rate"})
	for _, c := range m.TopCarriers {
		top.Append([]string{c.CarrierName, strconv.Itoa(c.TotalShipments), strconv.FormatFloat(c.SuccessRate, 'f', 1, 64) + "%"})
	}
	top.Render()
}

func formatPoint(p wire.LatLng) string {
	return strconv.FormatFloat(p.Lat, 'f', 5, 64) + "," + strconv.FormatFloat(p.Lng, 'f', 5, 64)
}
