package main

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/meshcut/component"
	"github.com/wippyai/meshcut/export"
	"github.com/wippyai/meshcut/registry"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB"))

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// row summarizes one component for display.
type row struct {
	kind      string
	detail    string
	handle    registry.ComponentHandle
	vertices  int
	faces     int
	edges     int
	triangles int
	failures  int
}

func (r row) cells() []string {
	return []string{
		fmt.Sprintf("%#x", uint64(r.handle)),
		r.kind,
		r.detail,
		fmt.Sprint(r.vertices),
		fmt.Sprint(r.faces),
		fmt.Sprint(r.edges),
		fmt.Sprint(r.triangles),
		fmt.Sprint(r.failures),
	}
}

var columns = []string{"handle", "type", "detail", "verts", "faces", "edges", "tris", "failed"}

// collect lists every component of h and triangulates it. failures reports
// the running number of kernel notifications so each row gets its own count.
func collect(reg *registry.Registry, h registry.ContextHandle, failures func() int) ([]row, error) {
	n, err := reg.ListComponents(h, component.TypeAll, 0, nil)
	if err != nil {
		return nil, err
	}
	handles := make([]registry.ComponentHandle, n)
	if _, err := reg.ListComponents(h, component.TypeAll, n, handles); err != nil {
		return nil, err
	}

	rows := make([]row, 0, n)
	for _, ch := range handles {
		c, err := reg.Component(h, ch)
		if err != nil {
			return nil, err
		}
		a := c.Arrays()
		r := row{
			handle:   ch,
			kind:     c.Type().String(),
			detail:   describe(c.Variant()),
			vertices: a.NumVertices(),
			faces:    a.NumFaces(),
			edges:    a.NumEdges(),
		}
		if r.faces > 0 {
			before := failures()
			size, err := reg.GetData(h, ch, export.FaceTriangulation, 0, nil)
			if err != nil {
				return nil, fmt.Errorf("triangulate %s component: %w", r.kind, err)
			}
			r.triangles = int(size / 12)
			r.failures = failures() - before
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func describe(v component.Variant) string {
	switch v := v.(type) {
	case component.Fragment:
		return fmt.Sprintf("%s, patch %s, seal %s", v.Location, v.PatchLocation, v.SealType)
	case component.Patch:
		return v.Location.String()
	case component.Seam:
		return "from " + v.Origin.String()
	case component.Input:
		return "from " + v.Origin.String()
	default:
		return ""
	}
}

// readU32 runs the size/copy protocol for a uint32 channel.
func readU32(reg *registry.Registry, h registry.ContextHandle, ch registry.ComponentHandle, channel export.Channel) ([]uint32, error) {
	size, err := reg.GetData(h, ch, channel, 0, nil)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	if _, err := reg.GetData(h, ch, channel, size, buf); err != nil {
		return nil, err
	}
	out := make([]uint32, size/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(buf[4*i:])
	}
	return out, nil
}

func renderReport(cfg config, rows []row, styled bool, width int) string {
	render := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	table := [][]string{columns}
	for _, r := range rows {
		table = append(table, r.cells())
	}
	widths := make([]int, len(columns))
	for _, line := range table {
		for i, cell := range line {
			widths[i] = max(widths[i], len(cell))
		}
	}

	var b strings.Builder
	b.WriteString(render(titleStyle, "meshcut"))
	fmt.Fprintf(&b, " %s x %s (policy %s)\n\n", cfg.src, cfg.cut, cfg.policy)

	for i, line := range table {
		var cells []string
		for j, cell := range line {
			cells = append(cells, cell+strings.Repeat(" ", widths[j]-len(cell)))
		}
		text := strings.TrimRight(strings.Join(cells, "  "), " ")
		if width > 0 && len(text) > width {
			text = text[:width]
		}
		switch {
		case i == 0:
			text = render(headerStyle, text)
		case rows[i-1].failures > 0:
			text = render(warnStyle, text)
		default:
			text = render(kindStyle, text)
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}

	failed := 0
	for _, r := range rows {
		failed += r.failures
	}
	b.WriteByte('\n')
	summary := fmt.Sprintf("%d components", len(rows))
	if failed > 0 {
		summary += fmt.Sprintf(", %d faces could not be triangulated", failed)
	}
	b.WriteString(render(helpStyle, summary))
	return b.String()
}
