package export

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/vanderheijden86/taskweave/pkg/model"
	"github.com/vanderheijden86/taskweave/pkg/store"
)

// Chart geometry. Kept simple so the output is legible when embedded in
// docs or dashboards without styling.
const (
	chartWidth  = 480
	chartBarH   = 28
	chartGap    = 12
	chartMargin = 24
	chartLabelW = 90
)

var statusColors = map[model.Status]string{
	model.StatusTodo:    "#e5493a",
	model.StatusOngoing: "#f1c40f",
	model.StatusDone:    "#2ecc71",
}

// WriteStatusChartSVG renders a horizontal bar chart of task counts per
// status to w.
func WriteStatusChartSVG(snap *store.Store, w io.Writer) error {
	counts := map[model.Status]int{}
	total := 0
	for _, t := range snap.Tasks() {
		counts[t.Status]++
		total++
	}
	max := 1
	for _, n := range counts {
		if n > max {
			max = n
		}
	}

	statuses := []model.Status{model.StatusTodo, model.StatusOngoing, model.StatusDone}
	height := chartMargin*2 + len(statuses)*(chartBarH+chartGap) + chartBarH

	canvas := svg.New(w)
	canvas.Start(chartWidth, height)
	canvas.Title("Task status")
	canvas.Text(chartMargin, chartMargin-6,
		fmt.Sprintf("%d tasks", total),
		"font-family:sans-serif;font-size:13px;fill:#555")

	barSpan := chartWidth - chartMargin*2 - chartLabelW
	y := chartMargin
	for _, s := range statuses {
		n := counts[s]
		barW := barSpan * n / max
		canvas.Text(chartMargin, y+chartBarH-9, string(s),
			"font-family:sans-serif;font-size:14px;fill:#333")
		canvas.Rect(chartMargin+chartLabelW, y, barW, chartBarH,
			"fill:"+statusColors[s])
		canvas.Text(chartMargin+chartLabelW+barW+6, y+chartBarH-9,
			fmt.Sprint(n),
			"font-family:sans-serif;font-size:13px;fill:#333")
		y += chartBarH + chartGap
	}
	canvas.End()
	return nil
}
