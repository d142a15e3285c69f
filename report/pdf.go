package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/braintrustdata/overlap-go/eval"
	"github.com/braintrustdata/overlap-go/score"
)

// Panel geometry in millimetres on a landscape A4 page.
const (
	panelWidth  = 125.0
	panelHeight = 150.0
	panelTop    = 35.0
	leftMargin  = 20.0
	panelGap    = 20.0
	axisInset   = 15.0
	plotHeight  = 110.0
)

type rgb struct{ r, g, b int }

var metricColors = map[score.Metric]rgb{
	score.ROUGE1: {31, 119, 180},
	score.ROUGE2: {255, 127, 14},
	score.ROUGEL: {44, 160, 44},
	score.BLEU:   {214, 39, 40},
}

// panel is one chart area with a 0..1 y axis.
type panel struct {
	pdf    *fpdf.Fpdf
	x0, y0 float64
}

func (p panel) left() float64   { return p.x0 + axisInset }
func (p panel) bottom() float64 { return p.y0 + axisInset + plotHeight }
func (p panel) width() float64  { return panelWidth - axisInset }

// y maps a score to a page coordinate, clamped to the axis range.
func (p panel) y(v float64) float64 {
	v = math.Max(0, math.Min(1, v))
	return p.bottom() - v*plotHeight
}

// slot returns the horizontal centre of category i out of n.
func (p panel) slot(i, n int) float64 {
	step := p.width() / float64(n)
	return p.left() + step*(float64(i)+0.5)
}

func (p panel) frame(title string) {
	pdf := p.pdf
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(p.x0, p.y0)
	pdf.CellFormat(panelWidth, 8, title, "", 0, "C", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.3)
	pdf.Line(p.left(), p.y(1), p.left(), p.bottom())
	pdf.Line(p.left(), p.bottom(), p.left()+p.width(), p.bottom())

	pdf.SetFont("Helvetica", "", 8)
	for i := 0; i <= 5; i++ {
		v := float64(i) / 5
		y := p.y(v)
		pdf.Line(p.left()-1.5, y, p.left(), y)
		pdf.SetXY(p.left()-12, y-2)
		pdf.CellFormat(10, 4, fmt.Sprintf("%.1f", v), "", 0, "R", false, 0, "")
	}

	pdf.TransformBegin()
	pdf.TransformRotate(90, p.x0+2, p.y(0.5))
	pdf.Text(p.x0+2-5, p.y(0.5), "Score")
	pdf.TransformEnd()

	for i, m := range score.Metrics {
		pdf.SetXY(p.slot(i, len(score.Metrics))-12, p.bottom()+2)
		pdf.CellFormat(24, 5, string(m), "", 0, "C", false, 0, "")
	}
}

func (p panel) boxPlot(dists map[score.Metric]eval.Distribution) {
	pdf := p.pdf
	half := p.width() / float64(len(score.Metrics)) / 4
	for i, m := range score.Metrics {
		d, ok := dists[m]
		if !ok || math.IsNaN(d.Median) {
			continue
		}
		cx := p.slot(i, len(score.Metrics))
		c := metricColors[m]

		pdf.SetDrawColor(0, 0, 0)
		pdf.SetLineWidth(0.3)
		// whiskers span the full range
		pdf.Line(cx, p.y(d.Max), cx, p.y(d.Q3))
		pdf.Line(cx, p.y(d.Q1), cx, p.y(d.Min))
		pdf.Line(cx-half/2, p.y(d.Max), cx+half/2, p.y(d.Max))
		pdf.Line(cx-half/2, p.y(d.Min), cx+half/2, p.y(d.Min))

		pdf.SetFillColor(c.r, c.g, c.b)
		top := p.y(d.Q3)
		pdf.Rect(cx-half, top, 2*half, math.Max(p.y(d.Q1)-top, 0.2), "FD")

		pdf.SetLineWidth(0.6)
		pdf.Line(cx-half, p.y(d.Median), cx+half, p.y(d.Median))
	}
}

func (p panel) bars(sum eval.Summary) {
	pdf := p.pdf
	half := p.width() / float64(len(score.Metrics)) / 3
	pdf.SetFont("Helvetica", "", 8)
	for i, m := range score.Metrics {
		v := sum.Mean(m)
		if math.IsNaN(v) {
			continue
		}
		cx := p.slot(i, len(score.Metrics))
		c := metricColors[m]
		top := p.y(v)

		pdf.SetFillColor(c.r, c.g, c.b)
		pdf.SetDrawColor(0, 0, 0)
		pdf.SetLineWidth(0.3)
		pdf.Rect(cx-half, top, 2*half, p.bottom()-top, "FD")

		pdf.SetXY(cx-half, top-5)
		pdf.CellFormat(2*half, 4, fmt.Sprintf("%.4f", v), "", 0, "C", false, 0, "")
	}
}

// WritePDF renders a one-page report: a box plot of each metric's
// per-row scores next to a bar chart of the mean scores.
func WritePDF(w io.Writer, res *eval.Result) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Overlap evaluation "+res.ID(), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(leftMargin, 12)
	pdf.CellFormat(0, 8, "Overlap evaluation", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetX(leftMargin)
	pdf.CellFormat(0, 6, fmt.Sprintf("Run %s: %d rows scored, %d skipped",
		res.ID(), res.Summary.Count, res.Summary.Skipped), "", 1, "L", false, 0, "")

	dist := panel{pdf: pdf, x0: leftMargin, y0: panelTop}
	dist.frame("Scores Distribution")
	dist.boxPlot(res.Summary.Distributions)

	means := panel{pdf: pdf, x0: leftMargin + panelWidth + panelGap, y0: panelTop}
	means.frame("Mean Scores")
	means.bars(res.Summary)

	if res.Summary.Count == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.SetXY(leftMargin, panelTop+panelHeight)
		pdf.CellFormat(0, 6, "No rows were scored.", "", 1, "L", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
