package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sort"
	"strings"

	"bitbank-mcp/internal/domain"
)

const (
	chartWidth  = 960
	chartHeight = 640
	maxCandles  = 120
)

// Study selects what the lower panel (or price overlay) shows.
type Study string

const (
	StudyVolume Study = "volume"
	StudyRSI    Study = "rsi"
	StudySMA    Study = "sma"
)

var Studies = []Study{StudyVolume, StudyRSI, StudySMA}

func ParseStudy(raw string) (Study, error) {
	s := Study(strings.ToLower(strings.TrimSpace(raw)))
	if s == "" {
		return StudyVolume, nil
	}
	for _, known := range Studies {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("unsupported study %q (use volume, rsi or sma)", raw)
}

var (
	colBackground = color.RGBA{R: 250, G: 252, B: 255, A: 255}
	colGrid       = color.RGBA{R: 225, G: 232, B: 240, A: 255}
	colUp         = color.RGBA{R: 18, G: 140, B: 126, A: 255}
	colDown       = color.RGBA{R: 210, G: 61, B: 87, A: 255}
	colWick       = color.RGBA{R: 58, G: 64, B: 90, A: 255}
	colLast       = color.RGBA{R: 62, G: 106, B: 214, A: 255}
	colFast       = color.RGBA{R: 62, G: 106, B: 214, A: 255}
	colSlow       = color.RGBA{R: 255, G: 149, B: 0, A: 255}
	colGuide      = color.RGBA{R: 104, G: 122, B: 146, A: 255}
	colVolume     = color.RGBA{R: 120, G: 139, B: 164, A: 255}
)

// Image is an encoded chart.
type Image struct {
	MimeType string
	Width    int
	Height   int
	Bytes    []byte
}

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderCandles draws the most recent candles oldest first with a study
// panel and returns a PNG.
func (r *Renderer) RenderCandles(candles []domain.Candle, study Study) (*Image, error) {
	series := sortedCandles(candles)
	if len(series) < 2 {
		return nil, fmt.Errorf("need at least 2 candles to render chart, got %d", len(series))
	}
	if len(series) > maxCandles {
		series = series[len(series)-maxCandles:]
	}

	img := image.NewRGBA(image.Rect(0, 0, chartWidth, chartHeight))
	fill(img, img.Bounds(), colBackground)

	pricePanel := image.Rect(60, 20, chartWidth-20, (chartHeight*72)/100)
	lowerPanel := image.Rect(60, pricePanel.Max.Y+16, chartWidth-20, chartHeight-30)
	grid(img, pricePanel, 8, 6)
	grid(img, lowerPanel, 8, 3)

	lo, hi := priceRange(series)
	drawCandles(img, pricePanel, series, lo, hi)

	lastX := xAt(len(series)-1, len(series), pricePanel)
	line(img, lastX, pricePanel.Min.Y, lastX, pricePanel.Max.Y, colLast)

	closes := closesOf(series)
	switch study {
	case StudyRSI:
		rsi := rsiSeries(closes, 14)
		hline(img, lowerPanel, 30, 0, 100, colGuide)
		hline(img, lowerPanel, 70, 0, 100, colGuide)
		polyline(img, lowerPanel, rsi, 0, 100, colFast)
	case StudySMA:
		polyline(img, pricePanel, smaSeries(closes, 7), lo, hi, colFast)
		polyline(img, pricePanel, smaSeries(closes, 25), lo, hi, colSlow)
		drawVolume(img, lowerPanel, series)
	case StudyVolume, "":
		drawVolume(img, lowerPanel, series)
	default:
		return nil, fmt.Errorf("unsupported study %q", study)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return &Image{MimeType: "image/png", Width: chartWidth, Height: chartHeight, Bytes: buf.Bytes()}, nil
}

func sortedCandles(in []domain.Candle) []domain.Candle {
	out := make([]domain.Candle, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

func priceRange(candles []domain.Candle) (float64, float64) {
	lo, hi := candles[0].Low, candles[0].High
	for _, c := range candles[1:] {
		lo = math.Min(lo, c.Low)
		hi = math.Max(hi, c.High)
	}
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

func drawCandles(img *image.RGBA, rect image.Rectangle, candles []domain.Candle, lo, hi float64) {
	bodyW := max(3, (rect.Dx()-10)/len(candles)-1)
	for i, c := range candles {
		x := xAt(i, len(candles), rect)
		line(img, x, yAt(c.High, lo, hi, rect), x, yAt(c.Low, lo, hi, rect), colWick)

		openY := yAt(c.Open, lo, hi, rect)
		closeY := yAt(c.Close, lo, hi, rect)
		top, bottom := min(openY, closeY), max(openY, closeY)
		if bottom-top < 2 {
			bottom = top + 2
		}
		col := colUp
		if c.Close < c.Open {
			col = colDown
		}
		fill(img, image.Rect(x-bodyW/2, top, x+bodyW/2+1, bottom+1), col)
	}
}

func drawVolume(img *image.RGBA, rect image.Rectangle, candles []domain.Candle) {
	vols := make([]float64, len(candles))
	var top float64
	for i, c := range candles {
		vols[i] = c.Volume
		top = math.Max(top, c.Volume)
	}
	if top == 0 {
		top = 1
	}
	barW := max(1, (rect.Dx()-10)/len(vols)-1)
	baseY := yAt(0, 0, top, rect)
	for i, v := range vols {
		x := xAt(i, len(vols), rect)
		col := colVolume
		if candles[i].Close < candles[i].Open {
			col = colDown
		}
		fill(img, image.Rect(x-barW/2, yAt(v, 0, top, rect), x+barW/2+1, baseY+1), col)
	}
}

func polyline(img *image.RGBA, rect image.Rectangle, series []float64, lo, hi float64, col color.RGBA) {
	px, py := -1, -1
	for i, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			px, py = -1, -1
			continue
		}
		x, y := xAt(i, len(series), rect), yAt(v, lo, hi, rect)
		if px >= 0 {
			line(img, px, py, x, y, col)
		}
		px, py = x, y
	}
}

func grid(img *image.RGBA, rect image.Rectangle, cols, rows int) {
	for i := 0; i <= cols; i++ {
		x := rect.Min.X + (rect.Dx()*i)/max(1, cols)
		line(img, x, rect.Min.Y, x, rect.Max.Y, colGrid)
	}
	for i := 0; i <= rows; i++ {
		y := rect.Min.Y + (rect.Dy()*i)/max(1, rows)
		line(img, rect.Min.X, y, rect.Max.X, y, colGrid)
	}
}

func hline(img *image.RGBA, rect image.Rectangle, v, lo, hi float64, col color.RGBA) {
	y := yAt(v, lo, hi, rect)
	line(img, rect.Min.X, y, rect.Max.X, y, col)
}

func xAt(idx, total int, rect image.Rectangle) int {
	if total <= 1 {
		return rect.Min.X
	}
	return rect.Min.X + (idx*(rect.Dx()-1))/(total-1)
}

func yAt(v, lo, hi float64, rect image.Rectangle) int {
	if hi <= lo {
		return rect.Max.Y
	}
	ratio := math.Max(0, math.Min(1, (v-lo)/(hi-lo)))
	return rect.Max.Y - int(ratio*float64(rect.Dy()-1))
}

func closesOf(candles []domain.Candle) []float64 {
	out := make([]float64, len(candles))
	for i := range candles {
		out[i] = candles[i].Close
	}
	return out
}

// smaSeries is NaN until period closes are available.
func smaSeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(period)
	}
	return out
}

// rsiSeries uses Wilder smoothing.
func rsiSeries(closes []float64, period int) []float64 {
	if len(closes) <= period {
		return nil
	}
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	var gain, loss float64
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		gain += math.Max(d, 0)
		loss += math.Max(-d, 0)
	}
	gain /= float64(period)
	loss /= float64(period)
	out[period] = rsi(gain, loss)
	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain = (gain*float64(period-1) + math.Max(d, 0)) / float64(period)
		loss = (loss*float64(period-1) + math.Max(-d, 0)) / float64(period)
		out[i] = rsi(gain, loss)
	}
	return out
}

func rsi(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

func fill(img *image.RGBA, rect image.Rectangle, col color.RGBA) {
	r := rect.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}

// line is Bresenham.
func line(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		if image.Pt(x0, y0).In(img.Bounds()) {
			img.SetRGBA(x0, y0, col)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
