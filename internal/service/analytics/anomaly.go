package analytics

import (
	"math"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/domain"
)

// AnomalyConfig tunes the isolation forest.
type AnomalyConfig struct {
	Trees         int     `mapstructure:"trees"`
	SubsampleSize int     `mapstructure:"subsample_size"`
	Contamination float64 `mapstructure:"contamination"`
	MinSamples    int     `mapstructure:"min_samples"`
	RollingWindow int     `mapstructure:"rolling_window"`
	Seed          int64   `mapstructure:"seed"`
}

func DefaultAnomalyConfig() *AnomalyConfig {
	return &AnomalyConfig{
		Trees:         100,
		SubsampleSize: 256,
		Contamination: 0.1,
		MinSamples:    10,
		RollingWindow: 24,
		Seed:          1,
	}
}

// AnomalyDetector fits a fresh isolation forest per device on every snapshot
// rebuild. Seeded so the same readings always yield the same report.
type AnomalyDetector struct {
	cfg *AnomalyConfig
	log *zap.Logger
}

func NewAnomalyDetector(cfg *AnomalyConfig, log *zap.Logger) *AnomalyDetector {
	if cfg == nil {
		cfg = DefaultAnomalyConfig()
	}
	return &AnomalyDetector{cfg: cfg, log: log}
}

// Detect scores one device's readings. Fewer than MinSamples readings yields
// an insufficient_data report, never an error.
func (d *AnomalyDetector) Detect(name string, readings []domain.Reading) domain.AnomalyReport {
	report := domain.AnomalyReport{DeviceName: name, SampleCount: len(readings)}
	if len(readings) < d.cfg.MinSamples {
		report.Status = domain.AnomalyStatusInsufficient
		return report
	}

	features := d.buildFeatures(readings)
	standardize(features)

	rng := rand.New(rand.NewSource(d.cfg.Seed))
	forest := fitForest(features, d.cfg.Trees, d.cfg.SubsampleSize, rng)

	scores := make([]float64, len(features))
	for i, row := range features {
		scores[i] = forest.score(row)
	}
	threshold := quantile(scores, 1-d.cfg.Contamination)

	// The quantile caps the flagged fraction at the contamination rate; the
	// absolute floor keeps a fully healthy series from flagging its own tail.
	flagged := make([]bool, len(scores))
	for i, s := range scores {
		if s >= threshold && s > 0.6 {
			flagged[i] = true
			report.FlaggedCount++
		}
	}

	report.Status = domain.AnomalyStatusOK
	recent := len(readings) - d.cfg.RollingWindow
	if recent < 0 {
		recent = 0
	}
	for i := recent; i < len(readings); i++ {
		if flagged[i] {
			report.Status = domain.AnomalyStatusAnomalous
		}
		if scores[i] > report.Score {
			report.Score = scores[i]
		}
	}
	return report
}

// DetectAll runs the detector over every device group.
func (d *AnomalyDetector) DetectAll(groups map[string][]domain.Reading) map[string]domain.AnomalyReport {
	out := make(map[string]domain.AnomalyReport, len(groups))
	for name, group := range groups {
		out[name] = d.Detect(name, group)
	}
	return out
}

// buildFeatures engineers one row per reading: instantaneous power, rolling
// mean power, and the energy-to-power ratio.
func (d *AnomalyDetector) buildFeatures(readings []domain.Reading) [][]float64 {
	window := d.cfg.RollingWindow
	if window < 1 {
		window = 1
	}
	rows := make([][]float64, len(readings))
	var runSum float64
	for i, r := range readings {
		runSum += r.PowerW
		if i >= window {
			runSum -= readings[i-window].PowerW
		}
		n := i + 1
		if n > window {
			n = window
		}
		rolling := runSum / float64(n)

		ratio := 0.0
		if r.PowerW > 0 {
			ratio = r.EnergyKWh / r.PowerW
		}
		rows[i] = []float64{r.PowerW, rolling, ratio}
	}
	return rows
}

func standardize(rows [][]float64) {
	if len(rows) == 0 {
		return
	}
	dims := len(rows[0])
	for d := 0; d < dims; d++ {
		col := make([]float64, len(rows))
		for i := range rows {
			col[i] = rows[i][d]
		}
		mean, std := meanStd(col)
		if std == 0 {
			std = 1
		}
		for i := range rows {
			rows[i][d] = (rows[i][d] - mean) / std
		}
	}
}

func quantile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(q * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

type isoForest struct {
	trees      []*isoNode
	sampleSize int
}

type isoNode struct {
	feature int
	split   float64
	left    *isoNode
	right   *isoNode
	size    int
}

func fitForest(rows [][]float64, trees, subsample int, rng *rand.Rand) *isoForest {
	if subsample > len(rows) {
		subsample = len(rows)
	}
	maxDepth := int(math.Ceil(math.Log2(float64(subsample))))
	f := &isoForest{sampleSize: subsample}
	for t := 0; t < trees; t++ {
		sample := make([][]float64, subsample)
		for i := range sample {
			sample[i] = rows[rng.Intn(len(rows))]
		}
		f.trees = append(f.trees, growTree(sample, 0, maxDepth, rng))
	}
	return f
}

func growTree(rows [][]float64, depth, maxDepth int, rng *rand.Rand) *isoNode {
	if len(rows) <= 1 || depth >= maxDepth {
		return &isoNode{size: len(rows)}
	}
	feature := rng.Intn(len(rows[0]))
	lo, hi := rows[0][feature], rows[0][feature]
	for _, r := range rows {
		if r[feature] < lo {
			lo = r[feature]
		}
		if r[feature] > hi {
			hi = r[feature]
		}
	}
	if lo == hi {
		return &isoNode{size: len(rows)}
	}
	split := lo + rng.Float64()*(hi-lo)

	var left, right [][]float64
	for _, r := range rows {
		if r[feature] < split {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	return &isoNode{
		feature: feature,
		split:   split,
		left:    growTree(left, depth+1, maxDepth, rng),
		right:   growTree(right, depth+1, maxDepth, rng),
		size:    len(rows),
	}
}

func pathLength(node *isoNode, row []float64, depth float64) float64 {
	if node.left == nil {
		return depth + avgPathLength(node.size)
	}
	if row[node.feature] < node.split {
		return pathLength(node.left, row, depth+1)
	}
	return pathLength(node.right, row, depth+1)
}

// avgPathLength is the expected path length of an unsuccessful BST search,
// the standard isolation-forest normaliser.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	const euler = 0.5772156649
	h := math.Log(float64(n-1)) + euler
	return 2*h - 2*float64(n-1)/float64(n)
}

func (f *isoForest) score(row []float64) float64 {
	if len(f.trees) == 0 {
		return 0
	}
	var sum float64
	for _, t := range f.trees {
		sum += pathLength(t, row, 0)
	}
	mean := sum / float64(len(f.trees))
	c := avgPathLength(f.sampleSize)
	if c == 0 {
		return 0
	}
	return math.Pow(2, -mean/c)
}
