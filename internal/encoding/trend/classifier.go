package trend

import "math"

// DefaultNoiseRatio - доля от большего по модулю значения, ниже которой изменение считается шумом
const DefaultNoiseRatio = 0.02

// Polarity показывает, желателен ли рост показателя
type Polarity int

const (
	LowerIsBetter  Polarity = -1
	NoPolarity     Polarity = 0
	HigherIsBetter Polarity = 1
)

// Config - параметры классификатора
type Config struct {
	NoiseRatio float64
}

// DefaultConfig возвращает параметры по умолчанию
func DefaultConfig() Config {
	return Config{NoiseRatio: DefaultNoiseRatio}
}

// Pair - значения показателя в двух периодах
type Pair struct {
	Code     string   `json:"code"`
	T1       float64  `json:"t1"`
	T2       float64  `json:"t2"`
	Polarity Polarity `json:"polarity"`
}

// Classifier относит пару значений к одной из категорий динамики
type Classifier struct {
	noiseRatio float64
}

// NewClassifier создает классификатор. Отрицательный NoiseRatio заменяется на значение по умолчанию.
func NewClassifier(cfg Config) *Classifier {
	ratio := cfg.NoiseRatio
	if ratio < 0 || math.IsNaN(ratio) {
		ratio = DefaultNoiseRatio
	}
	return &Classifier{noiseRatio: ratio}
}

// Classify возвращает категорию динамики от t1 к t2
func (c *Classifier) Classify(t1, t2 float64, polarity Polarity) Category {
	if polarity == NoPolarity {
		return Neutral
	}
	if !isFinite(t1) || !isFinite(t2) {
		return Neutral
	}
	if t1 == t2 {
		return Neutral
	}

	delta := t2 - t1
	threshold := math.Max(math.Abs(t1), math.Abs(t2)) * c.noiseRatio
	// при нулевом пороге (оба значения около нуля) изменение не отсекается
	if threshold > 0 && math.Abs(delta) < threshold {
		return Neutral
	}

	var category Category
	if t2 > t1 {
		if t1 >= 0 {
			category = AccelerateGood
		} else {
			category = ReverseGood
		}
	} else {
		if t2 >= 0 {
			category = DecelerateGood
		} else {
			category = AccelerateBad
		}
	}

	if polarity < 0 {
		return category.mirror()
	}
	return category
}

// ClassifyPair классифицирует пару
func (c *Classifier) ClassifyPair(p Pair) Category {
	return c.Classify(p.T1, p.T2, p.Polarity)
}

// Summarize считает количество пар в каждой категории
func (c *Classifier) Summarize(pairs []Pair) map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, cat := range Categories {
		counts[cat] = 0
	}
	for _, p := range pairs {
		counts[c.ClassifyPair(p)]++
	}
	return counts
}

// mirror меняет оценку для показателей, рост которых нежелателен
func (c Category) mirror() Category {
	switch c {
	case AccelerateGood:
		return AccelerateBad
	case ReverseGood:
		return ReverseBad
	case DecelerateGood:
		return DecelerateBad
	case AccelerateBad:
		return AccelerateGood
	case ReverseBad:
		return ReverseGood
	case DecelerateBad:
		return DecelerateGood
	default:
		return Neutral
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
