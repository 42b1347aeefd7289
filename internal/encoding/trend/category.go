package trend

import "fmt"

// Category - семантическая категория динамики показателя между двумя периодами
type Category int

const (
	Neutral Category = iota
	AccelerateGood
	DecelerateGood
	ReverseGood
	ReverseBad
	DecelerateBad
	AccelerateBad
)

// Categories перечисляет категории в порядке отображения в легенде
var Categories = []Category{
	AccelerateGood,
	DecelerateGood,
	ReverseGood,
	Neutral,
	ReverseBad,
	DecelerateBad,
	AccelerateBad,
}

// String возвращает машинный код категории
func (c Category) String() string {
	switch c {
	case AccelerateGood:
		return "accelerate_good"
	case DecelerateGood:
		return "decelerate_good"
	case ReverseGood:
		return "reverse_good"
	case ReverseBad:
		return "reverse_bad"
	case DecelerateBad:
		return "decelerate_bad"
	case AccelerateBad:
		return "accelerate_bad"
	default:
		return "neutral"
	}
}

// Label возвращает человекочитаемую подпись категории
func (c Category) Label() string {
	switch c {
	case AccelerateGood:
		return "Improving, accelerating"
	case DecelerateGood:
		return "Improving, slowing down"
	case ReverseGood:
		return "Turned favourable"
	case ReverseBad:
		return "Turned unfavourable"
	case DecelerateBad:
		return "Worsening, slowing down"
	case AccelerateBad:
		return "Worsening, accelerating"
	default:
		return "Stable"
	}
}

// Color возвращает цвет категории в hex
func (c Category) Color() string {
	switch c {
	case AccelerateGood:
		return "#1a9850"
	case DecelerateGood:
		return "#91cf60"
	case ReverseGood:
		return "#d9ef8b"
	case ReverseBad:
		return "#fee08b"
	case DecelerateBad:
		return "#fc8d59"
	case AccelerateBad:
		return "#d73027"
	default:
		return "#bdbdbd"
	}
}

// MarshalText сериализует категорию как код
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText разбирает код категории
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Parse разбирает код категории
func Parse(s string) (Category, error) {
	for _, c := range Categories {
		if c.String() == s {
			return c, nil
		}
	}
	return Neutral, fmt.Errorf("unknown trend category %q", s)
}
