package analytics

type BaselineKey struct {
	Product  string
	Category string
}

// Baseline: среднее время на единицу по архиву для пары (продукт, категория).
type Baseline map[BaselineKey]float64

// BuildBaseline считает среднее time_spent/quantity_produced по архивным заказам.
// Строки с нулевым временем или нулевым выпуском в среднее не попадают.
func BuildBaseline(historical []Order) Baseline {
	samples := make(map[BaselineKey][]float64)

	for _, o := range historical {
		if o.TimeSpent <= 0 || o.QuantityProduced <= 0 {
			continue
		}

		key := BaselineKey{Product: o.ProductCode, Category: o.Category}
		samples[key] = append(samples[key], o.TimeSpent/float64(o.QuantityProduced))
	}

	b := make(Baseline, len(samples))
	for key, values := range samples {
		b[key] = mean(values)
	}

	return b
}

// UnitTime возвращает 0, если для пары нет архивных данных.
func (b Baseline) UnitTime(product, category string) float64 {
	return b[BaselineKey{Product: product, Category: category}]
}
