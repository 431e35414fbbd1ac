package contracts

// Quartile is the ESG bucket of a company (Q1 best, Q4 worst)
type Quartile string

const (
	Q1 Quartile = "Q1"
	Q2 Quartile = "Q2"
	Q3 Quartile = "Q3"
	Q4 Quartile = "Q4"
)

// Quartiles lists every bucket in rank order
var Quartiles = []Quartile{Q1, Q2, Q3, Q4}

// ESGScore is the ESG bundle of a company, every score in [0,100].
// Synthetic bundles have Total = mean(E,S,G); bundles copied from the
// reference table keep the table's total even when it diverges.
type ESGScore struct {
	Total         float64 `json:"total"`
	Environmental float64 `json:"environmental"`
	Social        float64 `json:"social"`
	Governance    float64 `json:"governance"`
}

// Company is one emitted record of the dataset
type Company struct {
	Ticker   string       `json:"ticker"`
	Name     string       `json:"name"`
	Sector   string       `json:"sector"`
	ESG      ESGScore     `json:"esg"`
	Quartile Quartile     `json:"quartile"`
	Metrics  MetricBundle `json:"metrics"`
}

// Dataset is the document consumed by the dashboard
// ⭐ SSOT: Companies keep the price table column order, duplicates included
type Dataset struct {
	Companies       []Company                      `json:"companies"`
	QuartileMetrics map[Quartile]QuartileAggregate `json:"quartileMetrics"`
}

// FindCompany returns the first company with the given ticker
func (d *Dataset) FindCompany(ticker string) (Company, bool) {
	for _, c := range d.Companies {
		if c.Ticker == ticker {
			return c, true
		}
	}
	return Company{}, false
}

// CompaniesIn returns the companies assigned to quartile q
func (d *Dataset) CompaniesIn(q Quartile) []Company {
	out := make([]Company, 0)
	for _, c := range d.Companies {
		if c.Quartile == q {
			out = append(out, c)
		}
	}
	return out
}
