package model

type PerformanceSummary struct {
	TotalAUM    float64 `json:"totalAUM"`
	AUMChange   float64 `json:"aumChange"`
	AverageIRR  float64 `json:"averageIRR"`
	IRRChange   float64 `json:"irrChange"`
	AverageTVPI float64 `json:"averageTVPI"`
	TVPIChange  float64 `json:"tvpiChange"`
}

type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type PortfolioPerformance struct {
	Summary PerformanceSummary `json:"summary"`
	Series  []SeriesPoint      `json:"series"`
}

type PortfolioSummary struct {
	Performance PortfolioPerformance `json:"performance"`
	Funds       []Fund               `json:"funds"`
	Companies   int                  `json:"companies"`
}

type CompanyReportRow struct {
	Company    Company
	Latest     *MetricsRecord
	StakeValue float64
}

// PortfolioReport is the content of an exported workbook.
type PortfolioReport struct {
	Title       string
	Currency    string
	GeneratedAt string
	Performance PortfolioPerformance
	Companies   []CompanyReportRow
}
