package models

// Requests for the analysis HTTP endpoints. Defined in domain for consistency
// and reuse. Every request accepts either an inline series or a symbol plus
// lookback resolved through the price store; validation of that choice is
// done in the usecase since validator tags cannot express it.

type HurstRequest struct {
	Symbol    string    `query:"symbol" json:"symbol"`
	Series    []float64 `json:"series"`
	N         int       `query:"n" json:"n" default:"600" validate:"gte=1,lte=10000"`
	TF        string    `query:"tf" json:"tf" default:"1d" validate:"oneof=1m 1h 1d"`
	MinWindow int       `query:"min_window" json:"min_window" default:"10" validate:"gte=2"`
	MaxWindow int       `query:"max_window" json:"max_window" validate:"gte=0"`
}

type DFARequest struct {
	Symbol     string    `query:"symbol" json:"symbol"`
	Series     []float64 `json:"series"`
	N          int       `query:"n" json:"n" default:"600" validate:"gte=1,lte=10000"`
	TF         string    `query:"tf" json:"tf" default:"1d" validate:"oneof=1m 1h 1d"`
	Order      int       `query:"order" json:"order" default:"1" validate:"gte=1,lte=4"`
	MinBoxSize int       `query:"min_box_size" json:"min_box_size" default:"10" validate:"gte=4"`
	MaxBoxSize int       `query:"max_box_size" json:"max_box_size" validate:"gte=0"`
}

type SpectrumRequest struct {
	Symbol string    `query:"symbol" json:"symbol"`
	Series []float64 `json:"series"`
	N      int       `query:"n" json:"n" default:"1200" validate:"gte=1,lte=20000"`
	TF     string    `query:"tf" json:"tf" default:"1d" validate:"oneof=1m 1h 1d"`
	QMin   float64   `query:"q_min" json:"q_min" default:"-5"`
	QMax   float64   `query:"q_max" json:"q_max" default:"5"`
	QStep  float64   `query:"q_step" json:"q_step" default:"0.25" validate:"gte=0"`
}

type CVaRRequest struct {
	Symbol     string    `query:"symbol" json:"symbol"`
	Returns    []float64 `json:"returns"`
	N          int       `query:"n" json:"n" default:"600" validate:"gte=1,lte=10000"`
	TF         string    `query:"tf" json:"tf" default:"1d" validate:"oneof=1m 1h 1d"`
	Confidence float64   `query:"confidence" json:"confidence" default:"0.95" validate:"gt=0,lt=1"`
}

type GARCHRequest struct {
	Symbol  string    `query:"symbol" json:"symbol"`
	Returns []float64 `json:"returns"`
	N       int       `query:"n" json:"n" default:"600" validate:"gte=1,lte=10000"`
	TF      string    `query:"tf" json:"tf" default:"1d" validate:"oneof=1m 1h 1d"`
	Horizon int       `query:"horizon" json:"horizon" default:"30" validate:"gte=1,lte=365"`
}

type RegimeRequest struct {
	Symbol   string    `query:"symbol" json:"symbol"`
	Returns  []float64 `json:"returns"`
	N        int       `query:"n" json:"n" default:"600" validate:"gte=1,lte=10000"`
	TF       string    `query:"tf" json:"tf" default:"1d" validate:"oneof=1m 1h 1d"`
	NRegimes int       `query:"n_regimes" json:"n_regimes" default:"2" validate:"gte=2,lte=10"`
}

type SimulateRequest struct {
	InitialPrice float64 `query:"initial_price" json:"initial_price" default:"100" validate:"gt=0"`
	Hurst        float64 `query:"hurst" json:"hurst" default:"0.5" validate:"gt=0,lt=1"`
	Days         int     `query:"days" json:"days" default:"252" validate:"gte=1,lte=5000"`
	Volatility   float64 `query:"volatility" json:"volatility" default:"0.2" validate:"gte=0"`
	Drift        float64 `query:"drift" json:"drift" default:"0.05"`
	Seed         uint64  `query:"seed" json:"seed"`
}

type CandlesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	TF     string `query:"tf" json:"tf" default:"1d" validate:"oneof=1m 1h 1d"`
	Limit  int    `query:"limit" json:"limit" default:"10000" validate:"gte=1,lte=50000"`
}
