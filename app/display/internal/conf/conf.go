package conf

type Bootstrap struct {
	Server *Server `json:"server"`
	Data   *Data   `json:"data"`
	Radar  *Radar  `json:"radar"`
}

type Server struct {
	Http *HTTP `json:"http"`
}

type HTTP struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
}

type Data struct {
	Database *Database `json:"database"`
}

type Database struct {
	Driver string `json:"driver"`
	Source string `json:"source"`
}

// Radar 劳动力分析引擎配置，对应 workforce_radar 的 config.Config
type Radar struct {
	CatalogPath string       `json:"catalog_path"`
	Log         *Log         `json:"log"`
	Concurrency *Concurrency `json:"concurrency"`
	Analytics   *Analytics   `json:"analytics"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type Concurrency struct {
	Workers int32 `json:"workers"`
	Qps     int32 `json:"qps"`
	Rpm     int32 `json:"rpm"`
}

type Analytics struct {
	HighRiskThreshold float64 `json:"high_risk_threshold"`
	TopTaskLimit      int32   `json:"top_task_limit"`
	MinTaskExposure   float64 `json:"min_task_exposure"`
	MaxContributors   int32   `json:"max_contributors"`
	MaxSampleRoles    int32   `json:"max_sample_roles"`
}
