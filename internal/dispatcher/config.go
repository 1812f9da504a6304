package dispatcher

type Config struct {
	K             int    `envconfig:"KNN_K" default:"5"`
	TieBreak      string `envconfig:"KNN_TIE_BREAK" default:"RANDOM"`
	Seed          uint32 `envconfig:"KNN_SEED"`
	Metric        string `envconfig:"KNN_METRIC" default:"EUCLIDEAN"`
	MissingPolicy string `envconfig:"KNN_MISSING_POLICY" default:"MAXIMAL"`
	WeightsFile   string `envconfig:"KNN_WEIGHTS_FILE"`
}
