package domain

// ServiceArea is one district the courier covers.
type ServiceArea struct {
	Region      string   `yaml:"region"`
	District    string   `yaml:"district"`
	City        string   `yaml:"city"`
	CoveredArea []string `yaml:"covered_area"`
}
