package profiles

// FileConfig is the top-level structure of the profiles YAML file.
type FileConfig struct {
	Profiles []ProfileProps `yaml:"profiles"`
}

// ProfileProps is one archive profile as written in the file: which
// tables it applies to and the display options to use for them.
type ProfileProps struct {
	Name  string     `yaml:"name"`
	Match MatchProps `yaml:"match,omitempty"`

	ActivateServiceDef  bool `yaml:"activateServiceDef,omitempty"`
	SingleViewImageOnly bool `yaml:"singleViewImageOnly,omitempty"`
	SingleViewTableOnly bool `yaml:"singleViewTableOnly,omitempty"`

	ComponentKey  string   `yaml:"componentKey,omitempty"`
	ParamNameKeys []string `yaml:"paramNameKeys,omitempty"`
	UCDKeys       []string `yaml:"ucdKeys,omitempty"`
	UtypeKeys     []string `yaml:"utypeKeys,omitempty"`
	XtypeKeys     []string `yaml:"xtypeKeys,omitempty"`

	CutoutDeg float64 `yaml:"cutoutDeg,omitempty"`
}

// MatchProps selects the tables a profile applies to. TableIDs are glob
// patterns against the source table id; URLPrefixes match the DataLink
// table URL. An empty match never applies (except the default profile,
// which is handled separately).
type MatchProps struct {
	TableIDs    []string `yaml:"tableIds,omitempty"`
	URLPrefixes []string `yaml:"urlPrefixes,omitempty"`
}
