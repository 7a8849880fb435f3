package x86

import (
	"fmt"
	"strings"
)

// Features is a set of CPU features, as reported by CPUID.
type Features uint64

const (
	FeatureCMOV Features = 1 << iota
	FeatureCX8
	FeatureCX16
	FeatureLZCNT
	FeaturePOPCNT
	FeatureBMI1

	// FeaturesAll enables every feature.
	FeaturesAll = FeatureCMOV | FeatureCX8 | FeatureCX16 | FeatureLZCNT | FeaturePOPCNT | FeatureBMI1
)

var featureNames = []struct {
	f    Features
	name string
}{
	{FeatureCMOV, "cmov"},
	{FeatureCX8, "cx8"},
	{FeatureCX16, "cx16"},
	{FeatureLZCNT, "lzcnt"},
	{FeaturePOPCNT, "popcnt"},
	{FeatureBMI1, "bmi1"},
}

// Set returns the features with f enabled or disabled.
func (fs Features) Set(f Features, enabled bool) Features {
	if enabled {
		return fs | f
	}
	return fs &^ f
}

// Has returns true if every feature of required is enabled in fs.
func (fs Features) Has(required Features) bool {
	return fs&required == required
}

// ParseFeatures parses a comma-separated list of feature names, such as
// "cx8,popcnt". Empty entries are ignored.
func ParseFeatures(list string) (Features, error) {
	var fs Features
	for _, name := range strings.Split(list, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		found := false
		for _, n := range featureNames {
			if n.name == name {
				fs |= n.f
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown CPU feature %q", name)
		}
	}
	return fs, nil
}

// String implements fmt.Stringer.
func (fs Features) String() string {
	var names []string
	for _, n := range featureNames {
		if fs&n.f != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}
