package portal

import (
	"encoding/json"

	_ "embed"
)

//go:embed weights.json
var weightsJSON []byte

// DefaultCourseWeights loads the embedded course-weight catalog. The
// catalog is reference data maintained by hand each semester; entries
// are ordered, which matters for matcher tie-breaks.
func DefaultCourseWeights() []CourseWeight {
	var catalog []CourseWeight
	err := json.Unmarshal(weightsJSON, &catalog)
	if err != nil {
		// the embedded catalog is part of the binary, a parse failure
		// is a build defect
		panic(err)
	}
	return catalog
}
