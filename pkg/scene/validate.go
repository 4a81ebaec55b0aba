package scene

import "fmt"

// Severity indicates whether a validation finding blocks an operation.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// ValidationIssue is one finding from Validate.
type ValidationIssue struct {
	ObjectID ObjectID
	Name     string
	Message  string
	Severity Severity
}

func (v ValidationIssue) Error() string {
	return fmt.Sprintf("%s: %s: %s", v.Severity, v.Name, v.Message)
}

// Validate checks objects for conditions that make fitted primitives
// degenerate. Degenerate input is legal, so everything here is advisory
// except leftover previews, which mean an earlier session did not clean up.
func (s *Scene) Validate() []ValidationIssue {
	var issues []ValidationIssue
	for _, obj := range s.Objects() {
		if obj.IsPreview() {
			issues = append(issues, ValidationIssue{
				ObjectID: obj.ID,
				Name:     obj.Name,
				Message:  "leftover preview object",
				Severity: SeverityError,
			})
			continue
		}
		if obj.Data == nil || obj.Data.Mesh == nil || obj.Data.Mesh.IsEmpty() {
			issues = append(issues, ValidationIssue{
				ObjectID: obj.ID,
				Name:     obj.Name,
				Message:  "object has no geometry",
				Severity: SeverityWarning,
			})
			continue
		}
		if err := obj.Data.Mesh.Check(); err != nil {
			issues = append(issues, ValidationIssue{
				ObjectID: obj.ID,
				Name:     obj.Name,
				Message:  err.Error(),
				Severity: SeverityError,
			})
			continue
		}
		size := obj.Data.Mesh.Bounds().Size()
		axes := [3]string{"X", "Y", "Z"}
		for i, axis := range axes {
			if size[i] <= 0 {
				issues = append(issues, ValidationIssue{
					ObjectID: obj.ID,
					Name:     obj.Name,
					Message:  fmt.Sprintf("bounding box %s extent is %.4f", axis, size[i]),
					Severity: SeverityWarning,
				})
			}
		}
		sc := obj.Transform.Scale
		if sc.X() == 0 || sc.Y() == 0 || sc.Z() == 0 {
			issues = append(issues, ValidationIssue{
				ObjectID: obj.ID,
				Name:     obj.Name,
				Message:  fmt.Sprintf("zero scale %v", [3]float64(sc)),
				Severity: SeverityWarning,
			})
		}
	}
	return issues
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []ValidationIssue) bool {
	for _, v := range issues {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}
