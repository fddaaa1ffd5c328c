// internal/workers/project/validate-project-data/models.go
package validateprojectdata

type Input struct {
	ProjectData map[string]interface{} `json:"projectData"`
}

type Output struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"validationErrors,omitempty"`
}
