// internal/workers/project/fetch-project-record/models.go
package fetchprojectrecord

import "carbon-workers/internal/models"

type Input struct {
	ProjectID string `json:"projectId"`
}

type Output struct {
	Project   *models.Project `json:"project"`
	FromCache bool            `json:"fromCache"`
}
