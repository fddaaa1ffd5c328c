// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"carbon-workers/internal/common/validation"
)

func LoadRegistry(path string) (*WorkerRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg WorkerRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Validate checks the registry for structural problems: duplicate IDs,
// missing required fields, and malformed task type names.
func (r *WorkerRegistry) Validate() error {
	if len(r.Workers) == 0 {
		return fmt.Errorf("registry contains no workers")
	}

	ids := make(map[string]bool)
	for _, w := range r.Workers {
		if w.ID == "" {
			return fmt.Errorf("worker missing required field: id")
		}
		if ids[w.ID] {
			return fmt.Errorf("duplicate worker ID: %s", w.ID)
		}
		ids[w.ID] = true

		if w.DisplayName == "" {
			return fmt.Errorf("worker %s missing required field: displayName", w.ID)
		}
		if w.Category == "" {
			return fmt.Errorf("worker %s missing required field: category", w.ID)
		}
		if w.TaskType == "" {
			return fmt.Errorf("worker %s missing required field: taskType", w.ID)
		}
		if err := validation.ValidateTaskTypeNaming(w.TaskType); err != nil {
			return fmt.Errorf("worker %s: %w", w.ID, err)
		}
	}

	return nil
}

// Find returns the worker definition with the given ID, or nil.
func (r *WorkerRegistry) Find(id string) *WorkerDefinition {
	for i := range r.Workers {
		if r.Workers[i].ID == id {
			return &r.Workers[i]
		}
	}
	return nil
}
