// pkg/registry/schema.go
package registry

// ActivityRegistry documents the BPMN service tasks the workers serve, for
// process modelers.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	ID          string                 `json:"id"`
	DisplayName string                 `json:"displayName"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	TaskType    string                 `json:"taskType"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	// BPMN error codes the task may throw
	ErrorCodes    []string `json:"errorCodes"`
	Timeout       string   `json:"timeout"`
	Retries       int      `json:"retries"`
	Authenticated bool     `json:"authenticated"`
	AdminOnly     bool     `json:"adminOnly"`
}
